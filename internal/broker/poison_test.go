package broker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cryptoops/sentipipe/internal/apperrors"
)

func TestIsPoisonPill(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"schema error quarantines", &apperrors.SchemaError{Field: "url", Reason: "bad domain"}, true},
		{"unexpected processing error quarantines", &apperrors.UnexpectedProcessingError{Context: "x", Cause: errors.New("boom")}, true},
		{"transient broker error requeues", &apperrors.TransientBrokerError{Op: "publish", Cause: errors.New("timeout")}, false},
		{"plain error requeues", errors.New("network blip"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isPoisonPill(tc.err))
		})
	}
}
