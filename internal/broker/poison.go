package broker

import (
	"errors"

	"github.com/cryptoops/sentipipe/internal/apperrors"
)

// isPoisonPill reports whether err means the message itself is unprocessable
// and must never be redelivered.
func isPoisonPill(err error) bool {
	var schemaErr *apperrors.SchemaError
	var unexpectedErr *apperrors.UnexpectedProcessingError
	return errors.As(err, &schemaErr) || errors.As(err, &unexpectedErr)
}
