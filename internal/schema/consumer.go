package schema

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/cryptoops/sentipipe/internal/apperrors"
	"github.com/cryptoops/sentipipe/internal/broker"
)

// TypedCallback processes one decoded, schema-valid message.
type TypedCallback[T any] func(ctx context.Context, msg T) error

// SafeMessageConsumer decodes JSON into T, validates it with validate, and
// only then invokes cb. A decode or validation failure never reaches cb; it
// is returned as a *apperrors.SchemaError so the broker quarantines the
// message instead of retrying it forever.
func SafeMessageConsumer[T any](validate func(T) error, cb TypedCallback[T]) broker.Handler {
	return func(ctx context.Context, body []byte) error {
		var msg T
		if err := json.Unmarshal(body, &msg); err != nil {
			log.Warn().Err(err).Msg("schema: malformed JSON, quarantining")
			return &apperrors.SchemaError{Field: "body", Reason: "invalid JSON: " + err.Error()}
		}
		if err := validate(msg); err != nil {
			log.Warn().Err(err).Msg("schema: validation failed, quarantining")
			if _, ok := err.(*apperrors.SchemaError); ok {
				return err
			}
			return &apperrors.SchemaError{Field: "message", Reason: err.Error()}
		}
		return cb(ctx, msg)
	}
}
