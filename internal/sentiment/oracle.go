// Package sentiment implements the sentiment processor: the oracle
// cascade, deterministic classification, pair matching, and fan-out
// publication to sentiment_signals_queue.
package sentiment

import "context"

// Oracle maps article text to a sentiment score in [-1, 1]. The primary
// oracle wraps a remote financial-NLP model; callers never assume success.
type Oracle interface {
	Analyze(ctx context.Context, text string) (float64, error)
	Name() string
}
