package broker

import "context"

// Publisher is the subset of *Client that producers depend on, so the
// poller, streamer, and sentiment processor can be unit-tested against an
// in-memory fake instead of a live broker.
type Publisher interface {
	Publish(ctx context.Context, queue string, payload interface{}, declareQueue bool) error
}

// Consumer is the subset of *Client that consumers depend on.
type Consumer interface {
	Consume(ctx context.Context, queue string, prefetch int, handler Handler) error
}

var _ Publisher = (*Client)(nil)
var _ Consumer = (*Client)(nil)
