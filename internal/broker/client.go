// Package broker implements the pooled AMQP message-broker client:
// bounded-retry connect, durable queue declaration, publish with persistent
// delivery, prefetch-bounded manual-ack consume, and transparent reconnect
// via ensureConnection. Each dial attempt runs through a circuit breaker so
// a broker outage stops generating a fresh TCP handshake every retry once
// it's clearly down.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// Config controls connection and retry behaviour.
type Config struct {
	Host          string
	Port          int
	User          string
	Pass          string
	VHost         string
	RetryAttempts int
	RetryDelay    time.Duration
	Heartbeat     time.Duration
}

func (c Config) withDefaults() Config {
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 5
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 2 * time.Second
	}
	if c.Heartbeat <= 0 {
		c.Heartbeat = 10 * time.Second
	}
	if c.VHost == "" {
		c.VHost = "/"
	}
	return c
}

func (c Config) url() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d%s", c.User, c.Pass, c.Host, c.Port, c.VHost)
}

// Client owns one connection and one channel per process; connections are
// not shared across processes.
type Client struct {
	cfg     Config
	mu      sync.Mutex
	conn    *amqp.Connection
	ch      *amqp.Channel
	breaker *gobreaker.CircuitBreaker
}

// Dial connects with linear backoff (retry_delay seconds between each of
// RetryAttempts attempts). Individual dial attempts are wrapped in a
// circuit breaker that trips after 3 consecutive failures and half-opens
// after 30s, so a fully-down broker doesn't get hammered with a fresh TCP
// handshake on every one of the RetryAttempts within a single Dial call.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()
	c := &Client{cfg: cfg, breaker: newDialBreaker(cfg.Host)}
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func newDialBreaker(host string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "broker-dial:" + host,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
}

func (c *Client) connect(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.RetryAttempts; attempt++ {
		_, err := c.breaker.Execute(func() (interface{}, error) {
			conn, dialErr := amqp.DialConfig(c.cfg.url(), amqp.Config{Heartbeat: c.cfg.Heartbeat})
			if dialErr != nil {
				return nil, dialErr
			}
			ch, chErr := conn.Channel()
			if chErr != nil {
				_ = conn.Close()
				return nil, chErr
			}
			c.conn = conn
			c.ch = ch
			return nil, nil
		})
		if err == nil {
			log.Info().Str("host", c.cfg.Host).Msg("broker connected")
			return nil
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt).Msg("broker connect failed, retrying")
		select {
		case <-time.After(c.cfg.RetryDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("broker: failed to connect after %d attempts: %w", c.cfg.RetryAttempts, lastErr)
}

// ensureConnection transparently reopens the channel and/or connection if
// either has been closed by the broker or the network.
func (c *Client) ensureConnection(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && !c.conn.IsClosed() && c.ch != nil && !c.ch.IsClosed() {
		return nil
	}
	log.Warn().Msg("broker connection/channel closed, reconnecting")
	if c.conn != nil {
		_ = c.conn.Close()
	}
	return c.connect(ctx)
}

// QueueOptions configures a durable queue declaration.
type QueueOptions struct {
	Durable   bool
	MaxLength int64 // 0 means unbounded
	TTLMillis int64 // message TTL, 0 means no TTL
}

// DeclareQueue declares a queue, optionally bounding its length (oldest
// messages dropped on overflow via x-max-length/x-overflow) and setting a
// message TTL.
func (c *Client) DeclareQueue(ctx context.Context, name string, opts QueueOptions) error {
	if err := c.ensureConnection(ctx); err != nil {
		return err
	}
	args := amqp.Table{}
	if opts.MaxLength > 0 {
		args["x-max-length"] = opts.MaxLength
		args["x-overflow"] = "drop-head"
	}
	if opts.TTLMillis > 0 {
		args["x-message-ttl"] = opts.TTLMillis
	}
	_, err := c.ch.QueueDeclare(name, opts.Durable, false, false, false, args)
	return err
}

// Publish JSON-serializes payload and publishes it with
// delivery_mode=2 (persistent), declaring the queue lazily first when
// declareQueue is true.
func (c *Client) Publish(ctx context.Context, queue string, payload interface{}, declareQueue bool) error {
	if err := c.ensureConnection(ctx); err != nil {
		return err
	}
	if declareQueue {
		if err := c.DeclareQueue(ctx, queue, QueueOptions{Durable: true}); err != nil {
			return fmt.Errorf("broker: declare %s: %w", queue, err)
		}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("broker: marshal payload for %s: %w", queue, err)
	}
	return c.ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		MessageId:    uuid.NewString(),
		Body:         body,
	})
}

// Handler processes one message body. Its return value drives the ack
// decision in Consume: nil acks, a *apperrors.SchemaError or
// *apperrors.UnexpectedProcessingError nacks without requeue (poison-pill
// quarantine), any other error nacks with requeue.
type Handler func(ctx context.Context, body []byte) error

// Consume starts a manual-ack consumer with the given prefetch count
// (QoS). It blocks until ctx is cancelled, then stops consuming and
// returns.
func (c *Client) Consume(ctx context.Context, queue string, prefetch int, handler Handler) error {
	if err := c.ensureConnection(ctx); err != nil {
		return err
	}
	if err := c.ch.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("broker: qos: %w", err)
	}
	msgs, err := c.ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("broker: consume %s: %w", queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("broker: delivery channel for %s closed", queue)
			}
			err := handler(ctx, d.Body)
			ackDecision(d, err)
		}
	}
}

func ackDecision(d amqp.Delivery, err error) {
	if err == nil {
		if ackErr := d.Ack(false); ackErr != nil {
			log.Error().Err(ackErr).Msg("broker: ack failed")
		}
		return
	}

	requeue := !isPoisonPill(err)
	log.Warn().Err(err).Bool("requeue", requeue).Msg("broker: nacking message")
	if nackErr := d.Nack(false, requeue); nackErr != nil {
		log.Error().Err(nackErr).Msg("broker: nack failed")
	}
}

// Close tears down the channel then the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var chErr, connErr error
	if c.ch != nil {
		chErr = c.ch.Close()
	}
	if c.conn != nil {
		connErr = c.conn.Close()
	}
	if chErr != nil {
		return chErr
	}
	return connErr
}
