// Package cache implements the pooled Redis client: ping health, JSON
// get/set with optional TTL, hash set/get with nested-struct coercion,
// bounded list push+trim for history, pattern scan, and transparent
// reconnect.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Config controls connection and retry behaviour.
type Config struct {
	Host          string
	Port          int
	Password      string
	DB            int
	RetryAttempts int
	RetryDelay    time.Duration
	DialTimeout   time.Duration
}

func (c Config) withDefaults() Config {
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 5
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 2 * time.Second
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 5 * time.Second
	}
	return c
}

// Client is a reconnecting Redis client. A single *redis.Client is shared
// per process; ensureConnection is invoked before every operation so that a
// connection dropped by the server or network is transparently reopened.
type Client struct {
	cfg Config
	rdb *redis.Client
}

// New dials Redis with bounded retry: a fixed number of attempts at a
// fixed delay before giving up.
func New(ctx context.Context, cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()
	c := &Client{cfg: cfg}
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) connect(ctx context.Context) error {
	opts := &redis.Options{
		Addr:        fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port),
		Password:    c.cfg.Password,
		DB:          c.cfg.DB,
		DialTimeout: c.cfg.DialTimeout,
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.RetryAttempts; attempt++ {
		rdb := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(ctx, c.cfg.DialTimeout)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			c.rdb = rdb
			return nil
		}
		lastErr = err
		_ = rdb.Close()
		log.Warn().Err(err).Int("attempt", attempt).Msg("cache connect failed, retrying")
		select {
		case <-time.After(c.cfg.RetryDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("cache: failed to connect after %d attempts: %w", c.cfg.RetryAttempts, lastErr)
}

// ensureConnection re-pings and, on failure, transparently reconnects. It is
// called before every operation below so a transient drop never surfaces to
// the caller as a permanent failure.
func (c *Client) ensureConnection(ctx context.Context) error {
	if c.rdb != nil {
		pingCtx, cancel := context.WithTimeout(ctx, c.cfg.DialTimeout)
		err := c.rdb.Ping(pingCtx).Err()
		cancel()
		if err == nil {
			return nil
		}
		log.Warn().Err(err).Msg("cache connection stale, reconnecting")
		_ = c.rdb.Close()
	}
	return c.connect(ctx)
}

// Ping is the startup health check used by the cacher (§4.G): the process
// must not start if the cache is unreachable.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.ensureConnection(ctx); err != nil {
		return err
	}
	return c.rdb.Ping(ctx).Err()
}

// Close tears down the underlying connection pool.
func (c *Client) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// SetJSON marshals val and stores it under key. ttl == 0 means no expiry.
func (c *Client) SetJSON(ctx context.Context, key string, val interface{}, ttl time.Duration) error {
	if err := c.ensureConnection(ctx); err != nil {
		return err
	}
	b, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", key, err)
	}
	return c.rdb.Set(ctx, key, b, ttl).Err()
}

// GetJSON unmarshals the value stored at key into out. Returns (false, nil)
// on a cache miss.
func (c *Client) GetJSON(ctx context.Context, key string, out interface{}) (bool, error) {
	if err := c.ensureConnection(ctx); err != nil {
		return false, err
	}
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, fmt.Errorf("cache: unmarshal %s: %w", key, err)
	}
	return true, nil
}

// HSet writes fields to a hash key, JSON-coercing any field whose value is
// not already a string/number/bool (e.g. nested structs), then applies TTL
// if ttl > 0. A ttl of 0 leaves any existing expiry untouched (spec: "0
// means no expiry").
func (c *Client) HSet(ctx context.Context, key string, fields map[string]interface{}, ttl time.Duration) error {
	if err := c.ensureConnection(ctx); err != nil {
		return err
	}
	flat := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		switch v.(type) {
		case string, bool, int, int64, float64, float32:
			flat[k] = v
		default:
			b, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("cache: marshal field %s: %w", k, err)
			}
			flat[k] = string(b)
		}
	}
	if err := c.rdb.HSet(ctx, key, flat).Err(); err != nil {
		return err
	}
	if ttl > 0 {
		return c.rdb.Expire(ctx, key, ttl).Err()
	}
	return nil
}

// HGetAll reads every field of a hash as strings; callers that need nested
// structures decode the relevant field with json.Unmarshal, mirroring how
// HSet encoded it.
func (c *Client) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if err := c.ensureConnection(ctx); err != nil {
		return nil, err
	}
	return c.rdb.HGetAll(ctx, key).Result()
}

// LPushTrim pushes value onto the head of a list and trims it to maxLen,
// implementing the bounded-history pattern used for sentiment_history:{pair}
// (newest at head, capped length).
func (c *Client) LPushTrim(ctx context.Context, key string, value interface{}, maxLen int64) error {
	if err := c.ensureConnection(ctx); err != nil {
		return err
	}
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: marshal list entry %s: %w", key, err)
	}
	pipe := c.rdb.TxPipeline()
	pipe.LPush(ctx, key, b)
	pipe.LTrim(ctx, key, 0, maxLen-1)
	_, err = pipe.Exec(ctx)
	return err
}

// LRange returns up to count entries from the head of a list.
func (c *Client) LRange(ctx context.Context, key string, count int64) ([]string, error) {
	if err := c.ensureConnection(ctx); err != nil {
		return nil, err
	}
	return c.rdb.LRange(ctx, key, 0, count-1).Result()
}

// LLen reports the current length of a list key.
func (c *Client) LLen(ctx context.Context, key string) (int64, error) {
	if err := c.ensureConnection(ctx); err != nil {
		return 0, err
	}
	return c.rdb.LLen(ctx, key).Result()
}

// Delete removes one or more keys.
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if err := c.ensureConnection(ctx); err != nil {
		return err
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// Exists reports whether a key is present.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	if err := c.ensureConnection(ctx); err != nil {
		return false, err
	}
	n, err := c.rdb.Exists(ctx, key).Result()
	return n > 0, err
}

// Scan returns every key matching a glob pattern (keys(pattern) in spec
// §4.B). It uses SCAN rather than KEYS to avoid blocking Redis on large
// keyspaces.
func (c *Client) Scan(ctx context.Context, pattern string) ([]string, error) {
	if err := c.ensureConnection(ctx); err != nil {
		return nil, err
	}
	var keys []string
	iter := c.rdb.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}
