package cache

import (
	"context"
	"time"
)

// Interface is the subset of *Client that consumers depend on, so that the
// signal cacher and strategy join can be exercised against an in-memory
// fake in tests instead of a live Redis instance.
type Interface interface {
	Ping(ctx context.Context) error
	SetJSON(ctx context.Context, key string, val interface{}, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, out interface{}) (bool, error)
	HSet(ctx context.Context, key string, fields map[string]interface{}, ttl time.Duration) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	LPushTrim(ctx context.Context, key string, value interface{}, maxLen int64) error
	LRange(ctx context.Context, key string, count int64) ([]string, error)
	LLen(ctx context.Context, key string) (int64, error)
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

var _ Interface = (*Client)(nil)
