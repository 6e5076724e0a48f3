// Package cachetest provides an in-memory cache.Interface implementation
// for tests, mirroring the hash/list semantics the real Redis-backed
// client exposes.
package cachetest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

type entry struct {
	blob    []byte
	hash    map[string]string
	list    []string
	expires time.Time
}

func (e *entry) expired() bool {
	return !e.expires.IsZero() && time.Now().After(e.expires)
}

// Fake is a goroutine-safe, in-memory stand-in for *cache.Client.
type Fake struct {
	mu      sync.Mutex
	entries map[string]*entry
	Pings   int
	PingErr error
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{entries: make(map[string]*entry)}
}

func (f *Fake) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Pings++
	return f.PingErr
}

func (f *Fake) SetJSON(ctx context.Context, key string, val interface{}, ttl time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e := &entry{blob: b}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}
	f.entries[key] = e
	return nil
}

func (f *Fake) GetJSON(ctx context.Context, key string, out interface{}) (bool, error) {
	f.mu.Lock()
	e, ok := f.entries[key]
	if ok && e.expired() {
		delete(f.entries, key)
		ok = false
	}
	var blob []byte
	if ok {
		blob = e.blob
	}
	f.mu.Unlock()
	if !ok || blob == nil {
		return false, nil
	}
	return true, json.Unmarshal(blob, out)
}

func (f *Fake) HSet(ctx context.Context, key string, fields map[string]interface{}, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[key]
	if !ok || e.expired() {
		e = &entry{hash: make(map[string]string)}
		f.entries[key] = e
	}
	if e.hash == nil {
		e.hash = make(map[string]string)
	}
	for k, v := range fields {
		switch tv := v.(type) {
		case string:
			e.hash[k] = tv
		default:
			b, err := json.Marshal(v)
			if err != nil {
				return err
			}
			e.hash[k] = string(b)
		}
	}
	if ttl > 0 {
		e.expires = time.Now().Add(ttl)
	}
	return nil
}

func (f *Fake) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[key]
	if !ok || e.expired() || e.hash == nil {
		return map[string]string{}, nil
	}
	out := make(map[string]string, len(e.hash))
	for k, v := range e.hash {
		out[k] = v
	}
	return out, nil
}

func (f *Fake) LPushTrim(ctx context.Context, key string, value interface{}, maxLen int64) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[key]
	if !ok || e.expired() {
		e = &entry{}
		f.entries[key] = e
	}
	e.list = append([]string{string(b)}, e.list...)
	if int64(len(e.list)) > maxLen {
		e.list = e.list[:maxLen]
	}
	return nil
}

func (f *Fake) LRange(ctx context.Context, key string, count int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[key]
	if !ok || e.expired() {
		return nil, nil
	}
	if count >= int64(len(e.list)) {
		return append([]string(nil), e.list...), nil
	}
	return append([]string(nil), e.list[:count]...), nil
}

func (f *Fake) LLen(ctx context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[key]
	if !ok || e.expired() {
		return 0, nil
	}
	return int64(len(e.list)), nil
}

func (f *Fake) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.entries, k)
	}
	return nil
}

func (f *Fake) Exists(ctx context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[key]
	if !ok || e.expired() {
		return false, nil
	}
	return true, nil
}

func (f *Fake) Scan(ctx context.Context, pattern string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for k, e := range f.entries {
		if e.expired() {
			continue
		}
		if matched, _ := matchGlob(pattern, k); matched {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

// matchGlob supports the single '*' wildcard forms used by this codebase
// (e.g. "sentiment:*"), which is all the pattern scan call sites need.
func matchGlob(pattern, s string) (bool, error) {
	if pattern == s {
		return true, nil
	}
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '*' {
			prefix, suffix := pattern[:i], pattern[i+1:]
			if len(s) < len(prefix) || s[:len(prefix)] != prefix {
				return false, nil
			}
			return len(s) >= len(prefix)+len(suffix) && s[len(s)-len(suffix):] == suffix, nil
		}
	}
	return false, fmt.Errorf("no match")
}
