// Package signalcache implements the signal cacher: upserts the latest
// signal per pair and maintains a bounded history list, refreshing the TTL
// on every write.
package signalcache

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cryptoops/sentipipe/internal/apperrors"
	"github.com/cryptoops/sentipipe/internal/cache"
	"github.com/cryptoops/sentipipe/internal/domain"
)

const (
	historyMax          = 100
	headlineMaxChars    = 100
	defaultStatsLogEach = 100
)

// Stats tracks the cacher's running counters, reported every StatsLogEvery
// messages.
type Stats struct {
	SignalsProcessed int64
	CacheUpdates     int64
	Errors           int64
}

// Cacher consumes SentimentSignalMessages and writes them into the cache.
type Cacher struct {
	Cache         cache.Interface
	TTL           time.Duration
	StatsLogEvery int

	stats Stats
}

// Ping verifies cache reachability at boot. A failure here is a
// FatalStartupError: the pipeline must not silently discard writes, so a
// cacher that cannot reach its cache does not start.
func (c *Cacher) Ping(ctx context.Context) error {
	if err := c.Cache.Ping(ctx); err != nil {
		return &apperrors.FatalStartupError{Component: "signalcache", Cause: err}
	}
	return nil
}

// Process upserts sentiment:{pair} and pushes a compact entry onto
// sentiment_history:{pair}, trimmed to the most recent 100.
func (c *Cacher) Process(ctx context.Context, msg domain.SentimentSignalMessage) error {
	atomic.AddInt64(&c.stats.SignalsProcessed, 1)

	headline := domain.TruncateHeadline(msg.Headline, headlineMaxChars)
	fields := map[string]interface{}{
		"score":      msg.Score,
		"label":      string(msg.Label),
		"timestamp":  msg.AnalyzedAt.Format(time.RFC3339Nano),
		"headline":   headline,
		"source":     msg.Source,
		"article_id": msg.ArticleID,
	}
	if msg.Model != "" {
		fields["model"] = msg.Model
	}

	key := domain.SentimentKey(msg.Pair)
	if err := c.Cache.HSet(ctx, key, fields, c.TTL); err != nil {
		atomic.AddInt64(&c.stats.Errors, 1)
		return &apperrors.TransientCacheError{Op: "hset " + key, Cause: err}
	}

	entry := domain.CachedPairSignal{
		Score:     msg.Score,
		Label:     msg.Label,
		Timestamp: msg.AnalyzedAt,
		Headline:  headline,
		Source:    msg.Source,
		ArticleID: msg.ArticleID,
		Model:     msg.Model,
	}
	compact, err := json.Marshal(entry)
	if err != nil {
		atomic.AddInt64(&c.stats.Errors, 1)
		return &apperrors.UnexpectedProcessingError{Context: "marshal history entry", Cause: err}
	}

	historyKey := domain.HistoryKey(msg.Pair)
	if err := c.Cache.LPushTrim(ctx, historyKey, string(compact), historyMax); err != nil {
		atomic.AddInt64(&c.stats.Errors, 1)
		return &apperrors.TransientCacheError{Op: "lpushtrim " + historyKey, Cause: err}
	}

	updates := atomic.AddInt64(&c.stats.CacheUpdates, 1)
	every := int64(c.StatsLogEvery)
	if every <= 0 {
		every = defaultStatsLogEach
	}
	if updates%every == 0 {
		log.Info().
			Int64("signals_processed", atomic.LoadInt64(&c.stats.SignalsProcessed)).
			Int64("cache_updates", updates).
			Int64("errors", atomic.LoadInt64(&c.stats.Errors)).
			Msg("signal cacher stats")
	}
	return nil
}

// Snapshot returns a copy of the current counters.
func (c *Cacher) Snapshot() Stats {
	return Stats{
		SignalsProcessed: atomic.LoadInt64(&c.stats.SignalsProcessed),
		CacheUpdates:     atomic.LoadInt64(&c.stats.CacheUpdates),
		Errors:           atomic.LoadInt64(&c.stats.Errors),
	}
}
