package signalcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptoops/sentipipe/internal/apperrors"
	"github.com/cryptoops/sentipipe/internal/cache/cachetest"
	"github.com/cryptoops/sentipipe/internal/domain"
)

// hsetFailFake wraps cachetest.Fake to force HSet failures for the transient
// error-path test below, without adding failure-injection fields to the fake
// itself.
type hsetFailFake struct {
	*cachetest.Fake
}

func (h *hsetFailFake) HSet(ctx context.Context, key string, fields map[string]interface{}, ttl time.Duration) error {
	return errors.New("simulated hset failure")
}

func TestCacher_Process_UpsertsHashAndHistory(t *testing.T) {
	fake := cachetest.New()
	c := &Cacher{Cache: fake}

	msg := domain.SentimentSignalMessage{
		Pair: "BTC/USDT", Score: 0.8, Label: domain.LabelVeryBullish,
		Headline: "Bitcoin surges", Source: "coindesk", ArticleID: "a1",
		Model: "finbert", AnalyzedAt: time.Now().UTC(),
	}
	require.NoError(t, c.Process(context.Background(), msg))

	fields, err := fake.HGetAll(context.Background(), domain.SentimentKey("BTC/USDT"))
	require.NoError(t, err)
	assert.Equal(t, "very_bullish", fields["label"])

	hist, err := fake.LRange(context.Background(), domain.HistoryKey("BTC/USDT"), 10)
	require.NoError(t, err)
	assert.Len(t, hist, 1)

	snap := c.Snapshot()
	assert.Equal(t, int64(1), snap.SignalsProcessed)
	assert.Equal(t, int64(1), snap.CacheUpdates)
}

func TestCacher_Process_TruncatesHeadline(t *testing.T) {
	fake := cachetest.New()
	c := &Cacher{Cache: fake}
	long := ""
	for i := 0; i < 200; i++ {
		long += "x"
	}
	msg := domain.SentimentSignalMessage{Pair: "ETH/USDT", Headline: long, AnalyzedAt: time.Now().UTC()}
	require.NoError(t, c.Process(context.Background(), msg))

	fields, err := fake.HGetAll(context.Background(), domain.SentimentKey("ETH/USDT"))
	require.NoError(t, err)
	assert.Len(t, []rune(fields["headline"]), 100)
}

func TestCacher_Process_HistoryBoundedTo100(t *testing.T) {
	fake := cachetest.New()
	c := &Cacher{Cache: fake}
	for i := 0; i < 150; i++ {
		msg := domain.SentimentSignalMessage{Pair: "BTC/USDT", AnalyzedAt: time.Now().UTC()}
		require.NoError(t, c.Process(context.Background(), msg))
	}
	hist, err := fake.LRange(context.Background(), domain.HistoryKey("BTC/USDT"), 1000)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(hist), 100)
}

func TestCacher_Process_CacheFailureIsTransient(t *testing.T) {
	fake := cachetest.New()
	c := &Cacher{Cache: &hsetFailFake{Fake: fake}}

	err := c.Process(context.Background(), domain.SentimentSignalMessage{Pair: "BTC/USDT", AnalyzedAt: time.Now().UTC()})
	require.Error(t, err)
	var transient *apperrors.TransientCacheError
	assert.ErrorAs(t, err, &transient)
}

func TestCacher_Ping_FatalOnFailure(t *testing.T) {
	fake := cachetest.New()
	fake.PingErr = errors.New("connection refused")
	c := &Cacher{Cache: fake}

	err := c.Ping(context.Background())
	require.Error(t, err)
	var fatal *apperrors.FatalStartupError
	assert.ErrorAs(t, err, &fatal)
}
