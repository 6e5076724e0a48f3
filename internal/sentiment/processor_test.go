package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptoops/sentipipe/internal/broker/brokertest"
	"github.com/cryptoops/sentipipe/internal/domain"
	"github.com/cryptoops/sentipipe/internal/sentiment/sentimenttest"
)

func newTestProcessor(primary Oracle, pairs []string, fanout bool) (*Processor, *brokertest.Fake) {
	pub := brokertest.New()
	matcher := NewPairMatcher(pairs, fanout)
	return NewProcessor(primary, matcher, pub), pub
}

func TestProcess_PrimaryOracleSuccess(t *testing.T) {
	primary := &sentimenttest.FakeOracle{NameValue: "finbert", Scores: []float64{0.8}}
	p, pub := newTestProcessor(primary, []string{"BTC/USDT"}, false)

	msg := domain.RawNewsMessage{ArticleID: "a1", Source: "coindesk", Title: "Bitcoin surges to new highs", Content: "bitcoin rallies"}
	require.NoError(t, p.Process(context.Background(), msg))

	msgs := pub.ForQueue(queueSentimentSignals)
	require.Len(t, msgs, 1)
	var sig domain.SentimentSignalMessage
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &sig))
	assert.Equal(t, 0.8, sig.Score)
	assert.Equal(t, domain.LabelVeryBullish, sig.Label)
	assert.Equal(t, "finbert", sig.Model)
	assert.False(t, sig.FallbackUsed)
}

func TestProcess_PrimaryFailsFallsBackToKeywords(t *testing.T) {
	primary := &sentimenttest.FakeOracle{NameValue: "finbert", Errs: []error{errors.New("model unavailable")}}
	p, pub := newTestProcessor(primary, []string{"BTC/USDT"}, false)

	msg := domain.RawNewsMessage{ArticleID: "a2", Source: "coindesk", Title: "Bitcoin rallies on surge of institutional adoption", Content: "bitcoin gains"}
	require.NoError(t, p.Process(context.Background(), msg))

	msgs := pub.ForQueue(queueSentimentSignals)
	require.Len(t, msgs, 1)
	var sig domain.SentimentSignalMessage
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &sig))
	assert.Equal(t, domain.ModelFallbackKeywords, sig.Model)
	assert.True(t, sig.FallbackUsed)
	assert.GreaterOrEqual(t, sig.Score, -1.0)
	assert.LessOrEqual(t, sig.Score, 1.0)
}

func TestProcess_PrimaryAndKeywordFallbackBothFailYieldsNeutralDefault(t *testing.T) {
	primary := &sentimenttest.FakeOracle{NameValue: "finbert", Errs: []error{errors.New("model unavailable")}}
	p, pub := newTestProcessor(primary, []string{"BTC/USDT"}, false)

	msg := domain.RawNewsMessage{ArticleID: "a7", Source: "coindesk", Title: "Bitcoin update", Content: "The price of bitcoin did not change today"}
	require.NoError(t, p.Process(context.Background(), msg))

	msgs := pub.ForQueue(queueSentimentSignals)
	require.Len(t, msgs, 1)
	var sig domain.SentimentSignalMessage
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &sig))
	assert.Equal(t, domain.ModelNeutralDefault, sig.Model)
	assert.True(t, sig.FallbackUsed)
	assert.Equal(t, 0.0, sig.Score)
	assert.Equal(t, domain.LabelNeutral, sig.Label)
}

func TestProcess_NoMatchedPairDropsArticle(t *testing.T) {
	primary := &sentimenttest.FakeOracle{Scores: []float64{0.5}}
	p, pub := newTestProcessor(primary, []string{"ETH/USDT"}, false)

	msg := domain.RawNewsMessage{ArticleID: "a3", Source: "coindesk", Title: "Local elections held today", Content: "unrelated text"}
	require.NoError(t, p.Process(context.Background(), msg))
	assert.Empty(t, pub.Messages)
}

func TestProcess_GeneralCryptoFansOutToAllPairs(t *testing.T) {
	primary := &sentimenttest.FakeOracle{Scores: []float64{0.1}}
	p, pub := newTestProcessor(primary, []string{"BTC/USDT", "ETH/USDT"}, true)

	msg := domain.RawNewsMessage{ArticleID: "a4", Source: "coindesk", Title: "Broader crypto market dips amid macro uncertainty", Content: "blockchain sector"}
	require.NoError(t, p.Process(context.Background(), msg))

	assert.Len(t, pub.Messages, 2)
}

func TestProcess_GeneralCryptoFanoutDisabledByDefault(t *testing.T) {
	primary := &sentimenttest.FakeOracle{Scores: []float64{0.1}}
	p, pub := newTestProcessor(primary, []string{"BTC/USDT", "ETH/USDT"}, false)

	msg := domain.RawNewsMessage{ArticleID: "a5", Source: "coindesk", Title: "Broader crypto market dips amid macro uncertainty", Content: "blockchain sector"}
	require.NoError(t, p.Process(context.Background(), msg))

	assert.Empty(t, pub.Messages)
}

func TestProcess_PublishFailureSurfacesAsTransient(t *testing.T) {
	primary := &sentimenttest.FakeOracle{Scores: []float64{0.5}}
	matcher := NewPairMatcher([]string{"BTC/USDT"}, false)
	pub := brokertest.New()
	pub.PublishErr = errors.New("broker down")
	p := NewProcessor(primary, matcher, pub)

	msg := domain.RawNewsMessage{ArticleID: "a6", Source: "coindesk", Title: "Bitcoin update", Content: "bitcoin news"}
	err := p.Process(context.Background(), msg)
	require.Error(t, err)
}
