package news

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptoops/sentipipe/internal/broker/brokertest"
	"github.com/cryptoops/sentipipe/internal/domain"
)

type fakeParser struct {
	items map[string][]FeedItem
	err   map[string]error
}

func (f *fakeParser) Parse(ctx context.Context, url string) ([]FeedItem, error) {
	if err, ok := f.err[url]; ok {
		return nil, err
	}
	return f.items[url], nil
}

func newPoller(parser FeedParser, pub *brokertest.Fake, feeds []FeedSource) *Poller {
	return &Poller{
		Feeds:          feeds,
		Parser:         parser,
		Publisher:      pub,
		RecentSeen:     NewRecentSeen(10000, 8000),
		InterFeedSleep: 0,
	}
}

func TestRunOnce_PublishesRelevantArticle(t *testing.T) {
	parser := &fakeParser{items: map[string][]FeedItem{
		"feed1": {{Title: "Bitcoin surges to new highs", Link: "https://coindesk.com/x", Content: "bitcoin rallies hard"}},
	}}
	pub := brokertest.New()
	p := newPoller(parser, pub, []FeedSource{{Source: "coindesk", URL: "feed1"}})

	stats := p.RunOnce(context.Background())

	assert.Equal(t, 1, stats.Published)
	msgs := pub.ForQueue(queueRawNews)
	require.Len(t, msgs, 1)

	var decoded domain.RawNewsMessage
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &decoded))
	assert.Equal(t, "coindesk", decoded.Source)
	assert.Equal(t, domain.ArticleID("Bitcoin surges to new highs", "https://coindesk.com/x"), decoded.ArticleID)
}

func TestRunOnce_DropsIrrelevantArticle(t *testing.T) {
	parser := &fakeParser{items: map[string][]FeedItem{
		"feed1": {{Title: "Local bakery wins award", Link: "https://coindesk.com/y", Content: "fresh bread every morning"}},
	}}
	pub := brokertest.New()
	p := newPoller(parser, pub, []FeedSource{{Source: "coindesk", URL: "feed1"}})

	stats := p.RunOnce(context.Background())

	assert.Equal(t, 0, stats.Published)
	assert.Equal(t, 1, stats.Irrelevant)
	assert.Empty(t, pub.Messages)
}

func TestRunOnce_DedupsWithinLifetime(t *testing.T) {
	item := FeedItem{Title: "Ethereum breaks out", Link: "https://coindesk.com/z", Content: "ethereum crypto rally"}
	parser := &fakeParser{items: map[string][]FeedItem{"feed1": {item}}}
	pub := brokertest.New()
	p := newPoller(parser, pub, []FeedSource{{Source: "coindesk", URL: "feed1"}})

	p.RunOnce(context.Background())
	stats2 := p.RunOnce(context.Background())

	assert.Equal(t, 1, stats2.Skipped)
	assert.Len(t, pub.Messages, 1, "no article_id should produce two RawNewsMessages")
}

func TestRunOnce_PublishFailureDoesNotMarkSeen(t *testing.T) {
	item := FeedItem{Title: "Solana rallies", Link: "https://coindesk.com/w", Content: "solana crypto news"}
	parser := &fakeParser{items: map[string][]FeedItem{"feed1": {item}}}
	pub := brokertest.New()
	pub.PublishErr = errors.New("broker down")
	p := newPoller(parser, pub, []FeedSource{{Source: "coindesk", URL: "feed1"}})

	stats := p.RunOnce(context.Background())
	assert.Equal(t, 0, stats.Published)
	assert.False(t, p.RecentSeen.Contains(domain.ArticleID(item.Title, item.Link)))
}

func TestRunOnce_OneFeedFailureDoesNotStopOthers(t *testing.T) {
	parser := &fakeParser{
		items: map[string][]FeedItem{
			"feed2": {{Title: "Bitcoin price update", Link: "https://decrypt.co/a", Content: "bitcoin news today"}},
		},
		err: map[string]error{"feed1": errors.New("network timeout")},
	}
	pub := brokertest.New()
	p := newPoller(parser, pub, []FeedSource{
		{Source: "coindesk", URL: "feed1"},
		{Source: "decrypt", URL: "feed2"},
	})

	stats := p.RunOnce(context.Background())
	assert.Equal(t, 1, stats.FeedErrors)
	assert.Equal(t, 1, stats.Published)
}

func TestRecentSeen_PrunesToLowWater(t *testing.T) {
	rs := NewRecentSeen(10, 5)
	for i := 0; i < 12; i++ {
		rs.Insert(string(rune('a' + i)))
	}
	assert.LessOrEqual(t, rs.Len(), 10)
}
