// Package news implements the news poller: periodic multi-feed RSS pull,
// HTML stripping, dedup by stable article hash, crypto-keyword relevance
// filtering, and publication to raw_news_data.
package news

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/cryptoops/sentipipe/internal/broker"
	"github.com/cryptoops/sentipipe/internal/domain"
)

// FeedItem is a normalized entry from any feed parser implementation.
type FeedItem struct {
	Title     string
	Link      string
	Summary   string
	Content   string
	Published time.Time
}

// FeedSource names one configured feed and the whitelist source it belongs
// to for URL/domain agreement at ingest.
type FeedSource struct {
	Source string
	URL    string
}

// FeedParser fetches and parses one feed URL into normalized items. The
// production implementation wraps gofeed; tests inject a fake.
type FeedParser interface {
	Parse(ctx context.Context, url string) ([]FeedItem, error)
}

const (
	queueRawNews     = "raw_news_data"
	summaryMaxChars  = 500
	contentMaxChars  = 2000
	interFeedDelay   = 1 * time.Second
)

// Poller runs the periodic multi-feed ingestion loop.
type Poller struct {
	Feeds        []FeedSource
	Parser       FeedParser
	Publisher    broker.Publisher
	RecentSeen   *RecentSeen
	PollInterval time.Duration
	InterFeedSleep time.Duration // overridable in tests; defaults to interFeedDelay

	// Pacer throttles inter-feed pacing instead of the fixed sleep when
	// set, so one slow feed's backlog doesn't stretch every later feed's
	// wait in the same cycle. Production callers construct it with
	// rate.NewLimiter(rate.Every(interFeedDelay), 1); nil falls back to
	// the fixed sleep.
	Pacer *rate.Limiter

	cyclesRun int
}

// CycleStats summarizes one pass over every configured feed.
type CycleStats struct {
	Parsed    int
	Published int
	Skipped   int
	Irrelevant int
	FeedErrors int
}

// Run polls every configured feed every PollInterval until ctx is
// cancelled.
func (p *Poller) Run(ctx context.Context) error {
	interval := p.PollInterval
	if interval <= 0 {
		interval = 300 * time.Second
	}
	for {
		stats := p.RunOnce(ctx)
		log.Info().
			Int("parsed", stats.Parsed).
			Int("published", stats.Published).
			Int("skipped_seen", stats.Skipped).
			Int("skipped_irrelevant", stats.Irrelevant).
			Int("feed_errors", stats.FeedErrors).
			Msg("news poll cycle complete")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}

// RunOnce performs a single pass over every configured feed, sleeping
// politely between feeds. A feed-level parse failure is logged and does
// not stop the cycle.
func (p *Poller) RunOnce(ctx context.Context) CycleStats {
	var total CycleStats
	sleep := p.InterFeedSleep
	if sleep == 0 {
		sleep = interFeedDelay
	}

	for i, feed := range p.Feeds {
		stats, err := p.processFeed(ctx, feed)
		total.Parsed += stats.Parsed
		total.Published += stats.Published
		total.Skipped += stats.Skipped
		total.Irrelevant += stats.Irrelevant
		if err != nil {
			total.FeedErrors++
			log.Warn().Err(err).Str("feed", feed.URL).Msg("feed poll failed, continuing with remaining feeds")
		}
		if i < len(p.Feeds)-1 && sleep > 0 {
			if p.Pacer != nil {
				if err := p.Pacer.Wait(ctx); err != nil {
					return total
				}
			} else {
				select {
				case <-ctx.Done():
					return total
				case <-time.After(sleep):
				}
			}
		}
	}
	p.cyclesRun++
	return total
}

func (p *Poller) processFeed(ctx context.Context, feed FeedSource) (CycleStats, error) {
	var stats CycleStats

	items, err := p.Parser.Parse(ctx, feed.URL)
	if err != nil {
		return stats, fmt.Errorf("parse feed %s: %w", feed.URL, err)
	}
	stats.Parsed = len(items)

	for _, item := range items {
		id := domain.ArticleID(item.Title, item.Link)
		if p.RecentSeen.Contains(id) {
			stats.Skipped++
			continue
		}

		title := stripHTML(item.Title)
		summary := truncateRunes(stripHTML(item.Summary), summaryMaxChars)
		content := truncateRunes(stripHTML(item.Content), contentMaxChars)
		if content == "" {
			content = summary
		}

		combined := title + " " + summary + " " + content
		if !IsCryptoRelevant(combined) {
			stats.Irrelevant++
			continue
		}

		published := item.Published
		if published.IsZero() {
			published = time.Now().UTC()
		}

		msg := domain.RawNewsMessage{
			Timestamp: time.Now().UTC(),
			ArticleID: id,
			Source:    feed.Source,
			Title:     title,
			URL:       item.Link,
			Content:   content,
		}

		if err := p.Publisher.Publish(ctx, queueRawNews, msg, true); err != nil {
			// Per spec: do NOT insert into recent_seen on publish
			// failure, so the next cycle retries this article.
			log.Error().Err(err).Str("article_id", id).Msg("failed to publish article, will retry next cycle")
			continue
		}
		p.RecentSeen.Insert(id)
		stats.Published++
	}

	return stats, nil
}
