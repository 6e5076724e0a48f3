package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Article is a news item pulled from a feed. It is never mutated once
// constructed; the poller publishes it as a RawNewsMessage and discards its
// own copy.
type Article struct {
	ArticleID   string    `json:"article_id"`
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Content     string    `json:"content"`
	PublishedAt time.Time `json:"published_at"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// ArticleID derives the stable fingerprint of an article from title||url
// as a sha256 hex digest.
func ArticleID(title, url string) string {
	sum := sha256.Sum256([]byte(title + "||" + url))
	return hex.EncodeToString(sum[:])
}

// RawNewsMessage is the wire payload published to the raw_news_data queue.
type RawNewsMessage struct {
	Timestamp time.Time `json:"timestamp"`
	ArticleID string    `json:"article_id"`
	Source    string    `json:"source"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Content   string    `json:"content"`
}

// Candle is one OHLCV bar for a pair/timeframe.
type Candle struct {
	Pair        string  `json:"pair"`
	Timeframe   string  `json:"timeframe"`
	TimestampMS int64   `json:"timestamp_ms"`
	Open        float64 `json:"open"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Close       float64 `json:"close"`
	Volume      float64 `json:"volume"`
}

// RawMarketDataMessage is the wire payload published to raw_market_data.
type RawMarketDataMessage struct {
	Timestamp   time.Time `json:"timestamp"`
	Pair        string    `json:"pair"`
	Timeframe   string    `json:"timeframe"`
	TimestampMS int64     `json:"timestamp_ms"`
	Open        float64   `json:"open"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Close       float64   `json:"close"`
	Volume      float64   `json:"volume"`
}

func (m RawMarketDataMessage) ToCandle() Candle {
	return Candle{
		Pair:        m.Pair,
		Timeframe:   m.Timeframe,
		TimestampMS: m.TimestampMS,
		Open:        m.Open,
		High:        m.High,
		Low:         m.Low,
		Close:       m.Close,
		Volume:      m.Volume,
	}
}

// SentimentSignalMessage is the wire payload published to
// sentiment_signals_queue: the analysis of one article against one matched
// pair.
type SentimentSignalMessage struct {
	Timestamp    time.Time `json:"timestamp"`
	Pair         string    `json:"pair"`
	Score        float64   `json:"score"`
	Label        Label     `json:"label"`
	Headline     string    `json:"headline"`
	Source       string    `json:"source"`
	ArticleID    string    `json:"article_id"`
	Model        string    `json:"model"`
	Confidence   float64   `json:"confidence,omitempty"`
	FallbackUsed bool      `json:"fallback_used"`
	AnalyzedAt   time.Time `json:"analyzed_at"`
}

// CachedPairSignal is the decoded form of the sentiment:{pair} hash.
type CachedPairSignal struct {
	Pair      string    `json:"-"`
	Score     float64   `json:"score"`
	Label     Label     `json:"label"`
	Timestamp time.Time `json:"timestamp"`
	Headline  string    `json:"headline"`
	Source    string    `json:"source"`
	ArticleID string    `json:"article_id"`
	Model     string    `json:"model,omitempty"`
}

// TruncateHeadline enforces the cache-layer cap on headline length.
func TruncateHeadline(headline string, max int) string {
	r := []rune(headline)
	if len(r) <= max {
		return headline
	}
	return string(r[:max])
}
