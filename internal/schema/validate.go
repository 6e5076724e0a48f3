package schema

import (
	"net/url"
	"strings"

	"github.com/cryptoops/sentipipe/internal/apperrors"
	"github.com/cryptoops/sentipipe/internal/domain"
)

func schemaErr(field, reason string) error {
	return &apperrors.SchemaError{Field: field, Reason: reason}
}

// ValidateRawNews enforces §3's Article invariants and §4.C's
// RawNewsMessage schema: source whitelist, title length, URL scheme +
// source/domain agreement, content length.
func ValidateRawNews(msg domain.RawNewsMessage) error {
	if msg.ArticleID == "" {
		return schemaErr("article_id", "missing")
	}
	source := strings.ToLower(msg.Source)
	if !IsAllowedSource(source) {
		return schemaErr("source", "not in whitelist: "+msg.Source)
	}
	if n := len(msg.Title); n < 1 || n > 500 {
		return schemaErr("title", "length must be between 1 and 500")
	}
	if n := len(msg.Content); n < 10 || n > 50000 {
		return schemaErr("content", "length must be between 10 and 50000")
	}

	u, err := url.Parse(msg.URL)
	if err != nil {
		return schemaErr("url", "unparseable")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return schemaErr("url", "scheme must be http or https")
	}
	if !DomainAllowed(source, u.Hostname()) {
		return schemaErr("url", "domain does not match source whitelist")
	}
	return nil
}

// ValidateRawMarketData enforces §3's Candle invariants and §4.C's
// RawMarketDataMessage schema: pair pattern, price sanity bounds,
// OHLC cross-field relationships, non-negative volume.
func ValidateRawMarketData(msg domain.RawMarketDataMessage) error {
	if !domain.IsValidPair(msg.Pair) {
		return schemaErr("pair", "does not match ^[A-Z]{3,5}/[A-Z]{3,5}$")
	}
	for field, v := range map[string]float64{
		"open": msg.Open, "high": msg.High, "low": msg.Low, "close": msg.Close,
	} {
		if v < MinPrice || v > MaxPrice {
			return schemaErr(field, "outside sanity bounds")
		}
	}
	if msg.Volume < 0 {
		return schemaErr("volume", "must be >= 0")
	}
	if msg.High < msg.Open || msg.High < msg.Close || msg.High < msg.Low {
		return schemaErr("high", "must be >= max(open, close, low)")
	}
	if msg.Low > msg.Open || msg.Low > msg.Close {
		return schemaErr("low", "must be <= min(open, close)")
	}
	return nil
}

// ValidateSentimentSignal enforces §4.C's SentimentSignalMessage schema:
// pair pattern, score range, headline length, optional confidence range,
// model whitelist.
func ValidateSentimentSignal(msg domain.SentimentSignalMessage) error {
	if !domain.IsValidPair(msg.Pair) {
		return schemaErr("pair", "does not match ^[A-Z]{3,5}/[A-Z]{3,5}$")
	}
	if msg.Score < -1.0 || msg.Score > 1.0 {
		return schemaErr("score", "must be in [-1, 1]")
	}
	if n := len(msg.Headline); n < 1 || n > 500 {
		return schemaErr("headline", "length must be between 1 and 500")
	}
	if msg.Confidence != 0 && (msg.Confidence < 0 || msg.Confidence > 1) {
		return schemaErr("confidence", "must be in [0, 1]")
	}
	if msg.Model != "" && !AllowedModels[msg.Model] {
		return schemaErr("model", "not in whitelist: "+msg.Model)
	}
	return nil
}
