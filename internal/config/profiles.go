package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/cryptoops/sentipipe/internal/domain"
)

func portValidator(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("not an integer")
	}
	if n < 1 || n > 65535 {
		return fmt.Errorf("must be between 1 and 65535, got %d", n)
	}
	return nil
}

func minLen(n int) func(string) error {
	return func(s string) error {
		if len(s) < n {
			return fmt.Errorf("must be at least %d characters", n)
		}
		return nil
	}
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fmt.Errorf("must be a positive integer")
	}
	return nil
}

func nonNegativeInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fmt.Errorf("must be a non-negative integer")
	}
	return nil
}

func tradingPairsValidator(s string) error {
	valid, _ := domain.ParsePairs(s)
	if len(valid) == 0 {
		return fmt.Errorf("no valid BASE/QUOTE pairs found in %q", s)
	}
	return nil
}

// BrokerProfile is required by every service: the message broker client
// connects before anything else happens.
var BrokerProfile = Profile{
	{Name: "BROKER_HOST", Required: true, Validate: notEmpty},
	{Name: "BROKER_PORT", Required: true, Default: "5672", Validate: portValidator},
	{Name: "BROKER_USER", Required: true, Validate: notEmpty, Sensitive: true},
	{Name: "BROKER_PASS", Required: true, Validate: minLen(8), Sensitive: true},
}

// CacheProfile is required by the cacher and the strategy join.
var CacheProfile = Profile{
	{Name: "CACHE_HOST", Required: true, Validate: notEmpty},
	{Name: "CACHE_PORT", Required: true, Default: "6379", Validate: portValidator},
}

// OracleProfile is required by the sentiment processor.
var OracleProfile = Profile{
	{Name: "ORACLE_PRIMARY_ENDPOINT", Required: true, Validate: notEmpty},
	{Name: "ORACLE_PRIMARY_MODEL", Required: true, Default: "finbert", Validate: notEmpty},
	{Name: "ORACLE_TIMEOUT_MS", Required: false, Default: "3000", Validate: positiveInt},
}

// PipelineProfile is shared configuration consumed by several services.
var PipelineProfile = Profile{
	{Name: "TRADING_PAIRS", Required: true, Validate: tradingPairsValidator},
	{Name: "CANDLE_TIMEFRAME", Required: false, Default: "1m", Validate: notEmpty},
	{Name: "NEWS_POLL_INTERVAL", Required: false, Default: "300", Validate: positiveInt},
	{Name: "SIGNAL_CACHE_TTL", Required: false, Default: "0", Validate: nonNegativeInt},
	{Name: "SENTIMENT_STALE_HOURS", Required: false, Default: "4", Validate: positiveInt},
	{Name: "FANOUT_GENERAL_CRYPTO", Required: false, Default: "false"},
}

// NewsProfile is required by the news poller.
var NewsProfile = Profile{
	{Name: "NEWS_FEEDS", Required: false, Default: defaultNewsFeeds, Validate: notEmpty},
}

// MetricsProfile is shared by every service exposing a /metrics endpoint.
var MetricsProfile = Profile{
	{Name: "METRICS_PORT", Required: false, Default: "9100", Validate: portValidator},
}

// defaultNewsFeeds pairs every whitelisted source (schema.AllowedNewsDomains)
// with its public RSS endpoint, so the poller has something to fetch out of
// the box when an operator hasn't customized NEWS_FEEDS.
const defaultNewsFeeds = "coindesk=https://www.coindesk.com/arc/outboundfeeds/rss/," +
	"cointelegraph=https://cointelegraph.com/rss," +
	"decrypt=https://decrypt.co/feed," +
	"theblock=https://www.theblock.co/rss.xml," +
	"bitcoinmagazine=https://bitcoinmagazine.com/feed"

// ExchangeProfile is required by the market streamer unless DRY_RUN=true.
func ExchangeProfile() Profile {
	return Profile{
		{Name: "EXCHANGE_API_KEY", Required: !dryRun(), Validate: notEmpty, Sensitive: true},
		{Name: "EXCHANGE_API_SECRET", Required: !dryRun(), Validate: minLen(8), Sensitive: true},
		{Name: "EXCHANGE_WS_URL", Required: true, Default: "wss://ws.kraken.com", Validate: notEmpty},
		{Name: "DRY_RUN", Required: false, Default: "false"},
	}
}

func dryRun() bool {
	b, _ := strconv.ParseBool(os.Getenv("DRY_RUN"))
	return b
}
