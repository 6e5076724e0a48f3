package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cryptoops/sentipipe/internal/domain"
)

// PairOverlay lets an operator override per-pair thresholds without
// redeploying, via an optional YAML file. A missing file is not an error —
// every service falls back to its profile/env defaults.
type PairOverlay struct {
	Pairs map[string]PairThresholds `yaml:"pairs"`
}

// PairThresholds mirrors strategy.Thresholds' tunable fields for one pair.
// Nil (unset) fields mean "use the process-wide default"; an explicit 0 in
// the file overrides the default with zero.
type PairThresholds struct {
	SentimentBuy  *float64 `yaml:"sentiment_buy"`
	SentimentSell *float64 `yaml:"sentiment_sell"`
	RSILow        *float64 `yaml:"rsi_low"`
	RSIHigh       *float64 `yaml:"rsi_high"`
	StaleHours    *float64 `yaml:"stale_hours"`
}

// LoadPairOverlay reads path as YAML if it exists, validating every pair key
// matches domain.PairPattern. A missing file returns a zero-value overlay
// and no error: no file means use defaults.
func LoadPairOverlay(path string) (PairOverlay, error) {
	if path == "" {
		return PairOverlay{}, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return PairOverlay{}, nil
	}
	if err != nil {
		return PairOverlay{}, fmt.Errorf("read pair overlay %s: %w", path, err)
	}

	var overlay PairOverlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return PairOverlay{}, fmt.Errorf("parse pair overlay %s: %w", path, err)
	}
	for pair := range overlay.Pairs {
		if !domain.IsValidPair(pair) {
			return PairOverlay{}, fmt.Errorf("pair overlay %s: invalid pair key %q", path, pair)
		}
	}
	return overlay, nil
}

// ForPair merges t onto the process-wide defaults, returning a copy with
// only the operator-overridden fields changed.
func (o PairOverlay) ForPair(pair string, sentimentBuy, sentimentSell, rsiLow, rsiHigh, staleHours float64) (float64, float64, float64, float64, float64) {
	t, ok := o.Pairs[pair]
	if !ok {
		return sentimentBuy, sentimentSell, rsiLow, rsiHigh, staleHours
	}
	if t.SentimentBuy != nil {
		sentimentBuy = *t.SentimentBuy
	}
	if t.SentimentSell != nil {
		sentimentSell = *t.SentimentSell
	}
	if t.RSILow != nil {
		rsiLow = *t.RSILow
	}
	if t.RSIHigh != nil {
		rsiHigh = *t.RSIHigh
	}
	if t.StaleHours != nil {
		staleHours = *t.StaleHours
	}
	return sentimentBuy, sentimentSell, rsiLow, rsiHigh, staleHours
}
