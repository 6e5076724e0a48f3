// Package strategy implements the strategy join: on each candle, read the
// latest cached signal for its pair, neutralize it if stale, merge with
// technical indicators, and emit entry/exit flags.
package strategy

import (
	"context"
	"strconv"
	"time"

	"github.com/cryptoops/sentipipe/internal/cache"
	"github.com/cryptoops/sentipipe/internal/domain"
	"github.com/cryptoops/sentipipe/internal/indicators"
)

// Thresholds configures the entry/exit rule.
type Thresholds struct {
	SentimentBuy  float64
	SentimentSell float64
	RSILow        float64
	RSIHigh       float64
	StaleAfter    time.Duration
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		SentimentBuy:  0.3,
		SentimentSell: -0.3,
		RSILow:        30,
		RSIHigh:       70,
		StaleAfter:    4 * time.Hour,
	}
}

// IndicatorSet is the merged technical picture for one candle, computed
// strictly from candles up to and including it.
type IndicatorSet struct {
	EMAShort   float64
	EMALong    float64
	RSI        indicators.RSIResult
	MACD       indicators.MACDResult
	Bollinger  indicators.BollingerBands
	VolumeMean float64
	ATR        indicators.ATRResult
}

// Decision is the output of one join evaluation.
type Decision struct {
	Pair           string
	Score          float64
	ScoreNeutered  bool
	Entry          bool
	Exit           bool
	Indicators     IndicatorSet
}

// Join reads cached sentiment and merges it with indicators computed from
// candle history.
type Join struct {
	Cache      cache.Interface
	Thresholds Thresholds
}

func New(c cache.Interface, t Thresholds) *Join {
	return &Join{Cache: c, Thresholds: t}
}

// latestSignal loads sentiment:{pair} and decodes it into a
// domain.CachedPairSignal, reporting whether a usable signal was found.
func (j *Join) latestSignal(ctx context.Context, pair string) (domain.CachedPairSignal, bool) {
	fields, err := j.Cache.HGetAll(ctx, domain.SentimentKey(pair))
	if err != nil || len(fields) == 0 {
		return domain.CachedPairSignal{}, false
	}

	ts, err := time.Parse(time.RFC3339Nano, fields["timestamp"])
	if err != nil {
		return domain.CachedPairSignal{}, false
	}

	score, err := strconv.ParseFloat(fields["score"], 64)
	if err != nil {
		return domain.CachedPairSignal{}, false
	}

	return domain.CachedPairSignal{
		Pair:      pair,
		Score:     score,
		Label:     domain.Label(fields["label"]),
		Timestamp: ts,
		Headline:  fields["headline"],
		Source:    fields["source"],
		ArticleID: fields["article_id"],
		Model:     fields["model"],
	}, true
}

// BuildIndicators computes the full merged indicator set from candle
// history, using 12/26-period EMAs, the standard 12/26/9 MACD, 14-period
// RSI/ATR, and 20-period Bollinger/volume-average windows.
func BuildIndicators(bars []indicators.PriceBar, closes, volumes []float64) IndicatorSet {
	emaShort, _ := indicators.EMA(closes, 12)
	emaLong, _ := indicators.EMA(closes, 26)
	volMean, _ := indicators.VolumeAverage(volumes, 20)
	return IndicatorSet{
		EMAShort:   emaShort,
		EMALong:    emaLong,
		RSI:        indicators.RSI(closes, 14),
		MACD:       indicators.MACD(closes, 12, 26, 9),
		Bollinger:  indicators.Bollinger(closes, 20, 2.0),
		VolumeMean: volMean,
		ATR:        indicators.ATR(bars, 14),
	}
}

// Evaluate performs one join: look up the signal, neutralize if stale,
// merge with ind, and compute entry/exit flags. It also writes
// strategy_state:{pair} so external monitor tooling can observe the merged
// snapshot without re-deriving it.
func (j *Join) Evaluate(ctx context.Context, pair string, candleTimestamp time.Time, ind IndicatorSet, closePrice, volume float64) Decision {
	score := 0.0
	neutered := true
	if sig, ok := j.latestSignal(ctx, pair); ok {
		age := candleTimestamp.Sub(sig.Timestamp)
		if age >= 0 && age <= j.Thresholds.StaleAfter {
			score = sig.Score
			neutered = false
		}
	}

	entry := score > j.Thresholds.SentimentBuy &&
		ind.EMAShort > ind.EMALong &&
		ind.RSI.Value > j.Thresholds.RSILow && ind.RSI.Value < j.Thresholds.RSIHigh &&
		ind.MACD.IsValid && ind.MACD.MACD > ind.MACD.Signal &&
		volume > ind.VolumeMean &&
		closePrice < ind.Bollinger.Upper

	exit := score < j.Thresholds.SentimentSell ||
		(ind.EMAShort < ind.EMALong && ind.RSI.Value > j.Thresholds.RSIHigh) ||
		(ind.MACD.IsValid && ind.MACD.MACD < ind.MACD.Signal)

	decision := Decision{Pair: pair, Score: score, ScoreNeutered: neutered, Entry: entry, Exit: exit, Indicators: ind}

	_ = j.Cache.HSet(ctx, domain.StrategyStateKey(pair), map[string]interface{}{
		"score":        score,
		"entry":        entry,
		"exit":         exit,
		"ema_short":    ind.EMAShort,
		"ema_long":     ind.EMALong,
		"rsi":          ind.RSI.Value,
		"macd":         ind.MACD.MACD,
		"macd_signal":  ind.MACD.Signal,
		"updated_at":   candleTimestamp.Format(time.RFC3339Nano),
	}, 0)

	return decision
}

// ConfirmEntry re-reads the current cached signal at trade time and rejects
// the entry if the score has since dropped below threshold between the
// join's decision and the caller actually acting on it.
func (j *Join) ConfirmEntry(ctx context.Context, pair string) bool {
	sig, ok := j.latestSignal(ctx, pair)
	if !ok {
		return false
	}
	return sig.Score > j.Thresholds.SentimentBuy
}
