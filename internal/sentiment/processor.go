package sentiment

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/cryptoops/sentipipe/internal/apperrors"
	"github.com/cryptoops/sentipipe/internal/broker"
	"github.com/cryptoops/sentipipe/internal/domain"
)

const queueSentimentSignals = "sentiment_signals_queue"

const maxOracleInputChars = 500

// Processor runs the sentiment oracle cascade and fans matched signals out
// to every trading pair an article is relevant to.
type Processor struct {
	Primary   Oracle
	Fallback  KeywordFallback
	Matcher   *PairMatcher
	Publisher broker.Publisher
	Breaker   *gobreaker.CircuitBreaker
}

// NewProcessor wraps the primary oracle in a circuit breaker: it trips
// after 3 consecutive failures or a >5% failure rate once at least 20
// requests have been seen, half-opens after a minute. When the breaker is
// open the cascade falls straight through to the secondary oracle without
// attempting the call.
func NewProcessor(primary Oracle, matcher *PairMatcher, pub broker.Publisher) *Processor {
	settings := gobreaker.Settings{
		Name:     "oracle:" + primary.Name(),
		Interval: 60 * time.Second,
		Timeout:  60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= 3 {
				return true
			}
			if counts.Requests < 20 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) > 0.05
		},
	}
	return &Processor{
		Primary:   primary,
		Matcher:   matcher,
		Publisher: pub,
		Breaker:   gobreaker.NewCircuitBreaker(settings),
	}
}

// cascadeResult carries the score and the model tag that produced it.
type cascadeResult struct {
	score float64
	model string
}

// buildOracleInput truncates content (not the combined text) to
// maxOracleInputChars before prepending the full headline, so a long title
// never eats into the content budget the primary oracle gets to see.
func buildOracleInput(title, content string) string {
	if r := []rune(content); len(r) > maxOracleInputChars {
		content = string(r[:maxOracleInputChars])
	}
	return title + ". " + content
}

// analyze runs the oracle cascade: primary (breaker-guarded) → secondary
// deterministic keyword scorer → neutral default. It never returns an error;
// every failure mode is contained and always yields a usable cascadeResult.
func (p *Processor) analyze(ctx context.Context, text, input string) cascadeResult {
	raw, err := p.Breaker.Execute(func() (interface{}, error) {
		return p.Primary.Analyze(ctx, input)
	})
	if err == nil {
		return cascadeResult{score: domain.ClampScore(raw.(float64)), model: p.Primary.Name()}
	}

	oracleErr := &apperrors.OracleError{Oracle: p.Primary.Name(), Cause: err}
	log.Warn().Err(oracleErr).Msg("primary oracle unavailable, falling through to keyword scorer")

	score, fbErr := p.Fallback.Analyze(text)
	if fbErr == nil {
		return cascadeResult{score: domain.ClampScore(score), model: domain.ModelFallbackKeywords}
	}

	log.Warn().Err(fbErr).Msg("keyword scorer found no signal, falling through to neutral default")
	return cascadeResult{score: 0, model: domain.ModelNeutralDefault}
}

// Process consumes one RawNewsMessage and publishes one SentimentSignalMessage
// per matched pair. It is intended to be wrapped by
// schema.SafeMessageConsumer so malformed input never reaches here.
func (p *Processor) Process(ctx context.Context, msg domain.RawNewsMessage) error {
	text := msg.Title + " " + msg.Content
	result := p.analyze(ctx, text, buildOracleInput(msg.Title, msg.Content))
	label := domain.ClassifyScore(result.score)

	pairs := p.Matcher.Match(text)
	if len(pairs) == 0 {
		log.Debug().Str("article_id", msg.ArticleID).Msg("article matched no configured pair, dropping")
		return nil
	}

	now := time.Now().UTC()
	for _, pair := range pairs {
		signal := domain.SentimentSignalMessage{
			Timestamp:    now,
			Pair:         pair,
			Score:        result.score,
			Label:        label,
			Headline:     msg.Title,
			Source:       msg.Source,
			ArticleID:    msg.ArticleID,
			Model:        result.model,
			FallbackUsed: result.model != p.Primary.Name(),
			AnalyzedAt:   now,
		}
		if err := p.Publisher.Publish(ctx, queueSentimentSignals, signal, true); err != nil {
			return &apperrors.TransientBrokerError{Op: "publish sentiment signal", Cause: err}
		}
	}
	return nil
}
