package sentiment

import (
	"errors"
	"regexp"
)

// ErrNoSignal is returned when the keyword scorer finds no bullish or
// bearish vocabulary at all, meaning it has nothing to score on.
var ErrNoSignal = errors.New("keyword fallback: no sentiment vocabulary matched")

var bullishVocabulary = []string{
	"surge", "surges", "rally", "rallies", "bullish", "soar", "soars",
	"breakout", "gain", "gains", "record high", "all-time high", "adoption",
	"upgrade", "partnership", "approval", "institutional", "inflow",
}

var bearishVocabulary = []string{
	"crash", "crashes", "plunge", "plunges", "bearish", "selloff", "sell-off",
	"dump", "hack", "exploit", "lawsuit", "ban", "bankruptcy", "liquidation",
	"outflow", "downgrade", "fraud",
}

var bullishPatterns = compileVocabulary(bullishVocabulary)
var bearishPatterns = compileVocabulary(bearishVocabulary)

func compileVocabulary(words []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		out = append(out, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(w)+`\b`))
	}
	return out
}

func countMatches(patterns []*regexp.Regexp, text string) int {
	count := 0
	for _, p := range patterns {
		count += len(p.FindAllStringIndex(text, -1))
	}
	return count
}

// KeywordFallback is the secondary, deterministic oracle invoked when the
// primary model is unavailable: score = (b-r)/(b+r+1), clamped to [-1,1].
// It returns ErrNoSignal when the text contains no recognized vocabulary at
// all, so the processor's cascade can fall through to a neutral default
// instead of publishing a meaningless zero.
type KeywordFallback struct{}

func (KeywordFallback) Name() string { return "fallback_keywords" }

func (KeywordFallback) Analyze(text string) (float64, error) {
	b := float64(countMatches(bullishPatterns, text))
	r := float64(countMatches(bearishPatterns, text))
	if b == 0 && r == 0 {
		return 0, ErrNoSignal
	}
	score := (b - r) / (b + r + 1)
	if score > 1.0 {
		return 1.0, nil
	}
	if score < -1.0 {
		return -1.0, nil
	}
	return score, nil
}
