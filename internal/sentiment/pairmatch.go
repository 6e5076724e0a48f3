package sentiment

import (
	"regexp"
	"strings"

	"github.com/cryptoops/sentipipe/internal/domain"
)

var generalCryptoPattern = regexp.MustCompile(`(?i)\b(crypto|cryptocurrency|blockchain|market)\b`)

// aliases maps a base currency to extra keywords an article might use
// instead of the bare pair symbol.
var aliases = map[string][]string{
	"BTC":  {"bitcoin"},
	"ETH":  {"ethereum", "ether"},
	"SOL":  {"solana"},
	"ADA":  {"cardano"},
	"XRP":  {"ripple"},
	"DOGE": {"dogecoin"},
	"USDT": {"tether"},
	"USDC": {"usd coin"},
}

// PairMatcher matches an article's text against configured trading pairs.
type PairMatcher struct {
	pairs         []string
	patterns      map[string]*regexp.Regexp
	fanoutGeneral bool
}

// NewPairMatcher compiles one word-boundary regex per pair from the base
// currency plus any known aliases. Invalid pairs (already filtered by
// domain.ParsePairs at startup) are not expected here, but entries
// that fail domain.IsValidPair are skipped defensively.
func NewPairMatcher(pairs []string, fanoutGeneral bool) *PairMatcher {
	m := &PairMatcher{pairs: make([]string, 0, len(pairs)), patterns: make(map[string]*regexp.Regexp, len(pairs)), fanoutGeneral: fanoutGeneral}
	for _, pair := range pairs {
		if !domain.IsValidPair(pair) {
			continue
		}
		base := domain.BaseCurrency(pair)
		words := append([]string{base}, aliases[strings.ToUpper(base)]...)
		m.pairs = append(m.pairs, pair)
		m.patterns[pair] = compilePairPattern(words)
	}
	return m
}

func compilePairPattern(words []string) *regexp.Regexp {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = regexp.QuoteMeta(w)
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(parts, "|") + `)\b`)
}

// Match returns the pairs an article matches: specific keyword hits, or
// every configured pair when no specific pair matched but the general
// crypto vocabulary appears and fan-out is enabled.
func (m *PairMatcher) Match(text string) []string {
	var hit []string
	for _, pair := range m.pairs {
		if m.patterns[pair].MatchString(text) {
			hit = append(hit, pair)
		}
	}
	if len(hit) > 0 {
		return hit
	}
	if m.fanoutGeneral && generalCryptoPattern.MatchString(text) {
		out := make([]string, len(m.pairs))
		copy(out, m.pairs)
		return out
	}
	return nil
}

func (m *PairMatcher) Pairs() []string { return m.pairs }
