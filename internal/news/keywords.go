package news

import (
	"regexp"
	"strings"
)

// cryptoKeywords is the closed relevance vocabulary: an article is only
// published if the combined title+summary+content contains at least one
// of these, case-insensitively, as a whole word.
var cryptoKeywords = []string{
	"bitcoin", "btc", "ethereum", "eth", "crypto", "cryptocurrency",
	"blockchain", "altcoin", "defi", "nft", "stablecoin", "token",
	"binance", "coinbase", "kraken", "web3", "satoshi", "mining",
	"wallet", "exchange", "xrp", "solana", "sol", "cardano", "ada",
	"dogecoin", "doge", "usdt", "usdc",
}

var cryptoKeywordRegexes = compileWordBoundary(cryptoKeywords)

func compileWordBoundary(words []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		out[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`)
	}
	return out
}

// IsCryptoRelevant reports whether text contains any whole-word match from
// the crypto keyword vocabulary.
func IsCryptoRelevant(text string) bool {
	for _, re := range cryptoKeywordRegexes {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// stripHTML renders plain text from an HTML fragment, collapsing
// whitespace. Used to clean RSS summaries/content before keyword matching
// and publication.
func stripHTML(s string) string {
	text, err := htmlToText(s)
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(text)
}
