// Package schema implements the typed payload schemas and domain
// whitelists: RawNewsMessage, RawMarketDataMessage, and
// SentimentSignalMessage validation, plus the safe-consumer decorator that
// decodes, validates, and routes failures per the broker's poison-pill
// policy.
package schema

import "strings"

// MinPrice and MaxPrice bound every OHLC field to a sane order of magnitude.
const (
	MinPrice = 1e-6
	MaxPrice = 1e6
)

// AllowedNewsDomains maps a lowercased source name to the domains its
// articles are permitted to link to. An empty slice for a known source
// rejects every URL for that source.
var AllowedNewsDomains = map[string][]string{
	"coindesk":     {"coindesk.com", "www.coindesk.com"},
	"cointelegraph": {"cointelegraph.com", "www.cointelegraph.com"},
	"decrypt":      {"decrypt.co", "www.decrypt.co"},
	"theblock":     {"theblock.co", "www.theblock.co"},
	"bitcoinmagazine": {"bitcoinmagazine.com", "www.bitcoinmagazine.com"},
}

// AllowedModels is the closed whitelist of sentiment model identifiers
// recognized by SentimentSignalMessage validation, beyond the two fallback
// tags always accepted (fallback_keywords, neutral_default).
var AllowedModels = map[string]bool{
	"finbert":            true,
	"finbert-tone":       true,
	"distilbert-finance": true,
	"fallback_keywords":  true,
	"neutral_default":    true,
}

// IsAllowedSource reports whether source (case-insensitive) is a known feed
// source with a configured domain whitelist entry.
func IsAllowedSource(source string) bool {
	_, ok := AllowedNewsDomains[strings.ToLower(source)]
	return ok
}

// DomainAllowed reports whether host belongs to the whitelist entry for
// source. An unknown source or an empty whitelist entry always rejects.
func DomainAllowed(source, host string) bool {
	domains, ok := AllowedNewsDomains[strings.ToLower(source)]
	if !ok {
		return false
	}
	host = strings.ToLower(host)
	for _, d := range domains {
		if host == d {
			return true
		}
	}
	return false
}
