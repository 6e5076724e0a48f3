package domain

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidPair(t *testing.T) {
	assert.True(t, IsValidPair("BTC/USDT"))
	assert.True(t, IsValidPair("XBT/USD"))
	assert.False(t, IsValidPair("btc/usdt"))
	assert.False(t, IsValidPair("BTC-USDT"))
	assert.False(t, IsValidPair("B/USDT"))
	assert.False(t, IsValidPair("BTCUSDT"))
}

func TestParsePairs(t *testing.T) {
	valid, invalid := ParsePairs("BTC/USDT, eth/usdt , XRP/USD,bad,,SOL/USDT")
	assert.Equal(t, []string{"BTC/USDT", "ETH/USDT", "XRP/USD", "SOL/USDT"}, valid)
	assert.Equal(t, []string{"BAD"}, invalid)
}

func TestParsePairs_FuzzMatchesRegex(t *testing.T) {
	alphabet := "ABCDEFGHIJKLMNOPQRSTUVWXYZabc/-123 "
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		n := r.Intn(12)
		b := make([]byte, n)
		for j := range b {
			b[j] = alphabet[r.Intn(len(alphabet))]
		}
		s := string(b)
		valid, _ := ParsePairs(s)
		normalized := strings.ToUpper(strings.TrimSpace(s))
		want := PairPattern.MatchString(normalized)
		if want {
			assert.Contains(t, valid, normalized, "input %q", s)
		}
	}
}

func TestBaseCurrency(t *testing.T) {
	assert.Equal(t, "BTC", BaseCurrency("BTC/USDT"))
}

func TestSentimentKeyAndHistoryKey(t *testing.T) {
	assert.Equal(t, "sentiment:BTC/USDT", SentimentKey("BTC/USDT"))
	assert.Equal(t, "sentiment_history:BTC/USDT", HistoryKey("BTC/USDT"))
}
