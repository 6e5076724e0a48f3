package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPairMatcher_MatchesBaseSymbolAndAlias(t *testing.T) {
	m := NewPairMatcher([]string{"BTC/USDT", "ETH/USDT"}, false)

	assert.Equal(t, []string{"BTC/USDT"}, m.Match("BTC breaks above resistance"))
	assert.Equal(t, []string{"BTC/USDT"}, m.Match("Bitcoin breaks above resistance"))
	assert.Equal(t, []string{"ETH/USDT"}, m.Match("Ethereum gas fees spike"))
}

func TestPairMatcher_NoMatchWithoutFanout(t *testing.T) {
	m := NewPairMatcher([]string{"BTC/USDT"}, false)
	assert.Nil(t, m.Match("The broader crypto market saw mixed trading"))
}

func TestPairMatcher_GeneralFanoutWhenEnabled(t *testing.T) {
	m := NewPairMatcher([]string{"BTC/USDT", "ETH/USDT", "SOL/USDT"}, true)
	got := m.Match("The broader crypto market saw mixed trading")
	assert.ElementsMatch(t, []string{"BTC/USDT", "ETH/USDT", "SOL/USDT"}, got)
}

func TestPairMatcher_SpecificMatchTakesPrecedenceOverFanout(t *testing.T) {
	m := NewPairMatcher([]string{"BTC/USDT", "ETH/USDT"}, true)
	got := m.Match("Bitcoin leads the crypto market higher")
	assert.Equal(t, []string{"BTC/USDT"}, got)
}

func TestPairMatcher_SkipsInvalidPairs(t *testing.T) {
	m := NewPairMatcher([]string{"BTC/USDT", "not-a-pair"}, false)
	assert.Equal(t, []string{"BTC/USDT"}, m.Pairs())
}

func TestPairMatcher_NoSubstringFalsePositive(t *testing.T) {
	m := NewPairMatcher([]string{"ADA/USDT"}, false)
	assert.Nil(t, m.Match("Canada announces new digital policy framework"))
}
