package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToKrakenPairs_RewritesBTCToXBT(t *testing.T) {
	out := toKrakenPairs([]string{"BTC/USDT", "ETH/USDT"})
	assert.Equal(t, []string{"XBT/USDT", "ETH/USDT"}, out)
}

func TestFromKrakenPair_RewritesXBTToBTC(t *testing.T) {
	assert.Equal(t, "BTC/USDT", fromKrakenPair("XBT/USDT"))
	assert.Equal(t, "ETH/USDT", fromKrakenPair("ETH/USDT"))
}

func TestIntervalMinutes_ParsesOrDefaultsTo5(t *testing.T) {
	assert.Equal(t, 1, intervalMinutes("1"))
	assert.Equal(t, 15, intervalMinutes("15"))
	assert.Equal(t, 5, intervalMinutes("bogus"))
	assert.Equal(t, 5, intervalMinutes("0"))
}

func TestDecodeKrakenOHLC_ParsesValidMessage(t *testing.T) {
	msg := `[340,["1700000000.000000","1700000060.000000","100.0","101.5","99.5","101.0","100.4","12.5",15],"ohlc-5","XBT/USDT"]`
	candle, pair, ok := decodeKrakenOHLC([]byte(msg), "5")
	require.True(t, ok)
	assert.Equal(t, "BTC/USDT", pair)
	assert.Equal(t, "BTC/USDT", candle.Pair)
	assert.Equal(t, "5", candle.Timeframe)
	assert.Equal(t, int64(1700000060000), candle.TimestampMS)
	assert.Equal(t, 100.0, candle.Open)
	assert.Equal(t, 101.5, candle.High)
	assert.Equal(t, 99.5, candle.Low)
	assert.Equal(t, 101.0, candle.Close)
	assert.Equal(t, 12.5, candle.Volume)
}

func TestDecodeKrakenOHLC_RejectsNonArrayMessage(t *testing.T) {
	_, _, ok := decodeKrakenOHLC([]byte(`{"event":"heartbeat"}`), "5")
	assert.False(t, ok)
}

func TestDecodeKrakenOHLC_RejectsMalformedNumericFields(t *testing.T) {
	msg := `[340,["1700000000","1700000060","nan","101.5","99.5","101.0","100.4","12.5",15],"ohlc-5","XBT/USDT"]`
	_, _, ok := decodeKrakenOHLC([]byte(msg), "5")
	assert.False(t, ok)
}
