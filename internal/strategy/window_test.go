package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cryptoops/sentipipe/internal/domain"
)

func TestWindow_PushReturnsGrowingHistory(t *testing.T) {
	w := NewWindow()
	w.Push(domain.Candle{Pair: "BTC/USDT", Close: 100, High: 101, Low: 99, Volume: 10})
	bars, closes, volumes := w.Push(domain.Candle{Pair: "BTC/USDT", Close: 101, High: 102, Low: 100, Volume: 12})

	assert.Len(t, bars, 2)
	assert.Equal(t, []float64{100, 101}, closes)
	assert.Equal(t, []float64{10, 12}, volumes)
}

func TestWindow_TracksPairsIndependently(t *testing.T) {
	w := NewWindow()
	w.Push(domain.Candle{Pair: "BTC/USDT", Close: 100})
	_, closes, _ := w.Push(domain.Candle{Pair: "ETH/USDT", Close: 50})

	assert.Equal(t, []float64{50}, closes)
}

func TestWindow_BoundedToMaxBars(t *testing.T) {
	w := NewWindow()
	var closes []float64
	for i := 0; i < maxWindowBars+50; i++ {
		_, closes, _ = w.Push(domain.Candle{Pair: "BTC/USDT", Close: float64(i)})
	}
	assert.Len(t, closes, maxWindowBars)
	assert.Equal(t, float64(maxWindowBars+49), closes[len(closes)-1])
}
