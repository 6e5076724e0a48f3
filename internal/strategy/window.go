package strategy

import (
	"sync"

	"github.com/cryptoops/sentipipe/internal/domain"
	"github.com/cryptoops/sentipipe/internal/indicators"
)

// maxWindowBars bounds how much candle history each pair keeps in memory —
// comfortably more than the widest indicator window (26-period EMA/MACD).
const maxWindowBars = 200

// Window keeps a bounded rolling history of candles per pair, the input
// BuildIndicators needs. One process-wide Window is shared by every pair's
// consume callback.
type Window struct {
	mu   sync.Mutex
	bars map[string][]domain.Candle
}

func NewWindow() *Window {
	return &Window{bars: make(map[string][]domain.Candle)}
}

// Push appends candle to its pair's history, trimming to maxWindowBars, and
// returns the bars/closes/volumes slices BuildIndicators expects.
func (w *Window) Push(candle domain.Candle) ([]indicators.PriceBar, []float64, []float64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	history := append(w.bars[candle.Pair], candle)
	if len(history) > maxWindowBars {
		history = history[len(history)-maxWindowBars:]
	}
	w.bars[candle.Pair] = history

	bars := make([]indicators.PriceBar, len(history))
	closes := make([]float64, len(history))
	volumes := make([]float64, len(history))
	for i, c := range history {
		bars[i] = indicators.PriceBar{High: c.High, Low: c.Low, Close: c.Close}
		closes[i] = c.Close
		volumes[i] = c.Volume
	}
	return bars, closes, volumes
}
