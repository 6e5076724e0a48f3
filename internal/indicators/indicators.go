// Package indicators implements the technical indicators the strategy join
// merges with cached sentiment: EMA, RSI, MACD, Bollinger Bands, volume
// average, and ATR. Each result is a struct with an IsValid flag rather
// than a bare float, so callers can distinguish "not enough history yet"
// from a real reading.
package indicators

import "math"

// EMASeries returns the exponential moving average of closes over period,
// one value per input bar once enough history exists (NaN before that).
func EMASeries(closes []float64, period int) []float64 {
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}
	if period <= 0 || len(closes) < period {
		return out
	}
	alpha := 2.0 / (float64(period) + 1.0)

	sma := 0.0
	for i := 0; i < period; i++ {
		sma += closes[i]
	}
	sma /= float64(period)
	out[period-1] = sma

	prev := sma
	for i := period; i < len(closes); i++ {
		prev = closes[i]*alpha + prev*(1-alpha)
		out[i] = prev
	}
	return out
}

// EMA returns the final value of EMASeries, or (0, false) if there is not
// enough history yet.
func EMA(closes []float64, period int) (float64, bool) {
	series := EMASeries(closes, period)
	if len(series) == 0 {
		return 0, false
	}
	last := series[len(series)-1]
	if math.IsNaN(last) {
		return 0, false
	}
	return last, true
}

// RSIResult carries a neutral 50.0 default when there isn't enough
// history, with IsValid signalling real data.
type RSIResult struct {
	Value     float64
	Period    int
	IsValid   bool
	DataCount int
}

// RSI computes Wilder's RSI using the standard smoothed moving-average
// method.
func RSI(closes []float64, period int) RSIResult {
	if len(closes) < period+1 || period <= 0 {
		return RSIResult{Value: 50.0, Period: period, DataCount: len(closes)}
	}

	gains := make([]float64, len(closes)-1)
	losses := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gains[i-1] = d
		} else {
			losses[i-1] = -d
		}
	}

	avgGain, avgLoss := 0.0, 0.0
	for i := 0; i < period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	alpha := 1.0 / float64(period)
	for i := period; i < len(gains); i++ {
		avgGain = avgGain*(1-alpha) + gains[i]*alpha
		avgLoss = avgLoss*(1-alpha) + losses[i]*alpha
	}

	if avgLoss == 0 {
		return RSIResult{Value: 100.0, Period: period, IsValid: true, DataCount: len(closes)}
	}
	rs := avgGain / avgLoss
	rsi := 100.0 - (100.0 / (1.0 + rs))
	return RSIResult{Value: rsi, Period: period, IsValid: true, DataCount: len(closes)}
}

// MACDResult holds the MACD line, its signal line (EMA of the MACD line),
// and their difference (the "histogram").
type MACDResult struct {
	MACD      float64
	Signal    float64
	Histogram float64
	IsValid   bool
}

// MACD computes the standard 12/26/9 (or caller-supplied) moving-average
// convergence-divergence indicator.
func MACD(closes []float64, fast, slow, signalPeriod int) MACDResult {
	if len(closes) < slow+signalPeriod {
		return MACDResult{}
	}
	fastEMA := EMASeries(closes, fast)
	slowEMA := EMASeries(closes, slow)

	macdLine := make([]float64, len(closes))
	for i := range macdLine {
		if math.IsNaN(fastEMA[i]) || math.IsNaN(slowEMA[i]) {
			macdLine[i] = math.NaN()
			continue
		}
		macdLine[i] = fastEMA[i] - slowEMA[i]
	}

	var tail []float64
	for _, v := range macdLine {
		if !math.IsNaN(v) {
			tail = append(tail, v)
		}
	}
	if len(tail) < signalPeriod {
		return MACDResult{}
	}
	signalSeries := EMASeries(tail, signalPeriod)
	signal := signalSeries[len(signalSeries)-1]
	if math.IsNaN(signal) {
		return MACDResult{}
	}
	macd := tail[len(tail)-1]
	return MACDResult{MACD: macd, Signal: signal, Histogram: macd - signal, IsValid: true}
}

// BollingerBands computes the middle (SMA), upper, and lower bands over
// period using numStdDev standard deviations.
type BollingerBands struct {
	Middle, Upper, Lower float64
	IsValid              bool
}

func Bollinger(closes []float64, period int, numStdDev float64) BollingerBands {
	if len(closes) < period || period <= 0 {
		return BollingerBands{}
	}
	window := closes[len(closes)-period:]
	mean := 0.0
	for _, c := range window {
		mean += c
	}
	mean /= float64(period)

	variance := 0.0
	for _, c := range window {
		d := c - mean
		variance += d * d
	}
	variance /= float64(period)
	stdDev := math.Sqrt(variance)

	return BollingerBands{
		Middle:  mean,
		Upper:   mean + numStdDev*stdDev,
		Lower:   mean - numStdDev*stdDev,
		IsValid: true,
	}
}

// VolumeAverage returns the simple moving average of volume over the last
// period bars.
func VolumeAverage(volumes []float64, period int) (float64, bool) {
	if len(volumes) < period || period <= 0 {
		return 0, false
	}
	window := volumes[len(volumes)-period:]
	sum := 0.0
	for _, v := range window {
		sum += v
	}
	return sum / float64(period), true
}

// ATRResult carries the same IsValid/DataCount shape as RSIResult.
type ATRResult struct {
	Value     float64
	Period    int
	IsValid   bool
	DataCount int
}

// PriceBar is the OHLC input to ATR.
type PriceBar struct {
	High, Low, Close float64
}

// ATR computes Wilder's Average True Range.
func ATR(bars []PriceBar, period int) ATRResult {
	if len(bars) < period+1 || period <= 0 {
		return ATRResult{Period: period, DataCount: len(bars)}
	}
	trueRanges := make([]float64, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		cur, prevClose := bars[i], bars[i-1].Close
		hl := cur.High - cur.Low
		hc := math.Abs(cur.High - prevClose)
		lc := math.Abs(cur.Low - prevClose)
		trueRanges[i-1] = math.Max(hl, math.Max(hc, lc))
	}

	atr := 0.0
	for i := 0; i < period; i++ {
		atr += trueRanges[i]
	}
	atr /= float64(period)

	alpha := 1.0 / float64(period)
	for i := period; i < len(trueRanges); i++ {
		atr = atr*(1-alpha) + trueRanges[i]*alpha
	}
	return ATRResult{Value: atr, Period: period, IsValid: true, DataCount: len(bars)}
}
