package calculator

import (
	"math"

	"StockAnalyser/internal/model"
)

// RollingRange returns, for every bar, the highest high and the lowest low of
// the trailing period bars. Both are NaN until period bars are available.
func RollingRange(bars []model.PriceBar, period int) (highs, lows []float64) {
	n := len(bars)
	highs = make([]float64, n)
	lows = make([]float64, n)
	for i := 0; i < n; i++ {
		if period <= 0 || i < period-1 {
			highs[i] = math.NaN()
			lows[i] = math.NaN()
			continue
		}
		high := math.Inf(-1)
		low := math.Inf(1)
		for j := i - period + 1; j <= i; j++ {
			if bars[j].High > high {
				high = bars[j].High
			}
			if bars[j].Low < low {
				low = bars[j].Low
			}
		}
		highs[i] = high
		lows[i] = low
	}
	return highs, lows
}
