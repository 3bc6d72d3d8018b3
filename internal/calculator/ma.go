package calculator

import (
	"errors"
	"math"

	"StockAnalyser/internal/model"
)

const (
	// TradeDaysInWeek is the window of the short close moving average.
	TradeDaysInWeek = 5
	// TradeDaysInMonth is the window of the long close moving average.
	TradeDaysInMonth = 21
	// TradeDaysInYear is used to annualize daily figures.
	TradeDaysInYear = 252
)

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// RollingSMA returns the trailing simple moving average at every index.
// An index is NaN until period values are available, or when any value in
// its window is NaN.
func RollingSMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		// NaN propagates through the sum.
		out[i], _ = CalculateSMA(values[:i+1], period)
	}
	return out
}

func extractCloses(bars []model.PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
