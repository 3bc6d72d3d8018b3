package calculator

import (
	"fmt"
	"math"
	"sort"

	"StockAnalyser/internal/model"
)

// Quantile returns the p-quantile of values using linear interpolation
// between closest ranks, h = (n-1)p. values need not be sorted and is not modified.
func Quantile(values []float64, p float64) (float64, error) {
	if len(values) == 0 {
		return 0, model.ErrInsufficientData
	}
	if p < 0 || p > 1 {
		return 0, fmt.Errorf("%w: quantile level %v outside [0, 1]", model.ErrMalformedInput, p)
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i >= len(sorted)-1 {
		return sorted[len(sorted)-1], nil
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i]), nil
}

// ValueAtRisk is the negated alpha-quantile of daily returns.
func ValueAtRisk(returns []float64, alpha float64) (float64, error) {
	q, err := Quantile(returns, alpha)
	if err != nil {
		return 0, err
	}
	return -q, nil
}

// ExpectedShortfall is the negated mean of the returns at or below the alpha-quantile.
func ExpectedShortfall(returns []float64, alpha float64) (float64, error) {
	q, err := Quantile(returns, alpha)
	if err != nil {
		return 0, err
	}
	var sum float64
	var n int
	for _, r := range returns {
		if r <= q {
			sum += r
			n++
		}
	}
	if n == 0 {
		return 0, model.ErrEmptyTail
	}
	return -sum / float64(n), nil
}

// AnnualizedReturn compounds daily returns geometrically to a yearly rate.
func AnnualizedReturn(returns []float64) (float64, error) {
	if len(returns) == 0 {
		return 0, model.ErrInsufficientData
	}
	growth := 1.0
	for _, r := range returns {
		growth *= 1 + r
	}
	return math.Pow(growth, float64(TradeDaysInYear)/float64(len(returns))) - 1, nil
}

// AnnualizedVolatility is the sample standard deviation of log returns scaled by sqrt(252).
func AnnualizedVolatility(logReturns []float64) (float64, error) {
	n := len(logReturns)
	if n < 2 {
		return 0, model.ErrInsufficientData
	}
	var mean float64
	for _, r := range logReturns {
		mean += r
	}
	mean /= float64(n)
	var ss float64
	for _, r := range logReturns {
		ss += (r - mean) * (r - mean)
	}
	return math.Sqrt(ss/float64(n-1)) * math.Sqrt(TradeDaysInYear), nil
}

// Summarise computes the window statistics. Missing returns are excluded.
func Summarise(rows []model.ReturnBar, alpha float64) (model.SummaryStats, error) {
	if !(alpha > 0 && alpha < 1) {
		return model.SummaryStats{}, fmt.Errorf("%w: significance level %v outside (0, 1)", model.ErrMalformedInput, alpha)
	}

	returns := make([]float64, 0, len(rows))
	logReturns := make([]float64, 0, len(rows))
	for _, row := range rows {
		if !model.Missing(row.DailyReturn) {
			returns = append(returns, row.DailyReturn)
		}
		if !model.Missing(row.LogDailyReturn) {
			logReturns = append(logReturns, row.LogDailyReturn)
		}
	}
	if len(returns) < 2 {
		return model.SummaryStats{}, fmt.Errorf("summarise %d rows: %w", len(rows), model.ErrInsufficientData)
	}

	stats := model.SummaryStats{Alpha: alpha, Observations: len(returns)}
	var err error
	if stats.AnnualReturn, err = AnnualizedReturn(returns); err != nil {
		return model.SummaryStats{}, fmt.Errorf("annualized return: %w", err)
	}
	if stats.AnnualVolatility, err = AnnualizedVolatility(logReturns); err != nil {
		return model.SummaryStats{}, fmt.Errorf("annualized volatility: %w", err)
	}
	if stats.VaR, err = ValueAtRisk(returns, alpha); err != nil {
		return model.SummaryStats{}, fmt.Errorf("value at risk: %w", err)
	}
	if stats.ES, err = ExpectedShortfall(returns, alpha); err != nil {
		return model.SummaryStats{}, fmt.Errorf("expected shortfall: %w", err)
	}
	return stats, nil
}
