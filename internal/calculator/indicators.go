package calculator

import (
	"fmt"

	"StockAnalyser/internal/model"
)

// Indicators annotates the full series with moving averages and the
// stochastic oscillator, then keeps only the trailing months. Windowing
// happens last so the visible window starts with warmed-up values.
func Indicators(series model.PriceSeries, p StochasticParams, months int) ([]model.ChartBar, error) {
	k, d, err := Stochastic(series.Bars, p)
	if err != nil {
		return nil, fmt.Errorf("stochastic: %w", err)
	}
	closes := extractCloses(series.Bars)
	weekly := RollingSMA(closes, TradeDaysInWeek)
	monthly := RollingSMA(closes, TradeDaysInMonth)

	bars := make([]model.ChartBar, len(series.Bars))
	for i, bar := range series.Bars {
		bars[i] = model.ChartBar{
			PriceBar:        bar,
			CloseWeeklyAvg:  weekly[i],
			CloseMonthlyAvg: monthly[i],
			StochK:          k[i],
			StochD:          d[i],
		}
	}
	return Window(bars, months)
}

// Display windows a return series to the trailing months and truncates
// every date to its calendar day.
func Display(returns []model.ReturnBar, months int) ([]model.ReturnBar, error) {
	rows, err := Window(returns, months)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Date = model.CalendarDate(rows[i].Date)
	}
	return rows, nil
}
