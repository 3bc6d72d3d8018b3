package calculator

import (
	"math"

	"StockAnalyser/internal/model"
)

// Returns derives simple and log daily returns from a price series.
// The first bar has no return and carries NaN in both fields. A daily
// return at or below -1 gives a NaN log return.
func Returns(series model.PriceSeries) []model.ReturnBar {
	out := make([]model.ReturnBar, len(series.Bars))
	for i, bar := range series.Bars {
		out[i] = model.ReturnBar{
			PriceBar:       bar,
			DailyReturn:    math.NaN(),
			LogDailyReturn: math.NaN(),
		}
		if i == 0 {
			continue
		}
		prev := series.Bars[i-1].Close
		r := (bar.Close - prev) / prev
		out[i].DailyReturn = r
		if r > -1 {
			out[i].LogDailyReturn = math.Log1p(r)
		}
	}
	return out
}
