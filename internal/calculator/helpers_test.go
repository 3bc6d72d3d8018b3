package calculator

import (
	"math"
	"math/rand"
	"time"

	"StockAnalyser/internal/model"
)

const tolerance = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) <= tolerance*math.Max(1, math.Abs(b))
}

// tradingDays returns n weekday dates ending on or before end.
func tradingDays(end time.Time, n int) []time.Time {
	dates := make([]time.Time, 0, n)
	for d := end; len(dates) < n; d = d.AddDate(0, 0, -1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		dates = append(dates, d)
	}
	for i, j := 0, len(dates)-1; i < j; i, j = i+1, j-1 {
		dates[i], dates[j] = dates[j], dates[i]
	}
	return dates
}

func seriesFromCloses(closes ...float64) model.PriceSeries {
	dates := tradingDays(time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC), len(closes))
	bars := make([]model.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = model.PriceBar{Date: dates[i], Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}
	return model.PriceSeries{Ticker: "test", Bars: bars}
}

func randomSeries(n int, seed int64) model.PriceSeries {
	rng := rand.New(rand.NewSource(seed))
	dates := tradingDays(time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC), n)
	bars := make([]model.PriceBar, n)
	price := 100.0
	for i := range bars {
		open := price
		price *= 1 + (rng.Float64()-0.5)*0.04
		high := math.Max(open, price) * (1 + rng.Float64()*0.01)
		low := math.Min(open, price) * (1 - rng.Float64()*0.01)
		bars[i] = model.PriceBar{
			Date:   dates[i],
			Open:   open,
			High:   high,
			Low:    low,
			Close:  price,
			Volume: int64(rng.Intn(1_000_000)),
		}
	}
	return model.PriceSeries{Ticker: "rand", Bars: bars}
}
