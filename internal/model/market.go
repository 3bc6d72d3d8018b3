package model

import (
	"math"
	"time"
)

// PriceBar represents one trading day.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// PriceSeries holds the raw daily bars of a ticker, oldest first.
type PriceSeries struct {
	Ticker    string
	Bars      []PriceBar
	FetchedAt time.Time
}

// Len returns the number of bars.
func (s PriceSeries) Len() int { return len(s.Bars) }

// LastDate returns the date of the most recent bar, or the zero time for an empty series.
func (s PriceSeries) LastDate() time.Time {
	if len(s.Bars) == 0 {
		return time.Time{}
	}
	return s.Bars[len(s.Bars)-1].Date
}

// ReturnBar is a PriceBar extended with simple and log daily returns.
// Both returns are NaN where undefined (first bar of a series).
type ReturnBar struct {
	PriceBar
	DailyReturn    float64 `json:"daily_return"`
	LogDailyReturn float64 `json:"log_daily_return"`
}

// ChartBar is a PriceBar annotated with the charting indicators.
type ChartBar struct {
	PriceBar
	CloseWeeklyAvg  float64 `json:"close_weekly_avg"`
	CloseMonthlyAvg float64 `json:"close_monthly_avg"`
	StochK          float64 `json:"stoch_k"`
	StochD          float64 `json:"stoch_d"`
}

// Missing reports whether v is an undefined value.
func Missing(v float64) bool { return math.IsNaN(v) }

// CalendarDate truncates t to midnight UTC of its calendar day.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
