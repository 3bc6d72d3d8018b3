package model

import "time"

// SummaryStats holds the scalar risk/return figures of a window.
type SummaryStats struct {
	AnnualReturn     float64 `json:"annual_return"`
	AnnualVolatility float64 `json:"annual_volatility"`
	VaR              float64 `json:"var"`
	ES               float64 `json:"es"`
	Alpha            float64 `json:"alpha"`
	Observations     int     `json:"observations"`
}

// Result is everything produced by one analysis request.
type Result struct {
	ID          string
	Ticker      string
	Name        string
	Months      int
	Rows        int
	Alpha       float64
	Returns     []ReturnBar
	Display     []ReturnBar
	Chart       []ChartBar
	Summary     SummaryStats
	GeneratedAt time.Time
}

// Preview returns the last Rows bars of the display window.
func (r *Result) Preview() []ReturnBar {
	if r.Rows <= 0 || r.Rows >= len(r.Display) {
		return r.Display
	}
	return r.Display[len(r.Display)-r.Rows:]
}
