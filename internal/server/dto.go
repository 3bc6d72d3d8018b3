package server

import (
	"time"

	"StockAnalyser/internal/model"
	"StockAnalyser/internal/recorder"
)

// Missing values are encoded as JSON null.
func opt(v float64) *float64 {
	if model.Missing(v) {
		return nil
	}
	return &v
}

// Bar is one row of the display table.
type Bar struct {
	Date           string   `json:"date"`
	Open           float64  `json:"open"`
	High           float64  `json:"high"`
	Low            float64  `json:"low"`
	Close          float64  `json:"close"`
	Volume         int64    `json:"volume"`
	DailyReturn    *float64 `json:"daily_return"`
	LogDailyReturn *float64 `json:"log_daily_return"`
}

// ChartPoint is one bar of the charting series.
type ChartPoint struct {
	Date            string   `json:"date"`
	Open            float64  `json:"open"`
	High            float64  `json:"high"`
	Low             float64  `json:"low"`
	Close           float64  `json:"close"`
	Volume          int64    `json:"volume"`
	CloseWeeklyAvg  *float64 `json:"close_weekly_avg"`
	CloseMonthlyAvg *float64 `json:"close_monthly_avg"`
	StochK          *float64 `json:"stoch_k"`
	StochD          *float64 `json:"stoch_d"`
}

// Summary holds the window statistics.
type Summary struct {
	Return       *float64 `json:"return"`
	Volatility   *float64 `json:"volatility"`
	VaR          *float64 `json:"var"`
	ES           *float64 `json:"es"`
	Alpha        float64  `json:"alpha"`
	Observations int      `json:"observations"`
}

// AnalysisResponse is the body of GET /analysis/{ticker}.
type AnalysisResponse struct {
	ID          string       `json:"id"`
	Ticker      string       `json:"ticker"`
	Name        string       `json:"name"`
	Months      int          `json:"months"`
	Rows        int          `json:"rows"`
	Preview     []Bar        `json:"preview"`
	Summary     Summary      `json:"summary"`
	Chart       []ChartPoint `json:"chart,omitempty"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// CacheResponse is the body of DELETE /cache/{ticker}.
type CacheResponse struct {
	Ticker      string `json:"ticker"`
	Invalidated int    `json:"invalidated"`
}

// Run is one recorded analysis.
type Run struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Trigger   string    `json:"trigger"`
	Months    int       `json:"months"`
	Alpha     float64   `json:"alpha"`
	LastDate  string    `json:"last_date,omitempty"`
	LastClose *float64  `json:"last_close,omitempty"`
	Summary   *Summary  `json:"summary,omitempty"`
	Error     string    `json:"error,omitempty"`
}

func newSummary(s model.SummaryStats) Summary {
	return Summary{
		Return:       opt(s.AnnualReturn),
		Volatility:   opt(s.AnnualVolatility),
		VaR:          opt(s.VaR),
		ES:           opt(s.ES),
		Alpha:        s.Alpha,
		Observations: s.Observations,
	}
}

func newAnalysisResponse(res *model.Result, withChart bool) AnalysisResponse {
	out := AnalysisResponse{
		ID:          res.ID,
		Ticker:      res.Ticker,
		Name:        res.Name,
		Months:      res.Months,
		Rows:        res.Rows,
		Summary:     newSummary(res.Summary),
		GeneratedAt: res.GeneratedAt,
	}
	for _, b := range res.Preview() {
		out.Preview = append(out.Preview, Bar{
			Date:           b.Date.Format(time.DateOnly),
			Open:           b.Open,
			High:           b.High,
			Low:            b.Low,
			Close:          b.Close,
			Volume:         b.Volume,
			DailyReturn:    opt(b.DailyReturn),
			LogDailyReturn: opt(b.LogDailyReturn),
		})
	}
	if withChart {
		for _, b := range res.Chart {
			out.Chart = append(out.Chart, ChartPoint{
				Date:            b.Date.Format(time.DateOnly),
				Open:            b.Open,
				High:            b.High,
				Low:             b.Low,
				Close:           b.Close,
				Volume:          b.Volume,
				CloseWeeklyAvg:  opt(b.CloseWeeklyAvg),
				CloseMonthlyAvg: opt(b.CloseMonthlyAvg),
				StochK:          opt(b.StochK),
				StochD:          opt(b.StochD),
			})
		}
	}
	return out
}

func newRun(r recorder.RunRecord) Run {
	out := Run{
		ID:        r.ID,
		Timestamp: r.Timestamp,
		Trigger:   string(r.Trigger),
		Months:    r.Months,
		Alpha:     r.Alpha,
		Error:     r.Error,
	}
	if !r.Failed() {
		s := newSummary(r.Stats)
		out.Summary = &s
		out.LastClose = opt(r.LastClose)
		if !r.LastDate.IsZero() {
			out.LastDate = r.LastDate.Format(time.DateOnly)
		}
	}
	return out
}
