package report

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"StockAnalyser/internal/model"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.md
var templates embed.FS

var reportTmpl = template.Must(template.ParseFS(templates, "templates/report.md"))

// Row is one preview line, already formatted for display.
type Row struct {
	Date           string
	Open           string
	High           string
	Low            string
	Close          string
	Volume         string
	DailyReturn    string
	LogDailyReturn string
}

// SummaryRow is one line of the summary table.
type SummaryRow struct {
	Label   string
	Value   string
	Percent string
}

// View is the display model of a Result.
type View struct {
	Title        string
	Ticker       string
	Months       int
	Observations int
	LastDate     string
	Alpha        string
	Rows         []Row
	Summary      []SummaryRow
}

// fixed formats v with the given number of decimal places; missing values are empty.
func fixed(v float64, places int32) string {
	if model.Missing(v) {
		return ""
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

func percent(v float64) string {
	if model.Missing(v) {
		return "n/a"
	}
	return decimal.NewFromFloat(v).Shift(2).StringFixed(2) + "%"
}

// NewView prepares the preview rows and summary of res for rendering.
func NewView(res *model.Result) *View {
	v := &View{
		Title:        res.Name,
		Ticker:       res.Ticker,
		Months:       res.Months,
		Observations: res.Summary.Observations,
		Alpha:        decimal.NewFromFloat(res.Alpha).String(),
	}
	if v.Title == "" {
		v.Title = strings.ToUpper(res.Ticker)
	}
	if n := len(res.Display); n > 0 {
		v.LastDate = res.Display[n-1].Date.Format(time.DateOnly)
	}
	for _, b := range res.Preview() {
		v.Rows = append(v.Rows, Row{
			Date:           b.Date.Format(time.DateOnly),
			Open:           fixed(b.Open, 2),
			High:           fixed(b.High, 2),
			Low:            fixed(b.Low, 2),
			Close:          fixed(b.Close, 2),
			Volume:         decimal.NewFromInt(b.Volume).String(),
			DailyReturn:    fixed(b.DailyReturn, 6),
			LogDailyReturn: fixed(b.LogDailyReturn, 6),
		})
	}

	s := res.Summary
	for _, item := range []struct {
		label string
		value float64
	}{
		{"Return", s.AnnualReturn},
		{"Volatility", s.AnnualVolatility},
		{"VaR", s.VaR},
		{"ES", s.ES},
	} {
		value := fixed(item.value, 4)
		if value == "" {
			value = "n/a"
		}
		v.Summary = append(v.Summary, SummaryRow{Label: item.label, Value: value, Percent: percent(item.value)})
	}
	return v
}

// Markdown renders the Raw Data preview and the Summary table of res.
func Markdown(res *model.Result) (string, error) {
	var b strings.Builder
	if err := reportTmpl.Execute(&b, NewView(res)); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	return b.String(), nil
}
