package report

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"StockAnalyser/internal/model"

	"github.com/peterldowns/testy/assert"
)

func sampleResult(rows int) *model.Result {
	start := time.Date(2024, 6, 24, 0, 0, 0, 0, time.UTC)
	var display []model.ReturnBar
	for i := 0; i < 8; i++ {
		c := 100 + float64(i)
		r, lr := math.NaN(), math.NaN()
		if i > 0 {
			r = c/(c-1) - 1
			lr = math.Log1p(r)
		}
		display = append(display, model.ReturnBar{
			PriceBar:       model.PriceBar{Date: start.AddDate(0, 0, i), Open: c - 0.5, High: c + 1, Low: c - 1, Close: c, Volume: 1000 + int64(i)},
			DailyReturn:    r,
			LogDailyReturn: lr,
		})
	}
	return &model.Result{
		Ticker:  "orlen",
		Name:    "ORLEN",
		Months:  6,
		Rows:    rows,
		Alpha:   0.05,
		Display: display,
		Summary: model.SummaryStats{
			AnnualReturn:     0.123456,
			AnnualVolatility: 0.25,
			VaR:              0.0213,
			ES:               math.NaN(),
			Alpha:            0.05,
			Observations:     7,
		},
	}
}

func TestNewView(t *testing.T) {
	v := NewView(sampleResult(5))
	assert.Equal(t, v.Title, "ORLEN")
	assert.Equal(t, v.Alpha, "0.05")
	assert.Equal(t, v.LastDate, "2024-07-01")
	assert.Equal(t, len(v.Rows), 5)
	assert.Equal(t, v.Rows[4].Close, "107.00")
	assert.Equal(t, v.Rows[4].Volume, "1007")

	assert.Equal(t, v.Summary, []SummaryRow{
		{Label: "Return", Value: "0.1235", Percent: "12.35%"},
		{Label: "Volatility", Value: "0.2500", Percent: "25.00%"},
		{Label: "VaR", Value: "0.0213", Percent: "2.13%"},
		{Label: "ES", Value: "n/a", Percent: "n/a"},
	})
}

func TestNewView_MissingReturn(t *testing.T) {
	v := NewView(sampleResult(20))
	assert.Equal(t, len(v.Rows), 8)
	assert.Equal(t, v.Rows[0].DailyReturn, "")
	assert.Equal(t, v.Rows[1].DailyReturn, "0.010000")
}

func TestMarkdown(t *testing.T) {
	md, err := Markdown(sampleResult(5))
	assert.NoError(t, err)
	for _, want := range []string{
		"# ORLEN",
		"## Raw Data",
		"| date | open | high | low | close | volume | daily_return | log_daily_return |",
		"| 2024-07-01 | 106.50 | 108.00 | 106.00 | 107.00 | 1007 |",
		"## Summary",
		"| VaR | 0.0213 | 2.13% |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("expected markdown to contain %q, got:\n%s", want, md)
		}
	}
	assert.False(t, strings.Contains(md, "2024-06-26"))
}

func TestTerminal(t *testing.T) {
	out, err := Terminal(sampleResult(5), "notty", 100)
	assert.NoError(t, err)
	assert.True(t, strings.Contains(out, "ORLEN"))
	assert.True(t, strings.Contains(out, "Volatility"))
}

func TestHTML(t *testing.T) {
	page, err := HTML(sampleResult(5), []byte(`<svg id="chart"></svg>`))
	assert.NoError(t, err)
	s := string(page)
	assert.True(t, strings.HasPrefix(s, "<!DOCTYPE html>"))
	assert.True(t, strings.Contains(s, "<title>ORLEN</title>"))
	assert.True(t, strings.Contains(s, "<table>"))
	assert.True(t, strings.Contains(s, "<th>daily_return</th>") || strings.Contains(s, `daily_return</th>`))
	assert.True(t, strings.Contains(s, `<svg id="chart"></svg>`))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	res := sampleResult(5)
	assert.NoError(t, WriteCSV(&buf, res.Display[:2]))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, len(lines), 3)
	assert.Equal(t, lines[0], "date,open,high,low,close,volume,daily_return,log_daily_return")
	assert.Equal(t, lines[1], "2024-06-24,99.5,101,99,100,1000,,")
	assert.True(t, strings.HasPrefix(lines[2], "2024-06-25,100.5,102,100,101,1001,0.01"))
}
