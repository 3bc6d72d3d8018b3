package analyser

import (
	"errors"
	"testing"

	"StockAnalyser/internal/model"

	"github.com/peterldowns/testy/assert"
)

func TestParseLine(t *testing.T) {
	defaults := Request{Months: 3, Rows: 7, Alpha: 0.05}
	tests := []struct {
		line string
		want Request
	}{
		{"orlen", Request{Ticker: "orlen", Months: 3, Rows: 7, Alpha: 0.05}},
		{"AAPL US", Request{Ticker: "AAPL US", Months: 3, Rows: 7, Alpha: 0.05}},
		{"AAPL US 6 months 10 0.01", Request{Ticker: "AAPL US", Months: 6, Rows: 10, Alpha: 0.01}},
		{"cdr 12M", Request{Ticker: "cdr", Months: 12, Rows: 7, Alpha: 0.05}},
		{"  pko 1 month 5 ", Request{Ticker: "pko", Months: 1, Rows: 5, Alpha: 0.05}},
		{"11b 2 20 .1", Request{Ticker: "11b", Months: 2, Rows: 20, Alpha: 0.1}},
	}
	for _, tt := range tests {
		got, err := ParseLine(tt.line, defaults)
		assert.NoError(t, err)
		assert.Equal(t, got, tt.want)
	}
}

func TestParseLine_Malformed(t *testing.T) {
	defaults := Request{Months: 3, Rows: 7, Alpha: 0.05}
	for _, line := range []string{
		"",
		"orlen 0",
		"orlen 6 many",
		"orlen 6 10 high",
		"orlen 6 4",
		"orlen 6 10 NaN",
		"orlen 6 10 0.05 extra",
	} {
		_, err := ParseLine(line, defaults)
		assert.True(t, errors.Is(err, model.ErrMalformedInput))
	}
}
