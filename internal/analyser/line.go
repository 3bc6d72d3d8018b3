package analyser

import (
	"fmt"
	"strconv"
	"strings"

	"StockAnalyser/internal/collector"
	"StockAnalyser/internal/model"
)

// ParseLine reads "<ticker> [months] [rows] [alpha]" on top of defaults.
// The ticker may span several words ("AAPL US 6 months 10 0.01") and the
// months field may carry a "month(s)" unit.
func ParseLine(line string, defaults Request) (Request, error) {
	req := defaults
	ticker, rest := collector.SplitTicker(strings.Fields(line))
	if ticker == "" {
		return req, fmt.Errorf("%w: missing ticker", model.ErrMalformedInput)
	}
	req.Ticker = ticker

	if len(rest) > 0 {
		lookback := rest[0]
		rest = rest[1:]
		if len(rest) > 0 && strings.HasPrefix(strings.ToLower(rest[0]), "month") {
			lookback += " " + rest[0]
			rest = rest[1:]
		}
		months, err := model.ParseLookback(lookback)
		if err != nil {
			return req, err
		}
		req.Months = months
	}
	if len(rest) > 0 {
		rows, err := strconv.Atoi(rest[0])
		if err != nil {
			return req, fmt.Errorf("%w: rows must be an integer, got %q", model.ErrMalformedInput, rest[0])
		}
		req.Rows = rows
		rest = rest[1:]
	}
	if len(rest) > 0 {
		alpha, err := strconv.ParseFloat(rest[0], 64)
		if err != nil {
			return req, fmt.Errorf("%w: alpha must be a number, got %q", model.ErrMalformedInput, rest[0])
		}
		req.Alpha = alpha
		rest = rest[1:]
	}
	if len(rest) > 0 {
		return req, fmt.Errorf("%w: unexpected %q", model.ErrMalformedInput, strings.Join(rest, " "))
	}
	return req, req.Validate()
}
