package calculator

import (
	"fmt"
	"time"

	"StockAnalyser/internal/model"
)

// Dated is implemented by every row type that can be windowed.
type Dated interface {
	model.PriceBar | model.ReturnBar | model.ChartBar
}

func dateOf[T Dated](row T) time.Time {
	switch r := any(row).(type) {
	case model.PriceBar:
		return r.Date
	case model.ReturnBar:
		return r.Date
	case model.ChartBar:
		return r.Date
	}
	return time.Time{}
}

// WindowStart returns the exclusive lower bound of a months-long window ending
// at last. Days past the end of a shorter month are clamped to its last day.
func WindowStart(last time.Time, months int) time.Time {
	y, m, d := last.Date()
	target := time.Date(y, m-time.Month(months), 1, 0, 0, 0, 0, last.Location())
	lastDay := time.Date(target.Year(), target.Month()+1, 0, 0, 0, 0, 0, last.Location()).Day()
	if d > lastDay {
		d = lastDay
	}
	h, mi, s := last.Clock()
	return time.Date(target.Year(), target.Month(), d, h, mi, s, last.Nanosecond(), last.Location())
}

// Window keeps the rows dated strictly after the last row's date minus months.
// Rows must be sorted by date ascending. The input slice is not modified.
func Window[T Dated](rows []T, months int) ([]T, error) {
	if months <= 0 {
		return nil, fmt.Errorf("%w: window must span a positive number of months, got %d",
			model.ErrMalformedInput, months)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	start := WindowStart(dateOf(rows[len(rows)-1]), months)
	i := len(rows)
	for i > 0 && dateOf(rows[i-1]).After(start) {
		i--
	}
	out := make([]T, len(rows)-i)
	copy(out, rows[i:])
	return out, nil
}
