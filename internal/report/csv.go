package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"StockAnalyser/internal/model"
)

// CSVHeader lists the exported columns.
var CSVHeader = []string{"date", "open", "high", "low", "close", "volume", "daily_return", "log_daily_return"}

func csvFloat(v float64) string {
	if model.Missing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteCSV exports rows with full precision. Missing returns are empty cells.
func WriteCSV(w io.Writer, rows []model.ReturnBar) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.Date.Format(time.DateOnly),
			csvFloat(r.Open),
			csvFloat(r.High),
			csvFloat(r.Low),
			csvFloat(r.Close),
			strconv.FormatInt(r.Volume, 10),
			csvFloat(r.DailyReturn),
			csvFloat(r.LogDailyReturn),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
