package recorder

import (
	"time"

	"StockAnalyser/internal/model"

	"github.com/google/uuid"
)

// Trigger names what started an analysis run.
type Trigger string

const (
	TriggerManual   Trigger = "MANUAL"
	TriggerWatch    Trigger = "WATCH"
	TriggerTelegram Trigger = "TELEGRAM"
	TriggerAPI      Trigger = "API"
)

// RunRecord is one analysis attempt. Failed runs carry the error text
// and no statistics.
type RunRecord struct {
	ID           string
	Timestamp    time.Time
	Trigger      Trigger
	Ticker       string
	Name         string
	Months       int
	Alpha        float64
	LastDate     time.Time
	LastClose    float64
	Observations int
	Stats        model.SummaryStats
	Error        string
}

// Failed reports whether the run ended in an error.
func (r *RunRecord) Failed() bool { return r.Error != "" }

// NewRunRecord captures a successful analysis.
func NewRunRecord(res *model.Result, trigger Trigger) *RunRecord {
	rec := &RunRecord{
		ID:           res.ID,
		Timestamp:    res.GeneratedAt,
		Trigger:      trigger,
		Ticker:       res.Ticker,
		Name:         res.Name,
		Months:       res.Months,
		Alpha:        res.Alpha,
		Observations: res.Summary.Observations,
		Stats:        res.Summary,
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if n := len(res.Display); n > 0 {
		rec.LastDate = res.Display[n-1].Date
		rec.LastClose = res.Display[n-1].Close
	}
	return rec
}

// FailedRun captures an analysis that returned err.
func FailedRun(ticker string, months int, alpha float64, trigger Trigger, err error) *RunRecord {
	return &RunRecord{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Trigger:   trigger,
		Ticker:    ticker,
		Months:    months,
		Alpha:     alpha,
		Error:     err.Error(),
	}
}

// Recorder persists analysis history.
type Recorder interface {
	RecordRun(rec *RunRecord) error
	// RecentRuns returns up to limit runs of ticker, newest first.
	RecentRuns(ticker string, limit int) ([]RunRecord, error)
	Close() error
}
