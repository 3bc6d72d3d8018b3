package model

import "errors"

var (
	// ErrNotFound is returned when the data source has nothing for a ticker.
	ErrNotFound = errors.New("No data for this ticker")
	// ErrMalformedInput is returned for user controls outside their domain.
	ErrMalformedInput = errors.New("malformed input")
	// ErrFormatChanged is returned when a scraped page no longer has the expected structure.
	ErrFormatChanged = errors.New("upstream page format changed")
	// ErrInsufficientData is returned when a window holds too few return observations.
	ErrInsufficientData = errors.New("not enough return observations")
	// ErrEmptyTail is returned when no observation lies at or below the VaR quantile.
	ErrEmptyTail = errors.New("no observations in the loss tail")
)

// UserMessage maps an error to the text shown to end users.
// Only not-found and malformed input are surfaced verbatim.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return ErrNotFound.Error()
	case errors.Is(err, ErrMalformedInput):
		return err.Error()
	default:
		return "Unexpected error occurred"
	}
}
