package collector

import (
	"context"

	"StockAnalyser/internal/model"
)

// Fetcher defines the interface for fetching daily price history.
type Fetcher interface {
	// FetchDailyBars returns the full daily history of a normalized ticker.
	// It fails with model.ErrNotFound when the source has no rows for it.
	FetchDailyBars(ctx context.Context, ticker string) (model.PriceSeries, error)
	Name() string
}

// NameResolver looks up the display name of a normalized ticker.
type NameResolver interface {
	// ResolveName fails with model.ErrNotFound for unknown tickers and with
	// model.ErrFormatChanged when the source no longer looks as expected.
	ResolveName(ctx context.Context, ticker string) (string, error)
}
