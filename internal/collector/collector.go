package collector

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"StockAnalyser/internal/cache"
	"StockAnalyser/internal/model"

	"github.com/rs/zerolog"
)

const (
	fetchFunc = "fetch_daily_bars"
	nameFunc  = "resolve_name"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price     float64
	Days      int
	End       time.Time
	DailyData []model.PriceBar
	Err       error

	calls atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

// Calls reports how many times FetchDailyBars ran.
func (m *MockFetcher) Calls() int { return int(m.calls.Load()) }

func (m *MockFetcher) FetchDailyBars(_ context.Context, ticker string) (model.PriceSeries, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return model.PriceSeries{}, m.Err
	}
	bars := m.DailyData
	if bars == nil {
		end := m.End
		if end.IsZero() {
			end = model.CalendarDate(time.Now())
		}
		bars = generateMockBars(m.Price, m.Days, end)
	}
	if len(bars) == 0 {
		return model.PriceSeries{}, fmt.Errorf("mock %s: %w", ticker, model.ErrNotFound)
	}
	return model.PriceSeries{Ticker: ticker, Bars: bars, FetchedAt: time.Now()}, nil
}

// generateMockBars builds count weekday bars ending at end, oscillating around basePrice.
func generateMockBars(basePrice float64, count int, end time.Time) []model.PriceBar {
	bars := make([]model.PriceBar, count)
	d := end
	for i := count - 1; i >= 0; i-- {
		for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			d = d.AddDate(0, 0, -1)
		}
		p := basePrice * (1 + 0.05*math.Sin(float64(i)/7) + float64(i-count/2)*0.0005)
		bars[i] = model.PriceBar{
			Date:   d,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
		d = d.AddDate(0, 0, -1)
	}
	return bars
}

// Ingested is the output of one collection: the normalized ticker, its
// display name and its daily history.
type Ingested struct {
	Ticker string
	Name   string
	Series model.PriceSeries
}

// Collector orchestrates memoized price and name fetching.
type Collector struct {
	Fetcher Fetcher
	Names   NameResolver
	Cache   *cache.Cache
	Logger  *zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, names NameResolver, c *cache.Cache, logger *zerolog.Logger) *Collector {
	if c == nil {
		c = cache.New(0)
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Collector{Fetcher: fetcher, Names: names, Cache: c, Logger: logger}
}

// Collect normalizes the ticker, then fetches its history and display name
// through the cache. Any failure drops both cached entries of the ticker so
// the next attempt goes back to the source.
func (c *Collector) Collect(ctx context.Context, rawTicker string) (*Ingested, error) {
	ticker := NormalizeTicker(rawTicker)
	if ticker == "" {
		return nil, fmt.Errorf("%w: empty ticker", model.ErrMalformedInput)
	}

	series, err := cache.Do(c.Cache, cache.Key{Func: fetchFunc + ":" + c.Fetcher.Name(), Args: ticker},
		func() (model.PriceSeries, error) {
			c.Logger.Debug().Str("ticker", ticker).Str("source", c.Fetcher.Name()).Msg("fetching daily bars")
			return c.Fetcher.FetchDailyBars(ctx, ticker)
		})
	if err != nil {
		c.Invalidate(ticker)
		return nil, fmt.Errorf("fetch daily bars: %w", err)
	}

	name, err := cache.Do(c.Cache, cache.Key{Func: nameFunc, Args: ticker},
		func() (string, error) {
			c.Logger.Debug().Str("ticker", ticker).Msg("resolving name")
			return c.Names.ResolveName(ctx, ticker)
		})
	if err != nil {
		c.Invalidate(ticker)
		return nil, fmt.Errorf("resolve name: %w", err)
	}

	return &Ingested{Ticker: ticker, Name: name, Series: series}, nil
}

// Invalidate drops every cached result of a ticker and reports how many entries went.
func (c *Collector) Invalidate(rawTicker string) int {
	ticker := NormalizeTicker(rawTicker)
	n := c.Cache.InvalidateArgs(ticker)
	if n > 0 {
		c.Logger.Info().Str("ticker", ticker).Int("entries", n).Msg("cache invalidated")
	}
	return n
}
