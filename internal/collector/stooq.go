package collector

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"StockAnalyser/internal/model"
)

// DefaultStooqURL is the public stooq.pl site.
const DefaultStooqURL = "https://stooq.pl"

// StooqFetcher implements Fetcher using the stooq.pl daily CSV export.
type StooqFetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewStooqFetcher creates a stooq fetcher with optional proxy support.
func NewStooqFetcher(baseURL, proxyURL string) *StooqFetcher {
	if baseURL == "" {
		baseURL = DefaultStooqURL
	}
	return &StooqFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  NewHTTPClient(proxyURL),
	}
}

func (f *StooqFetcher) Name() string { return "stooq" }

func (f *StooqFetcher) FetchDailyBars(ctx context.Context, ticker string) (model.PriceSeries, error) {
	params := url.Values{}
	params.Set("s", ticker)
	params.Set("i", "d")
	u := f.BaseURL + "/q/d/l/?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.PriceSeries{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("stooq fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return model.PriceSeries{}, fmt.Errorf("stooq %s: %w", ticker, model.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return model.PriceSeries{}, fmt.Errorf("stooq: status %d, body: %s", resp.StatusCode, string(body))
	}

	bars, err := ParseStooqCSV(resp.Body)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("stooq %s: %w", ticker, err)
	}
	return model.PriceSeries{Ticker: ticker, Bars: bars, FetchedAt: time.Now()}, nil
}

// ParseStooqCSV parses a date,open,high,low,close[,volume] export.
// The header row may be in Polish or English. A body without data rows
// (stooq answers "Brak danych" / "No data") is model.ErrNotFound.
func ParseStooqCSV(r io.Reader) ([]model.PriceBar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var bars []model.PriceBar
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if line == 1 {
			if len(rec) < 5 {
				msg := strings.ToLower(strings.Join(rec, " "))
				if strings.Contains(msg, "brak danych") || strings.Contains(msg, "no data") {
					return nil, model.ErrNotFound
				}
				return nil, fmt.Errorf("unexpected response: %q", strings.Join(rec, ","))
			}
			if _, err := time.Parse(time.DateOnly, rec[0]); err != nil {
				continue // header
			}
		}
		bar, err := parseStooqRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, model.ErrNotFound
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return dedupeDates(bars), nil
}

func parseStooqRecord(rec []string) (model.PriceBar, error) {
	if len(rec) < 5 {
		return model.PriceBar{}, fmt.Errorf("expected at least 5 fields, got %d", len(rec))
	}
	d, err := time.Parse(time.DateOnly, rec[0])
	if err != nil {
		return model.PriceBar{}, fmt.Errorf("parse date: %w", err)
	}
	var prices [4]float64
	for i := range prices {
		prices[i], err = strconv.ParseFloat(rec[i+1], 64)
		if err != nil {
			return model.PriceBar{}, fmt.Errorf("parse price %q: %w", rec[i+1], err)
		}
	}
	bar := model.PriceBar{
		Date:  d,
		Open:  prices[0],
		High:  prices[1],
		Low:   prices[2],
		Close: prices[3],
	}
	// Indices come without a volume column.
	if len(rec) > 5 && rec[5] != "" {
		v, err := strconv.ParseFloat(rec[5], 64)
		if err != nil {
			return model.PriceBar{}, fmt.Errorf("parse volume %q: %w", rec[5], err)
		}
		bar.Volume = int64(v)
	}
	return bar, nil
}

// dedupeDates keeps the last bar of each date in an ascending series.
func dedupeDates(bars []model.PriceBar) []model.PriceBar {
	out := bars[:0]
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Date.Equal(b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}
