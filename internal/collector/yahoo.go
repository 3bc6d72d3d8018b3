package collector

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"StockAnalyser/internal/model"

	"github.com/tidwall/gjson"
)

// DefaultYahooURL is the Yahoo Finance chart API host.
const DefaultYahooURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using Yahoo Finance public API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps normalized ticker to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(baseURL, proxyURL string) *YahooFetcher {
	if baseURL == "" {
		baseURL = DefaultYahooURL
	}
	return &YahooFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  NewHTTPClient(proxyURL),
		SymbolMap: map[string]string{
			"spx":    "^GSPC",
			"^spx":   "^GSPC",
			"sp500":  "^GSPC",
			"wig20":  "WIG20.WA",
			"^wig20": "WIG20.WA",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

// yahooSymbol maps a stooq-style normalized ticker to Yahoo's notation:
// "aapl.us" is "AAPL", other exchange suffixes are kept upper-cased.
func (f *YahooFetcher) yahooSymbol(ticker string) string {
	if mapped, ok := f.SymbolMap[ticker]; ok {
		return mapped
	}
	return strings.ToUpper(strings.TrimSuffix(ticker, ".us"))
}

func (f *YahooFetcher) FetchDailyBars(ctx context.Context, ticker string) (model.PriceSeries, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=max",
		f.BaseURL, url.PathEscape(f.yahooSymbol(ticker)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.PriceSeries{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("yahoo read body: %w", err)
	}
	// Unknown symbols come back as 404 with a chart.error payload.
	if resp.StatusCode == http.StatusNotFound {
		return model.PriceSeries{}, fmt.Errorf("yahoo %s: %w", ticker, model.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return model.PriceSeries{}, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	bars, err := ParseYahooChart(body)
	if err != nil {
		return model.PriceSeries{}, fmt.Errorf("yahoo %s: %w", ticker, err)
	}
	return model.PriceSeries{Ticker: ticker, Bars: bars, FetchedAt: time.Now()}, nil
}

// ParseYahooChart extracts daily bars from a v8 chart response.
// Bars with null prices (holidays etc.) are skipped.
func ParseYahooChart(body []byte) ([]model.PriceBar, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("yahoo decode: invalid json")
	}
	chart := gjson.GetBytes(body, "chart")
	if desc := chart.Get("error.description"); desc.Exists() {
		return nil, fmt.Errorf("yahoo api error: %s", desc.String())
	}

	result := chart.Get("result.0")
	timestamps := result.Get("timestamp").Array()
	if len(timestamps) == 0 {
		return nil, model.ErrNotFound
	}
	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()

	// Timestamps mark the session open in UTC; the exchange offset moves
	// them onto the local trading day.
	offset := result.Get("meta.gmtoffset").Int()

	bars := make([]model.PriceBar, 0, len(timestamps))
	for i, ts := range timestamps {
		if i >= len(closes) || i >= len(opens) || i >= len(highs) || i >= len(lows) {
			break
		}
		if anyNull(opens[i], highs[i], lows[i], closes[i]) {
			continue
		}
		bar := model.PriceBar{
			Date:  model.CalendarDate(time.Unix(ts.Int()+offset, 0).UTC()),
			Open:  opens[i].Float(),
			High:  highs[i].Float(),
			Low:   lows[i].Float(),
			Close: closes[i].Float(),
		}
		if i < len(volumes) {
			bar.Volume = volumes[i].Int()
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, model.ErrNotFound
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return dedupeDates(bars), nil
}

func anyNull(values ...gjson.Result) bool {
	for _, v := range values {
		if v.Type == gjson.Null {
			return true
		}
	}
	return false
}
