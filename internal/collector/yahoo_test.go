package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"StockAnalyser/internal/model"

	"github.com/peterldowns/testy/assert"
)

// 2024-06-24, 2024-06-25 (holiday, null prices), 2024-06-26 at 13:30 UTC.
const yahooChart = `{"chart":{"result":[{"meta":{"symbol":"AAPL"},
"timestamp":[1719235800,1719322200,1719408600],
"indicators":{"quote":[{
"open":[208.1,null,211.5],
"high":[212.7,null,214.8],
"low":[206.6,null,210.8],
"close":[208.1,null,213.25],
"volume":[80727000,null,66213200]}]}}],"error":null}}`

func TestParseYahooChart(t *testing.T) {
	bars, err := ParseYahooChart([]byte(yahooChart))
	assert.NoError(t, err)
	assert.Equal(t, len(bars), 2)
	assert.Equal(t, bars[0].Date.Day(), 24)
	assert.Equal(t, bars[0].Date.Hour(), 0)
	assert.Equal(t, bars[1].Close, 213.25)
	assert.Equal(t, bars[1].Volume, int64(66213200))
}

// 2024-06-03 00:00 UTC is the Tokyo open of 2024-06-03 (UTC+9 puts the
// raw timestamp on 2024-06-02 15:00 UTC). The second bar lacks a low.
const yahooTokyoChart = `{"chart":{"result":[{"meta":{"symbol":"7203.T","gmtoffset":32400},
"timestamp":[1717372800,1717459200,1717545600],
"indicators":{"quote":[{
"open":[3300,3310,3320],
"high":[3350,3360,3370],
"low":[3280,null,3300],
"close":[3320,3330,3340],
"volume":[100,200,300]}]}}],"error":null}}`

func TestParseYahooChart_OffsetAndPartialNulls(t *testing.T) {
	bars, err := ParseYahooChart([]byte(yahooTokyoChart))
	assert.NoError(t, err)
	assert.Equal(t, len(bars), 2)
	assert.Equal(t, bars[0].Date, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, bars[1].Date, time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC))
	for _, b := range bars {
		assert.True(t, b.Low > 0)
	}
}

func TestParseYahooChart_Errors(t *testing.T) {
	_, err := ParseYahooChart([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	assert.Error(t, err)

	_, err = ParseYahooChart([]byte(`{"chart":{"result":[{"timestamp":[]}],"error":null}}`))
	assert.True(t, errors.Is(err, model.ErrNotFound))

	_, err = ParseYahooChart([]byte(`not json`))
	assert.Error(t, err)
}

func TestYahooFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v8/finance/chart/AAPL":
			_, _ = w.Write([]byte(yahooChart))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
		}
	}))
	defer srv.Close()

	f := NewYahooFetcher(srv.URL, "")
	assert.Equal(t, f.yahooSymbol("aapl.us"), "AAPL")
	assert.Equal(t, f.yahooSymbol("spx"), "^GSPC")
	assert.Equal(t, f.yahooSymbol("pkn.wa"), "PKN.WA")

	series, err := f.FetchDailyBars(context.Background(), "aapl.us")
	assert.NoError(t, err)
	assert.Equal(t, series.Len(), 2)

	_, err = f.FetchDailyBars(context.Background(), "zzzz")
	assert.True(t, errors.Is(err, model.ErrNotFound))
}
