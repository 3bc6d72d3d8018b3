package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"StockAnalyser/internal/model"

	"github.com/peterldowns/testy/assert"
)

const stooqCSV = `Data,Otwarcie,Najwyzszy,Najnizszy,Zamkniecie,Wolumen
2024-06-26,60.1,61.0,59.8,60.5,1200300
2024-06-24,59.0,60.2,58.7,60.0,980000
2024-06-25,60.0,60.4,59.5,59.9,1010000.0
`

func TestParseStooqCSV(t *testing.T) {
	bars, err := ParseStooqCSV(strings.NewReader(stooqCSV))
	assert.NoError(t, err)
	assert.Equal(t, len(bars), 3)

	// Sorted ascending regardless of the source order.
	assert.Equal(t, bars[0].Date, time.Date(2024, 6, 24, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, bars[2].Date.Day(), 26)
	assert.Equal(t, bars[2].Open, 60.1)
	assert.Equal(t, bars[2].High, 61.0)
	assert.Equal(t, bars[2].Low, 59.8)
	assert.Equal(t, bars[2].Close, 60.5)
	assert.Equal(t, bars[2].Volume, int64(1200300))
	assert.Equal(t, bars[1].Volume, int64(1010000))
}

func TestParseStooqCSV_NoVolume(t *testing.T) {
	data := "Date,Open,High,Low,Close\n2024-06-24,2400,2410,2390,2405\n"
	bars, err := ParseStooqCSV(strings.NewReader(data))
	assert.NoError(t, err)
	assert.Equal(t, len(bars), 1)
	assert.Equal(t, bars[0].Volume, int64(0))
}

func TestParseStooqCSV_DuplicateDates(t *testing.T) {
	data := "2024-06-24,1,1,1,1,1\n2024-06-24,2,2,2,2,2\n2024-06-25,3,3,3,3,3\n"
	bars, err := ParseStooqCSV(strings.NewReader(data))
	assert.NoError(t, err)
	assert.Equal(t, len(bars), 2)
	assert.Equal(t, bars[0].Close, 2.0)
}

func TestParseStooqCSV_NotFound(t *testing.T) {
	for _, body := range []string{"", "Brak danych", "No data", "Data,Otwarcie,Najwyzszy,Najnizszy,Zamkniecie,Wolumen\n"} {
		_, err := ParseStooqCSV(strings.NewReader(body))
		assert.True(t, errors.Is(err, model.ErrNotFound))
	}
}

func TestParseStooqCSV_Errors(t *testing.T) {
	_, err := ParseStooqCSV(strings.NewReader("Przekroczony dzienny limit wywolan"))
	assert.Error(t, err)
	assert.False(t, errors.Is(err, model.ErrNotFound))

	_, err = ParseStooqCSV(strings.NewReader("2024-06-24,abc,1,1,1,1\n"))
	assert.Error(t, err)
}

func TestStooqFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, r.URL.Path, "/q/d/l/")
		assert.Equal(t, r.URL.Query().Get("i"), "d")
		switch r.URL.Query().Get("s") {
		case "orlen":
			_, _ = w.Write([]byte(stooqCSV))
		case "broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			_, _ = w.Write([]byte("Brak danych"))
		}
	}))
	defer srv.Close()

	f := NewStooqFetcher(srv.URL+"/", "")
	assert.Equal(t, f.Name(), "stooq")

	series, err := f.FetchDailyBars(context.Background(), "orlen")
	assert.NoError(t, err)
	assert.Equal(t, series.Ticker, "orlen")
	assert.Equal(t, series.Len(), 3)

	_, err = f.FetchDailyBars(context.Background(), "nope")
	assert.True(t, errors.Is(err, model.ErrNotFound))

	_, err = f.FetchDailyBars(context.Background(), "broken")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, model.ErrNotFound))
}
