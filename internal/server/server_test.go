package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"StockAnalyser/internal/analyser"
	"StockAnalyser/internal/calculator"
	"StockAnalyser/internal/collector"
	"StockAnalyser/internal/model"
	"StockAnalyser/internal/recorder"

	"github.com/go-fuego/fuego"
	"github.com/peterldowns/testy/assert"
	"github.com/tidwall/gjson"
)

type fixture struct {
	server  *fuego.Server
	fetcher *collector.MockFetcher
	rec     *recorder.SQLiteRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fetcher := &collector.MockFetcher{Price: 60, Days: 300, End: time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)}
	names := &collector.StaticNameResolver{Names: map[string]string{"orlen": "ORLEN"}}
	col := collector.NewCollector(fetcher, names, nil, nil)
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"), nil)
	assert.NoError(t, err)
	t.Cleanup(func() { rec.Close() })

	s := fuego.NewServer()
	Resources{
		Service:  analyser.NewService(col, calculator.DefaultStochastic, nil),
		Recorder: rec,
		Defaults: analyser.Request{Months: 3, Rows: 7, Alpha: 0.05},
	}.Routes(s)
	return &fixture{server: s, fetcher: fetcher, rec: rec}
}

func (f *fixture) do(t *testing.T, method, target string) (*httptest.ResponseRecorder, gjson.Result) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	f.server.Mux.ServeHTTP(w, req)
	return w, gjson.Parse(w.Body.String())
}

func TestGetAnalysis(t *testing.T) {
	f := newFixture(t)

	w, body := f.do(t, http.MethodGet, "/analysis/ORLEN")
	assert.Equal(t, w.Code, http.StatusOK)
	assert.Equal(t, body.Get("ticker").String(), "orlen")
	assert.Equal(t, body.Get("name").String(), "ORLEN")
	assert.Equal(t, body.Get("months").Int(), int64(3))
	assert.Equal(t, len(body.Get("preview").Array()), 7)
	assert.Equal(t, body.Get("preview.6.date").String(), "2024-06-28")
	assert.True(t, body.Get("summary.var").Exists())
	assert.False(t, body.Get("chart").Exists())

	w, body = f.do(t, http.MethodGet, "/analysis/orlen?months=1%20month&rows=5&alpha=0.01&chart=true")
	assert.Equal(t, w.Code, http.StatusOK)
	assert.Equal(t, len(body.Get("preview").Array()), 5)
	assert.Equal(t, body.Get("summary.alpha").Float(), 0.01)
	assert.True(t, len(body.Get("chart").Array()) > 15)
	assert.Equal(t, f.fetcher.Calls(), 1)
}

func TestGetAnalysis_NullForMissing(t *testing.T) {
	f := newFixture(t)
	f.fetcher.DailyData = []model.PriceBar{
		{Date: time.Date(2024, 6, 26, 0, 0, 0, 0, time.UTC), Open: 10, High: 11, Low: 9, Close: 10},
		{Date: time.Date(2024, 6, 27, 0, 0, 0, 0, time.UTC), Open: 10, High: 11, Low: 9, Close: 11},
		{Date: time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC), Open: 11, High: 12, Low: 10, Close: 9.9},
	}

	w, body := f.do(t, http.MethodGet, "/analysis/orlen?chart=true")
	assert.Equal(t, w.Code, http.StatusOK)
	first := body.Get("preview.0")
	assert.Equal(t, first.Get("daily_return").Type, gjson.Null)
	assert.Equal(t, body.Get("preview.1.daily_return").Float() > 0.09, true)
	assert.Equal(t, body.Get("chart.2.stoch_k").Type, gjson.Null)
}

func TestGetAnalysis_Errors(t *testing.T) {
	f := newFixture(t)

	w, body := f.do(t, http.MethodGet, "/analysis/nope")
	assert.Equal(t, w.Code, http.StatusNotFound)
	assert.Equal(t, body.Get("detail").String(), "No data for this ticker")

	for _, target := range []string{
		"/analysis/orlen?months=0",
		"/analysis/orlen?months=soon",
		"/analysis/orlen?rows=3",
		"/analysis/orlen?rows=many",
		"/analysis/orlen?alpha=0.5",
		"/analysis/orlen?alpha=NaN",
	} {
		w, _ = f.do(t, http.MethodGet, target)
		assert.Equal(t, w.Code, http.StatusBadRequest)
	}

	f.fetcher.Err = errTransport
	f.do(t, http.MethodDelete, "/cache/orlen")
	w, body = f.do(t, http.MethodGet, "/analysis/orlen")
	assert.Equal(t, w.Code, http.StatusInternalServerError)
	assert.Equal(t, body.Get("detail").String(), "Unexpected error occurred")
}

func TestGetAnalysis_RejectsBeforeFetch(t *testing.T) {
	f := newFixture(t)

	w, body := f.do(t, http.MethodGet, "/analysis/orlen?alpha=NaN")
	assert.Equal(t, w.Code, http.StatusBadRequest)
	assert.True(t, strings.HasPrefix(body.Get("detail").String(), "malformed input: significance level"))
	assert.Equal(t, f.fetcher.Calls(), 0)
}

func TestDeleteCache(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/analysis/orlen")

	w, body := f.do(t, http.MethodDelete, "/cache/ORLEN")
	assert.Equal(t, w.Code, http.StatusOK)
	assert.Equal(t, body.Get("ticker").String(), "orlen")
	assert.Equal(t, body.Get("invalidated").Int(), int64(2))

	f.do(t, http.MethodGet, "/analysis/orlen")
	assert.Equal(t, f.fetcher.Calls(), 2)
}

func TestGetHistory(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/analysis/orlen")
	f.do(t, http.MethodGet, "/analysis/orlen?months=12")

	w, body := f.do(t, http.MethodGet, "/history/orlen")
	assert.Equal(t, w.Code, http.StatusOK)
	runs := body.Array()
	assert.Equal(t, len(runs), 2)
	assert.Equal(t, runs[0].Get("trigger").String(), "API")
	assert.Equal(t, runs[0].Get("last_date").String(), "2024-06-28")
	assert.True(t, runs[0].Get("summary.return").Exists())

	w, body = f.do(t, http.MethodGet, "/history/orlen?limit=1")
	assert.Equal(t, w.Code, http.StatusOK)
	assert.Equal(t, len(body.Array()), 1)

	w, _ = f.do(t, http.MethodGet, "/history/orlen?limit=-1")
	assert.Equal(t, w.Code, http.StatusBadRequest)

	w, body = f.do(t, http.MethodGet, "/history/cdr")
	assert.Equal(t, w.Code, http.StatusOK)
	assert.Equal(t, len(body.Array()), 0)
}

// blockingRunner serves until Shutdown is called, like http.Server.
type blockingRunner struct {
	stop     chan struct{}
	shutdown bool
	runErr   error
}

func (r *blockingRunner) Run() error {
	if r.runErr != nil {
		return r.runErr
	}
	<-r.stop
	return http.ErrServerClosed
}

func (r *blockingRunner) Shutdown(context.Context) error {
	r.shutdown = true
	close(r.stop)
	return nil
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	r := &blockingRunner{stop: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Serve(ctx, r, nil)
	assert.NoError(t, err)
	assert.True(t, r.shutdown)
}

func TestServe_RunError(t *testing.T) {
	r := &blockingRunner{stop: make(chan struct{}), runErr: errTransport}

	err := Serve(context.Background(), r, nil)
	assert.Equal(t, err, error(errTransport))
	assert.False(t, r.shutdown)
}

var errTransport = &transportError{}

type transportError struct{}

func (*transportError) Error() string { return "connection reset by peer" }
