package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"StockAnalyser/internal/model"

	"github.com/peterldowns/testy/assert"
)

const quotePage = `<html><head><title>ORLEN - stooq</title></head>
<body><table><tr><td id="aq_name"><b>ORLEN</b>
   SA</td></tr></table></body></html>`

func TestExtractElementText(t *testing.T) {
	name, err := ExtractElementText(strings.NewReader(quotePage), "aq_name")
	assert.NoError(t, err)
	assert.Equal(t, name, "ORLEN SA")

	_, err = ExtractElementText(strings.NewReader(quotePage), "other")
	assert.True(t, errors.Is(err, model.ErrFormatChanged))

	_, err = ExtractElementText(strings.NewReader(`<p id="aq_name">  </p>`), "aq_name")
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestHTMLNameResolver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("s") {
		case "orlen":
			_, _ = w.Write([]byte(quotePage))
		case "redesigned":
			_, _ = w.Write([]byte(`<html><body><h1 class="name">ORLEN</h1></body></html>`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	r := NewHTMLNameResolver(srv.URL+"/q/?s=%s", "", "")
	assert.Equal(t, r.ElementID, DefaultNameElementID)

	name, err := r.ResolveName(context.Background(), "orlen")
	assert.NoError(t, err)
	assert.Equal(t, name, "ORLEN SA")

	_, err = r.ResolveName(context.Background(), "redesigned")
	assert.True(t, errors.Is(err, model.ErrFormatChanged))

	_, err = r.ResolveName(context.Background(), "missing")
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestStaticNameResolver(t *testing.T) {
	r := &StaticNameResolver{Names: map[string]string{"pko": "PKO BP"}}
	name, err := r.ResolveName(context.Background(), "pko")
	assert.NoError(t, err)
	assert.Equal(t, name, "PKO BP")

	_, err = r.ResolveName(context.Background(), "cdr")
	assert.True(t, errors.Is(err, model.ErrNotFound))

	r.Fallback = true
	name, err = r.ResolveName(context.Background(), "cdr")
	assert.NoError(t, err)
	assert.Equal(t, name, "CDR")
}
