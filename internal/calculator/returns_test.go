package calculator

import (
	"math"
	"testing"

	"StockAnalyser/internal/model"

	"github.com/peterldowns/testy/assert"
)

func TestReturns(t *testing.T) {
	series := seriesFromCloses(10, 11, 9, 9, 10.8)
	rows := Returns(series)

	assert.Equal(t, len(rows), len(series.Bars))
	assert.True(t, model.Missing(rows[0].DailyReturn))
	assert.True(t, model.Missing(rows[0].LogDailyReturn))

	want := []float64{0.10, -2.0 / 11, 0, 0.2}
	for i, w := range want {
		if !approx(rows[i+1].DailyReturn, w) {
			t.Errorf("row %d: expected daily return %v, got %v", i+1, w, rows[i+1].DailyReturn)
		}
	}

	// Ensure the input series is left untouched.
	assert.Equal(t, series.Bars[1].Close, 11.0)
}

func TestReturns_LogRoundTrip(t *testing.T) {
	rows := Returns(randomSeries(200, 7))
	for i, row := range rows[1:] {
		assert.False(t, model.Missing(row.DailyReturn))
		if got := math.Exp(row.LogDailyReturn) - 1; !approx(got, row.DailyReturn) {
			t.Errorf("row %d: exp(log return)-1 = %v, daily return %v", i+1, got, row.DailyReturn)
		}
	}
}

func TestReturns_TotalLoss(t *testing.T) {
	rows := Returns(seriesFromCloses(10, 0))
	assert.Equal(t, rows[1].DailyReturn, -1.0)
	assert.True(t, model.Missing(rows[1].LogDailyReturn))
}

func TestReturns_Empty(t *testing.T) {
	rows := Returns(model.PriceSeries{})
	assert.Equal(t, len(rows), 0)
}
