package calculator

import (
	"fmt"
	"math"

	"StockAnalyser/internal/model"
)

// StochasticParams configures the stochastic oscillator.
// A SmoothPeriod of 1 disables smoothing of %K.
type StochasticParams struct {
	KPeriod      int `yaml:"k_period"`
	DPeriod      int `yaml:"d_period"`
	SmoothPeriod int `yaml:"smooth_period"`
}

// DefaultStochastic is the (14, 3, 3) slow stochastic.
var DefaultStochastic = StochasticParams{KPeriod: 14, DPeriod: 3, SmoothPeriod: 3}

// Validate checks that every period is positive.
func (p StochasticParams) Validate() error {
	if p.KPeriod <= 0 || p.DPeriod <= 0 || p.SmoothPeriod <= 0 {
		return fmt.Errorf("%w: oscillator periods must be positive, got (%d, %d, %d)",
			model.ErrMalformedInput, p.KPeriod, p.DPeriod, p.SmoothPeriod)
	}
	return nil
}

// WarmUp returns how many leading bars have an undefined %K and %D.
func (p StochasticParams) WarmUp() (k, d int) {
	k = p.KPeriod - 1 + p.SmoothPeriod - 1
	return k, k + p.DPeriod - 1
}

// Stochastic computes the %K (fast) and %D (slow) lines for every bar.
// Leading values inside the warm-up period are NaN.
func Stochastic(bars []model.PriceBar, p StochasticParams) (k, d []float64, err error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}

	highs, lows := RollingRange(bars, p.KPeriod)
	raw := make([]float64, len(bars))
	for i, bar := range bars {
		if math.IsNaN(highs[i]) {
			raw[i] = math.NaN()
			continue
		}
		span := highs[i] - lows[i]
		if span == 0 {
			raw[i] = 0
			continue
		}
		raw[i] = 100 * (bar.Close - lows[i]) / span
	}

	k = raw
	if p.SmoothPeriod > 1 {
		k = RollingSMA(raw, p.SmoothPeriod)
	}
	d = RollingSMA(k, p.DPeriod)
	return k, d, nil
}
