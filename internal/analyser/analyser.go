package analyser

import (
	"context"
	"fmt"
	"time"

	"StockAnalyser/internal/calculator"
	"StockAnalyser/internal/collector"
	"StockAnalyser/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Control bounds and defaults.
const (
	DefaultMonths = 6
	DefaultRows   = 5
	DefaultAlpha  = 0.05

	MinRows  = 5
	MaxRows  = 20
	MinAlpha = 0.01
	MaxAlpha = 0.10
)

// Request is one analysis submission.
type Request struct {
	Ticker string
	Months int
	Rows   int
	Alpha  float64
}

// WithDefaults fills zero-valued controls.
func (r Request) WithDefaults() Request {
	if r.Months == 0 {
		r.Months = DefaultMonths
	}
	if r.Rows == 0 {
		r.Rows = DefaultRows
	}
	if r.Alpha == 0 {
		r.Alpha = DefaultAlpha
	}
	return r
}

// Validate checks the controls. Every failure wraps model.ErrMalformedInput.
func (r Request) Validate() error {
	if r.Months <= 0 {
		return fmt.Errorf("%w: months must be a positive integer, got %d", model.ErrMalformedInput, r.Months)
	}
	if r.Rows < MinRows || r.Rows > MaxRows {
		return fmt.Errorf("%w: rows must be between %d and %d, got %d", model.ErrMalformedInput, MinRows, MaxRows, r.Rows)
	}
	// Small tolerance so slider-style steps such as 0.01*10 pass. NaN fails both comparisons.
	if !(r.Alpha >= MinAlpha-1e-9 && r.Alpha <= MaxAlpha+1e-9) {
		return fmt.Errorf("%w: significance level must be between %.2f and %.2f, got %v", model.ErrMalformedInput, MinAlpha, MaxAlpha, r.Alpha)
	}
	return nil
}

// Analyse runs the analytics pipeline over ingested data. Returns and
// indicators are computed on the full history before windowing.
func Analyse(in *collector.Ingested, req Request, osc calculator.StochasticParams) (*model.Result, error) {
	returns := calculator.Returns(in.Series)

	display, err := calculator.Display(returns, req.Months)
	if err != nil {
		return nil, fmt.Errorf("display window: %w", err)
	}
	chart, err := calculator.Indicators(in.Series, osc, req.Months)
	if err != nil {
		return nil, fmt.Errorf("indicators: %w", err)
	}
	summary, err := calculator.Summarise(display, req.Alpha)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}

	return &model.Result{
		ID:          uuid.NewString(),
		Ticker:      in.Ticker,
		Name:        in.Name,
		Months:      req.Months,
		Rows:        req.Rows,
		Alpha:       req.Alpha,
		Returns:     returns,
		Display:     display,
		Chart:       chart,
		Summary:     summary,
		GeneratedAt: time.Now(),
	}, nil
}

// Service combines ingestion and analytics.
type Service struct {
	Collector  *collector.Collector
	Oscillator calculator.StochasticParams
	Logger     *zerolog.Logger
}

// NewService creates a Service. A zero oscillator uses the (14, 3, 3) defaults.
func NewService(col *collector.Collector, osc calculator.StochasticParams, logger *zerolog.Logger) *Service {
	if osc == (calculator.StochasticParams{}) {
		osc = calculator.DefaultStochastic
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Service{Collector: col, Oscillator: osc, Logger: logger}
}

// Run validates the request, collects the ticker and analyses it.
// Invalid input is rejected before any fetch. Any later failure drops the
// ticker's cached fetches.
func (s *Service) Run(ctx context.Context, req Request) (*model.Result, error) {
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.Oscillator.Validate(); err != nil {
		return nil, fmt.Errorf("oscillator: %w", err)
	}

	in, err := s.Collector.Collect(ctx, req.Ticker)
	if err != nil {
		s.logFailure(req, err)
		return nil, err
	}

	res, err := Analyse(in, req, s.Oscillator)
	if err != nil {
		s.Collector.Invalidate(in.Ticker)
		s.logFailure(req, err)
		return nil, fmt.Errorf("analyse %s: %w", in.Ticker, err)
	}

	s.Logger.Info().
		Str("ticker", res.Ticker).
		Str("name", res.Name).
		Int("months", res.Months).
		Int("observations", res.Summary.Observations).
		Msg("analysis complete")
	return res, nil
}

func (s *Service) logFailure(req Request, err error) {
	ev := s.Logger.Warn()
	if model.UserMessage(err) == "Unexpected error occurred" {
		ev = s.Logger.Error()
	}
	ev.Err(err).Str("ticker", req.Ticker).Msg("analysis failed")
}
