package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"StockAnalyser/internal/analyser"
	"StockAnalyser/internal/collector"
	"StockAnalyser/internal/model"
	"StockAnalyser/internal/recorder"

	"github.com/go-fuego/fuego"
	"github.com/go-fuego/fuego/option"
	"github.com/go-fuego/fuego/param"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

// Resources groups the analysis HTTP handlers.
type Resources struct {
	Service  *analyser.Service
	Recorder recorder.Recorder
	Defaults analyser.Request
	Logger   *zerolog.Logger
}

// New creates a fuego server listening on addr with every route registered.
func New(addr string, rs Resources) *fuego.Server {
	s := fuego.NewServer(fuego.WithAddr(addr))
	rs.Routes(s)
	return s
}

// Runner is a server that can be stopped from outside its Run loop.
type Runner interface {
	Run() error
	Shutdown(ctx context.Context) error
}

// Serve runs s until it fails or ctx is done, then shuts it down and waits
// for Run to return.
func Serve(ctx context.Context, s Runner, logger *zerolog.Logger) error {
	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Run()
	}()

	select {
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	if logger != nil {
		logger.Info().Msg("shutting down api")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errChan; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Routes registers the analysis, cache and history routes.
func (rs Resources) Routes(s *fuego.Server) {
	fuego.Get(s, "/analysis/{ticker}", rs.GetAnalysis,
		option.Description("Analyse a ticker over a trailing window"),
		option.Query("months", "Lookback window, e.g. 6 or \"6 months\""),
		option.QueryInt("rows", "Number of preview rows (5-20)"),
		option.Query("alpha", "Significance level (0.01-0.10)"),
		option.QueryBool("chart", "Include the charting series"),
	)
	fuego.Delete(s, "/cache/{ticker}", rs.DeleteCache,
		option.Description("Drop the cached fetches of a ticker"),
	)
	fuego.Get(s, "/history/{ticker}", rs.GetHistory,
		option.Description("Recently recorded runs of a ticker, newest first"),
		option.QueryInt("limit", "Maximum number of runs", param.Default(10)),
	)
}

func (rs Resources) logger() *zerolog.Logger {
	if rs.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return rs.Logger
}

// request parses the query controls on top of the defaults.
func (rs Resources) request(c fuego.ContextNoBody) (analyser.Request, error) {
	req := rs.Defaults.WithDefaults()
	req.Ticker = c.PathParam("ticker")

	if v := c.QueryParam("months"); v != "" {
		months, err := model.ParseLookback(v)
		if err != nil {
			return req, err
		}
		req.Months = months
	}
	if v := c.QueryParam("rows"); v != "" {
		rows, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("%w: rows must be an integer", model.ErrMalformedInput)
		}
		req.Rows = rows
	}
	if v := c.QueryParam("alpha"); v != "" {
		alpha, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, fmt.Errorf("%w: alpha must be a number", model.ErrMalformedInput)
		}
		req.Alpha = alpha
	}
	return req, req.Validate()
}

func (rs Resources) GetAnalysis(c fuego.ContextNoBody) (AnalysisResponse, error) {
	req, err := rs.request(c)
	if err != nil {
		return AnalysisResponse{}, httpError(err)
	}

	res, err := rs.Service.Run(c.Request().Context(), req)
	var rec *recorder.RunRecord
	if err != nil {
		rec = recorder.FailedRun(collector.NormalizeTicker(req.Ticker), req.Months, req.Alpha, recorder.TriggerAPI, err)
	} else {
		rec = recorder.NewRunRecord(res, recorder.TriggerAPI)
	}
	if rs.Recorder != nil {
		if recErr := rs.Recorder.RecordRun(rec); recErr != nil {
			rs.logger().Error().Err(recErr).Str("ticker", rec.Ticker).Msg("record run")
		}
	}
	if err != nil {
		return AnalysisResponse{}, httpError(err)
	}

	withChart, _ := strconv.ParseBool(c.QueryParam("chart"))
	return newAnalysisResponse(res, withChart), nil
}

func (rs Resources) DeleteCache(c fuego.ContextNoBody) (CacheResponse, error) {
	ticker := collector.NormalizeTicker(c.PathParam("ticker"))
	if ticker == "" {
		return CacheResponse{}, httpError(fmt.Errorf("%w: empty ticker", model.ErrMalformedInput))
	}
	n := rs.Service.Collector.Invalidate(ticker)
	return CacheResponse{Ticker: ticker, Invalidated: n}, nil
}

func (rs Resources) GetHistory(c fuego.ContextNoBody) ([]Run, error) {
	ticker := collector.NormalizeTicker(c.PathParam("ticker"))
	limit := 10
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, httpError(fmt.Errorf("%w: limit must be a positive integer", model.ErrMalformedInput))
		}
		limit = n
	}
	if rs.Recorder == nil {
		return []Run{}, nil
	}
	runs, err := rs.Recorder.RecentRuns(ticker, limit)
	if err != nil {
		return nil, httpError(err)
	}
	out := make([]Run, 0, len(runs))
	for _, r := range runs {
		out = append(out, newRun(r))
	}
	return out, nil
}

// httpError maps domain errors to problem responses. Only not-found and
// malformed input details reach the client.
func httpError(err error) error {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return fuego.NotFoundError{Title: "Not Found", Detail: model.UserMessage(err), Err: err}
	case errors.Is(err, model.ErrMalformedInput):
		return fuego.BadRequestError{Title: "Malformed Input", Detail: model.UserMessage(err), Err: err}
	default:
		return fuego.HTTPError{Title: "Internal Server Error", Status: http.StatusInternalServerError, Detail: model.UserMessage(err), Err: err}
	}
}
