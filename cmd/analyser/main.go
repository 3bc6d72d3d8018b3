package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"StockAnalyser/internal/analyser"
	"StockAnalyser/internal/cache"
	"StockAnalyser/internal/collector"
	"StockAnalyser/internal/config"
	"StockAnalyser/internal/model"
	"StockAnalyser/internal/recorder"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"github.com/spf13/cobra"
)

var (
	version  = "0.1.0"
	cfgPath  string
	envPath  string
	logLevel string
)

// app carries the wiring shared by every subcommand.
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	service *analyser.Service
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "analyser",
		Short: "Stock price analytics for stooq tickers",
		Long: `analyser downloads daily prices, computes returns, moving averages and a
stochastic oscillator, and summarises the trailing window with annualized
return, volatility, Value at Risk and Expected Shortfall.

Without a subcommand it starts an interactive session.`,
		SilenceUsage: true,
		RunE:         runInteractive,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Config file (defaults to CONFIG_PATH or configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envPath, "env", ".env", "Dotenv file loaded before the config")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "Override the configured log level")

	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(historyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("analyser version %s\n", version)
		},
	}
}

// setup loads the environment and config, then builds the logger and the
// analysis service.
func setup() (*app, error) {
	if err := config.LoadDotEnv(envPath); err != nil {
		return nil, err
	}
	path := cfgPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	logger := newLogger(cfg.LogLevel)

	fetcher, names := newSources(cfg)
	logger.Info().Str("source", fetcher.Name()).Msg("data source selected")

	col := collector.NewCollector(fetcher, names, cache.New(cfg.Cache.MaxAge), &logger)
	svc := analyser.NewService(col, cfg.Analysis.Oscillator, &logger)
	return &app{cfg: cfg, logger: logger, service: svc}, nil
}

func newLogger(level string) zerolog.Logger {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}).
		Level(lvl).
		With().Str("service", "analyser").Logger()
}

// newSources picks the price and name sources for the configured provider.
func newSources(cfg *config.Config) (collector.Fetcher, collector.NameResolver) {
	switch cfg.DataSource.Provider {
	case config.ProviderYahoo:
		return collector.NewYahooFetcher(cfg.DataSource.BaseURL, cfg.Proxy),
			collector.NewHTMLNameResolver(cfg.DataSource.NameURL, cfg.DataSource.NameElementID, cfg.Proxy)
	case config.ProviderMock:
		return &collector.MockFetcher{Price: 100, Days: 800}, &collector.StaticNameResolver{Fallback: true}
	default:
		return collector.NewStooqFetcher(cfg.DataSource.BaseURL, cfg.Proxy),
			collector.NewHTMLNameResolver(cfg.DataSource.NameURL, cfg.DataSource.NameElementID, cfg.Proxy)
	}
}

// openRecorder falls back to a noop recorder when sqlite cannot be opened.
func (a *app) openRecorder() recorder.Recorder {
	if a.cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(a.cfg.Database.SQLitePath, &a.logger)
	if err != nil {
		a.logger.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}

// record stores the outcome of one analysis; failures only get logged.
func (a *app) record(rec recorder.Recorder, req analyser.Request, res *model.Result, runErr error) {
	var run *recorder.RunRecord
	if runErr != nil {
		run = recorder.FailedRun(collector.NormalizeTicker(req.Ticker), req.Months, req.Alpha, recorder.TriggerManual, runErr)
	} else {
		run = recorder.NewRunRecord(res, recorder.TriggerManual)
	}
	if err := rec.RecordRun(run); err != nil {
		a.logger.Error().Err(err).Str("ticker", run.Ticker).Msg("record run")
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
