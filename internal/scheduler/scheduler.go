package scheduler

import (
	"context"
	"fmt"
	"strings"

	"StockAnalyser/internal/analyser"
	"StockAnalyser/internal/collector"
	"StockAnalyser/internal/model"
	"StockAnalyser/internal/notifier"
	"StockAnalyser/internal/recorder"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Sender delivers notifications. *notifier.TelegramNotifier implements it.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler refreshes the watch list on a cron schedule and answers chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Service  *analyser.Service
	Notifier Sender
	Recorder recorder.Recorder
	Tickers  []string
	Defaults analyser.Request
	Logger   *zerolog.Logger
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler. sender may be nil when notifications are disabled.
func NewScheduler(ctx context.Context, svc *analyser.Service, sender Sender, rec recorder.Recorder, logger *zerolog.Logger) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Service:  svc,
		Notifier: sender,
		Recorder: rec,
		Defaults: analyser.Request{}.WithDefaults(),
		Logger:   logger,
		Ctx:      ctx,
	}
}

// Register schedules the watch-list refresh.
func (s *Scheduler) Register(spec string, tickers []string) error {
	s.Tickers = tickers
	if _, err := s.Cron.AddFunc(spec, s.watchTask); err != nil {
		return fmt.Errorf("register watch task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info().Strs("tickers", s.Tickers).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info().Msg("scheduler stopped")
}

// RunWatchNow executes the watch task immediately.
func (s *Scheduler) RunWatchNow() {
	s.watchTask()
}

func (s *Scheduler) watchTask() {
	s.Logger.Info().Int("tickers", len(s.Tickers)).Msg("running watch task")
	for _, t := range s.Tickers {
		if s.Ctx.Err() != nil {
			return
		}
		// Scheduled refreshes always go back to the source.
		s.Service.Collector.Invalidate(t)

		req := s.Defaults
		req.Ticker = t
		res, err := s.analyse(s.Ctx, req, recorder.TriggerWatch)
		if err != nil {
			s.trySend(notifier.FormatFailure(collector.NormalizeTicker(t), err))
			continue
		}
		s.trySend(notifier.FormatSummary(res))
	}
}

// analyse runs and records one request.
func (s *Scheduler) analyse(ctx context.Context, req analyser.Request, trigger recorder.Trigger) (*model.Result, error) {
	res, err := s.Service.Run(ctx, req)
	var rec *recorder.RunRecord
	if err != nil {
		req = req.WithDefaults()
		rec = recorder.FailedRun(collector.NormalizeTicker(req.Ticker), req.Months, req.Alpha, trigger, err)
	} else {
		rec = recorder.NewRunRecord(res, trigger)
	}
	if recErr := s.Recorder.RecordRun(rec); recErr != nil {
		s.Logger.Error().Err(recErr).Str("ticker", rec.Ticker).Msg("record run")
	}
	return res, err
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	// Group chats address bots as /cmd@BotName.
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
	args := fields[1:]

	switch name {
	case "/analyse", "/analyze":
		ticker, months, err := ParseAnalyseArgs(args)
		if err != nil {
			return notifier.FormatFailure(strings.Join(args, " "), err)
		}
		req := s.Defaults
		req.Ticker = ticker
		if months > 0 {
			req.Months = months
		}
		res, err := s.analyse(ctx, req, recorder.TriggerTelegram)
		if err != nil {
			return notifier.FormatFailure(collector.NormalizeTicker(ticker), err)
		}
		return notifier.FormatSummary(res)
	case "/history":
		if len(args) == 0 {
			return notifier.FormatHelp()
		}
		ticker := collector.NormalizeTicker(strings.Join(args, " "))
		runs, err := s.Recorder.RecentRuns(ticker, 5)
		if err != nil {
			s.Logger.Error().Err(err).Str("ticker", ticker).Msg("load history")
			return notifier.FormatFailure(ticker, err)
		}
		return notifier.FormatHistory(ticker, runs)
	case "/watchlist":
		if len(s.Tickers) == 0 {
			return "Watch list is empty"
		}
		return "Watching: " + strings.Join(s.Tickers, ", ")
	default:
		return notifier.FormatHelp()
	}
}

// ParseAnalyseArgs splits "/analyse" arguments into a ticker and an optional
// lookback, split as collector.SplitTicker does, so "aapl us 6 months" is
// ticker "aapl us" over 6 months. A zero months value means "use the default".
func ParseAnalyseArgs(args []string) (string, int, error) {
	if len(args) == 0 {
		return "", 0, fmt.Errorf("%w: missing ticker", model.ErrMalformedInput)
	}
	ticker, rest := collector.SplitTicker(args)
	if len(rest) == 0 {
		return ticker, 0, nil
	}
	months, err := model.ParseLookback(strings.Join(rest, " "))
	if err != nil {
		return "", 0, err
	}
	return ticker, months, nil
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.Logger.Error().Err(err).Msg("send notification")
	}
}
