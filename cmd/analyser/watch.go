package main

import (
	"os"

	"StockAnalyser/internal/notifier"
	"StockAnalyser/internal/scheduler"

	"github.com/spf13/cobra"
)

func watchCmd() *cobra.Command {
	var runNow bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh the watch list on a schedule and answer Telegram commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()

			rec := a.openRecorder()
			defer rec.Close()

			var tn *notifier.TelegramNotifier
			var sender scheduler.Sender
			if a.cfg.TelegramEnabled() {
				tn = notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Proxy, &a.logger)
				sender = tn
			} else {
				a.logger.Warn().Msg("telegram not configured, summaries are only recorded")
			}

			sched := scheduler.NewScheduler(ctx, a.service, sender, rec, &a.logger)
			sched.Defaults = a.cfg.Request("")
			if err := sched.Register(a.cfg.Watch.Cron, a.cfg.Watch.Tickers); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if tn != nil {
				go tn.StartPolling(ctx, sched.HandleCommand)
				a.logger.Info().Msg("telegram polling started")
			}

			if runNow || os.Getenv("RUN_ON_START") == "true" {
				a.logger.Info().Msg("running watch task now")
				go sched.RunWatchNow()
			}

			a.logger.Info().Str("cron", a.cfg.Watch.Cron).Msg("watching, press Ctrl+C to stop")
			<-ctx.Done()
			a.logger.Info().Msg("shutdown signal received, stopping")
			return nil
		},
	}
	cmd.Flags().BoolVar(&runNow, "now", false, "Run the watch task once at start")
	return cmd
}
