package main

import (
	"fmt"
	"time"

	"StockAnalyser/internal/collector"
	"StockAnalyser/internal/recorder"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <ticker>",
		Short: "List the recently recorded runs of a ticker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			if limit <= 0 {
				return fmt.Errorf("limit must be a positive integer")
			}
			rec := a.openRecorder()
			defer rec.Close()

			ticker := collector.NormalizeTicker(args[0])
			runs, err := rec.RecentRuns(ticker, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Printf("No recorded runs for %s\n", ticker)
				return nil
			}
			printRuns(runs)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of runs")
	return cmd
}

func printRuns(runs []recorder.RunRecord) {
	fmt.Printf("%-19s  %-8s  %-8s  %6s  %10s  %9s  %9s  %9s  %9s\n",
		"timestamp", "trigger", "ticker", "months", "last", "return", "vol", "VaR", "ES")
	for _, r := range runs {
		ts := r.Timestamp.Local().Format(time.DateTime)
		if r.Failed() {
			fmt.Printf("%-19s  %-8s  %-8s  %6d  error: %s\n", ts, r.Trigger, r.Ticker, r.Months, r.Error)
			continue
		}
		fmt.Printf("%-19s  %-8s  %-8s  %6d  %10.2f  %8.2f%%  %8.2f%%  %8.2f%%  %8.2f%%\n",
			ts, r.Trigger, r.Ticker, r.Months, r.LastClose,
			r.Stats.AnnualReturn*100, r.Stats.AnnualVolatility*100, r.Stats.VaR*100, r.Stats.ES*100)
	}
}
