package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"StockAnalyser/internal/analyser"
	"StockAnalyser/internal/chart"
	"StockAnalyser/internal/model"
	"StockAnalyser/internal/recorder"
	"StockAnalyser/internal/report"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

type runFlags struct {
	months    string
	rows      int
	alpha     float64
	style     string
	width     int
	chartPath string
	htmlPath  string
	csvPath   string
}

func runCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run <ticker>",
		Short: "Analyse one ticker and print the report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			req, err := f.request(a, args[0])
			if err != nil {
				return fmt.Errorf("%s", model.UserMessage(err))
			}

			ctx, cancel := signalContext()
			defer cancel()

			rec := a.openRecorder()
			defer rec.Close()

			res, err := a.service.Run(ctx, req)
			a.record(rec, req, res, err)
			if err != nil {
				return fmt.Errorf("%s", model.UserMessage(err))
			}
			return f.emit(res)
		},
	}
	cmd.Flags().StringVarP(&f.months, "months", "m", "", "Lookback window, e.g. 6 or \"6 months\"")
	cmd.Flags().IntVarP(&f.rows, "rows", "r", 0, "Number of preview rows (5-20)")
	cmd.Flags().Float64VarP(&f.alpha, "alpha", "a", 0, "Significance level (0.01-0.10)")
	cmd.Flags().StringVar(&f.style, "style", "dark", "Terminal style: dark, light, notty")
	cmd.Flags().IntVar(&f.width, "width", 100, "Terminal word wrap width")
	cmd.Flags().StringVar(&f.chartPath, "chart", "", "Write the price and oscillator chart to this SVG file")
	cmd.Flags().StringVar(&f.htmlPath, "html", "", "Write the report as a standalone HTML page")
	cmd.Flags().StringVar(&f.csvPath, "csv", "", "Write the displayed window as CSV")
	return cmd
}

// request overlays the flags on the configured controls.
func (f runFlags) request(a *app, ticker string) (analyser.Request, error) {
	req := a.cfg.Request(ticker)
	if f.months != "" {
		months, err := model.ParseLookback(f.months)
		if err != nil {
			return req, err
		}
		req.Months = months
	}
	if f.rows != 0 {
		req.Rows = f.rows
	}
	if f.alpha != 0 {
		req.Alpha = f.alpha
	}
	return req, req.Validate()
}

// emit prints the terminal report and writes the requested files.
func (f runFlags) emit(res *model.Result) error {
	out, err := report.Terminal(res, f.style, f.width)
	if err != nil {
		return err
	}
	fmt.Print(out)

	var svg []byte
	if f.chartPath != "" || f.htmlPath != "" {
		svg, err = chart.Render(res.Chart, chart.Options{Title: res.Name})
		if err != nil {
			return fmt.Errorf("render chart: %w", err)
		}
	}
	if f.chartPath != "" {
		if err := os.WriteFile(f.chartPath, svg, 0o644); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		fmt.Printf("chart written to %s\n", f.chartPath)
	}
	if f.htmlPath != "" {
		page, err := report.HTML(res, svg)
		if err != nil {
			return err
		}
		if err := os.WriteFile(f.htmlPath, page, 0o644); err != nil {
			return fmt.Errorf("write html: %w", err)
		}
		fmt.Printf("html report written to %s\n", f.htmlPath)
	}
	if f.csvPath != "" {
		file, err := os.Create(f.csvPath)
		if err != nil {
			return fmt.Errorf("create csv: %w", err)
		}
		defer file.Close()
		if err := report.WriteCSV(file, res.Display); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		fmt.Printf("csv written to %s\n", f.csvPath)
	}
	return nil
}

// runInteractive reads "<ticker> [months] [rows] [alpha]" lines. A failed
// submission prints the error and keeps the previous result on screen.
func runInteractive(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	rec := a.openRecorder()
	defer rec.Close()

	session := analyser.NewSession(a.service)
	fmt.Println("Enter a ticker, optionally followed by months, rows and alpha, e.g. \"AAPL US 6 months 10 0.01\".")
	fmt.Println("Ctrl+C clears the line, Ctrl+D quits.")

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyFile := filepath.Join(os.TempDir(), "stock-analyser-history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	for {
		input, err := line.Prompt("> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Println()
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		req, err := analyser.ParseLine(input, a.cfg.Request(""))
		if err != nil {
			fmt.Println(model.UserMessage(err))
			continue
		}
		// Ctrl+C during a fetch abandons that request only.
		ctx, cancel := signalContext()
		submit(ctx, a, session, req, rec)
		cancel()
	}
}

// submit runs one interactive request and prints either the fresh report
// or the error followed by the result still on screen.
func submit(ctx context.Context, a *app, session *analyser.Session, req analyser.Request, rec recorder.Recorder) {
	res, err := session.Submit(ctx, req)
	a.record(rec, req, res, err)
	if err != nil {
		fmt.Println(model.UserMessage(err))
		if last := session.Last(); last != nil {
			fmt.Printf("showing previous result for %s\n", last.Name)
		}
		return
	}
	out, err := report.Terminal(res, "dark", 100)
	if err != nil {
		a.logger.Error().Err(err).Msg("render report")
		return
	}
	fmt.Print(out)
}
