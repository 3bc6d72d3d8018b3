package notifier

import (
	"fmt"
	"html"
	"strings"

	"StockAnalyser/internal/model"
	"StockAnalyser/internal/recorder"
)

func pct(v float64) string {
	if model.Missing(v) {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", v*100)
}

// FormatSummary formats an analysis result into a Telegram message.
func FormatSummary(res *model.Result) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> (%s)\n", html.EscapeString(res.Name), html.EscapeString(res.Ticker)))
	if n := len(res.Display); n > 0 {
		last := res.Display[n-1]
		b.WriteString(fmt.Sprintf("Close %s: %.2f", last.Date.Format("2006-01-02"), last.Close))
		if !model.Missing(last.DailyReturn) {
			b.WriteString(fmt.Sprintf(" (%s)", pct(last.DailyReturn)))
		}
		b.WriteString("\n")
	}
	if n := len(res.Chart); n > 0 {
		last := res.Chart[n-1]
		if !model.Missing(last.StochK) && !model.Missing(last.StochD) {
			b.WriteString(fmt.Sprintf("Oscillator: %%K %.1f | %%D %.1f\n", last.StochK, last.StochD))
		}
	}

	s := res.Summary
	b.WriteString(fmt.Sprintf("\n<b>Summary</b> (%d months, %d obs)\n", res.Months, s.Observations))
	b.WriteString(fmt.Sprintf("Return: %s\n", pct(s.AnnualReturn)))
	b.WriteString(fmt.Sprintf("Volatility: %s\n", pct(s.AnnualVolatility)))
	b.WriteString(fmt.Sprintf("VaR %.0f%%: %s\n", s.Alpha*100, pct(s.VaR)))
	b.WriteString(fmt.Sprintf("ES %.0f%%: %s\n", s.Alpha*100, pct(s.ES)))
	return b.String()
}

// FormatFailure formats the user-facing message of a failed analysis.
func FormatFailure(ticker string, err error) string {
	return fmt.Sprintf("❌ %s: %s", html.EscapeString(ticker), html.EscapeString(model.UserMessage(err)))
}

// FormatHistory lists recorded runs, newest first.
func FormatHistory(ticker string, runs []recorder.RunRecord) string {
	if len(runs) == 0 {
		return fmt.Sprintf("No recorded runs for %s", html.EscapeString(ticker))
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗂 <b>History</b> %s\n\n", html.EscapeString(ticker)))
	for _, r := range runs {
		ts := r.Timestamp.Format("2006-01-02 15:04")
		if r.Failed() {
			b.WriteString(fmt.Sprintf("%s ❌ %s\n", ts, html.EscapeString(r.Error)))
			continue
		}
		b.WriteString(fmt.Sprintf("%s close %.2f | ret %s | vol %s | VaR %s\n",
			ts, r.LastClose, pct(r.Stats.AnnualReturn), pct(r.Stats.AnnualVolatility), pct(r.Stats.VaR)))
	}
	return b.String()
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return "Available commands:\n" +
		"• /analyse &lt;ticker&gt; [months]\n" +
		"• /history &lt;ticker&gt;\n" +
		"• /watchlist"
}
