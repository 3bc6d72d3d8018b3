package report

import (
	"bytes"
	"fmt"
	"html"

	"StockAnalyser/internal/model"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Terminal renders the report for a terminal. style is a glamour standard
// style name such as "auto", "dark" or "notty".
func Terminal(res *model.Result, style string, width int) (string, error) {
	md, err := Markdown(res)
	if err != nil {
		return "", err
	}
	if style == "" {
		style = "auto"
	}
	if width <= 0 {
		width = 120
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create terminal renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { background: #111111; color: #e0e0e0; font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 1.5em; }
th, td { border: 1px solid #444444; padding: 0.25em 0.6em; }
code { color: #9ecbff; }
</style>
</head>
<body>
`

// HTML renders a standalone dashboard page: the markdown report followed by
// the chart SVG when one is given.
func HTML(res *model.Result, chartSVG []byte) ([]byte, error) {
	md, err := Markdown(res)
	if err != nil {
		return nil, err
	}
	var body bytes.Buffer
	if err := markdown.Convert([]byte(md), &body); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}

	var page bytes.Buffer
	fmt.Fprintf(&page, pageHead, html.EscapeString(NewView(res).Title))
	page.Write(body.Bytes())
	if len(chartSVG) > 0 {
		page.WriteString("<h2>Plots</h2>\n")
		page.Write(chartSVG)
		page.WriteString("\n")
	}
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}
