// Package chart draws the two-panel price and oscillator chart as SVG.
package chart

import (
	"errors"
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"StockAnalyser/internal/calculator"
	"StockAnalyser/internal/model"
)

// Colours of the dashboard theme.
const (
	Background = "#111111"
	Foreground = "white"
	Up         = "green"
	Down       = "red"
	Fast       = "lightblue"
	Slow       = "orange"
	VolumeFill = "grey"
)

// Oscillator panel scale and zones.
const (
	OscMin     = -10.0
	OscMax     = 110.0
	Oversold   = 20.0
	Overbought = 80.0
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("chart: no bars")

// Options controls the canvas.
type Options struct {
	Width  int
	Height int
	Title  string
}

// DefaultOptions is a 1200x800 canvas.
var DefaultOptions = Options{Width: 1200, Height: 800}

const (
	marginLeft   = 80.0
	marginRight  = 80.0
	marginTop    = 60.0
	marginBottom = 50.0
	panelGap     = 60.0
	priceShare   = 0.62
)

type panel struct {
	top, height float64
	min, max    float64
}

func (p panel) y(v float64) float64 {
	return p.top + p.height*(1-(v-p.min)/(p.max-p.min))
}

type canvas struct {
	b     strings.Builder
	left  float64
	width float64
	n     int
}

func (c *canvas) x(i int) float64 {
	step := c.width / float64(c.n)
	return c.left + step*(float64(i)+0.5)
}

func (c *canvas) step() float64 { return c.width / float64(c.n) }

func (c *canvas) printf(format string, args ...any) {
	fmt.Fprintf(&c.b, format, args...)
}

// Render draws the "Price History" panel (candlesticks, moving averages and
// volume on a secondary axis) above the "Oscillator" panel (%K and %D with
// the 20/80 zones).
func Render(bars []model.ChartBar, opts Options) ([]byte, error) {
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	if opts.Width <= 0 {
		opts.Width = DefaultOptions.Width
	}
	if opts.Height <= 0 {
		opts.Height = DefaultOptions.Height
	}

	w, h := float64(opts.Width), float64(opts.Height)
	plotH := h - marginTop - marginBottom - panelGap
	c := &canvas{left: marginLeft, width: w - marginLeft - marginRight, n: len(bars)}

	lo, hi := priceRange(bars)
	price := panel{top: marginTop, height: plotH * priceShare, min: lo, max: hi}
	volume := panel{top: price.top, height: price.height, min: 0, max: maxVolume(bars)}
	osc := panel{top: price.top + price.height + panelGap, height: plotH * (1 - priceShare), min: OscMin, max: OscMax}

	c.printf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="Times New Roman" fill="%s">`+"\n",
		opts.Width, opts.Height, opts.Width, opts.Height, Foreground)
	c.printf(`<rect class="background" x="0" y="0" width="%d" height="%d" fill="%s"/>`+"\n", opts.Width, opts.Height, Background)
	if opts.Title != "" {
		c.printf(`<text class="title" x="%.1f" y="28" font-size="22" text-anchor="middle">%s</text>`+"\n", w/2, html.EscapeString(opts.Title))
	}

	c.drawPricePanel(bars, price, volume)
	c.drawOscillatorPanel(bars, osc)
	c.drawDateAxis(bars, osc.top+osc.height)
	c.drawLegend(w)

	c.b.WriteString("</svg>\n")
	return []byte(c.b.String()), nil
}

func (c *canvas) panelTitle(p panel, title string) {
	c.printf(`<text class="panel-title" x="%.1f" y="%.1f" font-size="18" text-anchor="middle">%s</text>`+"\n",
		c.left+c.width/2, p.top-10, title)
}

func (c *canvas) yAxis(p panel, x float64, anchor, label string, format func(float64) string) {
	for i := 0; i <= 4; i++ {
		v := p.min + (p.max-p.min)*float64(i)/4
		c.printf(`<text class="tick" x="%.1f" y="%.1f" font-size="12" text-anchor="%s">%s</text>`+"\n",
			x, p.y(v)+4, anchor, format(v))
	}
	rotateX := x - 55
	if anchor == "start" {
		rotateX = x + 55
	}
	c.printf(`<text class="axis-title" x="%.1f" y="%.1f" font-size="14" text-anchor="middle" transform="rotate(-90 %.1f %.1f)">%s</text>`+"\n",
		rotateX, p.top+p.height/2, rotateX, p.top+p.height/2, label)
}

func (c *canvas) drawPricePanel(bars []model.ChartBar, price, volume panel) {
	c.panelTitle(price, "Price History")
	c.printf(`<rect class="frame" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="#333333"/>`+"\n",
		c.left, price.top, c.width, price.height)

	barW := math.Max(c.step()*0.7, 1)

	c.printf(`<g class="volume" fill="%s" opacity="0.5">`+"\n", VolumeFill)
	for i, b := range bars {
		if b.Volume <= 0 || volume.max <= 0 {
			continue
		}
		top := volume.y(float64(b.Volume))
		c.printf(`<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f"/>`+"\n",
			c.x(i)-barW/2, top, barW, volume.top+volume.height-top)
	}
	c.b.WriteString("</g>\n")

	c.b.WriteString(`<g class="candles">` + "\n")
	for i, b := range bars {
		color, class := Up, "candle up"
		if b.Close < b.Open {
			color, class = Down, "candle down"
		}
		x := c.x(i)
		bodyTop := price.y(math.Max(b.Open, b.Close))
		bodyH := math.Max(price.y(math.Min(b.Open, b.Close))-bodyTop, 1)
		c.printf(`<g class="%s"><line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s"/><rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/></g>`+"\n",
			class, x, price.y(b.High), x, price.y(b.Low), color,
			x-barW/2, bodyTop, barW, bodyH, color)
	}
	c.b.WriteString("</g>\n")

	c.line("ma-weekly", price, Fast, 1, bars, func(b model.ChartBar) float64 { return b.CloseWeeklyAvg })
	c.line("ma-monthly", price, Slow, 1, bars, func(b model.ChartBar) float64 { return b.CloseMonthlyAvg })

	c.yAxis(price, c.left-8, "end", "Price", func(v float64) string { return fmt.Sprintf("%.2f", v) })
	c.yAxis(volume, c.left+c.width+8, "start", "Volume", formatVolume)
}

func (c *canvas) drawOscillatorPanel(bars []model.ChartBar, osc panel) {
	c.panelTitle(osc, "Oscillator")

	c.printf(`<rect class="zone oversold" x="%.1f" y="%.2f" width="%.1f" height="%.2f" fill="%s" opacity="0.2"/>`+"\n",
		c.left, osc.y(Oversold), c.width, osc.y(0)-osc.y(Oversold), Down)
	c.printf(`<rect class="zone overbought" x="%.1f" y="%.2f" width="%.1f" height="%.2f" fill="%s" opacity="0.2"/>`+"\n",
		c.left, osc.y(100), c.width, osc.y(Overbought)-osc.y(100), Up)

	for _, ref := range []struct {
		v     float64
		color string
		width int
	}{
		{0, Foreground, 2},
		{100, Foreground, 2},
		{Oversold, Down, 1},
		{Overbought, Up, 1},
	} {
		y := osc.y(ref.v)
		c.printf(`<line class="ref" x1="%.1f" y1="%.2f" x2="%.1f" y2="%.2f" stroke="%s" stroke-width="%d"/>`+"\n",
			c.left, y, c.left+c.width, y, ref.color, ref.width)
	}

	c.line("stoch-k", osc, Fast, 2, bars, func(b model.ChartBar) float64 { return b.StochK })
	c.line("stoch-d", osc, Slow, 2, bars, func(b model.ChartBar) float64 { return b.StochD })

	c.yAxis(osc, c.left-8, "end", "", func(v float64) string { return fmt.Sprintf("%.0f", v) })
}

// line draws a series as a path, lifting the pen over missing values.
func (c *canvas) line(class string, p panel, color string, width int, bars []model.ChartBar, value func(model.ChartBar) float64) {
	var d strings.Builder
	pen := false
	for i, b := range bars {
		v := value(b)
		if model.Missing(v) {
			pen = false
			continue
		}
		cmd := "L"
		if !pen {
			cmd = "M"
			pen = true
		}
		fmt.Fprintf(&d, "%s%.2f %.2f ", cmd, c.x(i), p.y(v))
	}
	if d.Len() == 0 {
		return
	}
	c.printf(`<path class="%s" d="%s" fill="none" stroke="%s" stroke-width="%d"/>`+"\n",
		class, strings.TrimSpace(d.String()), color, width)
}

func (c *canvas) drawDateAxis(bars []model.ChartBar, y float64) {
	ticks := 6
	if len(bars) < ticks {
		ticks = len(bars)
	}
	for t := 0; t < ticks; t++ {
		i := 0
		if ticks > 1 {
			i = t * (len(bars) - 1) / (ticks - 1)
		}
		c.printf(`<text class="tick date" x="%.1f" y="%.1f" font-size="12" text-anchor="middle">%s</text>`+"\n",
			c.x(i), y+20, bars[i].Date.Format(time.DateOnly))
	}
}

func (c *canvas) drawLegend(w float64) {
	entries := []struct{ label, color string }{
		{fmt.Sprintf("close %dD moving average", calculator.TradeDaysInWeek), Fast},
		{fmt.Sprintf("close %dD moving average", calculator.TradeDaysInMonth), Slow},
		{"fast", Fast},
		{"slow", Slow},
	}
	x := w - marginRight - 210
	for i, e := range entries {
		y := 20 + float64(i)*14
		c.printf(`<g class="legend"><line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="2"/><text x="%.1f" y="%.1f" font-size="11">%s</text></g>`+"\n",
			x, y-4, x+20, y-4, e.color, x+26, y, e.label)
	}
}

func priceRange(bars []model.ChartBar) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, b := range bars {
		for _, v := range []float64{b.Low, b.High, b.CloseWeeklyAvg, b.CloseMonthlyAvg} {
			if model.Missing(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.01, 1)
	}
	return lo - pad, hi + pad
}

func maxVolume(bars []model.ChartBar) float64 {
	var m int64
	for _, b := range bars {
		if b.Volume > m {
			m = b.Volume
		}
	}
	if m == 0 {
		return 1
	}
	return float64(m)
}

func formatVolume(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.1fk", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
