package chart

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"gonum.org/v1/plot/palette/brewer"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"energyreport/internal/apperr"
	"energyreport/internal/dataset"
)

// HorizontalBarRenderer draws one year of a year indexed table as one
// horizontal bar per country, first country at the top, with the value
// written inside each bar.
type HorizontalBarRenderer struct {
	Title     string
	XLabel    string
	YLabel    string
	Year      int
	Countries []string

	// BarWidth is the bar thickness; 12pt when zero.
	BarWidth vg.Length
}

// HBar is one country's bar. Pos is its y position, so the highest Pos is
// drawn at the top. The value label is drawn centred at LabelAt.
type HBar struct {
	Country string
	Value   float64
	Pos     float64
	Color   color.Color
	Label   string
	LabelAt plotter.XY
}

// Bars lays out one bar per country with a value for the year, in the
// configured order from top to bottom.
func (r HorizontalBarRenderer) Bars(t *dataset.YearTable) ([]HBar, error) {
	if t == nil || t.Len() == 0 {
		return nil, apperr.NewRenderError("horizontal bar chart needs a non-empty table", nil)
	}
	if !t.HasYear(r.Year) {
		return nil, apperr.NewRenderError(fmt.Sprintf("year %d is not in the table", r.Year), nil).
			WithContext("year", r.Year)
	}

	countries := r.Countries
	if len(countries) == 0 {
		countries = t.Countries
	}
	var bars []HBar
	for _, c := range countries {
		v, ok := t.Value(r.Year, c)
		if !ok || math.IsNaN(v) {
			continue
		}
		bars = append(bars, HBar{Country: c, Value: v})
	}
	if len(bars) == 0 {
		return nil, apperr.NewRenderError(fmt.Sprintf("no country has a value for %d", r.Year), nil)
	}

	colors, err := set1(len(bars))
	if err != nil {
		return nil, apperr.NewRenderError("failed to load palette", err)
	}
	n := len(bars)
	for i := range bars {
		b := &bars[i]
		b.Pos = float64(n - 1 - i)
		b.Color = colors[i%len(colors)]
		b.Label = strconv.FormatFloat(b.Value, 'f', -1, 64) + "%"
		b.LabelAt = plotter.XY{X: b.Value / 2, Y: b.Pos}
	}
	return bars, nil
}

// Render builds the panel from the year indexed table.
func (r HorizontalBarRenderer) Render(t *dataset.YearTable) (*Panel, error) {
	bars, err := r.Bars(t)
	if err != nil {
		return nil, err
	}

	width := r.BarWidth
	if width <= 0 {
		width = vg.Points(12)
	}

	p := newPlot(r.Title, r.XLabel, r.YLabel)
	n := len(bars)
	ticks := make([]string, n)
	xys := make(plotter.XYs, n)
	annotations := make([]string, n)
	for i, b := range bars {
		bar, err := plotter.NewBarChart(plotter.Values{b.Value}, width)
		if err != nil {
			return nil, apperr.NewRenderError("failed to build bar for "+b.Country, err)
		}
		bar.Horizontal = true
		bar.XMin = b.Pos
		bar.Color = b.Color
		bar.LineStyle.Width = vg.Length(0)
		p.Add(bar)

		ticks[int(b.Pos)] = b.Country
		xys[i] = b.LabelAt
		annotations[i] = b.Label
	}

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: annotations})
	if err != nil {
		return nil, apperr.NewRenderError("failed to build value labels", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Color = color.Black
		labels.TextStyle[i].XAlign = text.XCenter
		labels.TextStyle[i].YAlign = text.YCenter
	}
	p.Add(labels)
	p.NominalY(ticks...)
	p.X.Min = 0

	return &Panel{Plot: p}, nil
}

// set1 returns the ColorBrewer Set1 palette sized for n bars
func set1(n int) ([]color.Color, error) {
	size := n
	if size < 3 {
		size = 3
	}
	if size > 9 {
		size = 9
	}
	pal, err := brewer.GetPalette(brewer.TypeAny, "Set1", size)
	if err != nil {
		return nil, err
	}
	return pal.Colors(), nil
}
