package chart

import (
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"energyreport/internal/apperr"
	"energyreport/internal/dataset"
)

// DefaultGroupWidth is the share of a year slot covered by its bar group.
const DefaultGroupWidth = 0.70

// BarRenderer draws grouped vertical bars: one group per milestone year and
// one bar per country.
type BarRenderer struct {
	Title  string
	XLabel string
	YLabel string
	Years  []int

	// GroupWidth is the fraction of each year slot the group spans;
	// DefaultGroupWidth when zero.
	GroupWidth float64
}

// Select restricts t to the milestone years.
func (r BarRenderer) Select(t *dataset.YearTable) *dataset.YearTable {
	return t.SelectYears(r.Years)
}

// Groups builds the grouped bars for the milestone years of t together with
// the year labels of the groups.
func (r BarRenderer) Groups(t *dataset.YearTable) (*GroupedBars, []string, error) {
	if t == nil || t.Len() == 0 || len(t.Countries) == 0 {
		return nil, nil, apperr.NewRenderError("bar chart needs a non-empty table", nil)
	}
	sel := r.Select(t)
	if sel.Len() == 0 {
		return nil, nil, apperr.NewRenderError("none of the milestone years are in the table", nil).
			WithContext("years", r.Years)
	}

	frac := r.GroupWidth
	if frac <= 0 || frac > 1 {
		frac = DefaultGroupWidth
	}
	g := &GroupedBars{GroupWidth: frac, Groups: sel.Len()}
	for i, country := range sel.Countries {
		col, _ := sel.Column(country)
		bars, err := plotter.NewBarChart(zeroNaN(col), vg.Points(1))
		if err != nil {
			return nil, nil, apperr.NewRenderError("failed to build bars for "+country, err)
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = vg.Length(0)
		g.Countries = append(g.Countries, country)
		g.Bars = append(g.Bars, bars)
	}

	labels := make([]string, sel.Len())
	for i, y := range sel.Years {
		labels[i] = strconv.Itoa(y)
	}
	return g, labels, nil
}

// Render builds the panel from the year indexed table.
func (r BarRenderer) Render(t *dataset.YearTable) (*Panel, error) {
	g, labels, err := r.Groups(t)
	if err != nil {
		return nil, err
	}

	p := newPlot(r.Title, r.XLabel, r.YLabel)
	legend := newOutsideLegend()
	p.Add(g)
	for i, bars := range g.Bars {
		legend.Add(g.Countries[i], bars)
	}
	p.NominalX(labels...)
	p.Add(plotter.NewGrid())

	return &Panel{Plot: p, Legend: legend, LegendWidth: DefaultLegendWidth}, nil
}

// GroupedBars plots one bar chart per country side by side. Bar widths are
// fixed at draw time so that a group spans GroupWidth of its slot whatever
// the canvas size.
type GroupedBars struct {
	Countries  []string
	Bars       []*plotter.BarChart
	Groups     int
	GroupWidth float64
}

// Layout returns the bar width and the per-country offsets from the slot
// centre for a slot of the given width.
func (g *GroupedBars) Layout(slot vg.Length) (vg.Length, []vg.Length) {
	n := len(g.Bars)
	if n == 0 {
		return 0, nil
	}
	width := slot * vg.Length(g.GroupWidth) / vg.Length(n)
	offsets := make([]vg.Length, n)
	for i := range offsets {
		offsets[i] = vg.Length(float64(i)-float64(n-1)/2) * width
	}
	return width, offsets
}

// Plot implements plot.Plotter
func (g *GroupedBars) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, _ := plt.Transforms(&c)
	width, offsets := g.Layout(trX(1) - trX(0))
	for i, bars := range g.Bars {
		bars.Width = width
		bars.Offset = offsets[i]
		bars.Plot(c, plt)
	}
}

// DataRange implements plot.DataRanger. The x range leaves half a slot on
// each side of the outer groups.
func (g *GroupedBars) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, xmax = -0.5, float64(g.Groups)-0.5
	ymin, ymax = math.Inf(1), math.Inf(-1)
	for _, bars := range g.Bars {
		_, _, lo, hi := bars.DataRange()
		ymin = math.Min(ymin, lo)
		ymax = math.Max(ymax, hi)
	}
	if len(g.Bars) == 0 {
		ymin, ymax = 0, 1
	}
	return xmin, xmax, ymin, ymax
}

// zeroNaN replaces missing values with zero height bars
func zeroNaN(col []float64) plotter.Values {
	out := make(plotter.Values, len(col))
	for i, v := range col {
		if !math.IsNaN(v) {
			out[i] = v
		}
	}
	return out
}
