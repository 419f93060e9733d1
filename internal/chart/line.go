package chart

import (
	"math"

	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"energyreport/internal/apperr"
	"energyreport/internal/dataset"
)

// LineRenderer draws one marked line per country across every year.
type LineRenderer struct {
	Title  string
	XLabel string
	YLabel string

	// MarkerRadius defaults to 2.5pt (a 5pt marker).
	MarkerRadius vg.Length
}

// Render builds the panel from the year indexed table. Missing values are
// left out of their line.
func (r LineRenderer) Render(t *dataset.YearTable) (*Panel, error) {
	if t == nil || t.Len() == 0 || len(t.Countries) == 0 {
		return nil, apperr.NewRenderError("line chart needs a non-empty table", nil)
	}

	radius := r.MarkerRadius
	if radius <= 0 {
		radius = vg.Points(2.5)
	}

	p := newPlot(r.Title, r.XLabel, r.YLabel)
	legend := newOutsideLegend()
	drawn := 0
	for i, country := range t.Countries {
		col, _ := t.Column(country)
		pts := make(plotter.XYs, 0, len(col))
		for j, v := range col {
			if math.IsNaN(v) {
				continue
			}
			pts = append(pts, plotter.XY{X: float64(t.Years[j]), Y: v})
		}
		if len(pts) == 0 {
			continue
		}

		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return nil, apperr.NewRenderError("failed to build line for "+country, err)
		}
		line.Color = plotutil.Color(i)
		points.GlyphStyle.Color = plotutil.Color(i)
		points.GlyphStyle.Shape = asteriskGlyph{}
		points.GlyphStyle.Radius = radius

		p.Add(line, points)
		legend.Add(country, line, points)
		drawn++
	}
	if drawn == 0 {
		return nil, apperr.NewRenderError("line chart has no values to draw", nil)
	}
	p.Add(plotter.NewGrid())

	return &Panel{Plot: p, Legend: legend, LegendWidth: DefaultLegendWidth}, nil
}

// asteriskGlyph is a six armed star marker
type asteriskGlyph struct{}

// DrawGlyph implements draw.GlyphDrawer
func (asteriskGlyph) DrawGlyph(c *draw.Canvas, sty draw.GlyphStyle, pt vg.Point) {
	ls := draw.LineStyle{Color: sty.Color, Width: vg.Points(0.8)}
	r := float64(sty.Radius)
	for k := 0; k < 3; k++ {
		a := math.Pi/2 + float64(k)*math.Pi/3
		dx := vg.Length(r * math.Cos(a))
		dy := vg.Length(r * math.Sin(a))
		c.StrokeLine2(ls, pt.X-dx, pt.Y-dy, pt.X+dx, pt.Y+dy)
	}
}
