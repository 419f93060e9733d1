package chart

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"energyreport/internal/apperr"
	"energyreport/internal/dataset"
)

// PieChart is a plot.Plotter drawing wedges around the centre of the data
// area. Angles run counter-clockwise from StartAngle.
type PieChart struct {
	Values []float64
	Labels []string
	Colors []color.Color

	// Explode holds, per wedge, the offset from the centre as a fraction
	// of the radius.
	Explode []float64

	// StartAngle of the first wedge in radians.
	StartAngle float64

	// Radius as a fraction of half the smaller side of the data area.
	Radius float64

	LineStyle     draw.LineStyle
	PercentFormat string
	TextStyle     text.Style

	total float64
}

// NewPieChart returns a pie of values. Values must be finite and
// non-negative with a positive sum.
func NewPieChart(values []float64) (*PieChart, error) {
	total := 0.0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return nil, fmt.Errorf("invalid wedge value %v", v)
		}
		total += v
	}
	if total <= 0 {
		return nil, fmt.Errorf("wedge values sum to %v", total)
	}

	vals := make([]float64, len(values))
	copy(vals, values)
	colors := make([]color.Color, len(values))
	for i := range colors {
		colors[i] = plotutil.Color(i)
	}

	return &PieChart{
		Values:        vals,
		Colors:        colors,
		Explode:       make([]float64, len(values)),
		Radius:        0.75,
		LineStyle:     draw.LineStyle{Color: color.Black, Width: vg.Points(1.5)},
		PercentFormat: "%1.0f%%",
		TextStyle: text.Style{
			Color:   color.Black,
			Font:    font.From(plot.DefaultFont, vg.Points(9)),
			XAlign:  text.XCenter,
			YAlign:  text.YCenter,
			Handler: plot.DefaultTextHandler,
		},
		total: total,
	}, nil
}

// Percentages returns each wedge's share of the total, in percent.
func (pc *PieChart) Percentages() []float64 {
	out := make([]float64, len(pc.Values))
	for i, v := range pc.Values {
		out[i] = v / pc.total * 100
	}
	return out
}

// Plot implements plot.Plotter
func (pc *PieChart) Plot(c draw.Canvas, plt *plot.Plot) {
	center := c.Center()
	side := c.Max.X - c.Min.X
	if h := c.Max.Y - c.Min.Y; h < side {
		side = h
	}
	r := vg.Length(pc.Radius) * side / 2

	pcts := pc.Percentages()
	angle := pc.StartAngle
	for i, v := range pc.Values {
		sweep := 2 * math.Pi * v / pc.total
		mid := angle + sweep/2
		ctr := center
		if i < len(pc.Explode) && pc.Explode[i] != 0 {
			off := vg.Length(pc.Explode[i]) * r
			ctr = vg.Point{X: center.X + off*vg.Length(math.Cos(mid)), Y: center.Y + off*vg.Length(math.Sin(mid))}
		}

		var path vg.Path
		path.Move(ctr)
		path.Line(onCircle(ctr, r, angle))
		path.Arc(ctr, r, angle, sweep)
		path.Close()

		c.SetColor(pc.Colors[i%len(pc.Colors)])
		c.Fill(path)
		if pc.LineStyle.Width > 0 {
			c.SetLineStyle(pc.LineStyle)
			c.Stroke(path)
		}

		c.FillText(pc.TextStyle, onCircle(ctr, r*0.6, mid), fmt.Sprintf(pc.PercentFormat, pcts[i]))
		if i < len(pc.Labels) {
			sty := pc.TextStyle
			if math.Cos(mid) < 0 {
				sty.XAlign = text.XRight
			} else {
				sty.XAlign = text.XLeft
			}
			c.FillText(sty, onCircle(ctr, r*1.1, mid), pc.Labels[i])
		}
		angle += sweep
	}
}

func onCircle(ctr vg.Point, r vg.Length, angle float64) vg.Point {
	return vg.Point{X: ctr.X + r*vg.Length(math.Cos(angle)), Y: ctr.Y + r*vg.Length(math.Sin(angle))}
}

// PieRenderer draws one year of a wide table as a pie, one wedge per
// labelled country.
type PieRenderer struct {
	Title  string
	Year   int
	Labels []string

	// Exploded names the country whose wedge is offset by ExplodeOffset.
	Exploded      string
	ExplodeOffset float64
}

// Wedges returns the labels and values drawn for w, in label order.
// Labelled countries without a value for the year are skipped.
func (r PieRenderer) Wedges(w *dataset.WideTable) ([]string, []float64, error) {
	if w == nil || w.Len() == 0 {
		return nil, nil, apperr.NewRenderError("pie chart needs a non-empty table", nil)
	}
	year := strconv.Itoa(r.Year)
	if !w.HasYear(year) {
		return nil, nil, apperr.NewRenderError(fmt.Sprintf("year %s is not in the table", year), nil).
			WithContext("year", r.Year)
	}

	labels := r.Labels
	if len(labels) == 0 {
		labels = w.Countries()
	}
	var names []string
	var values []float64
	for _, country := range labels {
		v, ok := w.Value(country, year)
		if !ok || math.IsNaN(v) {
			continue
		}
		names = append(names, country)
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, nil, apperr.NewRenderError(fmt.Sprintf("no labelled country has a value for %s", year), nil)
	}
	return names, values, nil
}

// Chart builds the pie plotter for w: wedges in label order starting at
// 180 degrees, with the exploded country's wedge offset.
func (r PieRenderer) Chart(w *dataset.WideTable) (*PieChart, error) {
	names, values, err := r.Wedges(w)
	if err != nil {
		return nil, err
	}

	pie, err := NewPieChart(values)
	if err != nil {
		return nil, apperr.NewRenderError("failed to build pie chart", err)
	}
	pie.Labels = names
	pie.StartAngle = math.Pi
	for i, name := range names {
		if name == r.Exploded {
			pie.Explode[i] = r.ExplodeOffset
		}
	}
	return pie, nil
}

// Render builds the panel from the wide table.
func (r PieRenderer) Render(w *dataset.WideTable) (*Panel, error) {
	pie, err := r.Chart(w)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = r.Title
	p.Title.TextStyle.Font.Size = vg.Points(12)
	p.HideAxes()
	p.Add(pie)

	return &Panel{Plot: p}, nil
}
