package chart

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"energyreport/internal/apperr"
)

// DefaultLegendWidth is the share of a panel's width given to an outside legend.
const DefaultLegendWidth = 0.22

// Drawer is anything that can paint itself onto a canvas region.
type Drawer interface {
	Draw(c draw.Canvas)
}

// Panel is one chart of the report. When Legend is set it is drawn in a
// strip to the right of the plot instead of over the data area.
type Panel struct {
	Plot        *plot.Plot
	Legend      *plot.Legend
	LegendWidth float64
}

// Draw renders the panel onto c.
func (p *Panel) Draw(c draw.Canvas) {
	if p.Legend == nil {
		p.Plot.Draw(c)
		return
	}

	frac := p.LegendWidth
	if frac <= 0 || frac >= 1 {
		frac = DefaultLegendWidth
	}
	width := c.Max.X - c.Min.X
	lw := vg.Length(frac) * width

	p.Plot.Draw(draw.Crop(c, 0, -lw, 0, 0))
	p.Legend.Draw(draw.Crop(c, width-lw, 0, 0, 0))
}

// Encode encodes the panel alone as an image of the given size and format.
func (p *Panel) Encode(w io.Writer, width, height vg.Length, format string) error {
	canvas, err := draw.NewFormattedCanvas(width, height, format)
	if err != nil {
		return apperr.NewRenderError(fmt.Sprintf("unsupported image format %q", format), err)
	}
	p.Draw(draw.New(canvas))
	tw := &trackingWriter{w: w}
	if _, err := canvas.WriteTo(tw); err != nil {
		if tw.err != nil {
			return apperr.NewIOError("failed to write panel", err)
		}
		return apperr.NewRenderError("failed to encode panel", err).WithContext("format", format)
	}
	return nil
}

// trackingWriter keeps the first error returned by w.
type trackingWriter struct {
	w   io.Writer
	err error
}

func (t *trackingWriter) Write(b []byte) (int, error) {
	n, err := t.w.Write(b)
	if err != nil && t.err == nil {
		t.err = err
	}
	return n, err
}

// Save writes the panel to path, inferring the format from the extension.
func (p *Panel) Save(width, height vg.Length, path string) error {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	f, err := os.Create(path)
	if err != nil {
		return apperr.NewIOError("failed to create panel file", err).WithContext("path", path)
	}
	if err := p.Encode(f, width, height, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return apperr.NewIOError("failed to close panel file", err).WithContext("path", path)
	}
	return nil
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(12)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

func newOutsideLegend() *plot.Legend {
	l := plot.NewLegend()
	l.Top = true
	l.Left = true
	l.YOffs = -vg.Points(18)
	l.TextStyle.Font.Size = vg.Points(8)
	return &l
}
