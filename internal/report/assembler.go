package report

import (
	"image/color"
	"io"
	"math"
	"strings"

	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"energyreport/internal/apperr"
	"energyreport/internal/chart"
)

// Meta is the text placed around the chart grid.
type Meta struct {
	Title      string
	Commentary string
	Author     string
	StudentID  string
}

// Assembler lays out four panels in a 2x2 grid with a title above and the
// commentary and author lines below.
type Assembler struct {
	Width  vg.Length
	Height vg.Length

	Background   color.Color
	TitleFill    color.Color
	CommentFill  color.Color
	TitleFont    font.Font
	TitleSize    vg.Length
	BodySize     vg.Length
	Margin       vg.Length
	PanelPadding vg.Length
}

var (
	boldTitleFont    = font.Font{Typeface: "Liberation", Variant: "Sans", Weight: xfont.WeightBold}
	regularTitleFont = font.Font{Typeface: "Liberation", Variant: "Sans"}
)

// NewAssembler returns an assembler with the report's default styling.
func NewAssembler(width, height vg.Length) *Assembler {
	return &Assembler{
		Width:        width,
		Height:       height,
		Background:   color.RGBA{R: 255, G: 255, B: 224, A: 255},
		TitleFill:    color.NRGBA{R: 255, G: 182, B: 193, A: 204},
		CommentFill:  color.NRGBA{R: 255, G: 255, B: 0, A: 51},
		TitleFont:    boldTitleFont,
		TitleSize:    vg.Points(16),
		BodySize:     vg.Points(11),
		Margin:       vg.Points(18),
		PanelPadding: vg.Points(24),
	}
}

// Assemble renders the report and encodes it to w in format (png, svg, pdf...).
// The pdf backend only embeds regular faces, so pdf titles use the regular
// weight.
func (a *Assembler) Assemble(w io.Writer, format string, panels [4]chart.Drawer, meta Meta) error {
	canvas, err := draw.NewFormattedCanvas(a.Width, a.Height, format)
	if err != nil {
		return apperr.NewRenderError("unsupported image format "+format, err)
	}

	asm := *a
	if format == "pdf" {
		asm.TitleFont = regularTitleFont
	}
	asm.Draw(draw.New(canvas), panels, meta)

	tw := &trackingWriter{w: w}
	if _, err := canvas.WriteTo(tw); err != nil {
		if tw.err != nil {
			return apperr.NewIOError("failed to write report", err)
		}
		return apperr.NewRenderError("failed to encode report", err).WithContext("format", format)
	}
	return nil
}

// trackingWriter remembers the first error of the underlying writer so
// that write failures can be told apart from encoder failures.
type trackingWriter struct {
	w   io.Writer
	err error
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil && t.err == nil {
		t.err = err
	}
	return n, err
}

// Draw paints the report onto dc. Panels are placed row-major; a nil panel
// leaves its cell empty.
func (a *Assembler) Draw(dc draw.Canvas, panels [4]chart.Drawer, meta Meta) {
	dc.FillPolygon(a.Background, []vg.Point{
		dc.Min, {X: dc.Max.X, Y: dc.Min.Y}, dc.Max, {X: dc.Min.X, Y: dc.Max.Y},
	})

	titleStyle := a.textStyle(a.TitleFont, a.TitleSize)
	bodyStyle := a.textStyle(plot.DefaultFont, a.BodySize)

	width := dc.Max.X - dc.Min.X
	lineHeight := bodyStyle.Height("Mg") * 1.3
	lines := wrap(bodyStyle, meta.Commentary, width-4*a.Margin)
	var metaLines []string
	if meta.Author != "" {
		metaLines = append(metaLines, "Name: "+meta.Author)
	}
	if meta.StudentID != "" {
		metaLines = append(metaLines, "Student id: "+meta.StudentID)
	}

	titleBand := titleStyle.Height(meta.Title)*2 + a.Margin
	footer := lineHeight*vg.Length(len(lines)+len(metaLines)) + 2*a.Margin
	if len(lines) > 0 {
		footer += lineHeight
	}

	grid := draw.Crop(dc, a.Margin, -a.Margin, footer, -titleBand)
	tiles := draw.Tiles{
		Rows: 2, Cols: 2,
		PadX: a.PanelPadding, PadY: a.PanelPadding,
	}
	for i, p := range panels {
		if p == nil {
			continue
		}
		p.Draw(tiles.At(grid, i%2, i/2))
	}

	a.drawTitle(dc, titleStyle, meta.Title, titleBand)

	y := dc.Min.Y + footer - a.Margin
	center := dc.Min.X + width/2
	if len(lines) > 0 {
		boxTop := y + lineHeight/4
		boxBottom := y - lineHeight*vg.Length(len(lines)) - lineHeight/4
		dc.FillPolygon(a.CommentFill, []vg.Point{
			{X: dc.Min.X + a.Margin, Y: boxBottom}, {X: dc.Max.X - a.Margin, Y: boxBottom},
			{X: dc.Max.X - a.Margin, Y: boxTop}, {X: dc.Min.X + a.Margin, Y: boxTop},
		})
		for _, l := range lines {
			dc.FillText(bodyStyle, vg.Point{X: center, Y: y}, l)
			y -= lineHeight
		}
		y -= lineHeight
	}
	for _, l := range metaLines {
		dc.FillText(bodyStyle, vg.Point{X: center, Y: y}, l)
		y -= lineHeight
	}
}

func (a *Assembler) drawTitle(dc draw.Canvas, sty text.Style, title string, band vg.Length) {
	if title == "" {
		return
	}
	w := sty.Width(title)
	h := sty.Height(title)
	center := vg.Point{X: (dc.Min.X + dc.Max.X) / 2, Y: dc.Max.Y - band/2}
	pad := h / 2
	box := vg.Rectangle{
		Min: vg.Point{X: center.X - w/2 - pad, Y: center.Y - h/2 - pad},
		Max: vg.Point{X: center.X + w/2 + pad, Y: center.Y + h/2 + pad},
	}
	dc.SetColor(a.TitleFill)
	dc.Fill(roundedRect(box, pad))

	sty.YAlign = text.YCenter
	dc.FillText(sty, center, title)
}

func (a *Assembler) textStyle(fnt font.Font, size vg.Length) text.Style {
	return text.Style{
		Color:   color.Black,
		Font:    font.From(fnt, size),
		XAlign:  text.XCenter,
		YAlign:  text.YTop,
		Handler: plot.DefaultTextHandler,
	}
}

// roundedRect returns the outline of r with corners of radius rad
func roundedRect(r vg.Rectangle, rad vg.Length) vg.Path {
	var p vg.Path
	p.Move(vg.Point{X: r.Min.X + rad, Y: r.Min.Y})
	p.Line(vg.Point{X: r.Max.X - rad, Y: r.Min.Y})
	p.Arc(vg.Point{X: r.Max.X - rad, Y: r.Min.Y + rad}, rad, -math.Pi/2, math.Pi/2)
	p.Line(vg.Point{X: r.Max.X, Y: r.Max.Y - rad})
	p.Arc(vg.Point{X: r.Max.X - rad, Y: r.Max.Y - rad}, rad, 0, math.Pi/2)
	p.Line(vg.Point{X: r.Min.X + rad, Y: r.Max.Y})
	p.Arc(vg.Point{X: r.Min.X + rad, Y: r.Max.Y - rad}, rad, math.Pi/2, math.Pi/2)
	p.Line(vg.Point{X: r.Min.X, Y: r.Min.Y + rad})
	p.Arc(vg.Point{X: r.Min.X + rad, Y: r.Min.Y + rad}, rad, math.Pi, math.Pi/2)
	p.Close()
	return p
}

// wrap breaks s into lines no wider than limit. Newlines in s start a new
// paragraph.
func wrap(sty text.Style, s string, limit vg.Length) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}
		line := words[0]
		for _, word := range words[1:] {
			candidate := line + " " + word
			if sty.Width(candidate) > limit {
				lines = append(lines, line)
				line = word
				continue
			}
			line = candidate
		}
		lines = append(lines, line)
	}
	return lines
}
