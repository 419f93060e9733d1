package chart

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"energyreport/internal/apperr"
	"energyreport/internal/dataset"
)

const indicator = "Electricity production from nuclear sources (% of total)"

var sevenCountries = []string{"Netherlands", "Mexico", "China", "Pakistan", "Germany", "Spain", "Argentina"}

// buildTables creates a 1995-2014 table where country i has value
// base[i] + (year-1995)/10 in every year.
func buildTables(t *testing.T, countries []string, base []float64) (*dataset.WideTable, *dataset.YearTable) {
	t.Helper()
	var b strings.Builder
	b.WriteString("Country Name,Country Code,Series Name,Series Code")
	for y := 1995; y <= 2014; y++ {
		fmt.Fprintf(&b, ",%d [YR%d]", y, y)
	}
	b.WriteString("\n")
	for i, c := range countries {
		fmt.Fprintf(&b, "%s,C%d,%s,EG.ELC.NUCL.ZS", c, i, indicator)
		for y := 1995; y <= 2014; y++ {
			if y == 2014 {
				fmt.Fprintf(&b, ",%v", base[i])
			} else {
				fmt.Fprintf(&b, ",%v", base[i]+float64(y-1995)/10)
			}
		}
		b.WriteString("\n")
	}
	raw, err := dataset.ReadCSV(strings.NewReader(b.String()))
	require.NoError(t, err)
	wide, years := dataset.Extract(raw, indicator, countries)
	return wide, years
}

func drawPanel(t *testing.T, p *Panel) {
	t.Helper()
	c := vgimg.New(6*vg.Inch, 4*vg.Inch)
	assert.NotPanics(t, func() { p.Draw(draw.New(c)) })
}

func TestBarRenderer_SelectsMilestones(t *testing.T) {
	_, years := buildTables(t, sevenCountries, []float64{1, 2, 3, 4, 5, 6, 7})
	require.Equal(t, 20, years.Len())

	r := BarRenderer{Years: []int{1995, 2000, 2007, 2014}}
	sel := r.Select(years)

	assert.Equal(t, 4, sel.Len())
	assert.Equal(t, []int{1995, 2000, 2007, 2014}, sel.Years)
	assert.Equal(t, sevenCountries, sel.Countries)
}

func TestBarRenderer_Render(t *testing.T) {
	_, years := buildTables(t, sevenCountries, []float64{1, 2, 3, 4, 5, 6, 7})

	panel, err := BarRenderer{
		Title:  "Electricity production from hydroelectric sources",
		XLabel: "Years",
		YLabel: "% of total production",
		Years:  []int{1995, 2000, 2007, 2014},
	}.Render(years)
	require.NoError(t, err)
	require.NotNil(t, panel.Legend)
	assert.Equal(t, "Years", panel.Plot.X.Label.Text)
	drawPanel(t, panel)
}

func TestBarRenderer_Groups(t *testing.T) {
	_, years := buildTables(t, sevenCountries, []float64{1, 2, 3, 4, 5, 6, 7})

	g, labels, err := BarRenderer{Years: []int{2014, 1995, 2007, 2000, 1980}}.Groups(years)
	require.NoError(t, err)

	assert.Equal(t, []string{"1995", "2000", "2007", "2014"}, labels)
	assert.Equal(t, 4, g.Groups)
	assert.Equal(t, sevenCountries, g.Countries)
	require.Len(t, g.Bars, len(sevenCountries))
	for i, bars := range g.Bars {
		require.Len(t, bars.Values, 4, sevenCountries[i])
		// country i has base i+1 and 2014 holds the base value
		assert.InDelta(t, float64(i+1), bars.Values[0], 1e-9)
		assert.InDelta(t, float64(i+1)+0.5, bars.Values[1], 1e-9)
		assert.InDelta(t, float64(i+1), bars.Values[3], 1e-9)
	}
}

func TestGroupedBars_Layout(t *testing.T) {
	tests := []struct {
		name      string
		countries int
		slot      vg.Length
	}{
		{"seven countries wide slot", 7, vg.Points(100)},
		{"seven countries narrow slot", 7, vg.Points(20)},
		{"single country", 1, vg.Points(50)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &GroupedBars{GroupWidth: DefaultGroupWidth, Bars: make([]*plotter.BarChart, tt.countries)}
			width, offsets := g.Layout(tt.slot)

			require.Len(t, offsets, tt.countries)
			assert.InDelta(t, 0.70*float64(tt.slot), float64(width)*float64(tt.countries), 1e-9)

			// the group is centred on the slot and stays inside it
			left := offsets[0] - width/2
			right := offsets[len(offsets)-1] + width/2
			assert.InDelta(t, 0, float64(left+right), 1e-9)
			assert.InDelta(t, 0.70*float64(tt.slot), float64(right-left), 1e-9)
			for i := 1; i < len(offsets); i++ {
				assert.InDelta(t, float64(width), float64(offsets[i]-offsets[i-1]), 1e-9)
			}
		})
	}
}

func TestGroupedBars_DataRange(t *testing.T) {
	_, years := buildTables(t, []string{"Spain", "China"}, []float64{3, 7})
	g, _, err := BarRenderer{Years: []int{1995, 2014}}.Groups(years)
	require.NoError(t, err)

	xmin, xmax, ymin, ymax := g.DataRange()
	assert.Equal(t, -0.5, xmin)
	assert.Equal(t, 1.5, xmax)
	assert.Equal(t, 0.0, ymin)
	assert.Equal(t, 7.0, ymax)
}

func TestBarRenderer_Errors(t *testing.T) {
	_, years := buildTables(t, []string{"Spain"}, []float64{1})
	_, empty := buildTables(t, []string{"Spain"}, []float64{1})
	empty = empty.SelectYears(nil)

	tests := []struct {
		name  string
		table *dataset.YearTable
		years []int
	}{
		{"nil table", nil, []int{2000}},
		{"empty table", empty, []int{2000}},
		{"no milestone present", years, []int{1980, 2020}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BarRenderer{Years: tt.years}.Render(tt.table)
			require.Error(t, err)
			assert.True(t, apperr.IsType(err, apperr.ErrTypeRender))
		})
	}
}

func TestPieChart_PercentagesSumTo100(t *testing.T) {
	values := []float64{10.5, 20, 4.5, 15, 25, 20, 5}
	pie, err := NewPieChart(values)
	require.NoError(t, err)

	sum := 0.0
	for _, p := range pie.Percentages() {
		sum += p
	}
	assert.InDelta(t, 100, sum, 1e-9)
	assert.InDelta(t, 25, pie.Percentages()[4], 1e-9)
}

func TestNewPieChart_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
	}{
		{"negative", []float64{1, -1}},
		{"zero total", []float64{0, 0}},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPieChart(tt.values)
			assert.Error(t, err)
		})
	}
}

func TestPieRenderer_Wedges(t *testing.T) {
	wide, _ := buildTables(t, []string{"Spain", "Germany", "China"}, []float64{20, 16, 2})

	names, values, err := PieRenderer{
		Year:   2014,
		Labels: []string{"Netherlands", "Germany", "China", "Spain"},
	}.Wedges(wide)
	require.NoError(t, err)

	assert.Equal(t, []string{"Germany", "China", "Spain"}, names)
	assert.Equal(t, []float64{16, 2, 20}, values)
}

func TestPieRenderer_Render(t *testing.T) {
	wide, _ := buildTables(t, sevenCountries, []float64{3, 4, 2, 5, 16, 20, 5})

	panel, err := PieRenderer{
		Title:         "Electricity production from nuclear source 2014",
		Year:          2014,
		Labels:        sevenCountries,
		Exploded:      "Spain",
		ExplodeOffset: 0.1,
	}.Render(wide)
	require.NoError(t, err)
	assert.Nil(t, panel.Legend)
	assert.Empty(t, panel.Plot.Y.Label.Text)
	drawPanel(t, panel)
}

func TestPieRenderer_Chart(t *testing.T) {
	wide, _ := buildTables(t, sevenCountries, []float64{3, 4, 2, 5, 16, 20, 5})

	pie, err := PieRenderer{
		Year:          2014,
		Labels:        []string{"Germany", "Spain", "China"},
		Exploded:      "Spain",
		ExplodeOffset: 0.1,
	}.Chart(wide)
	require.NoError(t, err)

	assert.Equal(t, []string{"Germany", "Spain", "China"}, pie.Labels)
	assert.Equal(t, []float64{16, 20, 2}, pie.Values)
	assert.Equal(t, []float64{0, 0.1, 0}, pie.Explode)
	assert.InDelta(t, math.Pi, pie.StartAngle, 1e-12)
	assert.Equal(t, "%1.0f%%", pie.PercentFormat)
	assert.Equal(t, vg.Points(1.5), pie.LineStyle.Width)
}

func TestPieRenderer_ChartExplodedAbsent(t *testing.T) {
	wide, _ := buildTables(t, []string{"Germany", "China"}, []float64{16, 2})

	pie, err := PieRenderer{Year: 2014, Exploded: "Spain", ExplodeOffset: 0.1}.Chart(wide)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, pie.Explode)
}

func TestPieRenderer_Errors(t *testing.T) {
	wide, _ := buildTables(t, []string{"Spain"}, []float64{20})
	zero, _ := buildTables(t, []string{"Spain"}, []float64{0})

	tests := []struct {
		name     string
		table    *dataset.WideTable
		renderer PieRenderer
	}{
		{"nil table", nil, PieRenderer{Year: 2014}},
		{"year absent", wide, PieRenderer{Year: 2020}},
		{"no labelled country", wide, PieRenderer{Year: 2014, Labels: []string{"France"}}},
		{"zero total", zero, PieRenderer{Year: 2014}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.renderer.Render(tt.table)
			require.Error(t, err)
			assert.True(t, apperr.IsType(err, apperr.ErrTypeRender))
		})
	}
}

func TestLineRenderer_Render(t *testing.T) {
	_, years := buildTables(t, sevenCountries, []float64{1, 2, 3, 4, 5, 6, 7})

	panel, err := LineRenderer{
		Title:  "Electricity production from natural gas sources",
		XLabel: "Years",
		YLabel: "% of production",
	}.Render(years)
	require.NoError(t, err)
	assert.Equal(t, "Electricity production from natural gas sources", panel.Plot.Title.Text)
	require.NotNil(t, panel.Legend)
	drawPanel(t, panel)
}

func TestLineRenderer_AllMissing(t *testing.T) {
	raw, err := dataset.ReadCSV(strings.NewReader(
		"Country Name,Country Code,Series Name,Series Code,2000,2001\nSpain,ESP," + indicator + ",X,..,..\n"))
	require.NoError(t, err)
	_, years := dataset.Extract(raw, indicator, []string{"Spain"})

	_, err = LineRenderer{}.Render(years)
	require.Error(t, err)
	assert.True(t, apperr.IsType(err, apperr.ErrTypeRender))

	_, err = LineRenderer{}.Render(years.SelectYears(nil))
	require.Error(t, err)
}

func TestHorizontalBarRenderer_Render(t *testing.T) {
	_, years := buildTables(t, sevenCountries, []float64{90.5, 79, 54.3, 38, 77.2, 79.4, 91.6})

	panel, err := HorizontalBarRenderer{
		Title:     "Urban population - 2014",
		XLabel:    "% of total population - 2014",
		YLabel:    "Countries",
		Year:      2014,
		Countries: sevenCountries,
	}.Render(years)
	require.NoError(t, err)
	assert.Equal(t, 0.0, panel.Plot.X.Min)
	drawPanel(t, panel)
}

func TestHorizontalBarRenderer_Bars(t *testing.T) {
	_, years := buildTables(t, sevenCountries, []float64{90.5, 79, 54.3, 38, 77.2, 79.4, 91.6})
	order := []string{"Spain", "China", "Netherlands", "France"}

	bars, err := HorizontalBarRenderer{Year: 2014, Countries: order}.Bars(years)
	require.NoError(t, err)
	require.Len(t, bars, 3)

	tests := []struct {
		country string
		pos     float64
		label   string
		labelX  float64
	}{
		{"Spain", 2, "79.4%", 39.7},
		{"China", 1, "54.3%", 27.15},
		{"Netherlands", 0, "90.5%", 45.25},
	}
	for i, tt := range tests {
		b := bars[i]
		assert.Equal(t, tt.country, b.Country)
		assert.Equal(t, tt.pos, b.Pos, tt.country)
		assert.Equal(t, tt.label, b.Label, tt.country)
		assert.InDelta(t, tt.labelX, b.LabelAt.X, 1e-9, tt.country)
		assert.Equal(t, tt.pos, b.LabelAt.Y, tt.country)
	}
	assert.NotEqual(t, bars[0].Color, bars[1].Color)
}

func TestHorizontalBarRenderer_Errors(t *testing.T) {
	_, years := buildTables(t, []string{"Spain"}, []float64{79.4})

	_, err := HorizontalBarRenderer{Year: 1990}.Render(years)
	require.Error(t, err)
	assert.True(t, apperr.IsType(err, apperr.ErrTypeRender))

	_, err = HorizontalBarRenderer{Year: 2014, Countries: []string{"France"}}.Render(years)
	require.Error(t, err)
	assert.True(t, apperr.IsType(err, apperr.ErrTypeRender))
}

func snapshotYears(t *dataset.YearTable) map[string][]float64 {
	out := map[string][]float64{}
	for _, c := range t.Columns() {
		col, _ := t.Column(c)
		out[c] = col
	}
	return out
}

func snapshotWide(w *dataset.WideTable) []dataset.WideRow {
	out := make([]dataset.WideRow, len(w.Rows))
	for i, r := range w.Rows {
		out[i] = dataset.WideRow{Country: r.Country, Values: append([]float64(nil), r.Values...)}
	}
	return out
}

func TestRenderers_DoNotMutateInput(t *testing.T) {
	wide, years := buildTables(t, sevenCountries, []float64{3, 4, 2, 5, 16, 20, 5})
	wideYears := append([]string(nil), wide.Years...)
	wideRows := snapshotWide(wide)
	tableYears := append([]int(nil), years.Years...)
	tableCountries := append([]string(nil), years.Countries...)
	tableValues := snapshotYears(years)

	_, err := BarRenderer{Years: []int{1995, 2000, 2007, 2014}}.Render(years)
	require.NoError(t, err)
	_, err = PieRenderer{Year: 2014, Labels: sevenCountries, Exploded: "Spain", ExplodeOffset: 0.1}.Render(wide)
	require.NoError(t, err)
	line, err := LineRenderer{}.Render(years)
	require.NoError(t, err)
	hbar, err := HorizontalBarRenderer{Year: 2014, Countries: sevenCountries}.Render(years)
	require.NoError(t, err)
	drawPanel(t, line)
	drawPanel(t, hbar)

	assert.Equal(t, wideYears, wide.Years)
	assert.Equal(t, wideRows, wide.Rows)
	assert.Equal(t, tableYears, years.Years)
	assert.Equal(t, tableCountries, years.Countries)
	assert.Equal(t, tableValues, snapshotYears(years))
}

func TestSet1(t *testing.T) {
	for _, n := range []int{1, 3, 7, 12} {
		colors, err := set1(n)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(colors), 3)
		assert.LessOrEqual(t, len(colors), 9)
	}
}

func TestPanel_Encode(t *testing.T) {
	_, years := buildTables(t, []string{"Spain", "Germany"}, []float64{5, 6})
	panel, err := LineRenderer{Title: "gas"}.Render(years)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, panel.Encode(&buf, 4*vg.Inch, 3*vg.Inch, "png"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))

	err = panel.Encode(&buf, 4*vg.Inch, 3*vg.Inch, "gif")
	require.Error(t, err)
	assert.True(t, apperr.IsType(err, apperr.ErrTypeRender))
}

func TestPanel_Save(t *testing.T) {
	_, years := buildTables(t, []string{"Spain"}, []float64{5})
	panel, err := HorizontalBarRenderer{Year: 2014}.Render(years)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "hbar.svg")
	require.NoError(t, panel.Save(4*vg.Inch, 3*vg.Inch, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")

	err = panel.Save(4*vg.Inch, 3*vg.Inch, filepath.Join(t.TempDir(), "missing", "hbar.png"))
	require.Error(t, err)
	assert.True(t, apperr.IsType(err, apperr.ErrTypeIO))
}
