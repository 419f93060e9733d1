package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
)

// YearsColumn is the name of the column mirroring the row index of a YearTable.
const YearsColumn = "Years"

// WideRow holds one country's values, aligned with WideTable.Years.
type WideRow struct {
	Country string
	Values  []float64
}

// WideTable has one row per country and one column per year.
type WideTable struct {
	Indicator string
	Years     []string
	Rows      []WideRow
}

// Len returns the number of country rows.
func (w *WideTable) Len() int {
	return len(w.Rows)
}

// Countries returns the country names in row order.
func (w *WideTable) Countries() []string {
	out := make([]string, len(w.Rows))
	for i, r := range w.Rows {
		out[i] = r.Country
	}
	return out
}

// HasYear reports whether year is one of the table's columns.
func (w *WideTable) HasYear(year string) bool {
	return w.yearIndex(year) >= 0
}

// Value returns the cell for country and year.
func (w *WideTable) Value(country, year string) (float64, bool) {
	j := w.yearIndex(year)
	if j < 0 {
		return 0, false
	}
	for _, r := range w.Rows {
		if r.Country == country {
			return r.Values[j], true
		}
	}
	return 0, false
}

// Transpose returns the year indexed view of the table. Year labels that
// are not integers are skipped.
func (w *WideTable) Transpose() *YearTable {
	yt := &YearTable{
		Indicator: w.Indicator,
		Years:     []int{},
		Countries: w.Countries(),
		values:    make(map[string][]float64, len(w.Rows)),
	}
	var keep []int
	for j, label := range w.Years {
		year, err := strconv.Atoi(label)
		if err != nil {
			continue
		}
		yt.Years = append(yt.Years, year)
		keep = append(keep, j)
	}
	for _, r := range w.Rows {
		col := make([]float64, len(keep))
		for i, j := range keep {
			col[i] = r.Values[j]
		}
		yt.values[r.Country] = col
	}
	return yt
}

func (w *WideTable) yearIndex(year string) int {
	for j, y := range w.Years {
		if y == year {
			return j
		}
	}
	return -1
}

// YearTable has one row per year and one column per country, plus the
// Years column. Rows are in ascending year order.
type YearTable struct {
	Indicator string
	Years     []int
	Countries []string

	values map[string][]float64
}

// Len returns the number of year rows.
func (t *YearTable) Len() int {
	return len(t.Years)
}

// Columns returns the country columns followed by YearsColumn.
func (t *YearTable) Columns() []string {
	out := make([]string, 0, len(t.Countries)+1)
	out = append(out, t.Countries...)
	return append(out, YearsColumn)
}

// Column returns a copy of the named column. The Years column is returned
// as float64 like every other column.
func (t *YearTable) Column(name string) ([]float64, bool) {
	if name == YearsColumn {
		out := make([]float64, len(t.Years))
		for i, y := range t.Years {
			out[i] = float64(y)
		}
		return out, true
	}
	col, ok := t.values[name]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(col))
	copy(out, col)
	return out, true
}

// HasYear reports whether year is one of the rows.
func (t *YearTable) HasYear(year int) bool {
	return t.rowIndex(year) >= 0
}

// Value returns the cell for year and country.
func (t *YearTable) Value(year int, country string) (float64, bool) {
	i := t.rowIndex(year)
	col, ok := t.values[country]
	if i < 0 || !ok {
		return 0, false
	}
	return col[i], true
}

// SelectYears returns the rows whose year is in years, in table order.
// Years not present in the table are ignored.
func (t *YearTable) SelectYears(years []int) *YearTable {
	want := make(map[int]bool, len(years))
	for _, y := range years {
		want[y] = true
	}

	out := &YearTable{
		Indicator: t.Indicator,
		Years:     []int{},
		Countries: append([]string(nil), t.Countries...),
		values:    make(map[string][]float64, len(t.Countries)),
	}
	var rows []int
	for i, y := range t.Years {
		if want[y] {
			out.Years = append(out.Years, y)
			rows = append(rows, i)
		}
	}
	for _, c := range t.Countries {
		col := make([]float64, len(rows))
		for k, i := range rows {
			col[k] = t.values[c][i]
		}
		out.values[c] = col
	}
	return out
}

// Wide transposes the table back to one row per country.
func (t *YearTable) Wide() *WideTable {
	w := &WideTable{
		Indicator: t.Indicator,
		Years:     make([]string, len(t.Years)),
		Rows:      make([]WideRow, len(t.Countries)),
	}
	for j, y := range t.Years {
		w.Years[j] = strconv.Itoa(y)
	}
	for i, c := range t.Countries {
		vals := make([]float64, len(t.Years))
		copy(vals, t.values[c])
		w.Rows[i] = WideRow{Country: c, Values: vals}
	}
	return w
}

// WriteCSV writes the table with a header of Columns(). Missing values are
// written as empty cells.
func (t *YearTable) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns()); err != nil {
		return err
	}
	for i, y := range t.Years {
		rec := make([]string, 0, len(t.Countries)+1)
		for _, c := range t.Countries {
			rec = append(rec, formatValue(t.values[c][i]))
		}
		rec = append(rec, strconv.Itoa(y))
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (t *YearTable) rowIndex(year int) int {
	for i, y := range t.Years {
		if y == year {
			return i
		}
	}
	return -1
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
