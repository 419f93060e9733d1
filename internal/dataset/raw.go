package dataset

import (
	"regexp"
	"strconv"
	"strings"
)

// Identifier columns of the source table.
const (
	ColCountryName = "Country Name"
	ColCountryCode = "Country Code"
	ColSeriesName  = "Series Name"
	ColSeriesCode  = "Series Code"
)

// RequiredColumns must all be present in the header of a RawTable.
var RequiredColumns = []string{ColCountryName, ColCountryCode, ColSeriesName, ColSeriesCode}

var (
	yearHeader = regexp.MustCompile(`^(\d{4})(\s*\[[^\]]*\])?$`)
	yearTag    = regexp.MustCompile(`\s*\[[^\]]*\]$`)
)

// YearColumn is a source column holding the values of one calendar year.
type YearColumn struct {
	Label string // header as found in the file, e.g. "1995 [YR1995]"
	Name  string // bare year label, e.g. "1995"
	Year  int
}

// Row is one record of a RawTable, addressed by column name.
type Row struct {
	cells map[string]string
}

// Get returns the cell of column col, or "" if the column does not exist.
func (r Row) Get(col string) string {
	return r.cells[col]
}

// RawTable is the loaded source table. It is not modified after loading.
type RawTable struct {
	Header []string
	Rows   []Row

	years []YearColumn
}

// YearColumns returns the year columns in header order.
func (t *RawTable) YearColumns() []YearColumn {
	out := make([]YearColumn, len(t.years))
	copy(out, t.years)
	return out
}

// Indicators returns the distinct series names in row order.
func (t *RawTable) Indicators() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range t.Rows {
		name := r.Get(ColSeriesName)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// RenameYear strips a trailing bracketed tag from a year column header.
// "2014 [YR2014]" becomes "2014"; labels without a tag are returned trimmed.
func RenameYear(label string) string {
	return yearTag.ReplaceAllString(strings.TrimSpace(label), "")
}

// parseYearColumn reports whether label names a year column
func parseYearColumn(label string) (YearColumn, bool) {
	m := yearHeader.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return YearColumn{}, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return YearColumn{}, false
	}
	return YearColumn{Label: label, Name: RenameYear(label), Year: year}, true
}
