package dataset

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Extract filters raw to one indicator and a set of countries and returns
// the cleaned wide table together with its year indexed transpose.
//
// Rows match when Series Name equals indicator exactly and Country Name is
// in countries. Year columns are renamed to bare years, sorted ascending,
// and every identifier column other than the country name is dropped.
// When nothing matches both tables are empty; this is not an error.
func Extract(raw *RawTable, indicator string, countries []string) (*WideTable, *YearTable) {
	wanted := make(map[string]bool, len(countries))
	for _, c := range countries {
		wanted[c] = true
	}

	wide := &WideTable{Indicator: indicator, Years: []string{}}
	years := raw.YearColumns()
	sort.SliceStable(years, func(i, j int) bool { return years[i].Year < years[j].Year })

	seen := make(map[string]bool)
	for _, r := range raw.Rows {
		country := r.Get(ColCountryName)
		if r.Get(ColSeriesName) != indicator || !wanted[country] || seen[country] {
			continue
		}
		seen[country] = true

		vals := make([]float64, len(years))
		for j, yc := range years {
			vals[j] = parseValue(r.Get(yc.Label))
		}
		wide.Rows = append(wide.Rows, WideRow{Country: country, Values: vals})
	}

	if len(wide.Rows) > 0 {
		for _, yc := range years {
			wide.Years = append(wide.Years, yc.Name)
		}
	}
	return wide, wide.Transpose()
}

// MissingCountries returns the requested countries that have no row in w,
// in request order.
func MissingCountries(requested []string, w *WideTable) []string {
	have := make(map[string]bool, len(w.Rows))
	for _, r := range w.Rows {
		have[r.Country] = true
	}
	var out []string
	for _, c := range requested {
		if !have[c] {
			out = append(out, c)
		}
	}
	return out
}

// parseValue converts a cell to a number; databank placeholders become NaN
func parseValue(s string) float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "", "..", "NA", "NaN", "nan", "null":
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
