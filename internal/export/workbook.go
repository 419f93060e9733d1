// Package export writes the derived tables to an Excel workbook.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/xuri/excelize/v2"

	"energyreport/internal/apperr"
	"energyreport/internal/dataset"
)

// SummarySheet is the name of the per-country statistics sheet.
const SummarySheet = "Summary"

// Sheet is one year indexed table written to its own worksheet.
type Sheet struct {
	Name  string
	Table *dataset.YearTable
}

// Summary describes one country's series of one indicator.
type Summary struct {
	Indicator string
	Country   string
	Points    int
	Mean      float64
	Min       float64
	Max       float64
	First     float64
	Last      float64
	Change    float64

	// Growth is the relative change from First to Last in percent.
	Growth     float64
	PeakYear   int
	Volatility float64
	Trend      string
}

// Summarize computes a Summary per country of t, skipping missing values.
// Countries without any value are left out.
func Summarize(t *dataset.YearTable) []Summary {
	var out []Summary
	for _, country := range t.Countries {
		col, _ := t.Column(country)
		data := make(stats.Float64Data, 0, len(col))
		var years []int
		for i, v := range col {
			if !math.IsNaN(v) {
				data = append(data, v)
				years = append(years, t.Years[i])
			}
		}
		if len(data) == 0 {
			continue
		}

		mean, _ := stats.Mean(data)
		min, _ := stats.Min(data)
		max, _ := stats.Max(data)
		first, last := data[0], data[len(data)-1]

		peak := years[0]
		for i, v := range data {
			if v == max {
				peak = years[i]
				break
			}
		}

		var growth float64
		if first != 0 {
			growth = (last - first) / first * 100
		}
		volatility := Volatility(data)

		out = append(out, Summary{
			Indicator:  t.Indicator,
			Country:    country,
			Points:     len(data),
			Mean:       mean,
			Min:        min,
			Max:        max,
			First:      first,
			Last:       last,
			Change:     last - first,
			Growth:     growth,
			PeakYear:   peak,
			Volatility: volatility,
			Trend:      ClassifyTrend(len(data), first, growth, volatility),
		})
	}
	return out
}

// WriteWorkbook saves one worksheet per table plus a Summary sheet to path.
func WriteWorkbook(path string, sheets []Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	var summaries []Summary
	for _, s := range sheets {
		name := sheetName(s.Name)
		if _, err := f.NewSheet(name); err != nil {
			return apperr.NewIOError(fmt.Sprintf("failed to add sheet %q", name), err)
		}
		if err := writeTable(f, name, s.Table); err != nil {
			return err
		}
		summaries = append(summaries, Summarize(s.Table)...)
	}

	idx, err := f.NewSheet(SummarySheet)
	if err != nil {
		return apperr.NewIOError("failed to add summary sheet", err)
	}
	if err := writeSummary(f, summaries); err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return apperr.NewIOError("failed to remove default sheet", err)
	}

	if err := f.SaveAs(path); err != nil {
		return apperr.NewIOError("failed to save workbook", err).WithContext("path", path)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, t *dataset.YearTable) error {
	headers := append([]string{dataset.YearsColumn}, t.Countries...)
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetColWidth(sheet, colName(i+1), colName(i+1), 14)
	}

	for r, year := range t.Years {
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetCellValue(sheet, cell, year); err != nil {
			return apperr.NewIOError("failed to write cell", err).WithContext("sheet", sheet)
		}
		for c, country := range t.Countries {
			v, _ := t.Value(year, country)
			if math.IsNaN(v) {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+2, r+2)
			f.SetCellValue(sheet, cell, v)
		}
	}
	return nil
}

func writeSummary(f *excelize.File, summaries []Summary) error {
	headers := []string{
		"Indicator", "Country", "Points", "Mean", "Min", "Max", "First", "Last", "Change",
		"Growth %", "Peak year", "Volatility", "Trend",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(SummarySheet, cell, h)
	}
	f.SetColWidth(SummarySheet, "A", "A", 48)
	f.SetColWidth(SummarySheet, "B", "M", 14)

	for i, s := range summaries {
		row := []interface{}{
			s.Indicator, s.Country, s.Points,
			round2(s.Mean), round2(s.Min), round2(s.Max),
			round2(s.First), round2(s.Last), round2(s.Change),
			round2(s.Growth), s.PeakYear, round2(s.Volatility), s.Trend,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return apperr.NewIOError("failed to write summary row", err)
		}
	}
	return nil
}

// sheetName trims a name to Excel's 31 character limit and drops the
// characters Excel rejects.
func sheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return -1
		}
		return r
	}, name)
	if name == "" {
		name = "Table"
	}
	if len([]rune(name)) > 31 {
		name = string([]rune(name)[:31])
	}
	return name
}

func colName(n int) string {
	name, _ := excelize.ColumnNumberToName(n)
	return name
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
