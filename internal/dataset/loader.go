package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"energyreport/internal/apperr"
)

// Load reads the table at path. Files ending in .xlsx are read with
// LoadXLSX from sheet (the first sheet when empty), anything else as CSV.
func Load(path, sheet string) (*RawTable, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return LoadXLSX(path, sheet)
	}
	return LoadCSV(path)
}

// LoadCSV reads a comma separated table from path.
func LoadCSV(path string) (*RawTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperr.NewIOError("failed to open input", err).WithContext("path", path)
	}
	defer file.Close()

	table, err := ReadCSV(file)
	if err != nil {
		var appErr *apperr.AppError
		if errors.As(err, &appErr) {
			appErr.WithContext("path", path)
		}
		return nil, err
	}
	return table, nil
}

// ReadCSV parses a comma separated table from r.
func ReadCSV(r io.Reader) (*RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, apperr.NewFormatError("malformed CSV", err)
		}
		return nil, apperr.NewIOError("failed to read input", err)
	}
	return fromRecords(records)
}

// LoadXLSX reads the table from one sheet of an Excel workbook.
func LoadXLSX(path, sheet string) (*RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperr.NewIOError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperr.NewFormatError(fmt.Sprintf("failed to read sheet %q", sheet), err).
			WithContext("path", path)
	}
	return fromRecords(rows)
}

func fromRecords(records [][]string) (*RawTable, error) {
	if len(records) == 0 {
		return nil, apperr.NewFormatError("input has no header row", nil)
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		h = strings.TrimPrefix(h, "\ufeff")
		header[i] = strings.TrimSpace(h)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			return nil, apperr.NewFormatError(fmt.Sprintf("missing required column %q", col), nil).
				WithContext("column", col)
		}
	}

	table := &RawTable{Header: header}
	seenYear := make(map[string]string)
	for _, h := range header {
		yc, ok := parseYearColumn(h)
		if !ok {
			continue
		}
		if prev, dup := seenYear[yc.Name]; dup {
			return nil, apperr.NewFormatError(
				fmt.Sprintf("columns %q and %q both hold year %s", prev, h, yc.Name), nil)
		}
		seenYear[yc.Name] = h
		table.years = append(table.years, yc)
	}

	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		cells := make(map[string]string, len(header))
		for col, i := range index {
			if i < len(rec) {
				cells[col] = strings.TrimSpace(rec[i])
			} else {
				cells[col] = ""
			}
		}
		table.Rows = append(table.Rows, Row{cells: cells})
	}
	return table, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
