// Package tabular reads uploaded CSV and XLSX files into session tables.
package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"amaa/domain/core"
	"amaa/domain/dataset"
	"amaa/internal"
)

// Reader implements ports.TableReader for CSV and XLSX uploads.
type Reader struct{}

// NewReader creates a reader.
func NewReader() *Reader {
	return &Reader{}
}

// Read parses the uploaded bytes according to the filename extension. Any
// failure wraps core.ErrUnusableFile so callers can keep their previous table
// and surface "could not load data".
func (r *Reader) Read(filename string, data []byte) (*dataset.Table, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt", ".tsv":
		rows, err = r.readDelimited(data)
	case ".xlsx":
		rows, err = r.readWorkbook(data)
	default:
		err = fmt.Errorf("unsupported file type %q", filepath.Ext(filename))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrUnusableFile, filename, err)
	}

	table, err := buildTable(filename, rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrUnusableFile, filename, err)
	}

	internal.DefaultLogger.Info("[TableReader] %s parsed (%d columns, %d rows)",
		filename, len(table.Columns)+1, len(table.Rows))
	return table, nil
}

// readDelimited parses delimited text after running the encoding ladder.
func (r *Reader) readDelimited(data []byte) ([][]string, error) {
	text := decodeText(data)
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	if strings.Contains(firstLine(text), "\t") {
		reader.Comma = '\t'
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read delimited text: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("file must have a header row and at least one data row")
	}
	return rows, nil
}

// readWorkbook parses xlsx data. Sheet1 is preferred, matching the exported
// demo workbooks; otherwise the first sheet is used.
func (r *Reader) readWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := sheets[0]
	for _, s := range sheets {
		if s == "Sheet1" {
			sheet = s
			break
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("sheet %s must have a header row and at least one data row", sheet)
	}
	return rows, nil
}

// buildTable converts raw string rows into a typed session table.
func buildTable(filename string, rows [][]string) (*dataset.Table, error) {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	dateColumn, ok := dataset.DetectDateColumn(headers)
	if !ok {
		return nil, core.ErrNoDateColumn
	}

	table := &dataset.Table{
		Name:       filepath.Base(filename),
		DateColumn: dateColumn,
	}
	for _, h := range headers {
		if h != dateColumn && h != "" {
			table.Columns = append(table.Columns, h)
		}
	}

	for i := 1; i < len(rows); i++ {
		raw := rows[i]
		if emptyRecord(raw) {
			continue
		}

		row := dataset.Row{Values: make(map[string]float64, len(table.Columns))}
		for j, cell := range raw {
			if j >= len(headers) {
				break
			}
			header := headers[j]
			cell = strings.TrimSpace(cell)
			if header == dateColumn {
				date, err := normalizeDate(cell)
				if err != nil {
					return nil, fmt.Errorf("row %d: %w", i+1, err)
				}
				row.Date = date
				continue
			}
			if header == "" || cell == "" {
				continue
			}
			value, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: column %q: non-numeric value %q", i+1, header, cell)
			}
			row.Values[header] = value
		}
		table.Rows = append(table.Rows, row)
	}

	if len(table.Rows) == 0 {
		return nil, fmt.Errorf("no data rows after parsing")
	}
	return table, nil
}

// Accepted date renderings, normalized to dataset.DateLayout.
var dateLayouts = []string{
	dataset.DateLayout,
	"2006/01/02",
	"2006/1/2",
	"2006-1-2",
	"2006.01.02",
	"01/02/2006",
	"1/2/2006",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"01-02-06",
}

func normalizeDate(cell string) (string, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t.Format(dataset.DateLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", cell)
}

func emptyRecord(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
