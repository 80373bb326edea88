// Package workbook loads spreadsheet tables by header name.
//
// Both the consignment summary and the account maps arrive as workbooks whose
// first row holds column headers. Cells are read as raw values, so a tray
// count formatted as "1,200" in Excel is seen as 1200.
package workbook

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrEmptySheet is returned when a sheet has no header row.
	ErrEmptySheet = errors.New("sheet is empty")

	// ErrMissingColumn is returned when a required header is not present.
	ErrMissingColumn = errors.New("required column not found")

	// ErrSheetNotFound is returned when a named sheet does not exist.
	ErrSheetNotFound = errors.New("sheet not found")
)

// Table is a header row plus data rows, all as strings.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// Column returns the position of a header, matched case-insensitively after trimming.
// It returns -1 when the header is absent.
func (t *Table) Column(header string) int {
	want := strings.ToLower(strings.TrimSpace(header))
	for i, h := range t.Headers {
		if strings.ToLower(strings.TrimSpace(h)) == want {
			return i
		}
	}
	return -1
}

// Require resolves every header to its column index.
func (t *Table) Require(headers ...string) (map[string]int, error) {
	idx := make(map[string]int, len(headers))
	var missing []string
	for _, h := range headers {
		i := t.Column(h)
		if i < 0 {
			missing = append(missing, h)
			continue
		}
		idx[h] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w in %q: %s", ErrMissingColumn, t.Name, strings.Join(missing, ", "))
	}
	return idx, nil
}

// Cell returns the trimmed cell at index i, or "" when the row is shorter.
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// LoadXLSX opens a workbook file and reads one sheet; an empty sheet name selects the first.
func LoadXLSX(path, sheet string) (*Table, error) {
	const op = "LoadXLSX"

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open %s: %w", op, path, err)
	}
	defer f.Close()

	table, err := ReadXLSX(f, sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, path, err)
	}
	return table, nil
}

// ReadXLSX reads one sheet from a workbook stream; an empty sheet name selects the first.
func ReadXLSX(r io.Reader, sheet string) (*Table, error) {
	const op = "ReadXLSX"

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open workbook: %w", op, err)
	}
	defer f.Close()

	return readSheet(f, sheet)
}

func readSheet(f *excelize.File, sheet string) (*Table, error) {
	const op = "readSheet"

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptySheet)
	}
	if sheet == "" {
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrSheetNotFound, sheet)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read sheet %s: %w", op, sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrEmptySheet, sheet)
	}

	return &Table{Name: sheet, Headers: rows[0], Rows: rows[1:]}, nil
}

// FromValues builds a table from API cell values, first row as headers.
func FromValues(name string, values [][]interface{}) (*Table, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySheet, name)
	}
	toStrings := func(row []interface{}) []string {
		out := make([]string, len(row))
		for i, v := range row {
			out[i] = cellString(v)
		}
		return out
	}

	t := &Table{Name: name, Headers: toStrings(values[0])}
	for _, row := range values[1:] {
		t.Rows = append(t.Rows, toStrings(row))
	}
	return t, nil
}

// cellString renders an unformatted API value. Numbers are written in plain decimal
// notation so long references such as PO numbers survive as digits.
func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// SaveXLSX writes the table to a new single-sheet workbook with a bold header row.
func (t *Table) SaveXLSX(path string) error {
	const op = "SaveXLSX"

	f := excelize.NewFile()
	defer f.Close()

	sheet := t.Name
	if sheet == "" {
		sheet = "Sheet1"
	}
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("%s: failed to name sheet: %w", op, err)
		}
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("%s: failed to create stream writer: %w", op, err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("%s: failed to create header style: %w", op, err)
	}

	header := make([]interface{}, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = excelize.Cell{StyleID: bold, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("%s: failed to write header: %w", op, err)
	}

	for r, row := range t.Rows {
		cells := make([]interface{}, len(row))
		for i, v := range row {
			cells[i] = v
		}
		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := sw.SetRow(axis, cells); err != nil {
			return fmt.Errorf("%s: failed to write row %d: %w", op, r+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("%s: failed to flush sheet: %w", op, err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("%s: failed to save %s: %w", op, path, err)
	}
	return nil
}
