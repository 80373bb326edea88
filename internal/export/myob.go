// Package export writes allocation results for the accounting system and the
// failed-invoice report for whoever applies the fixes.
package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"freightsplit/internal/workbook"
	"freightsplit/pkg/models"
)

// Placeholder is the first line of an import file; the importer expects it before the header row.
const Placeholder = "{}"

// Group orders lines by invoice number in order of first appearance, keeping the
// relative order of lines within an invoice. A nil entry separates invoices and
// also follows the last one.
func Group(lines []models.AllocationLine) []*models.AllocationLine {
	var order []string
	groups := make(map[string][]int)
	for i, l := range lines {
		if _, ok := groups[l.InvoiceNumber]; !ok {
			order = append(order, l.InvoiceNumber)
		}
		groups[l.InvoiceNumber] = append(groups[l.InvoiceNumber], i)
	}

	out := make([]*models.AllocationLine, 0, len(lines)+len(order))
	for _, inv := range order {
		for _, i := range groups[inv] {
			out = append(out, &lines[i])
		}
		out = append(out, nil)
	}
	return out
}

// WriteMYOB writes lines as a tab-delimited import file with CRLF line endings.
func WriteMYOB(w io.Writer, lines []models.AllocationLine) error {
	const op = "WriteMYOB"

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Placeholder + "\r\n"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	cw := csv.NewWriter(bw)
	cw.Comma = '\t'
	cw.UseCRLF = true

	if err := cw.Write(models.ImportColumns); err != nil {
		return fmt.Errorf("%s: failed to write header: %w", op, err)
	}

	blank := make([]string, len(models.ImportColumns))
	for _, l := range Group(lines) {
		record := blank
		if l != nil {
			record = l.Record()
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("%s: failed to write row: %w", op, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return bw.Flush()
}

// WriteMYOBFile writes the import file at path, creating parent directories.
func WriteMYOBFile(path string, lines []models.AllocationLine) error {
	const op = "WriteMYOBFile"

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := WriteMYOB(f, lines); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteFailureReport writes failed invoices to an .xlsx workbook. With no failures the
// report from an earlier batch is removed so it cannot disagree with the session file.
func WriteFailureReport(path string, failures []models.Failure) error {
	const op = "WriteFailureReport"

	if len(failures) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("%s: failed to remove stale report: %w", op, err)
		}
		return nil
	}

	table := &workbook.Table{Name: "Failed Invoices", Headers: models.FailureColumns}
	for _, f := range failures {
		table.Rows = append(table.Rows, f.Record())
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := table.SaveXLSX(path); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
