package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"freightsplit/internal/workbook"
	"freightsplit/pkg/models"
)

func line(invoice, desc, amount string) models.AllocationLine {
	return models.AllocationLine{
		CardName:      "FRESHMAX NATIONAL PTY LTD",
		Date:          "14/02/2025",
		InvoiceNumber: invoice,
		Description:   desc,
		Account:       "6-1100",
		Amount:        decimal.RequireFromString(amount),
		Job:           "JA",
		TaxCode:       "GST",
		Comment:       "OZG12345",
	}
}

func TestGroup(t *testing.T) {
	lines := []models.AllocationLine{
		line("2", "a", "1"),
		line("1", "b", "1"),
		line("2", "c", "1"),
	}

	got := Group(lines)
	var desc []string
	for _, l := range got {
		if l == nil {
			desc = append(desc, "-")
			continue
		}
		desc = append(desc, l.Description)
	}
	if strings.Join(desc, " ") != "a c - b -" {
		t.Fatalf("grouped order = %v", desc)
	}
}

func TestWriteMYOB(t *testing.T) {
	lines := []models.AllocationLine{
		line("100234", "353 x Blueberry Logistics JA", "200"),
		line("100234", "Blueberry Freight JA", "33.333"),
		line("556677", "Blueberry Freight JB", "5.5"),
	}

	var buf bytes.Buffer
	if err := WriteMYOB(&buf, lines); err != nil {
		t.Fatalf("WriteMYOB: %v", err)
	}

	want := strings.Join([]string{
		"{}",
		"Co./Last Name\tDate\tSupplier Invoice No.\tDescription\tAccount No.\tAmount\tJob\tTax Code\tComment",
		"FRESHMAX NATIONAL PTY LTD\t14/02/2025\t100234\t353 x Blueberry Logistics JA\t6-1100\t200.00\tJA\tGST\tOZG12345",
		"FRESHMAX NATIONAL PTY LTD\t14/02/2025\t100234\tBlueberry Freight JA\t6-1100\t33.33\tJA\tGST\tOZG12345",
		"\t\t\t\t\t\t\t\t",
		"FRESHMAX NATIONAL PTY LTD\t14/02/2025\t556677\tBlueberry Freight JB\t6-1100\t5.50\tJA\tGST\tOZG12345",
		"\t\t\t\t\t\t\t\t",
		"",
	}, "\r\n")

	if got := buf.String(); got != want {
		t.Fatalf("output mismatch\ngot:\n%q\nwant:\n%q", got, want)
	}
}

func TestWriteMYOBEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMYOB(&buf, nil); err != nil {
		t.Fatalf("WriteMYOB: %v", err)
	}
	if lines := strings.Split(strings.TrimSuffix(buf.String(), "\r\n"), "\r\n"); len(lines) != 2 {
		t.Fatalf("empty export should hold placeholder and header, got %q", buf.String())
	}
}

func TestWriteFailureReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "failed.xlsx")
	failures := []models.Failure{{
		Company:       "Bache Bros Pty Ltd",
		InvoiceNumber: "BB-1042",
		Reason:        "Could not read PO from bache.pdf",
		Key:           "Bache Bros Pty Ltd|BB-1042|",
		Fix:           "po",
	}}

	if err := WriteFailureReport(path, failures); err != nil {
		t.Fatalf("WriteFailureReport: %v", err)
	}

	table, err := workbook.LoadXLSX(path, "")
	if err != nil {
		t.Fatalf("LoadXLSX: %v", err)
	}
	if table.Column("Reason") != 3 || len(table.Rows) != 1 {
		t.Fatalf("table = %+v", table)
	}
	if got := workbook.Cell(table.Rows[0], table.Column("Key")); got != failures[0].Key {
		t.Errorf("key = %q", got)
	}
}

func TestWriteFailureReportRemovesStaleReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failed.xlsx")
	failures := []models.Failure{{Company: "Bache Bros Pty Ltd", InvoiceNumber: "BB-1042", Reason: "x"}}

	if err := WriteFailureReport(path, failures); err != nil {
		t.Fatalf("WriteFailureReport: %v", err)
	}
	if err := WriteFailureReport(path, nil); err != nil {
		t.Fatalf("WriteFailureReport(nil): %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("stale report still present: %v", err)
	}

	// Nothing to remove is not an error.
	if err := WriteFailureReport(path, nil); err != nil {
		t.Fatalf("WriteFailureReport on missing file: %v", err)
	}
}
