package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"freightsplit/internal/export"
	"freightsplit/internal/reconciliation"
	"freightsplit/pkg/models"
)

type recordingSink struct {
	sheet string
	lines []models.AllocationLine
}

func (s *recordingSink) WriteAllocationLines(_ context.Context, sheetName string, lines []models.AllocationLine) error {
	s.sheet = sheetName
	s.lines = append(s.lines, lines...)
	return nil
}

func testOutputs(t *testing.T) batchOutputs {
	t.Helper()
	dir := t.TempDir()
	return batchOutputs{
		importPath:  filepath.Join(dir, "myob_import.txt"),
		reportPath:  filepath.Join(dir, "failed_invoices.xlsx"),
		sessionPath: filepath.Join(dir, "session.json"),
	}
}

func TestBatchOutputsCleanBatch(t *testing.T) {
	outputs := testOutputs(t)
	sink := &recordingSink{}
	outputs.sink = sink
	outputs.sheet = "MYOB Lines"

	stale := []models.Failure{{Company: "Bache Bros Pty Ltd", InvoiceNumber: "BB-1", Reason: "old"}}
	if err := export.WriteFailureReport(outputs.reportPath, stale); err != nil {
		t.Fatalf("seed report: %v", err)
	}

	lines := []models.AllocationLine{{
		CardName:      "FRESHMAX NATIONAL PTY LTD",
		InvoiceNumber: "100234",
		Amount:        decimal.RequireFromString("102.00"),
	}}
	stash := reconciliation.NewStash("summary.xlsx", "maps.xlsx")

	if err := outputs.write(context.Background(), lines, nil, stash, zerolog.Nop()); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := os.Stat(outputs.importPath); err != nil {
		t.Errorf("import file: %v", err)
	}
	if _, err := os.Stat(outputs.reportPath); !os.IsNotExist(err) {
		t.Errorf("report from the previous batch was kept: %v", err)
	}
	if _, err := reconciliation.LoadStash(outputs.sessionPath); err != nil {
		t.Errorf("session: %v", err)
	}
	if sink.sheet != "MYOB Lines" || len(sink.lines) != 1 {
		t.Errorf("sink got sheet %q with %d lines", sink.sheet, len(sink.lines))
	}
}

func TestBatchOutputsOnlyFailures(t *testing.T) {
	outputs := testOutputs(t)
	failures := []models.Failure{{Company: "Bache Bros Pty Ltd", InvoiceNumber: "BB-1042", Reason: "Could not read PO from bache.pdf"}}

	err := outputs.write(context.Background(), nil, failures, reconciliation.NewStash("a.xlsx", "b.xlsx"), zerolog.Nop())
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := os.Stat(outputs.importPath); !os.IsNotExist(err) {
		t.Errorf("import file written for a batch without lines: %v", err)
	}
	if _, err := os.Stat(outputs.reportPath); err != nil {
		t.Errorf("report: %v", err)
	}
}
