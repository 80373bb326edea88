package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"freightsplit/internal/allocation"
	"freightsplit/internal/config"
	"freightsplit/internal/export"
	"freightsplit/internal/invoice"
	"freightsplit/internal/logger"
	"freightsplit/internal/pdftext"
	"freightsplit/internal/reconciliation"
	"freightsplit/internal/sheets"
	"freightsplit/pkg/models"
	"freightsplit/pkg/services"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Allocate a batch of invoice PDFs and write the MYOB import file",
	Long: `Read each invoice PDF, identify its vendor by ABN, parse the invoice fields, and
check it against the consignment summary and the account map. Invoices that pass
are split across growers by tray share and written to the MYOB import file.

Failed invoices are listed with their reason, written to a failure report, and
kept in the session file (SESSION_FILE) for the fix commands. Each run replaces
the previous session.

The consignment summary and the account map may be .xlsx files or Google Sheets
URLs. For Google Sheets set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS;
CONSIGNMENT_SHEET_RANGE and MAPPING_SHEET_RANGE select the ranges to read.`,
	Example: `  # Process every PDF in a folder
  freightsplit process --pdf ./invoices --consignment summary.xlsx --mapping maps.xlsx

  # Process two files and also append the lines to a Google Sheet
  freightsplit process --pdf a.pdf --pdf b.pdf --consignment summary.xlsx \
    --mapping https://docs.google.com/spreadsheets/d/<id>/edit --sheet-export "MYOB Lines"

  # Check a batch without writing any file
  freightsplit process --pdf ./invoices --consignment summary.xlsx --mapping maps.xlsx --dry-run`,
	Args: cobra.NoArgs,
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringSlice("pdf", nil, "Invoice PDF file or folder (repeatable) [REQUIRED]")
	processCmd.Flags().String("consignment", "", "Consignment summary .xlsx or Google Sheets URL [REQUIRED]")
	processCmd.Flags().String("mapping", "", "Account map .xlsx or Google Sheets URL [REQUIRED]")
	processCmd.Flags().StringP("output", "o", "", "MYOB import file (default: $OUTPUT_DIR/myob_import.txt)")
	processCmd.Flags().String("report", "", "Failed invoice report (default: $OUTPUT_DIR/failed_invoices.xlsx)")
	processCmd.Flags().String("sheet-export", "", "Also append allocation lines to this sheet of GOOGLE_SHEET_URL")
	processCmd.Flags().Bool("dry-run", false, "Process and report without writing files or sheets")
	processCmd.Flags().Int("timeout", 600, "Processing timeout in seconds")

	processCmd.MarkFlagRequired("pdf")
	processCmd.MarkFlagRequired("consignment")
	processCmd.MarkFlagRequired("mapping")
}

// batchSummary counts document outcomes for the closing summary.
type batchSummary struct {
	total      int
	allocated  int
	failed     int
	unknown    int
	unreadable int
}

func (s *batchSummary) add(status reconciliation.Status) {
	s.total++
	switch status {
	case reconciliation.StatusAllocated:
		s.allocated++
	case reconciliation.StatusFailed:
		s.failed++
	case reconciliation.StatusUnknown:
		s.unknown++
	case reconciliation.StatusUnreadable:
		s.unreadable++
	}
}

func runProcess(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("process")

	pdfPaths, _ := cmd.Flags().GetStringSlice("pdf")
	consignmentSrc, _ := cmd.Flags().GetString("consignment")
	mappingSrc, _ := cmd.Flags().GetString("mapping")
	outputPath, _ := cmd.Flags().GetString("output")
	reportPath, _ := cmd.Flags().GetString("report")
	sheetExport, _ := cmd.Flags().GetString("sheet-export")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	cfg, registry, err := loadConfig(log)
	if err != nil {
		return err
	}
	if outputPath == "" {
		outputPath = filepath.Join(cfg.OutputDir, "myob_import.txt")
	}
	if reportPath == "" {
		reportPath = filepath.Join(cfg.OutputDir, "failed_invoices.xlsx")
	}
	if sheetExport != "" && cfg.GoogleSheetURL == "" {
		return fmt.Errorf("--sheet-export requires the GOOGLE_SHEET_URL environment variable")
	}

	pdfFiles, err := findPDFFiles(pdfPaths)
	if err != nil {
		return fmt.Errorf("failed to find PDF files: %w", err)
	}
	if len(pdfFiles) == 0 {
		fmt.Println("No PDF files found.")
		return nil
	}

	ctx, cancel := createCommandContext(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	stash := reconciliation.NewStash(consignmentSrc, mappingSrc)
	pipeline, err := buildPipeline(ctx, cfg, registry, stash)
	if err != nil {
		return err
	}

	var sink services.AllocationSink
	if sheetExport != "" && !dryRun {
		sheetsService, err := sheets.NewSheetsService(ctx, cfg.GoogleSheetURL)
		if err != nil {
			return fmt.Errorf("failed to create Google Sheets service: %w", err)
		}
		sink = sheetsService
	}
	log = logger.WithBatchID(log, stash.BatchID)

	log.Info().
		Int("documents", len(pdfFiles)).
		Str("consignment", consignmentSrc).
		Str("mapping", mappingSrc).
		Bool("dry_run", dryRun).
		Msg("Starting batch")

	processor := invoice.NewProcessor(pdftext.NewPDFExtractor(), registry)

	var lines []models.AllocationLine
	var summary batchSummary
	for i, path := range pdfFiles {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("processing canceled: %w", err)
		}

		res := processDocument(ctx, processor, pipeline, path)
		summary.add(res.Status)
		lines = append(lines, res.Lines...)
		printResult(i+1, len(pdfFiles), res)
	}

	fmt.Println()
	failures := make([]models.Failure, 0, stash.Len())
	for _, p := range stash.Payloads {
		failures = append(failures, p.Failure())
	}
	printFailures(failures)

	if !dryRun {
		outputs := batchOutputs{
			importPath:  outputPath,
			reportPath:  reportPath,
			sessionPath: cfg.SessionFile,
			sink:        sink,
			sheet:       sheetExport,
		}
		if err := outputs.write(ctx, lines, failures, stash, log); err != nil {
			return err
		}
	}

	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Documents:  %d\n", summary.total)
	fmt.Printf("Allocated:  %d (%d lines)\n", summary.allocated, len(lines))
	fmt.Printf("Failed:     %d\n", summary.failed)
	if summary.unknown > 0 {
		fmt.Printf("Unknown:    %d\n", summary.unknown)
	}
	if summary.unreadable > 0 {
		fmt.Printf("Unreadable: %d\n", summary.unreadable)
	}
	if !dryRun {
		if len(lines) > 0 {
			fmt.Printf("Import file: %s\n", outputPath)
		} else {
			fmt.Println("No invoices were successfully processed.")
		}
		if len(failures) > 0 {
			fmt.Printf("Failure report: %s\n", reportPath)
			fmt.Printf("Session: %s (use 'freightsplit fix list')\n", cfg.SessionFile)
		}
	}

	log.Info().
		Int("total", summary.total).
		Int("allocated", summary.allocated).
		Int("failed", summary.failed).
		Int("unknown", summary.unknown).
		Int("unreadable", summary.unreadable).
		Int("lines", len(lines)).
		Msg("Batch completed")

	return nil
}

// buildPipeline loads the reference data and wires the reconciliation pipeline around stash.
func buildPipeline(ctx context.Context, cfg *config.Config, registry *config.Registry, stash *reconciliation.Stash) (*reconciliation.Pipeline, error) {
	reader := reconciliation.NewDataReader(registry, reconciliation.OpenGoogleSheet)

	resolver, err := reader.ReadConsignment(ctx, stash.Consignment, cfg.ConsignmentSheetRange)
	if err != nil {
		return nil, fmt.Errorf("failed to read consignment summary: %w", err)
	}

	accounts, err := reader.ReadMapping(ctx, stash.Mapping, cfg.MappingSheetRange)
	if err != nil {
		return nil, fmt.Errorf("failed to read account map: %w", err)
	}

	allocator := allocation.NewAllocator(registry, accounts)
	return reconciliation.NewPipeline(resolver, allocator, stash), nil
}

func processDocument(ctx context.Context, processor invoice.InvoiceProcessor, pipeline *reconciliation.Pipeline, path string) reconciliation.Result {
	source := filepath.Base(path)

	f, err := os.Open(path)
	if err != nil {
		return pipeline.Unreadable(source, err)
	}
	defer f.Close()

	inv, err := processor.ProcessInvoice(ctx, source, f)
	if err != nil {
		return pipeline.Unreadable(source, err)
	}
	return pipeline.Process(*inv)
}

// batchOutputs names where a finished batch is written. sink is nil unless the lines
// are also exported to a sheet.
type batchOutputs struct {
	importPath  string
	reportPath  string
	sessionPath string
	sink        services.AllocationSink
	sheet       string
}

// write stores the import file, the failure report and the session. The report is always
// rewritten (or removed when nothing failed) so it matches the session.
func (o batchOutputs) write(ctx context.Context, lines []models.AllocationLine, failures []models.Failure,
	stash *reconciliation.Stash, log zerolog.Logger) error {
	if len(lines) > 0 {
		if err := export.WriteMYOBFile(o.importPath, lines); err != nil {
			return fmt.Errorf("failed to write import file: %w", err)
		}
		log.Info().Str("file", o.importPath).Int("lines", len(lines)).Msg("Import file written")
	}

	if err := export.WriteFailureReport(o.reportPath, failures); err != nil {
		return fmt.Errorf("failed to write failure report: %w", err)
	}

	if err := stash.Save(o.sessionPath); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	if o.sink != nil && len(lines) > 0 {
		if err := o.sink.WriteAllocationLines(ctx, o.sheet, lines); err != nil {
			return fmt.Errorf("failed to write to Google Sheet: %w", err)
		}
		fmt.Printf("Sheet: %s (%d rows)\n", o.sheet, len(lines))
	}

	return nil
}

func printResult(n, total int, res reconciliation.Result) {
	fmt.Printf("[%d/%d] %s - %s", n, total, res.Source, statusEmoji(res.Status))
	switch res.Status {
	case reconciliation.StatusAllocated:
		fmt.Printf(" (%s, %d lines)", res.Invoice.Vendor, len(res.Lines))
	case reconciliation.StatusFailed:
		fmt.Printf(" (%s)", res.Failure.Reason)
	case reconciliation.StatusUnknown:
		fmt.Print(" (vendor not recognized)")
	case reconciliation.StatusUnreadable:
		fmt.Printf(" (%v)", res.Err)
	}
	fmt.Println()
}

func printFailures(failures []models.Failure) {
	if len(failures) == 0 {
		return
	}
	fmt.Println("Failed invoices:")
	for _, f := range failures {
		fix := f.Fix
		if fix == "" {
			fix = "none"
		}
		fmt.Printf("  %s\n    %s (fix: %s)\n", f.Key, f.Reason, fix)
	}
	fmt.Println()
}

func statusEmoji(status reconciliation.Status) string {
	switch status {
	case reconciliation.StatusAllocated:
		return "✅"
	case reconciliation.StatusFailed:
		return "⚠️"
	case reconciliation.StatusUnreadable:
		return "❌"
	default:
		return "❓"
	}
}
