package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"freightsplit/internal/config"
	"freightsplit/internal/export"
	"freightsplit/internal/logger"
	"freightsplit/internal/reconciliation"
)

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Correct and reprocess invoices that failed the last batch",
	Long: `Apply a manual correction to an invoice kept in the session file by the last
'process' run. Invoices are addressed by the key printed in the failure list,
"<company>|<invoice no>|<customer PO>".

Which correction applies depends on why the invoice failed:
  po     - the PO could not be read
  trays  - the invoice tray count could not be read, or differs from the consignment
  split  - no growers were found, the consignment total was zero, or trays differ

Every correction re-runs all remaining checks. An invoice that passes is written to
its own import file, myob_import_<invoice no>.txt in OUTPUT_DIR.`,
}

var fixListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices waiting for a fix",
	Args:  cobra.NoArgs,
	RunE:  runFixList,
}

var fixPOCmd = &cobra.Command{
	Use:     "po [key] [po]",
	Short:   "Reprocess an invoice with a corrected customer PO",
	Example: `  freightsplit fix po "FRESHMAX NATIONAL PTY LTD|100234|" OZG12345`,
	Args:    cobra.ExactArgs(2),
	RunE:    runFixPO,
}

var fixTraysCmd = &cobra.Command{
	Use:     "trays [key] [count]",
	Short:   "Reprocess an invoice with the tray count read off the PDF",
	Long:    `The tray count must equal the consignment summary total for the PO.`,
	Example: `  freightsplit fix trays "De Luca Banana Marketing|556677|OZG-777" 120`,
	Args:    cobra.ExactArgs(2),
	RunE:    runFixTrays,
}

var fixSplitCmd = &cobra.Command{
	Use:   "split [key]",
	Short: "Reprocess an invoice with a manual grower split",
	Long: `Give one --entry per grower as "Supplier Name = trays". The entered trays must add
up to the invoice tray count; when the invoice tray count was not read, pass it
with --pdf-trays.`,
	Example: `  freightsplit fix split "Bache Bros Pty Ltd|BB-1042|PO-77" \
    --entry "Emerald Greenhouse Supplies Pty Ltd = 120" --entry "Another Supplier = 80"`,
	Args: cobra.ExactArgs(1),
	RunE: runFixSplit,
}

func init() {
	rootCmd.AddCommand(fixCmd)
	fixCmd.AddCommand(fixListCmd, fixPOCmd, fixTraysCmd, fixSplitCmd)

	fixSplitCmd.Flags().StringArray("entry", nil, `Grower tray count as "Supplier Name = trays" (repeatable) [REQUIRED]`)
	fixSplitCmd.Flags().Int64("pdf-trays", 0, "Invoice tray count, when it could not be read from the PDF")
	fixSplitCmd.MarkFlagRequired("entry")

	for _, c := range []*cobra.Command{fixPOCmd, fixTraysCmd, fixSplitCmd} {
		c.Flags().Int("timeout", 300, "Timeout in seconds for reading the reference spreadsheets")
	}
}

// fixSession is a loaded session with its pipeline rebuilt from the batch's reference data.
type fixSession struct {
	cfg   *config.Config
	stash *reconciliation.Stash
	fixer *reconciliation.Fixer
	log   zerolog.Logger
}

func openFixSession(cmd *cobra.Command, log zerolog.Logger) (*fixSession, error) {
	cfg, registry, err := loadConfig(log)
	if err != nil {
		return nil, err
	}

	stash, err := reconciliation.LoadStash(cfg.SessionFile)
	if err != nil {
		return nil, err
	}

	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	ctx, cancel := createCommandContext(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	pipeline, err := buildPipeline(ctx, cfg, registry, stash)
	if err != nil {
		return nil, err
	}

	return &fixSession{
		cfg:   cfg,
		stash: stash,
		fixer: reconciliation.NewFixer(pipeline),
		log:   logger.WithBatchID(log, stash.BatchID),
	}, nil
}

// finish saves the session and writes the import file of an allocated invoice.
func (s *fixSession) finish(res reconciliation.Result) error {
	if err := s.stash.Save(s.cfg.SessionFile); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	if res.Status != reconciliation.StatusAllocated {
		fmt.Printf("Still failing: %s\n", res.Failure.Reason)
		fmt.Printf("Key: %s\n", res.Failure.Key)
		if fix := res.Failure.Failure().Fix; fix != "" {
			fmt.Printf("Fix: %s\n", fix)
		}
		return nil
	}

	path := filepath.Join(s.cfg.OutputDir, importFileName(res.Invoice.InvoiceNumber))
	if err := export.WriteMYOBFile(path, res.Lines); err != nil {
		return fmt.Errorf("failed to write import file: %w", err)
	}

	s.log.Info().
		Str("invoice", res.Invoice.InvoiceNumber).
		Str("file", path).
		Int("lines", len(res.Lines)).
		Msg("Reprocessed invoice written")

	fmt.Printf("✅ Reprocessed invoice %s: %d lines\n", res.Invoice.InvoiceNumber, len(res.Lines))
	fmt.Printf("Import file: %s\n", path)
	return nil
}

func runFixList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("fix")

	cfg, _, err := loadConfig(log)
	if err != nil {
		return err
	}
	stash, err := reconciliation.LoadStash(cfg.SessionFile)
	if err != nil {
		return err
	}

	if stash.Len() == 0 {
		fmt.Println("No failed invoices in the current session.")
		return nil
	}

	fmt.Printf("Batch %s (%s)\n\n", stash.BatchID, stash.CreatedAt.Local().Format("02/01/2006 15:04"))
	for _, p := range stash.Payloads {
		f := p.Failure()
		fix := f.Fix
		if fix == "" {
			fix = "none"
		}
		fmt.Printf("%s | Inv %s | PO %s\n", f.Company, f.InvoiceNumber, f.PurchaseOrder)
		fmt.Printf("  Reason: %s\n  Key:    %s\n  Fix:    %s\n\n", f.Reason, f.Key, fix)
	}
	return nil
}

func runFixPO(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("fix")

	session, err := openFixSession(cmd, log)
	if err != nil {
		return err
	}

	res, err := session.fixer.FixPO(args[0], args[1])
	if err != nil {
		return err
	}
	return session.finish(res)
}

func runFixTrays(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("fix")

	trays, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || trays <= 0 {
		return fmt.Errorf("tray count must be a positive whole number, got %q", args[1])
	}

	session, err := openFixSession(cmd, log)
	if err != nil {
		return err
	}

	res, err := session.fixer.FixTrays(args[0], trays)
	if err != nil {
		return err
	}
	return session.finish(res)
}

func runFixSplit(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("fix")

	entries, _ := cmd.Flags().GetStringArray("entry")
	pdfTrays, _ := cmd.Flags().GetInt64("pdf-trays")

	session, err := openFixSession(cmd, log)
	if err != nil {
		return err
	}

	res, err := session.fixer.FixSplit(args[0], reconciliation.ParseSplitEntries(entries), pdfTrays)
	if err != nil {
		return err
	}
	return session.finish(res)
}
