package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"freightsplit/internal/config"
	"freightsplit/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "freightsplit",
	Short: "Split freight and logistics invoices across growers for MYOB import",
	Long: `freightsplit reads freight and logistics invoice PDFs from registered vendors,
matches each invoice's customer PO against the consignment summary, splits the
charges across the growers who shipped under that PO, and writes a tab-delimited
MYOB import file.

Invoices that fail a check are listed with a reason and kept in a session file so
they can be corrected with the fix commands and reprocessed.`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Debug().
			Str("version", version).
			Msg("freightsplit executed without a command")

		_ = cmd.Help()
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}

// loadConfig reads the environment configuration and the vendor registry it names.
func loadConfig(log zerolog.Logger) (*config.Config, *config.Registry, error) {
	cfg, err := config.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Invalid configuration, using defaults")
		cfg = config.Default()
	}

	registry, err := cfg.Registry()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load vendor registry: %w", err)
	}

	log.Debug().
		Int("vendors", len(registry.Vendors)).
		Str("registry", cfg.VendorRegistry).
		Msg("Vendor registry loaded")

	return cfg, registry, nil
}

// createCommandContext creates a context with timeout that is also canceled on interrupt.
func createCommandContext(timeout time.Duration, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

// findPDFFiles expands files and directories into the PDF files they contain, in walk order.
func findPDFFiles(paths []string) ([]string, error) {
	var pdfFiles []string

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("PDF path not found: %s", root)
		}
		if !info.IsDir() {
			pdfFiles = append(pdfFiles, root)
			continue
		}

		err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && strings.HasSuffix(strings.ToLower(info.Name()), ".pdf") {
				pdfFiles = append(pdfFiles, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return pdfFiles, nil
}

// importFileName returns the per-invoice import file name written by fixes.
func importFileName(invoiceNo string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, invoiceNo)
	return fmt.Sprintf("myob_import_%s.txt", safe)
}
