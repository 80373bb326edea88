package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"freightsplit/internal/invoice"
	"freightsplit/internal/logger"
	"freightsplit/internal/pdftext"
	"freightsplit/pkg/models"
)

var parseCmd = &cobra.Command{
	Use:   "parse [pdf-file]",
	Short: "Print the fields read from one invoice PDF",
	Long: `Extract the text of an invoice PDF, identify the vendor by ABN and print the
parsed fields as JSON: vendor, invoice number, customer PO, date, charge totals
and tray count. Fields the vendor's parser could not find are empty.

Use this to check how an invoice will be read before running a batch.`,
	Example: `  # Print parsed fields
  freightsplit parse invoice.pdf

  # Include the extracted text
  freightsplit parse invoice.pdf --text -o parsed.json`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

// ParseOutput is the JSON written by the parse command.
type ParseOutput struct {
	Invoice  models.Invoice `json:"invoice"`
	Text     string         `json:"text,omitempty"`
	Metadata ParseMetadata  `json:"metadata"`
}

// ParseMetadata describes the parsed file.
type ParseMetadata struct {
	FileName    string    `json:"file_name"`
	FileSize    int64     `json:"file_size_bytes"`
	ProcessedAt time.Time `json:"processed_at"`
	Recognized  bool      `json:"recognized"`
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	parseCmd.Flags().Bool("text", false, "Include the normalized document text")
	parseCmd.Flags().Int("timeout", 60, "Processing timeout in seconds")
}

func runParse(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("parse")

	outputPath, _ := cmd.Flags().GetString("output")
	includeText, _ := cmd.Flags().GetBool("text")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	pdfPath := args[0]

	_, registry, err := loadConfig(log)
	if err != nil {
		return err
	}

	fileInfo, err := validateInvoicePDF(pdfPath, log)
	if err != nil {
		return err
	}

	ctx, cancel := createCommandContext(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	pdfFile, err := os.Open(pdfPath)
	if err != nil {
		return fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer func() {
		if closeErr := pdfFile.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close PDF file")
		}
	}()

	text, err := pdftext.NewPDFExtractor().ExtractText(ctx, pdfFile)
	if err != nil {
		return handleExtractionError(err, log)
	}

	inv := invoice.ParseDocument(registry, text)
	inv.Source = filepath.Base(pdfPath)

	output := ParseOutput{
		Invoice: inv,
		Metadata: ParseMetadata{
			FileName:    inv.Source,
			FileSize:    fileInfo.Size(),
			ProcessedAt: time.Now(),
			Recognized:  !inv.IsUnknownVendor(),
		},
	}
	if includeText {
		output.Text = invoice.Normalize(text)
	}

	return outputJSON(output, outputPath, log)
}

// validateInvoicePDF checks that pdfPath is a readable, non-empty file within the size limit.
func validateInvoicePDF(pdfPath string, log zerolog.Logger) (os.FileInfo, error) {
	fileInfo, err := os.Stat(pdfPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("invoice PDF file not found: %s", pdfPath)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("permission denied accessing PDF file: %s", pdfPath)
		}
		return nil, fmt.Errorf("error accessing PDF file: %w", err)
	}

	if !fileInfo.Mode().IsRegular() {
		return nil, fmt.Errorf("path is not a regular file: %s", pdfPath)
	}

	if !strings.HasSuffix(strings.ToLower(pdfPath), ".pdf") {
		log.Warn().
			Str("file", pdfPath).
			Msg("File does not have .pdf extension")
	}

	if fileInfo.Size() == 0 {
		return nil, fmt.Errorf("PDF file is empty: %s", pdfPath)
	}

	if fileInfo.Size() > pdftext.MaxDocumentSizeBytes {
		return nil, fmt.Errorf("PDF file too large (%d bytes). Maximum size is %d bytes (20MB)",
			fileInfo.Size(), pdftext.MaxDocumentSizeBytes)
	}

	return fileInfo, nil
}

// handleExtractionError maps extraction failures to user-facing messages.
func handleExtractionError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Text extraction failed")

	switch {
	case errors.Is(err, pdftext.ErrInvalidPDF):
		return fmt.Errorf("invalid or corrupted PDF file. Please check the file integrity")
	case errors.Is(err, pdftext.ErrEmptyDocument):
		return fmt.Errorf("the PDF has no text layer; scanned invoices are not supported")
	case errors.Is(err, pdftext.ErrDocumentTooLarge):
		return fmt.Errorf("PDF file is too large (maximum 20MB)")
	default:
		return fmt.Errorf("text extraction failed: %w", err)
	}
}

// outputJSON writes v as indented JSON to outputPath, or to stdout when it is empty.
func outputJSON(v interface{}, outputPath string, log zerolog.Logger) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to create JSON output: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		log.Info().
			Str("output_file", outputPath).
			Int("bytes", len(jsonData)).
			Msg("Output written to file")
		return nil
	}

	if _, err := os.Stdout.Write(jsonData); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	fmt.Println()
	return nil
}
