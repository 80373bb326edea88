package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"

	"freightsplit/internal/logger"
)

// MaxDocumentSizeBytes is the largest PDF accepted for extraction (20MB).
const MaxDocumentSizeBytes = 20 * 1024 * 1024

// PDFExtractor implements Extractor on top of github.com/ledongthuc/pdf.
type PDFExtractor struct {
	log zerolog.Logger
}

// NewPDFExtractor creates an extractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{log: logger.WithComponent("pdftext")}
}

// ExtractText reads the whole document into memory and returns its text.
func (e *PDFExtractor) ExtractText(ctx context.Context, pdfData io.Reader) (text string, err error) {
	const op = "ExtractText"

	data, err := io.ReadAll(io.LimitReader(pdfData, MaxDocumentSizeBytes+1))
	if err != nil {
		return "", WrapExtractionError(op, err, "failed to read PDF data")
	}
	if len(data) > MaxDocumentSizeBytes {
		return "", WrapExtractionError(op, ErrDocumentTooLarge, fmt.Sprintf("%d bytes", len(data)))
	}
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF-")) {
		return "", WrapExtractionError(op, ErrInvalidPDF, "missing %PDF- header")
	}

	// The pdf package panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = WrapExtractionError(op, ErrInvalidPDF, fmt.Sprint(r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", WrapExtractionError(op, ErrInvalidPDF, err.Error())
	}

	var b strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", WrapExtractionError(op, err, "canceled")
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", WrapExtractionError(op, err, fmt.Sprintf("page %d", i))
		}
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				words = append(words, word.S)
			}
			b.WriteString(strings.Join(words, " "))
			b.WriteString("\n")
		}
	}

	text = b.String()
	if strings.TrimSpace(text) == "" {
		return "", WrapExtractionError(op, ErrEmptyDocument, "")
	}

	e.log.Debug().
		Int("pages", numPages).
		Int("characters", len(text)).
		Msg("Extracted PDF text")

	return text, nil
}
