// Package pdftext extracts plain text from invoice PDFs.
//
// Text is rebuilt row by row from the PDF content streams: words on the same
// baseline are joined with a single space, rows are separated by newlines and
// pages follow each other in document order. No OCR is attempted, so scanned
// invoices without a text layer come back as ErrEmptyDocument.
//
// Limitations:
//   - Maximum document size: 20MB
//   - Encrypted PDFs are not supported
package pdftext

import (
	"context"
	"io"
)

// Extractor defines the interface for PDF text extraction.
type Extractor interface {
	// ExtractText returns the text of every page, concatenated in page order.
	ExtractText(ctx context.Context, pdfData io.Reader) (string, error)
}
