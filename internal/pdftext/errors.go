package pdftext

import (
	"errors"
	"fmt"
)

// Common extraction errors
var (
	// ErrDocumentTooLarge is returned when the PDF exceeds MaxDocumentSizeBytes.
	ErrDocumentTooLarge = errors.New("PDF file size exceeds the maximum limit (20MB)")

	// ErrInvalidPDF is returned when the provided data is not a readable PDF document.
	ErrInvalidPDF = errors.New("invalid or corrupted PDF document")

	// ErrEmptyDocument is returned when the PDF contains no text layer.
	ErrEmptyDocument = errors.New("document contains no readable text")
)

// ExtractionError wraps errors with the operation that failed.
type ExtractionError struct {
	// Op is the operation that failed (e.g., "ExtractText").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("pdftext: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("pdftext: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *ExtractionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapExtractionError wraps an error as an ExtractionError if it isn't already one.
func WrapExtractionError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var extractionErr *ExtractionError
	if errors.As(err, &extractionErr) {
		return err
	}

	return &ExtractionError{Op: op, Err: err, Details: details}
}
