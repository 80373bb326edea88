package invoice

import (
	"errors"
	"fmt"
)

// Common invoice processing errors
var (
	// ErrUnknownLayout is returned when a vendor names a layout without a parser.
	ErrUnknownLayout = errors.New("unknown invoice layout")
)

// InvoiceProcessingError wraps errors with additional context about invoice processing failures.
type InvoiceProcessingError struct {
	// Op is the operation that failed (e.g., "ProcessInvoice").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure, usually the document name.
	Details string
}

// Error implements the error interface.
func (e *InvoiceProcessingError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("invoice: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("invoice: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *InvoiceProcessingError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *InvoiceProcessingError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapInvoiceProcessingError wraps an error as an InvoiceProcessingError if it isn't already one.
func WrapInvoiceProcessingError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var invoiceErr *InvoiceProcessingError
	if errors.As(err, &invoiceErr) {
		return err // Already wrapped
	}

	return &InvoiceProcessingError{Op: op, Err: err, Details: details}
}
