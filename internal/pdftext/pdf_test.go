package pdftext

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestExtractTextRejectsInput(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"not a pdf", []byte("PK\x03\x04 spreadsheet"), ErrInvalidPDF},
		{"empty", nil, ErrInvalidPDF},
		{"truncated pdf", []byte("%PDF-1.4\n1 0 obj\n"), ErrInvalidPDF},
		{"too large", append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte{' '}, MaxDocumentSizeBytes)...), ErrDocumentTooLarge},
	}

	e := NewPDFExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.ExtractText(context.Background(), bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}

			var extractionErr *ExtractionError
			if !errors.As(err, &extractionErr) || extractionErr.Op != "ExtractText" {
				t.Errorf("err = %#v, want *ExtractionError from ExtractText", err)
			}
		})
	}
}

func TestWrapExtractionError(t *testing.T) {
	if WrapExtractionError("op", nil, "") != nil {
		t.Fatal("nil error should stay nil")
	}

	inner := WrapExtractionError("inner", ErrEmptyDocument, "")
	if outer := WrapExtractionError("outer", inner, "x"); outer != inner {
		t.Errorf("already wrapped error was wrapped again: %v", outer)
	}
	if !strings.Contains(inner.Error(), "inner") {
		t.Errorf("message = %q", inner.Error())
	}
}
