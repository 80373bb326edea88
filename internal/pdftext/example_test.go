package pdftext_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"freightsplit/internal/pdftext"
)

// Example extracts the text layer of an invoice PDF.
func Example() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pdfFile, err := os.Open("sample_invoice.pdf")
	if err != nil {
		log.Fatalf("Failed to open PDF: %v", err)
	}
	defer pdfFile.Close()

	text, err := pdftext.NewPDFExtractor().ExtractText(ctx, pdfFile)
	if err != nil {
		log.Fatalf("Failed to extract text: %v", err)
	}

	fmt.Printf("Extracted text (%d characters):\n%s\n", len(text), text)
}
