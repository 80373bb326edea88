// Package invoice turns extracted PDF text into invoice fields.
//
// Processing is strictly per vendor. The issuer is identified by its tax
// registration number (ABN) against the vendor registry and the matching
// layout parser reads the invoice number, customer PO, date, charge totals and
// tray count. Each layout parser is tuned to one printed layout and reads
// quantities and amounts from fixed positions in the numeric tail of a line;
// the rules are documented on each parser and are intentionally not shared.
//
// Documents from unregistered issuers are reported with vendor
// models.VendorUnknown and no fields. No generic fallback parsing is attempted.
package invoice

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"freightsplit/internal/config"
	"freightsplit/internal/logger"
	"freightsplit/internal/pdftext"
	"freightsplit/pkg/models"
)

// InvoiceProcessor defines the interface for reading invoices from PDF documents.
type InvoiceProcessor interface {
	// ProcessInvoice extracts the text of pdfData and parses it.
	// source labels the document in the returned invoice and in logs.
	ProcessInvoice(ctx context.Context, source string, pdfData io.Reader) (*models.Invoice, error)
}

// Processor implements InvoiceProcessor with a text extractor and the vendor registry.
type Processor struct {
	extractor pdftext.Extractor
	registry  *config.Registry
	log       zerolog.Logger
}

// NewProcessor creates a processor.
func NewProcessor(extractor pdftext.Extractor, registry *config.Registry) *Processor {
	return &Processor{
		extractor: extractor,
		registry:  registry,
		log:       logger.WithComponent("invoice"),
	}
}

// ProcessInvoice extracts and parses one document. Extraction failures are returned as
// errors; unrecognized layouts are not errors and yield a partially empty invoice.
func (p *Processor) ProcessInvoice(ctx context.Context, source string, pdfData io.Reader) (*models.Invoice, error) {
	const op = "ProcessInvoice"

	text, err := p.extractor.ExtractText(ctx, pdfData)
	if err != nil {
		return nil, WrapInvoiceProcessingError(op, err, source)
	}

	inv := ParseDocument(p.registry, text)
	inv.Source = source

	p.log.Info().
		Str("source", source).
		Str("vendor", inv.Vendor).
		Str("invoice", inv.InvoiceNumber).
		Str("po", inv.PurchaseOrder).
		Float64("trays", inv.Trays).
		Int("charges", len(inv.Charges)).
		Msg("Invoice parsed")

	return &inv, nil
}

// ParseDocument normalizes raw text, identifies the vendor and runs its parser.
func ParseDocument(registry *config.Registry, text string) models.Invoice {
	text = Normalize(text)

	vendor, ok := Identify(registry, text)
	if !ok {
		return models.Invoice{Vendor: models.VendorUnknown}
	}

	parser, err := ParserFor(vendor.Layout)
	if err != nil {
		return models.Invoice{Vendor: models.VendorUnknown}
	}

	inv := parser.Parse(text)
	inv.Vendor = vendor.Name
	return inv
}
