package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// VendorUnknown is the vendor name reported for documents whose issuer is not in the registry.
const VendorUnknown = "Unknown"

// ChargeType is the kind of charge an invoice line contributes to.
type ChargeType string

const (
	ChargeLogistics ChargeType = "Logistics"
	ChargeFreight   ChargeType = "Freight"
)

// ChargeOrder is the order charge types are allocated and exported in.
var ChargeOrder = []ChargeType{ChargeLogistics, ChargeFreight}

// Invoice holds the fields read from one freight/logistics invoice PDF.
type Invoice struct {
	// Source identification
	Source string `json:"source"` // File name or other label of the originating document
	Vendor string `json:"vendor"` // Registered vendor name, or VendorUnknown

	// Header fields; empty when the parser could not find them
	InvoiceNumber string    `json:"invoice_number"`
	PurchaseOrder string    `json:"purchase_order"`
	DateText      string    `json:"date_text"`            // Date exactly as printed
	IssueDate     time.Time `json:"issue_date,omitempty"` // Parsed DateText, zero when unparseable

	// Charge totals keyed by type. Only non-zero charges are present.
	Charges map[ChargeType]decimal.Decimal `json:"charges"`

	// Trays is the total tray count printed on the invoice; zero means it could not be read.
	Trays float64 `json:"trays"`
}

// IsUnknownVendor reports whether the document issuer was not recognized.
func (inv Invoice) IsUnknownVendor() bool {
	return inv.Vendor == "" || inv.Vendor == VendorUnknown
}

// Charge returns the total for a charge type, zero when absent.
func (inv Invoice) Charge(t ChargeType) decimal.Decimal {
	if inv.Charges == nil {
		return decimal.Zero
	}
	return inv.Charges[t]
}

// HasCharges reports whether any charge line was recognized.
func (inv Invoice) HasCharges() bool {
	for _, amount := range inv.Charges {
		if !amount.IsZero() {
			return true
		}
	}
	return false
}

// AddCharge accumulates amount into the charge total for t.
func (inv *Invoice) AddCharge(t ChargeType, amount decimal.Decimal) {
	if inv.Charges == nil {
		inv.Charges = make(map[ChargeType]decimal.Decimal)
	}
	inv.Charges[t] = inv.Charges[t].Add(amount)
}

// DropZeroCharges removes charge types whose total is zero.
func (inv *Invoice) DropZeroCharges() {
	for t, amount := range inv.Charges {
		if amount.IsZero() {
			delete(inv.Charges, t)
		}
	}
}

// Clone returns a deep copy so corrections never alter the parsed original.
func (inv Invoice) Clone() Invoice {
	out := inv
	if inv.Charges != nil {
		out.Charges = make(map[ChargeType]decimal.Decimal, len(inv.Charges))
		for t, amount := range inv.Charges {
			out.Charges[t] = amount
		}
	}
	return out
}

// WithPurchaseOrder returns a corrected copy carrying po.
func (inv Invoice) WithPurchaseOrder(po string) Invoice {
	out := inv.Clone()
	out.PurchaseOrder = po
	return out
}

// WithTrays returns a corrected copy carrying the given tray count.
func (inv Invoice) WithTrays(trays float64) Invoice {
	out := inv.Clone()
	out.Trays = trays
	return out
}
