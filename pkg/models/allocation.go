package models

import "github.com/shopspring/decimal"

// AccountMapping holds the ledger codes a grower's charges are booked against.
type AccountMapping struct {
	Supplier         string `json:"supplier"`
	LogisticsAccount string `json:"logistics_account"`
	FreightAccount   string `json:"freight_account"`
	JobCode          string `json:"job_code"`
}

// AccountFor returns the ledger account used for a charge type.
func (m AccountMapping) AccountFor(t ChargeType) string {
	if t == ChargeLogistics {
		return m.LogisticsAccount
	}
	return m.FreightAccount
}

// AllocationLine is one row of the accounting import file.
type AllocationLine struct {
	CardName      string          `json:"card_name"`      // Co./Last Name
	Date          string          `json:"date"`           // Date
	InvoiceNumber string          `json:"invoice_number"` // Supplier Invoice No.
	Description   string          `json:"description"`    // Description
	Account       string          `json:"account"`        // Account No.
	Amount        decimal.Decimal `json:"amount"`         // Amount
	Job           string          `json:"job"`            // Job
	TaxCode       string          `json:"tax_code"`       // Tax Code
	Comment       string          `json:"comment"`        // Comment (customer PO)

	Grower string     `json:"grower"` // not exported; kept for reporting
	Charge ChargeType `json:"charge"`
}

// ImportColumns is the header row of the accounting import file, in record order.
var ImportColumns = []string{
	"Co./Last Name",
	"Date",
	"Supplier Invoice No.",
	"Description",
	"Account No.",
	"Amount",
	"Job",
	"Tax Code",
	"Comment",
}

// Record returns the line's import fields in ImportColumns order. Amounts carry two decimals.
func (l AllocationLine) Record() []string {
	return []string{
		l.CardName,
		l.Date,
		l.InvoiceNumber,
		l.Description,
		l.Account,
		l.Amount.StringFixed(2),
		l.Job,
		l.TaxCode,
		l.Comment,
	}
}
