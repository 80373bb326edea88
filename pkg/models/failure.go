package models

// Failure is one row of the failed-invoice report.
type Failure struct {
	Company       string `json:"company"`
	InvoiceNumber string `json:"invoice_number"`
	PurchaseOrder string `json:"purchase_order"`
	Reason        string `json:"reason"`
	Key           string `json:"key"`

	// Fix names the correction paths available, e.g. "split, trays"; empty when none apply.
	Fix string `json:"fix"`
}

// FailureColumns is the header row of the failed-invoice report.
var FailureColumns = []string{"Company", "Invoice No.", "PO No.", "Reason", "Key", "Fix"}

// Record returns the failure's fields in FailureColumns order.
func (f Failure) Record() []string {
	return []string{f.Company, f.InvoiceNumber, f.PurchaseOrder, f.Reason, f.Key, f.Fix}
}
