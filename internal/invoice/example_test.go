package invoice_test

import (
	"fmt"

	"freightsplit/internal/config"
	"freightsplit/internal/invoice"
	"freightsplit/pkg/models"
)

// ExampleParseDocument parses the text of a FreshMax invoice.
func ExampleParseDocument() {
	text := "FRESHMAX NATIONAL PTY LTD  ABN 61 050 197 343\n" +
		"TAX INVOICE 100234\n" +
		"Cust. Ord. No. OZG12345\n" +
		"Date 14/02/2025\n" +
		"LOGISTIC HANDLING 120 0.85 0.00 102.00\n" +
		"FREIGHT SYD-BNE 1 18.00 0.00 18.00\n"

	inv := invoice.ParseDocument(config.DefaultRegistry(), text)

	fmt.Println(inv.Vendor)
	fmt.Println(inv.InvoiceNumber, inv.PurchaseOrder, inv.IssueDate.Format("2006-01-02"))
	fmt.Println(inv.Charge(models.ChargeLogistics).StringFixed(2), inv.Charge(models.ChargeFreight).StringFixed(2), inv.Trays)
	// Output:
	// FRESHMAX NATIONAL PTY LTD
	// 100234 OZG12345 2025-02-14
	// 102.00 18.00 120
}
