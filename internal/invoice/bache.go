package invoice

import (
	"strings"

	"freightsplit/internal/config"
	"freightsplit/pkg/models"
)

// bacheParser reads Bache Bros invoices.
//
// Header: "Invoice Number ABC-123", "Invoice Date 5 Mar 2025", "Reference <po>".
//
// Lines mentioning both BERRY and BLUE with at least six numbers: the third number
// from the start is the tray count and the last is the logistics amount. FREIGHT
// lines with any number: the last is the freight amount.
type bacheParser struct{}

func (bacheParser) Layout() string { return config.LayoutBache }

func (bacheParser) Parse(text string) models.Invoice {
	inv := models.Invoice{
		InvoiceNumber: labeledValue(text, `Invoice Number`, `[A-Z]{2,5}-\d+`),
		DateText:      labeledValue(text, `Invoice Date`, `\d{1,2}\s+[A-Za-z]{3}\s+\d{4}`),
		PurchaseOrder: labeledValue(text, `Reference`, `[A-Za-z0-9\-]+`),
	}
	inv.IssueDate = parseDate(strings.Join(strings.Fields(inv.DateText), " "), "2 Jan 2006", "02 Jan 2006")

	for _, line := range lines(text) {
		nums := lineNumbers(line)
		up := strings.ToUpper(line)

		switch {
		case strings.Contains(up, "BERRY") && strings.Contains(up, "BLUE") && len(nums) >= 6:
			inv.Trays += trayCount(nums[2])
			inv.AddCharge(models.ChargeLogistics, amount(fromEnd(nums, 1)))
		case strings.Contains(up, "FREIGHT") && len(nums) > 0:
			inv.AddCharge(models.ChargeFreight, amount(fromEnd(nums, 1)))
		}
	}

	inv.DropZeroCharges()
	return inv
}
