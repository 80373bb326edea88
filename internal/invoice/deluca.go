package invoice

import (
	"strings"

	"freightsplit/internal/config"
	"freightsplit/pkg/models"
)

// deLucaParser reads De Luca Banana Marketing invoices.
//
// Header: "Tax Invoice No <digits>", "Order No <po>", "Date dd/mm/yyyy".
//
// BLUEBERRIES lines with at least five numbers: fifth from the end is the tray count,
// third from the end is the logistics amount. TSPT or FREIGHT lines with at least five
// numbers: third from the end is the freight amount.
type deLucaParser struct{}

func (deLucaParser) Layout() string { return config.LayoutDeLuca }

func (deLucaParser) Parse(text string) models.Invoice {
	inv := models.Invoice{
		InvoiceNumber: labeledValue(text, `Tax Invoice No`, `\d+`),
		PurchaseOrder: labeledValue(text, `Order\s*No`, `[A-Za-z0-9\-]+`),
		DateText:      labeledValue(text, `Date`, `\d{1,2}/\d{1,2}/\d{4}`),
	}
	inv.IssueDate = parseDate(inv.DateText, "2/1/2006", "02/01/2006")

	for _, line := range lines(text) {
		nums := lineNumbers(line)
		if len(nums) < 5 {
			continue
		}
		up := strings.ToUpper(line)

		switch {
		case strings.Contains(up, "BLUEBERRIES"):
			inv.Trays += trayCount(fromEnd(nums, 5))
			inv.AddCharge(models.ChargeLogistics, amount(fromEnd(nums, 3)))
		case strings.Contains(up, "TSPT"), strings.Contains(up, "FREIGHT"):
			inv.AddCharge(models.ChargeFreight, amount(fromEnd(nums, 3)))
		}
	}

	inv.DropZeroCharges()
	return inv
}
