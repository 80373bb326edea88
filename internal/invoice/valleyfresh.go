package invoice

import (
	"strings"

	"freightsplit/internal/config"
	"freightsplit/pkg/models"
)

// valleyFreshParser reads the Valley Fresh print layout used by FreshMax National.
//
// Header: "TAX INVOICE <digits>", "Cust. Ord. No. <po>" (also "Cust Ord No" and
// "Cust Order No"),
// "Date dd/mm/yyyy".
//
// Charge lines carry at least four numbers; the fourth from the end is the quantity
// and the last is the line amount. FREIGHT lines add to Freight. LOGISTIC lines add to
// Logistics and their quantity is the tray count. FREIGHT is checked first.
type valleyFreshParser struct{}

func (valleyFreshParser) Layout() string { return config.LayoutValleyFresh }

func (valleyFreshParser) Parse(text string) models.Invoice {
	inv := models.Invoice{
		InvoiceNumber: labeledValue(text, `TAX INVOICE`, `\d+`),
		PurchaseOrder: labeledValue(text, `Cust\.?\s*Ord(?:er)?\.?\s*No\.?`, `[A-Za-z0-9\-]+`),
		DateText:      labeledValue(text, `Date`, `\d{1,2}/\d{1,2}/\d{4}`),
	}
	inv.IssueDate = parseDate(inv.DateText, "2/1/2006", "02/01/2006")

	for _, line := range lines(text) {
		nums := lineNumbers(line)
		if len(nums) < 4 {
			continue
		}
		qty, amt := fromEnd(nums, 4), fromEnd(nums, 1)
		up := strings.ToUpper(line)

		switch {
		case strings.Contains(up, "FREIGHT"):
			inv.AddCharge(models.ChargeFreight, amount(amt))
		case strings.Contains(up, "LOGISTIC"):
			inv.AddCharge(models.ChargeLogistics, amount(amt))
			inv.Trays += trayCount(qty)
		}
	}

	inv.DropZeroCharges()
	return inv
}
