// Package allocation apportions an invoice's charges across growers.
//
// Every grower in the split must be mapped before any line is produced; an
// invoice is allocated completely or not at all. Lines are emitted per grower
// in split order and, within a grower, Logistics before Freight.
package allocation

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"freightsplit/internal/config"
	"freightsplit/internal/logger"
	"freightsplit/pkg/models"
	"freightsplit/pkg/services"
)

// ImportDateLayout is the date format written to the import file.
const ImportDateLayout = "02/01/2006"

// Request is one invoice ready for allocation.
type Request struct {
	Invoice models.Invoice
	Split   models.GrowerSplit
}

// Allocator turns a validated invoice and its grower split into import lines.
type Allocator struct {
	registry *config.Registry
	accounts services.AccountLookup
	log      zerolog.Logger
}

// NewAllocator creates an allocator booking against accounts.
func NewAllocator(registry *config.Registry, accounts services.AccountLookup) *Allocator {
	return &Allocator{
		registry: registry,
		accounts: accounts,
		log:      logger.WithComponent("allocation"),
	}
}

// Allocate produces one line per grower and non-zero charge. It returns an
// *UnmappedGrowersError when any split member lacks a mapping and ErrNoChargeLines
// when nothing was produced.
func (a *Allocator) Allocate(req Request) ([]models.AllocationLine, error) {
	inv := req.Invoice

	var missing []string
	mappings := make([]models.AccountMapping, len(req.Split.Shares))
	for i, sh := range req.Split.Shares {
		m, ok := a.accounts.Lookup(sh.Grower)
		if !ok {
			missing = append(missing, sh.Grower)
			continue
		}
		mappings[i] = m
	}
	if len(missing) > 0 {
		return nil, &UnmappedGrowersError{Growers: missing}
	}

	cardName := a.registry.CardName(inv.Vendor)
	date := inv.DateText
	if !inv.IssueDate.IsZero() {
		date = inv.IssueDate.Format(ImportDateLayout)
	}

	var lines []models.AllocationLine
	for i, sh := range req.Split.Shares {
		if sh.Share <= 0 {
			continue
		}
		m := mappings[i]
		share := decimal.NewFromFloat(sh.Share)

		for _, charge := range models.ChargeOrder {
			amount := inv.Charge(charge)
			if amount.IsZero() {
				continue
			}
			lines = append(lines, models.AllocationLine{
				CardName:      cardName,
				Date:          date,
				InvoiceNumber: inv.InvoiceNumber,
				Description:   a.describe(charge, amount, m.JobCode),
				Account:       m.AccountFor(charge),
				Amount:        amount.Mul(share).Round(2),
				Job:           m.JobCode,
				TaxCode:       a.registry.TaxCode,
				Comment:       inv.PurchaseOrder,
				Grower:        sh.Grower,
				Charge:        charge,
			})
		}
	}

	if len(lines) == 0 {
		return nil, ErrNoChargeLines
	}

	a.log.Debug().
		Str("invoice", inv.InvoiceNumber).
		Int("growers", len(req.Split.Shares)).
		Int("lines", len(lines)).
		Msg("Invoice allocated")

	return lines, nil
}

// describe builds the line description. The logistics tray figure is the whole
// charge divided by the per-tray rate and is informational only.
func (a *Allocator) describe(charge models.ChargeType, amount decimal.Decimal, job string) string {
	if charge == models.ChargeLogistics {
		trays := math.RoundToEven(amount.InexactFloat64() / a.registry.PerTrayRate)
		return fmt.Sprintf("%d x %s Logistics %s", int64(trays), a.registry.Crop, job)
	}
	return fmt.Sprintf("%s Freight %s", a.registry.Crop, job)
}
