package reconciliation

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"freightsplit/internal/allocation"
	"freightsplit/pkg/models"
	"freightsplit/pkg/services"
)

// State carries one invoice through the gate. Each stage may fill in what later
// stages read.
type State struct {
	Invoice    models.Invoice
	Split      models.GrowerSplit
	SheetTrays float64

	Lines    []models.AllocationLine
	allocErr error
}

// Check is one gate stage: an optional step that computes the stage's input,
// a predicate, and the reason reported when the predicate fails.
type Check struct {
	Stage   Stage
	Prepare func(*State)
	Pass    func(*State) bool
	Reason  func(*State) string
}

// Gate is the ordered list of checks an invoice must clear to be allocated.
type Gate []Check

// NewGate builds the standard gate. Growers resolves the split from the
// consignment summary; Mapping runs the allocator whose outcome Charges also reads.
func NewGate(resolver services.SplitResolver, allocator *allocation.Allocator) Gate {
	return Gate{
		{
			Stage: StagePO,
			Pass:  func(s *State) bool { return strings.TrimSpace(s.Invoice.PurchaseOrder) != "" },
			Reason: func(s *State) string {
				return fmt.Sprintf("Could not read PO from %s", s.Invoice.Source)
			},
		},
		{
			Stage: StageGrowers,
			Prepare: func(s *State) {
				s.Split, s.SheetTrays = resolver.Resolve(s.Invoice.PurchaseOrder, s.Invoice.Vendor)
			},
			Pass: func(s *State) bool { return !s.Split.IsEmpty() },
			Reason: func(s *State) string {
				return fmt.Sprintf("No growers found in Consignment Summary for PO %s", s.Invoice.PurchaseOrder)
			},
		},
		{
			Stage:  StagePDFTrays,
			Pass:   func(s *State) bool { return s.Invoice.Trays > 0 },
			Reason: func(*State) string { return "Could not determine tray count on the invoice" },
		},
		{
			Stage:  StageSheetTrays,
			Pass:   func(s *State) bool { return s.SheetTrays > 0 },
			Reason: func(*State) string { return "Consignment Summary tray total is missing/zero" },
		},
		{
			Stage: StageTrayMatch,
			Pass:  func(s *State) bool { return RoundTrays(s.Invoice.Trays) == RoundTrays(s.SheetTrays) },
			Reason: func(s *State) string {
				return fmt.Sprintf("Tray mismatch: Invoice has %d, Consignment has %d",
					RoundTrays(s.Invoice.Trays), RoundTrays(s.SheetTrays))
			},
		},
		{
			Stage: StageMapping,
			Prepare: func(s *State) {
				s.Lines, s.allocErr = allocator.Allocate(allocation.Request{Invoice: s.Invoice, Split: s.Split})
			},
			Pass: func(s *State) bool {
				var unmapped *allocation.UnmappedGrowersError
				return !errors.As(s.allocErr, &unmapped)
			},
			Reason: func(s *State) string {
				var unmapped *allocation.UnmappedGrowersError
				errors.As(s.allocErr, &unmapped)
				return "No account mapping found for growers: " + strings.Join(unmapped.Growers, ", ")
			},
		},
		{
			Stage:  StageCharges,
			Pass:   func(s *State) bool { return s.allocErr == nil && len(s.Lines) > 0 },
			Reason: func(*State) string { return "No charge lines found (Logistics/Freight) on invoice" },
		},
	}
}

// Run evaluates the checks from stage from onward and returns the first failing one.
func (g Gate) Run(s *State, from Stage) (Check, bool) {
	for _, c := range g {
		if c.Stage < from {
			continue
		}
		if c.Prepare != nil {
			c.Prepare(s)
		}
		if !c.Pass(s) {
			return c, false
		}
	}
	return Check{}, true
}

// RoundTrays rounds a tray count to the nearest integer, halves to even.
func RoundTrays(trays float64) int64 {
	return int64(math.RoundToEven(trays))
}
