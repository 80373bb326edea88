package allocation

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"freightsplit/internal/config"
	"freightsplit/internal/mapping"
	"freightsplit/pkg/models"
)

func testAllocator() *Allocator {
	accounts := mapping.New([]models.AccountMapping{
		{Supplier: "Grower A", LogisticsAccount: "6-1100", FreightAccount: "6-1200", JobCode: "JA"},
		{Supplier: "Grower B", LogisticsAccount: "6-2100", FreightAccount: "6-2200", JobCode: "JB"},
	})
	return NewAllocator(config.DefaultRegistry(), accounts)
}

func testInvoice() models.Invoice {
	inv := models.Invoice{
		Vendor:        "De Luca Banana Marketing",
		InvoiceNumber: "556677",
		PurchaseOrder: "OZG12345",
		DateText:      "3/2/2025",
		IssueDate:     time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),
		Trays:         120,
	}
	inv.AddCharge(models.ChargeFreight, decimal.NewFromInt(50))
	inv.AddCharge(models.ChargeLogistics, decimal.NewFromInt(300))
	return inv
}

func testSplit() models.GrowerSplit {
	split, _ := models.SplitFromTrays([]models.GrowerTrays{
		{Grower: "Grower A", Trays: 80},
		{Grower: "Grower B", Trays: 40},
	})
	return split
}

func TestAllocate(t *testing.T) {
	lines, err := testAllocator().Allocate(Request{Invoice: testInvoice(), Split: testSplit()})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	want := []struct {
		grower, account, amount, description string
	}{
		{"Grower A", "6-1100", "200.00", "353 x Blueberry Logistics JA"},
		{"Grower A", "6-1200", "33.33", "Blueberry Freight JA"},
		{"Grower B", "6-2100", "100.00", "353 x Blueberry Logistics JB"},
		{"Grower B", "6-2200", "16.67", "Blueberry Freight JB"},
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(lines), len(want))
	}
	for i, w := range want {
		l := lines[i]
		if l.Grower != w.grower || l.Account != w.account || l.Amount.StringFixed(2) != w.amount || l.Description != w.description {
			t.Errorf("line %d = %+v, want %+v", i, l, w)
		}
		if l.CardName != "De Luca Banana Marketing Pty Ltd" {
			t.Errorf("line %d card = %q", i, l.CardName)
		}
		if l.Date != "03/02/2025" || l.TaxCode != "GST" || l.Comment != "OZG12345" || l.InvoiceNumber != "556677" {
			t.Errorf("line %d header fields = %+v", i, l)
		}
	}
}

func TestAllocateSumsWithinRounding(t *testing.T) {
	inv := testInvoice()
	inv.Charges = nil
	inv.AddCharge(models.ChargeLogistics, decimal.RequireFromString("100.01"))
	split, _ := models.SplitFromTrays([]models.GrowerTrays{
		{Grower: "Grower A", Trays: 1},
		{Grower: "Grower B", Trays: 2},
	})

	lines, err := testAllocator().Allocate(Request{Invoice: inv, Split: split})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Amount)
	}
	diff := sum.Sub(inv.Charge(models.ChargeLogistics)).Abs()
	limit := decimal.NewFromFloat(0.01).Mul(decimal.NewFromInt(int64(len(split.Shares))))
	if diff.GreaterThan(limit) {
		t.Fatalf("allocated %s for charge 100.01, off by %s", sum, diff)
	}
}

func TestAllocateUnmappedGrowers(t *testing.T) {
	split, _ := models.SplitFromTrays([]models.GrowerTrays{
		{Grower: "Grower X", Trays: 10},
		{Grower: "Grower A", Trays: 10},
		{Grower: "Grower Y", Trays: 10},
	})

	lines, err := testAllocator().Allocate(Request{Invoice: testInvoice(), Split: split})
	if len(lines) != 0 {
		t.Fatalf("expected no lines, got %d", len(lines))
	}

	var unmapped *UnmappedGrowersError
	if !errors.As(err, &unmapped) {
		t.Fatalf("err = %v, want *UnmappedGrowersError", err)
	}
	if want := []string{"Grower X", "Grower Y"}; !reflect.DeepEqual(unmapped.Growers, want) {
		t.Errorf("unmapped = %v, want %v", unmapped.Growers, want)
	}
}

func TestAllocateNoCharges(t *testing.T) {
	inv := testInvoice()
	inv.Charges = nil

	_, err := testAllocator().Allocate(Request{Invoice: inv, Split: testSplit()})
	if !errors.Is(err, ErrNoChargeLines) {
		t.Fatalf("err = %v, want ErrNoChargeLines", err)
	}
}

func TestAllocateDeterministic(t *testing.T) {
	a := testAllocator()
	req := Request{Invoice: testInvoice(), Split: testSplit()}

	first, err := a.Allocate(req)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := a.Allocate(req)
		if err != nil {
			t.Fatalf("Allocate: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\n%+v\n%+v", i, first, again)
		}
	}
}

func TestAllocateUnparsedDateKeepsText(t *testing.T) {
	inv := testInvoice()
	inv.IssueDate = time.Time{}
	inv.DateText = "Feb 2025"

	lines, err := testAllocator().Allocate(Request{Invoice: inv, Split: testSplit()})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if lines[0].Date != "Feb 2025" {
		t.Errorf("date = %q, want raw text", lines[0].Date)
	}
}
