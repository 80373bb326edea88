package consignment

import (
	"errors"
	"math"
	"testing"

	"freightsplit/internal/config"
	"freightsplit/internal/workbook"
)

func summaryTable() *workbook.Table {
	return &workbook.Table{
		Name:    "Consignment Summary",
		Headers: []string{"Consignor", "Supplier", "TBC Ref. (Po No)", "Trays", "Crop"},
		Rows: [][]string{
			{"Valley Fresh Sydney", "Grower A", "OZG12345", "50", "Blueberry"},
			{"Valley Fresh Melbourne", "Grower B", "ozg 12345", "40", "BLUEBERRY - Premium"},
			{"Valley Fresh Sydney", "Grower A", "PO-12345", "30", "blueberry"},
			{"Valley Fresh Sydney", "Grower C", "OZG12345", "25", "Raspberry"},
			{"Valley Fresh Brisbane", "Grower D", "OZG12345", "10", "Blueberry"},
			{"Valley Fresh Sydney Depot", "Grower E", "OZG12345", "10", "Blueberry"},
			{"Valley Fresh Sydney", "", "OZG12345", "5", "Blueberry"},
			{"Valley Fresh Sydney", "Grower F", "OZG12345", "n/a", "Blueberry"},
			{"Valley Fresh Sydney", "Grower G", "OZG99999", "70", "Blueberry"},
		},
	}
}

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	reg := config.DefaultRegistry()
	rows, err := FromTable(summaryTable(), reg.Columns)
	if err != nil {
		t.Fatalf("FromTable: %v", err)
	}
	return NewResolver(rows, reg)
}

func TestResolve(t *testing.T) {
	r := newResolver(t)

	split, total := r.Resolve("OZG12345", "FRESHMAX NATIONAL PTY LTD")
	if total != 120 {
		t.Fatalf("total = %v, want 120", total)
	}
	if got := split.Growers(); len(got) != 2 || got[0] != "Grower A" || got[1] != "Grower B" {
		t.Fatalf("growers = %v, want [Grower A Grower B]", got)
	}
	if a := split.Share("Grower A"); math.Abs(a-2.0/3.0) > 1e-9 {
		t.Errorf("share A = %v, want 0.667", a)
	}
	if b := split.Share("Grower B"); math.Abs(b-1.0/3.0) > 1e-9 {
		t.Errorf("share B = %v, want 0.333", b)
	}
	if s := split.TotalShare(); math.Abs(s-1) > 1e-9 {
		t.Errorf("shares sum to %v, want 1", s)
	}
}

func TestResolveOtherVendorConsignors(t *testing.T) {
	r := newResolver(t)

	split, total := r.Resolve("OZG12345", "De Luca Banana Marketing")
	if total != 10 || len(split.Shares) != 1 || split.Shares[0].Grower != "Grower D" {
		t.Fatalf("split = %+v total = %v", split, total)
	}
	if split.Shares[0].Share != 1 {
		t.Errorf("share = %v, want 1", split.Shares[0].Share)
	}
}

func TestResolveNoGrowers(t *testing.T) {
	r := newResolver(t)

	tests := []struct {
		name   string
		po     string
		vendor string
	}{
		{"unknown PO", "XYZ-1", "FRESHMAX NATIONAL PTY LTD"},
		{"empty PO", "", "FRESHMAX NATIONAL PTY LTD"},
		{"vendor without consignor rows", "OZG12345", "Bache Bros Pty Ltd"},
		{"unregistered vendor", "OZG12345", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split, total := r.Resolve(tt.po, tt.vendor)
			if !split.IsEmpty() || total != 0 {
				t.Fatalf("got split %+v total %v, want empty", split, total)
			}
		})
	}
}

func TestResolveNumericPOFromSheetValues(t *testing.T) {
	reg := config.DefaultRegistry()
	table, err := workbook.FromValues("Consignment Summary", [][]interface{}{
		{"Consignor", "Supplier", "TBC Ref. (Po No)", "Trays", "Crop"},
		{"Valley Fresh Sydney", "Grower A", float64(12345678), float64(80), "Blueberry"},
		{"Valley Fresh Melbourne", "Grower B", float64(12345678), float64(40), "Blueberry"},
	})
	if err != nil {
		t.Fatalf("FromValues: %v", err)
	}
	rows, err := FromTable(table, reg.Columns)
	if err != nil {
		t.Fatalf("FromTable: %v", err)
	}
	if rows[0].PO != "12345678" {
		t.Fatalf("po cell = %q, want 12345678", rows[0].PO)
	}

	split, total := NewResolver(rows, reg).Resolve("12345678", "FRESHMAX NATIONAL PTY LTD")
	if total != 120 || len(split.Shares) != 2 {
		t.Fatalf("split = %+v total = %v, want two growers over 120 trays", split, total)
	}
}

// A row without a supplier cannot be allocated, so its trays stay out of the total
// and the remaining shares still sum to one.
func TestResolveBlankSupplierExcludedFromTotal(t *testing.T) {
	reg := config.DefaultRegistry()
	table := &workbook.Table{
		Name:    "Consignment Summary",
		Headers: []string{"Consignor", "Supplier", "TBC Ref. (Po No)", "Trays", "Crop"},
		Rows: [][]string{
			{"Valley Fresh Sydney", "Grower A", "OZG777", "60", "Blueberry"},
			{"Valley Fresh Sydney", "  ", "OZG777", "20", "Blueberry"},
			{"Valley Fresh Sydney", "Grower B", "OZG777", "0", "Blueberry"},
		},
	}
	rows, err := FromTable(table, reg.Columns)
	if err != nil {
		t.Fatalf("FromTable: %v", err)
	}
	r := NewResolver(rows, reg)
	if r.Len() != 3 {
		t.Fatalf("Len = %d, want 3", r.Len())
	}

	split, total := r.Resolve("OZG777", "FRESHMAX NATIONAL PTY LTD")
	if total != 60 {
		t.Fatalf("total = %v, want 60", total)
	}
	if got := split.Growers(); len(got) != 1 || got[0] != "Grower A" {
		t.Fatalf("growers = %v, want [Grower A]", got)
	}
	if split.Shares[0].Share != 1 {
		t.Errorf("share = %v, want 1", split.Shares[0].Share)
	}
}

func TestMatchPO(t *testing.T) {
	tests := []struct {
		customer, cell string
		want           bool
	}{
		{"OZG12345", "ozg 12345", true},
		{"OZG-12345", "12345", true},
		{"OZG12345", "OZG12346", false},
		{"ABC", "abc", true},
		{"ABC", "XYZ", false},
		{"ABC", "", false},
	}

	for _, tt := range tests {
		if got := MatchPO(tt.customer, tt.cell); got != tt.want {
			t.Errorf("MatchPO(%q, %q) = %v, want %v", tt.customer, tt.cell, got, tt.want)
		}
	}
}

func TestFromTableMissingColumn(t *testing.T) {
	table := &workbook.Table{Name: "bad", Headers: []string{"Consignor", "Supplier"}}
	_, err := FromTable(table, config.DefaultRegistry().Columns)
	if !errors.Is(err, workbook.ErrMissingColumn) {
		t.Fatalf("err = %v, want ErrMissingColumn", err)
	}
}

func TestParseTrays(t *testing.T) {
	tests := map[string]float64{
		"80":    80,
		"1,200": 1200,
		" 40.5": 40.5,
		"":      0,
		"n/a":   0,
	}
	for in, want := range tests {
		if got := parseTrays(in); got != want {
			t.Errorf("parseTrays(%q) = %v, want %v", in, got, want)
		}
	}
}
