package models

import (
	"strings"
)

// GrowerTrays is a raw tray count attributed to one grower.
type GrowerTrays struct {
	Grower string  `json:"grower"`
	Trays  float64 `json:"trays"`
}

// GrowerShare is one grower's fractional share of the trays shipped under a PO.
type GrowerShare struct {
	Grower string  `json:"grower"`
	Trays  float64 `json:"trays"`
	Share  float64 `json:"share"`
}

// GrowerSplit apportions an invoice across growers. Shares keep the order in which
// growers first appeared so allocation output is deterministic.
type GrowerSplit struct {
	Shares []GrowerShare `json:"shares"`
}

// SplitFromTrays accumulates tray counts per grower and converts them to shares of the
// total. Entries with a blank grower or a non-positive tray count are ignored. The
// returned total is the sum of the accepted tray counts.
func SplitFromTrays(entries []GrowerTrays) (GrowerSplit, float64) {
	var order []string
	var total float64
	trays := make(map[string]float64)
	for _, e := range entries {
		name := strings.TrimSpace(e.Grower)
		if name == "" || e.Trays <= 0 {
			continue
		}
		if _, seen := trays[name]; !seen {
			order = append(order, name)
		}
		trays[name] += e.Trays
		total += e.Trays
	}
	if total <= 0 {
		return GrowerSplit{}, 0
	}

	split := GrowerSplit{Shares: make([]GrowerShare, 0, len(order))}
	for _, name := range order {
		split.Shares = append(split.Shares, GrowerShare{
			Grower: name,
			Trays:  trays[name],
			Share:  trays[name] / total,
		})
	}
	return split, total
}

// IsEmpty reports whether the split names no grower.
func (s GrowerSplit) IsEmpty() bool {
	return len(s.Shares) == 0
}

// Growers returns the grower names in split order.
func (s GrowerSplit) Growers() []string {
	names := make([]string, 0, len(s.Shares))
	for _, sh := range s.Shares {
		names = append(names, sh.Grower)
	}
	return names
}

// Share returns the fraction assigned to grower, zero when absent.
func (s GrowerSplit) Share(grower string) float64 {
	for _, sh := range s.Shares {
		if sh.Grower == grower {
			return sh.Share
		}
	}
	return 0
}

// TotalShare is the sum of all shares; 1 for any non-empty computed split.
func (s GrowerSplit) TotalShare() float64 {
	var sum float64
	for _, sh := range s.Shares {
		sum += sh.Share
	}
	return sum
}
