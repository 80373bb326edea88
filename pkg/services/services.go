package services

import (
	"context"

	"freightsplit/pkg/models"
)

// AccountLookup resolves a grower to its ledger accounts and job code.
type AccountLookup interface {
	Lookup(grower string) (models.AccountMapping, bool)
}

// SplitResolver resolves the grower split recorded for a PO shipped under a vendor.
// An empty split with a zero total means no growers were found.
type SplitResolver interface {
	Resolve(po, vendor string) (models.GrowerSplit, float64)
}

// AllocationSink receives allocation lines for a remote sheet export.
type AllocationSink interface {
	WriteAllocationLines(ctx context.Context, sheetName string, lines []models.AllocationLine) error
}
