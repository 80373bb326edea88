// Package mapping looks up the ledger accounts and job code booked for each grower.
package mapping

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"freightsplit/internal/config"
	"freightsplit/internal/logger"
	"freightsplit/internal/workbook"
	"freightsplit/pkg/models"
)

// Key folds a grower name for lookup: Unicode NFKC, case folded, trimmed, with inner
// whitespace collapsed to single spaces.
func Key(name string) string {
	folded := cases.Fold().String(norm.NFKC.String(name))
	return strings.Join(strings.Fields(folded), " ")
}

// Table is a read-only account map keyed by folded grower name.
type Table struct {
	entries map[string]models.AccountMapping
	log     zerolog.Logger
}

// New builds a table from mappings. When two entries fold to the same key the first one is kept.
func New(mappings []models.AccountMapping) *Table {
	t := &Table{
		entries: make(map[string]models.AccountMapping, len(mappings)),
		log:     logger.WithComponent("mapping"),
	}
	for _, m := range mappings {
		key := Key(m.Supplier)
		if key == "" {
			continue
		}
		if first, dup := t.entries[key]; dup {
			t.log.Warn().
				Str("supplier", m.Supplier).
				Str("kept", first.Supplier).
				Msg("Duplicate grower in account map, keeping first entry")
			continue
		}
		t.entries[key] = m
	}
	return t
}

// FromTable reads the account map using the registry's column names.
func FromTable(wt *workbook.Table, cols config.Columns) (*Table, error) {
	const op = "mapping.FromTable"

	idx, err := wt.Require(cols.MappingSupplier, cols.LogisticsAccount, cols.FreightAccount, cols.JobCode)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	mappings := make([]models.AccountMapping, 0, len(wt.Rows))
	for _, r := range wt.Rows {
		mappings = append(mappings, models.AccountMapping{
			Supplier:         workbook.Cell(r, idx[cols.MappingSupplier]),
			LogisticsAccount: workbook.Cell(r, idx[cols.LogisticsAccount]),
			FreightAccount:   workbook.Cell(r, idx[cols.FreightAccount]),
			JobCode:          workbook.Cell(r, idx[cols.JobCode]),
		})
	}
	return New(mappings), nil
}

// Lookup returns the mapping for a grower, matched on Key.
func (t *Table) Lookup(grower string) (models.AccountMapping, bool) {
	m, ok := t.entries[Key(grower)]
	return m, ok
}

// Len returns the number of distinct growers mapped.
func (t *Table) Len() int {
	return len(t.entries)
}
