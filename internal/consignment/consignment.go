// Package consignment resolves how a PO's trays were shared between growers.
//
// The consignment summary lists, per shipment row, the consignor, the grower
// (supplier), the customer PO reference, the crop and the tray count. A PO is
// resolved for one vendor at a time: only rows from that vendor's consignors
// and the configured crop take part.
package consignment

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"freightsplit/internal/config"
	"freightsplit/internal/logger"
	"freightsplit/internal/workbook"
	"freightsplit/pkg/models"
)

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	reNonDigit   = regexp.MustCompile(`\D`)
)

// Row is one shipment line of the consignment summary.
type Row struct {
	Consignor string
	Supplier  string
	PO        string
	Crop      string

	// Trays is TraysRaw as a number; zero when the cell is blank or not numeric.
	Trays    float64
	TraysRaw string
}

// FromTable reads consignment rows using the registry's column names.
func FromTable(t *workbook.Table, cols config.Columns) ([]Row, error) {
	const op = "consignment.FromTable"

	idx, err := t.Require(cols.Consignor, cols.Supplier, cols.PO, cols.Trays, cols.Crop)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows := make([]Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		raw := workbook.Cell(r, idx[cols.Trays])
		rows = append(rows, Row{
			Consignor: workbook.Cell(r, idx[cols.Consignor]),
			Supplier:  workbook.Cell(r, idx[cols.Supplier]),
			PO:        workbook.Cell(r, idx[cols.PO]),
			Crop:      workbook.Cell(r, idx[cols.Crop]),
			Trays:     parseTrays(raw),
			TraysRaw:  raw,
		})
	}
	return rows, nil
}

func parseTrays(raw string) float64 {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return n
}

// NormalizePO removes all whitespace and upper-cases a PO reference.
func NormalizePO(po string) string {
	return strings.ToUpper(reWhitespace.ReplaceAllString(po, ""))
}

// DigitsOnly strips everything but digits.
func DigitsOnly(s string) string {
	return reNonDigit.ReplaceAllString(s, "")
}

// MatchPO reports whether a spreadsheet PO cell refers to the customer PO. References match
// when equal after NormalizePO, or when the customer PO has digits and both reduce to the
// same digits.
func MatchPO(customerPO, cell string) bool {
	if NormalizePO(customerPO) == NormalizePO(cell) {
		return true
	}
	digits := DigitsOnly(customerPO)
	return digits != "" && DigitsOnly(cell) == digits
}

// Resolver answers grower-split queries against a loaded consignment summary.
type Resolver struct {
	rows     []Row
	registry *config.Registry
	log      zerolog.Logger
}

// NewResolver creates a resolver over a read-only snapshot of rows.
func NewResolver(rows []Row, registry *config.Registry) *Resolver {
	return &Resolver{
		rows:     rows,
		registry: registry,
		log:      logger.WithComponent("consignment"),
	}
}

// Len returns the number of rows in the snapshot.
func (r *Resolver) Len() int {
	return len(r.rows)
}

// Resolve returns the grower split for a PO shipped under vendor and the tray total behind it.
// Rows are narrowed by consignor allow-list, then crop, then PO match. Rows without a grower
// or with a non-positive tray count do not contribute. An empty split and zero total mean no
// growers were found.
func (r *Resolver) Resolve(po, vendor string) (models.GrowerSplit, float64) {
	log := r.log.With().Str("po", po).Str("vendor", vendor).Logger()

	allowed := make(map[string]bool)
	for _, c := range r.registry.Consignors(vendor) {
		allowed[strings.TrimSpace(c)] = true
	}
	if len(allowed) == 0 || strings.TrimSpace(po) == "" {
		return models.GrowerSplit{}, 0
	}

	crop := strings.ToLower(r.registry.Crop)
	var consignorRows, cropRows int
	var entries []models.GrowerTrays
	for _, row := range r.rows {
		if !allowed[row.Consignor] {
			continue
		}
		consignorRows++
		if !strings.Contains(strings.ToLower(row.Crop), crop) {
			continue
		}
		cropRows++
		if !MatchPO(po, row.PO) {
			continue
		}
		entries = append(entries, models.GrowerTrays{Grower: row.Supplier, Trays: row.Trays})
	}

	split, total := models.SplitFromTrays(entries)

	log.Debug().
		Int("consignor_rows", consignorRows).
		Int("crop_rows", cropRows).
		Int("po_rows", len(entries)).
		Int("growers", len(split.Shares)).
		Float64("total_trays", total).
		Msg("Resolved grower split")

	return split, total
}
