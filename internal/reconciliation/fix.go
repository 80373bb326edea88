package reconciliation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"freightsplit/internal/logger"
	"freightsplit/pkg/models"
)

// Fixer applies manual corrections to stashed invoices and re-runs every check after
// the corrected one. A fix that passes removes the payload from the stash; one that
// fails again replaces it, under a new key when the PO changed.
type Fixer struct {
	pipeline *Pipeline
	log      zerolog.Logger
}

// NewFixer creates a fixer over the pipeline's stash.
func NewFixer(pipeline *Pipeline) *Fixer {
	return &Fixer{
		pipeline: pipeline,
		log:      logger.WithComponent("fix"),
	}
}

func (f *Fixer) payload(key string, kind FixKind) (Payload, error) {
	stash := f.pipeline.Stash()
	if stash == nil {
		return Payload{}, fmt.Errorf("%w: %s", ErrPayloadNotFound, key)
	}
	p, ok := stash.Get(key)
	if !ok {
		return Payload{}, fmt.Errorf("%w: %s", ErrPayloadNotFound, key)
	}
	if !allows(p.Stage, kind) {
		return Payload{}, fmt.Errorf("%w: %s fix cannot resolve %q", ErrFixNotAllowed, kind, p.Reason)
	}
	return p, nil
}

func (f *Fixer) rerun(key string, s *State, from Stage) Result {
	f.pipeline.Stash().Delete(key)
	res := f.pipeline.run(s, from)

	f.log.Info().
		Str("key", key).
		Stringer("from", from).
		Str("status", string(res.Status)).
		Msg("Fix applied")
	return res
}

// FixPO replaces the invoice's PO and re-runs the gate from the grower lookup.
func (f *Fixer) FixPO(key, po string) (Result, error) {
	po = strings.TrimSpace(po)
	if po == "" {
		return Result{}, ErrEmptyPO
	}

	p, err := f.payload(key, FixKindPO)
	if err != nil {
		return Result{}, err
	}

	s := &State{Invoice: p.Invoice.WithPurchaseOrder(po)}
	return f.rerun(key, s, StageGrowers), nil
}

// FixTrays sets the invoice's tray count. The override must equal the rounded consignment
// total; the stashed grower split is reused.
func (f *Fixer) FixTrays(key string, trays int64) (Result, error) {
	p, err := f.payload(key, FixKindTrays)
	if err != nil {
		return Result{}, err
	}

	if sheet := RoundTrays(p.SheetTrays); trays <= 0 || trays != sheet {
		return Result{}, &TrayOverrideError{Override: trays, Consignment: sheet}
	}

	s := &State{
		Invoice:    p.Invoice.WithTrays(float64(trays)),
		Split:      p.Split,
		SheetTrays: p.SheetTrays,
	}
	return f.rerun(key, s, StagePDFTrays), nil
}

// FixSplit replaces the grower split with entered tray counts and allocates directly.
// The entries must add up to the invoice's tray count; pdfTrays is used only when the
// invoice had none.
func (f *Fixer) FixSplit(key string, entries []models.GrowerTrays, pdfTrays int64) (Result, error) {
	p, err := f.payload(key, FixKindSplit)
	if err != nil {
		return Result{}, err
	}

	total := RoundTrays(p.Invoice.Trays)
	if total <= 0 {
		total = pdfTrays
	}
	if total <= 0 {
		return Result{}, ErrTrayCountRequired
	}

	var valid []models.GrowerTrays
	var entered int64
	for _, e := range entries {
		if strings.TrimSpace(e.Grower) == "" || e.Trays <= 0 {
			continue
		}
		valid = append(valid, e)
		entered += int64(e.Trays)
	}
	if len(valid) == 0 {
		return Result{}, ErrNoSplitEntries
	}
	if entered != total {
		return Result{}, &SplitSumError{Entered: entered, PDF: total}
	}

	split, sum := models.SplitFromTrays(valid)
	s := &State{
		Invoice:    p.Invoice.WithTrays(float64(total)),
		Split:      split,
		SheetTrays: sum,
	}
	return f.rerun(key, s, StageMapping), nil
}

// ParseSplitEntries reads "Supplier Name = trays" lines. Tray counts are truncated to whole
// trays; lines without "=", with a blank name, or with an unreadable or non-positive count
// are skipped.
func ParseSplitEntries(lines []string) []models.GrowerTrays {
	var entries []models.GrowerTrays
	for _, line := range lines {
		name, qty, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		n, err := strconv.ParseFloat(strings.TrimSpace(qty), 64)
		if err != nil {
			continue
		}
		trays := int64(n)
		if name == "" || trays <= 0 {
			continue
		}
		entries = append(entries, models.GrowerTrays{Grower: name, Trays: float64(trays)})
	}
	return entries
}
