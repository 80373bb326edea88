// Package reconciliation checks parsed invoices against the consignment summary
// and the account map, allocates the ones that pass, and keeps the ones that
// fail for manual correction.
//
// Every invoice runs the same ordered gate: PO present, growers found, PDF tray
// count present, consignment tray total present, tray counts equal after
// rounding, all growers mapped, at least one charge line. The first failing
// check decides the reason reported and which corrections are offered.
package reconciliation

import (
	"time"

	"github.com/rs/zerolog"

	"freightsplit/internal/allocation"
	"freightsplit/internal/logger"
	"freightsplit/pkg/models"
	"freightsplit/pkg/services"
)

// Status is the outcome of processing one document.
type Status string

const (
	StatusAllocated  Status = "Allocated"
	StatusFailed     Status = "Failed"
	StatusUnknown    Status = "Unknown"
	StatusUnreadable Status = "Unreadable"
)

// Result is the outcome for one document.
type Result struct {
	Source  string
	Status  Status
	Invoice models.Invoice
	Lines   []models.AllocationLine

	// Failure is set for StatusFailed and is also held in the stash.
	Failure *Payload

	// Err is set for StatusUnreadable.
	Err error
}

// Pipeline runs invoices through the gate. It is not safe for concurrent use.
type Pipeline struct {
	gate  Gate
	stash *Stash
	log   zerolog.Logger
}

// NewPipeline creates a pipeline that records failures in stash. A nil stash keeps no failures.
func NewPipeline(resolver services.SplitResolver, allocator *allocation.Allocator, stash *Stash) *Pipeline {
	log := logger.WithComponent("reconciliation")
	if stash != nil {
		log = logger.WithBatchID(log, stash.BatchID)
	}
	return &Pipeline{
		gate:  NewGate(resolver, allocator),
		stash: stash,
		log:   log,
	}
}

// Stash returns the stash failures are recorded in.
func (p *Pipeline) Stash() *Stash {
	return p.stash
}

// Process runs a parsed invoice through every check. Invoices from unrecognized vendors
// are reported as StatusUnknown and are neither allocated nor stashed.
func (p *Pipeline) Process(inv models.Invoice) Result {
	if inv.IsUnknownVendor() {
		p.log.Warn().Str("source", inv.Source).Msg("Vendor not recognized, skipping document")
		return Result{Source: inv.Source, Status: StatusUnknown, Invoice: inv}
	}

	return p.run(&State{Invoice: inv}, StagePO)
}

// Unreadable records a document whose text could not be extracted.
func (p *Pipeline) Unreadable(source string, err error) Result {
	p.log.Error().Err(err).Str("source", source).Msg("Could not read document")
	return Result{Source: source, Status: StatusUnreadable, Err: err}
}

func (p *Pipeline) run(s *State, from Stage) Result {
	inv := s.Invoice
	log := logger.WithInvoice(p.log, inv.Vendor, inv.InvoiceNumber, inv.PurchaseOrder)

	failed, ok := p.gate.Run(s, from)
	if ok {
		log.Info().Int("lines", len(s.Lines)).Msg("Invoice allocated")
		return Result{Source: inv.Source, Status: StatusAllocated, Invoice: inv, Lines: s.Lines}
	}

	payload := Payload{
		Key:        Key(inv.Vendor, inv.InvoiceNumber, inv.PurchaseOrder),
		Stage:      failed.Stage,
		Reason:     failed.Reason(s),
		Invoice:    inv,
		Split:      s.Split,
		SheetTrays: s.SheetTrays,
		FailedAt:   time.Now().UTC(),
	}
	if p.stash != nil {
		p.stash.Put(payload)
	}

	log.Warn().
		Stringer("stage", failed.Stage).
		Str("reason", payload.Reason).
		Msg("Invoice failed validation")

	return Result{Source: inv.Source, Status: StatusFailed, Invoice: inv, Failure: &payload}
}
