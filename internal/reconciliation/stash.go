package reconciliation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"freightsplit/pkg/models"
)

// ErrNoSession is returned when no session file exists yet.
var ErrNoSession = errors.New("no processing session found; run process first")

// Key builds the stash key for an invoice from its trimmed company, invoice number and PO.
func Key(company, invoiceNo, po string) string {
	return strings.TrimSpace(company) + "|" + strings.TrimSpace(invoiceNo) + "|" + strings.TrimSpace(po)
}

// Payload is everything known about an invoice when it failed the gate.
type Payload struct {
	Key    string `json:"key"`
	Stage  Stage  `json:"stage"`
	Reason string `json:"reason"`

	Invoice    models.Invoice     `json:"invoice"`
	Split      models.GrowerSplit `json:"split"`
	SheetTrays float64            `json:"sheet_trays"`

	FailedAt time.Time `json:"failed_at"`
}

// Failure summarizes the payload as a report row.
func (p Payload) Failure() models.Failure {
	return models.Failure{
		Company:       p.Invoice.Vendor,
		InvoiceNumber: p.Invoice.InvoiceNumber,
		PurchaseOrder: p.Invoice.PurchaseOrder,
		Reason:        p.Reason,
		Key:           p.Key,
		Fix:           fixList(p.Stage),
	}
}

// Stash holds the failed invoices of one processing batch, in failure order.
type Stash struct {
	BatchID   string    `json:"batch_id"`
	CreatedAt time.Time `json:"created_at"`

	// Inputs of the batch, reused when fixes are applied later.
	Consignment string `json:"consignment"`
	Mapping     string `json:"mapping"`

	Payloads []Payload `json:"payloads"`
}

// NewStash starts an empty stash for a new batch.
func NewStash(consignment, mapping string) *Stash {
	return &Stash{
		BatchID:     uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Consignment: consignment,
		Mapping:     mapping,
	}
}

// Put stores p under p.Key, replacing any payload with the same key in place.
func (s *Stash) Put(p Payload) {
	for i := range s.Payloads {
		if s.Payloads[i].Key == p.Key {
			s.Payloads[i] = p
			return
		}
	}
	s.Payloads = append(s.Payloads, p)
}

// Get returns the payload stored under key.
func (s *Stash) Get(key string) (Payload, bool) {
	for _, p := range s.Payloads {
		if p.Key == key {
			return p, true
		}
	}
	return Payload{}, false
}

// Delete removes key, reporting whether it was present.
func (s *Stash) Delete(key string) bool {
	for i, p := range s.Payloads {
		if p.Key == key {
			s.Payloads = append(s.Payloads[:i], s.Payloads[i+1:]...)
			return true
		}
	}
	return false
}

// Keys lists stored keys in failure order.
func (s *Stash) Keys() []string {
	keys := make([]string, len(s.Payloads))
	for i, p := range s.Payloads {
		keys[i] = p.Key
	}
	return keys
}

// Len returns the number of stashed payloads.
func (s *Stash) Len() int {
	return len(s.Payloads)
}

// Save writes the stash as JSON, replacing path atomically.
func (s *Stash) Save(path string) error {
	const op = "Stash.Save"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: failed to encode session: %w", op, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%s: failed to create session directory: %w", op, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%s: failed to write session: %w", op, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%s: failed to replace session: %w", op, err)
	}
	return nil
}

// LoadStash reads a stash written by Save. It returns ErrNoSession when path does not exist.
func LoadStash(path string) (*Stash, error) {
	const op = "LoadStash"

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", op, ErrNoSession)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read session: %w", op, err)
	}

	var s Stash
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%s: failed to decode session %s: %w", op, path, err)
	}
	return &s, nil
}
