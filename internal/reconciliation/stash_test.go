package reconciliation

import (
	"errors"
	"path/filepath"
	"testing"

	"freightsplit/pkg/models"
)

func TestKey(t *testing.T) {
	if got := Key(" Bache Bros Pty Ltd ", "BB-1042 ", "\tPO-77"); got != "Bache Bros Pty Ltd|BB-1042|PO-77" {
		t.Errorf("Key = %q", got)
	}
}

func TestStashPutReplaces(t *testing.T) {
	s := NewStash("", "")
	s.Put(Payload{Key: "a", Reason: "first"})
	s.Put(Payload{Key: "b"})
	s.Put(Payload{Key: "a", Reason: "second"})

	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	if p, _ := s.Get("a"); p.Reason != "second" {
		t.Errorf("reason = %q, want second", p.Reason)
	}
	if !s.Delete("a") || s.Delete("a") {
		t.Error("Delete should report presence once")
	}
	if keys := s.Keys(); len(keys) != 1 || keys[0] != "b" {
		t.Errorf("keys = %v", keys)
	}
}

func TestStashSaveLoad(t *testing.T) {
	p := newTestPipeline(nil)
	inv := testInvoice()
	inv.Trays = 121
	res := p.Process(inv)
	if res.Status != StatusFailed {
		t.Fatalf("setup: status = %s", res.Status)
	}

	path := filepath.Join(t.TempDir(), "out", "session.json")
	if err := p.Stash().Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadStash(path)
	if err != nil {
		t.Fatalf("LoadStash: %v", err)
	}
	if loaded.BatchID != p.Stash().BatchID || loaded.Consignment != "summary.xlsx" {
		t.Errorf("session header = %+v", loaded)
	}

	got, ok := loaded.Get(res.Failure.Key)
	if !ok {
		t.Fatalf("key %q missing after reload", res.Failure.Key)
	}
	if got.Stage != StageTrayMatch || got.SheetTrays != 120 {
		t.Errorf("payload = %+v", got)
	}
	if !got.Invoice.Charge(models.ChargeLogistics).Equal(inv.Charge(models.ChargeLogistics)) {
		t.Errorf("logistics = %s", got.Invoice.Charge(models.ChargeLogistics))
	}
	if got.Split.Share("Grower A") != res.Failure.Split.Share("Grower A") {
		t.Errorf("split not preserved: %+v", got.Split)
	}

	f := got.Failure()
	if f.Fix != "split, trays" || f.Company != freshMax {
		t.Errorf("failure row = %+v", f)
	}
}

func TestLoadStashMissing(t *testing.T) {
	_, err := LoadStash(filepath.Join(t.TempDir(), "none.json"))
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("err = %v, want ErrNoSession", err)
	}
}
