package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetupDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Output != "stderr" {
		t.Errorf("default output = %q, want stderr", cfg.Output)
	}
	if err := Setup(cfg); err != nil {
		t.Fatalf("Setup(DefaultConfig()): %v", err)
	}
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "loud"
	if err := Setup(cfg); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestSetupJSONFile(t *testing.T) {
	t.Cleanup(func() { _ = Setup(DefaultConfig()) })

	path := filepath.Join(t.TempDir(), "freightsplit.log")
	cfg := DefaultConfig()
	cfg.Format = "json"
	cfg.Output = path
	if err := Setup(cfg); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	log := WithInvoice(WithComponent("allocation"), "FRESHMAX NATIONAL PTY LTD", "100234", "OZG12345")
	log.Info().Msg("Invoice allocated")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, data)
	}
	for key, want := range map[string]string{
		"component": "allocation",
		"invoice":   "100234",
		"po":        "OZG12345",
		"message":   "Invoice allocated",
	} {
		if entry[key] != want {
			t.Errorf("%s = %v, want %q", key, entry[key], want)
		}
	}
}
