package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dendrascience/dendra-journal/journal"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BaseDir != DefaultBaseDir {
		t.Errorf("expected base dir %q, got %q", DefaultBaseDir, cfg.BaseDir)
	}
	if cfg.SyncInterval != journal.DefaultSyncInterval {
		t.Errorf("expected sync interval %v, got %v", journal.DefaultSyncInterval, cfg.SyncInterval)
	}
	if cfg.CheckpointThreshold != journal.DefaultCheckpointThreshold {
		t.Errorf("expected threshold %d, got %d", journal.DefaultCheckpointThreshold, cfg.CheckpointThreshold)
	}
	if cfg.RetainCheckpoints != journal.DefaultRetainCheckpoints {
		t.Errorf("expected retain %d, got %d", journal.DefaultRetainCheckpoints, cfg.RetainCheckpoints)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "djournal.yaml")
	body := "base-dir: /var/lib/djournal\nsync-interval: 10s\nretain-checkpoints: 7\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BaseDir != "/var/lib/djournal" {
		t.Errorf("expected overridden base dir, got %q", cfg.BaseDir)
	}
	if cfg.SyncInterval != 10*time.Second {
		t.Errorf("expected 10s sync interval, got %v", cfg.SyncInterval)
	}
	if cfg.RetainCheckpoints != 7 {
		t.Errorf("expected 7 retained checkpoints, got %d", cfg.RetainCheckpoints)
	}
	// Unset keys keep their defaults.
	if cfg.CheckpointInterval != journal.DefaultCheckpointInterval {
		t.Errorf("expected default checkpoint interval, got %v", cfg.CheckpointInterval)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for a missing config file")
	}
}

func TestOptionsRoundTrip(t *testing.T) {
	cfg := Config{
		SyncInterval:        2 * time.Second,
		CheckpointInterval:  time.Minute,
		CheckpointThreshold: 50,
		CheckInterval:       time.Second,
		RetainCheckpoints:   4,
	}
	opts := cfg.Options()
	if opts.SyncInterval != cfg.SyncInterval ||
		opts.CheckpointInterval != cfg.CheckpointInterval ||
		opts.CheckpointThreshold != cfg.CheckpointThreshold ||
		opts.CheckInterval != cfg.CheckInterval ||
		opts.RetainCheckpoints != cfg.RetainCheckpoints {
		t.Errorf("options mismatch: %+v vs %+v", opts, cfg)
	}
}
