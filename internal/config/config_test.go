package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultWhenMissing(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := DefaultConfig()
	if cfg.PollIntervalMs != def.PollIntervalMs {
		t.Fatalf("PollIntervalMs = %d, want %d", cfg.PollIntervalMs, def.PollIntervalMs)
	}
	if cfg.ReadWorkers != def.ReadWorkers {
		t.Fatalf("ReadWorkers = %d, want %d", cfg.ReadWorkers, def.ReadWorkers)
	}
	if cfg.WebPort != def.WebPort {
		t.Fatalf("WebPort = %d, want %d", cfg.WebPort, def.WebPort)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	data := `{"poll_interval_ms": 500, "read_workers": 2, "log_level": "debug", "web_port": 9000}`
	if err := os.WriteFile(configPath, []byte(data), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.PollIntervalMs != 500 {
		t.Errorf("PollIntervalMs = %d, want 500", cfg.PollIntervalMs)
	}
	if cfg.PollInterval() != 500*time.Millisecond {
		t.Errorf("PollInterval() = %v, want 500ms", cfg.PollInterval())
	}
	if cfg.ReadWorkers != 2 {
		t.Errorf("ReadWorkers = %d, want 2", cfg.ReadWorkers)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.WebPort != 9000 {
		t.Errorf("WebPort = %d, want 9000", cfg.WebPort)
	}
	// Untouched fields keep defaults
	if cfg.WebBind != "127.0.0.1" {
		t.Errorf("WebBind = %q, want 127.0.0.1", cfg.WebBind)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{not json}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_DisabledTools(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	if err := os.WriteFile(configPath, []byte(`{"disabled_tools": ["clip_delete", " clip_move ", "clip_delete"]}`), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := []string{"clip_delete", "clip_move"}
	if len(cfg.DisabledTools) != len(want) {
		t.Fatalf("DisabledTools = %v, want %v", cfg.DisabledTools, want)
	}
	for i := range want {
		if cfg.DisabledTools[i] != want[i] {
			t.Errorf("DisabledTools[%d] = %q, want %q", i, cfg.DisabledTools[i], want[i])
		}
	}
}

func TestMerge_OverlayWins(t *testing.T) {
	base := &Config{PollIntervalMs: 250, ReadWorkers: 4, LogFormat: "auto", DisabledTools: []string{"a"}}
	overlay := &Config{ReadWorkers: 1, LogFormat: "json", DisabledTools: []string{"b", "a"}}

	got := Merge(base, overlay)

	if got.PollIntervalMs != 250 {
		t.Errorf("PollIntervalMs = %d, want 250", got.PollIntervalMs)
	}
	if got.ReadWorkers != 1 {
		t.Errorf("ReadWorkers = %d, want 1", got.ReadWorkers)
	}
	if got.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", got.LogFormat)
	}
	if len(got.DisabledTools) != 2 || got.DisabledTools[0] != "a" || got.DisabledTools[1] != "b" {
		t.Errorf("DisabledTools = %v, want [a b]", got.DisabledTools)
	}
}

func TestMerge_EmptyArraysStayNil(t *testing.T) {
	got := Merge(&Config{}, &Config{DisabledTools: []string{"  "}})
	if got.DisabledTools != nil {
		t.Errorf("DisabledTools = %v, want nil", got.DisabledTools)
	}
}
