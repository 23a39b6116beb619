package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadSessionConfigReturnsDefaultsWhenPathEmpty(t *testing.T) {
	cfg, err := loadSessionConfig("")
	if err != nil {
		t.Fatalf("loadSessionConfig(\"\"): %v", err)
	}
	want := defaultSessionConfig()
	if cfg != want {
		t.Errorf("loadSessionConfig(\"\") = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoadSessionConfigOverlaysYAMLOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "sensor_timeout: 5s\ndisplay_width: 640\ndisplay_height: 480\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := loadSessionConfig(path)
	if err != nil {
		t.Fatalf("loadSessionConfig: %v", err)
	}
	if cfg.SensorTimeout != 5*time.Second {
		t.Errorf("SensorTimeout = %v, want 5s", cfg.SensorTimeout)
	}
	if cfg.DisplayWidth != 640 || cfg.DisplayHeight != 480 {
		t.Errorf("display = %dx%d, want 640x480", cfg.DisplayWidth, cfg.DisplayHeight)
	}
	if cfg.DiagnosticDir != "./diagnostics" {
		t.Errorf("DiagnosticDir = %q, want default preserved", cfg.DiagnosticDir)
	}
}

func TestLoadSessionConfigRejectsMissingFile(t *testing.T) {
	if _, err := loadSessionConfig("/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error for a missing config file")
	}
}

func TestLoadSessionConfigRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("not: valid: yaml: at all:"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := loadSessionConfig(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}
