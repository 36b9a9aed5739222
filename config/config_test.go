package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
dispatch:
  tick_seconds: 10
  optimize_seconds: 60
metrics:
  prometheus_enabled: true
feed:
  enabled: true
  broker: tcp://broker:1883
api:
  addr: ":9000"
fleet:
  seed: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dispatch.TickSeconds != 10 || cfg.Dispatch.OptimizeSeconds != 60 {
		t.Errorf("dispatch section not applied: %+v", cfg.Dispatch)
	}
	// untouched keys fall back to defaults
	if cfg.Dispatch.AverageSpeedKmh != 25 {
		t.Errorf("expected default speed, got %f", cfg.Dispatch.AverageSpeedKmh)
	}
	if !cfg.Metrics.PrometheusEnabled || cfg.Metrics.PrometheusPort != "9090" {
		t.Errorf("metrics section not applied: %+v", cfg.Metrics)
	}
	if !cfg.Feed.Enabled || cfg.Feed.Broker != "tcp://broker:1883" {
		t.Errorf("feed section not applied: %+v", cfg.Feed)
	}
	if cfg.Feed.Topic != "mine/fleet/telemetry" {
		t.Errorf("feed defaults not applied: %+v", cfg.Feed)
	}
	if cfg.API.Addr != ":9000" {
		t.Errorf("api addr not applied: %q", cfg.API.Addr)
	}
	if !cfg.Fleet.Seed {
		t.Errorf("fleet seed flag not applied")
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{"dispatch":{"auto_commit_score":80}}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dispatch.AutoCommitScore != 80 {
		t.Errorf("json value not applied: %f", cfg.Dispatch.AutoCommitScore)
	}
	if cfg.API.Addr != ":8080" {
		t.Errorf("expected default api addr, got %q", cfg.API.Addr)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "config.yaml", "dispatch:\n  tick_seconds: 5\n")
	t.Setenv("MD_DISPATCH__TICK_SECONDS", "15")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dispatch.TickSeconds != 15 {
		t.Errorf("env override not applied, got %d", cfg.Dispatch.TickSeconds)
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := writeConfig(t, "config.toml", "x = 1")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLoadInvalidValues(t *testing.T) {
	path := writeConfig(t, "config.yaml", "dispatch:\n  tick_seconds: 60\n  optimize_seconds: 5\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error when the optimize interval undercuts the tick")
	}
}
