package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
environment: test
server:
  port: 9090
backend:
  type: clickhouse
meterfeed:
  indicators: ["price", "demand"]
analytics:
  model_family: random_forest
  test_fraction: 0.25
  retrain_interval: 30m
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeTemp(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Analytics.ModelFamily != "random_forest" {
		t.Fatalf("model_family = %q", cfg.Analytics.ModelFamily)
	}
	if cfg.Analytics.TestFraction != 0.25 {
		t.Fatalf("test_fraction = %v", cfg.Analytics.TestFraction)
	}
	if cfg.Analytics.RetrainInterval != 30*time.Minute {
		t.Fatalf("retrain_interval = %v", cfg.Analytics.RetrainInterval)
	}
}

func TestLoadAppliesAnalyticsDefaults(t *testing.T) {
	cfg, err := Load(writeTemp(t, `
environment: test
backend:
  type: kafka
meterfeed:
  indicators: ["price"]
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Analytics.ModelFamily != "decomposition" {
		t.Fatalf("default model_family = %q", cfg.Analytics.ModelFamily)
	}
	if cfg.Analytics.TestFraction != 0.2 {
		t.Fatalf("default test_fraction = %v", cfg.Analytics.TestFraction)
	}
	if cfg.Analytics.ForecastHorizon != 24 {
		t.Fatalf("default forecast_horizon = %d", cfg.Analytics.ForecastHorizon)
	}
	if cfg.Analytics.AnomalyThreshold != 3.0 {
		t.Fatalf("default anomaly_threshold = %v", cfg.Analytics.AnomalyThreshold)
	}
	if cfg.Analytics.RetrainInterval != time.Hour {
		t.Fatalf("default retrain_interval = %v", cfg.Analytics.RetrainInterval)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	_, err := Load(writeTemp(t, `
environment: test
backend:
  type: postgres
meterfeed:
  indicators: ["price"]
`))
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestValidateRejectsUnknownFamily(t *testing.T) {
	_, err := Load(writeTemp(t, `
environment: test
backend:
  type: kafka
meterfeed:
  indicators: ["price"]
analytics:
  model_family: arima
`))
	if err == nil {
		t.Fatal("expected error for unknown model family")
	}
}

func TestValidateRejectsEmptyIndicators(t *testing.T) {
	_, err := Load(writeTemp(t, `
environment: test
backend:
  type: kafka
`))
	if err == nil {
		t.Fatal("expected error for empty indicators")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("BACKEND", "clickhouse")
	t.Setenv("MODEL_FAMILY", "sequence")

	cfg, err := LoadWithEnv(writeTemp(t, `
environment: test
backend:
  type: kafka
meterfeed:
  indicators: ["price"]
`))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if cfg.Backend.Type != "clickhouse" {
		t.Fatalf("backend = %q, want clickhouse", cfg.Backend.Type)
	}
	if cfg.Analytics.ModelFamily != "sequence" {
		t.Fatalf("model_family = %q, want sequence", cfg.Analytics.ModelFamily)
	}
}
