package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mkeller/ablate/internal/config"
)

func TestLoadMinimalAppliesDefaults(t *testing.T) {
	cfg, err := config.Load("../../testdata/minimal.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogsDir != "logs" {
		t.Errorf("logs_dir: got %q, want logs", cfg.LogsDir)
	}
	if cfg.FiguresDir != "figures" {
		t.Errorf("figures_dir: got %q, want figures", cfg.FiguresDir)
	}
	if cfg.NumRuns != 25 {
		t.Errorf("num_runs: got %d, want 25", cfg.NumRuns)
	}
	if cfg.Activation.Baseline != "gelu" {
		t.Errorf("activation baseline: got %q, want gelu", cfg.Activation.Baseline)
	}
	if cfg.Warmup.Baseline != "0.23" {
		t.Errorf("warmup baseline: got %q, want 0.23", cfg.Warmup.Baseline)
	}
	if len(cfg.Activation.Values) != 4 {
		t.Errorf("expected 4 default activations, got %d", len(cfg.Activation.Values))
	}
	if len(cfg.Warmup.Values) != 7 {
		t.Errorf("expected 7 default warmup ratios, got %d", len(cfg.Warmup.Values))
	}
	if cfg.Curves.LogDir != "logs" {
		t.Errorf("curves log_dir should default to logs_dir, got %q", cfg.Curves.LogDir)
	}
	if len(cfg.Trainer.ActivationCmd) != 1 || cfg.Trainer.ActivationCmd[0] != "./trainer.sh" {
		t.Errorf("unexpected trainer command: %v", cfg.Trainer.ActivationCmd)
	}
}

func TestLoadFull(t *testing.T) {
	cfg, err := config.Load("../../testdata/full.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogsDir != "run-logs" {
		t.Errorf("logs_dir: got %q, want run-logs", cfg.LogsDir)
	}
	if cfg.NumRuns != 10 {
		t.Errorf("num_runs: got %d, want 10", cfg.NumRuns)
	}
	if cfg.Trainer.EnvFile != "secrets.env" {
		t.Errorf("env_file: got %q", cfg.Trainer.EnvFile)
	}
	if cfg.Curves.LogDir != "gpt-logs" {
		t.Errorf("curves log_dir: got %q, want gpt-logs", cfg.Curves.LogDir)
	}
	if cfg.History.DB != "history.db" {
		t.Errorf("history db: got %q, want history.db", cfg.History.DB)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := config.Load("nonexistent.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	if _, err := config.Load("../../testdata/invalid.yaml"); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown activation", "activation:\n  values: [gelu, sigmoid]\n"},
		{"unknown activation baseline", "activation:\n  baseline: sigmoid\n"},
		{"non-numeric warmup", "warmup:\n  values: [fast]\n"},
		{"warmup out of range", "warmup:\n  values: [\"1.5\"]\n"},
		{"non-numeric warmup baseline", "warmup:\n  baseline: fast\n"},
		{"negative num_runs", "num_runs: -2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := config.Load(path); err == nil {
				t.Errorf("expected validation error for %s", tt.name)
			}
		})
	}
}
