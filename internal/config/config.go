package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogsDir    string  `yaml:"logs_dir"`
	FiguresDir string  `yaml:"figures_dir"`
	NumRuns    int     `yaml:"num_runs"`
	Trainer    Trainer `yaml:"trainer"`
	Activation Family  `yaml:"activation"`
	Warmup     Family  `yaml:"warmup"`
	Curves     Curves  `yaml:"curves"`
	History    History `yaml:"history"`
}

// Trainer describes the external training program the sweep shells out to.
// The commands are argv prefixes; the runner appends the hyperparameter and
// run-count flags.
type Trainer struct {
	ActivationCmd []string `yaml:"activation_cmd"`
	WarmupCmd     []string `yaml:"warmup_cmd"`
	EnvFile       string   `yaml:"env_file"`
}

type Family struct {
	Values   []string `yaml:"values"`
	Baseline string   `yaml:"baseline"`
}

type Curves struct {
	LogDir string `yaml:"log_dir"`
}

// History points at the optional SQLite archive of past analyses.
// An empty path disables archiving.
type History struct {
	DB string `yaml:"db"`
}

var knownActivations = map[string]bool{
	"gelu":         true,
	"relu":         true,
	"relu_squared": true,
	"swish":        true,
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.LogsDir == "" {
		cfg.LogsDir = "logs"
	}
	if cfg.FiguresDir == "" {
		cfg.FiguresDir = "figures"
	}
	if cfg.NumRuns == 0 {
		cfg.NumRuns = 25
	}
	if cfg.NumRuns < 1 {
		return fmt.Errorf("num_runs must be at least 1")
	}
	if len(cfg.Trainer.ActivationCmd) == 0 {
		cfg.Trainer.ActivationCmd = []string{"python", "airbench94_activation.py"}
	}
	if len(cfg.Trainer.WarmupCmd) == 0 {
		cfg.Trainer.WarmupCmd = []string{"python", "airbench94.py"}
	}
	if len(cfg.Activation.Values) == 0 {
		cfg.Activation.Values = []string{"gelu", "relu_squared", "relu", "swish"}
	}
	for _, v := range cfg.Activation.Values {
		if !knownActivations[v] {
			return fmt.Errorf("unknown activation %q", v)
		}
	}
	if cfg.Activation.Baseline == "" {
		cfg.Activation.Baseline = "gelu"
	}
	if !knownActivations[cfg.Activation.Baseline] {
		return fmt.Errorf("unknown activation baseline %q", cfg.Activation.Baseline)
	}
	if len(cfg.Warmup.Values) == 0 {
		cfg.Warmup.Values = []string{"0.05", "0.10", "0.15", "0.20", "0.23", "0.30", "0.35"}
	}
	for _, v := range cfg.Warmup.Values {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("warmup value %q is not a number", v)
		}
		if r <= 0 || r >= 1 {
			return fmt.Errorf("warmup value %q out of range (0, 1)", v)
		}
	}
	if cfg.Warmup.Baseline == "" {
		cfg.Warmup.Baseline = "0.23"
	}
	if _, err := strconv.ParseFloat(cfg.Warmup.Baseline, 64); err != nil {
		return fmt.Errorf("warmup baseline %q is not a number", cfg.Warmup.Baseline)
	}
	if cfg.Curves.LogDir == "" {
		cfg.Curves.LogDir = cfg.LogsDir
	}
	return nil
}
