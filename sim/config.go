package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config groups the run parameters that can come from a YAML file instead of
// CLI flags. Flags take precedence when both are given.
type Config struct {
	Cores    int    `yaml:"cores"`
	Policy   string `yaml:"policy"`
	Quantum  uint64 `yaml:"quantum"`
	Seed     int64  `yaml:"seed"`
	MaxTicks uint64 `yaml:"max_ticks"`
	Out      string `yaml:"out,omitempty"`
}

// DefaultConfig returns the built-in run parameters.
func DefaultConfig() Config {
	return Config{
		Cores:    MaxCores,
		Policy:   PolicyRoundRobin.Tag(),
		Quantum:  DefaultQuantum,
		Seed:     0,
		MaxTicks: 1_000_000,
	}
}

// Validate checks the config for values the engine would reject.
func (c Config) Validate() error {
	if c.Cores < 1 || c.Cores > MaxCores {
		return fmt.Errorf("cores must be in [1, %d], got %d", MaxCores, c.Cores)
	}
	if _, err := NewPolicy(c.Policy, c.Quantum); err != nil {
		return err
	}
	if c.MaxTicks == 0 {
		return fmt.Errorf("max_ticks must be positive")
	}
	return nil
}

// LoadConfig reads a YAML config file. Unknown fields are rejected so a
// typoed key fails loudly instead of silently running with defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
