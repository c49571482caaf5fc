package config

import (
	"fmt"
	"time"
)

// Config represents a sceneflow.yaml configuration file.
// All values are optional and act as defaults for sceneflow run flags.
// CLI flags always override config values.
type Config struct {
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port"`
	BaseTimeout Duration      `yaml:"base_timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
	Debug       bool          `yaml:"debug"`
	Journal     string        `yaml:"journal"`
	Stages      []StageConfig `yaml:"stages"`
}

// StageConfig is one pipeline stage definition within the config file.
type StageConfig struct {
	Name      string   `yaml:"name"`
	Label     string   `yaml:"label"`
	Script    string   `yaml:"script"`
	Code      string   `yaml:"code"`
	Attempts  int      `yaml:"attempts"`
	Timeout   Duration `yaml:"timeout"`
	Retryable bool     `yaml:"retryable"`
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
