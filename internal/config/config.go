// Package config provides unified configuration loading for daysim.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/daysim/daysim/internal/constants"
	"github.com/daysim/daysim/internal/state"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up under the .daysim directory.
const FileName = "daysim.yaml"

// Config contains all daysim configuration settings.
type Config struct {
	// Simulation contains the run parameters handed to the registry.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Logging contains settings for operational and trace logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// RunLog contains settings for the persistent run history.
	RunLog RunLogConfig `json:"runlog" yaml:"runlog"`
}

// SimulationConfig configures a single run.
type SimulationConfig struct {
	// TotalDays is the run horizon; the driver runs days [0, TotalDays).
	TotalDays int `json:"total_days" yaml:"total_days"`

	// DaysPerWeek is the number of simulated days per calendar week.
	DaysPerWeek int `json:"days_per_week" yaml:"days_per_week"`

	// AdultAge is the age threshold marking adulthood, read by
	// population models through the registry.
	AdultAge int `json:"adult_age" yaml:"adult_age"`
}

// LoggingConfig configures daysim's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables day tracing to .daysim/trace.jsonl.
	Level string `json:"level" yaml:"level"`
}

// RunLogConfig configures the sqlite run history.
type RunLogConfig struct {
	// Enabled controls whether runs are recorded to .daysim/daysim.db.
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// Default returns the configuration with every setting at its default.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			TotalDays:   constants.DefaultTotalDays,
			DaysPerWeek: constants.DefaultDaysPerWeek,
			AdultAge:    constants.DefaultAdultAge,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		RunLog: RunLogConfig{
			Enabled: true,
		},
	}
}

// Load loads configuration for the project rooted at root. It starts from
// defaults, merges root/.daysim/daysim.yaml if present, then applies
// environment variable overrides.
func Load(root string) (*Config, error) {
	config := Default()

	configPath := filepath.Join(root, ".daysim", FileName)
	if _, err := os.Stat(configPath); err == nil {
		fileConfig, loadErr := LoadFromFile(configPath)
		if loadErr != nil {
			return nil, loadErr
		}
		config = fileConfig
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Simulation.TotalDays <= 0 {
		return fmt.Errorf("total_days must be positive, got %d", c.Simulation.TotalDays)
	}

	if c.Simulation.DaysPerWeek <= 0 {
		return fmt.Errorf("days_per_week must be positive, got %d", c.Simulation.DaysPerWeek)
	}

	if c.Simulation.AdultAge < 0 {
		return fmt.Errorf("adult_age must be non-negative, got %d", c.Simulation.AdultAge)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// Options converts the simulation section into registry options.
func (c *Config) Options() state.Options {
	return state.Options{
		TotalDays:   c.Simulation.TotalDays,
		DaysPerWeek: c.Simulation.DaysPerWeek,
		AdultAge:    c.Simulation.AdultAge,
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("DAYSIM_TOTAL_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Simulation.TotalDays = n
		}
	}

	if v := os.Getenv("DAYSIM_DAYS_PER_WEEK"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Simulation.DaysPerWeek = n
		}
	}

	if v := os.Getenv("DAYSIM_ADULT_AGE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Simulation.AdultAge = n
		}
	}

	if v := os.Getenv("DAYSIM_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("DAYSIM_RUNLOG"); v != "" {
		config.RunLog.Enabled = v == "true" || v == "1"
	}
}
