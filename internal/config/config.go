// Package config loads the optional mzShift TOML configuration file.
package config

import (
	"fmt"
	"math"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config mirrors the engine options that can be set from a file.
// Command-line flags override file values.
type Config struct {
	Tolerance     float64            `toml:"tolerance"`
	ToleranceUnit string             `toml:"tolerance_unit"`
	MaxMods       int                `toml:"max_mods"`
	Exhaustive    bool               `toml:"exhaustive"`
	Localization  string             `toml:"localization"`
	Workers       int                `toml:"workers"`
	Calibrate     bool               `toml:"calibrate"`
	AACombo       int                `toml:"aa_combinations"`
	Priors        map[string]float64 `toml:"priors"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Tolerance:     10.0,
		ToleranceUnit: "ppm",
		MaxMods:       3,
		Localization:  "unrestricted",
	}
}

// Load reads and validates a TOML configuration file, applied on top of
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Tolerance < 0 || math.IsNaN(c.Tolerance) || math.IsInf(c.Tolerance, 0) {
		return fmt.Errorf("tolerance must be >= 0, got %v", c.Tolerance)
	}
	switch c.ToleranceUnit {
	case "", "ppm", "da":
	default:
		return fmt.Errorf("tolerance_unit must be \"ppm\" or \"da\", got %q", c.ToleranceUnit)
	}
	if c.MaxMods < 0 {
		return fmt.Errorf("max_mods must be >= 0, got %d", c.MaxMods)
	}
	switch c.Localization {
	case "", "unrestricted", "context-aware":
	default:
		return fmt.Errorf("localization must be \"unrestricted\" or \"context-aware\", got %q", c.Localization)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.AACombo < 0 || c.AACombo > 3 {
		return fmt.Errorf("aa_combinations must be in 0..3, got %d", c.AACombo)
	}
	for tag, w := range c.Priors {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("prior for %q is not finite", tag)
		}
	}
	return nil
}
