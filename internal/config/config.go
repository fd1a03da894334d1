// Package config loads the YAML configuration shared by the sunglide
// command-line tools.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	cerrors "cloudeng.io/errors"
	"gopkg.in/yaml.v3"
)

// Config aggregates the settings used by the commands.
type Config struct {
	Location   LocationConfig   `yaml:"location"`
	Brightness BrightnessConfig `yaml:"brightness"`
	Backend    BackendConfig    `yaml:"backend"`
	Search     SearchConfig     `yaml:"search"`
}

// LocationConfig is the observer position.
type LocationConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Timezone  string  `yaml:"timezone"`
}

// BrightnessConfig mirrors sunglide.BrightnessParams.
type BrightnessConfig struct {
	Night       int           `yaml:"night"`
	Day         int           `yaml:"day"`
	Transition  time.Duration `yaml:"transition"`
	Sensitivity float64       `yaml:"sensitivity"`
}

// BackendConfig selects how rise/set are computed.
type BackendConfig struct {
	// Mode is "closed-form" or "search".
	Mode string `yaml:"mode"`
	// Ephemeris is "noaa" or "meeus" (closed-form mode).
	Ephemeris string `yaml:"ephemeris"`
	// Oracle is "approx", "gosunrise" or "suncalc" (search mode).
	Oracle       string `yaml:"oracle"`
	MaxPolarDays int    `yaml:"maxPolarDays"`
}

// SearchConfig tunes the visibility search. A zero Step means the default
// for the latitude.
type SearchConfig struct {
	Step           time.Duration `yaml:"step"`
	MaxEvaluations int           `yaml:"maxEvaluations"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Location: LocationConfig{Timezone: "UTC"},
		Brightness: BrightnessConfig{
			Night:       50,
			Day:         90,
			Transition:  30 * time.Minute,
			Sensitivity: 1,
		},
		Backend: BackendConfig{
			Mode:      "closed-form",
			Ephemeris: "noaa",
			Oracle:    "approx",
		},
	}
}

// Load reads path (if not empty) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults without consulting the environment.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("SUNGLIDE_LAT"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SUNGLIDE_LAT: %w", err)
		}
		cfg.Location.Latitude = parsed
	}
	if v := os.Getenv("SUNGLIDE_LON"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SUNGLIDE_LON: %w", err)
		}
		cfg.Location.Longitude = parsed
	}
	if v := os.Getenv("SUNGLIDE_TZ"); v != "" {
		cfg.Location.Timezone = v
	}
	if v := os.Getenv("SUNGLIDE_BACKEND"); v != "" {
		cfg.Backend.Mode = strings.ToLower(v)
	}
	return nil
}

// Validate checks the fields that the library does not validate itself.
// Coordinates and brightness levels are checked by sunglide.
func (c *Config) Validate() error {
	errs := &cerrors.M{}
	if _, err := time.LoadLocation(c.Location.Timezone); err != nil {
		errs.Append(fmt.Errorf("location.timezone: %w", err))
	}
	if !oneOf(c.Backend.Mode, "closed-form", "search") {
		errs.Append(fmt.Errorf("backend.mode %q: want closed-form or search", c.Backend.Mode))
	}
	if !oneOf(c.Backend.Ephemeris, "noaa", "meeus") {
		errs.Append(fmt.Errorf("backend.ephemeris %q: want noaa or meeus", c.Backend.Ephemeris))
	}
	if !oneOf(c.Backend.Oracle, "approx", "gosunrise", "suncalc") {
		errs.Append(fmt.Errorf("backend.oracle %q: want approx, gosunrise or suncalc", c.Backend.Oracle))
	}
	if c.Search.Step < 0 {
		errs.Append(fmt.Errorf("search.step %v is negative", c.Search.Step))
	}
	return errs.Err()
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return true
		}
	}
	return false
}
