package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 50, cfg.Brightness.Night)
	assert.Equal(t, 90, cfg.Brightness.Day)
	assert.Equal(t, 30*time.Minute, cfg.Brightness.Transition)
	assert.Equal(t, "closed-form", cfg.Backend.Mode)
	assert.Equal(t, "noaa", cfg.Backend.Ephemeris)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
location:
  latitude: 51.4545
  longitude: -2.5879
brightness:
  night: 20
  day: 100
  transition: 45m
backend:
  mode: search
  oracle: suncalc
search:
  step: 1h
`))
	require.NoError(t, err)
	assert.InDelta(t, 51.4545, cfg.Location.Latitude, 1e-9)
	assert.InDelta(t, -2.5879, cfg.Location.Longitude, 1e-9)
	assert.Equal(t, 20, cfg.Brightness.Night)
	assert.Equal(t, 45*time.Minute, cfg.Brightness.Transition)
	assert.Equal(t, 1.0, cfg.Brightness.Sensitivity, "unset fields keep their defaults")
	assert.Equal(t, "search", cfg.Backend.Mode)
	assert.Equal(t, "suncalc", cfg.Backend.Oracle)
	assert.Equal(t, time.Hour, cfg.Search.Step)
	assert.Equal(t, "UTC", cfg.Location.Timezone)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"unknown mode":      "backend:\n  mode: guess\n",
		"unknown ephemeris": "backend:\n  ephemeris: vsop\n",
		"unknown oracle":    "backend:\n  oracle: almanac\n",
		"negative step":     "search:\n  step: -1m\n",
		"bad timezone":      "location:\n  timezone: Nowhere/Special\n",
		"malformed":         "location: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestValidateReportsEveryField(t *testing.T) {
	cfg := Default()
	cfg.Backend.Mode = "guess"
	cfg.Backend.Oracle = "almanac"
	cfg.Search.Step = -time.Minute
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend.mode")
	assert.Contains(t, err.Error(), "backend.oracle")
	assert.Contains(t, err.Error(), "search.step")
}

func TestLoadWithEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sunglide.yaml")
	require.NoError(t, os.WriteFile(path, []byte("location:\n  latitude: 10\n  longitude: 20\n"), 0o600))

	t.Setenv("SUNGLIDE_LAT", "79")
	t.Setenv("SUNGLIDE_BACKEND", "SEARCH")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 79.0, cfg.Location.Latitude)
	assert.Equal(t, 20.0, cfg.Location.Longitude)
	assert.Equal(t, "search", cfg.Backend.Mode)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	t.Setenv("SUNGLIDE_LON", "east")
	_, err = Load("")
	assert.Error(t, err)
}
