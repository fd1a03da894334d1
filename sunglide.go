// Package sunglide computes sunrise and sunset for an observer, decides
// whether the sun is currently above the horizon, and turns that into a
// smoothly dimmed brightness level for lighting and automation controllers.
//
// Two backends are available:
//   - a closed-form calculator (NOAA formulas, or Meeus via WithBackend)
//     used by CalculateRiseSet and Around;
//   - a search over any ElevationOracle, used by SearchAround.
//
// Both produce a Visibility bracket that Brightness turns into a level and
// a re-evaluation delay.
//
// All functions are pure; a Calculator is immutable and may be shared
// between goroutines.
package sunglide

import (
	"errors"
	"fmt"
	"time"

	"github.com/thurmanmarka/sunglide/internal/sun"
	"github.com/thurmanmarka/sunglide/internal/timeutil"
)

// Coordinates represent an observer's location.
type Coordinates struct {
	Lat       float64 // degrees, north positive
	Lon       float64 // degrees, east positive (west negative, e.g. -105 for 105°W)
	Elevation float64 // meters above sea level (reserved for future use)
}

// RiseSet holds the sunrise and sunset computed for a calendar date. When
// the sun does not cross the horizon that day (polar day or night) the
// nearest crossings on other dates are returned.
type RiseSet struct {
	Rise time.Time
	Set  time.Time
}

var (
	// ErrInvalidCoordinates is returned for latitudes outside [-90, 90] or
	// longitudes outside [-180, 180].
	ErrInvalidCoordinates = errors.New("invalid coordinates")

	// ErrInvalidDate is returned for dates that do not exist on the
	// Gregorian calendar, e.g. month 13 or February 30.
	ErrInvalidDate = errors.New("invalid date")

	// ErrYearUnsupported is returned for years outside [-1000, 3000].
	ErrYearUnsupported = errors.New("year unsupported")

	// ErrSearchExhausted is returned when the polar fallback or the
	// visibility search hits its iteration cap.
	ErrSearchExhausted = errors.New("search exhausted")

	// ErrOracleFailure wraps errors returned by a solar position oracle.
	ErrOracleFailure = errors.New("solar position oracle failed")
)

// Backend selects the closed-form solar position series.
type Backend int

const (
	// BackendNOAA uses the NOAA sunrise/sunset series (default).
	BackendNOAA Backend = iota
	// BackendMeeus uses the Astronomical Algorithms apparent position.
	BackendMeeus
)

// Calculator computes sunrise and sunset with the closed-form backend.
type Calculator struct {
	opts sun.Options
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithBackend selects the solar position series.
func WithBackend(b Backend) Option {
	return func(c *Calculator) {
		switch b {
		case BackendMeeus:
			c.opts.Ephemeris = sun.Meeus{}
		default:
			c.opts.Ephemeris = sun.NOAA{}
		}
	}
}

// WithMaxPolarDays caps the number of days the polar fallback will search.
func WithMaxPolarDays(n int) Option {
	return func(c *Calculator) {
		c.opts.MaxPolarDays = n
	}
}

// NewCalculator returns a Calculator with the given options applied.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{opts: sun.Options{
		Ephemeris:    sun.NOAA{},
		MaxPolarDays: sun.DefaultMaxPolarDays,
	}}
	for _, fn := range opts {
		fn(c)
	}
	return c
}

var defaultCalculator = NewCalculator()

// CalculateRiseSet returns the UTC sunrise and sunset on the given
// proleptic Gregorian date using the default Calculator.
func CalculateRiseSet(year, month, day int, lat, lon float64) (RiseSet, error) {
	return defaultCalculator.RiseSet(year, month, day, lat, lon)
}

// SlideIntoSunset is your glorious convenience helper: it returns sunrise
// and sunset for the calendar date of date (in its own location), with the
// results expressed in that location.
func SlideIntoSunset(loc Coordinates, date time.Time) (RiseSet, error) {
	y, m, d := date.Date()
	rs, err := CalculateRiseSet(y, int(m), d, loc.Lat, loc.Lon)
	if err != nil {
		return RiseSet{}, err
	}
	tz := date.Location()
	return RiseSet{Rise: rs.Rise.In(tz), Set: rs.Set.In(tz)}, nil
}

// DaylightHours returns the time between sunrise and sunset on the
// calendar date of date, in hours. It is 24 under the midnight sun and 0
// during polar night.
func DaylightHours(loc Coordinates, date time.Time) (float64, error) {
	rs, err := SlideIntoSunset(loc, date)
	if err != nil {
		return 0, err
	}
	d := rs.Set.Sub(rs.Rise)
	switch {
	case d < 0:
		return 0, nil
	case d > 24*time.Hour:
		return 24, nil
	}
	return d.Hours(), nil
}

// RiseSet returns the UTC sunrise and sunset on the given date. Inputs are
// checked in the order coordinates, date, year before any computation.
func (c *Calculator) RiseSet(year, month, day int, lat, lon float64) (RiseSet, error) {
	loc := Coordinates{Lat: lat, Lon: lon}
	if err := loc.Validate(); err != nil {
		return RiseSet{}, err
	}
	if !timeutil.ValidDate(year, month, day) {
		return RiseSet{}, fmt.Errorf("%04d-%02d-%02d: %w", year, month, day, ErrInvalidDate)
	}
	if !timeutil.ValidYear(year) {
		return RiseSet{}, fmt.Errorf("year %d outside [%d, %d]: %w",
			year, timeutil.MinYear, timeutil.MaxYear, ErrYearUnsupported)
	}
	rise, set, err := sun.RiseSet(c.opts, timeutil.JulianDay(year, month, day), loc.clampedLat(), lon)
	if err != nil {
		return RiseSet{}, mapError(err)
	}
	return RiseSet{Rise: unixTime(rise), Set: unixTime(set)}, nil
}

// Validate checks that the coordinates are physically meaningful. NaN
// values are rejected as well.
func (c Coordinates) Validate() error {
	if !(c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180) {
		return fmt.Errorf("lat %v, lon %v: %w", c.Lat, c.Lon, ErrInvalidCoordinates)
	}
	return nil
}

// clampedLat limits latitude to ±89° where the formulas stay well behaved.
func (c Coordinates) clampedLat() float64 {
	return min(max(c.Lat, -89), 89)
}

func mapError(err error) error {
	if errors.Is(err, sun.ErrNoEvent) {
		return fmt.Errorf("%w: %w", ErrSearchExhausted, err)
	}
	return fmt.Errorf("%w: %w", ErrOracleFailure, err)
}

func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
