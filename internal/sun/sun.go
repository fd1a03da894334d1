// Package sun computes sunrise and sunset from closed-form solar position
// formulas (the NOAA "improved sunrise/sunset" algorithm) and provides a
// low-precision topocentric elevation model for search based backends.
package sun

import (
	"errors"
	"fmt"
	"math"

	"github.com/thurmanmarka/sunglide/internal/timeutil"
)

// StandardZenith is the commonly used zenith angle (in degrees) for sunrise/sunset:
// 90°50' ≈ 90.833°, accounting for refraction + Sun's apparent radius.
const StandardZenith = 90.833

// ApparentHorizonAltitudeSun is the altitude (in degrees) of the Sun's center
// when the apparent upper limb is on the horizon under "standard" conditions.
const ApparentHorizonAltitudeSun = -0.8333

// DefaultMaxPolarDays bounds the day-by-day search for the nearest defined
// event at high latitudes. The longest polar day or night at the clamped
// latitude limit of 89° is well under this.
const DefaultMaxPolarDays = 200

// ErrNoEvent is returned when the polar fallback search gives up.
var ErrNoEvent = errors.New("no sunrise or sunset within the search limit")

// Event selects sunrise or sunset.
type Event int

const (
	Sunrise Event = iota
	Sunset
)

func (e Event) String() string {
	if e == Sunset {
		return "sunset"
	}
	return "sunrise"
}

// Polar describes why an event is undefined on a given day.
type Polar int

const (
	// NotPolar means the sun crosses the horizon normally.
	NotPolar Polar = iota
	// AlwaysUp means the sun stays above the horizon all day.
	AlwaysUp
	// AlwaysDown means the sun stays below the horizon all day.
	AlwaysDown
)

// Ephemeris supplies the geocentric solar declination (degrees) and the
// equation of time (minutes of time) for a Julian Day.
type Ephemeris interface {
	Position(jd float64) (declination, eqTime float64, err error)
}

// Options configures event computation. The zero value uses the NOAA
// ephemeris and DefaultMaxPolarDays.
type Options struct {
	Ephemeris    Ephemeris
	MaxPolarDays int
}

func (o Options) withDefaults() Options {
	if o.Ephemeris == nil {
		o.Ephemeris = NOAA{}
	}
	if o.MaxPolarDays <= 0 {
		o.MaxPolarDays = DefaultMaxPolarDays
	}
	return o
}

// RiseSet returns sunrise and sunset, as Unix seconds, for the date whose
// 0h UTC Julian Day is jd. When an event does not occur that day the
// nearest occurrence in the appropriate direction is returned instead.
// Latitude must already be validated and clamped to [-89, 89].
func RiseSet(opts Options, jd, lat, lon float64) (rise, set int64, err error) {
	opts = opts.withDefaults()
	if rise, err = EventTime(opts, Sunrise, jd, lat, lon); err != nil {
		return 0, 0, err
	}
	if set, err = EventTime(opts, Sunset, jd, lat, lon); err != nil {
		return 0, 0, err
	}
	return rise, set, nil
}

// EventTime computes a single event for the date at jd, applying the polar
// fallback search when needed.
func EventTime(opts Options, event Event, jd, lat, lon float64) (int64, error) {
	opts = opts.withDefaults()
	minutes, polar, err := EventMinutes(opts.Ephemeris, event, jd, lat, lon)
	if err != nil {
		return 0, err
	}
	if polar == NotPolar {
		return unixOf(jd, minutes), nil
	}

	step := -1
	if searchForward(event, polar) {
		step = 1
	}
	for i := 1; i <= opts.MaxPolarDays; i++ {
		day := timeutil.AddDays(jd, i*step)
		minutes, polar, err = EventMinutes(opts.Ephemeris, event, day, lat, lon)
		if err != nil {
			return 0, err
		}
		if polar == NotPolar {
			return unixOf(day, minutes), nil
		}
	}
	y, m, d := timeutil.GregorianDate(jd)
	return 0, fmt.Errorf("%v for %04d-%02d-%02d at lat %.4f: %w", event, y, m, d, lat, ErrNoEvent)
}

// searchForward reports whether the polar fallback for event should look at
// later days. Under the midnight sun the last rise is behind and the next
// set ahead; in polar night the reverse.
func searchForward(event Event, polar Polar) bool {
	return (polar == AlwaysUp) == (event == Sunset)
}

// unixOf converts minutes after 0h UTC on the date at jd into Unix seconds,
// rounding to the nearest second. Minutes outside [0, 1440) carry into the
// neighbouring days.
func unixOf(jd, minutes float64) int64 {
	return timeutil.UnixMidnight(jd) + int64(math.Round(minutes*60))
}

// EventMinutes returns the UTC time of event on the date at jd in minutes
// after midnight. The first pass evaluates the sun at local solar noon, the
// second at the estimated event time. polar is not NotPolar when the event
// does not occur; minutes is then meaningless.
func EventMinutes(eph Ephemeris, event Event, jd, lat, lon float64) (minutes float64, polar Polar, err error) {
	noon, err := SolarNoon(eph, jd, lon)
	if err != nil {
		return 0, NotPolar, err
	}

	minutes = noon
	for pass := 0; pass < 2; pass++ {
		dec, eqTime, err := eph.Position(jd + minutes/1440.0)
		if err != nil {
			return 0, NotPolar, err
		}
		ha, polar := hourAngle(event, lat, dec)
		if polar != NotPolar {
			return 0, polar, nil
		}
		delta := lon + timeutil.Rad2Deg(ha)
		minutes = 720 - 4*delta - eqTime
	}
	return minutes, NotPolar, nil
}

// SolarNoon returns the UTC time of solar noon, in minutes after midnight,
// for the date at jd. The equation of time is evaluated twice: first at the
// approximate noon implied by longitude, then at the refined noon.
func SolarNoon(eph Ephemeris, jd, lon float64) (float64, error) {
	_, eqTime, err := eph.Position(jd - lon/360.0)
	if err != nil {
		return 0, err
	}
	noon := 720 - 4*lon - eqTime

	_, eqTime, err = eph.Position(jd - 0.5 + noon/1440.0)
	if err != nil {
		return 0, err
	}
	return 720 - 4*lon - eqTime, nil
}

// hourAngle returns the hour angle (radians) of the sun at the standard
// zenith, negated for sunset. If the sun never reaches the zenith angle the
// polar regime is reported instead.
func hourAngle(event Event, lat, dec float64) (float64, Polar) {
	arg := timeutil.CosD(StandardZenith)/(timeutil.CosD(lat)*timeutil.CosD(dec)) -
		timeutil.TanD(lat)*timeutil.TanD(dec)
	switch {
	case arg < -1:
		return 0, AlwaysUp
	case arg > 1:
		return 0, AlwaysDown
	}
	ha := math.Acos(arg)
	if event == Sunset {
		ha = -ha
	}
	return ha, NotPolar
}
