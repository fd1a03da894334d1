package sunglide

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/nathan-osman/go-sunrise"
	"github.com/sixdouglas/suncalc"

	"github.com/thurmanmarka/sunglide/internal/solver"
	"github.com/thurmanmarka/sunglide/internal/sun"
)

// VisibleAltitude is the solar elevation, in degrees, at or above which the
// sun counts as visible: the centre of the disc sits this far below the
// horizon when refraction lifts the upper limb into view.
const VisibleAltitude = -0.8333

// ElevationOracle reports the topocentric elevation of the sun, in degrees,
// for a fixed observer. Implementations must be deterministic.
type ElevationOracle interface {
	Elevation(t time.Time) (float64, error)
}

// ElevationFunc adapts a function to ElevationOracle.
type ElevationFunc func(t time.Time) (float64, error)

// Elevation implements ElevationOracle.
func (f ElevationFunc) Elevation(t time.Time) (float64, error) {
	return f(t)
}

// ApproxElevation returns an oracle backed by the built-in low-precision
// solar model. It needs no external data and is good to a few arc-minutes.
func ApproxElevation(loc Coordinates) ElevationOracle {
	return ElevationFunc(func(t time.Time) (float64, error) {
		return sun.Elevation(loc.Lat, loc.Lon, t), nil
	})
}

// SunriseElevation returns an oracle backed by github.com/nathan-osman/go-sunrise.
func SunriseElevation(loc Coordinates) ElevationOracle {
	return ElevationFunc(func(t time.Time) (float64, error) {
		return sunrise.Elevation(loc.Lat, loc.Lon, t), nil
	})
}

// SunCalcElevation returns an oracle backed by github.com/sixdouglas/suncalc.
func SunCalcElevation(loc Coordinates) ElevationOracle {
	return ElevationFunc(func(t time.Time) (float64, error) {
		pos := suncalc.GetPosition(t, loc.Lat, loc.Lon)
		return pos.Altitude * 180 / math.Pi, nil
	})
}

type searchOptions struct {
	step     time.Duration
	maxEvals int
}

// SearchOption configures SearchAround.
type SearchOption func(*searchOptions)

// WithStep overrides the initial search step. It should be shorter than the
// shortest day or night at the location or a transition may be skipped.
func WithStep(d time.Duration) SearchOption {
	return func(o *searchOptions) {
		o.step = d
	}
}

// WithMaxEvaluations caps the oracle calls made by each directional search.
func WithMaxEvaluations(n int) SearchOption {
	return func(o *searchOptions) {
		o.maxEvals = n
	}
}

// DefaultStep returns the search step used for a latitude when WithStep is
// not given: 4h below 60°, 1h below 64°, 10 minutes above. At extreme
// latitudes a very short day or night can still be skipped.
func DefaultStep(lat float64) time.Duration {
	return solver.DefaultStep(lat)
}

// SearchAround resolves the visibility bracket around t by searching the
// oracle backwards and forwards from t for the nearest visibility changes.
// Each returned instant is the first second at which the oracle reports
// the new state.
func SearchAround(oracle ElevationOracle, loc Coordinates, t time.Time, opts ...SearchOption) (Visibility, error) {
	if err := loc.Validate(); err != nil {
		return Visibility{}, err
	}
	o := searchOptions{step: solver.DefaultStep(loc.Lat)}
	for _, fn := range opts {
		fn(&o)
	}
	step := int64(o.step / time.Second)
	if step <= 0 {
		return Visibility{}, fmt.Errorf("search step %v must be at least one second", o.step)
	}

	visibleAt := func(sec int64) (bool, error) {
		e, err := oracle.Elevation(unixTime(sec))
		if err != nil {
			return false, fmt.Errorf("%w: %w", ErrOracleFailure, err)
		}
		if math.IsNaN(e) {
			return false, fmt.Errorf("%w: elevation is NaN at %v", ErrOracleFailure, unixTime(sec))
		}
		return e >= VisibleAltitude, nil
	}

	now := t.Unix()
	visible, err := visibleAt(now)
	if err != nil {
		return Visibility{}, err
	}
	last, err := solver.SearchTransition(visibleAt, now, -step, visible, o.maxEvals)
	if err != nil {
		return Visibility{}, searchError(err)
	}
	next, err := solver.SearchTransition(visibleAt, now, step, visible, o.maxEvals)
	if err != nil {
		return Visibility{}, searchError(err)
	}

	v := Visibility{Time: unixTime(now), Visible: visible}
	if visible {
		v.Rise, v.Set = unixTime(last), unixTime(next)
	} else {
		v.Set, v.Rise = unixTime(last), unixTime(next)
	}
	return v, nil
}

func searchError(err error) error {
	if errors.Is(err, solver.ErrExhausted) {
		return fmt.Errorf("%w: %w", ErrSearchExhausted, err)
	}
	return err
}
