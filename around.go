package sunglide

import (
	"fmt"
	"time"

	"github.com/thurmanmarka/sunglide/internal/sun"
	"github.com/thurmanmarka/sunglide/internal/timeutil"
)

// Visibility is the sunrise/sunset bracket around Time: Rise and Set are
// the last and next crossings, whichever order they fall in. When Visible
// the sun rose at Rise and will set at Set; otherwise it set at Set and
// will rise at Rise.
type Visibility struct {
	Time    time.Time
	Rise    time.Time
	Set     time.Time
	Visible bool
}

// Around resolves the visibility bracket around t using the default
// Calculator.
func Around(loc Coordinates, t time.Time) (Visibility, error) {
	return defaultCalculator.Around(loc, t)
}

// Around resolves the visibility bracket around t. It starts from the
// sunrise and sunset of the UTC date containing t and consults at most one
// neighbouring date to find the crossing on the far side of t.
func (c *Calculator) Around(loc Coordinates, t time.Time) (Visibility, error) {
	if err := loc.Validate(); err != nil {
		return Visibility{}, err
	}
	now := t.Unix()
	if y, _, _ := timeutil.DateOfUnix(now); !timeutil.ValidYear(y) {
		return Visibility{}, fmt.Errorf("year %d outside [%d, %d]: %w",
			y, timeutil.MinYear, timeutil.MaxYear, ErrYearUnsupported)
	}

	r := resolver{opts: c.opts, lat: loc.clampedLat(), lon: loc.Lon}
	rise, set, visible, err := r.resolve(timeutil.MidnightOfUnix(now), now)
	if err != nil {
		return Visibility{}, err
	}
	return Visibility{
		Time:    unixTime(now),
		Rise:    unixTime(rise),
		Set:     unixTime(set),
		Visible: visible,
	}, nil
}

type resolver struct {
	opts     sun.Options
	lat, lon float64
}

func (r resolver) events(jd float64) (rise, set int64, err error) {
	rise, set, err = sun.RiseSet(r.opts, jd, r.lat, r.lon)
	if err != nil {
		return 0, 0, mapError(err)
	}
	return rise, set, nil
}

// resolve picks the bracket around now from the events of the date at jd.
//
// With rise before set (the usual case) now is either in that day's
// daylight, before the rise (the previous crossing is yesterday's set) or
// after the set (the next crossing is tomorrow's rise). With set before
// rise the same reasoning applies with visibility flipped.
//
// Near the date line the neighbouring day's event can land on the wrong
// side of now, e.g. yesterday's sunset falling after 0h UTC today. The
// neighbouring day's own rise/set pair then brackets now instead.
func (r resolver) resolve(jd float64, now int64) (rise, set int64, visible bool, err error) {
	rise, set, err = r.events(jd)
	if err != nil {
		return 0, 0, false, err
	}

	if rise < set {
		switch {
		case rise <= now && now <= set:
			return rise, set, true, nil
		case now < rise:
			prevRise, prevSet, err := r.events(timeutil.AddDays(jd, -1))
			if err != nil {
				return 0, 0, false, err
			}
			if prevSet <= now {
				return r.check(now, rise, prevSet, false)
			}
			return r.check(now, prevRise, prevSet, true)
		default:
			nextRise, nextSet, err := r.events(timeutil.AddDays(jd, 1))
			if err != nil {
				return 0, 0, false, err
			}
			if nextRise > now {
				return r.check(now, nextRise, set, false)
			}
			return r.check(now, nextRise, nextSet, true)
		}
	}

	switch {
	case set <= now && now <= rise:
		return rise, set, false, nil
	case now < set:
		prevRise, prevSet, err := r.events(timeutil.AddDays(jd, -1))
		if err != nil {
			return 0, 0, false, err
		}
		if prevRise <= now {
			return r.check(now, prevRise, set, true)
		}
		return r.check(now, prevRise, prevSet, false)
	default:
		nextRise, nextSet, err := r.events(timeutil.AddDays(jd, 1))
		if err != nil {
			return 0, 0, false, err
		}
		if nextSet > now {
			return r.check(now, rise, nextSet, true)
		}
		return r.check(now, nextRise, nextSet, false)
	}
}

// check verifies that the chosen pair really brackets now.
func (r resolver) check(now, rise, set int64, visible bool) (int64, int64, bool, error) {
	ok := rise <= now && now <= set
	if !visible {
		ok = set <= now && now <= rise
	}
	if !ok {
		return 0, 0, false, fmt.Errorf("%w: no rise/set pair brackets %v at lat %.4f lon %.4f",
			ErrSearchExhausted, unixTime(now), r.lat, r.lon)
	}
	return rise, set, visible, nil
}
