// Package curve implements the half-sine brightness ramp used around sunrise
// and sunset, together with the deadline at which the level will next change
// by a noticeable amount.
package curve

import "math"

// Ramp describes a transition between Low (night) and High (day) levels that
// lasts Transition seconds and is centred on a sunrise or sunset.
type Ramp struct {
	Low, High   float64
	Transition  int64   // seconds
	Sensitivity float64 // smallest level change worth reporting
}

// Evaluate returns the level at now given the visibility bracket around it,
// and the Unix time after which it should be evaluated again. The returned
// expiry is always later than now.
//
// A and B bound the plateau: in daylight A = rise+T/2 and B = set-T/2, at
// night A = set+T/2 and B = rise-T/2. Before A the ramp around the previous
// event applies, from B onwards the ramp around the next one.
func (r Ramp) Evaluate(now, rise, set int64, visible bool) (level float64, expiry int64) {
	half := r.Transition / 2
	var a, b int64
	if visible {
		a, b = rise+half, set-half
	} else {
		a, b = set+half, rise-half
	}

	switch {
	case now < a:
		event := set
		if visible {
			event = rise
		}
		level, expiry = r.At(now, event, !visible)
	case now >= b:
		// >= rather than > so that an expiry of exactly B makes progress.
		event := rise
		if visible {
			event = set
		}
		level, expiry = r.At(now, event, visible)
	default:
		level = r.Low
		if visible {
			level = r.High
		}
		expiry = b
	}
	if expiry <= now {
		expiry = now + 1
	}
	return level, expiry
}

// At evaluates the ramp centred on event at now. decreasing selects the
// day-to-night direction.
func (r Ramp) At(now, event int64, decreasing bool) (level float64, expiry int64) {
	amp := (r.High - r.Low) / 2
	mid := amp + r.Low
	if amp == 0 || r.Transition <= 0 {
		return r.High, max(event+r.Transition/2, now+1)
	}

	xscale := math.Pi / float64(r.Transition)
	if decreasing {
		xscale = -xscale
	}
	level = amp*math.Sin(xscale*float64(now-event)) + mid

	if now == event {
		return level, now + 1
	}

	diff := r.Sensitivity
	if decreasing {
		diff = -diff
	}
	next := clamp(level+diff, r.Low, r.High)
	offset := math.Asin(clamp((next-mid)/amp, -1, 1)) / xscale
	expiry = event + int64(math.Ceil(offset))
	if expiry <= now {
		expiry = now + 1
	}
	return level, expiry
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
