// Package solver locates sun visibility transitions with an adaptive
// bisection that works against any visibility oracle.
package solver

import (
	"errors"
	"math"
	"time"
)

// VisibilityFunc reports whether the sun is visible at the given Unix time.
// It must be deterministic for a fixed observer.
type VisibilityFunc func(unix int64) (bool, error)

// ErrExhausted is returned when a search runs out of evaluations without
// converging, usually because the oracle never changes state.
var ErrExhausted = errors.New("visibility search exceeded its evaluation limit")

// Step sizes used by DefaultStep.
const (
	CoarseStep = 4 * time.Hour
	MediumStep = time.Hour
	FineStep   = 10 * time.Minute
)

// DefaultStep returns the largest step that is shorter than the shortest day
// or night normally seen at lat: 4h below 60°, 1h below 64° and 10 minutes
// above. Days or nights shorter than the step near the poles can still be
// skipped.
func DefaultStep(lat float64) time.Duration {
	switch abs := math.Abs(lat); {
	case abs < 60:
		return CoarseStep
	case abs < 64:
		return MediumStep
	default:
		return FineStep
	}
}

// MaxEvaluations returns an evaluation budget large enough to walk a full
// year at the given step and then bisect down to one second.
func MaxEvaluations(step int64) int {
	if step < 0 {
		step = -step
	}
	if step == 0 {
		return 1
	}
	const year = 366 * 24 * 60 * 60
	return int(year/step) + 2*64
}

// SearchTransition finds the nearest transition in the direction given by
// the sign of step and returns its first second: the instant whose
// visibility differs from the second before it.
//
// While the oracle agrees with the current target the instant advances by
// step. On the first disagreement the step is halved and negated and the
// target flipped, so the search oscillates around the transition with a
// geometrically shrinking step. The disagreement found with a one second
// step pins the transition exactly.
//
// maxEvals caps the number of oracle calls; zero or less selects
// MaxEvaluations(step).
func SearchTransition(f VisibilityFunc, start, step int64, visible bool, maxEvals int) (int64, error) {
	if step == 0 {
		return start, errors.New("search step must not be zero")
	}
	if maxEvals <= 0 {
		maxEvals = MaxEvaluations(step)
	}
	t := start
	for evals := 0; ; evals++ {
		if evals >= maxEvals {
			return t, ErrExhausted
		}
		v, err := f(t)
		if err != nil {
			return t, err
		}
		if v == visible {
			t += step
			continue
		}
		switch step {
		case 1:
			return t, nil
		case -1:
			return t + 1, nil
		}
		// f(t) already equals the flipped target.
		step = -(step / 2)
		visible = !visible
		t += step
	}
}
