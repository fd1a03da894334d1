package sunglide

import (
	"errors"
	"fmt"
	"math"
	"time"

	cerrors "cloudeng.io/errors"

	"github.com/thurmanmarka/sunglide/internal/curve"
)

// ErrInvalidBrightness is returned when BrightnessParams fail validation.
var ErrInvalidBrightness = errors.New("invalid brightness parameters")

// DefaultSensitivity is the level change, in percent, that triggers a
// refresh when BrightnessParams.Sensitivity is zero.
const DefaultSensitivity = 1.0

// BrightnessParams configures the day/night dimming curve.
type BrightnessParams struct {
	Night      int           // night brightness, percent 0-100
	Day        int           // day brightness, percent 0-100, >= Night
	Transition time.Duration // length of the ramp centred on each rise/set

	// Sensitivity is the smallest level change, in percent, worth waking
	// up for. Zero selects DefaultSensitivity.
	Sensitivity float64
}

// BrightnessResult is the level at the bracket's Time and how long it stays
// valid. Percent is Level rounded to the nearest integer. Expiry is a whole
// number of seconds, never less than one.
type BrightnessResult struct {
	Percent int
	Level   float64
	Expiry  time.Duration
}

// Validate reports every problem with p at once.
func (p BrightnessParams) Validate() error {
	errs := &cerrors.M{}
	if p.Night < 0 || p.Night > 100 {
		errs.Append(fmt.Errorf("night brightness %d outside [0, 100]", p.Night))
	}
	if p.Day < 0 || p.Day > 100 {
		errs.Append(fmt.Errorf("day brightness %d outside [0, 100]", p.Day))
	}
	if p.Night > p.Day {
		errs.Append(fmt.Errorf("night brightness %d above day brightness %d", p.Night, p.Day))
	}
	if p.Transition < time.Second {
		errs.Append(fmt.Errorf("transition %v shorter than one second", p.Transition))
	}
	if p.Sensitivity < 0 || math.IsNaN(p.Sensitivity) {
		errs.Append(fmt.Errorf("sensitivity %v is negative", p.Sensitivity))
	}
	if err := errs.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBrightness, err)
	}
	return nil
}

// Brightness evaluates the dimming curve at v.Time. Away from sunrise and
// sunset the level sits on the Day or Night plateau; within Transition/2 of
// either event it follows a half-sine between the two. The result expires
// when the level will next have moved by Sensitivity, or when the plateau
// ends, and always strictly after v.Time so that re-evaluating on expiry
// makes progress.
func Brightness(p BrightnessParams, v Visibility) (BrightnessResult, error) {
	if err := p.Validate(); err != nil {
		return BrightnessResult{}, err
	}
	sensitivity := p.Sensitivity
	if sensitivity == 0 {
		sensitivity = DefaultSensitivity
	}
	ramp := curve.Ramp{
		Low:         float64(p.Night),
		High:        float64(p.Day),
		Transition:  int64(p.Transition / time.Second),
		Sensitivity: sensitivity,
	}
	now := v.Time.Unix()
	level, expiry := ramp.Evaluate(now, v.Rise.Unix(), v.Set.Unix(), v.Visible)
	return BrightnessResult{
		Percent: int(math.Round(level)),
		Level:   level,
		Expiry:  time.Duration(expiry-now) * time.Second,
	}, nil
}
