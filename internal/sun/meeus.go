package sun

import (
	"math"

	"github.com/mooncaker816/learnmeeus/v3/eqtime"
	"github.com/mooncaker816/learnmeeus/v3/solar"

	"github.com/thurmanmarka/sunglide/internal/timeutil"
)

const minutesPerRadian = 1440 / (2 * math.Pi)

// Meeus implements Ephemeris with the apparent solar position of Astronomical
// Algorithms ch. 25 and Smart's equation of time (ch. 28). Julian Days are
// used in place of Julian Ephemeris Days; the ΔT difference of about a
// minute is below the accuracy of the rise/set formula.
type Meeus struct{}

// Position implements Ephemeris.
func (Meeus) Position(jd float64) (float64, float64, error) {
	_, dec := solar.ApparentEquatorial(jd)
	e := eqtime.ESmart(jd)
	return timeutil.Rad2Deg(dec.Rad()), e.Rad() * minutesPerRadian, nil
}
