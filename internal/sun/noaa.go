package sun

import (
	"math"

	"github.com/thurmanmarka/sunglide/internal/timeutil"
)

// NOAA implements Ephemeris with the series used by the NOAA solar
// calculator. Accuracy is about one arc-minute for years -1000..3000.
type NOAA struct{}

// Position implements Ephemeris.
func (NOAA) Position(jd float64) (float64, float64, error) {
	t := timeutil.JulianCentury(jd)
	return declination(t), equationOfTime(t), nil
}

// All series below take Julian centuries since J2000.0 and return degrees
// unless noted otherwise.

func geomMeanLongSun(t float64) float64 {
	return timeutil.Normalize360(280.46646 + t*(36000.76983+0.0003032*t))
}

func geomMeanAnomalySun(t float64) float64 {
	return 357.52911 + t*(35999.05029-0.0001537*t)
}

func eccentricityEarthOrbit(t float64) float64 {
	return 0.016708634 - t*(0.000042037+0.0000001267*t)
}

func sunEqOfCenter(t float64) float64 {
	m := timeutil.Deg2Rad(geomMeanAnomalySun(t))
	return math.Sin(m)*(1.914602-t*(0.004817+0.000014*t)) +
		math.Sin(2*m)*(0.019993-0.000101*t) +
		math.Sin(3*m)*0.000289
}

func sunTrueLong(t float64) float64 {
	return geomMeanLongSun(t) + sunEqOfCenter(t)
}

func sunApparentLong(t float64) float64 {
	omega := 125.04 - 1934.136*t
	return sunTrueLong(t) - 0.00569 - 0.00478*timeutil.SinD(omega)
}

func meanObliquityOfEcliptic(t float64) float64 {
	seconds := 21.448 - t*(46.8150+t*(0.00059-t*0.001813))
	return 23.0 + (26.0+seconds/60.0)/60.0
}

func obliquityCorrection(t float64) float64 {
	omega := 125.04 - 1934.136*t
	return meanObliquityOfEcliptic(t) + 0.00256*timeutil.CosD(omega)
}

func declination(t float64) float64 {
	sint := timeutil.SinD(obliquityCorrection(t)) * timeutil.SinD(sunApparentLong(t))
	return timeutil.Rad2Deg(math.Asin(sint))
}

// equationOfTime returns minutes of time.
func equationOfTime(t float64) float64 {
	epsilon := timeutil.Deg2Rad(obliquityCorrection(t))
	l0 := timeutil.Deg2Rad(geomMeanLongSun(t))
	e := eccentricityEarthOrbit(t)
	m := timeutil.Deg2Rad(geomMeanAnomalySun(t))

	y := math.Tan(epsilon / 2)
	y *= y

	sinm := math.Sin(m)
	etime := y*math.Sin(2*l0) -
		2*e*sinm +
		4*e*y*sinm*math.Cos(2*l0) -
		0.5*y*y*math.Sin(4*l0) -
		1.25*e*e*math.Sin(2*m)

	return timeutil.Rad2Deg(etime) * 4
}
