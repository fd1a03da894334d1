package sun

import (
	"math"
	"time"

	"github.com/thurmanmarka/sunglide/internal/timeutil"
)

// Equatorial represents equatorial coordinates (right ascension and declination)
// in degrees. RA is in degrees (0-360).
type Equatorial struct {
	RA  float64 // right ascension, degrees
	Dec float64 // declination, degrees
}

// GeocentricEquatorialApprox returns the Sun's right ascension and
// declination at t from the low precision almanac series (mean anomaly g,
// mean longitude q, ecliptic longitude L, obliquity eps). It is accurate to
// about an arcminute, which keeps Elevation, and so the approx search
// oracle, within a minute or two of the closed-form rise and set times.
func GeocentricEquatorialApprox(t time.Time) Equatorial {
	d := timeutil.DaysSinceJ2000(t)

	g := timeutil.Deg2Rad(357.529 + 0.98560028*d)
	q := timeutil.Deg2Rad(280.459 + 0.98564736*d)

	// Ecliptic longitude with equation of center
	L := q +
		timeutil.Deg2Rad(1.915)*math.Sin(g) +
		timeutil.Deg2Rad(0.020)*math.Sin(2*g)

	eps := timeutil.Deg2Rad(23.439 - 0.00000036*d)

	x := math.Cos(L)
	y := math.Cos(eps) * math.Sin(L)
	z := math.Sin(eps) * math.Sin(L)

	ra := math.Atan2(y, x)
	if ra < 0 {
		ra += 2 * math.Pi
	}
	dec := math.Asin(z)

	return Equatorial{
		RA:  timeutil.Rad2Deg(ra),
		Dec: timeutil.Rad2Deg(dec),
	}
}

// Elevation computes the Sun's approximate geometric altitude (in degrees)
// at geographic location (lat, lon) at time t, using the solar RA/Dec model
// and a simple sidereal time approximation. Refraction is not applied;
// compare against ApparentHorizonAltitudeSun to decide visibility.
func Elevation(lat, lon float64, t time.Time) float64 {
	eq := GeocentricEquatorialApprox(t)

	raRad := timeutil.Deg2Rad(eq.RA)
	decRad := timeutil.Deg2Rad(eq.Dec)
	latRad := timeutil.Deg2Rad(lat)

	// Local sidereal time
	d := timeutil.DaysSinceJ2000(t)
	gmst := 280.46061837 + 360.98564736629*d
	lstRad := timeutil.Deg2Rad(timeutil.Normalize360(gmst + lon))

	// Hour angle H = LST - RA; cos is periodic so no normalization needed.
	H := lstRad - raRad

	sinAlt := math.Sin(latRad)*math.Sin(decRad) + math.Cos(latRad)*math.Cos(decRad)*math.Cos(H)
	return timeutil.Rad2Deg(math.Asin(sinAlt))
}
