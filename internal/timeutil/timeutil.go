// Package timeutil holds the calendar arithmetic shared by the solar models:
// proleptic Gregorian dates, Julian Days and Unix seconds, plus a handful of
// degree-based trig helpers.
//
// Every date is interpreted on the proleptic Gregorian calendar, including
// dates before the 1582 reform, year 0 and negative years.
package timeutil

import (
	"math"
	"time"
)

const (
	// SecondsPerDay ignores leap seconds, as Unix time does.
	SecondsPerDay = 86400

	// MinYear and MaxYear bound the years the solar formulas are valid for.
	MinYear = -1000
	MaxYear = 3000

	// unixEpochJD is the Julian Day of 1970-01-01T00:00:00Z.
	unixEpochJD = 2440587.5

	// unixEpochJDN is the Julian Day Number of 1970-01-01.
	unixEpochJDN = 2440588

	// J2000 is the Julian Day of the J2000.0 epoch (2000-01-01 12:00 UTC).
	J2000 = 2451545.0
)

var monthLengths = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// IsLeapYear reports whether year is a Gregorian leap year.
func IsLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// DaysInMonth returns the length of month (1-12) in year, or 0 if month is
// out of range.
func DaysInMonth(year, month int) int {
	if month < 1 || month > 12 {
		return 0
	}
	if month == 2 && IsLeapYear(year) {
		return 29
	}
	return monthLengths[month-1]
}

// ValidDate reports whether (year, month, day) names a real Gregorian date.
func ValidDate(year, month, day int) bool {
	return day >= 1 && day <= DaysInMonth(year, month)
}

// ValidYear reports whether year lies in [MinYear, MaxYear].
func ValidYear(year int) bool {
	return year >= MinYear && year <= MaxYear
}

// DayOfYear returns the 1-based ordinal day (AA p.65).
func DayOfYear(month, day int, leap bool) int {
	k := 2
	if leap {
		k = 1
	}
	return (275*month)/9 - k*((month+9)/12) + day - 30
}

// julianDayNumber returns the integer day number of the civil date, i.e. the
// Julian Day at noon. Valid for years > -4800.
func julianDayNumber(year, month, day int) int64 {
	a := (month - 14) / 12
	y := int64(year + 4800 + a)
	m := int64(month - 2 - 12*a)
	c := int64((year + 4900 + a) / 100)
	return (1461*y)/4 + (367*m)/12 - (3*c)/4 + int64(day) - 32075
}

// JulianDay returns the Julian Day at 0h UTC of the given date.
func JulianDay(year, month, day int) float64 {
	return float64(julianDayNumber(year, month, day)) - 0.5
}

// GregorianDate converts a Julian Day, which may carry a fractional time of
// day, back to the calendar date containing it.
func GregorianDate(jd float64) (year, month, day int) {
	// Richards' algorithm; every intermediate stays positive for the
	// supported year range so integer division is floor division.
	j := int64(math.Floor(jd + 0.5))
	f := j + 1401 + (((4*j+274277)/146097)*3)/4 - 38
	e := 4*f + 3
	g := (e % 1461) / 4
	h := 5*g + 2
	day = int((h%153)/5 + 1)
	month = int((h/153+2)%12 + 1)
	year = int(e/1461 - 4716 + (12+2-int64(month))/12)
	return year, month, day
}

// AddDays shifts a Julian Day by n whole days.
func AddDays(jd float64, n int) float64 {
	return jd + float64(n)
}

// JulianCentury returns Julian centuries since J2000.0.
func JulianCentury(jd float64) float64 {
	return (jd - J2000) / 36525.0
}

// UnixMidnight returns the Unix time of 0h UTC on the date whose midnight
// Julian Day is jd. The whole-day part is computed in integers so the
// result is exact.
func UnixMidnight(jd float64) int64 {
	jdn := int64(math.Floor(jd + 0.5))
	return (jdn - unixEpochJDN) * SecondsPerDay
}

// DateOfUnix returns the UTC calendar date containing sec.
func DateOfUnix(sec int64) (year, month, day int) {
	return GregorianDate(MidnightOfUnix(sec))
}

// MidnightOfUnix returns the Julian Day at 0h UTC of the date containing sec.
func MidnightOfUnix(sec int64) float64 {
	days := sec / SecondsPerDay
	if sec%SecondsPerDay < 0 {
		days--
	}
	return float64(days) + unixEpochJD
}

// -----------------------------
// Time relative to J2000
// -----------------------------

var j2000 = time.Date(2000, time.January, 1, 12, 0, 0, 0, time.UTC)

// DaysSinceJ2000 returns the number of (UTC) days since the J2000.0 epoch.
//
// This is an approximation suitable for low/medium-precision astronomy.
func DaysSinceJ2000(t time.Time) float64 {
	return t.UTC().Sub(j2000).Hours() / 24.0
}

// -----------------------------
// Basic degree/radian helpers and trig with degree inputs.
// -----------------------------

func Deg2Rad(d float64) float64 {
	return d * math.Pi / 180.0
}

func Rad2Deg(r float64) float64 {
	return r * 180.0 / math.Pi
}

func SinD(deg float64) float64 {
	return math.Sin(Deg2Rad(deg))
}

func CosD(deg float64) float64 {
	return math.Cos(Deg2Rad(deg))
}

func TanD(deg float64) float64 {
	return math.Tan(Deg2Rad(deg))
}

func Normalize360(d float64) float64 {
	d = math.Mod(d, 360.0)
	if d < 0 {
		d += 360.0
	}
	return d
}
