package geodesy

import (
	"math"

	"github.com/golang/geo/s1"
)

// AngleUnit says whether bare angle values are degrees or radians.
type AngleUnit byte

// AngleUnit constants
const (
	Degrees AngleUnit = iota
	Radians
)

func (u AngleUnit) String() string {
	switch u {
	case Degrees:
		return "degrees"
	case Radians:
		return "radians"
	}
	return "invalid"
}

func (u AngleUnit) toRadians(v float64) float64 {
	if u == Radians {
		return v
	}
	return ToRadians(v, 0, 0)
}

func (u AngleUnit) fromRadians(v float64) float64 {
	if u == Radians {
		return v
	}
	return ToDegrees(v)
}

// ToRadians converts degrees, minutes and seconds of arc to radians.
func ToRadians(degrees, minutes, seconds float64) float64 {
	return (s1.Angle(degrees+minutes/60+seconds/3600) * s1.Degree).Radians()
}

// ToDegrees converts radians to decimal degrees.
func ToDegrees(radians float64) float64 {
	return s1.Angle(radians).Degrees()
}

// DMS is an angle split into whole degrees, whole minutes and seconds.
// Degrees is floored, so -1.5° is -2° 30′ 0″ and ToRadians(d.Degrees,
// d.Minutes, d.Seconds) recovers the angle.
type DMS struct {
	Degrees float64
	Minutes float64
	Seconds float64
}

// ToDMS converts radians to degrees, minutes and seconds. Seconds are
// rounded to four decimal places.
func ToDMS(radians float64) DMS {
	d := ToDegrees(radians)
	m := 60 * (d - math.Floor(d))
	dms := DMS{
		Degrees: math.Floor(d),
		Minutes: math.Floor(m),
		Seconds: math.Round(60*(m-math.Floor(m))*1e4) / 1e4,
	}
	// rounding can push seconds up to a whole minute
	if dms.Seconds >= 60 {
		dms.Seconds -= 60
		dms.Minutes++
	}
	if dms.Minutes >= 60 {
		dms.Minutes -= 60
		dms.Degrees++
	}
	return dms
}
