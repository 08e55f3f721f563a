package geodesy

import (
	"errors"
	"math"

	"github.com/golang/geo/s1"
)

// EllipsoidParameters is implemented by anything that carries the shape of
// a reference ellipsoid. Both Ellipsoid and Datum satisfy it, so every
// converter in this package accepts either.
type EllipsoidParameters interface {
	Params() Ellipsoid
}

// Ellipsoid describes a terrestrial reference ellipsoid. The derived
// quantities are computed once by NewEllipsoid and an Ellipsoid value is
// never modified afterwards.
type Ellipsoid struct {
	a            float64 // semi-major axis in meters
	b            float64 // semi-minor axis in meters
	n            float64 // (a-b)/(a+b)
	e2           float64 // eccentricity squared
	scaleFactor  float64 // F0
	heightOffset float64 // H, zero for a bare ellipsoid
}

// NewEllipsoid constructs an ellipsoid from its semi-major and semi-minor
// axes (meters) and a scale factor. A zero scale factor means unset and is
// treated as 1.
func NewEllipsoid(semiMajorAxis, semiMinorAxis, scaleFactor float64) (Ellipsoid, error) {
	if !(semiMinorAxis > 0) {
		return Ellipsoid{}, errors.New("semi-minor axis must be greater than zero")
	}
	if !(semiMajorAxis > semiMinorAxis) || math.IsInf(semiMajorAxis, 0) {
		return Ellipsoid{}, errors.New("semi-major axis must be greater than semi-minor axis")
	}
	if scaleFactor == 0 {
		scaleFactor = 1
	}
	if !(scaleFactor > 0) || math.IsInf(scaleFactor, 0) {
		return Ellipsoid{}, errors.New("scale factor out of range")
	}

	a, b := semiMajorAxis, semiMinorAxis
	return Ellipsoid{
		a:           a,
		b:           b,
		n:           (a - b) / (a + b),
		e2:          (a*a - b*b) / (a * a),
		scaleFactor: scaleFactor,
	}, nil
}

// Params returns the ellipsoid itself.
func (e Ellipsoid) Params() Ellipsoid { return e }

// A returns the semi-major axis in meters.
func (e Ellipsoid) A() float64 { return e.a }

// B returns the semi-minor axis in meters.
func (e Ellipsoid) B() float64 { return e.b }

// N returns (a-b)/(a+b).
func (e Ellipsoid) N() float64 { return e.n }

// E2 returns the eccentricity squared.
func (e Ellipsoid) E2() float64 { return e.e2 }

// ScaleFactor returns F0.
func (e Ellipsoid) ScaleFactor() float64 { return e.scaleFactor }

// HeightOffset returns the height added to the prime vertical radius when
// converting to Cartesian coordinates.
func (e Ellipsoid) HeightOffset() float64 { return e.heightOffset }

// Flattening returns (a-b)/a.
func (e Ellipsoid) Flattening() float64 { return (e.a - e.b) / e.a }

// primeVerticalRadius is nu, the radius of curvature perpendicular to the
// meridian, scaled by F0.
func (e Ellipsoid) primeVerticalRadius(sinLat float64) float64 {
	return e.a * e.scaleFactor / math.Sqrt(1-e.e2*sinLat*sinLat)
}

// meridionalRadius is rho, the radius of curvature along the meridian,
// scaled by F0.
func (e Ellipsoid) meridionalRadius(sinLat float64) float64 {
	return e.a * e.scaleFactor * (1 - e.e2) / math.Pow(1-e.e2*sinLat*sinLat, 1.5)
}

// Origin holds the projection origin of a datum.
type Origin struct {
	Lat           s1.Angle // true origin latitude
	Long          s1.Angle // true origin longitude (central meridian)
	FalseEasting  float64  // meters
	FalseNorthing float64  // meters
}

// Datum is an ellipsoid anchored to a projection origin with a fixed
// height offset, as used for national grid projections.
type Datum struct {
	Ellipsoid
	origin Origin
}

// NewDatum constructs a datum on top of e.
func NewDatum(e Ellipsoid, heightOffset float64, origin Origin) (Datum, error) {
	if e.a == 0 {
		return Datum{}, errors.New("datum requires a constructed ellipsoid")
	}
	if math.IsNaN(heightOffset) || math.IsInf(heightOffset, 0) {
		return Datum{}, errors.New("height offset out of range")
	}
	if origin.Lat < -math.Pi/2 || origin.Lat > math.Pi/2 {
		return Datum{}, errors.New("origin latitude out of range")
	}
	if origin.Long < -math.Pi || origin.Long > 2*math.Pi {
		return Datum{}, errors.New("origin longitude out of range")
	}
	if origin.Long > math.Pi {
		origin.Long -= 2 * math.Pi
	}

	e.heightOffset = heightOffset
	return Datum{Ellipsoid: e, origin: origin}, nil
}

// Origin returns the projection origin.
func (d Datum) Origin() Origin { return d.origin }
