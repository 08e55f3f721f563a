package geodesy

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// ErrShapeMismatch is returned when batch inputs have unequal lengths or a
// Cartesian point set does not have exactly three rows.
var ErrShapeMismatch = errors.New("shape mismatch")

// newtonIterations is the fixed number of Newton-Raphson steps used to
// recover latitude from Cartesian coordinates. There is no convergence
// test, so every point costs the same.
const newtonIterations = 6

// GeographicToCartesian converts latitude/longitude arrays to Earth-centred
// Cartesian coordinates on e. The result has three rows (x, y, z) of
// len(lat) columns.
func GeographicToCartesian(lat, long []float64, unit AngleUnit, e EllipsoidParameters) ([][]float64, error) {
	if len(lat) != len(long) {
		return nil, fmt.Errorf("%w: %d latitudes, %d longitudes", ErrShapeMismatch, len(lat), len(long))
	}
	ell := e.Params()

	xyz := [][]float64{
		make([]float64, len(lat)),
		make([]float64, len(lat)),
		make([]float64, len(lat)),
	}
	for i := range lat {
		v := ell.toCartesian(unit.toRadians(lat[i]), unit.toRadians(long[i]))
		xyz[0][i], xyz[1][i], xyz[2][i] = v.X, v.Y, v.Z
	}
	return xyz, nil
}

// CartesianToGeographic converts Earth-centred Cartesian coordinates on e
// back to latitude/longitude in the requested unit.
//
// Points on the polar axis (x = y = 0) have no defined longitude and make
// the latitude solver divide by zero; they come back as NaN or ±Inf rather
// than an error.
func CartesianToGeographic(x, y, z []float64, unit AngleUnit, e EllipsoidParameters) (lat, long []float64, err error) {
	if len(x) != len(y) || len(x) != len(z) {
		return nil, nil, fmt.Errorf("%w: x, y, z lengths %d, %d, %d", ErrShapeMismatch, len(x), len(y), len(z))
	}
	ell := e.Params()

	lat = make([]float64, len(x))
	long = make([]float64, len(x))
	for i := range x {
		phi, lambda := ell.toGeographic(r3.Vector{X: x[i], Y: y[i], Z: z[i]}, nil)
		lat[i] = unit.fromRadians(phi)
		long[i] = unit.fromRadians(lambda)
	}
	return lat, long, nil
}

// LatLngToVector converts a single geodetic coordinate to a Cartesian
// vector in meters on e.
func LatLngToVector(ll s2.LatLng, e EllipsoidParameters) r3.Vector {
	return e.Params().toCartesian(ll.Lat.Radians(), ll.Lng.Radians())
}

// VectorToLatLng is the inverse of LatLngToVector.
func VectorToLatLng(v r3.Vector, e EllipsoidParameters) s2.LatLng {
	lat, long := e.Params().toGeographic(v, nil)
	return s2.LatLng{Lat: s1.Angle(lat), Lng: s1.Angle(long)}
}

func (e Ellipsoid) toCartesian(lat, long float64) r3.Vector {
	sinLat, cosLat := math.Sincos(lat)
	sinLong, cosLong := math.Sincos(long)
	nu := e.primeVerticalRadius(sinLat)
	h := e.heightOffset

	return r3.Vector{
		X: (nu + h) * cosLat * cosLong,
		Y: (nu + h) * cosLat * sinLong,
		Z: ((1-e.e2)*nu + h) * sinLat,
	}
}

// toGeographic returns latitude and longitude in radians. If step is not
// nil it is called after every Newton-Raphson update.
func (e Ellipsoid) toGeographic(v r3.Vector, step func(i int, lat float64)) (lat, long float64) {
	p := math.Sqrt(v.X*v.X + v.Y*v.Y)
	long = math.Atan2(v.Y, v.X)
	lat = math.Atan2(v.Z, p*(1-e.e2))

	aF0 := e.a * e.scaleFactor
	for i := 0; i < newtonIterations; i++ {
		sinLat, cosLat := math.Sincos(lat)
		w := 1 - e.e2*sinLat*sinLat
		nu := aF0 / math.Sqrt(w)
		dnu := aF0 * e.e2 * sinLat * cosLat / math.Pow(w, 1.5)

		f0 := (v.Z+e.e2*nu*sinLat)/p - sinLat/cosLat
		f1 := e.e2*(dnu*sinLat+nu*cosLat)/p - 1/(cosLat*cosLat)
		lat -= f0 / f1

		if step != nil {
			step(i, lat)
		}
	}
	return lat, long
}
