package geodesy_test

import (
	"math"
	"testing"

	"github.com/golang/geo/s1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzneal/geodesy"
)

func TestNewEllipsoid(t *testing.T) {
	e, err := geodesy.NewEllipsoid(6378137, 6356752.3142, 0.9996)
	require.NoError(t, err)

	assert.Equal(t, 6378137.0, e.A())
	assert.Equal(t, 6356752.3142, e.B())
	assert.InDelta(t, 0.0016792203899373642, e.N(), 1e-18)
	assert.InDelta(t, 0.006694380004260827, e.E2(), 1e-17)
	assert.Equal(t, 0.9996, e.ScaleFactor())
	assert.Equal(t, 0.0, e.HeightOffset())
	assert.InDelta(t, 1/298.257223563, e.Flattening(), 1e-10)
	assert.Equal(t, e, e.Params())
}

func TestNewEllipsoid_DefaultScale(t *testing.T) {
	e, err := geodesy.NewEllipsoid(6378137, 6356752.3142, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, e.ScaleFactor())
}

func TestNewEllipsoid_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		a, b, s float64
	}{
		{"zero minor", 6378137, 0, 1},
		{"negative minor", 6378137, -1, 1},
		{"sphere", 6378137, 6378137, 1},
		{"prolate", 6356752, 6378137, 1},
		{"infinite major", math.Inf(1), 6356752, 1},
		{"NaN major", math.NaN(), 6356752, 1},
		{"negative scale", 6378137, 6356752, -1},
		{"infinite scale", 6378137, 6356752, math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := geodesy.NewEllipsoid(tt.a, tt.b, tt.s)
			assert.Error(t, err)
		})
	}
}

func TestNewDatum(t *testing.T) {
	e, err := geodesy.NewEllipsoid(6377563.396, 6356256.910, 0.9996012717)
	require.NoError(t, err)

	d, err := geodesy.NewDatum(e, 24.7, geodesy.Origin{
		Lat:           49 * s1.Degree,
		Long:          358 * s1.Degree,
		FalseEasting:  400000,
		FalseNorthing: -100000,
	})
	require.NoError(t, err)

	assert.Equal(t, 24.7, d.HeightOffset())
	assert.Equal(t, 24.7, d.Params().HeightOffset())
	assert.Equal(t, 0.0, e.HeightOffset(), "source ellipsoid is not modified")
	assert.InDelta(t, -2, d.Origin().Long.Degrees(), 1e-12)
	assert.Equal(t, 400000.0, d.Origin().FalseEasting)
}

func TestNewDatum_Invalid(t *testing.T) {
	e := geodesy.WGS84()
	tests := []struct {
		name   string
		e      geodesy.Ellipsoid
		h      float64
		origin geodesy.Origin
	}{
		{"zero ellipsoid", geodesy.Ellipsoid{}, 0, geodesy.Origin{}},
		{"NaN height", e, math.NaN(), geodesy.Origin{}},
		{"infinite height", e, math.Inf(-1), geodesy.Origin{}},
		{"latitude", e, 0, geodesy.Origin{Lat: 91 * s1.Degree}},
		{"longitude", e, 0, geodesy.Origin{Long: -181 * s1.Degree}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := geodesy.NewDatum(tt.e, tt.h, tt.origin)
			assert.Error(t, err)
		})
	}
}

func TestReferenceBodies(t *testing.T) {
	w := geodesy.WGS84()
	assert.Equal(t, 6378137.0, w.A())
	assert.Equal(t, 0.9996, w.ScaleFactor())

	o := geodesy.OSGB36()
	assert.Equal(t, 6377563.396, o.A())
	assert.Equal(t, 6356256.910, o.B())
	assert.Equal(t, 0.9996012717, o.ScaleFactor())
	assert.Equal(t, 24.7, o.HeightOffset())
	assert.InDelta(t, 49, o.Origin().Lat.Degrees(), 1e-12)
	assert.InDelta(t, -2, o.Origin().Long.Degrees(), 1e-12)
	assert.Equal(t, 400000.0, o.Origin().FalseEasting)
	assert.Equal(t, -100000.0, o.Origin().FalseNorthing)

	airy := geodesy.Airy1830()
	assert.Equal(t, o.A(), airy.A())
	assert.Equal(t, o.B(), airy.B())
	assert.Equal(t, o.ScaleFactor(), airy.ScaleFactor())
	assert.Zero(t, airy.HeightOffset())
}
