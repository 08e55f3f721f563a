package geodesy_test

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzneal/geodesy"
)

func TestHelmertIdentity(t *testing.T) {
	h := geodesy.NewHelmert(0, 0, 0, 0, r3.Vector{})
	points := [][]float64{
		{3932787.4086929862, 1, -6378137},
		{-68647.05956761267, 2, 0},
		{5000802.224095373, 3, 0.5},
	}
	out, err := h.Apply(points)
	require.NoError(t, err)
	assert.Equal(t, points, out)
}

func TestHelmertMatrix(t *testing.T) {
	h := geodesy.NewHelmert(2e-6, 1e-6, 3e-6, 5e-6, r3.Vector{X: 1, Y: 2, Z: 3})
	want := geodesy.Matrix3{
		{1 + 2e-6, -5e-6, 3e-6},
		{5e-6, 1 + 2e-6, -1e-6},
		{-3e-6, 1e-6, 1 + 2e-6},
	}
	assert.Equal(t, want, h.Rotation())
	assert.Equal(t, r3.Vector{X: 1, Y: 2, Z: 3}, h.Translation())

	got := h.ApplyVector(r3.Vector{X: 1e6})
	assert.InDelta(t, 1+1e6*(1+2e-6), got.X, 1e-9)
	assert.InDelta(t, 2+5, got.Y, 1e-9)
	assert.InDelta(t, 3-3, got.Z, 1e-9)
}

func TestHelmertApplyMatchesVector(t *testing.T) {
	h := geodesy.WGS84ToOSGB36()
	v := r3.Vector{X: 3932787.4086929862, Y: -68647.05956761267, Z: 5000802.224095373}
	out, err := h.Apply([][]float64{{v.X}, {v.Y}, {v.Z}})
	require.NoError(t, err)

	want := h.ApplyVector(v)
	assert.Equal(t, want.X, out[0][0])
	assert.Equal(t, want.Y, out[1][0])
	assert.Equal(t, want.Z, out[2][0])

	assert.InDelta(t, 583.0646, want.Sub(v).Norm(), 1e-3)
}

func TestHelmertInverse(t *testing.T) {
	v := r3.Vector{X: 3932787.4086929862, Y: -68647.05956761267, Z: 5000802.224095373}
	back := geodesy.OSGB36ToWGS84().ApplyVector(geodesy.WGS84ToOSGB36().ApplyVector(v))
	// negated parameters only invert to first order
	assert.InDelta(t, 0.0121, back.Sub(v).Norm(), 1e-3)
}

func TestHelmertShapeMismatch(t *testing.T) {
	h := geodesy.WGS84ToOSGB36()
	_, err := h.Apply([][]float64{{1}, {2}})
	assert.ErrorIs(t, err, geodesy.ErrShapeMismatch)
	_, err = h.Apply([][]float64{{1}, {2, 3}, {4}})
	assert.ErrorIs(t, err, geodesy.ErrShapeMismatch)
}

func TestMatrix3MulVec(t *testing.T) {
	m := geodesy.Matrix3{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	assert.Equal(t, r3.Vector{X: 14, Y: 32, Z: 50}, m.MulVec(r3.Vector{X: 1, Y: 2, Z: 3}))
}
