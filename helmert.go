package geodesy

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Matrix3 is a row-major 3x3 matrix.
type Matrix3 [3][3]float64

// MulVec returns m·v.
func (m Matrix3) MulVec(v r3.Vector) r3.Vector {
	return r3.Vector{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Helmert is a seven parameter similarity transform between two Cartesian
// reference frames.
//
// The rotation is the small-angle linearisation I + S with
//
//	S = | s   -rz  ry |
//	    | rz   s  -rx |
//	    | -ry  rx  s  |
//
// which is only valid for rotations well under an arc-second. The inverse
// transform is not derived from this one; build it from its own published
// parameters.
type Helmert struct {
	translation r3.Vector
	rotation    Matrix3
}

// NewHelmert constructs a transform from a dimensionless scale s, rotations
// rx, ry, rz in radians and a translation in meters.
func NewHelmert(s, rx, ry, rz float64, translation r3.Vector) Helmert {
	return Helmert{
		translation: translation,
		rotation: Matrix3{
			{1 + s, -rz, ry},
			{rz, 1 + s, -rx},
			{-ry, rx, 1 + s},
		},
	}
}

// Translation returns the translation vector in meters.
func (h Helmert) Translation() r3.Vector { return h.translation }

// Rotation returns I + S.
func (h Helmert) Rotation() Matrix3 { return h.rotation }

// ApplyVector transforms a single point.
func (h Helmert) ApplyVector(v r3.Vector) r3.Vector {
	return h.translation.Add(h.rotation.MulVec(v))
}

// Apply transforms a 3×N point set (rows x, y, z) and returns a new 3×N
// point set.
func (h Helmert) Apply(points [][]float64) ([][]float64, error) {
	if len(points) != 3 {
		return nil, fmt.Errorf("%w: point set has %d rows, want 3", ErrShapeMismatch, len(points))
	}
	n := len(points[0])
	if len(points[1]) != n || len(points[2]) != n {
		return nil, fmt.Errorf("%w: rows have lengths %d, %d, %d",
			ErrShapeMismatch, len(points[0]), len(points[1]), len(points[2]))
	}

	out := [][]float64{
		make([]float64, n),
		make([]float64, n),
		make([]float64, n),
	}
	for i := 0; i < n; i++ {
		v := h.ApplyVector(r3.Vector{X: points[0][i], Y: points[1][i], Z: points[2][i]})
		out[0][i], out[1][i], out[2][i] = v.X, v.Y, v.Z
	}
	return out, nil
}
