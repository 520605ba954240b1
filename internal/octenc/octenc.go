// Package octenc implements 16-bit octahedral encoding of unit 3D vectors.
//
// A unit vector is projected onto the octahedron |x|+|y|+|z|=1, the lower
// half is folded onto the upper, and the result is stored as two fixed-point
// values in [0, 65535]. The decode side is the hot path: compressed normals
// in instanced-model tiles store up/right axes this way.
package octenc

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// maxRange is the largest value of one encoded component.
const maxRange = 65535.0

func signNotZero(v float64) float64 {
	if v < 0 {
		return -1.0
	}

	return 1.0
}

// Decode maps a 16-bit oct-encoded pair back to a unit vector.
// The result is always unit length, for any input pair in range.
func Decode(x, y uint16) mgl64.Vec3 {
	fx := float64(x)/maxRange*2.0 - 1.0
	fy := float64(y)/maxRange*2.0 - 1.0
	fz := 1.0 - (math.Abs(fx) + math.Abs(fy))

	if fz < 0 {
		oldX := fx
		fx = (1.0 - math.Abs(fy)) * signNotZero(oldX)
		fy = (1.0 - math.Abs(oldX)) * signNotZero(fy)
	}

	return mgl64.Vec3{fx, fy, fz}.Normalize()
}

// Encode maps a unit vector to its 16-bit oct-encoded pair.
func Encode(v mgl64.Vec3) (uint16, uint16) {
	sum := math.Abs(v.X()) + math.Abs(v.Y()) + math.Abs(v.Z())
	px := v.X() / sum
	py := v.Y() / sum

	if v.Z() < 0 {
		// Fold the lower hemisphere over the diagonals.
		oldX := px
		px = (1.0 - math.Abs(py)) * signNotZero(oldX)
		py = (1.0 - math.Abs(oldX)) * signNotZero(py)
	}

	toRange := func(f float64) uint16 {
		return uint16(math.Round((f*0.5 + 0.5) * maxRange))
	}

	return toRange(px), toRange(py)
}
