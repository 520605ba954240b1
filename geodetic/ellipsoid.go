// Package geodetic provides the reference-ellipsoid math behind the default
// instance orientation: when a tile carries no per-instance normals, each
// instance is oriented to the local east-north-up frame at its position.
package geodetic

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ellipsoid is a reference ellipsoid centered at the origin, axis-aligned,
// described by its three semi-axis radii.
type Ellipsoid struct {
	radii            mgl64.Vec3
	oneOverRadiiSqrd mgl64.Vec3
}

// WGS84 is the World Geodetic System 1984 ellipsoid.
var WGS84 = NewEllipsoid(6378137.0, 6378137.0, 6356752.3142451793)

// UnitSphere is a radius-1 sphere, convenient for local-space tilesets and
// tests.
var UnitSphere = NewEllipsoid(1, 1, 1)

// NewEllipsoid creates an ellipsoid with the given semi-axis radii.
func NewEllipsoid(x, y, z float64) Ellipsoid {
	return Ellipsoid{
		radii:            mgl64.Vec3{x, y, z},
		oneOverRadiiSqrd: mgl64.Vec3{1 / (x * x), 1 / (y * y), 1 / (z * z)},
	}
}

// Radii returns the semi-axis radii.
func (e Ellipsoid) Radii() mgl64.Vec3 {
	return e.radii
}

// SurfaceNormal returns the geodetic surface normal at the given fixed-frame
// position. The position does not need to lie on the surface; the normal of
// the scaled surface through it is returned.
func (e Ellipsoid) SurfaceNormal(position mgl64.Vec3) mgl64.Vec3 {
	n := mgl64.Vec3{
		position.X() * e.oneOverRadiiSqrd.X(),
		position.Y() * e.oneOverRadiiSqrd.Y(),
		position.Z() * e.oneOverRadiiSqrd.Z(),
	}
	if n.Len() == 0 {
		// Degenerate center-of-ellipsoid position; pick +z so callers still
		// get a valid frame.
		return mgl64.Vec3{0, 0, 1}
	}

	return n.Normalize()
}

// EastNorthUp returns the rotation from the local east-north-up frame at the
// given position to the fixed frame. The matrix columns are the east, north,
// and up axes, in that order; the result is orthonormal.
func (e Ellipsoid) EastNorthUp(position mgl64.Vec3) mgl64.Mat3 {
	up := e.SurfaceNormal(position)

	var east mgl64.Vec3
	if math.Abs(position.X()) < 1e-14 && math.Abs(position.Y()) < 1e-14 {
		// On the polar axis, east is undefined; fix it to +y as the limit of
		// approaching the pole along the prime meridian.
		east = mgl64.Vec3{0, 1, 0}
	} else {
		east = mgl64.Vec3{-position.Y(), position.X(), 0}.Normalize()
	}

	north := up.Cross(east)

	return mgl64.Mat3FromCols(east, north, up)
}
