package tile

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/tilemesa/instile/errs"
	"github.com/tilemesa/instile/geodetic"
	"github.com/tilemesa/instile/internal/octenc"
	"github.com/tilemesa/instile/proptable"
)

// Feature table property names consumed by the instance builder.
const (
	PropInstancesLength       = "INSTANCES_LENGTH"
	PropPosition              = "POSITION"
	PropPositionQuantized     = "POSITION_QUANTIZED"
	PropQuantizedVolumeOffset = "QUANTIZED_VOLUME_OFFSET"
	PropQuantizedVolumeScale  = "QUANTIZED_VOLUME_SCALE"
	PropNormalUp              = "NORMAL_UP"
	PropNormalRight           = "NORMAL_RIGHT"
	PropNormalUpOct           = "NORMAL_UP_OCT32P"
	PropNormalRightOct        = "NORMAL_RIGHT_OCT32P"
	PropScale                 = "SCALE"
	PropScaleNonUniform       = "SCALE_NON_UNIFORM"
	PropBatchID               = "BATCH_ID"
	PropRTCCenter             = "RTC_CENTER"
	PropEastNorthUp           = "EAST_NORTH_UP"
)

// quantizedRange is the largest value of one quantized position component.
const quantizedRange = 65535.0

// maxInstanceCount bounds INSTANCES_LENGTH to what a uint32 batch id space
// can address. Counts beyond it are tile corruption, not real data.
const maxInstanceCount = math.MaxUint32

// preallocCap caps the speculative slice capacity taken from the declared
// count, so a hostile count cannot commit memory before the per-instance
// reads get a chance to fail on missing data.
const preallocCap = 4096

// Instance is one placement of the shared model: a composed world transform
// and the batch id that keys the instance's per-feature attributes.
type Instance struct {
	// Transform folds translation, rotation, and scale into a single
	// column-major 4x4 matrix (T * R * S).
	Transform mgl64.Mat4
	// BatchID defaults to the instance's own index when the tile declares no
	// BATCH_ID property. Ids need not be unique or contiguous.
	BatchID uint32
}

// builder resolves per-instance properties for one tile. The presence flags
// are computed once so the per-instance loop is a straight decode.
type builder struct {
	ft        *proptable.Table
	ellipsoid geodetic.Ellipsoid

	hasPosition   bool
	hasQuantized  bool
	volumeOffset  []float64
	volumeScale   []float64
	hasNormals    bool
	hasOctNormals bool
	enuDisabled   bool
	rtcCenter     mgl64.Vec3
}

// BuildInstances decodes all instances declared by the feature table.
//
// The instance count comes from the mandatory INSTANCES_LENGTH property; a
// count of zero yields an empty slice without error. Any missing required
// property aborts the whole build: a partially populated instance array
// would corrupt downstream indexing.
//
// Returns:
//   - []Instance: exactly INSTANCES_LENGTH entries
//   - error: errs.ErrMalformedTile, errs.ErrMissingRequiredProperty,
//     errs.ErrInconsistentOrientation
func BuildInstances(ft *proptable.Table, ellipsoid geodetic.Ellipsoid) ([]Instance, error) {
	b := &builder{ft: ft, ellipsoid: ellipsoid}

	countVal, ok := ft.GetGlobalProperty(PropInstancesLength, proptable.UnsignedInt, 1)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrMissingRequiredProperty, PropInstancesLength)
	}
	rawCount := countVal[0]
	if rawCount < 0 || rawCount != math.Trunc(rawCount) || rawCount > maxInstanceCount {
		return nil, fmt.Errorf("%w: %s %v is not a valid instance count",
			errs.ErrMalformedTile, PropInstancesLength, rawCount)
	}
	count := int(rawCount)

	if err := b.resolvePositionEncoding(); err != nil {
		return nil, err
	}
	if err := b.resolveOrientationEncoding(); err != nil {
		return nil, err
	}
	if rtc, ok := ft.GetGlobalProperty(PropRTCCenter, proptable.Float, 3); ok {
		b.rtcCenter = mgl64.Vec3{rtc[0], rtc[1], rtc[2]}
	}

	instances := make([]Instance, 0, min(count, preallocCap))
	for i := 0; i < count; i++ {
		instance, err := b.build(i)
		if err != nil {
			return nil, err
		}
		instances = append(instances, instance)
	}

	return instances, nil
}

// resolvePositionEncoding picks the position encoding for the tile. The
// quantization volume is mandatory iff quantized positions are the active
// encoding.
func (b *builder) resolvePositionEncoding() error {
	b.hasPosition = b.ft.Has(PropPosition)
	b.hasQuantized = b.ft.Has(PropPositionQuantized)

	if b.hasPosition {
		return nil
	}
	if !b.hasQuantized {
		return fmt.Errorf("%w: either %s or %s", errs.ErrMissingRequiredProperty,
			PropPosition, PropPositionQuantized)
	}

	var ok bool
	b.volumeOffset, ok = b.ft.GetGlobalProperty(PropQuantizedVolumeOffset, proptable.Float, 3)
	if !ok {
		return fmt.Errorf("%w: %s is required for quantized positions",
			errs.ErrMissingRequiredProperty, PropQuantizedVolumeOffset)
	}
	b.volumeScale, ok = b.ft.GetGlobalProperty(PropQuantizedVolumeScale, proptable.Float, 3)
	if !ok {
		return fmt.Errorf("%w: %s is required for quantized positions",
			errs.ErrMissingRequiredProperty, PropQuantizedVolumeScale)
	}

	return nil
}

// resolveOrientationEncoding validates that up/right normals come in pairs,
// explicit or oct-encoded.
func (b *builder) resolveOrientationEncoding() error {
	hasUp := b.ft.Has(PropNormalUp)
	hasRight := b.ft.Has(PropNormalRight)
	if hasUp != hasRight {
		return fmt.Errorf("%w: %s and %s must be given together",
			errs.ErrInconsistentOrientation, PropNormalUp, PropNormalRight)
	}
	b.hasNormals = hasUp

	hasUpOct := b.ft.Has(PropNormalUpOct)
	hasRightOct := b.ft.Has(PropNormalRightOct)
	if hasUpOct != hasRightOct {
		return fmt.Errorf("%w: %s and %s must be given together",
			errs.ErrInconsistentOrientation, PropNormalUpOct, PropNormalRightOct)
	}
	b.hasOctNormals = hasUpOct

	// EAST_NORTH_UP opts the tile out of the derived orientation frame when
	// declared false. Per-instance normals always take precedence, so the
	// flag only matters for tiles that declare no normals at all.
	if enu, declared := b.ft.GetGlobalBool(PropEastNorthUp); declared && !enu {
		b.enuDisabled = true
	}

	return nil
}

func (b *builder) build(i int) (Instance, error) {
	position, err := b.position(i)
	if err != nil {
		return Instance{}, err
	}

	rotation, err := b.rotation(i, position)
	if err != nil {
		return Instance{}, err
	}

	scale := b.scale(i)

	batchID := uint32(i)
	if id, ok := b.ft.GetProperty(PropBatchID, i, proptable.UnsignedShort, 1); ok {
		batchID = uint32(id[0])
	}

	// Standard TRS composition: scale, then rotate, then translate.
	transform := mgl64.Translate3D(position.X(), position.Y(), position.Z()).
		Mul4(rotation.Mat4()).
		Mul4(mgl64.Scale3D(scale.X(), scale.Y(), scale.Z()))

	return Instance{Transform: transform, BatchID: batchID}, nil
}

func (b *builder) position(i int) (mgl64.Vec3, error) {
	if b.hasPosition {
		p, ok := b.ft.GetProperty(PropPosition, i, proptable.Float, 3)
		if !ok {
			return mgl64.Vec3{}, fmt.Errorf("%w: %s for instance %d",
				errs.ErrMissingRequiredProperty, PropPosition, i)
		}

		return mgl64.Vec3{p[0], p[1], p[2]}.Add(b.rtcCenter), nil
	}

	q, ok := b.ft.GetProperty(PropPositionQuantized, i, proptable.UnsignedShort, 3)
	if !ok {
		return mgl64.Vec3{}, fmt.Errorf("%w: %s for instance %d",
			errs.ErrMissingRequiredProperty, PropPositionQuantized, i)
	}

	var p mgl64.Vec3
	for a := 0; a < 3; a++ {
		p[a] = q[a]/quantizedRange*b.volumeScale[a] + b.volumeOffset[a]
	}

	return p.Add(b.rtcCenter), nil
}

// rotation resolves the instance orientation with the priority chain:
// explicit normals, oct-encoded normals, derived east-north-up frame.
func (b *builder) rotation(i int, position mgl64.Vec3) (mgl64.Quat, error) {
	switch {
	case b.hasNormals:
		upVal, okUp := b.ft.GetProperty(PropNormalUp, i, proptable.Float, 3)
		rightVal, okRight := b.ft.GetProperty(PropNormalRight, i, proptable.Float, 3)
		if !okUp || !okRight {
			return mgl64.Quat{}, fmt.Errorf("%w: %s/%s for instance %d",
				errs.ErrMissingRequiredProperty, PropNormalUp, PropNormalRight, i)
		}
		up := mgl64.Vec3{upVal[0], upVal[1], upVal[2]}
		right := mgl64.Vec3{rightVal[0], rightVal[1], rightVal[2]}

		return rotationFromAxes(right, up), nil

	case b.hasOctNormals:
		upVal, okUp := b.ft.GetProperty(PropNormalUpOct, i, proptable.UnsignedShort, 2)
		rightVal, okRight := b.ft.GetProperty(PropNormalRightOct, i, proptable.UnsignedShort, 2)
		if !okUp || !okRight {
			return mgl64.Quat{}, fmt.Errorf("%w: %s/%s for instance %d",
				errs.ErrMissingRequiredProperty, PropNormalUpOct, PropNormalRightOct, i)
		}
		up := octenc.Decode(uint16(upVal[0]), uint16(upVal[1]))
		right := octenc.Decode(uint16(rightVal[0]), uint16(rightVal[1]))

		return rotationFromAxes(right, up), nil

	default:
		if b.enuDisabled {
			return mgl64.QuatIdent(), nil
		}

		// Local east-north-up frame at the instance position on the
		// reference ellipsoid.
		enu := b.ellipsoid.EastNorthUp(position)

		return mgl64.Mat4ToQuat(enu.Mat4()), nil
	}
}

// rotationFromAxes builds the rotation whose columns are right, up, and the
// cross-derived forward axis, then converts it to a unit quaternion.
func rotationFromAxes(right, up mgl64.Vec3) mgl64.Quat {
	forward := right.Cross(up).Normalize()
	rot := mgl64.Mat3FromCols(right, up, forward)

	return mgl64.Mat4ToQuat(rot.Mat4())
}

// scale starts from unit scale, applies the uniform SCALE factor if present,
// then the per-axis SCALE_NON_UNIFORM factors if present. Both may apply.
func (b *builder) scale(i int) mgl64.Vec3 {
	scale := mgl64.Vec3{1, 1, 1}

	if s, ok := b.ft.GetProperty(PropScale, i, proptable.Float, 1); ok {
		scale = scale.Mul(s[0])
	}
	if s, ok := b.ft.GetProperty(PropScaleNonUniform, i, proptable.Float, 3); ok {
		scale = mgl64.Vec3{scale.X() * s[0], scale.Y() * s[1], scale.Z() * s[2]}
	}

	return scale
}
