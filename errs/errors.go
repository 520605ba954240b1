// Package errs defines the sentinel error values shared across instile packages.
//
// All parse-time and lifecycle errors wrap one of these sentinels, so callers
// can classify failures with errors.Is regardless of the contextual detail
// added at the failure site:
//
//	tile, err := tile.Decode(data)
//	if errors.Is(err, errs.ErrInvalidMagic) {
//	    // not an instanced-model tile at all
//	}
package errs

import "errors"

// Header and section errors.
var (
	// ErrInvalidHeaderSize indicates the buffer is too short to contain the
	// fixed-size tile header.
	ErrInvalidHeaderSize = errors.New("invalid tile header size")

	// ErrInvalidMagic indicates the 4-byte magic tag does not identify an
	// instanced-model tile.
	ErrInvalidMagic = errors.New("invalid tile magic tag")

	// ErrUnsupportedVersion indicates the tile declares a format version this
	// library does not implement.
	ErrUnsupportedVersion = errors.New("unsupported tile format version")

	// ErrMalformedTile indicates a mandatory section has zero length or the
	// declared section lengths exceed the available data.
	ErrMalformedTile = errors.New("malformed tile")

	// ErrUnsupportedPayloadFormat indicates the payload format field is
	// neither external-URI (0) nor embedded (1).
	ErrUnsupportedPayloadFormat = errors.New("unsupported payload format")
)

// Feature table and instance construction errors.
var (
	// ErrMissingRequiredProperty indicates a mandatory feature table property
	// is absent.
	ErrMissingRequiredProperty = errors.New("missing required feature table property")

	// ErrInconsistentOrientation indicates exactly one of an up/right normal
	// property pair is present.
	ErrInconsistentOrientation = errors.New("inconsistent orientation properties")

	// ErrInvalidPropertyType indicates a feature table property declares an
	// unknown component type.
	ErrInvalidPropertyType = errors.New("invalid feature table component type")
)

// Content lifecycle errors.
var (
	// ErrIndexOutOfRange indicates a feature lookup with a batch id outside
	// [0, featuresLength).
	ErrIndexOutOfRange = errors.New("batch id out of range")

	// ErrFetchFailed wraps a transport-level failure of the tile fetch.
	ErrFetchFailed = errors.New("tile fetch failed")

	// ErrContentDestroyed indicates the tile content was destroyed while an
	// operation was outstanding; the operation's result is discarded.
	ErrContentDestroyed = errors.New("tile content destroyed")

	// ErrModelFailed wraps a failure of the instanced model's own setup.
	ErrModelFailed = errors.New("instanced model setup failed")
)
