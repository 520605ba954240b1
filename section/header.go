// Package section implements the fixed-size binary header of the
// instanced-model tile format.
//
// The header occupies the first 36 bytes of a tile and declares the byte
// lengths of the four variable-length sections and the model payload that
// follow it. All integer fields are unsigned 32-bit little-endian.
package section

import (
	"bytes"
	"fmt"

	"github.com/tilemesa/instile/endian"
	"github.com/tilemesa/instile/errs"
)

// TileHeader represents the fixed-size header at the start of an
// instanced-model tile.
type TileHeader struct {
	// ByteLength is the declared total tile length, including the header.
	// It is informational and not otherwise validated.
	ByteLength uint32 // byte offset 8-11
	// FeatureTableJSONLength is the feature table JSON section length.
	// A feature table is mandatory, so this is always > 0 in a valid tile.
	FeatureTableJSONLength uint32 // byte offset 12-15
	// FeatureTableBinaryLength is the feature table binary block length.
	FeatureTableBinaryLength uint32 // byte offset 16-19
	// BatchTableJSONLength is the batch table JSON section length, 0 if the
	// tile carries no batch table.
	BatchTableJSONLength uint32 // byte offset 20-23
	// BatchTableBinaryLength is the batch table binary block length. The
	// block is skipped, never parsed.
	BatchTableBinaryLength uint32 // byte offset 24-27
	// PayloadLength is the model payload length. An instance tile must
	// reference a renderable model, so this is always > 0 in a valid tile.
	PayloadLength uint32 // byte offset 28-31
	// PayloadFormat is PayloadFormatURI or PayloadFormatEmbedded.
	PayloadFormat uint32 // byte offset 32-35
}

// NewTileHeader creates a header for an embedded-payload tile. The section
// lengths are filled in by the encoder when the tile is assembled.
func NewTileHeader() *TileHeader {
	return &TileHeader{
		PayloadFormat: PayloadFormatEmbedded,
	}
}

// Parse parses and validates the header from a byte slice.
//
// Validation order follows the field order: magic tag, version, then the
// section lengths. The total byte length field is read but not validated.
//
// Returns:
//   - error: errs.ErrInvalidHeaderSize if data is shorter than HeaderSize,
//     errs.ErrInvalidMagic, errs.ErrUnsupportedVersion, errs.ErrMalformedTile
//     (zero-length mandatory section), or errs.ErrUnsupportedPayloadFormat
func (h *TileHeader) Parse(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: need %d bytes, have %d", errs.ErrInvalidHeaderSize, HeaderSize, len(data))
	}

	if !bytes.Equal(data[magicOffset:magicOffset+4], []byte(MagicTag)) {
		return fmt.Errorf("%w: %q", errs.ErrInvalidMagic, data[magicOffset:magicOffset+4])
	}

	engine := endian.Little()

	if v := engine.Uint32(data[versionOffset:]); v != Version {
		return fmt.Errorf("%w: version %d", errs.ErrUnsupportedVersion, v)
	}

	h.ByteLength = engine.Uint32(data[byteLengthOffset:])
	h.FeatureTableJSONLength = engine.Uint32(data[featureTableJSONLengthOffset:])
	h.FeatureTableBinaryLength = engine.Uint32(data[featureTableBinaryLengthOffset:])
	h.BatchTableJSONLength = engine.Uint32(data[batchTableJSONLengthOffset:])
	h.BatchTableBinaryLength = engine.Uint32(data[batchTableBinaryLengthOffset:])
	h.PayloadLength = engine.Uint32(data[payloadLengthOffset:])
	h.PayloadFormat = engine.Uint32(data[payloadFormatOffset:])

	if h.FeatureTableJSONLength == 0 {
		return fmt.Errorf("%w: feature table JSON length is zero", errs.ErrMalformedTile)
	}
	if h.PayloadLength == 0 {
		return fmt.Errorf("%w: payload length is zero", errs.ErrMalformedTile)
	}
	if h.PayloadFormat != PayloadFormatURI && h.PayloadFormat != PayloadFormatEmbedded {
		return fmt.Errorf("%w: %d", errs.ErrUnsupportedPayloadFormat, h.PayloadFormat)
	}

	return nil
}

// Bytes serializes the header into a new HeaderSize-byte slice.
func (h *TileHeader) Bytes() []byte {
	b := make([]byte, HeaderSize)
	engine := endian.Little()

	copy(b[magicOffset:], MagicTag)
	engine.PutUint32(b[versionOffset:], Version)
	engine.PutUint32(b[byteLengthOffset:], h.ByteLength)
	engine.PutUint32(b[featureTableJSONLengthOffset:], h.FeatureTableJSONLength)
	engine.PutUint32(b[featureTableBinaryLengthOffset:], h.FeatureTableBinaryLength)
	engine.PutUint32(b[batchTableJSONLengthOffset:], h.BatchTableJSONLength)
	engine.PutUint32(b[batchTableBinaryLengthOffset:], h.BatchTableBinaryLength)
	engine.PutUint32(b[payloadLengthOffset:], h.PayloadLength)
	engine.PutUint32(b[payloadFormatOffset:], h.PayloadFormat)

	return b
}

// SectionEnd returns the byte offset one past the end of the last declared
// section, i.e. HeaderSize plus all declared section lengths.
func (h *TileHeader) SectionEnd() int {
	return HeaderSize +
		int(h.FeatureTableJSONLength) + int(h.FeatureTableBinaryLength) +
		int(h.BatchTableJSONLength) + int(h.BatchTableBinaryLength) +
		int(h.PayloadLength)
}

// ParseTileHeader parses a TileHeader from a byte slice.
//
// Returns:
//   - TileHeader: Parsed header struct
//   - error: see TileHeader.Parse
func ParseTileHeader(data []byte) (TileHeader, error) {
	var h TileHeader
	if err := h.Parse(data); err != nil {
		return TileHeader{}, err
	}

	return h, nil
}
