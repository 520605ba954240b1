// Package tile decodes instanced-model tiles: a fixed binary header, a
// feature table describing per-instance placement, an optional batch table,
// and a model payload (embedded bytes or an external URI).
//
// Decoding is fully synchronous and runs to completion once the byte buffer
// is available; a partially decoded tile is never observable. Any parse
// error aborts the whole tile.
package tile

import (
	"fmt"
	"strings"

	"github.com/tilemesa/instile/batchtable"
	"github.com/tilemesa/instile/errs"
	"github.com/tilemesa/instile/geodetic"
	"github.com/tilemesa/instile/internal/options"
	"github.com/tilemesa/instile/proptable"
	"github.com/tilemesa/instile/section"
)

// Tile is one decoded instanced-model tile. All fields are populated by
// Decode and never mutated afterward.
type Tile struct {
	Header    section.TileHeader
	Features  *proptable.Table
	Batch     *batchtable.Table
	Instances []Instance

	// Payload holds the embedded model bytes when Header.PayloadFormat is
	// PayloadFormatEmbedded, nil otherwise.
	Payload []byte
	// PayloadURI holds the external model URI when Header.PayloadFormat is
	// PayloadFormatURI, empty otherwise.
	PayloadURI string
}

type decodeConfig struct {
	ellipsoid geodetic.Ellipsoid
}

// Option configures Decode.
type Option = options.Option[*decodeConfig]

// WithEllipsoid sets the reference ellipsoid for the derived east-north-up
// orientation fallback. Defaults to WGS84.
func WithEllipsoid(e geodetic.Ellipsoid) Option {
	return options.NoError(func(cfg *decodeConfig) {
		cfg.ellipsoid = e
	})
}

// Decode decodes a complete tile from data.
//
// Returns:
//   - *Tile: decoded tile
//   - error: header validation errors (see section.TileHeader.Parse),
//     errs.ErrMalformedTile when the declared sections exceed the data,
//     feature table errors, and instance construction errors
//     (errs.ErrMissingRequiredProperty, errs.ErrInconsistentOrientation)
func Decode(data []byte, opts ...Option) (*Tile, error) {
	cfg := &decodeConfig{ellipsoid: geodetic.WGS84}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	header, err := section.ParseTileHeader(data)
	if err != nil {
		return nil, err
	}
	if header.SectionEnd() > len(data) {
		return nil, fmt.Errorf("%w: sections end at byte %d but tile holds %d bytes",
			errs.ErrMalformedTile, header.SectionEnd(), len(data))
	}

	cursor := section.HeaderSize
	next := func(length uint32) []byte {
		s := data[cursor : cursor+int(length)]
		cursor += int(length)

		return s
	}

	featureJSON := next(header.FeatureTableJSONLength)
	featureBinary := next(header.FeatureTableBinaryLength)
	batchJSON := next(header.BatchTableJSONLength)
	next(header.BatchTableBinaryLength) // batch table binary: skipped, never parsed
	payload := next(header.PayloadLength)

	features, err := proptable.New(featureJSON, featureBinary)
	if err != nil {
		return nil, err
	}

	instances, err := BuildInstances(features, cfg.ellipsoid)
	if err != nil {
		return nil, err
	}

	batch, err := batchtable.Parse(batchJSON, len(instances))
	if err != nil {
		return nil, err
	}

	t := &Tile{
		Header:    header,
		Features:  features,
		Batch:     batch,
		Instances: instances,
	}
	if header.PayloadFormat == section.PayloadFormatURI {
		// URI payloads are NUL-padded to their section length.
		t.PayloadURI = strings.TrimSpace(strings.TrimRight(string(payload), "\x00"))
	} else {
		t.Payload = payload
	}

	return t, nil
}
