package tile

import (
	"fmt"

	"github.com/tilemesa/instile/section"
)

// EncodeInput names the sections of a tile to assemble. FeatureTableJSON and
// either Payload or PayloadURI are mandatory; everything else may be empty.
type EncodeInput struct {
	FeatureTableJSON   []byte
	FeatureTableBinary []byte
	BatchTableJSON     []byte
	BatchTableBinary   []byte
	Payload            []byte
	PayloadURI         string
}

// jsonBoundary is the alignment of the JSON sections; producers pad them
// with trailing spaces so binary blocks start type-aligned.
const jsonBoundary = 8

func padJSON(data []byte, offset int) []byte {
	if len(data) == 0 {
		return data
	}
	for (offset+len(data))%jsonBoundary != 0 {
		data = append(data, ' ')
	}

	return data
}

// Encode assembles a complete tile from its sections. It is the inverse of
// Decode and exists for tooling and test fixtures.
//
// Returns:
//   - []byte: tile bytes starting with the fixed header
//   - error: missing feature table JSON or payload
func Encode(in EncodeInput) ([]byte, error) {
	if len(in.FeatureTableJSON) == 0 {
		return nil, fmt.Errorf("encode: feature table JSON is mandatory")
	}
	if len(in.Payload) == 0 && in.PayloadURI == "" {
		return nil, fmt.Errorf("encode: a payload or payload URI is mandatory")
	}

	payload := in.Payload
	format := section.PayloadFormatEmbedded
	if len(payload) == 0 {
		payload = []byte(in.PayloadURI)
		format = section.PayloadFormatURI
	}

	featureJSON := padJSON(in.FeatureTableJSON, section.HeaderSize)
	batchJSON := padJSON(in.BatchTableJSON,
		section.HeaderSize+len(featureJSON)+len(in.FeatureTableBinary))

	header := section.TileHeader{
		FeatureTableJSONLength:   uint32(len(featureJSON)),
		FeatureTableBinaryLength: uint32(len(in.FeatureTableBinary)),
		BatchTableJSONLength:     uint32(len(batchJSON)),
		BatchTableBinaryLength:   uint32(len(in.BatchTableBinary)),
		PayloadLength:            uint32(len(payload)),
		PayloadFormat:            format,
	}
	header.ByteLength = uint32(header.SectionEnd())

	out := make([]byte, 0, header.SectionEnd())
	out = append(out, header.Bytes()...)
	out = append(out, featureJSON...)
	out = append(out, in.FeatureTableBinary...)
	out = append(out, batchJSON...)
	out = append(out, in.BatchTableBinary...)
	out = append(out, payload...)

	return out, nil
}
