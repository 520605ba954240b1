// Package compress provides the compression codecs used by the tile payload
// cache.
//
// Fetched tile payloads are compressed before being cached in memory and
// decompressed when a content object re-parses a tile without a network round
// trip. Payloads are compact binary blobs of a few KB to a few MB, so the
// codecs trade a little ratio for fast block-mode decompression.
package compress

import "fmt"

// Codec compresses and decompresses one payload as a single block.
//
// Implementations must be safe for concurrent use. Returned slices are newly
// allocated and owned by the caller; input slices are never modified.
type Codec interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// NewCodec creates a Codec of the given type.
//
// Returns:
//   - Codec: codec instance for the type
//   - error: unknown compression type
func NewCodec(t Type) (Codec, error) {
	switch t {
	case TypeNone:
		return NoOpCodec{}, nil
	case TypeZstd:
		return ZstdCodec{}, nil
	case TypeS2:
		return S2Codec{}, nil
	case TypeLZ4:
		return LZ4Codec{}, nil
	default:
		return nil, fmt.Errorf("unknown compression type: %s", t)
	}
}
