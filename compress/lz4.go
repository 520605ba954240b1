package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances; the compressor keeps
// internal match tables that benefit from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Codec compresses payloads in LZ4 block mode.
//
// Each compressed payload carries a 5-byte prefix: one flag byte (0 = lz4
// block, 1 = stored raw because the input was incompressible) followed by the
// uncompressed size as a little-endian uint32, so decompression can size its
// buffer exactly instead of growing adaptively.
type LZ4Codec struct{}

var _ Codec = LZ4Codec{}

const (
	lz4PrefixSize = 5
	lz4FlagBlock  = 0
	lz4FlagRaw    = 1
)

// maxPayloadSize bounds the declared uncompressed size during decompression,
// guarding against corrupted cache entries.
const maxPayloadSize = 512 * 1024 * 1024

// Compress compresses the payload as one LZ4 block behind the size prefix.
func (LZ4Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, lz4PrefixSize+lz4.CompressBlockBound(len(data)))
	dst[0] = lz4FlagBlock
	binary.LittleEndian.PutUint32(dst[1:], uint32(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst[lz4PrefixSize:])
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// CompressBlock reports incompressible input with n == 0.
		dst[0] = lz4FlagRaw
		return append(dst[:lz4PrefixSize], data...), nil
	}

	return dst[:lz4PrefixSize+n], nil
}

// Decompress reverses Compress.
func (LZ4Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if len(data) < lz4PrefixSize {
		return nil, errors.New("lz4 payload truncated before size prefix")
	}

	size := binary.LittleEndian.Uint32(data[1:])
	if size > maxPayloadSize {
		return nil, fmt.Errorf("lz4 payload declares unreasonable size %d", size)
	}

	body := data[lz4PrefixSize:]
	switch data[0] {
	case lz4FlagRaw:
		if len(body) != int(size) {
			return nil, fmt.Errorf("raw lz4 payload size mismatch: declared %d, have %d", size, len(body))
		}
		buf := make([]byte, size)
		copy(buf, body)

		return buf, nil
	case lz4FlagBlock:
		buf := make([]byte, size)
		n, err := lz4.UncompressBlock(body, buf)
		if err != nil {
			return nil, err
		}

		return buf[:n], nil
	default:
		return nil, fmt.Errorf("unknown lz4 payload flag %d", data[0])
	}
}
