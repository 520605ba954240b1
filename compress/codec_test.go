package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func testPayload() []byte {
	// Repetitive enough to compress, long enough to exercise block paths.
	var buf bytes.Buffer
	for i := 0; i < 512; i++ {
		buf.WriteString("{\"POSITION\":{\"byteOffset\":0},\"INSTANCES_LENGTH\":25}")
	}

	return buf.Bytes()
}

func TestCodecs_RoundTrip(t *testing.T) {
	payload := testPayload()
	for _, typ := range []Type{TypeNone, TypeZstd, TypeS2, TypeLZ4} {
		t.Run(typ.String(), func(t *testing.T) {
			codec, err := NewCodec(typ)
			require.NoError(t, err)

			compressed, err := codec.Compress(payload)
			require.NoError(t, err)

			decompressed, err := codec.Decompress(compressed)
			require.NoError(t, err)
			require.Equal(t, payload, decompressed)

			if typ != TypeNone {
				require.Less(t, len(compressed), len(payload))
			}
		})
	}
}

func TestCodecs_EmptyInput(t *testing.T) {
	for _, typ := range []Type{TypeNone, TypeZstd, TypeS2, TypeLZ4} {
		t.Run(typ.String(), func(t *testing.T) {
			codec, err := NewCodec(typ)
			require.NoError(t, err)

			compressed, err := codec.Compress(nil)
			require.NoError(t, err)

			decompressed, err := codec.Decompress(compressed)
			require.NoError(t, err)
			require.Empty(t, decompressed)
		})
	}
}

func TestLZ4Codec_IncompressibleInput(t *testing.T) {
	// A short high-entropy payload that LZ4 stores raw.
	payload := []byte{0x01, 0xA7, 0x3C, 0xF2, 0x58, 0x9B, 0xE4, 0x11, 0x6D}
	codec := LZ4Codec{}

	compressed, err := codec.Compress(payload)
	require.NoError(t, err)

	decompressed, err := codec.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, payload, decompressed)
}

func TestLZ4Codec_Truncated(t *testing.T) {
	_, err := LZ4Codec{}.Decompress([]byte{0x00, 0x01})
	require.Error(t, err)
}

func TestNewCodec_Unknown(t *testing.T) {
	_, err := NewCodec(Type(0xFF))
	require.Error(t, err)
	require.Equal(t, "Unknown", Type(0xFF).String())
}
