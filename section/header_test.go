package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tilemesa/instile/errs"
)

func validHeader() *TileHeader {
	return &TileHeader{
		ByteLength:               200,
		FeatureTableJSONLength:   64,
		FeatureTableBinaryLength: 32,
		BatchTableJSONLength:     16,
		BatchTableBinaryLength:   8,
		PayloadLength:            44,
		PayloadFormat:            PayloadFormatEmbedded,
	}
}

func TestTileHeader_Parse(t *testing.T) {
	t.Run("Round trip", func(t *testing.T) {
		original := validHeader()
		data := original.Bytes()
		require.Len(t, data, HeaderSize)

		parsed, err := ParseTileHeader(data)
		require.NoError(t, err)
		require.Equal(t, *original, parsed)
	})

	t.Run("Short buffer", func(t *testing.T) {
		var h TileHeader
		err := h.Parse(make([]byte, HeaderSize-1))
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	})

	t.Run("Invalid magic", func(t *testing.T) {
		data := validHeader().Bytes()
		copy(data, "pnts")

		_, err := ParseTileHeader(data)
		require.ErrorIs(t, err, errs.ErrInvalidMagic)
	})

	t.Run("Unsupported version", func(t *testing.T) {
		data := validHeader().Bytes()
		data[versionOffset] = 2

		_, err := ParseTileHeader(data)
		require.ErrorIs(t, err, errs.ErrUnsupportedVersion)
	})

	t.Run("Zero feature table JSON length", func(t *testing.T) {
		h := validHeader()
		h.FeatureTableJSONLength = 0

		_, err := ParseTileHeader(h.Bytes())
		require.ErrorIs(t, err, errs.ErrMalformedTile)
	})

	t.Run("Zero payload length", func(t *testing.T) {
		h := validHeader()
		h.PayloadLength = 0

		_, err := ParseTileHeader(h.Bytes())
		require.ErrorIs(t, err, errs.ErrMalformedTile)
	})

	t.Run("Unsupported payload format", func(t *testing.T) {
		h := validHeader()
		h.PayloadFormat = 2

		_, err := ParseTileHeader(h.Bytes())
		require.ErrorIs(t, err, errs.ErrUnsupportedPayloadFormat)
	})

	t.Run("URI payload format accepted", func(t *testing.T) {
		h := validHeader()
		h.PayloadFormat = PayloadFormatURI

		parsed, err := ParseTileHeader(h.Bytes())
		require.NoError(t, err)
		require.Equal(t, PayloadFormatURI, parsed.PayloadFormat)
	})

	t.Run("Trailing bytes ignored", func(t *testing.T) {
		data := append(validHeader().Bytes(), 0xDE, 0xAD)

		_, err := ParseTileHeader(data)
		require.NoError(t, err)
	})
}

func TestTileHeader_SectionEnd(t *testing.T) {
	h := validHeader()
	require.Equal(t, HeaderSize+64+32+16+8+44, h.SectionEnd())
}
