package proptable

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tilemesa/instile/errs"
)

func floatBinary(values ...float32) []byte {
	out := make([]byte, 0, 4*len(values))
	for _, v := range values {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}

	return out
}

func TestNew(t *testing.T) {
	t.Run("Invalid JSON", func(t *testing.T) {
		_, err := New([]byte("{nope"), nil)
		require.Error(t, err)
	})

	t.Run("Object without byteOffset", func(t *testing.T) {
		_, err := New([]byte(`{"POSITION":{"componentType":"FLOAT"}}`), nil)
		require.Error(t, err)
	})

	t.Run("Invalid component type string", func(t *testing.T) {
		_, err := New([]byte(`{"BATCH_ID":{"byteOffset":0,"componentType":"HALF"}}`), nil)
		require.ErrorIs(t, err, errs.ErrInvalidPropertyType)
	})

	t.Run("Non-numeric array element", func(t *testing.T) {
		_, err := New([]byte(`{"SCALE_NON_UNIFORM":[1,"x",3]}`), nil)
		require.Error(t, err)
	})
}

func TestGetGlobalProperty(t *testing.T) {
	jsonData := []byte(`{
		"INSTANCES_LENGTH": 4,
		"QUANTIZED_VOLUME_OFFSET": [1.5, 2.5, 3.5],
		"RTC_CENTER": {"byteOffset": 0},
		"EAST_NORTH_UP": true
	}`)
	table, err := New(jsonData, floatBinary(10, 20, 30))
	require.NoError(t, err)

	t.Run("Inline scalar", func(t *testing.T) {
		v, ok := table.GetGlobalProperty("INSTANCES_LENGTH", UnsignedInt, 1)
		require.True(t, ok)
		require.Equal(t, []float64{4}, v)
	})

	t.Run("Inline array", func(t *testing.T) {
		v, ok := table.GetGlobalProperty("QUANTIZED_VOLUME_OFFSET", Float, 3)
		require.True(t, ok)
		require.Equal(t, []float64{1.5, 2.5, 3.5}, v)
	})

	t.Run("Binary reference", func(t *testing.T) {
		v, ok := table.GetGlobalProperty("RTC_CENTER", Float, 3)
		require.True(t, ok)
		require.Equal(t, []float64{10, 20, 30}, v)
	})

	t.Run("Absent property", func(t *testing.T) {
		_, ok := table.GetGlobalProperty("QUANTIZED_VOLUME_SCALE", Float, 3)
		require.False(t, ok)
	})

	t.Run("Component count mismatch", func(t *testing.T) {
		_, ok := table.GetGlobalProperty("QUANTIZED_VOLUME_OFFSET", Float, 2)
		require.False(t, ok)

		_, ok = table.GetGlobalProperty("INSTANCES_LENGTH", UnsignedInt, 3)
		require.False(t, ok)
	})

	t.Run("Boolean property", func(t *testing.T) {
		v, ok := table.GetGlobalBool("EAST_NORTH_UP")
		require.True(t, ok)
		require.True(t, v)

		_, ok = table.GetGlobalBool("INSTANCES_LENGTH")
		require.False(t, ok)
	})
}

func TestGetProperty(t *testing.T) {
	// Two instances: POSITION at offset 0 (2 x vec3 float), BATCH_ID at
	// offset 24 with a declared UNSIGNED_BYTE component type.
	bin := floatBinary(1, 2, 3, 4, 5, 6)
	bin = append(bin, 7, 9)
	jsonData := []byte(`{
		"POSITION": {"byteOffset": 0},
		"BATCH_ID": {"byteOffset": 24, "componentType": "UNSIGNED_BYTE"}
	}`)
	table, err := New(jsonData, bin)
	require.NoError(t, err)

	t.Run("Indexed vec3 read", func(t *testing.T) {
		v, ok := table.GetProperty("POSITION", 1, Float, 3)
		require.True(t, ok)
		require.Equal(t, []float64{4, 5, 6}, v)
	})

	t.Run("Declared component type overrides caller default", func(t *testing.T) {
		v, ok := table.GetProperty("BATCH_ID", 1, UnsignedShort, 1)
		require.True(t, ok)
		require.Equal(t, []float64{9}, v)
	})

	t.Run("Read past binary block", func(t *testing.T) {
		_, ok := table.GetProperty("POSITION", 2, Float, 3)
		require.False(t, ok)
	})

	t.Run("Negative index", func(t *testing.T) {
		_, ok := table.GetProperty("POSITION", -1, Float, 3)
		require.False(t, ok)
	})

	t.Run("Absent property", func(t *testing.T) {
		_, ok := table.GetProperty("NORMAL_UP", 0, Float, 3)
		require.False(t, ok)
	})
}

func TestReadOne_SignedTypes(t *testing.T) {
	bin := []byte{0xFF}
	bin = binary.LittleEndian.AppendUint16(bin, 0x8000)
	bin = binary.LittleEndian.AppendUint32(bin, 0xFFFFFFFE)
	bin = binary.LittleEndian.AppendUint64(bin, math.Float64bits(-2.5))

	table, err := New([]byte(`{
		"B": {"byteOffset": 0},
		"S": {"byteOffset": 1},
		"I": {"byteOffset": 3},
		"D": {"byteOffset": 7}
	}`), bin)
	require.NoError(t, err)

	v, ok := table.GetGlobalProperty("B", Byte, 1)
	require.True(t, ok)
	require.Equal(t, []float64{-1}, v)

	v, ok = table.GetGlobalProperty("S", Short, 1)
	require.True(t, ok)
	require.Equal(t, []float64{-32768}, v)

	v, ok = table.GetGlobalProperty("I", Int, 1)
	require.True(t, ok)
	require.Equal(t, []float64{-2}, v)

	v, ok = table.GetGlobalProperty("D", Double, 1)
	require.True(t, ok)
	require.Equal(t, []float64{-2.5}, v)
}

func TestComponentType(t *testing.T) {
	sizes := map[ComponentType]int{
		Byte: 1, UnsignedByte: 1,
		Short: 2, UnsignedShort: 2,
		Int: 4, UnsignedInt: 4, Float: 4,
		Double: 8,
	}
	for ct, size := range sizes {
		require.Equal(t, size, ct.Size(), ct.String())

		parsed, err := ParseComponentType(ct.String())
		require.NoError(t, err)
		require.Equal(t, ct, parsed)
	}
	require.Equal(t, 0, ComponentType(0).Size())
}
