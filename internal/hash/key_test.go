package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	// Known xxHash64 of the empty string; guards against accidental seeding.
	require.Equal(t, uint64(0xef46db3751d8e999), Key(""))

	url := "https://tiles.example.com/0/0/0.i3dm"
	require.Equal(t, Key(url), Key(url))
	require.NotEqual(t, Key("a/0.i3dm"), Key("a/1.i3dm"))
}

func TestDigestMatchesKeyForSameBytes(t *testing.T) {
	data := []byte("payload bytes")
	require.Equal(t, Key(string(data)), Digest(data))
}
