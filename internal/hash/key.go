// Package hash computes the 64-bit keys used by the tile payload cache.
package hash

import "github.com/cespare/xxhash/v2"

// Key computes the xxHash64 cache key for a tile resource URL.
func Key(url string) uint64 {
	return xxhash.Sum64String(url)
}

// Digest computes the xxHash64 of a raw tile payload, used to tag log lines
// and detect duplicate fetches of renamed resources.
func Digest(data []byte) uint64 {
	return xxhash.Sum64(data)
}
