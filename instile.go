// Package instile decodes instanced 3D model tiles: binary payloads that
// place many copies of a single glTF model, each with its own position,
// orientation, scale and batch identity.
//
// An instanced tile is a 36-byte header followed by a feature table (JSON
// plus an optional binary block), an optional batch table, and a model
// payload that is either an embedded GLB or a URI pointing at one. The
// decoder reconstructs one affine transform per instance, resolving
// quantized positions, octahedron-packed normals, and the east-north-up
// orientation fallback for georeferenced tiles.
//
// # Core Features
//
//   - Symmetric Decode/Encode for the tile container format
//   - Per-instance transforms composed as translate * rotate * scale
//   - Feature table access with JSON-inlined and binary-backed properties
//   - Batch table lookup of per-feature metadata
//   - Asynchronous content lifecycle with fetch scheduling, payload caching
//     and one-shot readiness signals
//   - Optional payload cache compression (Zstd, S2, LZ4)
//
// # Basic Usage
//
// Decoding a tile that is already in memory:
//
//	import "github.com/tilemesa/instile"
//
//	t, err := instile.DecodeTile(data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, inst := range t.Instances {
//	    fmt.Printf("batch %d at %v\n", inst.BatchID, inst.Transform.Col(3))
//	}
//
// Loading a tile asynchronously through the scheduler:
//
//	scheduler, _ := fetch.NewScheduler()
//	c, _ := instile.NewContent("https://tiles.example.com/0/0/0.i3dm", scheduler)
//	c.Request(ctx, priority, distance)
//	<-c.Ready()
//	if err := c.Err(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the tile,
// content and fetch packages, simplifying the most common use cases. For
// fine-grained control, use those packages directly.
package instile

import (
	"github.com/tilemesa/instile/content"
	"github.com/tilemesa/instile/fetch"
	"github.com/tilemesa/instile/internal/hash"
	"github.com/tilemesa/instile/tile"
)

// DecodeTile parses a complete instanced tile from data.
//
// Parameters:
//   - data: The raw tile bytes, header included
//   - opts: Optional configuration functions (see tile.Option)
//
// Returns:
//   - *tile.Tile: The decoded tile with one resolved transform per instance.
//   - error: An error if the header, a section, or the feature table is invalid.
func DecodeTile(data []byte, opts ...tile.Option) (*tile.Tile, error) {
	return tile.Decode(data, opts...)
}

// EncodeTile serializes tile sections into the binary container format.
//
// Section contents are taken as-is; Encode only lays out the header and
// byte-aligns the JSON sections.
func EncodeTile(in tile.EncodeInput) ([]byte, error) {
	return tile.Encode(in)
}

// NewContent creates an unloaded content for the given tile URL.
//
// The returned content fetches through the scheduler when Request is
// called and exposes its lifecycle through the Ready and ReadyToProcess
// signals.
func NewContent(url string, scheduler *fetch.Scheduler, opts ...content.Option) (*content.Content, error) {
	return content.New(url, scheduler, opts...)
}

// NewScheduler creates a fetch scheduler with default settings: an HTTP
// fetcher, at most fetch.DefaultMaxInflight concurrent requests, and an
// LZ4-compressed payload cache.
func NewScheduler(opts ...fetch.SchedulerOption) (*fetch.Scheduler, error) {
	return fetch.NewScheduler(opts...)
}

// TileKey returns the 64-bit xxHash64 key of a tile URL, as used by the
// payload cache.
func TileKey(url string) uint64 {
	return hash.Key(url)
}
