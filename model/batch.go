package model

import (
	"fmt"
	"sync"

	"github.com/tilemesa/instile/errs"
)

// Color is a premultiplied RGBA tint. White is the identity tint.
type Color [4]float32

// White is the no-op tint.
var White = Color{1, 1, 1, 1}

// BatchResources holds the per-feature styling state shared by all instances
// with the same batch id: one tint per feature plus an optional debug
// override that tints every feature uniformly.
type BatchResources struct {
	mu         sync.Mutex
	colors     []Color
	debugColor *Color
	dirty      bool
}

// NewBatchResources creates resources for featuresLength features, all
// tinted white.
func NewBatchResources(featuresLength int) *BatchResources {
	colors := make([]Color, featuresLength)
	for i := range colors {
		colors[i] = White
	}

	return &BatchResources{colors: colors}
}

// FeaturesLength returns the feature count.
func (b *BatchResources) FeaturesLength() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.colors)
}

// SetColor tints one feature.
//
// Returns:
//   - error: errs.ErrIndexOutOfRange when batchID is outside [0, featuresLength)
func (b *BatchResources) SetColor(batchID int, c Color) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if batchID < 0 || batchID >= len(b.colors) {
		return fmt.Errorf("%w: %d with %d features", errs.ErrIndexOutOfRange, batchID, len(b.colors))
	}
	b.colors[batchID] = c
	b.dirty = true

	return nil
}

// Color returns the effective tint of one feature, with the debug override
// applied if set.
//
// Returns:
//   - Color: effective tint
//   - error: errs.ErrIndexOutOfRange when batchID is outside [0, featuresLength)
func (b *BatchResources) Color(batchID int) (Color, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if batchID < 0 || batchID >= len(b.colors) {
		return Color{}, fmt.Errorf("%w: %d with %d features", errs.ErrIndexOutOfRange, batchID, len(b.colors))
	}
	if b.debugColor != nil {
		return *b.debugColor, nil
	}

	return b.colors[batchID], nil
}

// SetDebugColor tints all features uniformly until cleared with nil.
func (b *BatchResources) SetDebugColor(c *Color) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.debugColor = c
	b.dirty = true
}

// Update flushes styling changes accumulated since the previous frame. A
// GPU-backed renderer would re-upload the color texture here; this
// implementation just settles the dirty flag.
func (b *BatchResources) Update(frame FrameState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.dirty = false
}

// Destroy releases the per-feature state. Further calls error on every
// feature lookup.
func (b *BatchResources) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.colors = nil
	b.debugColor = nil
}
