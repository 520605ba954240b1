// Package model implements the instancing side of tile content: it takes
// ownership of the decoded instance array, loads the shared glTF model
// (embedded GLB bytes or an external URI), and emits one draw command per
// instance during the per-frame update pass.
//
// Model setup is asynchronous; observers watch the one-shot readiness signal
// through Ready and ReadyErr.
package model

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"

	"github.com/tilemesa/instile/errs"
	"github.com/tilemesa/instile/fetch"
	"github.com/tilemesa/instile/internal/hash"
	"github.com/tilemesa/instile/internal/oneshot"
	"github.com/tilemesa/instile/internal/options"
	"github.com/tilemesa/instile/tile"
)

// BoundingSphere bounds all instances of the model in world space.
type BoundingSphere struct {
	Center mgl64.Vec3
	Radius float64
}

// InstancedModel renders one shared model at many instance transforms. It
// owns the instance array handed to New exclusively.
type InstancedModel struct {
	instances []tile.Instance
	payload   []byte
	uri       string

	fetcher fetch.Fetcher
	logger  *slog.Logger

	// mu guards doc and bounds, which the loader goroutine writes while
	// callers may read.
	mu     sync.Mutex
	doc    *gltf.Document
	bounds BoundingSphere

	ready     *oneshot.Signal[struct{}]
	destroyed atomic.Bool
}

// Option configures an InstancedModel.
type Option = options.Option[*InstancedModel]

// WithModelFetcher provides a transport for external-URI payloads. Without
// one, a URI model is considered ready immediately and its bytes are left to
// the renderer to stream.
func WithModelFetcher(f fetch.Fetcher) Option {
	return options.NoError(func(m *InstancedModel) {
		m.fetcher = f
	})
}

// WithModelLogger sets the model's logger. Discards by default.
func WithModelLogger(logger *slog.Logger) Option {
	return options.NoError(func(m *InstancedModel) {
		m.logger = logger
	})
}

// New creates an InstancedModel from the decoded instance array and the
// tile's payload (embedded GLB bytes, or a URI when payload is nil) and
// starts its asynchronous setup.
//
// Returns:
//   - *InstancedModel: model whose readiness signal settles later
//   - error: option application errors only; setup failures settle the
//     readiness signal instead
func New(instances []tile.Instance, payload []byte, uri string, opts ...Option) (*InstancedModel, error) {
	m := &InstancedModel{
		instances: instances,
		payload:   payload,
		uri:       uri,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		ready:     oneshot.New[struct{}](),
	}
	if err := options.Apply(m, opts...); err != nil {
		return nil, err
	}

	m.bounds = boundsFromInstances(instances)
	go m.load()

	return m, nil
}

// load performs the asynchronous part of setup: resolving the payload bytes
// and decoding the glTF document. It settles the readiness signal exactly
// once.
func (m *InstancedModel) load() {
	payload := m.payload
	if payload == nil && m.uri != "" {
		if m.fetcher == nil {
			m.ready.Resolve(struct{}{})
			return
		}
		fetched, err := m.fetcher.Fetch(context.Background(), m.uri)
		if err != nil {
			m.ready.Reject(fmt.Errorf("%w: %w", errs.ErrModelFailed, err))
			return
		}
		payload = fetched
	}

	var doc gltf.Document
	if err := gltf.NewDecoder(bytes.NewReader(payload)).Decode(&doc); err != nil {
		m.ready.Reject(fmt.Errorf("%w: %w", errs.ErrModelFailed, err))
		return
	}

	m.mu.Lock()
	m.doc = &doc
	m.growBoundsByMeshExtent(&doc)
	m.mu.Unlock()
	m.logger.Debug("instanced model ready",
		"instances", len(m.instances),
		"payload_digest", hash.Digest(payload),
		"meshes", len(doc.Meshes))
	m.ready.Resolve(struct{}{})
}

// Ready returns a channel closed once setup settles, successfully or not.
func (m *InstancedModel) Ready() <-chan struct{} {
	return m.ready.Done()
}

// ReadyErr returns the setup failure cause, or nil before settlement and
// after success.
func (m *InstancedModel) ReadyErr() error {
	return m.ready.Err()
}

// InstanceCount returns the number of instances, which is also the tile's
// feature count.
func (m *InstancedModel) InstanceCount() int {
	return len(m.instances)
}

// Bounds returns the bounding sphere of all instances. After readiness it
// also accounts for the shared mesh extent.
func (m *InstancedModel) Bounds() BoundingSphere {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.bounds
}

// Document returns the decoded glTF document, or nil for URI payloads left
// to the renderer. Valid only after Ready.
func (m *InstancedModel) Document() *gltf.Document {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.doc
}

// Update emits one draw command per instance into sink. colors supplies the
// per-feature tints; a nil colors renders everything white. Before readiness
// or after destruction, Update emits nothing.
func (m *InstancedModel) Update(frame FrameState, sink CommandSink, colors *BatchResources) {
	if m.destroyed.Load() || !m.ready.Settled() || m.ready.Err() != nil {
		return
	}

	for _, inst := range m.instances {
		cmd := DrawCommand{
			Transform: inst.Transform,
			BatchID:   inst.BatchID,
			Color:     White,
		}
		if colors != nil {
			if c, err := colors.Color(int(inst.BatchID)); err == nil {
				cmd.Color = c
			}
		}
		sink.Push(cmd)
	}
}

// Destroy releases the model. An unsettled readiness signal rejects so
// waiters are not left hanging.
func (m *InstancedModel) Destroy() {
	if !m.destroyed.CompareAndSwap(false, true) {
		return
	}
	m.ready.Reject(errs.ErrContentDestroyed)
}

// IsDestroyed reports whether Destroy has been called.
func (m *InstancedModel) IsDestroyed() bool {
	return m.destroyed.Load()
}

// boundsFromInstances computes a sphere over the instance translations.
func boundsFromInstances(instances []tile.Instance) BoundingSphere {
	if len(instances) == 0 {
		return BoundingSphere{}
	}

	min := mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	max := mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, inst := range instances {
		p := inst.Transform.Col(3).Vec3()
		for a := 0; a < 3; a++ {
			min[a] = math.Min(min[a], p[a])
			max[a] = math.Max(max[a], p[a])
		}
	}

	center := min.Add(max).Mul(0.5)
	radius := 0.0
	for _, inst := range instances {
		radius = math.Max(radius, inst.Transform.Col(3).Vec3().Sub(center).Len())
	}

	return BoundingSphere{Center: center, Radius: radius}
}

// growBoundsByMeshExtent pads the instance sphere by the largest POSITION
// accessor extent so the mesh cannot poke outside the bounds at any rotation.
func (m *InstancedModel) growBoundsByMeshExtent(doc *gltf.Document) {
	pad := 0.0
	for _, mesh := range doc.Meshes {
		for _, prim := range mesh.Primitives {
			idx, ok := prim.Attributes[gltf.POSITION]
			if !ok || int(idx) >= len(doc.Accessors) {
				continue
			}
			acc := doc.Accessors[idx]
			if len(acc.Min) < 3 || len(acc.Max) < 3 {
				continue
			}
			for a := 0; a < 3; a++ {
				pad = math.Max(pad, math.Max(math.Abs(float64(acc.Min[a])), math.Abs(float64(acc.Max[a]))))
			}
		}
	}

	m.bounds.Radius += pad
}
