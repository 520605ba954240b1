// Package content ties the tile decoder, the fetch scheduler and the
// instanced model together into a single asynchronously loaded unit.
//
// A Content starts unloaded, is handed to the network via Request, parses
// the returned payload, and finally becomes ready once the model finishes
// its own preparation. Two one-shot signals expose the interesting
// milestones: ReadyToProcess fires as soon as the payload has been parsed,
// and Ready fires when the content is fully usable. Both reject with a
// cause when the lifecycle fails or the content is destroyed mid-flight.
package content

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/tilemesa/instile/errs"
	"github.com/tilemesa/instile/fetch"
	"github.com/tilemesa/instile/internal/oneshot"
	"github.com/tilemesa/instile/internal/options"
	"github.com/tilemesa/instile/model"
	"github.com/tilemesa/instile/tile"
)

// Content is an asynchronously loaded instanced tile payload.
//
// All methods are safe for concurrent use. State transitions are driven by
// the fetch continuation and the model readiness watcher, both of which run
// on their own goroutines.
type Content struct {
	url       string
	scheduler *fetch.Scheduler
	logger    *slog.Logger

	decodeOpts []tile.Option
	modelOpts  []model.Option

	mu           sync.Mutex
	state        State
	destroyed    bool
	initializing bool
	pending      *fetch.Pending
	tile         *tile.Tile
	model        *model.InstancedModel
	batch        *model.BatchResources
	features     []*Feature

	readyToProcess *oneshot.Signal[struct{}]
	ready          *oneshot.Signal[struct{}]
}

// Option configures a Content during construction.
type Option = options.Option[*Content]

// WithLogger sets the logger used for lifecycle events.
// The default discards all records.
func WithLogger(logger *slog.Logger) Option {
	return options.New(func(c *Content) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.logger = logger

		return nil
	})
}

// WithDecodeOptions forwards options to tile.Decode when the payload
// is parsed.
func WithDecodeOptions(opts ...tile.Option) Option {
	return options.NoError(func(c *Content) {
		c.decodeOpts = append(c.decodeOpts, opts...)
	})
}

// WithModelOptions forwards options to model.New when the instanced
// model is constructed.
func WithModelOptions(opts ...model.Option) Option {
	return options.NoError(func(c *Content) {
		c.modelOpts = append(c.modelOpts, opts...)
	})
}

// New creates an unloaded Content for the given tile URL.
//
// The scheduler is used by Request to fetch the payload. It must not be nil.
func New(url string, scheduler *fetch.Scheduler, opts ...Option) (*Content, error) {
	if scheduler == nil {
		return nil, fmt.Errorf("scheduler cannot be nil")
	}

	c := &Content{
		url:            url,
		scheduler:      scheduler,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		state:          StateUnloaded,
		readyToProcess: oneshot.New[struct{}](),
		ready:          oneshot.New[struct{}](),
	}
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	return c, nil
}

// State returns the current lifecycle state.
func (c *Content) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// URL returns the tile URL this content loads from.
func (c *Content) URL() string { return c.url }

// Request asks the scheduler to fetch the tile payload.
//
// It returns false when the content is not in the unloaded state, has been
// destroyed, or the scheduler declined the request because it is at
// capacity. A declined request leaves the content unloaded so a later frame
// may retry.
func (c *Content) Request(ctx context.Context, priority, distance float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed || c.state != StateUnloaded {
		return false
	}

	pending, ok := c.scheduler.Schedule(ctx, fetch.Request{
		URL:      c.url,
		Priority: priority,
		Distance: distance,
	})
	if !ok {
		return false
	}

	c.pending = pending
	c.state = StateLoading
	c.logger.Debug("content fetch scheduled", slog.String("url", c.url))

	go c.awaitFetch(pending)

	return true
}

// awaitFetch is the fetch continuation. It runs on its own goroutine and
// drives the transition out of the loading state.
func (c *Content) awaitFetch(pending *fetch.Pending) {
	<-pending.Done()
	data, err := pending.Result()

	c.mu.Lock()
	if c.destroyed {
		// The fetch result is discarded; destruction wins.
		c.state = StateFailed
		c.mu.Unlock()
		c.settleFailure(errs.ErrContentDestroyed)

		return
	}
	c.mu.Unlock()

	if err != nil {
		c.fail(err)

		return
	}

	if err := c.Initialize(data); err != nil {
		c.fail(err)
	}
}

// Initialize parses the payload and constructs the model and its batch
// resources, moving the content into the processing state.
//
// It is called by the fetch continuation, and may also be called directly
// with an already-obtained payload for contents that bypass the network.
// Parse and construction errors are returned to the caller without changing
// state; the caller decides whether the content fails.
func (c *Content) Initialize(data []byte) error {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()

		return errs.ErrContentDestroyed
	}
	if c.state != StateUnloaded && c.state != StateLoading {
		state := c.state
		c.mu.Unlock()

		return fmt.Errorf("cannot initialize content in state %s", state)
	}
	if c.initializing {
		c.mu.Unlock()

		return fmt.Errorf("content initialization already in progress")
	}
	// The mutex is released across the decode, so the in-progress flag is
	// what keeps a second caller from building a duplicate model.
	c.initializing = true
	decodeOpts := c.decodeOpts
	modelOpts := c.modelOpts
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.initializing = false
		c.mu.Unlock()
	}()

	t, err := tile.Decode(data, decodeOpts...)
	if err != nil {
		return err
	}

	m, err := model.New(t.Instances, t.Payload, t.PayloadURI, modelOpts...)
	if err != nil {
		return err
	}

	batch := model.NewBatchResources(len(t.Instances))

	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		m.Destroy()

		return errs.ErrContentDestroyed
	}
	c.tile = t
	c.model = m
	c.batch = batch
	c.state = StateProcessing
	c.mu.Unlock()

	// Processing is reached before full readiness, so this signal always
	// settles first.
	c.readyToProcess.Resolve(struct{}{})
	c.logger.Debug("content processing",
		slog.String("url", c.url),
		slog.Int("instances", len(t.Instances)))

	go c.awaitModel(m)

	return nil
}

// awaitModel watches the model's own readiness and completes the lifecycle.
func (c *Content) awaitModel(m *model.InstancedModel) {
	<-m.Ready()
	err := m.ReadyErr()

	c.mu.Lock()
	if c.destroyed {
		c.state = StateFailed
		c.mu.Unlock()
		c.settleFailure(errs.ErrContentDestroyed)

		return
	}
	if err != nil {
		c.state = StateFailed
		c.mu.Unlock()
		c.settleFailure(err)
		c.logger.Warn("content model failed", slog.String("url", c.url), slog.Any("error", err))

		return
	}
	c.state = StateReady
	c.mu.Unlock()

	c.ready.Resolve(struct{}{})
	c.logger.Debug("content ready", slog.String("url", c.url))
}

// fail moves the content into the failed state and settles both signals.
func (c *Content) fail(err error) {
	c.mu.Lock()
	c.state = StateFailed
	c.mu.Unlock()
	c.settleFailure(err)
	c.logger.Warn("content failed", slog.String("url", c.url), slog.Any("error", err))
}

// settleFailure rejects both signals so no waiter blocks forever. Signals
// that already settled are left untouched.
func (c *Content) settleFailure(err error) {
	c.readyToProcess.Reject(err)
	c.ready.Reject(err)
}

// ReadyToProcess returns a channel that closes once the payload has been
// parsed and the content entered the processing state. It also closes when
// the lifecycle fails before reaching that point; check Err to distinguish.
func (c *Content) ReadyToProcess() <-chan struct{} { return c.readyToProcess.Done() }

// Ready returns a channel that closes once the content is fully ready or
// has failed. Check Err to distinguish.
func (c *Content) Ready() <-chan struct{} { return c.ready.Done() }

// Err reports the failure cause once the Ready channel is closed. It
// returns nil while the lifecycle is still in flight or on success.
func (c *Content) Err() error { return c.ready.Err() }

// WaitReady blocks until the content is fully ready, the lifecycle fails,
// or the context is cancelled.
func (c *Content) WaitReady(ctx context.Context) error {
	_, err := c.ready.Wait(ctx)

	return err
}

// Tile returns the decoded tile, or nil before the processing state.
func (c *Content) Tile() *tile.Tile {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.tile
}

// Model returns the instanced model, or nil before the processing state.
func (c *Content) Model() *model.InstancedModel {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.model
}

// FeaturesLength returns the number of features in the content, which for
// instanced tiles equals the instance count. It returns zero before the
// payload has been parsed.
func (c *Content) FeaturesLength() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tile == nil {
		return 0
	}

	return len(c.tile.Instances)
}

// GetFeature returns the feature for the given batch ID. Repeated calls
// with the same ID return the same *Feature instance.
func (c *Content) GetFeature(batchID int) (*Feature, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tile == nil {
		return nil, fmt.Errorf("%w: content has no features yet", errs.ErrIndexOutOfRange)
	}
	if batchID < 0 || batchID >= len(c.tile.Instances) {
		return nil, fmt.Errorf("%w: batch ID %d, features length %d",
			errs.ErrIndexOutOfRange, batchID, len(c.tile.Instances))
	}

	if c.features == nil {
		c.features = make([]*Feature, len(c.tile.Instances))
	}
	if c.features[batchID] == nil {
		c.features[batchID] = &Feature{content: c, batchID: batchID}
	}

	return c.features[batchID], nil
}

// SetDebugColor overrides the tint of every instance with the given color.
// Passing nil clears the override. It is a no-op before the payload has
// been parsed.
func (c *Content) SetDebugColor(color *model.Color) {
	c.mu.Lock()
	batch := c.batch
	c.mu.Unlock()

	if batch != nil {
		batch.SetDebugColor(color)
	}
}

// Update advances per-frame state and emits one draw command per instance
// into the sink. It is a no-op unless the content is ready.
func (c *Content) Update(frame model.FrameState, sink model.CommandSink) {
	c.mu.Lock()
	if c.destroyed || c.state != StateReady {
		c.mu.Unlock()

		return
	}
	m := c.model
	batch := c.batch
	c.mu.Unlock()

	batch.Update(frame)
	m.Update(frame, sink, batch)
}

// Destroy releases the content. A fetch still in flight is cancelled and
// its result discarded; waiters on the readiness signals are rejected.
// Destroy is idempotent.
func (c *Content) Destroy() {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()

		return
	}
	c.destroyed = true
	pending := c.pending
	m := c.model
	batch := c.batch
	c.pending = nil
	c.features = nil
	c.mu.Unlock()

	if pending != nil {
		pending.Cancel()
	}
	if m != nil {
		m.Destroy()
	}
	if batch != nil {
		batch.Destroy()
	}
	c.settleFailure(errs.ErrContentDestroyed)
	c.logger.Debug("content destroyed", slog.String("url", c.url))
}

// IsDestroyed reports whether Destroy has been called.
func (c *Content) IsDestroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.destroyed
}
