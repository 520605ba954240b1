package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/tilemesa/instile/compress"
	"github.com/tilemesa/instile/errs"
	"github.com/tilemesa/instile/internal/oneshot"
	"github.com/tilemesa/instile/internal/options"
)

// Request describes one tile fetch. Priority and Distance come from the
// tileset driver's camera bookkeeping and are carried through to scheduling
// decisions and log lines.
type Request struct {
	URL      string
	Priority float64
	Distance float64
}

// Pending is a cancellable in-flight fetch handed out by the Scheduler.
// It settles exactly once.
type Pending struct {
	signal *oneshot.Signal[[]byte]
	cancel context.CancelFunc
}

// Done returns a channel closed once the fetch settles.
func (p *Pending) Done() <-chan struct{} {
	return p.signal.Done()
}

// Result returns the fetched payload or the failure cause. Valid only after
// Done is closed.
func (p *Pending) Result() ([]byte, error) {
	return p.signal.Result()
}

// Wait blocks until the fetch settles or ctx is done.
func (p *Pending) Wait(ctx context.Context) ([]byte, error) {
	return p.signal.Wait(ctx)
}

// Cancel aborts the underlying transport operation. The pending fetch then
// settles with a rejection; cancelling a settled fetch is a no-op.
func (p *Pending) Cancel() {
	p.cancel()
}

// DefaultMaxInflight is the scheduler's default concurrent fetch capacity.
const DefaultMaxInflight = 6

// Scheduler hands out pending fetches up to a fixed concurrency capacity.
// At capacity it declines instead of queueing; the tileset driver re-requests
// next frame with fresh priorities, so a queue here would only act on stale
// ordering.
type Scheduler struct {
	fetcher     Fetcher
	cache       *Cache
	maxInflight int64
	inflight    atomic.Int64
	logger      *slog.Logger
}

// SchedulerOption configures a Scheduler.
type SchedulerOption = options.Option[*Scheduler]

// WithFetcher sets the transport. Defaults to an HTTPFetcher.
func WithFetcher(f Fetcher) SchedulerOption {
	return options.NoError(func(s *Scheduler) {
		s.fetcher = f
	})
}

// WithMaxInflight sets the concurrent fetch capacity.
func WithMaxInflight(n int) SchedulerOption {
	return options.New(func(s *Scheduler) error {
		if n <= 0 {
			return fmt.Errorf("max inflight must be positive, got %d", n)
		}
		s.maxInflight = int64(n)

		return nil
	})
}

// WithCacheCodec enables the payload cache with the given codec and entry
// cap.
func WithCacheCodec(t compress.Type, maxEntries int) SchedulerOption {
	return options.New(func(s *Scheduler) error {
		cache, err := NewCache(t, maxEntries)
		if err != nil {
			return err
		}
		s.cache = cache

		return nil
	})
}

// WithLogger sets the scheduler's logger. Discards by default.
func WithLogger(logger *slog.Logger) SchedulerOption {
	return options.NoError(func(s *Scheduler) {
		s.logger = logger
	})
}

// NewScheduler creates a Scheduler with an LZ4-compressed payload cache and
// an HTTP transport unless configured otherwise.
func NewScheduler(opts ...SchedulerOption) (*Scheduler, error) {
	s := &Scheduler{
		maxInflight: DefaultMaxInflight,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}

	if s.fetcher == nil {
		fetcher, err := NewHTTPFetcher()
		if err != nil {
			return nil, err
		}
		s.fetcher = fetcher
	}
	if s.cache == nil {
		cache, err := NewCache(compress.TypeLZ4, 256)
		if err != nil {
			return nil, err
		}
		s.cache = cache
	}

	return s, nil
}

// Schedule starts the fetch described by req, unless the scheduler is at
// capacity.
//
// A cache hit settles immediately and does not count against capacity. The
// second return is false iff the scheduler declined; the caller should retry
// on a later frame.
func (s *Scheduler) Schedule(ctx context.Context, req Request) (*Pending, bool) {
	signal := oneshot.New[[]byte]()

	if payload, ok := s.cache.Get(req.URL); ok {
		s.logger.Debug("payload cache hit", "url", req.URL, "bytes", len(payload))
		signal.Resolve(payload)

		return &Pending{signal: signal, cancel: func() {}}, true
	}

	// Capacity check and reservation in one step; losing a race to the last
	// slot shows up as the decrement below pushing the count back.
	if s.inflight.Add(1) > s.maxInflight {
		s.inflight.Add(-1)
		s.logger.Debug("scheduler at capacity",
			"url", req.URL, "priority", req.Priority, "distance", req.Distance)

		return nil, false
	}

	fetchCtx, cancel := context.WithCancel(ctx)
	go func() {
		defer s.inflight.Add(-1)

		payload, err := s.fetcher.Fetch(fetchCtx, req.URL)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				signal.Reject(err)
			} else {
				signal.Reject(fmt.Errorf("%w: %s: %w", errs.ErrFetchFailed, req.URL, err))
			}

			return
		}

		s.cache.Put(req.URL, payload)
		signal.Resolve(payload)
	}()

	return &Pending{signal: signal, cancel: cancel}, true
}

// Inflight returns the number of fetches currently outstanding.
func (s *Scheduler) Inflight() int {
	return int(s.inflight.Load())
}
