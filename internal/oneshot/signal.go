// Package oneshot implements a single-resolution completion signal.
//
// A Signal settles exactly once, either with a value (Resolve) or with an
// error (Reject). Settling a second time is a no-op that reports false, so a
// late continuation can never overwrite an earlier outcome. Observers wait on
// the Done channel or block in Wait with a context.
package oneshot

import (
	"context"
	"sync"
)

// Signal is a one-shot completion signal carrying a value of type T.
// The zero value is not usable; create signals with New.
type Signal[T any] struct {
	mu      sync.Mutex
	done    chan struct{}
	value   T
	err     error
	settled bool
}

// New creates an unsettled Signal.
func New[T any]() *Signal[T] {
	return &Signal[T]{done: make(chan struct{})}
}

// Resolve settles the signal with a value. It reports whether this call
// settled the signal; false means the signal was already settled and the
// value was discarded.
func (s *Signal[T]) Resolve(value T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settled {
		return false
	}
	s.value = value
	s.settled = true
	close(s.done)

	return true
}

// Reject settles the signal with an error. It reports whether this call
// settled the signal.
func (s *Signal[T]) Reject(err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settled {
		return false
	}
	s.err = err
	s.settled = true
	close(s.done)

	return true
}

// Done returns a channel that is closed once the signal settles.
func (s *Signal[T]) Done() <-chan struct{} {
	return s.done
}

// Settled reports whether the signal has resolved or rejected.
func (s *Signal[T]) Settled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.settled
}

// Result returns the settled value and error. It must only be called after
// Done is closed; before that it returns zero values.
func (s *Signal[T]) Result() (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.value, s.err
}

// Err returns the rejection cause, or nil if the signal is unsettled or
// resolved.
func (s *Signal[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

// Wait blocks until the signal settles or ctx is done, whichever comes first.
func (s *Signal[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-s.done:
		return s.Result()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
