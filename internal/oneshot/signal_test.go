package oneshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignal_ResolveOnce(t *testing.T) {
	s := New[int]()
	require.False(t, s.Settled())

	require.True(t, s.Resolve(42))
	require.True(t, s.Settled())

	// Second settlement attempts are discarded.
	require.False(t, s.Resolve(7))
	require.False(t, s.Reject(errors.New("late")))

	v, err := s.Result()
	require.NoError(t, err)
	require.Equal(t, 42, v)
	require.NoError(t, s.Err())
}

func TestSignal_RejectOnce(t *testing.T) {
	cause := errors.New("fetch failed")
	s := New[struct{}]()

	require.True(t, s.Reject(cause))
	require.False(t, s.Resolve(struct{}{}))

	_, err := s.Result()
	require.ErrorIs(t, err, cause)
	require.ErrorIs(t, s.Err(), cause)
}

func TestSignal_DoneCloses(t *testing.T) {
	s := New[string]()
	select {
	case <-s.Done():
		t.Fatal("done closed before settlement")
	default:
	}

	s.Resolve("ok")
	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("done not closed after resolve")
	}
}

func TestSignal_Wait(t *testing.T) {
	t.Run("Settled value", func(t *testing.T) {
		s := New[int]()
		go s.Resolve(9)

		v, err := s.Wait(context.Background())
		require.NoError(t, err)
		require.Equal(t, 9, v)
	})

	t.Run("Context cancelled", func(t *testing.T) {
		s := New[int]()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := s.Wait(ctx)
		require.ErrorIs(t, err, context.Canceled)
	})
}
