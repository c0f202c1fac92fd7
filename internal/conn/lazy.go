// Package conn provides a memoized, concurrency-safe connection initializer.
package conn

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultDialTimeout bounds a dial when NewLazy is given no timeout.
const DefaultDialTimeout = 10 * time.Second

// Lazy establishes a T on first use and hands the same value to every later caller.
//
// Concurrent first callers share one dial. The dial runs detached from any caller's
// cancellation and is bounded by the Lazy's timeout instead, so one caller giving up does
// not fail the others. A failed dial is not cached: the next Get tries again, so a store
// that was down at start-up is picked up once it recovers.
type Lazy[T any] struct {
	dial    func(ctx context.Context) (T, error)
	timeout time.Duration

	group singleflight.Group
	mu    sync.RWMutex
	value T
	ready bool
}

// NewLazy returns a Lazy that calls dial to create the value. A timeout <= 0 means
// DefaultDialTimeout.
func NewLazy[T any](dial func(ctx context.Context) (T, error), timeout time.Duration) *Lazy[T] {
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	return &Lazy[T]{dial: dial, timeout: timeout}
}

// Get returns the established value, dialing if needed. If ctx ends while the dial is
// in flight, Get returns ctx.Err() and the dial carries on for the remaining callers.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	if v, ok := l.Peek(); ok {
		return v, nil
	}

	ch := l.group.DoChan("dial", func() (interface{}, error) {
		if v, ok := l.Peek(); ok {
			return v, nil
		}

		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()
		v, err := l.dial(dctx)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		l.value = v
		l.ready = true
		l.mu.Unlock()
		return v, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// Peek returns the value if it has been established, without dialing.
func (l *Lazy[T]) Peek() (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.value, l.ready
}
