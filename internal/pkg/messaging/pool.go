package messaging

import (
	"context"
	"errors"
	"slices"
	"sync"
)

var (
	ErrSourceRequired  = errors.New("messaging: source is required")
	ErrHandlerRequired = errors.New("messaging: handler is required")
	ErrBrokerRequired  = errors.New("messaging: broker address is required")
	ErrGroupRequired   = errors.New("messaging: consumer group is required")
	ErrClosed          = errors.New("messaging: client closed")
)

func checkConsume(ctx context.Context, source string, handler Handler) error {
	switch {
	case ctx.Err() != nil:
		return ctx.Err()
	case source == "":
		return ErrSourceRequired
	case handler == nil:
		return ErrHandlerRequired
	}
	return nil
}

// registry tracks the live readers or subscriptions of a client so Close can
// stop them. Once closed it refuses new entries.
type registry[T comparable] struct {
	mu     sync.Mutex
	items  []T
	closed bool
}

func (r *registry[T]) add(v T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	r.items = append(r.items, v)
	return nil
}

func (r *registry[T]) remove(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = slices.DeleteFunc(r.items, func(x T) bool { return x == v })
}

// close marks the registry closed and hands back what was live. The second
// result is false when it was already closed.
func (r *registry[T]) close() ([]T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, false
	}
	r.closed = true
	items := r.items
	r.items = nil
	return items, true
}

// fanOut starts n workers (at least one) draining in through fn. The
// returned func blocks until in is closed and every worker has returned.
func fanOut[T any](n int, in <-chan T, fn func(T) error) (wait func()) {
	var wg sync.WaitGroup
	for range max(n, 1) {
		wg.Go(func() {
			for v := range in {
				if fn(v) != nil {
					return
				}
			}
		})
	}
	return wg.Wait
}

// firstError keeps the first error reported by any goroutine.
type firstError struct {
	once sync.Once
	ch   chan error
}

func newFirstError() *firstError { return &firstError{ch: make(chan error, 1)} }

func (f *firstError) set(err error) {
	if err == nil {
		return
	}
	f.once.Do(func() { f.ch <- err })
}
