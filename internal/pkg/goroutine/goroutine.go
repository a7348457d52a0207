// Package goroutine runs the long-lived event consumers so shutdown can wait
// for them and see how they ended.
package goroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"

	"github.com/bridj/tripmailer/internal/pkg/stacktrace"
)

// DefaultMaxGoroutine times NumCPU is the limit used when NewManager gets a
// non-positive value.
const DefaultMaxGoroutine int = 100

var (
	ErrClosed       = errors.New("goroutine: manager is closed")
	ErrLimitReached = errors.New("goroutine: maximum goroutine limit reached")
)

// TaskError is a task's failure as reported by Wait.
type TaskError struct {
	Task string
	Err  error
}

func (e *TaskError) Error() string { return e.Task + ": " + e.Err.Error() }
func (e *TaskError) Unwrap() error { return e.Err }

// Manager bounds the number of running tasks, recovers their panics and
// keeps their errors for Wait.
type Manager struct {
	slots chan struct{}
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
	errs   []error
}

func NewManager(limit int) *Manager {
	if limit < 1 {
		limit = runtime.NumCPU() * DefaultMaxGoroutine
	}
	return &Manager{slots: make(chan struct{}, limit)}
}

// Go starts f under name, or returns ErrClosed or ErrLimitReached without
// starting it. A task whose ctx is already done never runs.
func (m *Manager) Go(ctx context.Context, name string, f func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		slog.WarnContext(ctx, "goroutine manager is closed, skipping task", "task", name)
		return ErrClosed
	}

	select {
	case m.slots <- struct{}{}:
	default:
		slog.WarnContext(ctx, "maximum goroutine limit reached, skipping task", "task", name)
		return ErrLimitReached
	}

	m.wg.Go(func() { m.run(ctx, name, f) })
	return nil
}

func (m *Manager) run(ctx context.Context, name string, f func(ctx context.Context) error) {
	defer func() {
		<-m.slots
		if rvr := recover(); rvr != nil {
			slog.ErrorContext(ctx, "panic occurred in goroutine", "task", name, "panic", rvr, stacktrace.Attr(1))
		}
	}()

	if err := ctx.Err(); err != nil {
		slog.WarnContext(ctx, "goroutine canceled before start", "task", name, "because", err)
		return
	}

	err := f(ctx)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}

	m.mu.Lock()
	m.errs = append(m.errs, &TaskError{Task: name, Err: err})
	m.mu.Unlock()
}

// Wait refuses new tasks, blocks until the running ones return and joins
// their errors. Cancellation does not count as an error.
func (m *Manager) Wait() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.wg.Wait()

	m.mu.Lock()
	defer m.mu.Unlock()
	return errors.Join(m.errs...)
}
