// Package idempotency guards side effects (such as sending an email) so a
// redelivered message runs them at most once.
package idempotency

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrAlreadyInProgress = errors.New("operation already in progress")
	ErrAlreadyCompleted  = errors.New("operation already completed")
	ErrAlreadyFailed     = errors.New("operation already failed")
	ErrInvalidState      = errors.New("invalid state")
)

// IsDuplicate reports whether err means an earlier run already claimed the key.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrAlreadyInProgress) ||
		errors.Is(err, ErrAlreadyCompleted) ||
		errors.Is(err, ErrAlreadyFailed)
}

// State is the value stored under a claimed key.
type State string

const (
	StateNone       State = ""
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// duplicateOf maps a state found under a key to the error Exec reports.
var duplicateOf = map[State]error{
	StateInProgress: ErrAlreadyInProgress,
	StateCompleted:  ErrAlreadyCompleted,
	StateFailed:     ErrAlreadyFailed,
}

// Idempotency runs fn at most once per key.
type Idempotency interface {
	Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error
}

// StateTracker keeps per-key state in Redis under prefix+key.
type StateTracker struct {
	client redis.Cmdable
	prefix string
}

// New returns a StateTracker. An empty prefix means "idempotency:".
func New(client redis.Cmdable, prefix string) *StateTracker {
	return &StateTracker{client: client, prefix: cmp.Or(prefix, "idempotency:")}
}

type Option func(*settings)

type settings struct {
	lock time.Duration
	keep time.Duration
}

// WithLockDuration bounds how long an in-progress claim outlives a crashed worker.
func WithLockDuration(d time.Duration) Option {
	return func(s *settings) { s.lock = d }
}

// WithStateTTL sets how long a completed or failed outcome is remembered.
func WithStateTTL(d time.Duration) Option {
	return func(s *settings) { s.keep = d }
}

func newSettings(opts []Option) settings {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	if s.lock <= 0 {
		s.lock = time.Minute
	}
	if s.keep <= 0 {
		s.keep = 24 * time.Hour
	}
	return s
}

// claim sets key to in_progress unless it already holds a state, using a
// single SET NX GET round trip. It returns StateNone when the caller now
// owns the key.
func (s *StateTracker) claim(ctx context.Context, key string, lock time.Duration) (State, error) {
	prev, err := s.client.SetArgs(ctx, s.prefix+key, string(StateInProgress), redis.SetArgs{
		Mode: "NX",
		Get:  true,
		TTL:  lock,
	}).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return StateNone, nil
	case err != nil:
		return StateNone, err
	}

	if _, known := duplicateOf[State(prev)]; !known {
		return StateNone, fmt.Errorf("%w: %q under %s", ErrInvalidState, prev, key)
	}
	return State(prev), nil
}

func (s *StateTracker) settle(ctx context.Context, key string, st State, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, string(st), ttl).Err()
}

// Exec runs fn if key is unclaimed. The outcome is stored either way, so a
// failed fn is not retried: later calls return ErrAlreadyFailed.
// Errors from Redis itself are returned before fn runs.
func (s *StateTracker) Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error {
	cfg := newSettings(opts)

	st, err := s.claim(ctx, key, cfg.lock)
	if err != nil {
		return err
	}
	if dup, ok := duplicateOf[st]; ok {
		return dup
	}

	if runErr := fn(ctx); runErr != nil {
		return errors.Join(runErr, s.settle(ctx, key, StateFailed, cfg.keep))
	}
	return s.settle(ctx, key, StateCompleted, cfg.keep)
}
