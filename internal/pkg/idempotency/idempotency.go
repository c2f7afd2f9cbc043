// Package idempotency makes a keyed side effect run at most once per TTL.
// State lives in Redis so a retried OTP request is caught on any replica.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrKeyRequired       = errors.New("idempotency key is required")
	ErrAlreadyInProgress = errors.New("operation already in progress")
	ErrAlreadyCompleted  = errors.New("operation already completed")
	ErrAlreadyFailed     = errors.New("operation already failed")
	ErrInvalidState      = errors.New("invalid state")
)

// IsDuplicate reports whether err means the key was used before.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrAlreadyInProgress) ||
		errors.Is(err, ErrAlreadyCompleted) ||
		errors.Is(err, ErrAlreadyFailed)
}

// State is the stored progress of a keyed operation.
type State string

const (
	// StateNone means the caller now owns the key.
	StateNone       State = "none"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	StateError      State = "error"
)

func (s State) String() string {
	return string(s)
}

func (s State) err() error {
	switch s {
	case StateNone:
		return nil
	case StateInProgress:
		return ErrAlreadyInProgress
	case StateCompleted:
		return ErrAlreadyCompleted
	case StateFailed:
		return ErrAlreadyFailed
	default:
		return ErrInvalidState
	}
}

// Idempotency runs fn at most once for key.
type Idempotency interface {
	Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error
}

// acquireScript returns the stored state, or "" after claiming the key.
var acquireScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
	return cur
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
return ''
`)

// StateTracker implements Idempotency with one Redis key per operation that
// moves from in_progress to completed or failed.
type StateTracker struct {
	client redis.UniversalClient
	prefix string
}

// New builds a StateTracker whose keys are namespaced by prefix.
// An empty prefix defaults to "idempotency:".
func New(client redis.UniversalClient, prefix string) *StateTracker {
	if prefix == "" {
		prefix = "idempotency:"
	}
	return &StateTracker{client: client, prefix: prefix}
}

const (
	defaultLockDuration = time.Minute
	defaultStateTTL     = time.Minute
)

// Option tunes Exec.
type Option func(*execOptions)

type execOptions struct {
	lockDuration time.Duration
	stateTTL     time.Duration
}

// WithLockDuration bounds how long an in-progress marker blocks duplicates.
func WithLockDuration(d time.Duration) Option {
	return func(o *execOptions) { o.lockDuration = d }
}

// WithStateTTL sets how long completed and failed markers are kept.
func WithStateTTL(d time.Duration) Option {
	return func(o *execOptions) { o.stateTTL = d }
}

// Acquire claims key for lockDuration. StateNone means the caller owns it;
// any other state is what a previous caller left behind.
func (s *StateTracker) Acquire(ctx context.Context, key string, lockDuration time.Duration) (State, error) {
	if key == "" {
		return StateError, ErrKeyRequired
	}

	cur, err := acquireScript.Run(ctx, s.client, []string{s.prefix + key},
		StateInProgress.String(), lockDuration.Milliseconds()).Text()
	if err != nil {
		return StateError, err
	}
	if cur == "" {
		return StateNone, nil
	}

	st := State(cur)
	if errors.Is(st.err(), ErrInvalidState) {
		return StateError, ErrInvalidState
	}
	return st, nil
}

func (s *StateTracker) mark(ctx context.Context, key string, st State, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, st.String(), ttl).Err()
}

// Exec runs fn once for key. A duplicate returns ErrAlreadyInProgress,
// ErrAlreadyCompleted or ErrAlreadyFailed without calling fn. The outcome of
// fn is stored for the state TTL; a storage error is returned only when fn
// itself succeeded.
func (s *StateTracker) Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error {
	o := execOptions{lockDuration: defaultLockDuration, stateTTL: defaultStateTTL}
	for _, opt := range opts {
		opt(&o)
	}
	o.lockDuration = max(o.lockDuration, time.Millisecond)
	if o.stateTTL <= 0 {
		o.stateTTL = defaultStateTTL
	}

	st, err := s.Acquire(ctx, key, o.lockDuration)
	if err != nil {
		return err
	}
	if err := st.err(); err != nil {
		return err
	}

	if err := fn(ctx); err != nil {
		return errors.Join(err, s.mark(ctx, key, StateFailed, o.stateTTL))
	}
	return s.mark(ctx, key, StateCompleted, o.stateTTL)
}
