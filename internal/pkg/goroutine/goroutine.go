package goroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/shandysiswandi/emailotp/internal/pkg/stacktrace"
)

// DefaultMaxGoroutine is multiplied by NumCPU when NewManager gets a
// non-positive limit.
const DefaultMaxGoroutine int = 100

// Manager runs background tasks with a concurrency limit. Task errors are
// collected and returned by Wait.
type Manager struct {
	slots chan struct{}
	wg    sync.WaitGroup

	// mu guards closed. Scheduling holds it for reading so Wait cannot
	// close the manager between the check and wg.Add.
	mu     sync.RWMutex
	closed bool

	errMu sync.Mutex
	errs  []error
}

// NewManager returns a Manager running at most limit tasks at once.
func NewManager(limit int) *Manager {
	if limit < 1 {
		limit = runtime.NumCPU() * DefaultMaxGoroutine
	}
	return &Manager{slots: make(chan struct{}, limit)}
}

// Go runs f with ctx and reports whether it was scheduled. A task whose ctx
// is already done when it starts is skipped.
func (g *Manager) Go(ctx context.Context, f func(ctx context.Context) error) bool {
	return g.spawn(ctx, ctx, f)
}

// GoDetached runs f with a context that keeps ctx values (correlation id,
// trace) but not its cancellation, bounded by timeout when positive. The
// request that triggered the task may finish before it does.
func (g *Manager) GoDetached(ctx context.Context, timeout time.Duration, f func(ctx context.Context) error) bool {
	return g.spawn(ctx, context.WithoutCancel(ctx), func(tctx context.Context) error {
		if timeout > 0 {
			var cancel context.CancelFunc
			tctx, cancel = context.WithTimeout(tctx, timeout)
			defer cancel()
		}
		return f(tctx)
	})
}

func (g *Manager) spawn(callerCtx, taskCtx context.Context, f func(ctx context.Context) error) bool {
	if g == nil {
		return false
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.closed {
		slog.WarnContext(callerCtx, "goroutine manager is closed, task dropped")
		return false
	}

	select {
	case g.slots <- struct{}{}:
	default:
		slog.WarnContext(callerCtx, "goroutine limit reached, task dropped", "limit", cap(g.slots))
		return false
	}

	g.wg.Go(func() {
		defer func() { <-g.slots }()
		defer g.logPanic(taskCtx)

		if err := taskCtx.Err(); err != nil {
			slog.WarnContext(taskCtx, "task context done before start", "error", err)
			return
		}
		if err := f(taskCtx); err != nil {
			g.errMu.Lock()
			g.errs = append(g.errs, err)
			g.errMu.Unlock()
		}
	})
	return true
}

func (g *Manager) logPanic(ctx context.Context) {
	rvr := recover()
	if rvr == nil {
		return
	}

	stack := debug.Stack()
	var where any = string(stack)
	if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
		where = paths
	}
	slog.ErrorContext(ctx, "panic recovered in goroutine", "panic", rvr, "stack", where)
}

// Wait stops accepting tasks, blocks until the running ones finish and
// returns their joined errors.
func (g *Manager) Wait() error {
	if g == nil {
		return nil
	}

	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()

	g.wg.Wait()

	g.errMu.Lock()
	defer g.errMu.Unlock()
	return errors.Join(g.errs...)
}
