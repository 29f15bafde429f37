package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/bamsammich/crcsum/internal/checksum"
	"github.com/bamsammich/crcsum/internal/stats"
	"golang.org/x/time/rate"
)

// ErrTimedOut is returned by Executor.Execute when a checksum misses its
// deadline.
var ErrTimedOut = errors.New("checksum timed out")

// ComputeFunc produces the checksum for one task. Implementations should
// return promptly once ctx is done.
type ComputeFunc func(ctx context.Context, task FileTask) (uint32, error)

// FileChecksum returns the ComputeFunc used for real scans: the file's
// CRC-32, optionally throttled by limiter, with bytes read fed to st.
func FileChecksum(limiter *rate.Limiter, st *stats.Collector) ComputeFunc {
	return func(ctx context.Context, task FileTask) (uint32, error) {
		sum, _, err := checksum.File(ctx, task.Path, func(r io.Reader) io.Reader {
			if st != nil {
				r = &countingReader{r: r, stats: st}
			}
			if limiter != nil {
				r = newRateLimitedReader(ctx, r, limiter)
			}
			return r
		})
		return sum, err
	}
}

// SkipList records paths whose checksum exceeded the deadline.
type SkipList struct {
	mu    sync.Mutex
	paths []string
}

// Add records path as skipped.
func (l *SkipList) Add(path string) {
	l.mu.Lock()
	l.paths = append(l.paths, path)
	l.mu.Unlock()
}

// Paths returns the skipped paths in sorted order.
func (l *SkipList) Paths() []string {
	l.mu.Lock()
	out := slices.Clone(l.paths)
	l.mu.Unlock()
	slices.Sort(out)
	return out
}

// Len returns the number of skipped paths.
func (l *SkipList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.paths)
}

// Executor runs a ComputeFunc under a per-task deadline.
//
// A computation that misses the deadline is abandoned: Execute returns
// ErrTimedOut without waiting for it. Its context is cancelled, so a
// context-aware computation stops at its next check, but nothing depends
// on that happening.
type Executor struct {
	compute ComputeFunc
	timeout time.Duration
	skipped *SkipList
	stats   *stats.Collector
}

// NewExecutor creates an executor. A zero timeout runs computations
// synchronously with no deadline.
func NewExecutor(compute ComputeFunc, timeout time.Duration, skipped *SkipList, st *stats.Collector) *Executor {
	if skipped == nil {
		skipped = &SkipList{}
	}
	if st == nil {
		st = stats.NewCollector()
	}
	return &Executor{compute: compute, timeout: timeout, skipped: skipped, stats: st}
}

type outcome struct {
	sum uint32
	err error
}

// Execute computes the checksum of task. On timeout the task is added to
// the skip list and the returned error wraps ErrTimedOut. If ctx itself is
// cancelled, ctx.Err() is returned and nothing is recorded.
func (e *Executor) Execute(ctx context.Context, task FileTask) (uint32, error) {
	if e.timeout <= 0 {
		return e.compute(ctx, task)
	}

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	// Buffered so an abandoned computation can always deliver and exit.
	done := make(chan outcome, 1)
	go func() {
		sum, err := e.compute(runCtx, task)
		done <- outcome{sum: sum, err: err}
	}()

	select {
	case out := <-done:
		if out.err == nil || runCtx.Err() == nil {
			return out.sum, out.err
		}
		// The computation gave up because its context ended.
	case <-runCtx.Done():
		// A result that landed at the deadline still counts.
		select {
		case out := <-done:
			if out.err == nil {
				return out.sum, nil
			}
		default:
		}
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	e.skipped.Add(task.Path)
	e.stats.AddTimedOut(1)
	slog.Info("checksum timed out, abandoning", "path", task.Path, "timeout", e.timeout)
	return 0, fmt.Errorf("%s: %w after %s", task.Path, ErrTimedOut, e.timeout)
}
