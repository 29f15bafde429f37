package engine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"

	"github.com/bamsammich/crcsum/internal/manifest"
	"github.com/bamsammich/crcsum/internal/stats"
)

// WorkerConfig controls worker behavior.
type WorkerConfig struct {
	NumWorkers int // <= 0 means runtime.NumCPU()
	Executor   *Executor
	Sink       Sink
	Stats      *stats.Collector
}

// WorkerPool drains a WorkQueue through an Executor.
type WorkerPool struct {
	cfg WorkerConfig
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(cfg WorkerConfig) *WorkerPool {
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = max(runtime.NumCPU(), 1)
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	return &WorkerPool{cfg: cfg}
}

// Workers returns the pool size.
func (wp *WorkerPool) Workers() int { return wp.cfg.NumWorkers }

// Run starts the workers and blocks until the queue is closed and drained,
// or ctx is cancelled. Cancelled workers finish their current task first.
func (wp *WorkerPool) Run(ctx context.Context, q *WorkQueue) {
	var wg sync.WaitGroup
	for j := 0; j < wp.cfg.NumWorkers; j++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				task, ok := q.Pop()
				if !ok {
					return
				}
				wp.processTask(ctx, task)
				wp.cfg.Stats.AddProcessed(1)
			}
		}()
	}
	wg.Wait()
}

func (wp *WorkerPool) processTask(ctx context.Context, task FileTask) {
	sum, err := wp.cfg.Executor.Execute(ctx, task)
	switch {
	case err == nil:
		wp.cfg.Stats.AddSummed(1)
		wp.cfg.Sink.Accept(manifest.Record{Path: task.Path, Checksum: sum})
	case errors.Is(err, ErrTimedOut):
		// Recorded by the executor.
	case ctx.Err() != nil:
		// Interrupted; the run is being torn down.
	default:
		wp.cfg.Stats.AddFailed(1)
		slog.Debug("checksum failed", "path", task.Path, "error", err)
	}
}
