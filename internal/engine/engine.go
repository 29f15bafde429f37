package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/bamsammich/crcsum/internal/filter"
	"github.com/bamsammich/crcsum/internal/manifest"
	"github.com/bamsammich/crcsum/internal/stats"
	"golang.org/x/time/rate"
)

// Config describes a scan.
type Config struct {
	Root           string
	Mode           Mode
	Workers        int           // <= 0 means runtime.NumCPU()
	Timeout        time.Duration // per file; 0 means no deadline
	Filter         *filter.Chain
	PseudoPrefixes []string // nil means DefaultPseudoPrefixes
	BWLimit        int64    // bytes per second across all workers; 0 means unlimited
	Out            io.Writer
	Stats          *stats.Collector
	Compute        ComputeFunc     // nil means FileChecksum
	Progress       ProgressMonitor // started only when Mode.ProgressAllowed()
}

// ProgressSource is the read-only view a progress display polls.
type ProgressSource interface {
	Processed() int64
	Total() int64
	// Done reports that enumeration has finished and every task has been
	// processed.
	Done() bool
}

// ProgressMonitor renders progress until src is done or ctx is cancelled.
type ProgressMonitor interface {
	Run(ctx context.Context, src ProgressSource)
}

// Result is the outcome of a scan.
type Result struct {
	Records []manifest.Record // nil in ModePrint
	Skipped []string          // timed out, sorted
	Workers int
	Stats   stats.Snapshot
	Err     error
}

// Run enumerates cfg.Root, then checksums every file with a worker pool
// while an optional progress monitor observes. It blocks until complete.
func Run(ctx context.Context, cfg Config) Result {
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Compute == nil {
		var limiter *rate.Limiter
		if cfg.BWLimit > 0 {
			limiter = NewBWLimiter(cfg.BWLimit)
		}
		cfg.Compute = FileChecksum(limiter, cfg.Stats)
	}

	q := NewWorkQueue()
	scanner := NewScanner(ScannerConfig{
		Root:           cfg.Root,
		Filter:         cfg.Filter,
		PseudoPrefixes: cfg.PseudoPrefixes,
		Stats:          cfg.Stats,
	})

	scanStart := time.Now()
	found, err := scanner.Scan(ctx, q)
	if err != nil {
		return Result{Stats: cfg.Stats.Snapshot(), Err: fmt.Errorf("scan %s: %w", cfg.Root, err)}
	}
	slog.Debug("enumeration complete", "root", cfg.Root, "files", found, "elapsed", time.Since(scanStart))

	skipped := &SkipList{}
	sink := NewSink(cfg.Mode, cfg.Out)
	pool := NewWorkerPool(WorkerConfig{
		NumWorkers: cfg.Workers,
		Executor:   NewExecutor(cfg.Compute, cfg.Timeout, skipped, cfg.Stats),
		Sink:       sink,
		Stats:      cfg.Stats,
	})

	stopProgress := startProgress(ctx, cfg)
	pool.Run(ctx, q)
	stopProgress()

	res := Result{
		Skipped: skipped.Paths(),
		Workers: pool.Workers(),
		Stats:   cfg.Stats.Snapshot(),
	}
	if collect, ok := sink.(*CollectSink); ok {
		res.Records = collect.Records()
	}
	if ps, ok := sink.(*PrintSink); ok {
		res.Err = ps.Err()
	}
	if err := ctx.Err(); err != nil {
		res.Err = err
	}
	return res
}

// startProgress launches the monitor when the mode allows one and returns
// a function that stops it and waits for its final frame.
func startProgress(ctx context.Context, cfg Config) func() {
	if cfg.Progress == nil || !cfg.Mode.ProgressAllowed() {
		return func() {}
	}

	pctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		cfg.Progress.Run(pctx, &collectorProgress{stats: cfg.Stats})
	}()

	return func() {
		cancel()
		wg.Wait()
	}
}

// collectorProgress adapts the collector to ProgressSource. The scanner
// publishes the total just before closing the queue, so a known total
// means enumeration is over.
type collectorProgress struct {
	stats *stats.Collector
}

func (p *collectorProgress) Processed() int64 { return p.stats.Processed() }
func (p *collectorProgress) Total() int64     { return p.stats.Total() }

func (p *collectorProgress) Done() bool {
	return p.stats.TotalKnown() && p.stats.Processed() >= p.stats.Total()
}
