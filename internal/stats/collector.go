package stats

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const ringSize = 60

// Collector tracks scan progress using lock-free atomic counters. The
// scanner writes the total exactly once; workers increment everything else.
type Collector struct {
	filesTotal     atomic.Int64
	totalSet       atomic.Bool
	filesProcessed atomic.Int64
	filesSummed    atomic.Int64
	filesFailed    atomic.Int64
	filesTimedOut  atomic.Int64
	bytesRead      atomic.Int64
	startTime      time.Time

	// Ring buffer, written only by the progress reporter's Tick.
	mu          sync.Mutex
	throughput  [ringSize]int64 // bytes delta per tick
	filesPerSec [ringSize]int64 // files delta per tick
	ringIdx     int
	ringCount   int
	lastBytes   int64
	lastFiles   int64
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// SetTotal publishes the number of files discovered by enumeration.
// Only the first call has any effect.
func (c *Collector) SetTotal(files int64) {
	if c.totalSet.CompareAndSwap(false, true) {
		c.filesTotal.Store(files)
	}
}

// TotalKnown reports whether enumeration has published its total.
func (c *Collector) TotalKnown() bool { return c.totalSet.Load() }

func (c *Collector) AddProcessed(n int64) { c.filesProcessed.Add(n) }
func (c *Collector) AddSummed(n int64)    { c.filesSummed.Add(n) }
func (c *Collector) AddFailed(n int64)    { c.filesFailed.Add(n) }
func (c *Collector) AddTimedOut(n int64)  { c.filesTimedOut.Add(n) }
func (c *Collector) AddBytesRead(n int64) { c.bytesRead.Add(n) }

// Processed returns the number of dequeued tasks, successful or not.
func (c *Collector) Processed() int64 { return c.filesProcessed.Load() }

// Total returns the enumerated file count, or 0 before enumeration ends.
func (c *Collector) Total() int64 { return c.filesTotal.Load() }

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	FilesTotal     int64
	FilesProcessed int64
	FilesSummed    int64
	FilesFailed    int64
	FilesTimedOut  int64
	BytesRead      int64
	Elapsed        time.Duration
}

// Snapshot returns a point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		FilesTotal:     c.filesTotal.Load(),
		FilesProcessed: c.filesProcessed.Load(),
		FilesSummed:    c.filesSummed.Load(),
		FilesFailed:    c.filesFailed.Load(),
		FilesTimedOut:  c.filesTimedOut.Load(),
		BytesRead:      c.bytesRead.Load(),
		Elapsed:        c.Elapsed(),
	}
}

// Tick records byte/file deltas into the ring buffer. Called at a fixed
// interval by the progress reporter.
func (c *Collector) Tick() {
	currentBytes := c.bytesRead.Load()
	currentFiles := c.filesProcessed.Load()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.throughput[c.ringIdx] = currentBytes - c.lastBytes
	c.filesPerSec[c.ringIdx] = currentFiles - c.lastFiles
	c.lastBytes = currentBytes
	c.lastFiles = currentFiles

	c.ringIdx = (c.ringIdx + 1) % ringSize
	if c.ringCount < ringSize {
		c.ringCount++
	}
}

// RollingSpeed returns the average bytes per tick over the last n ticks.
func (c *Collector) RollingSpeed(n int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rollingAvg(c.throughput[:], n)
}

// RollingFilesPerTick returns the average files per tick over the last n ticks.
func (c *Collector) RollingFilesPerTick(n int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rollingAvg(c.filesPerSec[:], n)
}

func (c *Collector) rollingAvg(buf []int64, n int) float64 {
	count := min(n, c.ringCount)
	if count <= 0 {
		return 0
	}
	var sum int64
	for i := 0; i < count; i++ {
		idx := (c.ringIdx - 1 - i + ringSize) % ringSize
		sum += buf[idx]
	}
	return float64(sum) / float64(count)
}

// Elapsed returns time since collector creation.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"total=%d processed=%d summed=%d failed=%d timedout=%d bytes=%d",
		s.FilesTotal, s.FilesProcessed, s.FilesSummed, s.FilesFailed,
		s.FilesTimedOut, s.BytesRead,
	)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
