package engine

import (
	"context"
	"io"

	"github.com/bamsammich/crcsum/internal/stats"
	"golang.org/x/time/rate"
)

// NewBWLimiter returns a limiter capping aggregate reads at bytesPerSec.
// The burst is 1 MiB, or the rate itself when that is smaller.
func NewBWLimiter(bytesPerSec int64) *rate.Limiter {
	burst := 1 << 20
	if bytesPerSec < int64(burst) {
		burst = int(bytesPerSec)
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), burst)
}

// rateLimitedReader throttles reads through a limiter shared by all workers.
type rateLimitedReader struct {
	ctx     context.Context
	r       io.Reader
	limiter *rate.Limiter
}

func newRateLimitedReader(ctx context.Context, r io.Reader, limiter *rate.Limiter) *rateLimitedReader {
	return &rateLimitedReader{ctx: ctx, r: r, limiter: limiter}
}

func (rl *rateLimitedReader) Read(p []byte) (int, error) {
	// Never ask for more than the burst or WaitN fails outright.
	if b := rl.limiter.Burst(); b > 0 && len(p) > b {
		p = p[:b]
	}
	n, err := rl.r.Read(p)
	if n > 0 {
		if waitErr := rl.limiter.WaitN(rl.ctx, n); waitErr != nil {
			return n, waitErr
		}
	}
	return n, err
}

// countingReader feeds bytes read into the collector as they arrive.
type countingReader struct {
	r     io.Reader
	stats *stats.Collector
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.stats.AddBytesRead(int64(n))
	}
	return n, err
}
