package ui

import (
	"bytes"
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bamsammich/crcsum/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource finishes after processing total items, one per poll.
type fakeSource struct {
	total     int64
	processed atomic.Int64
	closed    atomic.Bool
}

func (f *fakeSource) Processed() int64 { return f.processed.Load() }

func (f *fakeSource) Total() int64 {
	if !f.closed.Load() {
		return 0
	}
	return f.total
}

func (f *fakeSource) Done() bool {
	return f.closed.Load() && f.processed.Load() >= f.total
}

func runWithTimeout(t *testing.T, p *Progress, ctx context.Context, src *fakeSource) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		p.Run(ctx, src)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("progress did not terminate")
	}
}

func TestProgressCompletes(t *testing.T) {
	var buf bytes.Buffer
	st := stats.NewCollector()
	p := NewProgress(&buf, st)
	p.interval = 5 * time.Millisecond

	src := &fakeSource{total: 4}
	go func() {
		time.Sleep(20 * time.Millisecond)
		src.closed.Store(true)
		for j := 0; j < 4; j++ {
			time.Sleep(10 * time.Millisecond)
			src.processed.Add(1)
			st.AddProcessed(1)
		}
	}()

	runWithTimeout(t, p, context.Background(), src)
	assert.Contains(t, buf.String(), "100%")
	assert.Contains(t, buf.String(), "(4/4")
}

func TestProgressEmptyScanStillFinishes(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, nil)
	p.interval = 5 * time.Millisecond

	src := &fakeSource{}
	src.closed.Store(true)

	runWithTimeout(t, p, context.Background(), src)
	assert.Contains(t, buf.String(), "100%")
}

func TestProgressStopsOnCancel(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, stats.NewCollector())
	p.interval = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	// Never done on its own.
	runWithTimeout(t, p, ctx, &fakeSource{total: 10})
	assert.Contains(t, buf.String(), "100%", "final frame is always drawn")
}

// syncBuffer lets the test read output while the bar is still drawing.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestProgressZeroRatioBeforeTotal(t *testing.T) {
	var buf syncBuffer
	p := NewProgress(&buf, nil)
	p.interval = time.Millisecond

	src := &fakeSource{total: 3}
	src.processed.Store(2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx, src)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	out := buf.String()
	assert.Contains(t, out, "0%")
	assert.NotContains(t, out, "100%")
	assert.NotContains(t, out, "66%")

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("progress did not terminate")
	}
}

func TestBarWidth(t *testing.T) {
	tests := []struct {
		cols int
		want int
	}{
		{cols: 200, want: 50},
		{cols: 110, want: 50},
		{cols: 80, want: 20},
		{cols: 40, want: 10},
		{cols: 0, want: 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, barWidth(tt.cols), "cols=%d", tt.cols)
	}
}

func TestNewProgressWidth(t *testing.T) {
	var buf bytes.Buffer
	assert.Equal(t, maxBarWidth, NewProgress(&buf, nil).width)

	// Not a terminal: TermWidth falls back to 80 columns.
	f, err := os.CreateTemp(t.TempDir(), "progress")
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, barWidth(80), NewProgress(f, nil).width)
}
