package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bamsammich/crcsum/internal/engine"
	"github.com/bamsammich/crcsum/internal/stats"
	"github.com/schollz/progressbar/v3"
)

const (
	// ProgressInterval is how often the bar polls the counters.
	ProgressInterval = 200 * time.Millisecond
	rateWindow       = 10 // ticks

	maxBarWidth = 50
	minBarWidth = 10
	// Columns taken by the description, count and brackets around the bar.
	barReserve = 60
)

// Progress renders a progress bar for a running scan. It only observes:
// nothing it does affects the workers.
type Progress struct {
	w        io.Writer
	stats    *stats.Collector
	interval time.Duration
	width    int
}

// NewProgress creates a bar writing to w. st supplies the throughput shown
// next to the bar and may be nil.
func NewProgress(w io.Writer, st *stats.Collector) *Progress {
	width := maxBarWidth
	if f, ok := w.(*os.File); ok {
		width = barWidth(TermWidth(f))
	}
	return &Progress{w: w, stats: st, interval: ProgressInterval, width: width}
}

// barWidth sizes the bar so the whole line fits in cols terminal columns.
func barWidth(cols int) int {
	return min(max(cols-barReserve, minBarWidth), maxBarWidth)
}

// Run polls src until it reports done or ctx is cancelled, then draws a
// final 100% frame. The total is unknown until enumeration ends; until then
// the bar stays at zero.
func (p *Progress) Run(ctx context.Context, src engine.ProgressSource) {
	bar := progressbar.NewOptions64(1,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetWidth(p.width),
		progressbar.OptionSetDescription("checksumming"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(p.w)
		}),
	)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var limit int64 = 1
	for {
		total := src.Total()
		if total > 0 && total != limit {
			limit = total
			bar.ChangeMax64(limit)
		}
		if total > 0 {
			_ = bar.Set64(min(src.Processed(), limit))
		}
		if src.Done() {
			break
		}

		select {
		case <-ctx.Done():
			p.finish(bar)
			return
		case <-ticker.C:
			if p.stats != nil {
				p.stats.Tick()
				bar.Describe(p.describe())
			}
		}
	}
	p.finish(bar)
}

func (p *Progress) finish(bar *progressbar.ProgressBar) {
	_ = bar.Finish()
}

func (p *Progress) describe() string {
	perSec := float64(time.Second) / float64(p.interval)
	files := p.stats.RollingFilesPerTick(rateWindow) * perSec
	bps := p.stats.RollingSpeed(rateWindow) * perSec
	return fmt.Sprintf("%s  %s", FormatFileRate(files), FormatRate(bps))
}
