package engine

import (
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/bamsammich/crcsum/internal/manifest"
)

// Mode selects what happens to checksum results.
type Mode int

const (
	// ModePrint writes each result to the output as it arrives.
	ModePrint Mode = iota
	// ModeOutput collects results for writing a manifest.
	ModeOutput
	// ModeCheck collects results for comparison with a baseline manifest.
	ModeCheck
)

func (m Mode) String() string {
	switch m {
	case ModePrint:
		return "print"
	case ModeOutput:
		return "output"
	case ModeCheck:
		return "check"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ProgressAllowed reports whether a progress display may run in this mode.
//
//	mode    progress
//	print   never (results stream to the console)
//	output  unless disabled
//	check   unless disabled
func (m Mode) ProgressAllowed() bool {
	return m == ModeOutput || m == ModeCheck
}

// Sink receives successful checksum results from workers. Implementations
// must be safe for concurrent use.
type Sink interface {
	Accept(rec manifest.Record)
}

// NewSink returns the sink for mode. w is only used by ModePrint.
func NewSink(mode Mode, w io.Writer) Sink {
	if mode == ModePrint {
		return NewPrintSink(w)
	}
	return &CollectSink{}
}

// PrintSink writes one "%08x  path" line per result. Lines never interleave.
type PrintSink struct {
	mu  sync.Mutex
	w   io.Writer
	err error
}

// NewPrintSink creates a PrintSink writing to w.
func NewPrintSink(w io.Writer) *PrintSink {
	return &PrintSink{w: w}
}

func (s *PrintSink) Accept(rec manifest.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return
	}
	if _, err := fmt.Fprintf(s.w, "%08x  %s\n", rec.Checksum, rec.Path); err != nil {
		s.err = fmt.Errorf("write result: %w", err)
	}
}

// Err returns the first write error, if any. Later results are dropped
// after a failure.
func (s *PrintSink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// CollectSink accumulates results in arrival order.
type CollectSink struct {
	mu      sync.Mutex
	records []manifest.Record
}

func (s *CollectSink) Accept(rec manifest.Record) {
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
}

// Records returns a copy of the accumulated results.
func (s *CollectSink) Records() []manifest.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.records)
}

// Len returns the number of accumulated results.
func (s *CollectSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
