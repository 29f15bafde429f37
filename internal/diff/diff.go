// Package diff compares fresh checksums against a baseline manifest.
//
// Only files present in both are reported. Files missing from the baseline
// and baseline entries with no current counterpart are never reported.
package diff

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bamsammich/crcsum/internal/manifest"
)

// Status classifies a compared file.
type Status int

const (
	Changed Status = iota
	Unchanged
)

func (s Status) String() string {
	switch s {
	case Changed:
		return "changed"
	case Unchanged:
		return "unchanged"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Entry is one reported file.
type Entry struct {
	Path   string
	Old    uint32 // baseline checksum
	New    uint32 // current checksum
	Status Status
}

// Report is the outcome of a comparison.
type Report struct {
	Entries   []Entry // sorted by path
	Changed   int
	Unchanged int
	// NotInBaseline counts current files the baseline has no record of.
	// They are counted but never listed.
	NotInBaseline int
}

// Compare checks each current record against baseline. Changed files are
// always reported; unchanged files only when verbose.
func Compare(current []manifest.Record, baseline map[string]uint32, verbose bool) Report {
	var r Report
	for _, rec := range current {
		old, ok := baseline[rec.Path]
		switch {
		case !ok:
			r.NotInBaseline++
		case old != rec.Checksum:
			r.Changed++
			r.Entries = append(r.Entries, Entry{Path: rec.Path, Old: old, New: rec.Checksum, Status: Changed})
		default:
			r.Unchanged++
			if verbose {
				r.Entries = append(r.Entries, Entry{Path: rec.Path, Old: old, New: rec.Checksum, Status: Unchanged})
			}
		}
	}

	slices.SortFunc(r.Entries, func(a, b Entry) int {
		return strings.Compare(a.Path, b.Path)
	})
	return r
}
