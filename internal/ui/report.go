package ui

import (
	"fmt"
	"io"

	"github.com/bamsammich/crcsum/internal/diff"
	"github.com/charmbracelet/lipgloss"
)

// Reporter writes scan results for a human reader. Styling is applied only
// when styled is set, normally when the writer is a terminal.
type Reporter struct {
	w      io.Writer
	styled bool
}

// NewReporter creates a Reporter writing to w.
func NewReporter(w io.Writer, styled bool) *Reporter {
	return &Reporter{w: w, styled: styled}
}

func (r *Reporter) render(s lipgloss.Style, text string) string {
	if !r.styled {
		return text
	}
	return s.Render(text)
}

// Diff writes one line per reported entry:
//
//	 - [changed] /etc/hosts (1a2b3c4d -> 5e6f7a8b)
//	 - [unchanged] /etc/passwd
func (r *Reporter) Diff(rep diff.Report) {
	for _, e := range rep.Entries {
		switch e.Status {
		case diff.Changed:
			fmt.Fprintf(r.w, " - %s %s %s\n",
				r.render(styleChanged, "[changed]"),
				r.render(stylePath, e.Path),
				r.render(styleMuted, fmt.Sprintf("(%08x -> %08x)", e.Old, e.New)),
			)
		case diff.Unchanged:
			fmt.Fprintf(r.w, " - %s %s\n",
				r.render(styleUnchanged, "[unchanged]"),
				r.render(stylePath, e.Path),
			)
		}
	}
}

// Skipped writes the timeout summary. Nothing is written when paths is
// empty; individual paths are listed only when verbose.
func (r *Reporter) Skipped(paths []string, verbose bool) {
	if len(paths) == 0 {
		return
	}
	header := fmt.Sprintf("skipped %d files due to timeout", len(paths))
	if !verbose {
		fmt.Fprintf(r.w, "\n%s\n", r.render(styleWarning, header))
		return
	}
	fmt.Fprintf(r.w, "\n%s:\n", r.render(styleWarning, header))
	for _, p := range paths {
		fmt.Fprintf(r.w, " - %s\n", p)
	}
}

// Written confirms a manifest write.
func (r *Reporter) Written(path string, records int) {
	fmt.Fprintf(r.w, "checksums written to %s %s\n", path,
		r.render(styleMuted, fmt.Sprintf("(%s records)", FormatCount(int64(records)))))
}
