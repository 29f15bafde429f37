package ui

import (
	"bytes"
	"testing"

	"github.com/bamsammich/crcsum/internal/config"
	"github.com/bamsammich/crcsum/internal/diff"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestReporterDiff(t *testing.T) {
	var buf bytes.Buffer
	NewReporter(&buf, false).Diff(diff.Report{Entries: []diff.Entry{
		{Path: "a", Old: 1, New: 1, Status: diff.Unchanged},
		{Path: "b", Old: 99, New: 2, Status: diff.Changed},
	}})

	assert.Equal(t, " - [unchanged] a\n - [changed] b (00000063 -> 00000002)\n", buf.String())
}

func TestReporterDiffEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewReporter(&buf, false).Diff(diff.Report{})
	assert.Empty(t, buf.String())
}

func TestReporterSkipped(t *testing.T) {
	tests := []struct {
		name    string
		paths   []string
		verbose bool
		want    string
	}{
		{"none", nil, true, ""},
		{"count only", []string{"/a", "/b"}, false, "\nskipped 2 files due to timeout\n"},
		{"listed", []string{"/a", "/b"}, true, "\nskipped 2 files due to timeout:\n - /a\n - /b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			NewReporter(&buf, false).Skipped(tt.paths, tt.verbose)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestReporterWritten(t *testing.T) {
	var buf bytes.Buffer
	NewReporter(&buf, false).Written("/tmp/sums.crc", 1200)
	assert.Equal(t, "checksums written to /tmp/sums.crc (1,200 records)\n", buf.String())
}

func TestReporterStyledKeepsText(t *testing.T) {
	var buf bytes.Buffer
	NewReporter(&buf, true).Diff(diff.Report{Entries: []diff.Entry{
		{Path: "/etc/hosts", Old: 1, New: 2, Status: diff.Changed},
	}})
	assert.Contains(t, buf.String(), "[changed]")
	assert.Contains(t, buf.String(), "/etc/hosts")
}

func TestApplyTheme(t *testing.T) {
	orig := ColorChanged
	t.Cleanup(func() {
		ColorChanged = orig
		rebuildStyles()
	})

	red := "#ff0000"
	ApplyTheme(config.ThemeConfig{Changed: &red})
	assert.Equal(t, lipgloss.Color("#ff0000"), ColorChanged)
	assert.Equal(t, lipgloss.TerminalColor(lipgloss.Color("#ff0000")), styleChanged.GetForeground())
}
