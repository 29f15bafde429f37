package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bamsammich/crcsum/internal/stats"
)

// FormatRate formats a bytes-per-second rate.
func FormatRate(bytesPerSec float64) string {
	if bytesPerSec <= 0 {
		return "0 B/s"
	}
	units := []string{"B/s", "KB/s", "MB/s", "GB/s", "TB/s"}
	val := bytesPerSec
	for _, u := range units {
		if val < 1024 {
			switch {
			case val < 10:
				return fmt.Sprintf("%.2f %s", val, u)
			case val < 100:
				return fmt.Sprintf("%.1f %s", val, u)
			default:
				return fmt.Sprintf("%.0f %s", val, u)
			}
		}
		val /= 1024
	}
	return fmt.Sprintf("%.1f PB/s", val)
}

// FormatFileRate formats a files-per-second rate.
func FormatFileRate(filesPerSec float64) string {
	switch {
	case filesPerSec <= 0:
		return "0 files/s"
	case filesPerSec < 10:
		return fmt.Sprintf("%.1f files/s", filesPerSec)
	default:
		return FormatCount(int64(filesPerSec+0.5)) + " files/s"
	}
}

// FormatCount formats an integer with comma separators.
func FormatCount(n int64) string {
	if n < 0 {
		return "-" + FormatCount(-n)
	}
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatBytes formats a byte count.
func FormatBytes(b int64) string {
	return stats.FormatBytes(b)
}

// FormatDuration formats elapsed time concisely.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// CompletionSummary builds the final summary line of a scan.
// Format: done ✓  files 48,917  size 2.1 GiB  avg 641 MB/s  time 3m 17s  failed 0  timed out 0
func CompletionSummary(snap stats.Snapshot) string {
	avg := 0.0
	if snap.Elapsed.Seconds() > 0 {
		avg = float64(snap.BytesRead) / snap.Elapsed.Seconds()
	}

	icon := "✓"
	if snap.FilesFailed > 0 || snap.FilesTimedOut > 0 {
		icon = "✗"
	}

	return fmt.Sprintf("done %s  files %s  size %s  avg %s  time %s  failed %d  timed out %d",
		icon,
		FormatCount(snap.FilesSummed),
		FormatBytes(snap.BytesRead),
		FormatRate(avg),
		FormatDuration(snap.Elapsed),
		snap.FilesFailed,
		snap.FilesTimedOut,
	)
}
