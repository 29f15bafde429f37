// Package metrics exports the outcome of a scan in the Prometheus text
// format, for node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bamsammich/crcsum/internal/stats"
)

// Run describes a finished scan.
type Run struct {
	Root     string
	Mode     string
	Stats    stats.Snapshot
	Finished time.Time

	// Comparison results; only exported when Compared is set.
	Compared  bool
	Changed   int
	Unchanged int
}

// Registry builds a registry holding the gauges for r. Each call returns a
// fresh registry so nothing leaks between runs.
func Registry(r Run) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	labels := prometheus.Labels{"root": r.Root, "mode": r.Mode}

	gauge := func(name, help string, v float64) {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "crcsum",
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
		g.Set(v)
		reg.MustRegister(g)
	}

	s := r.Stats
	gauge("files_total", "Files found by enumeration.", float64(s.FilesTotal))
	gauge("files_processed", "Files dequeued by a worker.", float64(s.FilesProcessed))
	gauge("files_summed", "Files checksummed successfully.", float64(s.FilesSummed))
	gauge("files_failed", "Files that could not be read.", float64(s.FilesFailed))
	gauge("files_timed_out", "Files abandoned after the per-file timeout.", float64(s.FilesTimedOut))
	gauge("bytes_read", "Bytes read while checksumming.", float64(s.BytesRead))
	gauge("duration_seconds", "Wall time of the scan.", s.Elapsed.Seconds())
	gauge("last_run_timestamp_seconds", "Unix time the scan finished.",
		float64(r.Finished.UnixNano())/float64(time.Second))

	if r.Compared {
		gauge("check_changed_files", "Files whose checksum differs from the baseline.", float64(r.Changed))
		gauge("check_unchanged_files", "Files whose checksum matches the baseline.", float64(r.Unchanged))
	}
	return reg
}

// WriteTextfile atomically writes the metrics for r to path.
func WriteTextfile(path string, r Run) error {
	if err := prometheus.WriteToTextfile(path, Registry(r)); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
