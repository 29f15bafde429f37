package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bamsammich/crcsum/internal/filter"
	"github.com/bamsammich/crcsum/internal/stats"
)

// DefaultPseudoPrefixes are kernel-virtual trees that are never scanned.
// Their files can be unbounded or block forever on read.
var DefaultPseudoPrefixes = []string{"/proc", "/sys", "/dev"}

// ScannerConfig controls enumeration.
type ScannerConfig struct {
	Root           string
	Filter         *filter.Chain
	PseudoPrefixes []string // nil means DefaultPseudoPrefixes
	Stats          *stats.Collector
}

// Scanner walks a tree and fills a WorkQueue with regular files.
type Scanner struct {
	cfg  ScannerConfig
	root string // absolute, as spelled by the caller

	// walkRoot is root with a symlinked final component resolved, since
	// WalkDir does not descend through a symlinked root.
	walkRoot string

	// virtualDevs caches the virtual filesystem name per device number,
	// "" for ordinary filesystems. Only the walking goroutine touches it.
	virtualDevs map[uint64]string
}

// NewScanner creates a scanner with the given config.
func NewScanner(cfg ScannerConfig) *Scanner {
	if cfg.PseudoPrefixes == nil {
		cfg.PseudoPrefixes = DefaultPseudoPrefixes
	}
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	return &Scanner{cfg: cfg, virtualDevs: make(map[uint64]string)}
}

// Scan walks the root, pushing one task per regular file (including
// symlinks that resolve to regular files). Entries that cannot be read are
// skipped. When the walk ends, for any reason, the total is published and
// the queue closed. Unreadable entries never fail the scan; only a bad
// root path or a cancelled context does.
func (s *Scanner) Scan(ctx context.Context, q *WorkQueue) (int64, error) {
	var count int64
	defer func() {
		s.cfg.Stats.SetTotal(count)
		q.Close()
	}()

	root, err := filepath.Abs(s.cfg.Root)
	if err != nil {
		return 0, fmt.Errorf("resolve root %s: %w", s.cfg.Root, err)
	}
	s.root = root

	if _, err := os.Stat(root); err != nil {
		slog.Warn("scan root unavailable", "root", root, "error", err)
		return 0, nil
	}
	s.walkRoot = root
	if lfi, err := os.Lstat(root); err == nil && lfi.Mode()&fs.ModeSymlink != 0 {
		resolved, err := filepath.EvalSymlinks(root)
		if err != nil {
			slog.Warn("scan root unavailable", "root", root, "error", err)
			return 0, nil
		}
		slog.Debug("scan root is a symlink", "root", root, "target", resolved)
		s.walkRoot = resolved
	}

	err = filepath.WalkDir(s.walkRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		path = s.display(path)
		if walkErr != nil {
			slog.Debug("skipping unreadable entry", "path", path, "error", walkErr)
			return nil
		}

		if d.IsDir() {
			return s.visitDir(path, d)
		}

		task, ok := s.visitFile(path, d)
		if ok {
			q.Push(task)
			count++
		}
		return nil
	})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return count, err
	}
	if err != nil {
		slog.Debug("walk ended early", "root", root, "error", err)
	}
	return count, nil
}

func (s *Scanner) visitDir(path string, d fs.DirEntry) error {
	if s.isPseudoPath(path) {
		slog.Debug("skipping pseudo filesystem", "path", path)
		return filepath.SkipDir
	}
	if path != s.root && !s.cfg.Filter.Match(s.rel(path), true, 0) {
		return filepath.SkipDir
	}
	info, err := d.Info()
	if err != nil {
		slog.Debug("skipping unreadable directory", "path", path, "error", err)
		return filepath.SkipDir
	}
	if fsType, virtual := s.virtualFS(path, info); virtual {
		slog.Debug("skipping virtual filesystem", "path", path, "type", fsType)
		return filepath.SkipDir
	}
	return nil
}

func (s *Scanner) visitFile(path string, d fs.DirEntry) (FileTask, bool) {
	if s.isPseudoPath(path) {
		return FileTask{}, false
	}

	var (
		info fs.FileInfo
		err  error
	)
	switch {
	case d.Type().IsRegular():
		info, err = d.Info()
	case d.Type()&fs.ModeSymlink != 0:
		info, err = os.Stat(path)
	default:
		return FileTask{}, false
	}
	if err != nil {
		slog.Debug("skipping unresolvable entry", "path", path, "error", err)
		return FileTask{}, false
	}
	if !info.Mode().IsRegular() {
		return FileTask{}, false
	}

	if !s.cfg.Filter.Match(s.rel(path), false, info.Size()) {
		return FileTask{}, false
	}
	return FileTask{Path: path, Size: info.Size()}, true
}

// isPseudoPath matches configured prefixes on whole path components, so
// /dev excludes /dev/null but not /devices.
func (s *Scanner) isPseudoPath(path string) bool {
	for _, p := range s.cfg.PseudoPrefixes {
		p = strings.TrimSuffix(p, "/")
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// display maps a path under walkRoot back under the caller's root.
func (s *Scanner) display(path string) string {
	if s.walkRoot == s.root {
		return path
	}
	rel, err := filepath.Rel(s.walkRoot, path)
	if err != nil {
		return path
	}
	return filepath.Join(s.root, rel)
}

func (s *Scanner) rel(path string) string {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
