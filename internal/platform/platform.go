// Package platform holds OS-specific file access used by the checksum
// readers.
package platform

import "os"

// OpenRead opens path for a single sequential pass. On Linux the file is
// opened without updating atime when the caller owns it, and the kernel is
// told to read ahead aggressively.
func OpenRead(path string) (*os.File, error) {
	return openRead(path)
}

// Release tells the kernel the cached pages of f are no longer needed, so a
// full-tree scan does not evict the rest of the page cache. It is a no-op
// where unsupported.
func Release(f *os.File) {
	release(f)
}
