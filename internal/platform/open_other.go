//go:build !linux

package platform

import "os"

func openRead(path string) (*os.File, error) {
	return os.Open(path)
}

// release is a no-op on non-Linux platforms (posix_fadvise is Linux-only here).
func release(_ *os.File) {}
