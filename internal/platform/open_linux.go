//go:build linux

package platform

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

//nolint:gosec // G115: fd values are small non-negative integers
func openRead(path string) (*os.File, error) {
	flags := unix.O_RDONLY | unix.O_CLOEXEC
	fd, err := unix.Open(path, flags|unix.O_NOATIME, 0)
	if errors.Is(err, unix.EPERM) {
		// O_NOATIME requires ownership or CAP_FOWNER.
		fd, err = unix.Open(path, flags, 0)
	}
	for errors.Is(err, unix.EINTR) {
		fd, err = unix.Open(path, flags, 0)
	}
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}

	//nolint:errcheck // fadvise is advisory; not supported on all filesystems
	unix.Fadvise(fd, 0, 0, unix.FADV_SEQUENTIAL)
	return os.NewFile(uintptr(fd), path), nil
}

//nolint:gosec // G115: fd values are small non-negative integers
func release(f *os.File) {
	//nolint:errcheck // fadvise is advisory
	unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_DONTNEED)
}
