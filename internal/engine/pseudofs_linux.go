//go:build linux

package engine

import (
	"io/fs"
	"syscall"

	"golang.org/x/sys/unix"
)

// virtualMagic maps statfs f_type values of kernel-virtual filesystems.
// devtmpfs reports the tmpfs magic and is covered by the /dev prefix.
var virtualMagic = map[uint32]string{
	unix.PROC_SUPER_MAGIC:    "proc",
	unix.SYSFS_MAGIC:         "sysfs",
	unix.DEVPTS_SUPER_MAGIC:  "devpts",
	unix.DEBUGFS_MAGIC:       "debugfs",
	unix.TRACEFS_MAGIC:       "tracefs",
	unix.CGROUP_SUPER_MAGIC:  "cgroup",
	unix.CGROUP2_SUPER_MAGIC: "cgroup2",
	unix.SECURITYFS_MAGIC:    "securityfs",
	unix.PSTOREFS_MAGIC:      "pstore",
	unix.BPF_FS_MAGIC:        "bpf",
	unix.EFIVARFS_MAGIC:      "efivarfs",
}

// virtualFS reports whether the directory at path lives on a kernel-virtual
// filesystem. statfs runs once per device.
func (s *Scanner) virtualFS(path string, info fs.FileInfo) (string, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return "", false
	}
	dev := uint64(st.Dev) //nolint:unconvert // Dev is uint32 on some arches

	if name, seen := s.virtualDevs[dev]; seen {
		return name, name != ""
	}

	var sfs unix.Statfs_t
	if err := unix.Statfs(path, &sfs); err != nil {
		return "", false
	}
	name := virtualMagic[uint32(sfs.Type)]
	s.virtualDevs[dev] = name
	return name, name != ""
}
