//go:build !linux

package engine

import "io/fs"

// virtualFS relies on the path prefixes alone outside Linux.
func (s *Scanner) virtualFS(string, fs.FileInfo) (string, bool) {
	return "", false
}
