package engine

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// createTestTree populates root with:
//
//	root.txt          (17 bytes)
//	big.bin           (320KB)
//	sub/mid.txt       (19 bytes)
//	sub/deep/leaf.txt (17 bytes)
//	empty             (0 bytes)
//	link.txt          -> root.txt
//	dangling          -> missing
//
// and returns the absolute paths of the five regular files plus link.txt.
func createTestTree(t *testing.T, root string) []string {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub", "deep"), 0o755))

	files := map[string][]byte{
		"root.txt":          []byte("root file content"),
		"big.bin":           bytes.Repeat([]byte("ABCDEFGHIJKLMNOP"), 20000),
		"sub/mid.txt":       []byte("middle file content"),
		"sub/deep/leaf.txt": []byte("leaf file content"),
		"empty":             nil,
	}
	var paths []string
	for rel, data := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.WriteFile(p, data, 0o644))
		paths = append(paths, p)
	}

	require.NoError(t, os.Symlink("root.txt", filepath.Join(root, "link.txt")))
	require.NoError(t, os.Symlink("missing", filepath.Join(root, "dangling")))
	paths = append(paths, filepath.Join(root, "link.txt"))
	return paths
}

func drain(q *WorkQueue) []FileTask {
	var out []FileTask
	for {
		task, ok := q.Pop()
		if !ok {
			return out
		}
		out = append(out, task)
	}
}

func taskPaths(tasks []FileTask) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Path
	}
	return out
}
