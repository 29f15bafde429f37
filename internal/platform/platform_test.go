package platform

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(path, []byte("hello, platform"), 0o644))

	f, err := OpenRead(path)
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "hello, platform", string(data))
	assert.Equal(t, path, f.Name())

	Release(f)
}

func TestOpenReadMissing(t *testing.T) {
	_, err := OpenRead(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	var pathErr *os.PathError
	assert.ErrorAs(t, err, &pathErr)
}

func TestOpenReadDirectory(t *testing.T) {
	f, err := OpenRead(t.TempDir())
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Read(make([]byte, 1))
	assert.Error(t, err)
}
