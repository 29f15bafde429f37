// Package checksum computes the CRC-32 digests recorded in manifests.
//
// The digest is the standard IEEE CRC-32 (reflected polynomial 0xEDB88320,
// initial and final XOR 0xFFFFFFFF). It detects change, not tampering.
package checksum

import (
	"context"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/bamsammich/crcsum/internal/platform"
)

// BlockSize is the fixed read size used when streaming file contents.
const BlockSize = 32 * 1024

// table is built once at process start and shared read-only by all workers.
var table = crc32.MakeTable(crc32.IEEE)

// Bytes returns the CRC-32 of p.
func Bytes(p []byte) uint32 {
	return crc32.Checksum(p, table)
}

// Update folds p into a running CRC-32.
func Update(crc uint32, p []byte) uint32 {
	return crc32.Update(crc, table, p)
}

// Reader streams r in BlockSize blocks and returns the CRC-32 of everything
// read along with the byte count. ctx is checked between blocks, so an
// abandoned computation stops at the next block boundary with ctx.Err().
func Reader(ctx context.Context, r io.Reader) (uint32, int64, error) {
	buf := make([]byte, BlockSize)
	var (
		crc   uint32
		total int64
	)
	for {
		if err := ctx.Err(); err != nil {
			return 0, total, err
		}
		n, err := r.Read(buf)
		if n > 0 {
			crc = Update(crc, buf[:n])
			total += int64(n)
		}
		if err == io.EOF {
			return crc, total, nil
		}
		if err != nil {
			return 0, total, err
		}
	}
}

// File computes the CRC-32 of the file at path. wrap, when non-nil, is
// applied to the open file before reading (throttling, accounting).
func File(ctx context.Context, path string, wrap func(io.Reader) io.Reader) (uint32, int64, error) {
	f, err := platform.OpenRead(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	defer platform.Release(f)

	var r io.Reader = f
	if wrap != nil {
		r = wrap(f)
	}

	sum, n, err := Reader(ctx, r)
	if err != nil {
		return 0, n, fmt.Errorf("read %s: %w", path, err)
	}
	return sum, n, nil
}
