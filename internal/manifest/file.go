package manifest

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/blake3"
)

// zstdMagic is the zstd frame magic number as it appears on disk.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Info describes a manifest that was written or read.
type Info struct {
	Records     int
	RawBytes    int64  // size of the uncompressed encoding
	Compressed  bool   // zstd framed on disk
	Fingerprint string // hex BLAKE3-256 of the uncompressed encoding
}

// Compressed reports whether path selects a zstd-compressed manifest.
func Compressed(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zst")
}

// WriteFile encodes records to path atomically: the manifest is written to
// a temporary file in the same directory and renamed into place. Paths
// ending in .zst are zstd compressed.
func WriteFile(path string, records []Record) (Info, error) {
	var raw bytes.Buffer
	if err := Encode(&raw, records); err != nil {
		return Info{}, err
	}

	info := Info{
		Records:     len(records),
		RawBytes:    int64(raw.Len()),
		Compressed:  Compressed(path),
		Fingerprint: fingerprint(raw.Bytes()),
	}

	data := raw.Bytes()
	if info.Compressed {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
		if err != nil {
			return Info{}, fmt.Errorf("zstd encoder: %w", err)
		}
		data = enc.EncodeAll(data, nil)
		enc.Close()
	}

	if err := writeAtomic(path, data); err != nil {
		return Info{}, err
	}
	return info, nil
}

func writeAtomic(path string, data []byte) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.crcsum-tmp", base, uuid.New().String()[:8]))

	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	ok := false
	defer func() {
		if !ok {
			f.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	ok = true
	return nil
}

// Read decodes a manifest from r, transparently handling zstd framing.
func Read(r io.Reader) (map[string]uint32, Info, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, Info{}, fmt.Errorf("read manifest: %w", err)
	}

	var info Info
	if bytes.HasPrefix(data, zstdMagic) {
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, Info{}, fmt.Errorf("zstd decoder: %w", err)
		}
		data, err = dec.DecodeAll(data, nil)
		dec.Close()
		if err != nil {
			return nil, Info{}, fmt.Errorf("decompress manifest: %w", err)
		}
		info.Compressed = true
	}

	records, err := DecodeRecords(bytes.NewReader(data))
	if err != nil {
		return nil, Info{}, fmt.Errorf("decode manifest: %w", err)
	}

	info.Records = len(records)
	info.RawBytes = int64(len(data))
	info.Fingerprint = fingerprint(data)
	return Index(records), info, nil
}

// ReadFile opens path and decodes it with Read.
func ReadFile(path string) (map[string]uint32, Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Info{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

func fingerprint(raw []byte) string {
	sum := blake3.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
