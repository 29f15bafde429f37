// Package manifest reads and writes the binary checksum manifest.
//
// Layout, all integers little-endian:
//
//	record_count uint32
//	record_count times:
//	    path_length uint32
//	    path        [path_length]byte
//	    checksum    uint32
package manifest

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// MaxPathLen bounds the length of a single path on decode and encode.
const MaxPathLen = 64 * 1024

// ErrPathTooLong is returned when a record's path exceeds MaxPathLen.
var ErrPathTooLong = errors.New("manifest: path too long")

// Record is one (path, checksum) pair.
type Record struct {
	Path     string
	Checksum uint32
}

// Encode writes records to w in the order given.
func Encode(w io.Writer, records []Record) error {
	if uint64(len(records)) > math.MaxUint32 {
		return fmt.Errorf("manifest: %d records exceed format limit", len(records))
	}

	bw := bufio.NewWriter(w)
	var buf [4]byte

	binary.LittleEndian.PutUint32(buf[:], uint32(len(records)))
	if _, err := bw.Write(buf[:]); err != nil {
		return fmt.Errorf("write record count: %w", err)
	}

	for _, rec := range records {
		if len(rec.Path) > MaxPathLen {
			return fmt.Errorf("%w: %d bytes", ErrPathTooLong, len(rec.Path))
		}
		binary.LittleEndian.PutUint32(buf[:], uint32(len(rec.Path)))
		if _, err := bw.Write(buf[:]); err != nil {
			return fmt.Errorf("write path length: %w", err)
		}
		if _, err := bw.WriteString(rec.Path); err != nil {
			return fmt.Errorf("write path: %w", err)
		}
		binary.LittleEndian.PutUint32(buf[:], rec.Checksum)
		if _, err := bw.Write(buf[:]); err != nil {
			return fmt.Errorf("write checksum: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush manifest: %w", err)
	}
	return nil
}

// DecodeRecords reads a manifest and returns its records in stored order.
// A stream that ends early yields an error wrapping io.ErrUnexpectedEOF.
func DecodeRecords(r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)

	count, err := readUint32(br)
	if err != nil {
		return nil, fmt.Errorf("read record count: %w", err)
	}

	// The count comes from untrusted input; grow as records arrive.
	records := make([]Record, 0, min(count, 4096))
	for i := uint32(0); i < count; i++ {
		n, err := readUint32(br)
		if err != nil {
			return nil, fmt.Errorf("record %d: read path length: %w", i, err)
		}
		if n > MaxPathLen {
			return nil, fmt.Errorf("record %d: %w: %d bytes", i, ErrPathTooLong, n)
		}
		path := make([]byte, n)
		if _, err := io.ReadFull(br, path); err != nil {
			return nil, fmt.Errorf("record %d: read path: %w", i, noEOF(err))
		}
		sum, err := readUint32(br)
		if err != nil {
			return nil, fmt.Errorf("record %d: read checksum: %w", i, err)
		}
		records = append(records, Record{Path: string(path), Checksum: sum})
	}
	return records, nil
}

// Decode reads a manifest into a path to checksum map. When a path occurs
// more than once the last record wins.
func Decode(r io.Reader) (map[string]uint32, error) {
	records, err := DecodeRecords(r)
	if err != nil {
		return nil, err
	}
	return Index(records), nil
}

// Index builds a path to checksum map from records, last duplicate winning.
func Index(records []Record) map[string]uint32 {
	m := make(map[string]uint32, len(records))
	for _, rec := range records {
		m[rec.Path] = rec.Checksum
	}
	return m
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, noEOF(err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

// noEOF turns a bare io.EOF into io.ErrUnexpectedEOF; every read in a
// manifest is mandatory once the count is known.
func noEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
