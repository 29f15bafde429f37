package manifest

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeLayout(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, []Record{{Path: "ab", Checksum: 0x11223344}}))

	want := []byte{
		1, 0, 0, 0, // count
		2, 0, 0, 0, // path length
		'a', 'b',
		0x44, 0x33, 0x22, 0x11, // checksum
	}
	assert.Equal(t, want, buf.Bytes())
}

func TestRoundTrip(t *testing.T) {
	records := []Record{
		{Path: "/data/a.txt", Checksum: 1},
		{Path: "/data/sub/b.bin", Checksum: 0xFFFFFFFF},
		{Path: "/data/ünïcode", Checksum: 0xCBF43926},
		{Path: "", Checksum: 0},
	}

	var first bytes.Buffer
	require.NoError(t, Encode(&first, records))

	decoded, err := DecodeRecords(bytes.NewReader(first.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, records, decoded)

	var second bytes.Buffer
	require.NoError(t, Encode(&second, decoded))
	assert.Equal(t, first.Bytes(), second.Bytes())

	m, err := Decode(bytes.NewReader(first.Bytes()))
	require.NoError(t, err)
	assert.Len(t, m, len(records))
	for _, rec := range records {
		assert.Equal(t, rec.Checksum, m[rec.Path])
	}
}

func TestEmptyManifest(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, nil))
	assert.Equal(t, []byte{0, 0, 0, 0}, buf.Bytes())

	m, err := Decode(&buf)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestDecodeLastDuplicateWins(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, []Record{
		{Path: "x", Checksum: 1},
		{Path: "y", Checksum: 2},
		{Path: "x", Checksum: 3},
	}))

	m, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, map[string]uint32{"x": 3, "y": 2}, m)
}

func TestDecodeTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, []Record{
		{Path: "alpha", Checksum: 7},
		{Path: "beta", Checksum: 8},
	}))
	full := buf.Bytes()

	// Every strict prefix is malformed.
	for n := 0; n < len(full); n++ {
		_, err := DecodeRecords(bytes.NewReader(full[:n]))
		require.Error(t, err, "prefix of %d bytes", n)
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF, "prefix of %d bytes", n)
	}
}

func TestDecodePathTooLong(t *testing.T) {
	var buf bytes.Buffer
	var word [4]byte
	binary.LittleEndian.PutUint32(word[:], 1)
	buf.Write(word[:])
	binary.LittleEndian.PutUint32(word[:], MaxPathLen+1)
	buf.Write(word[:])

	_, err := Decode(&buf)
	assert.ErrorIs(t, err, ErrPathTooLong)
}

func TestEncodePathTooLong(t *testing.T) {
	err := Encode(io.Discard, []Record{{Path: strings.Repeat("p", MaxPathLen+1)}})
	assert.ErrorIs(t, err, ErrPathTooLong)
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestEncodeWriteError(t *testing.T) {
	err := Encode(failWriter{}, []Record{{Path: "a", Checksum: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestDecodeHugeCountDoesNotPreallocate(t *testing.T) {
	var word [4]byte
	binary.LittleEndian.PutUint32(word[:], 0xFFFFFFFF)

	_, err := DecodeRecords(bytes.NewReader(word[:]))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
