package sectors

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forensicgo/goewf/chunktable"
)

// memory is a minimal io.ReaderAt/io.WriterAt backed by a growable buffer,
// standing in for the segment-file pool this package is decoupled from.
type memory struct {
	buf []byte
}

func (m *memory) ReadAt(p []byte, off int64) (int, error) {
	return copy(p, m.buf[off:]), nil
}

func (m *memory) WriteAt(p []byte, off int64) (int, error) {
	need := int(off) + len(p)
	if need > len(m.buf) {
		grown := make([]byte, need)
		copy(grown, m.buf)
		m.buf = grown
	}
	return copy(m.buf[off:], p), nil
}

func TestWriteThenReadChunkWithChecksum(t *testing.T) {
	mem := &memory{}
	payload := []byte("compressed-chunk-bytes")

	n, err := WriteChunk(mem, 0, payload, true)
	require.NoError(t, err)
	require.EqualValues(t, len(payload)+ChecksumTrailerSize, n)

	descriptor := chunktable.ChunkDescriptor{Offset: 0, Size: n}
	got, ok, err := ReadChunk(mem, descriptor, true)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, payload, got)
}

func TestReadChunkDetectsChecksumMismatchWithoutErroring(t *testing.T) {
	mem := &memory{}
	payload := []byte("compressed-chunk-bytes")

	n, err := WriteChunk(mem, 0, payload, true)
	require.NoError(t, err)

	mem.buf[0] ^= 0xff // corrupt the payload, leaving the trailer untouched

	descriptor := chunktable.ChunkDescriptor{Offset: 0, Size: n}
	_, ok, err := ReadChunk(mem, descriptor, true)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestWriteChunkWithoutChecksum(t *testing.T) {
	mem := &memory{}
	payload := []byte("stored-uncompressed")

	n, err := WriteChunk(mem, 0, payload, false)
	require.NoError(t, err)
	require.EqualValues(t, len(payload), n)

	descriptor := chunktable.ChunkDescriptor{Offset: 0, Size: n}
	got, ok, err := ReadChunk(mem, descriptor, false)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, bytes.Equal(payload, got))
}
