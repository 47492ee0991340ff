package deltachunk

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forensicgo/goewf/chunktable"
	"github.com/forensicgo/goewf/ewferr"
)

func TestWriteReadHeaderRoundTrip(t *testing.T) {
	h := Header{ChunkIndex: 41, ChunkSize: 32768}

	buf := WriteHeader(h)
	got, err := ReadHeader(buf)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestReadHeaderChecksumMismatch(t *testing.T) {
	buf := WriteHeader(Header{ChunkIndex: 0, ChunkSize: 512})
	buf[0] ^= 0xff

	_, err := ReadHeader(buf)
	require.ErrorIs(t, err, ewferr.ErrChecksumMismatch)
}

func TestApplyRewritesDescriptor(t *testing.T) {
	target := &chunktable.ChunkDescriptor{
		SegmentFileEntry: 0,
		Offset:           0x4000,
		Size:             128,
		Compressed:       true,
	}

	Apply(target, Header{ChunkIndex: 5, ChunkSize: 32768}, 2, 0x9000+HeaderSize)

	require.Equal(t, 2, target.SegmentFileEntry)
	require.Equal(t, int64(0x9000+HeaderSize), target.Offset)
	require.Equal(t, int64(32768), target.Size)
	require.False(t, target.Compressed)
	require.True(t, target.Dirty)
}
