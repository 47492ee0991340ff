package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZlibCodecRoundTrip(t *testing.T) {
	var c ZlibCodec
	original := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 500)

	compressed, err := c.Compress(LevelBest, original)
	require.NoError(t, err)
	require.Less(t, len(compressed), len(original))

	decompressed, err := c.Decompress(compressed, 16)
	require.NoError(t, err)
	require.Equal(t, original, decompressed)
}

func TestZlibCodecDecompressGrowsBeyondSmallHint(t *testing.T) {
	var c ZlibCodec
	original := bytes.Repeat([]byte{0x00}, 1<<16)

	compressed, err := c.Compress(LevelFast, original)
	require.NoError(t, err)

	decompressed, err := c.Decompress(compressed, 1)
	require.NoError(t, err)
	require.Equal(t, original, decompressed)
}

func TestZlibCodecDecompressInvalidStream(t *testing.T) {
	var c ZlibCodec
	_, err := c.Decompress([]byte{0x00, 0x01, 0x02}, 16)
	require.Error(t, err)
}

func TestZlibCodecNoneLevel(t *testing.T) {
	var c ZlibCodec
	original := []byte("hello world")
	compressed, err := c.Compress(LevelNone, original)
	require.NoError(t, err)

	decompressed, err := c.Decompress(compressed, len(original))
	require.NoError(t, err)
	require.Equal(t, original, decompressed)
}
