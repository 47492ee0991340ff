package checksum

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSumMatchesReference(t *testing.T) {
	inputs := [][]byte{
		nil,
		[]byte("a"),
		[]byte("Wikipedia"),
		bytes.Repeat([]byte{0}, 4096),
		bytes.Repeat([]byte{0xAB, 0xCD}, 1000),
	}
	for _, in := range inputs {
		require.Equal(t, Reference(in), Sum(Seed, in))
	}
}

func TestSumStreamingComposition(t *testing.T) {
	b1 := []byte("the quick brown fox ")
	b2 := []byte("jumps over the lazy dog")

	whole := Sum(Seed, append(append([]byte{}, b1...), b2...))
	streamed := Sum(Sum(Seed, b1), b2)

	require.Equal(t, whole, streamed)
}

func TestVerify(t *testing.T) {
	data := []byte("done")
	require.True(t, Verify(data, Sum(Seed, data)))
	require.False(t, Verify(data, 0xFFFFFFFF))
}
