package headerstring

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forensicgo/goewf/codec"
)

func TestWriteReadHeaderASCII(t *testing.T) {
	var c codec.ZlibCodec
	s := "1\nmain\nc\tn\ta\n1\t2\t3\n\n"

	compressed, err := Write(c, KindHeader, codec.LevelBest, s)
	require.NoError(t, err)

	got, err := Read(c, KindHeader, compressed)
	require.NoError(t, err)
	require.Equal(t, s, got)
}

func TestWriteReadHeader2UTF16(t *testing.T) {
	var c codec.ZlibCodec
	s := "1\nmain\nc\tn\ta\ncase-1\tev-1\tdesc\n\n"

	compressed, err := Write(c, KindHeader2, codec.LevelFast, s)
	require.NoError(t, err)

	got, err := Read(c, KindHeader2, compressed)
	require.NoError(t, err)
	require.Equal(t, s, got)
}

func TestDecodeBOMPlainASCIIPassthrough(t *testing.T) {
	got, err := DecodeBOM([]byte("plain"))
	require.NoError(t, err)
	require.Equal(t, "plain", got)
}

func TestParseDictionary(t *testing.T) {
	s := "1\nmain\nc\tn\ta\ncase-1\tev-1\tdesc one\n\n"
	d := ParseDictionary(s)
	require.Equal(t, []string{"c", "n", "a"}, d.Keys)
	require.Equal(t, "case-1", d.Values["c"])
	require.Equal(t, "ev-1", d.Values["n"])
	require.Equal(t, "desc one", d.Values["a"])
}
