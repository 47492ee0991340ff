package ltree

import (
	"crypto/md5"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forensicgo/goewf/ewferr"
)

func TestWriteReadV1RoundTrip(t *testing.T) {
	listing := "doc/report.txt\nimages/photo.jpg\n"

	buf, err := WriteV1(listing)
	require.NoError(t, err)

	got, storedMD5, err := ReadV1(buf)
	require.NoError(t, err)
	require.Equal(t, listing, got)

	encoded, err := (func() ([]byte, error) { return buf[headerSizeV1:], nil })()
	require.NoError(t, err)
	require.Equal(t, md5.Sum(encoded), storedMD5)
}

func TestReadV1HeaderChecksumMismatch(t *testing.T) {
	buf, err := WriteV1("a")
	require.NoError(t, err)
	buf[24] ^= 0xff

	_, _, err = ReadV1(buf)
	require.ErrorIs(t, err, ewferr.ErrChecksumMismatch)
}

func TestReadV1DetectsCorruptedIntegrityHash(t *testing.T) {
	buf, err := WriteV1("a")
	require.NoError(t, err)
	buf[0] ^= 0xff // integrity_hash byte, outside the old narrow checksum span

	_, _, err = ReadV1(buf)
	require.ErrorIs(t, err, ewferr.ErrChecksumMismatch)
}

func TestReadV1DetectsCorruptedUnknown2(t *testing.T) {
	buf, err := WriteV1("a")
	require.NoError(t, err)
	buf[30] ^= 0xff // unknown2 byte, outside the old narrow checksum span

	_, _, err = ReadV1(buf)
	require.ErrorIs(t, err, ewferr.ErrChecksumMismatch)
}

func TestWriteReadV2RoundTrip(t *testing.T) {
	listing := "a/b.txt\n"

	payload, integrityHash, err := WriteV2(listing)
	require.NoError(t, err)
	require.Equal(t, md5.Sum(payload), integrityHash)

	got, err := ReadV2(payload)
	require.NoError(t, err)
	require.Equal(t, listing, got)
}
