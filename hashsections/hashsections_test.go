package hashsections

import (
	"encoding/binary"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestReadDigestSetValues reproduces spec.md §8.2 scenario 3.
func TestReadDigestSetValues(t *testing.T) {
	md5Hex := "03c9d5339abf1ebdc144b9ed3d7e4597"
	sha1Hex := "8ac00925fa09a899839bda5f7fbfa5a357ec0e67"

	buf := make([]byte, digestPayloadSize)
	md5Bytes, err := hex.DecodeString(md5Hex)
	require.NoError(t, err)
	sha1Bytes, err := hex.DecodeString(sha1Hex)
	require.NoError(t, err)
	copy(buf[0:16], md5Bytes)
	copy(buf[16:36], sha1Bytes)
	binary.LittleEndian.PutUint32(buf[76:80], 0x3f28129c)

	md5, md5Set, sha1, sha1Set, err := ReadDigest(buf)
	require.NoError(t, err)
	require.True(t, md5Set)
	require.True(t, sha1Set)
	require.Equal(t, md5Hex, hex.EncodeToString(md5[:]))
	require.Equal(t, sha1Hex, hex.EncodeToString(sha1[:]))
}

// TestReadDigestAllZero reproduces spec.md §8.2 scenario 4.
func TestReadDigestAllZero(t *testing.T) {
	buf := make([]byte, digestPayloadSize)
	binary.LittleEndian.PutUint32(buf[76:80], 0x004c0001)

	_, md5Set, _, sha1Set, err := ReadDigest(buf)
	require.NoError(t, err)
	require.False(t, md5Set)
	require.False(t, sha1Set)
}

func TestDigestRoundTrip(t *testing.T) {
	var md5 [16]byte
	var sha1 [20]byte
	for i := range md5 {
		md5[i] = byte(i)
	}
	for i := range sha1 {
		sha1[i] = byte(i + 1)
	}

	buf := WriteDigest(md5, true, sha1, true)
	gotMD5, md5Set, gotSHA1, sha1Set, err := ReadDigest(buf)
	require.NoError(t, err)
	require.True(t, md5Set)
	require.True(t, sha1Set)
	require.Equal(t, md5, gotMD5)
	require.Equal(t, sha1, gotSHA1)
}

// TestMD5HashV2RoundTrip reproduces the spirit of spec.md §8.2 scenario 5:
// a v2 md5_hash section round-trips through the writer unchanged.
func TestMD5HashV2RoundTrip(t *testing.T) {
	var md5 [16]byte
	copy(md5[:], []byte{0x18, 0x01, 0x74, 0x48, 0x4})

	buf := WriteMD5HashV2(md5, true)
	require.Len(t, buf, md5HashV2PayloadSize)

	got, set, err := ReadMD5HashV2(buf)
	require.NoError(t, err)
	require.True(t, set)
	require.Equal(t, md5, got)

	buf2 := WriteMD5HashV2(got, set)
	require.Equal(t, buf, buf2)
}

func TestSHA1HashV2RoundTrip(t *testing.T) {
	var sha1 [20]byte
	for i := range sha1 {
		sha1[i] = byte(i)
	}
	buf := WriteSHA1HashV2(sha1, true)
	got, set, err := ReadSHA1HashV2(buf)
	require.NoError(t, err)
	require.True(t, set)
	require.Equal(t, sha1, got)
}

func TestHashV1NotSetWhenZero(t *testing.T) {
	buf := WriteHashV1([16]byte{}, false)
	_, set, err := ReadHashV1(buf)
	require.NoError(t, err)
	require.False(t, set)
}

func TestHashSectionsEqual(t *testing.T) {
	a := HashSections{MD5Hash: [16]byte{1}, MD5HashSet: true}
	b := HashSections{MD5Hash: [16]byte{1}, MD5HashSet: true}
	require.True(t, a.Equal(b))

	c := HashSections{MD5Hash: [16]byte{2}, MD5HashSet: true}
	require.False(t, a.Equal(c))
}
