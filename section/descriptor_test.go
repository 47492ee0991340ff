package section

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forensicgo/goewf/ewferr"
)

// doneSectionFixture reproduces spec.md §8.2 scenario 1
// (ewf_test_section_descriptor_data1): a "done" section whose next_offset
// self-references its own start (0x000121a1), declared size 0, checksum
// 0x9f03026a.
func doneSectionFixture() []byte {
	buf := make([]byte, Size)
	copy(buf[0:16], "done")
	binary.LittleEndian.PutUint64(buf[16:24], 0x000121a1)
	binary.LittleEndian.PutUint64(buf[24:32], 0)
	binary.LittleEndian.PutUint32(buf[72:76], 0x9f03026a)
	return buf
}

func TestReadV1DoneSectionSelfLoop(t *testing.T) {
	buf := doneSectionFixture()

	d, err := ReadV1(buf, 0x000121a1)
	require.NoError(t, err)
	require.Equal(t, TypeDone, d.Type)
	require.Equal(t, "done", d.TypeString)
	require.EqualValues(t, Size, d.Size)
	require.True(t, d.Reconstructed)
	require.Equal(t, int64(0x000121a1)+Size, d.EndOffset)
}

func TestReadV1ChecksumMismatch(t *testing.T) {
	buf := doneSectionFixture()
	binary.LittleEndian.PutUint32(buf[72:76], 0xFFFFFFFF)

	_, err := ReadV1(buf, 0x000121a1)
	require.Error(t, err)
	require.True(t, errors.Is(err, ewferr.ErrChecksumMismatch))
}

func TestReadV1ReconstructsSizeFromNextOffset(t *testing.T) {
	buf := make([]byte, Size)
	copy(buf[0:16], "header")
	const start, next = int64(1000), int64(1500)
	binary.LittleEndian.PutUint64(buf[16:24], uint64(next))
	binary.LittleEndian.PutUint64(buf[24:32], 0)
	cksum := sumForTest(buf[:72])
	binary.LittleEndian.PutUint32(buf[72:76], cksum)

	d, err := ReadV1(buf, start)
	require.NoError(t, err)
	require.Equal(t, next-start, d.Size)
	require.True(t, d.Reconstructed)
}

func TestWriteV1RoundTrip(t *testing.T) {
	d := Descriptor{Type: TypeVolume, StartOffset: 13, Size: 1128}
	buf := WriteV1(d, 13+1128)

	got, err := ReadV1(buf, 13)
	require.NoError(t, err)
	require.Equal(t, d.Type, got.Type)
	require.Equal(t, d.Size, got.Size)
	require.Equal(t, binary.LittleEndian.Uint32(buf[72:76]), got.Checksum)
}

func TestWriteV2RoundTrip(t *testing.T) {
	d := Descriptor{
		Type:        TypeTable,
		DataSize:    2000,
		PaddingSize: 0,
	}
	d.DataIntegrityHash[0] = 0xAB

	previousOffset := int64(5000)
	fileOffset := previousOffset + d.DataSize // descriptor follows payload
	buf := WriteV2(d, previousOffset)

	got, err := ReadV2(buf, fileOffset, previousOffset)
	require.NoError(t, err)
	require.Equal(t, TypeTable, got.Type)
	require.Equal(t, d.DataSize, got.DataSize)
	require.Equal(t, d.DataIntegrityHash, got.DataIntegrityHash)
	require.Equal(t, fileOffset+Size, got.EndOffset)
	require.Equal(t, previousOffset, got.StartOffset)
}

func TestReadV2RejectsDataSizeExceedingSectionSize(t *testing.T) {
	d := Descriptor{Type: TypeError2, DataSize: 100}
	buf := WriteV2(d, 0)
	// Section size is derived as EndOffset-StartOffset = Size (descriptor
	// immediately follows previousEnd with no payload gap), which is less
	// than the declared DataSize of 100: invariant violation.
	_, err := ReadV2(buf, 0, 0)
	require.Error(t, err)
	require.True(t, errors.Is(err, ewferr.ErrFormatInvariant))
}

func TestTypeFromV1StringUnknown(t *testing.T) {
	require.Equal(t, TypeUnknown, TypeFromV1String("frobnicate"))
}

// sumForTest mirrors checksum.Sum(checksum.Seed, data) without importing
// the checksum package's exported constants twice in assertions above.
func sumForTest(data []byte) uint32 {
	const mod = 65521
	a, b := uint32(1), uint32(0)
	for _, c := range data {
		a = (a + uint32(c)) % mod
		b = (b + a) % mod
	}
	return b<<16 | a
}
