package mediavalues

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyPayloadSize(t *testing.T) {
	require.Equal(t, FormatSMART, ClassifyPayloadSize(s01PayloadSize))
	require.Equal(t, FormatE01, ClassifyPayloadSize(e01PayloadSize))
	require.Equal(t, FormatUnknown, ClassifyPayloadSize(999))
}

func TestS01RoundTripSmartSignature(t *testing.T) {
	m := MediaValues{
		NumberOfChunks:  10,
		SectorsPerChunk: 64,
		BytesPerSector:  512,
		NumberOfSectors: 640,
	}
	buf := WriteS01(m, true)
	require.Len(t, buf, s01PayloadSize)

	got, err := ReadS01(buf)
	require.NoError(t, err)
	require.Equal(t, FormatSMART, got.Format)
	require.Equal(t, m.NumberOfChunks, got.NumberOfChunks)
	require.Equal(t, m.SectorsPerChunk, got.SectorsPerChunk)
	require.Equal(t, m.BytesPerSector, got.BytesPerSector)
	require.EqualValues(t, 64*512, got.ChunkSize)
}

func TestS01RoundTripEWFSignature(t *testing.T) {
	m := MediaValues{SectorsPerChunk: 64, BytesPerSector: 512}
	buf := WriteS01(m, false)

	got, err := ReadS01(buf)
	require.NoError(t, err)
	require.Equal(t, FormatEWF, got.Format)
}

func TestS01ChecksumMismatch(t *testing.T) {
	buf := WriteS01(MediaValues{SectorsPerChunk: 64, BytesPerSector: 512}, true)
	buf[90] ^= 0xFF

	_, err := ReadS01(buf)
	require.Error(t, err)
}

func TestE01RoundTripClassifiesE01(t *testing.T) {
	m := MediaValues{
		MediaType:       MediaTypeFixed,
		NumberOfChunks:  100,
		SectorsPerChunk: 64,
		BytesPerSector:  512,
		NumberOfSectors: 6400,
		SetIdentifier:   NewSetIdentifier(),
	}
	buf := WriteE01(m)
	require.Len(t, buf, e01PayloadSize)

	got, err := ReadE01(buf)
	require.NoError(t, err)
	require.Equal(t, FormatE01, got.Format)
	require.Equal(t, m.NumberOfChunks, got.NumberOfChunks)
	require.Equal(t, m.SetIdentifier, got.SetIdentifier)
}

func TestE01ZeroChunksClassifiesL01(t *testing.T) {
	m := MediaValues{SectorsPerChunk: 64, BytesPerSector: 512}
	buf := WriteE01(m)

	got, err := ReadE01(buf)
	require.NoError(t, err)
	require.Equal(t, FormatL01, got.Format)
}

func TestValidateRejectsOversizeChunk(t *testing.T) {
	m := MediaValues{SectorsPerChunk: 1 << 30, BytesPerSector: 4096}
	err := m.Validate()
	require.Error(t, err)
}
