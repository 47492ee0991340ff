package ewf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forensicgo/goewf/mediavalues"
	"github.com/forensicgo/goewf/section"
)

func TestSegmentFilenameE01Scheme(t *testing.T) {
	name, err := SegmentFilename("image", mediavalues.FormatE01, 1)
	require.NoError(t, err)
	require.Equal(t, "image.E01", name)

	name, err = SegmentFilename("image", mediavalues.FormatE01, 99)
	require.NoError(t, err)
	require.Equal(t, "image.E99", name)

	name, err = SegmentFilename("image", mediavalues.FormatE01, 100)
	require.NoError(t, err)
	require.Equal(t, "image.EAA", name)

	name, err = SegmentFilename("image", mediavalues.FormatE01, 100+26*26)
	require.NoError(t, err)
	require.Equal(t, "image.FAA", name)
}

func TestSegmentFilenameL01Scheme(t *testing.T) {
	name, err := SegmentFilename("image", mediavalues.FormatL01, 1)
	require.NoError(t, err)
	require.Equal(t, "image.L01", name)
}

func TestSegmentExtensionRejectsNonPositive(t *testing.T) {
	_, err := SegmentExtension('E', 0)
	require.Error(t, err)
}

func TestV1FileHeaderRoundTrip(t *testing.T) {
	buf := writeV1FileHeader(mediavalues.FormatE01, 3)
	hdr, err := readV1FileHeader(buf)
	require.NoError(t, err)
	require.Equal(t, uint16(3), hdr.SegmentNumber)
	require.True(t, bytesEqual(hdr.Signature, signatureEWF1))
}

func TestV1FileHeaderRejectsTruncated(t *testing.T) {
	_, err := readV1FileHeader(make([]byte, 4))
	require.Error(t, err)
}

func TestV2FileHeaderRoundTrip(t *testing.T) {
	buf := writeV2FileHeader(1, 0, 7)
	segmentNumber, err := readV2FileHeader(buf)
	require.NoError(t, err)
	require.Equal(t, uint32(7), segmentNumber)
}

func TestV2FileHeaderRejectsWrongSignature(t *testing.T) {
	buf := writeV1FileHeader(mediavalues.FormatE01, 1)
	buf = append(buf, make([]byte, v2FileHeaderSize-len(buf))...)
	_, err := readV2FileHeader(buf)
	require.Error(t, err)
}

func TestFirstSectionOffsetByVersion(t *testing.T) {
	require.Equal(t, int64(v1FileHeaderSize), firstSectionOffset(section.V1))
	require.Equal(t, int64(v2FileHeaderSize), firstSectionOffset(section.V2))
}
