package ewf

import (
	"encoding/binary"
	"fmt"

	"github.com/forensicgo/goewf/ewferr"
	"github.com/forensicgo/goewf/mediavalues"
	"github.com/forensicgo/goewf/section"
)

// v1 segment-file signatures (spec.md §6.1), one per container family.
var (
	signatureEWF1      = []byte{'E', 'V', 'F', 0x09, 0x0d, 0x0a, 0xff, 0x00}
	signatureLogical1  = []byte{'L', 'V', 'F', 0x09, 0x0d, 0x0a, 0xff, 0x00}
	signatureLogicalEx = []byte{'L', 'E', 'F', 0x09, 0x0d, 0x0a, 0xff, 0x00}
)

// v1FileHeaderSize is signature[8] + fields_start[1] + segment_number[2] +
// end_of_fields[2].
const v1FileHeaderSize = 13

// v1FileHeader is the decoded form of the fixed header every v1 segment
// file begins with.
type v1FileHeader struct {
	Signature     []byte
	SegmentNumber uint16
}

func signatureFor(format mediavalues.Format) []byte {
	switch format {
	case mediavalues.FormatL01:
		return signatureLogical1
	default:
		return signatureEWF1
	}
}

// writeV1FileHeader serializes a segment file's opening 13 bytes.
func writeV1FileHeader(format mediavalues.Format, segmentNumber uint16) []byte {
	buf := make([]byte, v1FileHeaderSize)
	copy(buf[0:8], signatureFor(format))
	buf[8] = 1 // fields_start, always 1 in v1
	binary.LittleEndian.PutUint16(buf[9:11], segmentNumber)
	// buf[11:13] end_of_fields left zero.
	return buf
}

// readV1FileHeader validates and decodes a segment file's opening bytes.
func readV1FileHeader(buf []byte) (v1FileHeader, error) {
	if len(buf) < v1FileHeaderSize {
		return v1FileHeader{}, fmt.Errorf("%w: v1 file header needs %d bytes, got %d", ewferr.ErrTruncated, v1FileHeaderSize, len(buf))
	}

	sig := buf[0:8]
	switch {
	case bytesEqual(sig, signatureEWF1), bytesEqual(sig, signatureLogical1), bytesEqual(sig, signatureLogicalEx):
	default:
		return v1FileHeader{}, fmt.Errorf("%w: unrecognized segment file signature", ewferr.ErrFormatInvariant)
	}

	if buf[8] != 1 {
		return v1FileHeader{}, fmt.Errorf("%w: v1 fields_start byte must be 1, got %d", ewferr.ErrFormatInvariant, buf[8])
	}

	return v1FileHeader{
		Signature:     append([]byte(nil), sig...),
		SegmentNumber: binary.LittleEndian.Uint16(buf[9:11]),
	}, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SegmentExtension returns the filename extension for the n-th (1-based)
// segment file of a set, following EWF's 26x26 continuation scheme once
// the plain two-digit range (01-99) is exhausted (spec.md §6.1):
// .E01 .. .E99, .EAA .. .EAZ, .EBA .. .EZZ, .FAA ...
func SegmentExtension(prefix byte, n int) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("%w: segment number %d must be >= 1", ewferr.ErrOutOfBounds, n)
	}
	if n <= 99 {
		return fmt.Sprintf(".%c%02d", prefix, n), nil
	}

	n -= 100 // first continuation slot (.EAA) is index 0
	const letters = 26 * 26
	cycles := n / letters
	within := n % letters

	first := prefix + byte(cycles)
	if first > 'Z' {
		return "", fmt.Errorf("%w: segment number %d exceeds the addressable extension space", ewferr.ErrOutOfBounds, n)
	}
	second := byte('A' + within/26)
	third := byte('A' + within%26)

	return fmt.Sprintf(".%c%c%c", first, second, third), nil
}

// segmentPrefixFor returns the letter EWF uses for the first character of
// a segment extension for the given format (e.g. 'E' for EnCase/E01).
func segmentPrefixFor(format mediavalues.Format) byte {
	switch format {
	case mediavalues.FormatL01:
		return 'L'
	default:
		return 'E'
	}
}

// SegmentFilename returns the n-th (1-based) segment file's basename for a
// set named base, using the extension scheme appropriate to format.
func SegmentFilename(base string, format mediavalues.Format, n int) (string, error) {
	ext, err := SegmentExtension(segmentPrefixFor(format), n)
	if err != nil {
		return "", err
	}
	return base + ext, nil
}

// firstSectionOffset is where the first section descriptor begins,
// immediately after the file header, for the given format version.
func firstSectionOffset(version section.FormatVersion) int64 {
	if version == section.V1 {
		return v1FileHeaderSize
	}
	return v2FileHeaderSize
}

// v2 segment files use a longer signature carrying explicit major/minor
// version bytes; segment_number is 4 bytes instead of 2. The exact
// trailing layout beyond the signature and version is vendor-specific
// (Ex01/Lx01); this module models the fields spec.md §6.1 names.
const v2FileHeaderSize = 18

var signatureEWF2 = []byte{'E', 'V', 'F', '2', 0x0d, 0x0a, 0x81, 0x00}

// writeV2FileHeader serializes a v2 segment file's opening header.
func writeV2FileHeader(majorVersion, minorVersion uint8, segmentNumber uint32) []byte {
	buf := make([]byte, v2FileHeaderSize)
	copy(buf[0:8], signatureEWF2)
	buf[8] = majorVersion
	buf[9] = minorVersion
	binary.LittleEndian.PutUint32(buf[10:14], segmentNumber)
	// buf[14:18] reserved/end-of-fields left zero.
	return buf
}

func readV2FileHeader(buf []byte) (segmentNumber uint32, err error) {
	if len(buf) < v2FileHeaderSize {
		return 0, fmt.Errorf("%w: v2 file header needs %d bytes, got %d", ewferr.ErrTruncated, v2FileHeaderSize, len(buf))
	}
	if !bytesEqual(buf[0:8], signatureEWF2) {
		return 0, fmt.Errorf("%w: unrecognized v2 segment file signature", ewferr.ErrFormatInvariant)
	}
	return binary.LittleEndian.Uint32(buf[10:14]), nil
}
