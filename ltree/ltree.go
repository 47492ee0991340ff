// Package ltree implements the "ltree"/"single_files_data" section: the
// embedded UTF-16LE logical-file listing carried by L01/Lx01 images
// (spec.md §4.12).
package ltree

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"

	"github.com/forensicgo/goewf/checksum"
	"github.com/forensicgo/goewf/ewferr"
	"github.com/forensicgo/goewf/headerstring"
)

// headerSizeV1 is unknown1[16] + data_size[8] + checksum[4] + unknown2[20].
const headerSizeV1 = 48

// ReadV1 parses a v1 ltree section: its fixed header, the UTF-16LE listing
// it declares, and the trailing MD5 integrity hash libewf writers stash in
// the header's unknown1 slot. It returns the decoded listing text and the
// MD5 that slot recorded, without verifying it against the listing bytes
// (the caller decides whether a mismatch is fatal).
func ReadV1(buf []byte) (listing string, storedMD5 [16]byte, err error) {
	if len(buf) < headerSizeV1 {
		return "", storedMD5, fmt.Errorf("%w: v1 ltree header needs %d bytes, got %d", ewferr.ErrOutOfBounds, headerSizeV1, len(buf))
	}

	copy(storedMD5[:], buf[0:16])
	dataSize := int64(binary.LittleEndian.Uint64(buf[16:24]))
	headerChecksum := binary.LittleEndian.Uint32(buf[24:28])

	header := make([]byte, headerSizeV1)
	copy(header, buf[:headerSizeV1])
	binary.LittleEndian.PutUint32(header[24:28], 0)
	if checksum.Sum(checksum.Seed, header) != headerChecksum {
		return "", storedMD5, fmt.Errorf("%w: v1 ltree header", ewferr.ErrChecksumMismatch)
	}

	dataStart := headerSizeV1
	dataEnd := dataStart + int(dataSize)
	if len(buf) < dataEnd {
		return "", storedMD5, fmt.Errorf("%w: v1 ltree listing needs %d bytes, got %d", ewferr.ErrOutOfBounds, dataEnd, len(buf))
	}

	listing, err = headerstring.DecodeBOM(buf[dataStart:dataEnd])
	if err != nil {
		return "", storedMD5, err
	}
	return listing, storedMD5, nil
}

// WriteV1 serializes listing into a v1 ltree section, computing the MD5
// integrity hash over the encoded listing bytes and stamping it into the
// header's unknown1 slot per spec.md §4.12.
func WriteV1(listing string) ([]byte, error) {
	encoded, err := headerstring.EncodeUTF16LE(listing)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, headerSizeV1+len(encoded))
	digest := md5.Sum(encoded)
	copy(buf[0:16], digest[:])
	binary.LittleEndian.PutUint64(buf[16:24], uint64(len(encoded)))
	// buf[28:48] (unknown2) left zero.

	// Checksum covers the full header with the checksum field itself
	// zeroed; buf[24:28] is still its zero value here, so the 48-byte span
	// can be hashed in one pass before the checksum is stamped in.
	headerCksum := checksum.Sum(checksum.Seed, buf[0:headerSizeV1])
	binary.LittleEndian.PutUint32(buf[24:28], headerCksum)

	copy(buf[headerSizeV1:], encoded)
	return buf, nil
}

// ReadV2 decodes a v2 ltree section, whose payload is the listing alone;
// its MD5 integrity hash lives in the enclosing section descriptor's
// DataIntegrityHash field rather than inline.
func ReadV2(buf []byte) (string, error) {
	return headerstring.DecodeBOM(buf)
}

// WriteV2 encodes listing for a v2 ltree section and returns both the
// payload and the MD5 the caller should store in the section descriptor's
// DataIntegrityHash field.
func WriteV2(listing string) (payload []byte, integrityHash [16]byte, err error) {
	encoded, err := headerstring.EncodeUTF16LE(listing)
	if err != nil {
		return nil, integrityHash, err
	}
	return encoded, md5.Sum(encoded), nil
}
