// Package deltachunk implements the Ex01 "delta_chunk" section: an
// uncompressed replacement for a single previously-acquired chunk,
// produced when a disk is re-acquired and only some chunks changed
// (spec.md §4.7).
package deltachunk

import (
	"encoding/binary"
	"fmt"

	"github.com/forensicgo/goewf/checksum"
	"github.com/forensicgo/goewf/chunktable"
	"github.com/forensicgo/goewf/ewferr"
)

// HeaderSize is the fixed size of the delta-chunk header preceding its
// uncompressed payload: chunk_index+1[4], chunk_size[4], marker
// "DELTA"[5], padding[7], checksum[4].
const HeaderSize = 24

// marker is the literal padding bytes libewf writers stamp into every
// delta-chunk header.
const marker = "DELTA"

// Header is the decoded form of a delta-chunk section's fixed header.
type Header struct {
	ChunkIndex int // zero-based; the on-disk field stores chunk_index+1
	ChunkSize  int64
}

// ReadHeader parses a delta-chunk section's HeaderSize-byte header and
// verifies its checksum.
func ReadHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("%w: delta-chunk header needs %d bytes, got %d", ewferr.ErrOutOfBounds, HeaderSize, len(buf))
	}

	chunkIndexPlusOne := binary.LittleEndian.Uint32(buf[0:4])
	chunkSize := binary.LittleEndian.Uint32(buf[4:8])
	cksum := binary.LittleEndian.Uint32(buf[20:24])

	if !checksum.Verify(buf[:20], cksum) {
		return Header{}, fmt.Errorf("%w: delta-chunk header", ewferr.ErrChecksumMismatch)
	}
	if chunkIndexPlusOne == 0 {
		return Header{}, fmt.Errorf("%w: delta-chunk chunk_index+1 field is zero", ewferr.ErrFormatInvariant)
	}

	return Header{
		ChunkIndex: int(chunkIndexPlusOne - 1),
		ChunkSize:  int64(chunkSize),
	}, nil
}

// WriteHeader serializes h into a HeaderSize-byte buffer, stamping the
// conventional "DELTA" marker into the padding field.
func WriteHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)

	binary.LittleEndian.PutUint32(buf[0:4], uint32(h.ChunkIndex+1))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(h.ChunkSize))
	copy(buf[8:13], marker)
	// buf[13:20] padding left zero.

	cksum := checksum.Sum(checksum.Seed, buf[:20])
	binary.LittleEndian.PutUint32(buf[20:24], cksum)

	return buf
}

// Apply rewrites target to point at the delta chunk's replacement bytes:
// uncompressed, located at file offset dataOffset in the given segment
// file (the byte immediately after the delta section's HeaderSize-byte
// header), and marked dirty so later re-reads prefer it over the original
// acquisition's descriptor.
func Apply(target *chunktable.ChunkDescriptor, h Header, segmentFileEntry int, dataOffset int64) {
	target.SegmentFileEntry = segmentFileEntry
	target.Offset = dataOffset
	target.Size = h.ChunkSize
	target.Compressed = false
	target.Dirty = true
}
