// Package sectors implements the "sectors" section: the raw span of
// compressed (or stored) chunk bytes a table section's offsets point
// into. The section itself carries no section-level checksum; each chunk
// optionally carries its own trailing Adler-32, per spec.md §4.6.
package sectors

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/forensicgo/goewf/checksum"
	"github.com/forensicgo/goewf/chunktable"
	"github.com/forensicgo/goewf/ewferr"
)

// ChecksumTrailerSize is the size of the per-chunk Adler-32 trailer
// written immediately after a chunk's compressed bytes when the
// write_crc flag is set.
const ChecksumTrailerSize = 4

// ReadChunk reads the bytes a ChunkDescriptor points at from src, and,
// when withChecksum is true, verifies and strips the trailing per-chunk
// Adler-32. A mismatch does not error: it reports ok=false so the caller
// can mark the descriptor tainted and fall back to a table2 correction,
// per spec.md §4.5's correct algorithm.
func ReadChunk(src io.ReaderAt, c chunktable.ChunkDescriptor, withChecksum bool) (data []byte, ok bool, err error) {
	payloadSize := c.Size
	if withChecksum {
		payloadSize -= ChecksumTrailerSize
	}
	if payloadSize < 0 {
		return nil, false, fmt.Errorf("%w: chunk at offset %d has size %d smaller than its checksum trailer", ewferr.ErrFormatInvariant, c.Offset, c.Size)
	}

	buf := make([]byte, c.Size)
	if _, err := src.ReadAt(buf, c.Offset); err != nil {
		return nil, false, fmt.Errorf("%w: reading chunk at offset %d: %v", ewferr.ErrIOFailure, c.Offset, err)
	}

	if !withChecksum {
		return buf, true, nil
	}

	payload := buf[:payloadSize]
	want := binary.LittleEndian.Uint32(buf[payloadSize:])
	return payload, checksum.Verify(payload, want), nil
}

// WriteChunk writes a chunk's bytes (already compressed, or stored
// verbatim for an uncompressed chunk) to dst at offset, appending a
// trailing Adler-32 when withChecksum is true. It returns the total
// number of bytes written, i.e. the Size a ChunkDescriptor for this chunk
// should record.
func WriteChunk(dst io.WriterAt, offset int64, payload []byte, withChecksum bool) (int64, error) {
	buf := payload
	if withChecksum {
		buf = make([]byte, len(payload)+ChecksumTrailerSize)
		copy(buf, payload)
		binary.LittleEndian.PutUint32(buf[len(payload):], checksum.Sum(checksum.Seed, payload))
	}

	if _, err := dst.WriteAt(buf, offset); err != nil {
		return 0, fmt.Errorf("%w: writing chunk at offset %d: %v", ewferr.ErrIOFailure, offset, err)
	}
	return int64(len(buf)), nil
}
