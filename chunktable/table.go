// Package chunktable implements the table/table2 sections and the chunk
// offset table they build: the physical location of every compressed
// chunk, grouped per table section and indexed globally by chunk number
// (spec.md §3.1, §4.5, grounded on
// original_source/libewf/libewf_table_section.c and
// libewf_chunk_group.h).
package chunktable

import (
	"encoding/binary"
	"fmt"

	"github.com/forensicgo/goewf/checksum"
	"github.com/forensicgo/goewf/ewferr"
)

const (
	headerSizeV1 = 24
	headerSizeV2 = 32
	entrySizeV1  = 4
	entrySizeV2  = 16

	compressedFlagV1 uint32 = 0x80000000
	offsetMaskV1     uint32 = 0x7fffffff

	// entryFlagCompressed is bit 0 of a v2 entry's flags field.
	entryFlagCompressed uint32 = 0x1

	// maxSignedOffset is the INT32_MAX boundary past which a v1 table
	// entry can no longer carry the high compressed bit unambiguously
	// (spec.md §4.5's overflow rule).
	maxSignedOffset = 0x7fffffff

	// EntryLimitEnCase5 is the maximum entries/table for EnCase <=5
	// targets.
	EntryLimitEnCase5 = 16384

	// EntryLimitEnCase67 is the maximum entries/table for EnCase 6/7
	// targets.
	EntryLimitEnCase67 = 65534
)

// ReadTableV1 parses a v1 table (or table2) section payload: a 24-byte
// header followed by number_of_entries 4-byte entries and, for every
// format except SMART, a trailing Adler-32 footer over the entries.
// sectionEnd is the file offset the last chunk's data runs up to (the end
// of the accompanying sectors section), needed to size the final entry.
func ReadTableV1(buf []byte, sectionEnd int64, hasFooter bool) (ChunkGroup, error) {
	if len(buf) < headerSizeV1 {
		return ChunkGroup{}, fmt.Errorf("%w: v1 table header needs %d bytes, got %d", ewferr.ErrOutOfBounds, headerSizeV1, len(buf))
	}

	numberOfEntries := int(binary.LittleEndian.Uint32(buf[0:4]))
	baseOffset := int64(binary.LittleEndian.Uint64(buf[8:16]))
	headerChecksum := binary.LittleEndian.Uint32(buf[20:24])

	if !checksum.Verify(buf[:20], headerChecksum) {
		return ChunkGroup{}, fmt.Errorf("%w: v1 table header", ewferr.ErrChecksumMismatch)
	}

	entriesStart := headerSizeV1
	entriesEnd := entriesStart + numberOfEntries*entrySizeV1
	if len(buf) < entriesEnd {
		return ChunkGroup{}, fmt.Errorf("%w: v1 table entries need %d bytes, got %d", ewferr.ErrOutOfBounds, entriesEnd, len(buf))
	}

	if hasFooter {
		if len(buf) < entriesEnd+4 {
			return ChunkGroup{}, fmt.Errorf("%w: v1 table footer checksum missing", ewferr.ErrOutOfBounds)
		}
		footer := binary.LittleEndian.Uint32(buf[entriesEnd : entriesEnd+4])
		if !checksum.Verify(buf[entriesStart:entriesEnd], footer) {
			return ChunkGroup{}, fmt.Errorf("%w: v1 table entries footer", ewferr.ErrChecksumMismatch)
		}
	}

	absoluteOffsets := make([]int64, numberOfEntries)
	compressedFlags := make([]bool, numberOfEntries)
	overflowed := false
	for i := 0; i < numberOfEntries; i++ {
		raw := binary.LittleEndian.Uint32(buf[entriesStart+i*entrySizeV1 : entriesStart+(i+1)*entrySizeV1])
		compressed := raw&compressedFlagV1 != 0
		offset := baseOffset + int64(raw&offsetMaskV1)

		if overflowed && compressed {
			return ChunkGroup{}, fmt.Errorf("%w: compressed entry %d beyond overflow boundary", ewferr.ErrFormatInvariant, i)
		}
		if offset > maxSignedOffset {
			overflowed = true
		}

		absoluteOffsets[i] = offset
		compressedFlags[i] = compressed
	}

	chunks := make([]ChunkDescriptor, numberOfEntries)
	for i := 0; i < numberOfEntries; i++ {
		size := sectionEnd - absoluteOffsets[i]
		if i < numberOfEntries-1 {
			size = absoluteOffsets[i+1] - absoluteOffsets[i]
		}
		chunks[i] = ChunkDescriptor{
			Offset:     absoluteOffsets[i],
			Size:       size,
			Compressed: compressedFlags[i],
		}
	}

	return ChunkGroup{
		BaseOffset:      baseOffset,
		NumberOfEntries: numberOfEntries,
		Chunks:          chunks,
		Materialized:    true,
	}, nil
}

// WriteTableV1 serializes group into a v1 table/table2 payload, including
// the trailing entries-footer checksum unless hasFooter is false (the
// original SMART format has none, per spec.md §4.5's Limits note).
func WriteTableV1(group ChunkGroup, hasFooter bool) []byte {
	n := len(group.Chunks)
	entriesSize := n * entrySizeV1
	total := headerSizeV1 + entriesSize
	if hasFooter {
		total += 4
	}
	buf := make([]byte, total)

	binary.LittleEndian.PutUint32(buf[0:4], uint32(n))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(group.BaseOffset))
	headerCksum := checksum.Sum(checksum.Seed, buf[:20])
	binary.LittleEndian.PutUint32(buf[20:24], headerCksum)

	for i, c := range group.Chunks {
		raw := uint32(c.Offset-group.BaseOffset) & offsetMaskV1
		if c.Compressed {
			raw |= compressedFlagV1
		}
		binary.LittleEndian.PutUint32(buf[headerSizeV1+i*entrySizeV1:headerSizeV1+(i+1)*entrySizeV1], raw)
	}

	if hasFooter {
		entriesStart := headerSizeV1
		entriesEnd := entriesStart + entriesSize
		footer := checksum.Sum(checksum.Seed, buf[entriesStart:entriesEnd])
		binary.LittleEndian.PutUint32(buf[entriesEnd:entriesEnd+4], footer)
	}

	return buf
}

// ReadTableV2 parses a v2 table (or table2) section payload: a 32-byte
// header followed by 16-byte entries (offset[8], size[4], flags[4]) and a
// trailing Adler-32 footer.
func ReadTableV2(buf []byte) (ChunkGroup, error) {
	if len(buf) < headerSizeV2 {
		return ChunkGroup{}, fmt.Errorf("%w: v2 table header needs %d bytes, got %d", ewferr.ErrOutOfBounds, headerSizeV2, len(buf))
	}

	numberOfEntries := int(binary.LittleEndian.Uint32(buf[8:12]))
	headerChecksum := binary.LittleEndian.Uint32(buf[16:20])
	if !checksum.Verify(buf[:16], headerChecksum) {
		return ChunkGroup{}, fmt.Errorf("%w: v2 table header", ewferr.ErrChecksumMismatch)
	}

	entriesStart := headerSizeV2
	entriesEnd := entriesStart + numberOfEntries*entrySizeV2
	if len(buf) < entriesEnd+4 {
		return ChunkGroup{}, fmt.Errorf("%w: v2 table entries/footer need %d bytes, got %d", ewferr.ErrOutOfBounds, entriesEnd+4, len(buf))
	}

	footer := binary.LittleEndian.Uint32(buf[entriesEnd : entriesEnd+4])
	if !checksum.Verify(buf[entriesStart:entriesEnd], footer) {
		return ChunkGroup{}, fmt.Errorf("%w: v2 table entries footer", ewferr.ErrChecksumMismatch)
	}

	chunks := make([]ChunkDescriptor, numberOfEntries)
	for i := 0; i < numberOfEntries; i++ {
		e := buf[entriesStart+i*entrySizeV2 : entriesStart+(i+1)*entrySizeV2]
		chunks[i] = ChunkDescriptor{
			Offset:     int64(binary.LittleEndian.Uint64(e[0:8])),
			Size:       int64(binary.LittleEndian.Uint32(e[8:12])),
			Compressed: binary.LittleEndian.Uint32(e[12:16])&entryFlagCompressed != 0,
		}
	}

	return ChunkGroup{
		NumberOfEntries: numberOfEntries,
		Chunks:          chunks,
		Materialized:    true,
	}, nil
}

// WriteTableV2 serializes group into a v2 table/table2 payload.
// firstChunkNumber is the global chunk index of group.Chunks[0].
func WriteTableV2(group ChunkGroup, firstChunkNumber uint64) []byte {
	n := len(group.Chunks)
	entriesSize := n * entrySizeV2
	total := headerSizeV2 + entriesSize + 4
	buf := make([]byte, total)

	binary.LittleEndian.PutUint64(buf[0:8], firstChunkNumber)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(n))
	headerCksum := checksum.Sum(checksum.Seed, buf[:16])
	binary.LittleEndian.PutUint32(buf[16:20], headerCksum)

	for i, c := range group.Chunks {
		e := buf[headerSizeV2+i*entrySizeV2 : headerSizeV2+(i+1)*entrySizeV2]
		binary.LittleEndian.PutUint64(e[0:8], uint64(c.Offset))
		binary.LittleEndian.PutUint32(e[8:12], uint32(c.Size))
		var flags uint32
		if c.Compressed {
			flags |= entryFlagCompressed
		}
		binary.LittleEndian.PutUint32(e[12:16], flags)
	}

	entriesStart := headerSizeV2
	entriesEnd := entriesStart + entriesSize
	footer := checksum.Sum(checksum.Seed, buf[entriesStart:entriesEnd])
	binary.LittleEndian.PutUint32(buf[entriesEnd:entriesEnd+4], footer)

	return buf
}

// Correct reconciles a primary table's ChunkGroup against its table2
// mirror, per spec.md §4.5's correct algorithm: a chunk tainted in the
// primary is replaced by the mirror's descriptor if the mirror is clean;
// if both are tainted the chunk stays tainted. An entry-count mismatch is
// rejected with ewferr.ErrFormatInvariant; base offsets are not compared.
func Correct(primary, mirror ChunkGroup) (ChunkGroup, error) {
	if primary.NumberOfEntries != mirror.NumberOfEntries {
		return ChunkGroup{}, fmt.Errorf("%w: table2 entry count %d disagrees with table %d", ewferr.ErrFormatInvariant, mirror.NumberOfEntries, primary.NumberOfEntries)
	}

	corrected := make([]ChunkDescriptor, len(primary.Chunks))
	copy(corrected, primary.Chunks)

	for i := range corrected {
		if !corrected[i].Tainted {
			continue
		}
		if i < len(mirror.Chunks) && !mirror.Chunks[i].Tainted {
			corrected[i] = mirror.Chunks[i]
		}
		// Else: both tainted (or mirror missing the entry), keep primary's
		// tainted descriptor as-is.
	}

	primary.Chunks = corrected
	return primary, nil
}

// Generate builds a ChunkGroup ready to be serialized by WriteTableV1 or
// WriteTableV2, applying spec.md §4.5's entry-count limit and overflow
// rules. baseOffset anchors v1's relative entries (typically the start of
// the accompanying sectors section). allowOverflow must be set for
// EnCase6+ targets before any entry's offset is permitted to exceed
// INT32_MAX; earlier targets (and any compressed chunk landing past that
// boundary) fail with ewferr.ErrTableOverflow.
func Generate(chunks []ChunkDescriptor, baseOffset int64, entryLimit int, allowOverflow bool) (ChunkGroup, error) {
	if len(chunks) > entryLimit {
		return ChunkGroup{}, fmt.Errorf("%w: %d chunks exceeds table limit of %d", ewferr.ErrTableOverflow, len(chunks), entryLimit)
	}

	overflowed := false
	for i, c := range chunks {
		delta := c.Offset - baseOffset
		if delta > maxSignedOffset {
			if !allowOverflow {
				return ChunkGroup{}, fmt.Errorf("%w: entry %d offset %d exceeds INT32_MAX and overflow mode is not permitted for this target", ewferr.ErrTableOverflow, i, c.Offset)
			}
			overflowed = true
		}
		if overflowed && c.Compressed {
			return ChunkGroup{}, fmt.Errorf("%w: entry %d is compressed beyond the overflow boundary", ewferr.ErrTableOverflow, i)
		}
	}

	return ChunkGroup{
		BaseOffset:      baseOffset,
		NumberOfEntries: len(chunks),
		Chunks:          chunks,
		Materialized:    true,
	}, nil
}
