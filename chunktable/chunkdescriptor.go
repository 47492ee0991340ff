// Package chunktable implements the table/table2 sections and the chunk
// offset table they build: the physical location of every compressed
// chunk, grouped per table section and indexed globally by chunk number
// (spec.md §3.1, §4.5, grounded on
// original_source/libewf/libewf_table_section.c and
// libewf_chunk_group.h).
package chunktable

// ChunkDescriptor is spec.md §3.1's ChunkDescriptor entity: the physical
// location of one compressed (or uncompressed) chunk.
type ChunkDescriptor struct {
	SegmentFileEntry int // index into the segment-file pool holding the bytes
	Offset           int64
	Size             int64
	Compressed       bool
	Tainted          bool // per-chunk CRC mismatch in the primary table
	Dirty            bool // overridden by a delta-chunk section
}
