package chunktable

import "fmt"

// OffsetTable is spec.md §3.1's OffsetTable entity: a global chunk_index
// -> ChunkDescriptor map. It grows as successive table sections are read;
// when the total chunk count is known up front (MediaValues.NumberOfChunks)
// callers should pre-size it with NewOffsetTable to avoid reallocation,
// per Design Notes §9 ("pre-sized ... when known").
type OffsetTable struct {
	entries []*ChunkDescriptor
}

// NewOffsetTable returns an OffsetTable pre-sized to hold numberOfChunks
// entries, all initially absent.
func NewOffsetTable(numberOfChunks int) *OffsetTable {
	return &OffsetTable{entries: make([]*ChunkDescriptor, numberOfChunks)}
}

// Set installs descriptor at the given global chunk index, growing the
// table if necessary.
func (t *OffsetTable) Set(chunkIndex int, descriptor ChunkDescriptor) {
	if chunkIndex >= len(t.entries) {
		grown := make([]*ChunkDescriptor, chunkIndex+1)
		copy(grown, t.entries)
		t.entries = grown
	}
	d := descriptor
	t.entries[chunkIndex] = &d
}

// Get returns the descriptor at chunkIndex and whether it is present. An
// absent entry (never written, or beyond the table's current extent) is
// reported rather than represented with a sentinel offset, per Design
// Notes §9.
func (t *OffsetTable) Get(chunkIndex int) (ChunkDescriptor, bool) {
	if chunkIndex < 0 || chunkIndex >= len(t.entries) || t.entries[chunkIndex] == nil {
		return ChunkDescriptor{}, false
	}
	return *t.entries[chunkIndex], true
}

// Len returns the table's current extent (the highest set index + 1, or
// the pre-sized length if larger).
func (t *OffsetTable) Len() int {
	return len(t.entries)
}

// MarkTainted flags the chunk at chunkIndex as tainted (per-chunk checksum
// mismatch in its primary table), leaving its other fields unchanged.
func (t *OffsetTable) MarkTainted(chunkIndex int) error {
	if chunkIndex < 0 || chunkIndex >= len(t.entries) || t.entries[chunkIndex] == nil {
		return fmt.Errorf("chunktable: no descriptor at index %d to taint", chunkIndex)
	}
	t.entries[chunkIndex].Tainted = true
	return nil
}
