package chunktable

// ChunkGroup is spec.md §3.1's ChunkGroup entity: the ordered run of
// chunks covered by a single table section. It is the unit a table/table2
// pair is parsed into before its entries are merged into the segment
// file's OffsetTable.
type ChunkGroup struct {
	ChunkSize       int64 // uncompressed chunk size in bytes, from MediaValues
	BaseOffset      int64
	NumberOfEntries int
	Chunks          []ChunkDescriptor

	// Materialized records whether Chunks was actually decoded from an
	// on-disk table (true) or is a placeholder awaiting a table2 mirror /
	// write-side fill (false).
	Materialized bool
}

// FirstChunkIndex returns the global chunk index of this group's first
// entry, given the total number of chunks already accounted for by prior
// groups in the same segment-file set.
func (g *ChunkGroup) FirstChunkIndex(priorChunks int) int {
	return priorChunks
}
