// Package sectorrange implements half-open logical sector ranges and
// ordered lists of them, used for acquisition errors, sessions and tracks
// (spec.md §3.1, grounded on
// original_source/libewf/libewf_sector_range.c and
// libewf_sector_range_list.c).
package sectorrange

import "fmt"

// Range is a half-open [Start, Start+Count) run of logical sectors.
type Range struct {
	Start uint64
	Count uint64
}

// End returns Start + Count, the first sector past the range.
func (r Range) End() uint64 { return r.Start + r.Count }

// List is an ordered sequence of non-overlapping Ranges.
type List struct {
	ranges []Range
}

// Len returns the number of ranges in the list.
func (l *List) Len() int { return len(l.ranges) }

// Get returns the i-th inserted range.
func (l *List) Get(i int) (Range, error) {
	if i < 0 || i >= len(l.ranges) {
		return Range{}, fmt.Errorf("sectorrange: index %d out of bounds (len %d)", i, len(l.ranges))
	}
	return l.ranges[i], nil
}

// Append adds r to the end of the list without checking ordering against
// existing entries; callers that need non-overlapping, sorted lists (as
// the error/session sections do) are responsible for appending in order.
func (l *List) Append(r Range) {
	l.ranges = append(l.ranges, r)
}

// Reset empties the list, used by readers that replace the full acquisition
// error set on each error2 section (spec.md §4.8).
func (l *List) Reset() {
	l.ranges = l.ranges[:0]
}

// All returns the ranges in insertion order. The returned slice aliases
// internal storage and must not be mutated.
func (l *List) All() []Range {
	return l.ranges
}
