// Package ewferr defines the error taxonomy shared by every goewf package,
// so callers can distinguish failure kinds with errors.Is regardless of
// which layer raised them.
package ewferr

import "errors"

var (
	// ErrChecksumMismatch is returned when an Adler-32 verification fails on
	// a descriptor, header, footer or table. A per-chunk mismatch is
	// reported by sectors.ReadChunk as ok=false rather than an error;
	// Image.ReadChunk then marks that chunk tainted (ChunkDescriptor.Tainted)
	// and returns this error for that one chunk only.
	ErrChecksumMismatch = errors.New("ewf: checksum mismatch")

	// ErrFormatInvariant signals a layout rule violation: sizes that don't
	// add up, out-of-order table entries, an overflow-mode table with a
	// compressed entry, and similar structural defects.
	ErrFormatInvariant = errors.New("ewf: format invariant violated")

	// ErrUnsupportedVersion signals an unrecognized format_version or
	// section type code.
	ErrUnsupportedVersion = errors.New("ewf: unsupported version or section type")

	// ErrTruncated signals that a segment file ended before the declared
	// end of the section being read.
	ErrTruncated = errors.New("ewf: segment file truncated")

	// ErrOutOfBounds signals an API-surface argument violation.
	ErrOutOfBounds = errors.New("ewf: argument out of bounds")

	// ErrIOFailure wraps an error propagated from the segment-file pool.
	ErrIOFailure = errors.New("ewf: segment file pool I/O failure")

	// ErrCodecFailure signals that decompression failed at every tried
	// output size, or compression produced oversize output.
	ErrCodecFailure = errors.New("ewf: codec failure")

	// ErrTableOverflow signals a write-time table that cannot be generated:
	// more chunks than the target's entry limit, an entry offset past
	// INT32_MAX when overflow mode is not permitted, or a compressed chunk
	// at or past the overflow boundary.
	ErrTableOverflow = errors.New("ewf: table offset overflow")
)
