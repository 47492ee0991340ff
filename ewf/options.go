// Package ewf implements the top-level Image handle: the segment-file
// section dispatcher, write-path ordering, and the public API tying
// together section, mediavalues, chunktable, sectors, hashsections,
// headerstring, ltree, errortable, sessiontable and segmentpool into one
// EWF/E01 container engine (spec.md §2, §5, §6). deltachunk is not used:
// the reader skips delta_chunk sections.
package ewf

import (
	"fmt"
	"math/bits"

	"github.com/forensicgo/goewf/codec"
	"github.com/forensicgo/goewf/ewferr"
	"github.com/forensicgo/goewf/mediavalues"
	"github.com/forensicgo/goewf/section"
)

// Logger is the per-handle diagnostic sink an Image reports recoverable
// anomalies to while reading: v1 descriptors whose size was reconstructed
// from next_offset, skipped unrecognized sections, and table2 mirrors that
// could not be used. Tainted chunks are reported through ReadChunk's error
// instead, and the volume readers' chunk-size fallback is not reported.
// It replaces the teacher's global fmt.Printf warnings with an injected
// observer, per Design Notes §9.
type Logger interface {
	Warnf(format string, args ...any)
	Debugf(format string, args ...any)
}

// NopLogger discards every message. It is the default when no Logger is
// supplied.
type NopLogger struct{}

func (NopLogger) Warnf(string, ...any)  {}
func (NopLogger) Debugf(string, ...any) {}

// Options configures a new Image, covering the tunables spec.md §6.3
// names.
type Options struct {
	FormatVersion    section.FormatVersion
	Format           mediavalues.Format
	CompressionLevel codec.Level
	SegmentFileSize  int64
	SectorsPerChunk  uint32
	BytesPerSector   uint32
	ErrorGranularity uint32
	MediaType        mediavalues.MediaType
	MediaFlags       mediavalues.MediaFlags
	Logger           Logger
}

// maxSegmentFileSize caps segment files at 2GiB for the 32-bit-offset
// formats (EWF1), per spec.md §6.3.
const maxSegmentFileSize = 2 * 1024 * 1024 * 1024

// NewOptions returns Options with the module's conventional defaults
// (EWF1/E01, best compression, 64 sectors/chunk, 512-byte sectors),
// ready to be customized and validated.
func NewOptions() Options {
	return Options{
		FormatVersion:    section.V1,
		Format:           mediavalues.FormatE01,
		CompressionLevel: codec.LevelBest,
		SegmentFileSize:  maxSegmentFileSize,
		SectorsPerChunk:  64,
		BytesPerSector:   512,
		MediaType:        mediavalues.MediaTypeFixed,
		MediaFlags:       mediavalues.MediaFlagImage | mediavalues.MediaFlagPhysical,
		Logger:           NopLogger{},
	}
}

// Validate rejects out-of-range tunables before an Image is constructed.
func (o *Options) Validate() error {
	if o.FormatVersion != section.V1 && o.FormatVersion != section.V2 {
		return fmt.Errorf("%w: format version %d", ewferr.ErrUnsupportedVersion, o.FormatVersion)
	}
	if o.SegmentFileSize <= 0 || (o.FormatVersion == section.V1 && o.SegmentFileSize > maxSegmentFileSize) {
		return fmt.Errorf("%w: segment_file_size %d", ewferr.ErrOutOfBounds, o.SegmentFileSize)
	}
	if o.SectorsPerChunk < 8 || o.SectorsPerChunk > 32768 || bits.OnesCount32(o.SectorsPerChunk) != 1 {
		return fmt.Errorf("%w: sectors_per_chunk %d must be a power of two in [8, 32768]", ewferr.ErrOutOfBounds, o.SectorsPerChunk)
	}
	if o.BytesPerSector != 512 && o.BytesPerSector != 4096 {
		return fmt.Errorf("%w: bytes_per_sector %d must be 512 or 4096", ewferr.ErrOutOfBounds, o.BytesPerSector)
	}
	if uint64(o.SectorsPerChunk)*uint64(o.BytesPerSector) > mediavalues.MaxInt32 {
		return fmt.Errorf("%w: sectors_per_chunk * bytes_per_sector exceeds INT32_MAX", ewferr.ErrOutOfBounds)
	}
	if o.Logger == nil {
		o.Logger = NopLogger{}
	}
	return nil
}

// ChunkSize returns the uncompressed size in bytes of one chunk under
// these options.
func (o Options) ChunkSize() int64 {
	return int64(o.SectorsPerChunk) * int64(o.BytesPerSector)
}
