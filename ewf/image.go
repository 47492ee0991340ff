package ewf

import (
	"crypto/md5"
	"crypto/sha1"
	"fmt"

	"github.com/pkg/errors"

	"github.com/forensicgo/goewf/chunktable"
	"github.com/forensicgo/goewf/codec"
	"github.com/forensicgo/goewf/ewferr"
	"github.com/forensicgo/goewf/hashsections"
	"github.com/forensicgo/goewf/headerstring"
	"github.com/forensicgo/goewf/mediavalues"
	"github.com/forensicgo/goewf/sectorrange"
	"github.com/forensicgo/goewf/sectors"
	"github.com/forensicgo/goewf/segmentpool"
)

// Image is the in-memory model of one EWF segment-file set: media
// geometry, hash sections, session/track/error range lists, the global
// chunk offset table, and the segment-file pool backing all of it
// (spec.md §3, §5). An Image is not safe for concurrent use by multiple
// goroutines; distinct Images over distinct Pools may run in parallel.
type Image struct {
	opts   Options
	pool   segmentpool.Pool
	codec  codec.Codec
	logger Logger

	media       mediavalues.MediaValues
	hash        hashsections.HashSections
	sessions    sectorrange.List
	tracks      sectorrange.List
	errorRanges sectorrange.List
	offsets     *chunktable.OffsetTable
	listing     string
	headerDict  headerstring.Dictionary

	writer *imageWriter
}

// NewForWrite constructs an Image that accumulates chunks in memory until
// Finalize lays them out across one segment file, per spec.md §5's
// write-ordering guarantee.
func NewForWrite(opts Options, pool segmentpool.Pool) (*Image, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "goewf: invalid options")
	}

	img := &Image{
		opts:   opts,
		pool:   pool,
		codec:  codec.ZlibCodec{},
		logger: opts.Logger,
		media: mediavalues.MediaValues{
			Format:           opts.Format,
			MediaType:        opts.MediaType,
			MediaFlags:       opts.MediaFlags,
			SectorsPerChunk:  opts.SectorsPerChunk,
			BytesPerSector:   opts.BytesPerSector,
			ChunkSize:        opts.ChunkSize(),
			CompressionLevel: compressionLevelFor(opts.CompressionLevel),
			ErrorGranularity: opts.ErrorGranularity,
			SetIdentifier:    mediavalues.NewSetIdentifier(),
		},
		offsets: chunktable.NewOffsetTable(0),
		writer:  newImageWriter(),
	}
	return img, nil
}

// OpenForRead constructs an Image by parsing every section of the given
// pool's entry 0 segment file. Multi-segment spanning beyond entry 0 is
// not implemented by this module's reader (see DESIGN.md).
func OpenForRead(pool segmentpool.Pool, logger Logger) (*Image, error) {
	if logger == nil {
		logger = NopLogger{}
	}
	img := &Image{
		pool:    pool,
		codec:   codec.ZlibCodec{},
		logger:  logger,
		offsets: chunktable.NewOffsetTable(0),
	}

	if err := img.readSegment(0); err != nil {
		return nil, errors.Wrap(err, "goewf: reading segment file")
	}
	return img, nil
}

func compressionLevelFor(l codec.Level) mediavalues.CompressionLevel {
	switch l {
	case codec.LevelNone:
		return mediavalues.CompressionNone
	case codec.LevelBest:
		return mediavalues.CompressionBest
	default:
		return mediavalues.CompressionGood
	}
}

// MediaValues returns the image's decoded geometry/identity block.
func (img *Image) MediaValues() mediavalues.MediaValues { return img.media }

// HashSections returns the image's decoded/finalized digests.
func (img *Image) HashSections() hashsections.HashSections { return img.hash }

// Sessions returns the reconstructed acquisition-session ranges.
func (img *Image) Sessions() []sectorrange.Range { return img.sessions.All() }

// Tracks returns the reconstructed audio/data track ranges.
func (img *Image) Tracks() []sectorrange.Range { return img.tracks.All() }

// AcquisitionErrors returns the acquisition-error sector ranges.
func (img *Image) AcquisitionErrors() []sectorrange.Range { return img.errorRanges.All() }

// NumberOfChunks reports the image's chunk count.
func (img *Image) NumberOfChunks() int { return img.offsets.Len() }

// ReadChunk returns chunk i's decompressed bytes. A per-chunk checksum
// mismatch marks the chunk tainted and returns ewferr.ErrChecksumMismatch
// rather than silently returning corrupt data; per spec.md §7 this is a
// local fault the caller may choose to tolerate.
func (img *Image) ReadChunk(i int) ([]byte, error) {
	descriptor, ok := img.offsets.Get(i)
	if !ok {
		return nil, fmt.Errorf("%w: no chunk at index %d", ewferr.ErrOutOfBounds, i)
	}

	raw, checksumOK, err := sectors.ReadChunk(&poolReaderAt{pool: img.pool, entry: descriptor.SegmentFileEntry}, descriptor, true)
	if err != nil {
		return nil, err
	}
	if !checksumOK {
		_ = img.offsets.MarkTainted(i)
		return nil, fmt.Errorf("%w: chunk %d failed its per-chunk checksum", ewferr.ErrChecksumMismatch, i)
	}

	if !descriptor.Compressed {
		return raw, nil
	}
	return img.codec.Decompress(raw, int(img.media.ChunkSize)+1)
}

// poolReaderAt adapts one segmentpool.Pool entry to io.ReaderAt/io.WriterAt
// for the sectors package, which is deliberately pool-agnostic.
type poolReaderAt struct {
	pool  segmentpool.Pool
	entry int
}

func (p *poolReaderAt) ReadAt(b []byte, off int64) (int, error) {
	return p.pool.ReadAt(p.entry, b, off)
}

func (p *poolReaderAt) WriteAt(b []byte, off int64) (int, error) {
	return p.pool.WriteAt(p.entry, b, off)
}

// Close releases the underlying pool, if it implements io.Closer.
func (img *Image) Close() error {
	if closer, ok := img.pool.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// md5SHA1 returns the running MD5/SHA-1 of every chunk written so far,
// used by Finalize to populate the digest section.
func md5SHA1(chunks [][]byte) ([16]byte, [20]byte) {
	md5h := md5.New()
	sha1h := sha1.New()
	for _, c := range chunks {
		md5h.Write(c)
		sha1h.Write(c)
	}
	var md5Sum [16]byte
	var sha1Sum [20]byte
	copy(md5Sum[:], md5h.Sum(nil))
	copy(sha1Sum[:], sha1h.Sum(nil))
	return md5Sum, sha1Sum
}
