package ewf

import (
	"fmt"

	"github.com/forensicgo/goewf/chunktable"
	"github.com/forensicgo/goewf/errortable"
	"github.com/forensicgo/goewf/ewferr"
	"github.com/forensicgo/goewf/hashsections"
	"github.com/forensicgo/goewf/headerstring"
	"github.com/forensicgo/goewf/mediavalues"
	"github.com/forensicgo/goewf/section"
	"github.com/forensicgo/goewf/sectors"
	"github.com/forensicgo/goewf/sessiontable"
)

// imageWriter buffers the chunk payloads an Image accumulates between
// construction and Finalize, so the whole chunk count is known before the
// volume section (which records it) is written, per spec.md §5's strict
// section ordering.
type imageWriter struct {
	chunks [][]byte
}

func newImageWriter() *imageWriter { return &imageWriter{} }

// WriteChunk appends one chunk's uncompressed bytes. len(data) should
// equal the configured chunk size for every chunk but the last, matching
// how a real acquisition's final chunk may be short.
func (img *Image) WriteChunk(data []byte) error {
	if img.writer == nil {
		return fmt.Errorf("%w: image was not opened for writing", ewferr.ErrOutOfBounds)
	}
	img.writer.chunks = append(img.writer.chunks, append([]byte(nil), data...))
	return nil
}

// defaultHeaderDictionary is the minimal EnCase-dialect case-metadata
// string this module writes when the caller supplies none; acquisition
// tools normally populate case number, examiner name etc. but spec.md
// puts header-string *content* out of scope.
const defaultHeaderDictionary = "1\nmain\nc\tn\ta\tm\tu\tp\r\n\t\t\t\t\t\r\n\n"

// Finalize lays out the accumulated chunks into segment-file entry 0 of
// the pool, committing sections in the strictly ordered sequence spec.md
// §5 names: header -> volume -> sessions -> (table, table2, sectors) ->
// error2? -> hash/digest -> done.
func (img *Image) Finalize() error {
	if img.writer == nil {
		return fmt.Errorf("%w: image was not opened for writing", ewferr.ErrOutOfBounds)
	}
	const entry = 0

	header := writeV1FileHeader(img.opts.Format, 1)
	if _, err := img.pool.WriteAt(entry, header, 0); err != nil {
		return err
	}
	offset := int64(len(header))

	headerPayload, err := headerstring.Write(img.codec, headerstring.KindHeader, img.opts.CompressionLevel, defaultHeaderDictionary)
	if err != nil {
		return err
	}
	offset, err = writeSectionV1(img.pool, entry, section.TypeHeader, headerPayload, offset)
	if err != nil {
		return err
	}

	totalBytes := 0
	for _, c := range img.writer.chunks {
		totalBytes += len(c)
	}
	img.media.NumberOfChunks = uint64(len(img.writer.chunks))
	if img.media.BytesPerSector > 0 {
		img.media.NumberOfSectors = uint64(totalBytes) / uint64(img.media.BytesPerSector)
	}

	var volumePayload []byte
	switch img.media.Format {
	case mediavalues.FormatSMART, mediavalues.FormatEWF:
		volumePayload = mediavalues.WriteS01(img.media, img.media.Format == mediavalues.FormatSMART)
	default:
		volumePayload = mediavalues.WriteE01(img.media)
	}
	offset, err = writeSectionV1(img.pool, entry, section.TypeVolume, volumePayload, offset)
	if err != nil {
		return err
	}

	sessionsPayload := sessiontable.WriteV1(&img.sessions)
	offset, err = writeSectionV1(img.pool, entry, section.TypeSession, sessionsPayload, offset)
	if err != nil {
		return err
	}

	n := len(img.writer.chunks)
	sectorsPayloadStart := offset + 2*(int64(section.Size)+tableBufSizeV1(n)) + int64(section.Size)

	descriptors := make([]chunktable.ChunkDescriptor, n)
	cursor := sectorsPayloadStart
	for i, chunk := range img.writer.chunks {
		compressed, err := img.codec.Compress(img.opts.CompressionLevel, chunk)
		if err != nil {
			return err
		}
		written, err := sectors.WriteChunk(&poolReaderAt{pool: img.pool, entry: entry}, cursor, compressed, true)
		if err != nil {
			return err
		}
		descriptors[i] = chunktable.ChunkDescriptor{SegmentFileEntry: entry, Offset: cursor, Size: written, Compressed: true}
		cursor += written
	}
	totalSectorBytes := cursor - sectorsPayloadStart

	group, err := chunktable.Generate(descriptors, sectorsPayloadStart, chunktable.EntryLimitEnCase67, false)
	if err != nil {
		return err
	}
	tableBuf := chunktable.WriteTableV1(group, true)
	table2Buf := chunktable.WriteTableV1(group, true) // identical mirror; no corruption is ever introduced on write

	offset, err = writeSectionV1(img.pool, entry, section.TypeTable, tableBuf, offset)
	if err != nil {
		return err
	}
	offset, err = writeSectionV1(img.pool, entry, section.TypeTable2, table2Buf, offset)
	if err != nil {
		return err
	}
	if offset+int64(section.Size) != sectorsPayloadStart {
		return fmt.Errorf("%w: computed sectors payload offset disagrees with actual layout (%d != %d)", ewferr.ErrFormatInvariant, sectorsPayloadStart, offset+int64(section.Size))
	}

	sectorsDesc := section.Descriptor{Type: section.TypeSectors, StartOffset: offset, Size: int64(section.Size) + totalSectorBytes}
	descBuf := section.WriteV1(sectorsDesc, offset+sectorsDesc.Size)
	if _, err := img.pool.WriteAt(entry, descBuf, offset); err != nil {
		return err
	}
	offset += sectorsDesc.Size

	img.offsets = chunktable.NewOffsetTable(n)
	for i, d := range group.Chunks {
		img.offsets.Set(i, d)
	}

	if img.errorRanges.Len() > 0 {
		errorPayload := errortable.WriteV1(&img.errorRanges)
		offset, err = writeSectionV1(img.pool, entry, section.TypeError2, errorPayload, offset)
		if err != nil {
			return err
		}
	}

	md5Sum, sha1Sum := md5SHA1(img.writer.chunks)
	img.hash.MD5Digest, img.hash.MD5DigestSet = md5Sum, true
	img.hash.SHA1Digest, img.hash.SHA1DigestSet = sha1Sum, true
	digestPayload := hashsections.WriteDigest(img.hash.MD5Digest, img.hash.MD5DigestSet, img.hash.SHA1Digest, img.hash.SHA1DigestSet)
	offset, err = writeSectionV1(img.pool, entry, section.TypeDigest, digestPayload, offset)
	if err != nil {
		return err
	}

	img.hash.XHash = []byte(xhashXML(img.hash.MD5Digest, img.hash.SHA1Digest))
	xhashPayload, err := headerstring.Write(img.codec, headerstring.KindXHash, img.opts.CompressionLevel, string(img.hash.XHash))
	if err != nil {
		return err
	}
	offset, err = writeSectionV1(img.pool, entry, section.TypeXHash, xhashPayload, offset)
	if err != nil {
		return err
	}

	doneDesc := section.Descriptor{Type: section.TypeDone, StartOffset: offset, Size: int64(section.Size)}
	doneBuf := section.WriteV1(doneDesc, offset)
	if _, err := img.pool.WriteAt(entry, doneBuf, offset); err != nil {
		return err
	}

	return nil
}

// xhashXML renders the acquisition digests into the minimal xhash XML
// container shape; spec.md puts the dictionary's broader schema out of
// scope, same as the header sections' case-metadata content.
func xhashXML(md5Sum [16]byte, sha1Sum [20]byte) string {
	return fmt.Sprintf("<?xml version=\"1.0\" encoding=\"utf-8\"?><xhash><md5>%x</md5><sha1>%x</sha1></xhash>", md5Sum, sha1Sum)
}

// tableBufSizeV1 returns the byte size of a v1 table/table2 payload (not
// including its 76-byte section descriptor) for n entries.
func tableBufSizeV1(n int) int64 {
	const headerSizeV1 = 24
	const entrySizeV1 = 4
	const footerSizeV1 = 4
	return int64(headerSizeV1 + n*entrySizeV1 + footerSizeV1)
}

// writeSectionV1 writes a complete v1 section (descriptor then payload)
// starting at offset and returns the offset immediately following it.
func writeSectionV1(pool interface {
	WriteAt(entry int, p []byte, off int64) (int, error)
}, entry int, t section.Type, payload []byte, offset int64) (int64, error) {
	total := int64(section.Size) + int64(len(payload))
	desc := section.Descriptor{Type: t, StartOffset: offset, Size: total}
	nextOffset := offset + total
	descBuf := section.WriteV1(desc, nextOffset)

	if _, err := pool.WriteAt(entry, descBuf, offset); err != nil {
		return 0, err
	}
	if len(payload) > 0 {
		if _, err := pool.WriteAt(entry, payload, offset+int64(section.Size)); err != nil {
			return 0, err
		}
	}
	return nextOffset, nil
}
