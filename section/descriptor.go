// Package section implements the EWF section descriptor grammar (v1 and
// v2) and the section type taxonomy. Routing a parsed descriptor to its
// typed reader is done by the ewf package's segment reader, not here.
//
// Layouts follow spec.md §4.2, grounded on
// original_source/libewf/libewf_section_descriptor.c and the struct shapes
// laenix-ewfgo/ewf.go already declares for v1 (Section) and internal/gpt.go
// for how that teacher decodes fixed little-endian layouts.
package section

import (
	"encoding/binary"
	"fmt"

	"github.com/forensicgo/goewf/checksum"
	"github.com/forensicgo/goewf/ewferr"
)

// Size is the fixed on-disk size of a section descriptor in both format
// versions.
const Size = 76

// FormatVersion distinguishes the EWF1 (v1) and EWF2 (v2) segment file
// grammars.
type FormatVersion uint8

const (
	V1 FormatVersion = 1
	V2 FormatVersion = 2
)

// Descriptor is the version-independent, decoded form of a section
// descriptor: spec.md §3.1's SectionDescriptor entity.
type Descriptor struct {
	Type              Type
	TypeString        string // v1 only; "" for v2
	StartOffset       int64
	EndOffset         int64
	Size              int64
	DataSize          int64
	PaddingSize       int64
	DataFlags         uint32
	DataIntegrityHash [16]byte // v2 only
	Checksum          uint32

	// Reconstructed records whether Size was derived rather than read
	// directly, per the v1 "declared size == 0" rule (spec.md §4.2).
	Reconstructed bool
}

// ReadV1 parses a 76-byte v1 section descriptor starting at fileOffset. buf
// must be exactly Size bytes. ReadV1 does not check ordering against
// previously read sections.
func ReadV1(buf []byte, fileOffset int64) (Descriptor, error) {
	if len(buf) != Size {
		return Descriptor{}, fmt.Errorf("%w: section descriptor must be %d bytes, got %d", ewferr.ErrOutOfBounds, Size, len(buf))
	}

	if !checksum.Verify(buf[:72], binary.LittleEndian.Uint32(buf[72:76])) {
		return Descriptor{}, fmt.Errorf("%w: v1 section descriptor at offset %d", ewferr.ErrChecksumMismatch, fileOffset)
	}

	typeString := trimNUL(buf[0:16])
	nextOffset := int64(binary.LittleEndian.Uint64(buf[16:24]))
	declaredSize := int64(binary.LittleEndian.Uint64(buf[24:32]))

	d := Descriptor{
		Type:        TypeFromV1String(typeString),
		TypeString:  typeString,
		StartOffset: fileOffset,
		Checksum:    binary.LittleEndian.Uint32(buf[72:76]),
	}

	switch {
	case declaredSize == 0 && nextOffset == fileOffset:
		// Self-loop: done/next terminator reporting size == 0 means
		// exactly sizeof(descriptor).
		if d.Type != TypeDone && d.Type != TypeNext {
			return Descriptor{}, fmt.Errorf("%w: self-referencing zero-size descriptor of type %q", ewferr.ErrFormatInvariant, typeString)
		}
		d.Size = Size
		d.Reconstructed = true
	case declaredSize == 0 && nextOffset > fileOffset:
		// Some EWF1 producers omit size; reconstruct it from next_offset.
		d.Size = nextOffset - fileOffset
		d.Reconstructed = true
	default:
		d.Size = declaredSize
	}

	d.EndOffset = d.StartOffset + d.Size
	d.DataSize = d.Size - Size

	return d, nil
}

// WriteV1 serializes d into a 76-byte v1 descriptor buffer. The type string
// is derived from d.Type unless d.TypeString is explicitly set (needed for
// v1 type strings this implementation does not model as a Type, e.g.
// forward-compatibility with unknown future section names a caller still
// wants to emit verbatim).
func WriteV1(d Descriptor, nextOffset int64) []byte {
	buf := make([]byte, Size)

	typeString := d.TypeString
	if typeString == "" {
		typeString = d.Type.V1String()
	}
	copy(buf[0:16], typeString)

	binary.LittleEndian.PutUint64(buf[16:24], uint64(nextOffset))
	binary.LittleEndian.PutUint64(buf[24:32], uint64(d.Size))
	// buf[32:72] padding left zero.

	cksum := checksum.Sum(checksum.Seed, buf[:72])
	binary.LittleEndian.PutUint32(buf[72:76], cksum)

	return buf
}

// ReadV2 parses a 76-byte v2 section descriptor. fileOffset is the byte
// position at which the descriptor itself begins (i.e. immediately after
// the section's payload, since v2 descriptors trail their data).
// previousEnd is the end offset of the prior section (or the file-header
// size for the first section), used to derive StartOffset per spec.md
// §4.2.
func ReadV2(buf []byte, fileOffset int64, previousEnd int64) (Descriptor, error) {
	if len(buf) != Size {
		return Descriptor{}, fmt.Errorf("%w: section descriptor must be %d bytes, got %d", ewferr.ErrOutOfBounds, Size, len(buf))
	}

	if !checksum.Verify(buf[:72], binary.LittleEndian.Uint32(buf[72:76])) {
		return Descriptor{}, fmt.Errorf("%w: v2 section descriptor at offset %d", ewferr.ErrChecksumMismatch, fileOffset)
	}

	typeCode := binary.LittleEndian.Uint32(buf[0:4])
	dataFlags := binary.LittleEndian.Uint32(buf[4:8])
	previousOffset := int64(binary.LittleEndian.Uint64(buf[8:16]))
	dataSize := int64(binary.LittleEndian.Uint64(buf[16:24]))
	descriptorSize := int64(binary.LittleEndian.Uint32(buf[24:28]))
	paddingSize := int64(binary.LittleEndian.Uint32(buf[28:32]))

	isDone := typeCode == 0 && dataSize == 0
	t := TypeFromV2Code(typeCode, isDone)

	d := Descriptor{
		Type:           t,
		StartOffset:    previousEnd,
		EndOffset:      fileOffset + Size,
		DataFlags:      dataFlags,
		DataSize:       dataSize,
		PaddingSize:    paddingSize,
		Checksum:       binary.LittleEndian.Uint32(buf[72:76]),
	}
	copy(d.DataIntegrityHash[:], buf[32:48])

	if previousOffset != 0 && previousOffset != previousEnd {
		// Not fatal: some writers link purely by file position, so a
		// previous_offset that disagrees with previousEnd is accepted.
		// descriptor_size is not checked against the observed span either.
	}

	d.Size = d.EndOffset - d.StartOffset
	_ = descriptorSize

	if d.DataSize > d.Size {
		return Descriptor{}, fmt.Errorf("%w: v2 data_size %d exceeds section size %d", ewferr.ErrFormatInvariant, d.DataSize, d.Size)
	}
	if d.PaddingSize > d.DataSize {
		return Descriptor{}, fmt.Errorf("%w: v2 padding_size %d exceeds data_size %d", ewferr.ErrFormatInvariant, d.PaddingSize, d.DataSize)
	}

	return d, nil
}

// WriteV2 serializes d into a 76-byte v2 descriptor buffer, to be written
// immediately after the section's payload and its own checksum.
func WriteV2(d Descriptor, previousOffset int64) []byte {
	buf := make([]byte, Size)

	binary.LittleEndian.PutUint32(buf[0:4], d.Type.V2Code())
	binary.LittleEndian.PutUint32(buf[4:8], d.DataFlags)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(previousOffset))
	binary.LittleEndian.PutUint64(buf[16:24], uint64(d.DataSize))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(Size))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(d.PaddingSize))
	copy(buf[32:48], d.DataIntegrityHash[:])
	// buf[48:72] padding left zero.

	cksum := checksum.Sum(checksum.Seed, buf[:72])
	binary.LittleEndian.PutUint32(buf[72:76], cksum)

	return buf
}

func trimNUL(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}
