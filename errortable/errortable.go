// Package errortable implements the "error2"/"error_table" section: the
// list of sector ranges the acquisition tool failed to read cleanly
// (spec.md §4.8).
package errortable

import (
	"encoding/binary"
	"fmt"

	"github.com/forensicgo/goewf/checksum"
	"github.com/forensicgo/goewf/ewferr"
	"github.com/forensicgo/goewf/sectorrange"
)

const (
	headerSizeV1 = 208 // number_of_entries[4], unknown[200], checksum[4]
	headerSizeV2 = 32  // number_of_entries[4], unknown[12], checksum[4], padding[12]

	entrySizeV1 = 8  // start_sector[4], number_of_sectors[4]
	entrySizeV2 = 16 // start_sector[8], number_of_sectors[4], padding[4]

	footerSizeV1 = 4  // checksum[4]
	footerSizeV2 = 16 // checksum[4], padding[12]
)

// ReadV1 parses a v1 error2 section payload into a sectorrange.List,
// emptying and repopulating list per spec.md §4.8.
func ReadV1(buf []byte, list *sectorrange.List) error {
	if len(buf) < headerSizeV1 {
		return fmt.Errorf("%w: v1 error-table header needs %d bytes, got %d", ewferr.ErrOutOfBounds, headerSizeV1, len(buf))
	}

	numberOfEntries := int(binary.LittleEndian.Uint32(buf[0:4]))
	headerChecksum := binary.LittleEndian.Uint32(buf[204:208])
	if !checksum.Verify(buf[:204], headerChecksum) {
		return fmt.Errorf("%w: v1 error-table header", ewferr.ErrChecksumMismatch)
	}

	entriesStart := headerSizeV1
	entriesEnd := entriesStart + numberOfEntries*entrySizeV1
	if len(buf) < entriesEnd+footerSizeV1 {
		return fmt.Errorf("%w: v1 error-table entries/footer need %d bytes, got %d", ewferr.ErrOutOfBounds, entriesEnd+footerSizeV1, len(buf))
	}

	footer := binary.LittleEndian.Uint32(buf[entriesEnd : entriesEnd+4])
	if !checksum.Verify(buf[entriesStart:entriesEnd], footer) {
		return fmt.Errorf("%w: v1 error-table entries footer", ewferr.ErrChecksumMismatch)
	}

	list.Reset()
	for i := 0; i < numberOfEntries; i++ {
		e := buf[entriesStart+i*entrySizeV1 : entriesStart+(i+1)*entrySizeV1]
		list.Append(sectorrange.Range{
			Start: uint64(binary.LittleEndian.Uint32(e[0:4])),
			Count: uint64(binary.LittleEndian.Uint32(e[4:8])),
		})
	}
	return nil
}

// WriteV1 serializes list's ranges into a v1 error2 section payload, in
// the list's natural order.
func WriteV1(list *sectorrange.List) []byte {
	ranges := list.All()
	entriesSize := len(ranges) * entrySizeV1
	buf := make([]byte, headerSizeV1+entriesSize+footerSizeV1)

	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(ranges)))
	headerCksum := checksum.Sum(checksum.Seed, buf[:204])
	binary.LittleEndian.PutUint32(buf[204:208], headerCksum)

	entriesStart := headerSizeV1
	for i, r := range ranges {
		e := buf[entriesStart+i*entrySizeV1 : entriesStart+(i+1)*entrySizeV1]
		binary.LittleEndian.PutUint32(e[0:4], uint32(r.Start))
		binary.LittleEndian.PutUint32(e[4:8], uint32(r.Count))
	}

	entriesEnd := entriesStart + entriesSize
	footer := checksum.Sum(checksum.Seed, buf[entriesStart:entriesEnd])
	binary.LittleEndian.PutUint32(buf[entriesEnd:entriesEnd+4], footer)

	return buf
}

// ReadV2 parses a v2 error_table section payload.
func ReadV2(buf []byte, list *sectorrange.List) error {
	if len(buf) < headerSizeV2 {
		return fmt.Errorf("%w: v2 error-table header needs %d bytes, got %d", ewferr.ErrOutOfBounds, headerSizeV2, len(buf))
	}

	numberOfEntries := int(binary.LittleEndian.Uint32(buf[0:4]))
	headerChecksum := binary.LittleEndian.Uint32(buf[16:20])
	if !checksum.Verify(buf[:16], headerChecksum) {
		return fmt.Errorf("%w: v2 error-table header", ewferr.ErrChecksumMismatch)
	}

	entriesStart := headerSizeV2
	entriesEnd := entriesStart + numberOfEntries*entrySizeV2
	if len(buf) < entriesEnd+footerSizeV2 {
		return fmt.Errorf("%w: v2 error-table entries/footer need %d bytes, got %d", ewferr.ErrOutOfBounds, entriesEnd+footerSizeV2, len(buf))
	}

	footer := binary.LittleEndian.Uint32(buf[entriesEnd : entriesEnd+4])
	if !checksum.Verify(buf[entriesStart:entriesEnd], footer) {
		return fmt.Errorf("%w: v2 error-table entries footer", ewferr.ErrChecksumMismatch)
	}

	list.Reset()
	for i := 0; i < numberOfEntries; i++ {
		e := buf[entriesStart+i*entrySizeV2 : entriesStart+(i+1)*entrySizeV2]
		list.Append(sectorrange.Range{
			Start: binary.LittleEndian.Uint64(e[0:8]),
			Count: uint64(binary.LittleEndian.Uint32(e[8:12])),
		})
	}
	return nil
}

// WriteV2 serializes list's ranges into a v2 error_table section payload.
func WriteV2(list *sectorrange.List) []byte {
	ranges := list.All()
	entriesSize := len(ranges) * entrySizeV2
	buf := make([]byte, headerSizeV2+entriesSize+footerSizeV2)

	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(ranges)))
	headerCksum := checksum.Sum(checksum.Seed, buf[:16])
	binary.LittleEndian.PutUint32(buf[16:20], headerCksum)

	entriesStart := headerSizeV2
	for i, r := range ranges {
		e := buf[entriesStart+i*entrySizeV2 : entriesStart+(i+1)*entrySizeV2]
		binary.LittleEndian.PutUint64(e[0:8], r.Start)
		binary.LittleEndian.PutUint32(e[8:12], uint32(r.Count))
	}

	entriesEnd := entriesStart + entriesSize
	footer := checksum.Sum(checksum.Seed, buf[entriesStart:entriesEnd])
	binary.LittleEndian.PutUint32(buf[entriesEnd:entriesEnd+4], footer)

	return buf
}
