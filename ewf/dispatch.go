package ewf

import (
	"fmt"

	"github.com/forensicgo/goewf/chunktable"
	"github.com/forensicgo/goewf/errortable"
	"github.com/forensicgo/goewf/ewferr"
	"github.com/forensicgo/goewf/hashsections"
	"github.com/forensicgo/goewf/headerstring"
	"github.com/forensicgo/goewf/ltree"
	"github.com/forensicgo/goewf/mediavalues"
	"github.com/forensicgo/goewf/section"
	"github.com/forensicgo/goewf/sessiontable"
)

// readSegment parses every section of the pool's given entry in file
// order, dispatching each descriptor to its typed reader and accumulating
// the result into img, per spec.md §4.3's traversal algorithm. It stops
// at the first "done" (or "next") section.
//
// table and table2 sections carry entries whose last size can only be
// derived once the following sectors section's end offset is known
// (spec.md §4.5), so their raw payloads are held back and only decoded
// once the sectors descriptor that follows them is reached.
func (img *Image) readSegment(entry int) error {
	sig := make([]byte, 8)
	if _, err := img.pool.ReadAt(entry, sig, 0); err != nil {
		return err
	}
	if bytesEqual(sig, signatureEWF2) {
		return fmt.Errorf("%w: v2/EWF2 segment files are not read by this module (see DESIGN.md)", ewferr.ErrUnsupportedVersion)
	}

	head := make([]byte, v1FileHeaderSize)
	if _, err := img.pool.ReadAt(entry, head, 0); err != nil {
		return err
	}
	if _, err := readV1FileHeader(head); err != nil {
		return err
	}

	var tableRaw, table2Raw []byte
	offset := int64(v1FileHeaderSize)

	for {
		descBuf := make([]byte, section.Size)
		if _, err := img.pool.ReadAt(entry, descBuf, offset); err != nil {
			return err
		}
		desc, err := section.ReadV1(descBuf, offset)
		if err != nil {
			return err
		}
		if desc.Reconstructed && desc.Type != section.TypeDone && desc.Type != section.TypeNext {
			img.logger.Warnf("goewf: section %q at offset %d declares size 0; size %d reconstructed from next_offset", desc.TypeString, desc.StartOffset, desc.Size)
		}

		var payload []byte
		if desc.DataSize > 0 {
			payload = make([]byte, desc.DataSize)
			if _, err := img.pool.ReadAt(entry, payload, offset+section.Size); err != nil {
				return err
			}
		}

		switch desc.Type {
		case section.TypeDone, section.TypeNext:
			return nil

		case section.TypeHeader:
			s, err := headerstring.Read(img.codec, headerstring.KindHeader, payload)
			if err != nil {
				return err
			}
			img.headerDict = headerstring.ParseDictionary(s)

		case section.TypeHeader2:
			s, err := headerstring.Read(img.codec, headerstring.KindHeader2, payload)
			if err != nil {
				return err
			}
			img.headerDict = headerstring.ParseDictionary(s)

		case section.TypeXHeader:
			s, err := headerstring.Read(img.codec, headerstring.KindXHeader, payload)
			if err != nil {
				return err
			}
			img.headerDict = headerstring.ParseDictionary(s)

		case section.TypeXHash:
			s, err := headerstring.Read(img.codec, headerstring.KindXHash, payload)
			if err != nil {
				return err
			}
			img.hash.XHash = []byte(s)

		case section.TypeVolume, section.TypeDisk:
			format := mediavalues.ClassifyPayloadSize(desc.DataSize)
			var m mediavalues.MediaValues
			if format == mediavalues.FormatSMART || format == mediavalues.FormatEWF {
				m, err = mediavalues.ReadS01(payload)
			} else {
				m, err = mediavalues.ReadE01(payload)
			}
			if err != nil {
				return err
			}
			img.media = m

		case section.TypeSession:
			if err := sessiontable.ReadV1(payload, 0, &img.sessions, &img.tracks); err != nil {
				return err
			}

		case section.TypeError2:
			if err := errortable.ReadV1(payload, &img.errorRanges); err != nil {
				return err
			}

		case section.TypeLtree:
			listing, _, err := ltree.ReadV1(payload)
			if err != nil {
				return err
			}
			img.listing = listing

		case section.TypeMD5Hash:
			md5Digest, set, err := hashsections.ReadHashV1(payload)
			if err != nil {
				return err
			}
			img.hash.MD5Hash, img.hash.MD5HashSet = md5Digest, set

		case section.TypeDigest:
			md5Digest, md5Set, sha1Digest, sha1Set, err := hashsections.ReadDigest(payload)
			if err != nil {
				return err
			}
			img.hash.MD5Digest, img.hash.MD5DigestSet = md5Digest, md5Set
			img.hash.SHA1Digest, img.hash.SHA1DigestSet = sha1Digest, sha1Set

		case section.TypeTable:
			tableRaw = payload

		case section.TypeTable2:
			table2Raw = payload

		case section.TypeSectors:
			if tableRaw != nil {
				if err := img.absorbTablePair(entry, tableRaw, table2Raw, desc.EndOffset); err != nil {
					return err
				}
				tableRaw, table2Raw = nil, nil
			}

		default:
			img.logger.Warnf("goewf: skipping unrecognized section %q at offset %d", desc.TypeString, desc.StartOffset)
		}

		offset = desc.EndOffset
	}
}

// absorbTablePair decodes a table/table2 pair once the sectors section
// that follows them reveals sectionEnd, corrects tainted primary entries
// against the mirror, and appends the result to the image's global
// offset table.
func (img *Image) absorbTablePair(entry int, tableRaw, table2Raw []byte, sectionEnd int64) error {
	group, err := chunktable.ReadTableV1(tableRaw, sectionEnd, true)
	if err != nil {
		return err
	}

	final := group
	if table2Raw != nil {
		group2, err := chunktable.ReadTableV1(table2Raw, sectionEnd, true)
		if err == nil {
			if corrected, cerr := chunktable.Correct(group, group2); cerr == nil {
				final = corrected
			} else {
				img.logger.Warnf("goewf: table/table2 reconciliation failed: %v", cerr)
			}
		} else {
			img.logger.Warnf("goewf: table2 mirror unreadable, keeping primary table as-is: %v", err)
		}
	}

	base := img.offsets.Len()
	for i, d := range final.Chunks {
		d.SegmentFileEntry = entry
		img.offsets.Set(base+i, d)
	}
	return nil
}

