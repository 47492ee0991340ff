// Package hashsections models spec.md §3.1's HashSections entity and
// reads/writes the digest, hash, md5_hash and sha1_hash section payloads
// (spec.md §4.10), grounded on
// original_source/libewf/libewf_hash_sections.h,
// libewf_digest_section.c, libewf_md5_hash_section.c and
// libewf_sha1_hash_section.c. The xhash section itself (an xheader-shaped
// compressed XML blob) is decoded by the headerstring package, since it
// shares xheader's wire format; this package only owns the field it lands
// in.
package hashsections

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/forensicgo/goewf/checksum"
	"github.com/forensicgo/goewf/ewferr"
)

// HashSections is the container of in-progress and finalized digests plus
// the xhash blob (spec.md §3.1).
type HashSections struct {
	MD5Hash      [16]byte
	MD5HashSet   bool
	SHA1Hash     [20]byte
	SHA1HashSet  bool
	MD5Digest    [16]byte
	MD5DigestSet bool
	SHA1Digest   [20]byte
	SHA1DigestSet bool
	XHash        []byte // decoded xhash section text, or nil if absent
}

const (
	digestPayloadSize  = 80 // MD5[16] + SHA1[20] + padding[40] + checksum[4]
	hashV1PayloadSize  = 36 // MD5[16] + unknown[16] + checksum[4]
	md5HashV2PayloadSize = 32 // MD5[16] + checksum[4] + padding[12]
	sha1HashV2PayloadSize = 32 // SHA1[20] + checksum[4] + padding[8]
)

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// ReadDigest decodes an 80-byte digest section payload. A digest field
// that is all-zero is reported as not-set rather than as a zero digest
// (spec.md §4.10, scenario 8.2.4).
func ReadDigest(data []byte) (md5 [16]byte, md5Set bool, sha1 [20]byte, sha1Set bool, err error) {
	if len(data) != digestPayloadSize {
		err = fmt.Errorf("%w: digest payload must be %d bytes, got %d", ewferr.ErrOutOfBounds, digestPayloadSize, len(data))
		return
	}
	if !checksum.Verify(data[:76], binary.LittleEndian.Uint32(data[76:80])) {
		err = fmt.Errorf("%w: digest section", ewferr.ErrChecksumMismatch)
		return
	}
	copy(md5[:], data[0:16])
	copy(sha1[:], data[16:36])
	md5Set = !allZero(md5[:])
	sha1Set = !allZero(sha1[:])
	return
}

// WriteDigest serializes an 80-byte digest section payload. Digests that
// are not set are left zero-filled.
func WriteDigest(md5 [16]byte, md5Set bool, sha1 [20]byte, sha1Set bool) []byte {
	buf := make([]byte, digestPayloadSize)
	if md5Set {
		copy(buf[0:16], md5[:])
	}
	if sha1Set {
		copy(buf[16:36], sha1[:])
	}
	cksum := checksum.Sum(checksum.Seed, buf[:76])
	binary.LittleEndian.PutUint32(buf[76:80], cksum)
	return buf
}

// ReadHashV1 decodes the legacy 36-byte v1 "hash" section payload
// (MD5 only).
func ReadHashV1(data []byte) (md5 [16]byte, set bool, err error) {
	if len(data) != hashV1PayloadSize {
		err = fmt.Errorf("%w: v1 hash payload must be %d bytes, got %d", ewferr.ErrOutOfBounds, hashV1PayloadSize, len(data))
		return
	}
	if !checksum.Verify(data[:32], binary.LittleEndian.Uint32(data[32:36])) {
		err = fmt.Errorf("%w: hash section", ewferr.ErrChecksumMismatch)
		return
	}
	copy(md5[:], data[0:16])
	set = !allZero(md5[:])
	return
}

// WriteHashV1 serializes a 36-byte v1 "hash" section payload.
func WriteHashV1(md5 [16]byte, set bool) []byte {
	buf := make([]byte, hashV1PayloadSize)
	if set {
		copy(buf[0:16], md5[:])
	}
	cksum := checksum.Sum(checksum.Seed, buf[:32])
	binary.LittleEndian.PutUint32(buf[32:36], cksum)
	return buf
}

// ReadMD5HashV2 decodes the 32-byte v2 md5_hash section payload.
func ReadMD5HashV2(data []byte) (md5 [16]byte, set bool, err error) {
	if len(data) != md5HashV2PayloadSize {
		err = fmt.Errorf("%w: md5_hash payload must be %d bytes, got %d", ewferr.ErrOutOfBounds, md5HashV2PayloadSize, len(data))
		return
	}
	if !checksum.Verify(data[:16], binary.LittleEndian.Uint32(data[16:20])) {
		err = fmt.Errorf("%w: md5_hash section", ewferr.ErrChecksumMismatch)
		return
	}
	copy(md5[:], data[0:16])
	set = !allZero(md5[:])
	return
}

// WriteMD5HashV2 serializes a 32-byte v2 md5_hash section payload.
func WriteMD5HashV2(md5 [16]byte, set bool) []byte {
	buf := make([]byte, md5HashV2PayloadSize)
	if set {
		copy(buf[0:16], md5[:])
	}
	cksum := checksum.Sum(checksum.Seed, buf[:16])
	binary.LittleEndian.PutUint32(buf[16:20], cksum)
	return buf
}

// ReadSHA1HashV2 decodes the 32-byte v2 sha1_hash section payload.
func ReadSHA1HashV2(data []byte) (sha1 [20]byte, set bool, err error) {
	if len(data) != sha1HashV2PayloadSize {
		err = fmt.Errorf("%w: sha1_hash payload must be %d bytes, got %d", ewferr.ErrOutOfBounds, sha1HashV2PayloadSize, len(data))
		return
	}
	if !checksum.Verify(data[:20], binary.LittleEndian.Uint32(data[20:24])) {
		err = fmt.Errorf("%w: sha1_hash section", ewferr.ErrChecksumMismatch)
		return
	}
	copy(sha1[:], data[0:20])
	set = !allZero(sha1[:])
	return
}

// WriteSHA1HashV2 serializes a 32-byte v2 sha1_hash section payload.
func WriteSHA1HashV2(sha1 [20]byte, set bool) []byte {
	buf := make([]byte, sha1HashV2PayloadSize)
	if set {
		copy(buf[0:20], sha1[:])
	}
	cksum := checksum.Sum(checksum.Seed, buf[:20])
	binary.LittleEndian.PutUint32(buf[20:24], cksum)
	return buf
}

// Equal reports whether two HashSections carry the same set digests (used
// by end-to-end write-then-read tests; XHash is compared byte-for-byte).
func (h HashSections) Equal(o HashSections) bool {
	if h.MD5HashSet != o.MD5HashSet || h.SHA1HashSet != o.SHA1HashSet ||
		h.MD5DigestSet != o.MD5DigestSet || h.SHA1DigestSet != o.SHA1DigestSet {
		return false
	}
	if h.MD5HashSet && h.MD5Hash != o.MD5Hash {
		return false
	}
	if h.SHA1HashSet && h.SHA1Hash != o.SHA1Hash {
		return false
	}
	if h.MD5DigestSet && h.MD5Digest != o.MD5Digest {
		return false
	}
	if h.SHA1DigestSet && h.SHA1Digest != o.SHA1Digest {
		return false
	}
	return bytes.Equal(h.XHash, o.XHash)
}
