package section

// Type enumerates the EWF section kinds the core understands, independent
// of whether the on-disk representation is a v1 type string or a v2 type
// code (spec.md §6.2).
type Type uint32

const (
	TypeUnknown Type = iota
	TypeDone
	TypeNext
	TypeHeader
	TypeHeader2
	TypeXHeader
	TypeXHash
	TypeVolume
	TypeDisk
	TypeSectors
	TypeTable
	TypeTable2
	TypeLtree
	TypeSession
	TypeError2
	TypeMD5Hash
	TypeSHA1Hash
	TypeDigest
	TypeDeltaChunk
	TypeData
)

// v1TypeStrings maps the NUL-padded 16-byte ASCII type string to the
// version-independent Type. Exact-length lookup per spec.md §4.2.
var v1TypeStrings = map[string]Type{
	"done":        TypeDone,
	"next":        TypeNext,
	"header":      TypeHeader,
	"header2":     TypeHeader2,
	"xheader":     TypeXHeader,
	"xhash":       TypeXHash,
	"volume":      TypeVolume,
	"disk":        TypeDisk,
	"sectors":     TypeSectors,
	"table":       TypeTable,
	"table2":      TypeTable2,
	"ltree":       TypeLtree,
	"session":     TypeSession,
	"error2":      TypeError2,
	"hash":        TypeMD5Hash,
	"digest":      TypeDigest,
	"delta_chunk": TypeDeltaChunk,
	"data":        TypeData,
}

var v1TypeNames = func() map[Type]string {
	m := make(map[Type]string, len(v1TypeStrings))
	for s, t := range v1TypeStrings {
		if _, exists := m[t]; !exists {
			m[t] = s
		}
	}
	return m
}()

// TypeFromV1String resolves a NUL-trimmed v1 type string to a Type.
// Unknown strings resolve to TypeUnknown, which callers should log and
// skip rather than reject outright (spec.md §4.3 step 2).
func TypeFromV1String(s string) Type {
	if t, ok := v1TypeStrings[s]; ok {
		return t
	}
	return TypeUnknown
}

// V1String returns the canonical v1 type string for t, or "" if t has no
// v1 representation.
func (t Type) V1String() string {
	return v1TypeNames[t]
}

// v2TypeCodes assigns the numeric codes v2 segment files carry directly.
// Values are internal to this implementation (the format does not require
// a specific numbering beyond being self-consistent within a writer); what
// matters is that the same writer that emits a code is the one decoding it.
// v2TypeCodes assigns TypeVolume to code 0x02, the "device-information"
// section in v2 terminology (spec.md §6.2).
var v2TypeCodes = map[Type]uint32{
	TypeDone:     0x00000000,
	TypeXHeader:  0x01,
	TypeXHash:    0x0B,
	TypeVolume:   0x02, // "device-information"
	TypeSectors:  0x03, // "sector-data"
	TypeTable:    0x04, // "sector-table"
	TypeLtree:    0x05, // "single-files-data"
	TypeSession:  0x06, // "session-table"
	TypeError2:   0x07, // "error-table"
	TypeMD5Hash:  0x08,
	TypeSHA1Hash: 0x09,
	TypeDigest:   0x0A,
}

var v2CodeTypes = func() map[uint32]Type {
	m := make(map[uint32]Type, len(v2TypeCodes))
	for t, c := range v2TypeCodes {
		m[c] = t
	}
	return m
}()

// TypeFromV2Code resolves a v2 numeric type code to a Type.
func TypeFromV2Code(code uint32, isDone bool) Type {
	if isDone {
		return TypeDone
	}
	if t, ok := v2CodeTypes[code]; ok {
		return t
	}
	return TypeUnknown
}

// V2Code returns the numeric code t is written as in a v2 segment file.
func (t Type) V2Code() uint32 {
	return v2TypeCodes[t]
}

func (t Type) String() string {
	switch t {
	case TypeUnknown:
		return "unknown"
	case TypeDone:
		return "done"
	case TypeNext:
		return "next"
	case TypeHeader:
		return "header"
	case TypeHeader2:
		return "header2"
	case TypeXHeader:
		return "xheader"
	case TypeXHash:
		return "xhash"
	case TypeVolume:
		return "volume"
	case TypeDisk:
		return "disk"
	case TypeSectors:
		return "sectors"
	case TypeTable:
		return "table"
	case TypeTable2:
		return "table2"
	case TypeLtree:
		return "ltree"
	case TypeSession:
		return "session"
	case TypeError2:
		return "error2"
	case TypeMD5Hash:
		return "hash"
	case TypeSHA1Hash:
		return "sha1_hash"
	case TypeDigest:
		return "digest"
	case TypeDeltaChunk:
		return "delta_chunk"
	case TypeData:
		return "data"
	default:
		return "unknown"
	}
}
