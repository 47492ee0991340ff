// Package headerstring reads and writes the header/header2/xheader
// sections: a deflate-compressed case-metadata blob, ASCII for legacy
// "header", UTF-16LE for "header2", UTF-8 XML for "xheader" (spec.md
// §4.11). The key/value dictionary inside the blob is transported
// verbatim — spec.md explicitly puts header-string *templating* out of
// scope — but decoding the wire charset is in scope since it's part of
// the section grammar, grounded on laenix-ewfgo/internal/ewf.go's
// ParseHeader (BOM-sniffing UTF-16 decode via golang.org/x/text).
package headerstring

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/forensicgo/goewf/codec"
	"github.com/forensicgo/goewf/ewferr"
)

// Kind distinguishes the three header section variants plus the xhash
// section, which shares xheader's wire shape.
type Kind int

const (
	KindHeader  Kind = iota // legacy ASCII, EWF1 only
	KindHeader2             // UTF-16, EWF1 EnCase5+
	KindXHeader             // UTF-8 XML, EWF1 EnCase6+ / absorbed into EWF2 case-data
	KindXHash               // UTF-8 XML hash-results blob, same wire shape as xheader
)

// Read decompresses a header/header2/xheader section payload and decodes
// it to a UTF-8 string, sniffing a UTF-16 byte-order-mark per spec.md
// §4.11's charset split. codecImpl is the compression collaborator;
// pass codec.ZlibCodec{} for the module's default.
func Read(codecImpl codec.Codec, kind Kind, compressed []byte) (string, error) {
	raw, err := codecImpl.Decompress(compressed, 2*len(compressed)+1)
	if err != nil {
		return "", err
	}

	if kind == KindHeader {
		return string(raw), nil
	}
	return DecodeBOM(raw) // KindHeader2, KindXHeader, KindXHash
}

// Write compresses s at the given level, encoding to UTF-16LE first when
// kind calls for a wide-string payload.
func Write(codecImpl codec.Codec, kind Kind, level codec.Level, s string) ([]byte, error) {
	var raw []byte
	switch kind {
	case KindHeader:
		raw = []byte(s)
	case KindHeader2:
		encoded, err := EncodeUTF16LE(s)
		if err != nil {
			return nil, err
		}
		raw = encoded
	case KindXHeader, KindXHash:
		raw = []byte(s) // UTF-8 is Go's native string encoding already
	default:
		return nil, fmt.Errorf("%w: unknown header kind %d", ewferr.ErrOutOfBounds, kind)
	}
	return codecImpl.Compress(level, raw)
}

// DecodeBOM decodes a UTF-16 byte stream (big- or little-endian, BOM
// first) to UTF-8. Data without a recognized BOM is assumed to already be
// UTF-8/ASCII and returned unchanged.
func DecodeBOM(data []byte) (string, error) {
	if len(data) < 2 {
		return string(data), nil
	}

	var enc *unicode.Decoder
	switch {
	case data[0] == 0xff && data[1] == 0xfe:
		enc = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
	case data[0] == 0xfe && data[1] == 0xff:
		enc = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
	default:
		return string(data), nil
	}

	out, _, err := transform.Bytes(enc, data)
	if err != nil {
		return "", fmt.Errorf("%w: utf-16 decode: %v", ewferr.ErrFormatInvariant, err)
	}
	return string(out), nil
}

// EncodeUTF16LE prepends a little-endian BOM and encodes s as UTF-16LE, the
// charset "header2" sections are written in.
func EncodeUTF16LE(s string) ([]byte, error) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	out, _, err := transform.Bytes(enc, []byte(s))
	if err != nil {
		return nil, fmt.Errorf("%w: utf-16 encode: %v", ewferr.ErrFormatInvariant, err)
	}
	return out, nil
}

// Dictionary is a thin, order-preserving key/value view over a decoded
// header string's tab-separated EnCase dialect (c/n/a/e/t/av/ov/m/u/p/...
// single-letter keys). goewf transports the dictionary opaquely per
// spec.md's scope, but this helper is provided because the on-disk
// grammar (line 1: field names, tab-separated; line 2: values,
// tab-separated) is part of decoding the section, not part of
// interpreting case metadata.
type Dictionary struct {
	Keys   []string
	Values map[string]string
}

// ParseDictionary parses the classic two-line tab-separated EnCase header
// dialect from a decoded header string, skipping leading category lines
// (the "1"/"main" or "3" preamble EnCase writes before the field names).
func ParseDictionary(s string) Dictionary {
	lines := bytes.Split([]byte(s), []byte("\n"))
	d := Dictionary{Values: map[string]string{}}

	var keysLine, valuesLine []byte
	for i, line := range lines {
		if bytes.Contains(line, []byte("\t")) {
			keysLine = line
			if i+1 < len(lines) {
				valuesLine = lines[i+1]
			}
			break
		}
	}
	if keysLine == nil {
		return d
	}

	keys := bytes.Split(keysLine, []byte("\t"))
	values := bytes.Split(valuesLine, []byte("\t"))
	for i, k := range keys {
		key := string(bytes.TrimSpace(k))
		d.Keys = append(d.Keys, key)
		if i < len(values) {
			d.Values[key] = string(bytes.TrimSpace(values[i]))
		}
	}
	return d
}
