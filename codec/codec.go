// Package codec abstracts the deflate-style compression engine spec.md §1
// names as an external collaborator ("compression engine ... abstracted as
// a codec collaborator with deflate-style semantics"). ZlibCodec supplies a
// concrete default so the rest of this module — and its own tests — have
// something to exercise; callers needing a different codec (e.g. for
// encrypted or externally-accelerated compression) implement Codec
// themselves.
package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/forensicgo/goewf/ewferr"
)

// Level mirrors the format's coarse compression tunable (spec.md §6.3).
type Level int

const (
	LevelNone       Level = iota
	LevelEmptyBlock       // compresses at zlib's default level; all-zero chunks get no special handling
	LevelFast
	LevelBest
)

func (l Level) zlibLevel() int {
	switch l {
	case LevelNone:
		return zlib.NoCompression
	case LevelFast:
		return zlib.BestSpeed
	case LevelBest:
		return zlib.BestCompression
	case LevelEmptyBlock:
		return zlib.DefaultCompression
	default:
		return zlib.DefaultCompression
	}
}

// Codec is the compression collaborator the header-string and chunk-data
// sections depend on.
type Codec interface {
	Compress(level Level, data []byte) ([]byte, error)
	// Decompress inflates compressed, using sizeHint as the first output
	// buffer guess.
	Decompress(compressed []byte, sizeHint int) ([]byte, error)
}

// ZlibCodec implements Codec over github.com/klauspost/compress/zlib, the
// deflate-compatible codec the EWF format's header and chunk payloads use
// on the wire.
type ZlibCodec struct{}

// maxRetries bounds the doubling-retry decompression discipline of
// spec.md §4.11 so a corrupt stream can't force unbounded memory growth.
const maxRetries = 20

func (ZlibCodec) Compress(level Level, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, level.zlibLevel())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ewferr.ErrCodecFailure, err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ewferr.ErrCodecFailure, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ewferr.ErrCodecFailure, err)
	}
	return buf.Bytes(), nil
}

// Decompress inflates compressed with an initial output estimate of
// sizeHint (spec.md recommends 2*compressed_size+1), doubling on failure
// until it succeeds or maxRetries is exhausted.
func (ZlibCodec) Decompress(compressed []byte, sizeHint int) ([]byte, error) {
	if sizeHint <= 0 {
		sizeHint = 2*len(compressed) + 1
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		r, err := zlib.NewReader(bytes.NewReader(compressed))
		if err != nil {
			lastErr = err
			break // malformed stream header, retrying a bigger buffer won't help
		}

		out := make([]byte, 0, sizeHint)
		buf := bytes.NewBuffer(out)
		limited := io.LimitReader(r, int64(sizeHint))

		n, copyErr := io.Copy(buf, limited)
		done := copyErr == nil && (n < int64(sizeHint) || isExhausted(r))
		r.Close()

		if done {
			return buf.Bytes(), nil
		}
		lastErr = copyErr
		sizeHint *= 2
	}
	return nil, fmt.Errorf("%w: decompression failed after retries: %v", ewferr.ErrCodecFailure, lastErr)
}

// isExhausted drains r to see whether the stream had no more bytes beyond
// the limited read, meaning the limited copy captured the entire payload
// even though n == sizeHint exactly.
func isExhausted(r io.ReadCloser) bool {
	var probe [1]byte
	n, _ := r.Read(probe[:])
	return n == 0
}
