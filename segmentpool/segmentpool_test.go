package segmentpool

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forensicgo/goewf/ewferr"
)

func TestCreateWriteReadRoundTrip(t *testing.T) {
	pool := NewFilePool()
	defer pool.Close()

	entry, err := pool.Create(filepath.Join(t.TempDir(), "image.E01"))
	require.NoError(t, err)
	require.Equal(t, 0, entry)
	require.Equal(t, 1, pool.EntryCount())

	payload := []byte("segment file payload bytes")
	n, err := pool.WriteAt(entry, payload, 10)
	require.NoError(t, err)
	require.Equal(t, len(payload), n)

	got := make([]byte, len(payload))
	n, err = pool.ReadAt(entry, got, 10)
	require.NoError(t, err)
	require.Equal(t, len(payload), n)
	require.Equal(t, payload, got)

	size, err := pool.Size(entry)
	require.NoError(t, err)
	require.Equal(t, int64(10+len(payload)), size)
}

func TestMultipleSegmentsAreIndependent(t *testing.T) {
	pool := NewFilePool()
	defer pool.Close()

	dir := t.TempDir()
	e1, err := pool.Create(filepath.Join(dir, "image.E01"))
	require.NoError(t, err)
	e2, err := pool.Create(filepath.Join(dir, "image.E02"))
	require.NoError(t, err)

	_, err = pool.WriteAt(e1, []byte("first"), 0)
	require.NoError(t, err)
	_, err = pool.WriteAt(e2, []byte("second"), 0)
	require.NoError(t, err)

	got1 := make([]byte, 5)
	_, err = pool.ReadAt(e1, got1, 0)
	require.NoError(t, err)
	require.Equal(t, "first", string(got1))

	got2 := make([]byte, 6)
	_, err = pool.ReadAt(e2, got2, 0)
	require.NoError(t, err)
	require.Equal(t, "second", string(got2))
}

func TestReadAtOutOfBoundsEntry(t *testing.T) {
	pool := NewFilePool()
	defer pool.Close()

	_, err := pool.ReadAt(3, make([]byte, 1), 0)
	require.ErrorIs(t, err, ewferr.ErrOutOfBounds)
}
