package errortable

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/forensicgo/goewf/ewferr"
	"github.com/forensicgo/goewf/sectorrange"
)

func TestWriteReadV1RoundTrip(t *testing.T) {
	var list sectorrange.List
	list.Append(sectorrange.Range{Start: 100, Count: 5})
	list.Append(sectorrange.Range{Start: 500, Count: 2})

	buf := WriteV1(&list)

	var got sectorrange.List
	require.NoError(t, ReadV1(buf, &got))
	require.Equal(t, list.All(), got.All())
}

func TestReadV1HeaderChecksumMismatch(t *testing.T) {
	var list sectorrange.List
	list.Append(sectorrange.Range{Start: 1, Count: 1})
	buf := WriteV1(&list)
	buf[204] ^= 0xff

	var got sectorrange.List
	err := ReadV1(buf, &got)
	require.ErrorIs(t, err, ewferr.ErrChecksumMismatch)
}

func TestWriteReadV2RoundTrip(t *testing.T) {
	var list sectorrange.List
	list.Append(sectorrange.Range{Start: 100, Count: 5})
	list.Append(sectorrange.Range{Start: 500, Count: 2})

	buf := WriteV2(&list)

	var got sectorrange.List
	require.NoError(t, ReadV2(buf, &got))
	require.Equal(t, list.All(), got.All())
}

func TestReadV1EmptiesListFirst(t *testing.T) {
	var preexisting sectorrange.List
	preexisting.Append(sectorrange.Range{Start: 999, Count: 999})

	var empty sectorrange.List
	buf := WriteV1(&empty)

	require.NoError(t, ReadV1(buf, &preexisting))
	require.Equal(t, 0, preexisting.Len())
}
