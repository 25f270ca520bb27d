package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndexIter struct {
	rows   [][]byte
	pos    int
	closer error
}

func (f *fakeIndexIter) Scan(dest ...any) bool {
	if f.pos >= len(f.rows) {
		return false
	}
	col := dest[0].(*[]byte)
	bucket := dest[1].(*int64)
	*col = f.rows[f.pos]
	*bucket = 0
	f.pos++
	return true
}

func (f *fakeIndexIter) Close() error { return f.closer }

func TestScanIndexRowsCollectsAllRows(t *testing.T) {
	iter := &fakeIndexIter{rows: [][]byte{[]byte("key-a"), []byte("key-b")}}
	rows, err := scanIndexRows(iter)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []byte("key-a"), rows[0].serialized)
	assert.Equal(t, []byte("key-b"), rows[1].serialized)
}

func TestScanIndexRowsEmpty(t *testing.T) {
	iter := &fakeIndexIter{}
	rows, err := scanIndexRows(iter)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestScanIndexRowsCopiesBuffers(t *testing.T) {
	shared := []byte("key-a")
	iter := &fakeIndexIter{rows: [][]byte{shared}}
	rows, err := scanIndexRows(iter)
	require.NoError(t, err)
	shared[0] = 'X'
	assert.Equal(t, byte('k'), rows[0].serialized[0], "row must not alias the scan buffer")
}
