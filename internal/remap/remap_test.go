package remap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableRecordAndResolve(t *testing.T) {
	tbl := NewTable()

	tbl.Record(10, 42)
	assert.Equal(t, int64(42), tbl.Resolve(10))

	// Unknown IDs resolve to themselves.
	assert.Equal(t, int64(7), tbl.Resolve(7))
}

func TestTableUnchangedIDNotStored(t *testing.T) {
	tbl := NewTable()

	tbl.Record(10, 10)
	assert.Equal(t, 0, tbl.Len())
	assert.Equal(t, int64(10), tbl.Resolve(10))
}

func TestSetTablesAreIndependent(t *testing.T) {
	set := NewSet()
	require.NotNil(t, set.Posts)
	require.NotNil(t, set.Terms)
	require.NotNil(t, set.Media)

	set.Posts.Record(1, 100)
	assert.Equal(t, int64(100), set.Posts.Resolve(1))
	assert.Equal(t, int64(1), set.Terms.Resolve(1))
	assert.Equal(t, int64(1), set.Media.Resolve(1))
}

func TestSetsDoNotShareState(t *testing.T) {
	a := NewSet()
	b := NewSet()

	a.Posts.Record(1, 2)
	assert.Equal(t, 0, b.Posts.Len())
}
