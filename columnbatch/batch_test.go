package columnbatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddColumnIsIdempotentAndOrdered(t *testing.T) {
	b := NewBatch()
	b.AddColumn("h3index", KindUint64)
	b.AddColumn("temperature", KindFloat64)
	b.AddColumn("h3index", KindUint64) // no-op

	assert.Equal(t, []string{"h3index", "temperature"}, b.ColumnNames())
	assert.Equal(t, []string{"h3index", "temperature"}, b.SortedColumnNames())
}

func TestEmptyBatch(t *testing.T) {
	b := NewBatch()
	assert.True(t, b.IsEmpty())
	assert.Equal(t, 0, b.Len())

	b.AddColumn("h3index", KindUint64)
	assert.True(t, b.IsEmpty())

	require.NoError(t, b.Columns["h3index"].Append(uint64(1)))
	assert.False(t, b.IsEmpty())
	assert.Equal(t, 1, b.Len())
}

func TestCloneEmptyAndAppendRow(t *testing.T) {
	src := NewBatch()
	src.AddColumn("h3index", KindUint64)
	src.AddColumn("temperature", KindFloat64)
	require.NoError(t, src.Columns["h3index"].Append(uint64(100)))
	require.NoError(t, src.Columns["temperature"].Append(21.5))
	require.NoError(t, src.Columns["h3index"].Append(uint64(200)))
	require.NoError(t, src.Columns["temperature"].Append(22.5))

	dst := src.CloneEmpty()
	assert.Equal(t, src.ColumnNames(), dst.ColumnNames())
	assert.True(t, dst.IsEmpty())

	require.NoError(t, dst.AppendRow(src, 1))
	assert.Equal(t, 1, dst.Len())
	assert.Equal(t, uint64(200), dst.Columns["h3index"].At(0))
	assert.Equal(t, 22.5, dst.Columns["temperature"].At(0))
}

func TestColumnTypes(t *testing.T) {
	b := NewBatch()
	b.AddColumn("h3index", KindUint64)
	b.AddColumn("name", KindString)
	types := b.ColumnTypes()
	assert.Equal(t, KindUint64, types["h3index"])
	assert.Equal(t, KindString, types["name"])
}
