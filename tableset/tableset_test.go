package tableset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukis-h3cellstore/h3cellstore/errs"
)

func TestDiscoverPartitionsByBasename(t *testing.T) {
	names := []string{
		"weather_00_base",
		"weather_05_compacted",
		"weather_09_base",
		"air_quality_09_base",
		"not_a_table",
		"weather", // too short / no suffix
	}
	out := Discover(names)
	require.Contains(t, out, "weather")
	require.Contains(t, out, "air_quality")
	assert.Len(t, out, 2)

	weather := out["weather"]
	assert.True(t, weather.BaseResolutions[0])
	assert.True(t, weather.BaseResolutions[9])
	assert.True(t, weather.CompactedResolutions[5])
	assert.False(t, weather.BaseResolutions[5])

	aq := out["air_quality"]
	assert.True(t, aq.BaseResolutions[9])
	assert.Empty(t, aq.CompactedResolutions)
}

func TestInsertSkipsIntermediate(t *testing.T) {
	ts := NewTableSet("weather")
	ts.Insert(Table{Basename: "weather", Spec: TableSpec{Resolution: 3, Intermediate: true}})
	assert.Empty(t, ts.BaseResolutions)
	assert.Empty(t, ts.CompactedResolutions)
}

func TestReachableResolutionsSortedAndBounded(t *testing.T) {
	ts := NewTableSet("weather")
	ts.Insert(Table{Basename: "weather", Spec: TableSpec{Resolution: 9}})
	ts.Insert(Table{Basename: "weather", Spec: TableSpec{Resolution: 5, Compacted: true}})
	ts.Insert(Table{Basename: "weather", Spec: TableSpec{Resolution: 11}})

	assert.Equal(t, []int{5, 9}, ts.ReachableResolutions(9))
	assert.Equal(t, []int{5, 9, 11}, ts.ReachableResolutions(15))
}

func TestTableForPicksCompactedBelowTargetBaseAtTarget(t *testing.T) {
	ts := NewTableSet("weather")
	ts.Insert(Table{Basename: "weather", Spec: TableSpec{Resolution: 9}})
	ts.Insert(Table{Basename: "weather", Spec: TableSpec{Resolution: 5, Compacted: true}})

	base, err := ts.TableFor(9, 9)
	require.NoError(t, err)
	assert.False(t, base.Spec.Compacted)
	assert.Equal(t, "weather_09_base", base.Name())

	compacted, err := ts.TableFor(5, 9)
	require.NoError(t, err)
	assert.True(t, compacted.Spec.Compacted)
	assert.Equal(t, "weather_05_compacted", compacted.Name())
}

func TestTableForMissingReturnsNoQueryableTables(t *testing.T) {
	ts := NewTableSet("weather")
	_, err := ts.TableFor(5, 9)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.NoQueryableTables))
}

func TestUserColumnsExcludesH3IndexAndSorts(t *testing.T) {
	ts := NewTableSet("weather")
	ts.Columns = map[string]string{"temp": "Float64", "humidity": "Float64", H3IndexColumn: "UInt64"}
	assert.Equal(t, []string{"humidity", "temp"}, ts.UserColumns())
}

func TestHashChangesWithShape(t *testing.T) {
	a := NewTableSet("weather")
	a.Insert(Table{Basename: "weather", Spec: TableSpec{Resolution: 9}})
	h1, err := a.Hash()
	require.NoError(t, err)

	b := NewTableSet("weather")
	b.Insert(Table{Basename: "weather", Spec: TableSpec{Resolution: 9}})
	h2, err := b.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	b.Insert(Table{Basename: "weather", Spec: TableSpec{Resolution: 5, Compacted: true}})
	h3, err := b.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}
