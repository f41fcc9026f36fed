package window

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukis-h3cellstore/h3cellstore/cellkit"
	"github.com/ukis-h3cellstore/h3cellstore/columnbatch"
	"github.com/ukis-h3cellstore/h3cellstore/internal/testutil"
	"github.com/ukis-h3cellstore/h3cellstore/query"
	"github.com/ukis-h3cellstore/h3cellstore/tableset"
)

// testTarget and testWindowMaxSize keep the coarse tessellation small: a
// ~0.2 degree box around San Francisco at resolution 9, with a coarse
// resolution one level up, yields a few hundred coarse cells rather than
// the millions a global polygon would produce.
const (
	testTarget        = 9
	testWindowMaxSize = 10
)

func testBoundingBox() cellkit.Polygon {
	return cellkit.Polygon{Loop: []cellkit.LatLng{
		{Lat: 37.70, Lng: -122.50},
		{Lat: 37.70, Lng: -122.30},
		{Lat: 37.90, Lng: -122.30},
		{Lat: 37.90, Lng: -122.50},
	}}
}

func weatherTableSetAtTarget(target int) *tableset.TableSet {
	ts := tableset.NewTableSet("weather")
	ts.Insert(tableset.Table{Basename: "weather", Spec: tableset.TableSpec{Resolution: target}})
	rc := cellkit.CoarsestTessellationResolution(target, testWindowMaxSize)
	if rc != target {
		ts.Insert(tableset.Table{Basename: "weather", Spec: tableset.TableSpec{Resolution: rc, Compacted: true}})
	}
	ts.Columns = map[string]string{"temperature": "Float64"}
	return ts
}

func nonEmptyBatch() *columnbatch.Batch {
	b := columnbatch.NewBatch()
	b.AddColumn(tableset.H3IndexColumn, columnbatch.KindUint64)
	_ = b.Columns[tableset.H3IndexColumn].Append(uint64(1))
	return b
}

func TestCreateAndNextWindowSkipsEmptyCoarseCells(t *testing.T) {
	ts := weatherTableSetAtTarget(testTarget)
	fp := testutil.NewFakePool()
	// Every existence-check query must report no rows. FakePool's
	// no-match path returns an error, which QueryReturnsRows passes on,
	// so we register a responder that reports "no rows" for everything.
	fp.Responder = func(ctx context.Context, q string) (*columnbatch.Batch, error) {
		return columnbatch.NewBatch(), nil
	}

	log := logrus.NewEntry(logrus.New())
	sw, err := Create(context.Background(), Config{
		Polygon:          testBoundingBox(),
		TargetResolution: testTarget,
		WindowMaxSize:    testWindowMaxSize,
		TableSet:         ts,
		QueryTemplate:    query.AutoGenerated(),
		ConcurrencyLimit: 4,
		Pool:             fp,
		Log:              log,
	})
	require.NoError(t, err)

	rs, err := sw.NextWindow(context.Background())
	require.NoError(t, err)
	assert.Nil(t, rs)
	assert.Equal(t, sw.Stats().WindowsEmitted, 0)
	assert.Greater(t, sw.Stats().WindowsSkipped, 0)
}

func TestNextWindowEmitsForCoarseCellsWithData(t *testing.T) {
	ts := weatherTableSetAtTarget(testTarget)
	fp := testutil.NewFakePool()
	fp.Responder = func(ctx context.Context, q string) (*columnbatch.Batch, error) {
		return nonEmptyBatch(), nil
	}

	log := logrus.NewEntry(logrus.New())
	sw, err := Create(context.Background(), Config{
		Polygon:          testBoundingBox(),
		TargetResolution: testTarget,
		WindowMaxSize:    testWindowMaxSize,
		TableSet:         ts,
		QueryTemplate:    query.AutoGenerated(),
		ConcurrencyLimit: 4,
		Pool:             fp,
		Log:              log,
	})
	require.NoError(t, err)

	var emitted int
	for {
		rs, err := sw.NextWindow(context.Background())
		require.NoError(t, err)
		if rs == nil {
			break
		}
		emitted++
		batch, err := rs.ToColumns()
		require.NoError(t, err)
		assert.NotNil(t, batch)
	}
	assert.Greater(t, emitted, 0)
	assert.Equal(t, emitted, sw.Stats().WindowsEmitted)
}

func TestNextWindowReturnsNilAfterExhaustion(t *testing.T) {
	ts := weatherTableSetAtTarget(testTarget)
	fp := testutil.NewFakePool()
	fp.Responder = func(ctx context.Context, q string) (*columnbatch.Batch, error) {
		return columnbatch.NewBatch(), nil
	}

	sw, err := Create(context.Background(), Config{
		Polygon:          testBoundingBox(),
		TargetResolution: testTarget,
		WindowMaxSize:    testWindowMaxSize,
		TableSet:         ts,
		QueryTemplate:    query.AutoGenerated(),
		ConcurrencyLimit: 2,
		Pool:             fp,
	})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		rs, err := sw.NextWindow(context.Background())
		require.NoError(t, err)
		assert.Nil(t, rs)
	}
}

func TestPrefetchQueryUsesTemplateWhenConfigured(t *testing.T) {
	ts := weatherTableSetAtTarget(testTarget)
	fp := testutil.NewFakePool()
	fp.Responder = func(ctx context.Context, q string) (*columnbatch.Batch, error) {
		return columnbatch.NewBatch(), nil
	}

	prefetch := query.TemplatedSelect("select h3index from <[table]> where h3index in <[h3indexes]> limit 1")
	sw, err := Create(context.Background(), Config{
		Polygon:             testBoundingBox(),
		TargetResolution:    testTarget,
		WindowMaxSize:       testWindowMaxSize,
		TableSet:            ts,
		QueryTemplate:       query.AutoGenerated(),
		PrefetchTemplate:    prefetch,
		HasPrefetchTemplate: true,
		ConcurrencyLimit:    4,
		Pool:                fp,
	})
	require.NoError(t, err)
	_, _ = sw.NextWindow(context.Background())

	require.NotEmpty(t, fp.Queries)
	for _, q := range fp.Queries {
		assert.NotContains(t, q, query.PlaceholderTable)
		assert.NotContains(t, q, query.PlaceholderH3Indexes)
		assert.Contains(t, q, "weather_")
	}
}
