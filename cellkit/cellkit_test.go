package cellkit

import (
	"testing"

	h3 "github.com/uber/h3-go/v4"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukis-h3cellstore/h3cellstore/errs"
)

func cellAt(t *testing.T, lat, lng float64, res int) Cell {
	t.Helper()
	c := h3.LatLngToCell(h3.NewLatLng(lat, lng), res)
	require.True(t, c.IsValid())
	return c
}

func TestParseRejectsInvalidRaw(t *testing.T) {
	_, err := Parse(0)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.InvalidCell))
}

func TestParseAcceptsValidCell(t *testing.T) {
	c := cellAt(t, 37.78, -122.41, 9)
	parsed, err := Parse(uint64(c))
	require.NoError(t, err)
	assert.Equal(t, c, parsed)
}

func TestValidateSameResolutionEmpty(t *testing.T) {
	_, err := ValidateSameResolution(nil)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.EmptyIndexes))
}

func TestValidateSameResolutionMixed(t *testing.T) {
	a := cellAt(t, 37.78, -122.41, 9)
	b := cellAt(t, 37.78, -122.41, 8)
	_, err := ValidateSameResolution([]Cell{a, b})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.MixedResolutions))
}

func TestValidateSameResolutionOK(t *testing.T) {
	a := cellAt(t, 37.78, -122.41, 9)
	b := cellAt(t, 37.79, -122.42, 9)
	r, err := ValidateSameResolution([]Cell{a, b})
	require.NoError(t, err)
	assert.Equal(t, 9, r)
}

func TestParentAndChildrenRoundTrip(t *testing.T) {
	child := cellAt(t, 37.78, -122.41, 9)
	parent, err := Parent(child, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, Resolution(parent))

	children, err := Children(parent, 9)
	require.NoError(t, err)
	assert.Contains(t, children, child)
}

func TestCoarsestTessellationResolution(t *testing.T) {
	cases := []struct {
		target, windowMaxSize, want int
	}{
		{target: 9, windowMaxSize: 1, want: 9},
		{target: 9, windowMaxSize: 7, want: 8},
		{target: 9, windowMaxSize: 49, want: 7},
		{target: 9, windowMaxSize: 6, want: 9},
		{target: 2, windowMaxSize: 1000000, want: 0},
	}
	for _, c := range cases {
		got := CoarsestTessellationResolution(c.target, c.windowMaxSize)
		assert.Equalf(t, c.want, got, "target=%d windowMaxSize=%d", c.target, c.windowMaxSize)
		assert.LessOrEqual(t, got, c.target)
	}
}

func TestBoundaryReturnsClosedRing(t *testing.T) {
	c := cellAt(t, 37.78, -122.41, 9)
	b := Boundary(c)
	assert.GreaterOrEqual(t, len(b), 5)
}
