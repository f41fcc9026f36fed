package cellkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func square(minLat, minLng, maxLat, maxLng float64) Polygon {
	return Polygon{Loop: []LatLng{
		{Lat: minLat, Lng: minLng},
		{Lat: minLat, Lng: maxLng},
		{Lat: maxLat, Lng: maxLng},
		{Lat: maxLat, Lng: minLng},
	}}
}

func TestIntersectsBoundaryVertexInsidePolygon(t *testing.T) {
	boundary := []LatLng{{Lat: 5, Lng: 5}, {Lat: 20, Lng: 20}, {Lat: 20, Lng: 5}}
	poly := square(0, 0, 10, 10)
	assert.True(t, Intersects(boundary, poly))
}

func TestIntersectsPolygonVertexInsideBoundary(t *testing.T) {
	boundary := square(-1, -1, 100, 100).Loop
	poly := square(1, 1, 2, 2)
	assert.True(t, Intersects(boundary, poly))
}

func TestIntersectsEdgeCrossingNoVertexInside(t *testing.T) {
	// A thin cross shape whose edges cross the square's edges without any
	// vertex of either ring landing inside the other.
	boundary := []LatLng{{Lat: -5, Lng: 5}, {Lat: 15, Lng: 5}}
	poly := square(0, 0, 10, 10)
	assert.True(t, Intersects(boundary, poly))
}

func TestIntersectsFalseWhenDisjoint(t *testing.T) {
	boundary := square(100, 100, 101, 101).Loop
	poly := square(0, 0, 10, 10)
	assert.False(t, Intersects(boundary, poly))
}

func TestIntersectsFalseOnEmptyInput(t *testing.T) {
	assert.False(t, Intersects(nil, square(0, 0, 1, 1)))
	assert.False(t, Intersects(square(0, 0, 1, 1).Loop, Polygon{}))
}
