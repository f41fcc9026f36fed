package cellkit

// Intersects reports whether a cell's boundary ring intersects the given
// polygon, using the boundary-intersect test (not centroid-in-polygon) per
// the decision recorded in SPEC_FULL.md section 6: a cell counts as "in"
// the window if any boundary vertex falls inside the polygon, any polygon
// vertex falls inside the cell, or any pair of edges cross. This is
// intentionally conservative at tessellation edges.
//
// No pack library (orb included) exposes a ready-made polygon/polygon
// intersection predicate for this lat/lng ring shape, so the test is
// implemented directly against the two point rings using a standard
// point-in-ring (ray casting) check plus pairwise segment intersection.
func Intersects(boundary []LatLng, poly Polygon) bool {
	if len(boundary) == 0 || len(poly.Loop) == 0 {
		return false
	}

	for _, v := range boundary {
		if pointInRing(v, poly.Loop) {
			return true
		}
	}
	for _, v := range poly.Loop {
		if pointInRing(v, boundary) {
			return true
		}
	}

	n, m := len(boundary), len(poly.Loop)
	for i := 0; i < n; i++ {
		a1, a2 := boundary[i], boundary[(i+1)%n]
		for j := 0; j < m; j++ {
			b1, b2 := poly.Loop[j], poly.Loop[(j+1)%m]
			if segmentsIntersect(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

// pointInRing is the standard even-odd ray casting test for a point
// against a (possibly non-convex) closed ring.
func pointInRing(p LatLng, ring []LatLng) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := ring[i], ring[j]
		if ((pi.Lat > p.Lat) != (pj.Lat > p.Lat)) &&
			(p.Lng < (pj.Lng-pi.Lng)*(p.Lat-pi.Lat)/(pj.Lat-pi.Lat)+pi.Lng) {
			inside = !inside
		}
	}
	return inside
}

func segmentsIntersect(p1, p2, p3, p4 LatLng) bool {
	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	if d1 == 0 && onSegment(p3, p4, p1) {
		return true
	}
	if d2 == 0 && onSegment(p3, p4, p2) {
		return true
	}
	if d3 == 0 && onSegment(p1, p2, p3) {
		return true
	}
	if d4 == 0 && onSegment(p1, p2, p4) {
		return true
	}
	return false
}

func direction(a, b, c LatLng) float64 {
	return (b.Lng-a.Lng)*(c.Lat-a.Lat) - (c.Lng-a.Lng)*(b.Lat-a.Lat)
}

func onSegment(a, b, p LatLng) bool {
	return p.Lng >= min(a.Lng, b.Lng) && p.Lng <= max(a.Lng, b.Lng) &&
		p.Lat >= min(a.Lat, b.Lat) && p.Lat <= max(a.Lat, b.Lat)
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
