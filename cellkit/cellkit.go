// Package cellkit wraps the H3 cell arithmetic primitives (parent/child,
// resolution, polygon membership) the planner and sliding window need. It
// is a thin adapter over github.com/uber/h3-go/v4, kept separate so the
// rest of the module depends on a narrow interface instead of the h3-go
// API directly.
package cellkit

import (
	"github.com/pkg/errors"
	h3 "github.com/uber/h3-go/v4"

	"github.com/ukis-h3cellstore/h3cellstore/errs"
)

// MinResolution and MaxResolution bound the H3 hierarchy (spec section 3).
const (
	MinResolution = 0
	MaxResolution = 15
)

// Cell is an H3 cell index: an alias of h3-go's 64-bit integer Cell type,
// so it can be used directly as a map key and converts losslessly to and
// from the uint64 stored in the h3index column.
type Cell = h3.Cell

// Parse validates a raw uint64 as an H3 cell.
func Parse(raw uint64) (Cell, error) {
	c := h3.Cell(raw)
	if !c.IsValid() {
		return 0, errs.Newf(errs.InvalidCell, "%d is not a valid H3 cell", raw)
	}
	return c, nil
}

// Resolution returns the cell's resolution.
func Resolution(c Cell) int {
	return c.Resolution()
}

// Parent returns the ancestor of c at resolution r. r must be <= Resolution(c).
func Parent(c Cell, r int) (Cell, error) {
	p, err := c.Parent(r)
	if err != nil {
		return 0, errors.Wrapf(err, "parent of %s at resolution %d", c, r)
	}
	return p, nil
}

// Children returns every descendant of c at resolution r. r must be >= Resolution(c).
func Children(c Cell, r int) ([]Cell, error) {
	return c.Children(r)
}

// ValidateSameResolution checks that every cell is valid and shares the
// resolution of cells[0], returning that common resolution.
func ValidateSameResolution(cells []Cell) (int, error) {
	if len(cells) == 0 {
		return 0, errs.New(errs.EmptyIndexes, "cell list is empty")
	}
	r := cells[0].Resolution()
	for _, c := range cells {
		if !c.IsValid() {
			return 0, errs.Newf(errs.InvalidCell, "%s is not a valid H3 cell", c)
		}
		if c.Resolution() != r {
			return 0, errs.Newf(errs.MixedResolutions,
				"cell %s has resolution %d, expected %d", c, c.Resolution(), r)
		}
	}
	return r, nil
}

// LatLng is a geographic coordinate, lat/lng in degrees.
type LatLng = h3.LatLng

// Polygon is a simple polygon (no holes) used to tessellate and filter
// cells. Holes aren't needed by the sliding window, which only tests
// whether a cell's boundary intersects the outer ring.
type Polygon struct {
	Loop []LatLng
}

// CoarsestTessellationResolution picks the smallest (coarsest) resolution
// Rc, with MinResolution <= Rc <= target, such that
// 7^(target-Rc) <= windowMaxSize. It returns target when windowMaxSize < 7.
func CoarsestTessellationResolution(target, windowMaxSize int) int {
	rc := target
	childCount := 1
	for rc > MinResolution {
		next := childCount * 7
		if next > windowMaxSize {
			break
		}
		childCount = next
		rc--
	}
	return rc
}

// TessellateCoarse returns every cell at resolution rc whose center lies
// inside the polygon (h3's PolygonToCells containment rule). A cell that
// overlaps the polygon edge without its center inside is not returned.
func TessellateCoarse(poly Polygon, rc int) ([]Cell, error) {
	gp := h3.GeoPolygon{GeoLoop: h3.GeoLoop(poly.Loop)}
	return h3.PolygonToCells(gp, rc)
}

// Boundary returns the cell's hexagonal (or pentagonal) boundary as a
// closed ring of lat/lng vertices.
func Boundary(c Cell) []LatLng {
	b := c.Boundary()
	out := make([]LatLng, len(b))
	copy(out, b[:])
	return out
}
