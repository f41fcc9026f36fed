// Package resultset implements the external-facing wrapper from spec
// section 3 and 4.8: a ResultSet carries optional cell metadata plus an
// either<ColumnBatch, AsyncResultHandle> payload that transitions, one
// time only, the first time any payload-dependent accessor is called.
package resultset

import (
	"time"

	"github.com/ukis-h3cellstore/h3cellstore/cellkit"
	"github.com/ukis-h3cellstore/h3cellstore/columnbatch"
	"github.com/ukis-h3cellstore/h3cellstore/errs"
	"github.com/ukis-h3cellstore/h3cellstore/pool"
)

// ResultSet is the handle-or-batch wrapper returned by fetch_cells and by
// SlidingWindow.NextWindow.
type ResultSet struct {
	CellsQueried []cellkit.Cell
	WindowCell   *cellkit.Cell

	handle *pool.AsyncResultHandle

	resolved bool
	batch    *columnbatch.Batch
	err      error
	duration *time.Duration
	// consumedOnce marks that ToColumns already transferred ownership of
	// the batch out, per the "ownership transfer" decision in SPEC_FULL.md
	// section 6.
	consumedOnce bool
}

// FromHandle builds a ResultSet still backed by an in-flight handle.
func FromHandle(handle *pool.AsyncResultHandle, cellsQueried []cellkit.Cell, windowCell *cellkit.Cell) *ResultSet {
	return &ResultSet{CellsQueried: cellsQueried, WindowCell: windowCell, handle: handle}
}

// FromBatch builds a ResultSet already holding a materialized batch (no
// async handle involved - used by fetch_cells call sites that execute
// synchronously, or by tests).
func FromBatch(batch *columnbatch.Batch, cellsQueried []cellkit.Cell, windowCell *cellkit.Cell) *ResultSet {
	return &ResultSet{CellsQueried: cellsQueried, WindowCell: windowCell, resolved: true, batch: batch}
}

// resolve blocks on the underlying handle the first time any
// payload-dependent accessor is called, replacing the handle variant with
// the materialized batch (spec section 3's ResultSet transition, section
// 4.8's "transparently blocks ... the first time").
func (r *ResultSet) resolve() {
	if r.resolved {
		return
	}
	r.resolved = true
	if r.handle == nil {
		r.err = errs.New(errs.HandleConsumed, "ResultSet has no payload")
		return
	}
	batch, err := r.handle.Await()
	if err != nil {
		r.err = err
		return
	}
	r.batch = batch
	d := r.handle.Duration()
	r.duration = &d
}

// IsEmpty blocks (resolving the payload if needed) and reports whether the
// batch has no columns or all columns are length zero.
func (r *ResultSet) IsEmpty() (bool, error) {
	r.resolve()
	if r.err != nil {
		return false, r.err
	}
	return r.batch.IsEmpty(), nil
}

// ColumnTypes blocks and returns a column name -> columnbatch.Kind mapping.
func (r *ResultSet) ColumnTypes() (map[string]columnbatch.Kind, error) {
	r.resolve()
	if r.err != nil {
		return nil, r.err
	}
	return r.batch.ColumnTypes(), nil
}

// ToColumns blocks and consumes the payload: per the ownership-transfer
// decision (SPEC_FULL.md section 6), a second call fails rather than
// returning the batch again.
func (r *ResultSet) ToColumns() (*columnbatch.Batch, error) {
	r.resolve()
	if r.err != nil {
		return nil, r.err
	}
	if r.consumedOnce {
		return nil, errs.New(errs.HandleConsumed, "ResultSet payload already consumed")
	}
	r.consumedOnce = true
	return r.batch, nil
}

// DurationSecs blocks and returns the query duration, populated only for
// async-issued queries (a ResultSet built with FromBatch has none).
func (r *ResultSet) DurationSecs() (*float64, error) {
	r.resolve()
	if r.err != nil {
		return nil, r.err
	}
	if r.duration == nil {
		return nil, nil
	}
	secs := r.duration.Seconds()
	return &secs, nil
}
