// Package exec implements query execution and the uncompacting
// post-processing described in spec section 4.5: execute_plain submits a
// planned query and accumulates its rows into a ColumnBatch;
// execute_uncompacting additionally expands coarse-resolution rows into
// one row per requested descendant cell.
package exec

import (
	"context"

	opentracing "github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/ukis-h3cellstore/h3cellstore/cellkit"
	"github.com/ukis-h3cellstore/h3cellstore/columnbatch"
	"github.com/ukis-h3cellstore/h3cellstore/errs"
	"github.com/ukis-h3cellstore/h3cellstore/tableset"
)

// Runner is the minimal database contract the executor needs: submit SQL,
// get back a column batch. ConnectionPool implements this.
type Runner interface {
	RunQuery(ctx context.Context, sql string) (*columnbatch.Batch, error)
}

// Executor runs planned queries and optionally uncompacts their results.
type Executor struct {
	Runner Runner
}

// NewExecutor returns an Executor backed by r.
func NewExecutor(r Runner) *Executor {
	return &Executor{Runner: r}
}

// ExecutePlain submits sql and returns the raw result batch, with no
// uncompacting (spec section 4.5).
func (e *Executor) ExecutePlain(ctx context.Context, sql string) (*columnbatch.Batch, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "exec.ExecutePlain")
	defer span.Finish()

	b, err := e.Runner.RunQuery(ctx, sql)
	if err != nil {
		return nil, errs.Wrap(errs.DatabaseError, err, "execute_plain")
	}
	return b, nil
}

// ExecuteUncompacting submits sql, then uncompacts the raw batch against
// requestedCells at their shared resolution, per spec section 4.5:
// rows whose h3index is strictly coarser than the target resolution are
// expanded into one row per requested descendant; rows already at the
// target resolution pass through if requested, and are dropped otherwise.
func (e *Executor) ExecuteUncompacting(
	ctx context.Context, sql string, requestedCells []cellkit.Cell,
) (*columnbatch.Batch, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "exec.ExecuteUncompacting")
	defer span.Finish()

	target, err := cellkit.ValidateSameResolution(requestedCells)
	if err != nil {
		return nil, err
	}
	requested := make(map[cellkit.Cell]bool, len(requestedCells))
	for _, c := range requestedCells {
		requested[c] = true
	}

	raw, err := e.Runner.RunQuery(ctx, sql)
	if err != nil {
		return nil, errs.Wrap(errs.DatabaseError, err, "execute_uncompacting")
	}

	return Uncompact(raw, requested, target)
}

// Uncompact is the pure post-processing function from spec section 4.5 and
// the design notes (section 9): it never touches the database, operating
// only on a raw batch and a requested cell set, so it can be unit tested
// without a Runner.
func Uncompact(raw *columnbatch.Batch, requested map[cellkit.Cell]bool, target int) (*columnbatch.Batch, error) {
	h3col, ok := raw.Columns[tableset.H3IndexColumn]
	if !ok {
		return nil, errors.Errorf("result batch has no %s column", tableset.H3IndexColumn)
	}
	if h3col.Kind != columnbatch.KindUint64 {
		return nil, errors.Errorf("%s column must be uint64, got kind %d", tableset.H3IndexColumn, h3col.Kind)
	}

	out := raw.CloneEmpty()
	emitted := map[cellkit.Cell]bool{}

	for i := 0; i < h3col.Len(); i++ {
		rowCell := cellkit.Cell(h3col.Uint64[i])
		rowRes := cellkit.Resolution(rowCell)

		if rowRes == target {
			if requested[rowCell] && !emitted[rowCell] {
				if err := appendRow(out, raw, i, rowCell); err != nil {
					return nil, err
				}
				emitted[rowCell] = true
			}
			continue
		}
		if rowRes > target {
			// Rows finer than the target can't occur: the planner never
			// reads a table at a resolution above the requested one.
			continue
		}

		descendants, err := cellkit.Children(rowCell, target)
		if err != nil {
			return nil, errors.Wrapf(err, "expand %s to resolution %d", rowCell, target)
		}
		for _, d := range descendants {
			if !requested[d] || emitted[d] {
				continue
			}
			if err := appendRow(out, raw, i, d); err != nil {
				return nil, err
			}
			emitted[d] = true
		}
	}

	return out, nil
}

// appendRow copies every non-h3index column from raw row i into out, then
// appends cell as the h3index value for that row.
func appendRow(out, raw *columnbatch.Batch, i int, cell cellkit.Cell) error {
	for _, name := range raw.Order {
		if name == tableset.H3IndexColumn {
			continue
		}
		if err := out.Columns[name].Append(raw.Columns[name].At(i)); err != nil {
			return err
		}
	}
	return out.Columns[tableset.H3IndexColumn].Append(uint64(cell))
}
