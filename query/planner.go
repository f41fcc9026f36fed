package query

import (
	"fmt"
	"strings"

	"github.com/ukis-h3cellstore/h3cellstore/cellkit"
	"github.com/ukis-h3cellstore/h3cellstore/errs"
	"github.com/ukis-h3cellstore/h3cellstore/tableset"
)

// Planner builds the union-across-resolutions SQL described in spec
// section 4.4, given a tableset and a query mode.
type Planner struct {
	TableSet *tableset.TableSet
}

// NewPlanner returns a Planner bound to ts.
func NewPlanner(ts *tableset.TableSet) *Planner {
	return &Planner{TableSet: ts}
}

// BuildSelectQuery implements spec section 4.4's algorithm: validate the
// query mode and cell list, compute the reachable resolutions below the
// target, and union one SELECT per resolution (compacted tables for
// r < target, the base table at r == target).
func (p *Planner) BuildSelectQuery(cells []cellkit.Cell, q Template) (string, error) {
	if err := q.Validate(); err != nil {
		return "", err
	}

	target, err := cellkit.ValidateSameResolution(cells)
	if err != nil {
		return "", err
	}

	reachable := p.TableSet.ReachableResolutions(target)
	if len(reachable) == 0 {
		return "", errs.Newf(errs.NoQueryableTables,
			"no resolution <= %d is queryable for %s", target, p.TableSet.Basename)
	}

	selects := make([]string, 0, len(reachable))
	for _, r := range reachable {
		sel, err := p.buildResolutionSelect(r, target, cells, q)
		if err != nil {
			return "", err
		}
		selects = append(selects, sel)
	}

	return strings.Join(selects, " union all "), nil
}

func (p *Planner) buildResolutionSelect(r, target int, cells []cellkit.Cell, q Template) (string, error) {
	table, err := p.TableSet.TableFor(r, target)
	if err != nil {
		return "", err
	}

	ancestors, err := ancestorsAt(cells, r)
	if err != nil {
		return "", err
	}
	literal := cellListLiteral(ancestors)

	if q.IsTemplated() {
		return q.render(table.Name(), literal), nil
	}
	return p.autoGeneratedSelect(table.Name(), literal), nil
}

// autoGeneratedSelect implements the AutoGenerated mode from spec section
// 4.4 step 7: select h3index, <user columns> from <table> where h3index in [...].
func (p *Planner) autoGeneratedSelect(table, literal string) string {
	cols := append([]string{tableset.H3IndexColumn}, p.TableSet.UserColumns()...)
	return fmt.Sprintf("select %s from %s where h3index in %s",
		strings.Join(cols, ", "), table, literal)
}

// ancestorsAt computes { parent(c, r) : c in cells }, or cells themselves
// when r equals their own resolution (parent-at-self is the cell itself).
func ancestorsAt(cells []cellkit.Cell, r int) ([]cellkit.Cell, error) {
	out := make([]cellkit.Cell, len(cells))
	for i, c := range cells {
		if cellkit.Resolution(c) == r {
			out[i] = c
			continue
		}
		p, err := cellkit.Parent(c, r)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// cellListLiteral formats cells per spec section 6: "[v1,v2,...,vn]",
// square brackets, comma-separated decimal u64, no spaces.
func cellListLiteral(cells []cellkit.Cell) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = fmt.Sprintf("%d", uint64(c))
	}
	return "[" + strings.Join(parts, ",") + "]"
}
