package tableset

import (
	"sort"

	"github.com/mitchellh/hashstructure"

	"github.com/ukis-h3cellstore/h3cellstore/errs"
)

// H3IndexColumn is the distinguished column name every table must carry
// and that the planner and uncompacting logic key off of.
const H3IndexColumn = "h3index"

// TableSet aggregates the per-resolution tables of one logical dataset,
// plus the column schema shared across them (populated separately, from a
// DESCRIBE-equivalent call - see pool.ConnectionPool.ListTableSets).
type TableSet struct {
	Basename             string
	BaseResolutions      map[int]bool
	CompactedResolutions map[int]bool
	// Columns maps user column name to its SQL type name. h3index is
	// reserved and is not expected to appear here.
	Columns map[string]string
}

// NewTableSet returns an empty TableSet for basename.
func NewTableSet(basename string) *TableSet {
	return &TableSet{
		Basename:             basename,
		BaseResolutions:      map[int]bool{},
		CompactedResolutions: map[int]bool{},
		Columns:              map[string]string{},
	}
}

// Insert records a parsed table into the appropriate resolution set.
// Intermediate tables are ignored - the planner never reads them.
func (ts *TableSet) Insert(t Table) {
	if t.Spec.Intermediate {
		return
	}
	if t.Spec.Compacted {
		ts.CompactedResolutions[t.Spec.Resolution] = true
	} else {
		ts.BaseResolutions[t.Spec.Resolution] = true
	}
}

// ReachableResolutions returns every resolution with a base or compacted
// table, restricted to r <= max, in ascending order.
func (ts *TableSet) ReachableResolutions(max int) []int {
	seen := map[int]bool{}
	for r := range ts.BaseResolutions {
		if r <= max {
			seen[r] = true
		}
	}
	for r := range ts.CompactedResolutions {
		if r <= max {
			seen[r] = true
		}
	}
	out := make([]int, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Ints(out)
	return out
}

// TableFor returns the table name to read from at resolution r, given the
// finest requested resolution target: at r == target use the base table,
// at r < target use the compacted table (spec section 4.4 step 5).
func (ts *TableSet) TableFor(r, target int) (Table, error) {
	compacted := r < target
	spec := TableSpec{Resolution: r, Compacted: compacted}
	if compacted {
		if !ts.CompactedResolutions[r] {
			return Table{}, errs.Newf(errs.NoQueryableTables,
				"no compacted table for %s at resolution %d", ts.Basename, r)
		}
	} else {
		if !ts.BaseResolutions[r] {
			return Table{}, errs.Newf(errs.NoQueryableTables,
				"no base table for %s at resolution %d", ts.Basename, r)
		}
	}
	return Table{Basename: ts.Basename, Spec: spec}, nil
}

// UserColumns returns every column name other than h3index, sorted for
// deterministic SQL generation.
func (ts *TableSet) UserColumns() []string {
	out := make([]string, 0, len(ts.Columns))
	for name := range ts.Columns {
		if name == H3IndexColumn {
			continue
		}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Hash returns a stable hash of the tableset's shape (resolutions present,
// column names/types) so a caller can detect whether a discovery run
// changed anything since the last one - a cache-invalidation primitive a
// long-lived pool plausibly wants (see SPEC_FULL.md section 2).
func (ts *TableSet) Hash() (uint64, error) {
	type shape struct {
		Basename  string
		Base      []int
		Compacted []int
		Columns   map[string]string
	}
	base := make([]int, 0, len(ts.BaseResolutions))
	for r := range ts.BaseResolutions {
		base = append(base, r)
	}
	sort.Ints(base)
	compacted := make([]int, 0, len(ts.CompactedResolutions))
	for r := range ts.CompactedResolutions {
		compacted = append(compacted, r)
	}
	sort.Ints(compacted)

	return hashstructure.Hash(shape{
		Basename:  ts.Basename,
		Base:      base,
		Compacted: compacted,
		Columns:   ts.Columns,
	}, nil)
}

// Discover partitions a list of table names into a mapping from basename
// to TableSet, per spec section 4.2. Unparseable names are skipped.
func Discover(names []string) map[string]*TableSet {
	out := map[string]*TableSet{}
	for _, name := range names {
		t, ok := Parse(name)
		if !ok {
			continue
		}
		ts, ok := out[t.Basename]
		if !ok {
			ts = NewTableSet(t.Basename)
			out[t.Basename] = ts
		}
		ts.Insert(t)
	}
	return out
}
