// Package tableset parses table names into a hierarchical table family and
// tracks which resolutions are compacted versus base, per spec section 4.1
// and 4.2.
package tableset

import (
	"fmt"
	"regexp"
	"strconv"
)

// nameRegexp is the table-name grammar from spec section 3 / 6:
// <basename>_<NN>_(base|compacted). Names not matching are ignored by
// discovery, not treated as errors.
var nameRegexp = regexp.MustCompile(`^([a-zA-Z][a-zA-Z_0-9]+)_(\d{2})_(base|compacted)$`)

// TableSpec describes a single table's place in the resolution hierarchy.
type TableSpec struct {
	Resolution int
	Compacted  bool
	// Intermediate marks ingest-only staging tables that are never read
	// by the planner. Discovery never produces Intermediate tables (the
	// name grammar has no way to express them); callers that construct
	// TableSpec values directly (e.g. the schema-creation path) may set
	// it to keep such tables out of query planning.
	Intermediate bool
}

// Table is a fully parsed table identity.
type Table struct {
	Basename string
	Spec     TableSpec
}

// Name returns the canonical table name, zero-padding the resolution to
// two digits.
func (t Table) Name() string {
	kind := "base"
	if t.Spec.Compacted {
		kind = "compacted"
	}
	return fmt.Sprintf("%s_%02d_%s", t.Basename, t.Spec.Resolution, kind)
}

// Parse parses a table name per the grammar in spec section 3/6. It
// returns ok=false (not an error) for any name that doesn't match -
// discovery treats non-matching names as simply not tables of interest.
func Parse(name string) (Table, bool) {
	m := nameRegexp.FindStringSubmatch(name)
	if m == nil {
		return Table{}, false
	}
	r, err := strconv.Atoi(m[2])
	if err != nil || r < 0 || r > 15 {
		return Table{}, false
	}
	return Table{
		Basename: m[1],
		Spec: TableSpec{
			Resolution: r,
			Compacted:  m[3] == "compacted",
		},
	}, true
}

// Format is the inverse of Parse for non-intermediate tables: it returns
// the canonical name, equal to t.Name().
func Format(t Table) string {
	return t.Name()
}
