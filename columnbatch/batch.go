package columnbatch

import "sort"

// Batch is the columnar result container from spec section 3: a mapping
// from column name to a typed vector, with all vectors sharing a common
// length. An empty batch has no columns, or every column has length zero.
type Batch struct {
	Columns map[string]*Vector
	// Order preserves the order columns were added in, since map
	// iteration order isn't stable and result consumers generally want
	// the database's reported column order.
	Order []string
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{Columns: map[string]*Vector{}}
}

// AddColumn registers a new, empty vector under name, preserving
// insertion order. It is a no-op if the column already exists.
func (b *Batch) AddColumn(name string, kind Kind) *Vector {
	if v, ok := b.Columns[name]; ok {
		return v
	}
	v := NewVector(kind)
	b.Columns[name] = v
	b.Order = append(b.Order, name)
	return v
}

// Len returns the row count, taken from the first non-empty column, or 0
// for an empty batch.
func (b *Batch) Len() int {
	for _, name := range b.Order {
		if n := b.Columns[name].Len(); n > 0 {
			return n
		}
	}
	return 0
}

// IsEmpty reports whether the batch has no columns, or every column is
// length zero (spec section 3 / 4.8).
func (b *Batch) IsEmpty() bool {
	if len(b.Order) == 0 {
		return true
	}
	for _, name := range b.Order {
		if b.Columns[name].Len() > 0 {
			return false
		}
	}
	return true
}

// ColumnTypes returns a name -> Kind mapping for every column, used by the
// ResultSet.ColumnTypes accessor (spec section 4.8).
func (b *Batch) ColumnTypes() map[string]Kind {
	out := make(map[string]Kind, len(b.Columns))
	for name, v := range b.Columns {
		out[name] = v.Kind
	}
	return out
}

// ColumnNames returns the columns in their original, insertion order.
func (b *Batch) ColumnNames() []string {
	out := make([]string, len(b.Order))
	copy(out, b.Order)
	return out
}

// SortedColumnNames is a convenience used by tests that want a
// deterministic order independent of discovery/insertion order.
func (b *Batch) SortedColumnNames() []string {
	out := b.ColumnNames()
	sort.Strings(out)
	return out
}

// CloneEmpty returns a new batch with the same columns, kinds and order as
// b, but with every vector empty. Used by uncompacting (exec package) to
// build the expanded result batch row by row.
func (b *Batch) CloneEmpty() *Batch {
	out := NewBatch()
	for _, name := range b.Order {
		out.AddColumn(name, b.Columns[name].Kind)
	}
	return out
}

// AppendRow copies the value at row i of every column in src into the
// matching column of b (by name), appending one element to each vector.
// Columns present in src but not in b are skipped.
func (b *Batch) AppendRow(src *Batch, i int) error {
	for _, name := range src.Order {
		dst, ok := b.Columns[name]
		if !ok {
			continue
		}
		if err := dst.Append(src.Columns[name].At(i)); err != nil {
			return err
		}
	}
	return nil
}
