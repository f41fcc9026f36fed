// Package columnbatch implements the columnar result container described
// in spec section 3: a mapping from column name to a typed vector, with
// every vector in a batch sharing the same length.
package columnbatch

import (
	"time"

	"github.com/spf13/cast"
)

// Kind identifies a vector's element type. The set is fixed by the
// database's column types (spec section 3).
type Kind int

const (
	KindUint8 Kind = iota
	KindUint16
	KindUint32
	KindUint64
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindBool
	KindString
	KindTime
)

// Vector is a single typed column of values. Only one of the typed slices
// is populated, selected by Kind.
type Vector struct {
	Kind    Kind
	Uint8   []uint8
	Uint16  []uint16
	Uint32  []uint32
	Uint64  []uint64
	Int8    []int8
	Int16   []int16
	Int32   []int32
	Int64   []int64
	Float32 []float32
	Float64 []float64
	Bool    []bool
	String  []string
	Time    []time.Time
}

// NewVector returns an empty vector of the given kind.
func NewVector(kind Kind) *Vector {
	return &Vector{Kind: kind}
}

// Len returns the number of elements in the populated slice.
func (v *Vector) Len() int {
	switch v.Kind {
	case KindUint8:
		return len(v.Uint8)
	case KindUint16:
		return len(v.Uint16)
	case KindUint32:
		return len(v.Uint32)
	case KindUint64:
		return len(v.Uint64)
	case KindInt8:
		return len(v.Int8)
	case KindInt16:
		return len(v.Int16)
	case KindInt32:
		return len(v.Int32)
	case KindInt64:
		return len(v.Int64)
	case KindFloat32:
		return len(v.Float32)
	case KindFloat64:
		return len(v.Float64)
	case KindBool:
		return len(v.Bool)
	case KindString:
		return len(v.String)
	case KindTime:
		return len(v.Time)
	default:
		return 0
	}
}

// At returns the i-th element, boxed as interface{}.
func (v *Vector) At(i int) interface{} {
	switch v.Kind {
	case KindUint8:
		return v.Uint8[i]
	case KindUint16:
		return v.Uint16[i]
	case KindUint32:
		return v.Uint32[i]
	case KindUint64:
		return v.Uint64[i]
	case KindInt8:
		return v.Int8[i]
	case KindInt16:
		return v.Int16[i]
	case KindInt32:
		return v.Int32[i]
	case KindInt64:
		return v.Int64[i]
	case KindFloat32:
		return v.Float32[i]
	case KindFloat64:
		return v.Float64[i]
	case KindBool:
		return v.Bool[i]
	case KindString:
		return v.String[i]
	case KindTime:
		return v.Time[i]
	default:
		return nil
	}
}

// Append coerces raw (as reported by the driver for this column) into the
// vector's element type and appends it. Numeric coercion goes through
// spf13/cast, which the teacher already depends on, since a driver may
// hand back an int64 for a column we've typed as uint32 and similar.
func (v *Vector) Append(raw interface{}) error {
	switch v.Kind {
	case KindUint8:
		n, err := cast.ToUint8E(raw)
		if err != nil {
			return err
		}
		v.Uint8 = append(v.Uint8, n)
	case KindUint16:
		n, err := cast.ToUint16E(raw)
		if err != nil {
			return err
		}
		v.Uint16 = append(v.Uint16, n)
	case KindUint32:
		n, err := cast.ToUint32E(raw)
		if err != nil {
			return err
		}
		v.Uint32 = append(v.Uint32, n)
	case KindUint64:
		n, err := cast.ToUint64E(raw)
		if err != nil {
			return err
		}
		v.Uint64 = append(v.Uint64, n)
	case KindInt8:
		n, err := cast.ToInt8E(raw)
		if err != nil {
			return err
		}
		v.Int8 = append(v.Int8, n)
	case KindInt16:
		n, err := cast.ToInt16E(raw)
		if err != nil {
			return err
		}
		v.Int16 = append(v.Int16, n)
	case KindInt32:
		n, err := cast.ToInt32E(raw)
		if err != nil {
			return err
		}
		v.Int32 = append(v.Int32, n)
	case KindInt64:
		n, err := cast.ToInt64E(raw)
		if err != nil {
			return err
		}
		v.Int64 = append(v.Int64, n)
	case KindFloat32:
		n, err := cast.ToFloat32E(raw)
		if err != nil {
			return err
		}
		v.Float32 = append(v.Float32, n)
	case KindFloat64:
		n, err := cast.ToFloat64E(raw)
		if err != nil {
			return err
		}
		v.Float64 = append(v.Float64, n)
	case KindBool:
		b, err := cast.ToBoolE(raw)
		if err != nil {
			return err
		}
		v.Bool = append(v.Bool, b)
	case KindString:
		s, err := cast.ToStringE(raw)
		if err != nil {
			return err
		}
		v.String = append(v.String, s)
	case KindTime:
		t, err := cast.ToTimeE(raw)
		if err != nil {
			return err
		}
		v.Time = append(v.Time, t)
	}
	return nil
}
