package pool

import (
	"database/sql"
	"strings"

	"github.com/ukis-h3cellstore/h3cellstore/columnbatch"
)

// scanRows drains rows into a ColumnBatch whose column order and types are
// taken from the result metadata, per spec section 4.5's execute_plain.
func scanRows(rows *sql.Rows) (*columnbatch.Batch, error) {
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	batch := columnbatch.NewBatch()
	kinds := make([]columnbatch.Kind, len(colTypes))
	for i, ct := range colTypes {
		kind := kindFromDatabaseType(ct.DatabaseTypeName())
		kinds[i] = kind
		batch.AddColumn(ct.Name(), kind)
	}

	scanDest := make([]interface{}, len(colTypes))
	scanBuf := make([]interface{}, len(colTypes))
	for i := range scanDest {
		scanDest[i] = &scanBuf[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanDest...); err != nil {
			return nil, err
		}
		for i, name := range batch.Order {
			if err := batch.Columns[name].Append(scanBuf[i]); err != nil {
				return nil, err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return batch, nil
}

// kindFromDatabaseType maps a ClickHouse DatabaseTypeName (as reported by
// clickhouse-go/v2) to a columnbatch.Kind. Low/high-cardinality and
// nullable wrapper types (LowCardinality(X), Nullable(X)) are unwrapped to
// their base type.
func kindFromDatabaseType(name string) columnbatch.Kind {
	name = strings.TrimPrefix(name, "Nullable(")
	name = strings.TrimPrefix(name, "LowCardinality(")
	name = strings.TrimSuffix(name, ")")

	switch {
	case name == "UInt8":
		return columnbatch.KindUint8
	case name == "UInt16":
		return columnbatch.KindUint16
	case name == "UInt32":
		return columnbatch.KindUint32
	case name == "UInt64":
		return columnbatch.KindUint64
	case name == "Int8":
		return columnbatch.KindInt8
	case name == "Int16":
		return columnbatch.KindInt16
	case name == "Int32":
		return columnbatch.KindInt32
	case name == "Int64":
		return columnbatch.KindInt64
	case name == "Float32":
		return columnbatch.KindFloat32
	case name == "Float64":
		return columnbatch.KindFloat64
	case name == "Bool":
		return columnbatch.KindBool
	case strings.HasPrefix(name, "DateTime"), name == "Date", name == "Date32":
		return columnbatch.KindTime
	default:
		return columnbatch.KindString
	}
}
