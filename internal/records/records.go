// Package records defines the in-memory tabular model shared by every stage
// of the pipeline. A Table is the sole data-in-flight structure: the extractor
// produces one, the transformer derives new ones, and the loader writes one.
//
// Values in a Record are restricted by convention to nil, string, float64,
// int64, bool, and time.Time. The CSV parser produces only nil and string;
// later stages coerce values into the richer types.
package records

import (
	"time"
)

// Record is a single row: a column-name to value mapping.
type Record map[string]any

// Table is an ordered sequence of rows plus the column order used when
// rendering to positional formats (CSV, Parquet, XLSX). Go maps do not
// preserve key order, so Columns is authoritative for output layout.
type Table struct {
	Columns []string
	Rows    []Record
}

// New returns an empty table with the given column order.
func New(columns []string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// NumRows returns the row count.
func (t *Table) NumRows() int { return len(t.Rows) }

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.Columns) }

// HasColumn reports whether name is part of the table's column set.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn appends a new column name to the column order. Existing rows are
// not touched; absent keys read as nil.
func (t *Table) AddColumn(name string) {
	if t.HasColumn(name) {
		return
	}
	t.Columns = append(t.Columns, name)
}

// DropColumn removes a column from the order and deletes its values from
// every row.
func (t *Table) DropColumn(name string) {
	cols := t.Columns[:0]
	for _, c := range t.Columns {
		if c != name {
			cols = append(cols, c)
		}
	}
	t.Columns = cols
	for _, r := range t.Rows {
		delete(r, name)
	}
}

// Clone returns a deep copy of the table. Rows are copied record by record so
// that mutating the clone never touches the original; scalar values are
// shared (they are immutable by convention).
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Record, len(t.Rows)),
	}
	for i, r := range t.Rows {
		nr := make(Record, len(r))
		for k, v := range r {
			nr[k] = v
		}
		out.Rows[i] = nr
	}
	return out
}

// ColumnType names one of the inferred logical column types.
type ColumnType string

const (
	TypeText    ColumnType = "text"
	TypeInteger ColumnType = "integer"
	TypeReal    ColumnType = "real"
	TypeBoolean ColumnType = "boolean"
	TypeDate    ColumnType = "date"
)

// InferType scans the non-nil values of a column and returns its logical
// type. Mixed-type columns degrade to text; a column holding only nils is
// text as well.
func (t *Table) InferType(column string) ColumnType {
	var (
		seen                           bool
		ints, reals, bools, dates, str bool
	)
	for _, r := range t.Rows {
		v, ok := r[column]
		if !ok || v == nil {
			continue
		}
		seen = true
		switch v.(type) {
		case int64, int:
			ints = true
		case float64:
			reals = true
		case bool:
			bools = true
		case time.Time:
			dates = true
		default:
			str = true
		}
	}
	if !seen || str {
		return TypeText
	}
	switch {
	case dates && !ints && !reals && !bools:
		return TypeDate
	case bools && !ints && !reals && !dates:
		return TypeBoolean
	case ints && !reals && !bools && !dates:
		return TypeInteger
	case (ints || reals) && !bools && !dates:
		return TypeReal
	}
	return TypeText
}

// Types returns the inferred type of every column, keyed by column name.
func (t *Table) Types() map[string]ColumnType {
	out := make(map[string]ColumnType, len(t.Columns))
	for _, c := range t.Columns {
		out[c] = t.InferType(c)
	}
	return out
}
