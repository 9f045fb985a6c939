// Package table defines the tabular payload shape exchanged between the
// remote provider and the persistent store. A Table carries an ordered
// column list and rows of loosely typed values; the store derives column
// layout from the first non-empty Table written to each target.
package table

import "fmt"

// Table is an ordered set of columns plus zero or more rows. Row values are
// positional and must match the column count.
type Table struct {
	Columns []string
	Rows    [][]any
}

// New creates an empty table with the given column layout.
func New(columns ...string) *Table {
	return &Table{Columns: columns}
}

// Append adds one row. The value count must match the column count.
func (t *Table) Append(values ...any) error {
	if len(values) != len(t.Columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(values), len(t.Columns))
	}
	t.Rows = append(t.Rows, values)
	return nil
}

// Len returns the row count. Safe on a nil table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table holds no rows. A nil table is empty.
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// ColumnIndex returns the position of the named column, or -1 when absent.
func (t *Table) ColumnIndex(name string) int {
	if t == nil {
		return -1
	}
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Concat merges tables into one, preserving part order and row order within
// each part. All non-empty parts must share the first part's column layout;
// a mismatch is the caller's error.
func Concat(parts ...*Table) (*Table, error) {
	merged := &Table{}
	for _, p := range parts {
		if p.Empty() {
			continue
		}
		if len(merged.Columns) == 0 {
			merged.Columns = append(merged.Columns, p.Columns...)
		} else if !sameColumns(merged.Columns, p.Columns) {
			return nil, fmt.Errorf("column mismatch: %v vs %v", merged.Columns, p.Columns)
		}
		merged.Rows = append(merged.Rows, p.Rows...)
	}
	return merged, nil
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
