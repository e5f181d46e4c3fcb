package engine

// Table is a fully materialized query result. Cells are int64 for numeric
// columns and string for text columns; there is no streaming emission and
// no partial-failure state.
type Table struct {
	Columns []string
	Rows    [][]any
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColumnIndex returns the index of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Get returns the cell at (row, column name). Missing columns yield nil.
func (t *Table) Get(row int, column string) any {
	i := t.ColumnIndex(column)
	if i < 0 {
		return nil
	}
	return t.Rows[row][i]
}
