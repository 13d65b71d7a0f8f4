package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Cell is a single table value. Valid is false for an absent cell,
// mirroring the pgtype convention of a value plus a validity flag.
type Cell struct {
	Value string
	Valid bool
}

// Text returns a present cell holding s.
func Text(s string) Cell {
	return Cell{Value: s, Valid: true}
}

// Null returns an absent cell.
func Null() Cell {
	return Cell{}
}

// String renders the cell for display. Absent cells render as "<null>".
func (c Cell) String() string {
	if !c.Valid {
		return "<null>"
	}
	return c.Value
}

// MarshalJSON encodes absent cells as null and present cells as strings.
func (c Cell) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value)
}

// Column is a named, ordered sequence of cells.
type Column struct {
	Name  string
	Cells []Cell
}

// HeaderIndex maps column names to their position in the table.
// Unlike CSV header matching, lookups are exact: column names are data.
type HeaderIndex map[string]int

// Table is an ordered set of equally long columns. All values are text.
type Table struct {
	columns []Column
	index   HeaderIndex
	rows    int
}

// NewTable builds a table from a header and row-major cells.
// Short rows are padded with absent cells; long rows are an error.
func NewTable(header []string, rows [][]Cell) (*Table, error) {
	t := &Table{
		columns: make([]Column, len(header)),
		index:   make(HeaderIndex, len(header)),
		rows:    len(rows),
	}
	for i, name := range header {
		if _, dup := t.index[name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", name)
		}
		t.index[name] = i
		t.columns[i] = Column{Name: name, Cells: make([]Cell, len(rows))}
	}
	for r, row := range rows {
		if len(row) > len(header) {
			return nil, fmt.Errorf("row %d has %d values, header has %d", r+2, len(row), len(header))
		}
		for c := range row {
			t.columns[c].Cells[r] = row[c]
		}
	}
	return t, nil
}

// NewTableFromColumns builds a table from whole columns.
func NewTableFromColumns(columns ...Column) (*Table, error) {
	t := &Table{
		columns: make([]Column, 0, len(columns)),
		index:   make(HeaderIndex, len(columns)),
	}
	for i, col := range columns {
		if _, dup := t.index[col.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", col.Name)
		}
		if i == 0 {
			t.rows = len(col.Cells)
		} else if len(col.Cells) != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", col.Name, len(col.Cells), t.rows)
		}
		t.index[col.Name] = i
		t.columns = append(t.columns, Column{Name: col.Name, Cells: append([]Cell(nil), col.Cells...)})
	}
	return t, nil
}

// MustTable is NewTableFromColumns for tests and literals; it panics on error.
func MustTable(columns ...Column) *Table {
	t, err := NewTableFromColumns(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// TextColumn builds a column of present cells.
func TextColumn(name string, values ...string) Column {
	cells := make([]Cell, len(values))
	for i, v := range values {
		cells[i] = Text(v)
	}
	return Column{Name: name, Cells: cells}
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	if t == nil {
		return 0
	}
	return t.rows
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	if t == nil {
		return 0
	}
	return len(t.columns)
}

// Empty reports whether the table has no rows or no columns.
func (t *Table) Empty() bool {
	return t.NumRows() == 0 || t.NumColumns() == 0
}

// ColumnNames returns the column names in table order.
func (t *Table) ColumnNames() []string {
	if t == nil {
		return nil
	}
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether a column with the exact name exists.
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.index[name]
	return ok
}

// Column returns the named column's cells. The slice is shared with the table.
func (t *Table) Column(name string) ([]Cell, bool) {
	if t == nil {
		return nil, false
	}
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.columns[i].Cells, true
}

// Columns returns the columns in order. The slice is shared with the table.
func (t *Table) Columns() []Column {
	if t == nil {
		return nil
	}
	return t.columns
}

// Row returns a copy of row r across all columns.
func (t *Table) Row(r int) []Cell {
	row := make([]Cell, len(t.columns))
	for i, c := range t.columns {
		row[i] = c.Cells[r]
	}
	return row
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{
		columns: make([]Column, len(t.columns)),
		index:   make(HeaderIndex, len(t.index)),
		rows:    t.rows,
	}
	for i, c := range t.columns {
		out.columns[i] = Column{Name: c.Name, Cells: append([]Cell(nil), c.Cells...)}
		out.index[c.Name] = i
	}
	return out
}

// mapCells applies fn to every cell in every column, in place.
func (t *Table) mapCells(fn func(Cell) Cell) {
	for i := range t.columns {
		cells := t.columns[i].Cells
		for r := range cells {
			cells[r] = fn(cells[r])
		}
	}
}

// keepRows drops every row whose keep flag is false, preserving order.
func (t *Table) keepRows(keep []bool) {
	n := 0
	for _, k := range keep {
		if k {
			n++
		}
	}
	for i := range t.columns {
		kept := make([]Cell, 0, n)
		for r, c := range t.columns[i].Cells {
			if keep[r] {
				kept = append(kept, c)
			}
		}
		t.columns[i].Cells = kept
	}
	t.rows = n
}

// availableColumns renders column names for error messages.
func availableColumns(names []string) string {
	return strings.Join(names, ", ")
}
