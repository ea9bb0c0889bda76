package results

import "fmt"

// Frame is an ordered column-named table of float64 rows. Column order is
// fixed at construction and stable across save/load.
type Frame struct {
	Columns []string
	Rows    [][]float64
}

// NewFrame creates an empty frame with the given column layout.
func NewFrame(columns []string) *Frame {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Frame{Columns: cols}
}

// Len returns the row count.
func (f *Frame) Len() int { return len(f.Rows) }

// Append adds one row, which must match the column count.
func (f *Frame) Append(row []float64) error {
	if len(row) != len(f.Columns) {
		return fmt.Errorf("frame: row has %d values, frame has %d columns", len(row), len(f.Columns))
	}
	f.Rows = append(f.Rows, row)
	return nil
}

// ColumnIndex returns the position of the named column.
func (f *Frame) ColumnIndex(name string) (int, bool) {
	for i, col := range f.Columns {
		if col == name {
			return i, true
		}
	}
	return 0, false
}

// Column returns a copy of the named column's values.
func (f *Frame) Column(name string) ([]float64, bool) {
	idx, ok := f.ColumnIndex(name)
	if !ok {
		return nil, false
	}
	out := make([]float64, len(f.Rows))
	for i, row := range f.Rows {
		out[i] = row[idx]
	}
	return out, true
}

// SetColumn overwrites the named column in place.
func (f *Frame) SetColumn(name string, values []float64) error {
	idx, ok := f.ColumnIndex(name)
	if !ok {
		return fmt.Errorf("frame: no column %q", name)
	}
	if len(values) != len(f.Rows) {
		return fmt.Errorf("frame: %d values for %d rows", len(values), len(f.Rows))
	}
	for i := range f.Rows {
		f.Rows[i][idx] = values[i]
	}
	return nil
}
