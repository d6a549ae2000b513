package grid

import "strings"

// DefaultRows and DefaultCols are the bootstrap size of a new grid.
const (
	DefaultRows = 10
	DefaultCols = 5
)

// Table is a rectangular grid of text cells indexed [row][col].
// Methods never mutate the receiver; edits return a new Table.
type Table [][]string

// Cell is a (row, col) coordinate.
type Cell struct {
	Row int
	Col int
}

// NewTable returns an empty rows x cols table. Sizes below 1 are raised to 1.
func NewTable(rows, cols int) Table {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	t := make(Table, rows)
	for y := range t {
		t[y] = make([]string, cols)
	}
	return t
}

// FromRows builds a rectangular table from possibly ragged rows, padding
// short rows with empty cells. A nil or empty input yields a 1x1 table.
func FromRows(rows [][]string) Table {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}
	t := NewTable(len(rows), width)
	for y, r := range rows {
		copy(t[y], r)
	}
	return t
}

func (t Table) Rows() int { return len(t) }

func (t Table) Cols() int {
	if len(t) == 0 {
		return 0
	}
	return len(t[0])
}

// Contains reports whether c lies inside the table.
func (t Table) Contains(c Cell) bool {
	return c.Row >= 0 && c.Row < t.Rows() && c.Col >= 0 && c.Col < t.Cols()
}

// Value returns the cell value, or "" when c is out of bounds.
func (t Table) Value(c Cell) string {
	if !t.Contains(c) {
		return ""
	}
	return t[c.Row][c.Col]
}

// With returns a copy of t with the cell at c set to v. Only the touched row
// is reallocated; other rows are shared with t.
func (t Table) With(c Cell, v string) Table {
	if !t.Contains(c) {
		return t
	}
	out := make(Table, len(t))
	copy(out, t)
	row := make([]string, len(t[c.Row]))
	copy(row, t[c.Row])
	row[c.Col] = v
	out[c.Row] = row
	return out
}

// Grow returns a table with at least rows x cols cells, keeping every
// existing value at its coordinate. New cells are empty.
func (t Table) Grow(rows, cols int) Table {
	if rows < t.Rows() {
		rows = t.Rows()
	}
	if cols < t.Cols() {
		cols = t.Cols()
	}
	out := NewTable(rows, cols)
	for y, r := range t {
		copy(out[y], r)
	}
	return out
}

// Clone returns a deep copy.
func (t Table) Clone() Table {
	return t.Grow(t.Rows(), t.Cols())
}

// IsEmpty reports whether every cell is the empty string.
func (t Table) IsEmpty() bool {
	for _, r := range t {
		for _, v := range r {
			if v != "" {
				return false
			}
		}
	}
	return true
}

// Trimmed drops trailing rows and columns that hold only empty or
// whitespace cells. The result has at least one cell.
func (t Table) Trimmed() Table {
	lastRow, lastCol := -1, -1
	for y, r := range t {
		for x, v := range r {
			if strings.TrimSpace(v) == "" {
				continue
			}
			if y > lastRow {
				lastRow = y
			}
			if x > lastCol {
				lastCol = x
			}
		}
	}
	out := NewTable(lastRow+1, lastCol+1)
	for y := range out {
		if y >= t.Rows() {
			break
		}
		copy(out[y], t[y])
	}
	return out
}

// Equal reports whether both tables have the same shape and values.
func (t Table) Equal(o Table) bool {
	if t.Rows() != o.Rows() || t.Cols() != o.Cols() {
		return false
	}
	for y := range t {
		for x := range t[y] {
			if t[y][x] != o[y][x] {
				return false
			}
		}
	}
	return true
}
