package grid

// State is the complete grid editor state. It is a value; Reduce returns a
// new State and never mutates its input.
type State struct {
	Table    Table
	Selected Cell
	Editing  bool
	// CanNavigate reports whether arrow keys commit an edit and move the
	// selection. It is cleared when editing starts from Enter or a double
	// click so arrows move the input caret instead.
	CanNavigate bool
	// Previous holds the value the selected cell had before the current edit.
	Previous string
}

// NewState returns an idle state with (0,0) selected. A nil or empty table
// is replaced by an empty DefaultRows x DefaultCols table.
func NewState(t Table) State {
	if t.Rows() == 0 || t.Cols() == 0 {
		t = NewTable(DefaultRows, DefaultCols)
	}
	return State{Table: t, CanNavigate: true}
}

// Direction is an arrow-key direction.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

func (d Direction) delta() (int, int) {
	switch d {
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	default:
		return 0, 1
	}
}

// Action is an input to Reduce.
type Action interface{ action() }

// BeginEdit opens the input on a cell (Enter or double click).
type BeginEdit struct {
	At Cell
	// Expand adds a row first when At is a filled cell in the last row.
	Expand bool
}

// TypeChar opens the input on a cell seeded with a typed character.
type TypeChar struct {
	At   Cell
	Char string
}

// SetText replaces the value of the cell being edited.
type SetText struct {
	At    Cell
	Value string
}

// CancelEdit closes the input and restores the pre-edit value.
type CancelEdit struct{}

// ClearCell empties a cell without entering edit mode.
type ClearCell struct{ At Cell }

// Select moves the selection, committing any edit. Out-of-range targets are
// clamped to the table.
type Select struct{ At Cell }

// Navigate moves the selection one cell. Moving past the last row or column
// grows the table when the current cell has content; otherwise the move is
// blocked. A blocked move leaves the state untouched unless Commit is set,
// in which case the edit is committed in place.
type Navigate struct {
	Dir    Direction
	Commit bool
}

// PasteText overlays clipboard text anchored at a cell.
type PasteText struct {
	At   Cell
	Text string
}

func (BeginEdit) action()  {}
func (TypeChar) action()   {}
func (SetText) action()    {}
func (CancelEdit) action() {}
func (ClearCell) action()  {}
func (Select) action()     {}
func (Navigate) action()   {}
func (PasteText) action()  {}

// Reduce applies a to s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case BeginEdit:
		at := s.clamp(a.At)
		if a.Expand && at.Row == s.Table.Rows()-1 && s.Table.Value(at) != "" {
			s.Table = s.Table.Grow(s.Table.Rows()+1, s.Table.Cols())
		}
		s.Selected = at
		s.Editing = true
		s.CanNavigate = false
		s.Previous = s.Table.Value(at)
	case TypeChar:
		at := s.clamp(a.At)
		s.Previous = s.Table.Value(at)
		s.Selected = at
		s.Editing = true
		s.CanNavigate = true
		s.Table = s.Table.With(at, a.Char)
	case SetText:
		at := s.clamp(a.At)
		s.Selected = at
		s.Editing = true
		s.Table = s.Table.With(at, a.Value)
	case CancelEdit:
		if !s.Editing {
			return s
		}
		s.Editing = false
		s.Table = s.Table.With(s.Selected, s.Previous)
	case ClearCell:
		s.Table = s.Table.With(s.clamp(a.At), "")
	case Select:
		s.Selected = s.clamp(a.At)
		s.Editing = false
	case Navigate:
		return s.navigate(a)
	case PasteText:
		block := ParseClipboard(a.Text)
		at := s.clamp(a.At)
		s.Selected = at
		s.Editing = false
		s.Table = Paste(s.Table, at, block)
	}
	return s
}

func (s State) navigate(a Navigate) State {
	dy, dx := a.Dir.delta()
	cur := s.Selected
	next := Cell{Row: cur.Row + dy, Col: cur.Col + dx}
	if next.Row < 0 || next.Col < 0 {
		return s.blocked(a)
	}
	if !s.Table.Contains(next) {
		if s.Table.Value(cur) == "" {
			return s.blocked(a)
		}
		s.Table = s.Table.Grow(max(s.Table.Rows(), next.Row+1), max(s.Table.Cols(), next.Col+1))
	}
	s.Selected = next
	s.Editing = false
	return s
}

func (s State) blocked(a Navigate) State {
	if a.Commit {
		s.Editing = false
	}
	return s
}

func (s State) clamp(c Cell) Cell {
	c.Row = min(max(c.Row, 0), s.Table.Rows()-1)
	c.Col = min(max(c.Col, 0), s.Table.Cols()-1)
	return c
}

// Home returns the top-left cell.
func (s State) Home() Cell { return Cell{} }

// RowEnd returns the last cell of the selected row.
func (s State) RowEnd() Cell {
	return Cell{Row: s.Selected.Row, Col: s.Table.Cols() - 1}
}

// TableEnd returns the bottom-right cell.
func (s State) TableEnd() Cell {
	return Cell{Row: s.Table.Rows() - 1, Col: s.Table.Cols() - 1}
}

// Value returns the selected cell's value.
func (s State) Value() string { return s.Table.Value(s.Selected) }
