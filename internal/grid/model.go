package grid

import (
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	defaultCellWidth   = 14
	defaultDoubleClick = 400 * time.Millisecond
	rowLabelWidth      = 4
)

// ClipboardMsg carries text read from the system clipboard for a paste
// anchored at At.
type ClipboardMsg struct {
	At   Cell
	Text string
}

// PasteFailedMsg reports a clipboard read failure.
type PasteFailedMsg struct{ Err error }

// Model is the grid widget. Each cell renders as a focusable "button"; the
// selected cell turns into a text input while editing.
type Model struct {
	state State
	input textinput.Model
	keys  KeyMap

	// raw is the cell value behind the input and shown its single-line
	// rendering, which differs when the cell holds tabs or newlines.
	raw, shown string

	focused     bool
	cellWidth   int
	doubleClick time.Duration
	lastClick   Cell
	lastClickAt time.Time

	width, height    int
	scrollY, scrollX int

	now           func() time.Time
	readClipboard func() (string, error)
}

// Option configures a Model.
type Option func(*Model)

// WithCellWidth sets the rendered width of each cell.
func WithCellWidth(w int) Option {
	return func(m *Model) {
		if w > 2 {
			m.cellWidth = w
		}
	}
}

// WithDoubleClick sets the maximum delay between two clicks on the same
// cell for them to count as a double click.
func WithDoubleClick(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.doubleClick = d
		}
	}
}

// WithClock replaces time.Now, used for double-click detection.
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// WithClipboard replaces the system clipboard reader used by ctrl+v.
func WithClipboard(read func() (string, error)) Option {
	return func(m *Model) { m.readClipboard = read }
}

// New returns a focused grid over t. An empty t is replaced by a
// DefaultRows x DefaultCols table.
func New(t Table, opts ...Option) Model {
	in := textinput.New()
	in.Prompt = ""
	m := Model{
		state:         NewState(t),
		input:         in,
		keys:          DefaultKeyMap(),
		focused:       true,
		cellWidth:     defaultCellWidth,
		doubleClick:   defaultDoubleClick,
		now:           time.Now,
		readClipboard: clipboard.ReadAll,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.input.Width = m.cellWidth - 1
	return m
}

func (m Model) State() State { return m.state }
func (m Model) Table() Table { return m.state.Table }
func (m Model) Selected() Cell { return m.state.Selected }
func (m Model) Editing() bool { return m.state.Editing }
func (m Model) Focused() bool { return m.focused }
func (m Model) KeyMap() KeyMap { return m.keys }
func (m Model) InputValue() string { return m.input.Value() }

// Focus gives the grid keyboard focus.
func (m *Model) Focus() { m.focused = true }

// Blur removes keyboard focus, committing any edit in place.
func (m *Model) Blur() {
	m.focused = false
	if m.state.Editing {
		m.dispatch(Select{At: m.state.Selected})
	}
}

// SetSize sets the area available to View.
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
	m.ensureVisible()
}

// SetTable replaces the table and resets the selection.
func (m *Model) SetTable(t Table) {
	m.state = NewState(t)
	m.scrollX, m.scrollY = 0, 0
	m.input.Blur()
}

// dispatch applies an action and keeps the text input in sync with the
// resulting state.
func (m *Model) dispatch(a Action) tea.Cmd {
	before := m.state
	m.state = Reduce(m.state, a)
	m.ensureVisible()
	if !m.state.Editing {
		m.input.Blur()
		return nil
	}
	if !before.Editing || before.Selected != m.state.Selected || m.raw != m.state.Value() {
		m.raw = m.state.Value()
		m.input.SetValue(m.raw)
		m.input.CursorEnd()
		m.shown = m.input.Value()
	}
	if !m.input.Focused() {
		return m.input.Focus()
	}
	return nil
}

// Update handles key, mouse and clipboard messages. Mouse coordinates are
// relative to the top-left corner of View.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ClipboardMsg:
		return m, m.dispatch(PasteText{At: msg.At, Text: msg.Text})
	case tea.MouseMsg:
		return m.handleMouse(msg)
	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		if msg.Paste {
			return m, m.dispatch(PasteText{At: m.state.Selected, Text: string(msg.Runes)})
		}
		if key.Matches(msg, m.keys.Paste) {
			return m, m.pasteFromClipboard()
		}
		if m.state.Editing {
			return m.handleInputKey(msg)
		}
		return m.handleButtonKey(msg)
	}
	if m.state.Editing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) pasteFromClipboard() tea.Cmd {
	at := m.state.Selected
	read := m.readClipboard
	return func() tea.Msg {
		text, err := read()
		if err != nil {
			return PasteFailedMsg{Err: err}
		}
		return ClipboardMsg{At: at, Text: text}
	}
}

func (m Model) handleInputKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Edit):
		return m, m.dispatch(Navigate{Dir: Down, Commit: true})
	case key.Matches(msg, m.keys.Cancel):
		return m, m.dispatch(CancelEdit{})
	}
	if m.state.CanNavigate {
		if dir, ok := m.arrow(msg); ok {
			return m, m.dispatch(Navigate{Dir: dir})
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != m.shown {
		m.raw = splice(m.raw, m.shown, v)
		m.shown = v
		m.dispatch(SetText{At: m.state.Selected, Value: m.raw})
	}
	return m, cmd
}

func (m Model) handleButtonKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	at := m.state.Selected
	if dir, ok := m.arrow(msg); ok {
		return m, m.dispatch(Navigate{Dir: dir})
	}
	switch {
	case key.Matches(msg, m.keys.Edit):
		return m, m.dispatch(BeginEdit{At: at, Expand: true})
	case key.Matches(msg, m.keys.Clear):
		return m, m.dispatch(ClearCell{At: at})
	case key.Matches(msg, m.keys.Home):
		return m, m.dispatch(Select{At: m.state.Home()})
	case key.Matches(msg, m.keys.TableEnd):
		return m, m.dispatch(Select{At: m.state.TableEnd()})
	case key.Matches(msg, m.keys.RowEnd):
		return m, m.dispatch(Select{At: m.state.RowEnd()})
	}
	if r, ok := singleRune(msg); ok {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return m, m.dispatch(TypeChar{At: at, Char: string(r)})
		}
		if unicode.IsPrint(r) {
			return m, m.dispatch(BeginEdit{At: at})
		}
	}
	return m, nil
}

func (m Model) arrow(msg tea.KeyMsg) (Direction, bool) {
	switch {
	case key.Matches(msg, m.keys.Up):
		return Up, true
	case key.Matches(msg, m.keys.Down):
		return Down, true
	case key.Matches(msg, m.keys.Left):
		return Left, true
	case key.Matches(msg, m.keys.Right):
		return Right, true
	}
	return 0, false
}

func singleRune(msg tea.KeyMsg) (rune, bool) {
	if msg.Type == tea.KeySpace && !msg.Alt {
		return ' ', true
	}
	if msg.Type != tea.KeyRunes || msg.Alt || len(msg.Runes) != 1 {
		return 0, false
	}
	return msg.Runes[0], true
}

func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	c, ok := m.CellAt(msg.X, msg.Y)
	if !ok {
		return m, nil
	}
	m.focused = true
	now := m.now()
	double := c == m.lastClick && !m.lastClickAt.IsZero() && now.Sub(m.lastClickAt) <= m.doubleClick
	m.lastClick, m.lastClickAt = c, now
	if double {
		m.lastClickAt = time.Time{}
		if m.state.Editing && m.state.Selected == c {
			return m, nil
		}
		return m, m.dispatch(BeginEdit{At: c})
	}
	if m.state.Editing && m.state.Selected == c {
		return m, nil
	}
	return m, m.dispatch(Select{At: c})
}

// CellAt maps a position inside View to a cell.
func (m Model) CellAt(x, y int) (Cell, bool) {
	if x < rowLabelWidth || y < 0 {
		return Cell{}, false
	}
	c := Cell{
		Row: m.scrollY + y,
		Col: m.scrollX + (x-rowLabelWidth)/(m.cellWidth+1),
	}
	if !m.state.Table.Contains(c) {
		return Cell{}, false
	}
	return c, true
}

func (m Model) visibleRows() int {
	if m.height <= 0 {
		return m.state.Table.Rows()
	}
	return m.height
}

func (m Model) visibleCols() int {
	if m.width <= 0 {
		return m.state.Table.Cols()
	}
	return max(1, (m.width-rowLabelWidth)/(m.cellWidth+1))
}

func (m *Model) ensureVisible() {
	sel := m.state.Selected
	rows, cols := m.visibleRows(), m.visibleCols()
	if sel.Row < m.scrollY {
		m.scrollY = sel.Row
	}
	if sel.Row >= m.scrollY+rows {
		m.scrollY = sel.Row - rows + 1
	}
	if sel.Col < m.scrollX {
		m.scrollX = sel.Col
	}
	if sel.Col >= m.scrollX+cols {
		m.scrollX = sel.Col - cols + 1
	}
}

// splice applies the difference between shown and typed to raw. shown is
// raw as the single-line input renders it: tabs and newlines become one
// space each and other control runes are dropped.
func splice(raw, shown, typed string) string {
	r, s, t := []rune(raw), []rune(shown), []rune(typed)
	p := 0
	for p < len(s) && p < len(t) && s[p] == t[p] {
		p++
	}
	q := 0
	for q < len(s)-p && q < len(t)-p && s[len(s)-1-q] == t[len(t)-1-q] {
		q++
	}
	start, seen := 0, 0
	for start < len(r) && seen+inputWidth(r[start]) <= p {
		seen += inputWidth(r[start])
		start++
	}
	end, tail := len(r), 0
	for end > start && tail < q {
		tail += inputWidth(r[end-1])
		end--
	}
	out := make([]rune, 0, start+len(t)-p-q+len(r)-end)
	out = append(out, r[:start]...)
	out = append(out, t[p:len(t)-q]...)
	return string(append(out, r[end:]...))
}

func inputWidth(r rune) int {
	switch {
	case r == utf8.RuneError:
		return 0
	case r == '\t' || r == '\n' || r == '\r':
		return 1
	case unicode.IsControl(r):
		return 0
	}
	return 1
}
