package grid

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func keyMsg(k string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m
}

func TestEnterOpensInputAndEscapeReverts(t *testing.T) {
	m := New(NewTable(3, 3).With(Cell{}, "ada"))

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Editing() {
		t.Fatal("expected enter to open the input")
	}
	if m.InputValue() != "ada" {
		t.Fatalf("input = %q, want ada", m.InputValue())
	}

	m = press(t, m, keyMsg("x"), keyMsg("y"))
	if got := m.Table().Value(Cell{}); got != "adaxy" {
		t.Fatalf("cell = %q, want adaxy", got)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Editing() {
		t.Fatal("expected escape to close the input")
	}
	if got := m.Table().Value(Cell{}); got != "ada" {
		t.Fatalf("cell = %q, want ada", got)
	}
}

func TestTypingOnButtonSeedsInput(t *testing.T) {
	m := New(nil)
	m = press(t, m, keyMsg("J"), keyMsg("o"))

	if !m.Editing() {
		t.Fatal("expected typing to open the input")
	}
	if got := m.Table().Value(Cell{}); got != "Jo" {
		t.Fatalf("cell = %q, want Jo", got)
	}

	// arrows commit when editing started by typing
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if m.Editing() || m.Selected() != (Cell{Col: 1}) {
		t.Fatalf("editing=%v selected=%v", m.Editing(), m.Selected())
	}
	if got := m.Table().Value(Cell{}); got != "Jo" {
		t.Fatalf("committed cell = %q", got)
	}
}

func TestArrowsStayInInputAfterEnter(t *testing.T) {
	m := New(NewTable(3, 3).With(Cell{Row: 1, Col: 1}, "abc"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyEnter})

	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft}, tea.KeyMsg{Type: tea.KeyUp})
	if !m.Editing() || m.Selected() != (Cell{Row: 1, Col: 1}) {
		t.Fatalf("editing=%v selected=%v", m.Editing(), m.Selected())
	}

	// enter commits and moves down
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Editing() || m.Selected() != (Cell{Row: 2, Col: 1}) {
		t.Fatalf("editing=%v selected=%v", m.Editing(), m.Selected())
	}
}

func TestEnterOnLastRowGrowsWhenCellHasContent(t *testing.T) {
	m := New(NewTable(2, 2))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, keyMsg("z"), tea.KeyMsg{Type: tea.KeyEnter})

	if m.Table().Rows() != 3 {
		t.Fatalf("rows = %d, want 3", m.Table().Rows())
	}
	if m.Selected() != (Cell{Row: 2}) {
		t.Fatalf("selected = %v", m.Selected())
	}
}

func TestDeleteClearsWithoutEditing(t *testing.T) {
	m := New(NewTable(2, 2).With(Cell{}, "x").With(Cell{Col: 1}, "y"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDelete})
	if m.Editing() || m.Table().Value(Cell{}) != "" {
		t.Fatalf("editing=%v value=%q", m.Editing(), m.Table().Value(Cell{}))
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyBackspace})
	if m.Table().Value(Cell{Col: 1}) != "" {
		t.Fatal("backspace should clear the cell")
	}
}

func TestHomeAndEndJumps(t *testing.T) {
	m := New(NewTable(4, 5))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnd})
	if m.Selected() != (Cell{Row: 1, Col: 4}) {
		t.Fatalf("end -> %v", m.Selected())
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlEnd})
	if m.Selected() != (Cell{Row: 3, Col: 4}) {
		t.Fatalf("ctrl+end -> %v", m.Selected())
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyHome})
	if m.Selected() != (Cell{}) {
		t.Fatalf("home -> %v", m.Selected())
	}
}

func TestBracketedPaste(t *testing.T) {
	m := New(nil)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a\tb\nc\td"), Paste: true})

	if m.Editing() {
		t.Fatal("paste should leave edit mode")
	}
	tbl := m.Table()
	if tbl.Rows() != DefaultRows || tbl.Cols() != DefaultCols {
		t.Fatalf("size = %dx%d", tbl.Rows(), tbl.Cols())
	}
	if tbl[0][0] != "a" || tbl[0][1] != "b" || tbl[1][0] != "c" || tbl[1][1] != "d" {
		t.Fatalf("table = %v", tbl)
	}
}

func TestClipboardPaste(t *testing.T) {
	m := New(nil, WithClipboard(func() (string, error) {
		return strings.Repeat("x\n", 12), nil
	}))

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlV})
	if cmd == nil {
		t.Fatal("expected clipboard command")
	}
	msg, ok := cmd().(ClipboardMsg)
	if !ok {
		t.Fatalf("expected ClipboardMsg, got %T", cmd())
	}
	next, _ = next.Update(msg)
	if next.Table().Rows() < 12 {
		t.Fatalf("rows = %d, want >= 12", next.Table().Rows())
	}
}

func TestClipboardPasteFailure(t *testing.T) {
	boom := errors.New("no clipboard")
	m := New(nil, WithClipboard(func() (string, error) { return "", boom }))

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlV})
	failed, ok := cmd().(PasteFailedMsg)
	if !ok {
		t.Fatalf("expected PasteFailedMsg, got %T", cmd())
	}
	if !errors.Is(failed.Err, boom) {
		t.Fatalf("err = %v", failed.Err)
	}
}

func TestMouseClickAndDoubleClick(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := New(NewTable(3, 3).With(Cell{Row: 1, Col: 1}, "v"), WithClock(func() time.Time { return now }))

	click := tea.MouseMsg{X: rowLabelWidth + defaultCellWidth + 2, Y: 1, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress}
	m = press(t, m, click)
	if m.Selected() != (Cell{Row: 1, Col: 1}) || m.Editing() {
		t.Fatalf("selected=%v editing=%v", m.Selected(), m.Editing())
	}

	now = now.Add(100 * time.Millisecond)
	m = press(t, m, click)
	if !m.Editing() {
		t.Fatal("expected double click to open the input")
	}

	// a click elsewhere commits and selects
	now = now.Add(time.Second)
	m = press(t, m, tea.MouseMsg{X: rowLabelWidth, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if m.Editing() || m.Selected() != (Cell{}) {
		t.Fatalf("selected=%v editing=%v", m.Selected(), m.Editing())
	}
}

func TestSlowSecondClickIsNotDoubleClick(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := New(nil, WithClock(func() time.Time { return now }), WithDoubleClick(200*time.Millisecond))
	click := tea.MouseMsg{X: rowLabelWidth, Y: 2, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress}

	m = press(t, m, click)
	now = now.Add(time.Second)
	m = press(t, m, click)
	if m.Editing() {
		t.Fatal("slow clicks must not open the input")
	}
}

func TestBlurCommitsEdit(t *testing.T) {
	m := New(nil)
	m = press(t, m, keyMsg("a"))
	m.Blur()
	if m.Editing() || m.Focused() {
		t.Fatalf("editing=%v focused=%v", m.Editing(), m.Focused())
	}
	if m.Table().Value(Cell{}) != "a" {
		t.Fatal("blur should keep the edited value")
	}
	m = press(t, m, keyMsg("b"))
	if m.Editing() {
		t.Fatal("blurred grid should ignore keys")
	}
}

func TestViewScrollsToSelection(t *testing.T) {
	m := New(NewTable(30, 2).With(Cell{Row: 29}, "bottom"))
	m.SetSize(40, 5)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlEnd})

	view := m.View()
	if !strings.Contains(view, "bottom") {
		t.Fatalf("view does not show selected row:\n%s", view)
	}
	if lines := strings.Count(view, "\n") + 1; lines != 5 {
		t.Fatalf("view lines = %d, want 5", lines)
	}
	if strings.Contains(view, " 1 ") {
		t.Fatal("top rows should be scrolled out")
	}
}

func TestEditKeepsNewlinesAndTabs(t *testing.T) {
	m := New(NewTable(2, 2).With(Cell{}, "line1\nline2").With(Cell{Col: 1}, "a\tb"))

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter}, keyMsg("x"))
	if got := m.Table().Value(Cell{}); got != "line1\nline2x" {
		t.Fatalf("cell = %q, want the newline kept", got)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter}, tea.KeyMsg{Type: tea.KeyUp}, tea.KeyMsg{Type: tea.KeyRight})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter}, tea.KeyMsg{Type: tea.KeyBackspace})
	if got := m.Table().Value(Cell{Col: 1}); got != "a\t" {
		t.Fatalf("cell = %q, want %q", got, "a\t")
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if lines := strings.Count(m.View(), "\n") + 1; lines != 2 {
		t.Fatalf("view lines = %d, want one per row", lines)
	}
}

func TestSplice(t *testing.T) {
	tests := []struct {
		raw, shown, typed, want string
	}{
		{"abc", "abc", "abxc", "abxc"},
		{"a\nb", "a b", "a bc", "a\nbc"},
		{"a\nb", "a b", "xa b", "xa\nb"},
		{"a\r\nb", "a  b", "a  Xb", "a\r\nXb"},
		{"a\tb", "a b", "ab", "ab"},
		{"a\x00b", "ab", "aZb", "a\x00Zb"},
		{"one\ntwo", "one two", "", ""},
	}
	for _, tt := range tests {
		if got := splice(tt.raw, tt.shown, tt.typed); got != tt.want {
			t.Errorf("splice(%q, %q, %q) = %q, want %q", tt.raw, tt.shown, tt.typed, got, tt.want)
		}
	}
}

func TestEnterOnFilledLastRowGrowsBeforeEditing(t *testing.T) {
	m := New(NewTable(2, 2).With(Cell{Row: 1}, "x"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})

	if !m.Editing() || m.Selected() != (Cell{Row: 1}) {
		t.Fatalf("editing=%v selected=%v", m.Editing(), m.Selected())
	}
	if m.Table().Rows() != 3 {
		t.Fatalf("rows = %d, want 3", m.Table().Rows())
	}

	empty := New(NewTable(2, 2))
	empty = press(t, empty, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
	if empty.Table().Rows() != 2 {
		t.Fatalf("rows = %d, empty cell should not grow", empty.Table().Rows())
	}
}

func TestSpaceOpensInputWithoutSeeding(t *testing.T) {
	m := New(NewTable(2, 2).With(Cell{}, "ada"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})

	if !m.Editing() {
		t.Fatal("expected space to open the input")
	}
	if got := m.Table().Value(Cell{}); got != "ada" {
		t.Fatalf("cell = %q, want ada", got)
	}
}
