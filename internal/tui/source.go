package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/contactimport/internal/grid"
	"github.com/jask/contactimport/internal/wizard"
)

const SourcePaste = "paste"

type fileLoadedMsg struct {
	path  string
	table grid.Table
	err   error
}

// SourceStep chooses between pasting contacts and loading a file.
type SourceStep struct {
	load     func(string) (grid.Table, error)
	cursor   int
	choosing bool
	path     textinput.Model
	loading  bool
}

var sourceChoices = []string{"Paste or type contacts into a grid", "Load a .csv, .tsv or .xlsx file"}

func NewSourceStep(load func(string) (grid.Table, error)) *SourceStep {
	in := textinput.New()
	in.Placeholder = "path/to/contacts.csv"
	in.Prompt = "file: "
	in.Width = 60
	return &SourceStep{load: load, choosing: true, path: in}
}

func (s *SourceStep) Name() string  { return StepSource }
func (s *SourceStep) Label() string { return "Source" }

func (s *SourceStep) Enter(inv wizard.Inventory) tea.Cmd {
	s.choosing = true
	s.loading = false
	s.path.Blur()
	if inv.Source != "" && inv.Source != SourcePaste {
		s.path.SetValue(inv.Source)
	}
	return nil
}

func (s *SourceStep) SetSize(width, _ int) {
	s.path.Width = max(20, width-len(s.path.Prompt)-2)
}

func (s *SourceStep) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case fileLoadedMsg:
		s.loading = false
		if msg.err != nil {
			return wizard.Fail(fmt.Errorf("load %s: %w", msg.path, msg.err))
		}
		return tea.Sequence(
			wizard.SetInventory(func(inv wizard.Inventory) wizard.Inventory {
				inv.Table = msg.table
				inv.Source = msg.path
				inv.Import = nil
				return inv
			}),
			wizard.Navigate(StepCopyPaste),
		)
	case tea.KeyMsg:
		if s.loading {
			return nil
		}
		if s.choosing {
			return s.handleChoice(msg)
		}
		return s.handlePath(msg)
	}
	if !s.choosing {
		var cmd tea.Cmd
		s.path, cmd = s.path.Update(msg)
		return cmd
	}
	return nil
}

func (s *SourceStep) handleChoice(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		s.cursor = max(0, s.cursor-1)
	case "down", "j":
		s.cursor = min(len(sourceChoices)-1, s.cursor+1)
	case "enter":
		if s.cursor == 1 {
			s.choosing = false
			return s.path.Focus()
		}
		return tea.Sequence(
			wizard.SetInventory(func(inv wizard.Inventory) wizard.Inventory {
				inv.Source = SourcePaste
				return inv
			}),
			wizard.Navigate(StepCopyPaste),
		)
	}
	return nil
}

func (s *SourceStep) handlePath(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		s.choosing = true
		s.path.Blur()
		return nil
	case "enter":
		path := strings.TrimSpace(s.path.Value())
		if path == "" {
			return nil
		}
		s.loading = true
		load := s.load
		return func() tea.Msg {
			t, err := load(path)
			return fileLoadedMsg{path: path, table: t, err: err}
		}
	}
	var cmd tea.Cmd
	s.path, cmd = s.path.Update(msg)
	return cmd
}

func (s *SourceStep) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Where are your contacts?"))
	b.WriteString("\n\n")
	for i, c := range sourceChoices {
		marker := " "
		if i == s.cursor {
			marker = "▶"
		}
		line := fmt.Sprintf("%s %s", marker, c)
		if i == s.cursor && s.choosing {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	if !s.choosing {
		b.WriteString("\n" + s.path.View() + "\n")
		if s.loading {
			b.WriteString(hintStyle.Render("loading..."))
		} else {
			b.WriteString(hintStyle.Render("[enter] Load  [esc] Back"))
		}
		return b.String()
	}
	b.WriteString("\n" + hintStyle.Render("[↑/↓] Choose  [enter] Continue"))
	return b.String()
}
