package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/xuri/excelize/v2"

	"github.com/jask/contactimport/internal/database/repository"
	"github.com/jask/contactimport/internal/service"
	"github.com/jask/contactimport/internal/wizard"
)

const (
	columnWidth = 18
	sampleRows  = 3
)

// errNoImport is reported when a step that needs an import record is
// entered without one.
var errNoImport = errors.New("no contact import yet: submit the grid first")

type organizedMsg struct {
	record      repository.ContactImport
	err         error
	rememberErr error
}

// MappingMemory keeps confirmed header choices between runs.
type MappingMemory interface {
	Load() (map[string]string, error)
	Remember(header, mapping []string) error
}

var (
	columnStyle       = lipgloss.NewStyle().Width(columnWidth).Padding(0, 1)
	activeColumnStyle = columnStyle.Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("4"))
	fieldStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	skipStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// OrganizeStep maps each column of the import to a contact field.
type OrganizeStep struct {
	ctx       context.Context
	importer  service.Importer
	memory    MappingMemory
	record    *repository.ContactImport
	mapping   []string
	hasHeader bool
	cursor    int
	loading   bool
	width     int
}

func NewOrganizeStep(ctx context.Context, importer service.Importer, memory MappingMemory) *OrganizeStep {
	return &OrganizeStep{ctx: ctx, importer: importer, memory: memory}
}

func (s *OrganizeStep) Name() string  { return StepOrganize }
func (s *OrganizeStep) Label() string { return "Organize" }

func (s *OrganizeStep) Mapping() []string { return append([]string(nil), s.mapping...) }
func (s *OrganizeStep) HasHeader() bool   { return s.hasHeader }

// Enter guesses a mapping from the first row unless the record already
// carries one. Remembered choices take precedence over fuzzy matches.
func (s *OrganizeStep) Enter(inv wizard.Inventory) tea.Cmd {
	s.loading = false
	s.record = inv.Import
	s.cursor = 0
	if s.record == nil {
		s.mapping = nil
		return wizard.Fail(errNoImport)
	}
	cols := s.record.Cols()
	if len(s.record.Mapping) == cols {
		s.mapping = append([]string(nil), s.record.Mapping...)
		s.hasHeader = s.record.HasHeader
		return nil
	}
	s.mapping = make([]string, cols)
	for i := range s.mapping {
		s.mapping[i] = service.FieldSkip
	}
	s.hasHeader = false
	var learned map[string]string
	var cmd tea.Cmd
	if s.memory != nil {
		var err error
		if learned, err = s.memory.Load(); err != nil {
			cmd = wizard.Fail(fmt.Errorf("load remembered mappings: %w", err))
		}
	}
	if len(s.record.Table) > 0 {
		guess := service.GuessMappingLearned(s.record.Table[0], learned)
		for _, f := range guess {
			if f != service.FieldSkip {
				s.hasHeader = true
				break
			}
		}
		if s.hasHeader {
			copy(s.mapping, guess)
		}
	}
	return cmd
}

func (s *OrganizeStep) SetSize(width, _ int) { s.width = width }

func (s *OrganizeStep) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case organizedMsg:
		s.loading = false
		if msg.err != nil {
			return wizard.Fail(fmt.Errorf("organize import: %w", msg.err))
		}
		rec := msg.record
		cmds := []tea.Cmd{
			wizard.SetInventory(func(inv wizard.Inventory) wizard.Inventory {
				inv.Import = &rec
				return inv
			}),
			wizard.Navigate(StepReview),
		}
		if msg.rememberErr != nil {
			cmds = append(cmds, wizard.Fail(fmt.Errorf("remember mapping: %w", msg.rememberErr)))
		}
		return tea.Sequence(cmds...)
	case tea.KeyMsg:
		if s.loading {
			return nil
		}
		if msg.String() == "esc" {
			return wizard.Navigate(StepCopyPaste)
		}
		if s.record == nil {
			return nil
		}
		switch msg.String() {
		case "left", "h":
			s.cursor = max(0, s.cursor-1)
		case "right", "l":
			s.cursor = min(len(s.mapping)-1, s.cursor+1)
		case "up", "k":
			s.cycle(-1)
		case "down", "j":
			s.cycle(1)
		case "t":
			s.hasHeader = !s.hasHeader
		case "enter":
			return s.confirm()
		}
	}
	return nil
}

// cycle moves the field of the current column, skipping fields already used
// by another column.
func (s *OrganizeStep) cycle(delta int) {
	if len(s.mapping) == 0 {
		return
	}
	used := map[string]bool{}
	for i, f := range s.mapping {
		if i != s.cursor && f != service.FieldSkip {
			used[f] = true
		}
	}
	n := len(service.Fields)
	at := fieldIndex(s.mapping[s.cursor])
	for i := 0; i < n; i++ {
		at = ((at+delta)%n + n) % n
		if f := service.Fields[at]; !used[f] {
			s.mapping[s.cursor] = f
			return
		}
	}
}

func fieldIndex(f string) int {
	for i, known := range service.Fields {
		if known == f {
			return i
		}
	}
	return 0
}

func (s *OrganizeStep) confirm() tea.Cmd {
	if err := service.ValidateMapping(s.mapping, s.record.Cols()); err != nil {
		return wizard.Fail(err)
	}
	s.loading = true
	ctx, importer, memory := s.ctx, s.importer, s.memory
	id, mapping, header := s.record.ID, s.Mapping(), s.hasHeader
	var headerRow []string
	if header && len(s.record.Table) > 0 {
		headerRow = append(headerRow, s.record.Table[0]...)
	}
	return func() tea.Msg {
		rec, err := importer.Organize(ctx, id, mapping, header)
		msg := organizedMsg{record: rec, err: err}
		if err == nil && memory != nil && headerRow != nil {
			msg.rememberErr = memory.Remember(headerRow, mapping)
		}
		return msg
	}
}

func (s *OrganizeStep) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Organize your columns"))
	b.WriteString("\n\n")
	if s.record == nil {
		b.WriteString(hintStyle.Render("[esc] Back"))
		return b.String()
	}

	cols := make([]string, 0, len(s.mapping))
	visible := len(s.mapping)
	if s.width > 0 {
		visible = max(1, s.width/(columnWidth+1))
	}
	first := max(0, min(s.cursor-visible+1, len(s.mapping)-visible))
	for i := first; i < len(s.mapping) && i < first+visible; i++ {
		cols = append(cols, s.renderColumn(i))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cols...))
	b.WriteString("\n\n")

	header := "no"
	if s.hasHeader {
		header = "yes"
	}
	b.WriteString(fmt.Sprintf("First row is a header: %s\n", header))
	if s.loading {
		b.WriteString(hintStyle.Render("saving..."))
	} else {
		b.WriteString(hintStyle.Render("[←/→] Column  [↑/↓] Field  [t] Toggle header  [enter] Continue  [esc] Back"))
	}
	return b.String()
}

func (s *OrganizeStep) renderColumn(i int) string {
	name, _ := excelize.ColumnNumberToName(i + 1)
	lines := []string{"Column " + name}

	field := s.mapping[i]
	if field == service.FieldSkip {
		lines = append(lines, skipStyle.Render("(skip)"))
	} else {
		lines = append(lines, fieldStyle.Render(field))
	}
	lines = append(lines, strings.Repeat("─", columnWidth-2))

	start := 0
	if s.hasHeader {
		start = 1
		lines[0] += " " + hintStyle.Render(truncate(cellAt(s.record.Table, 0, i), columnWidth-10))
	}
	for y := start; y < len(s.record.Table) && y < start+sampleRows; y++ {
		lines = append(lines, truncate(cellAt(s.record.Table, y, i), columnWidth-2))
	}

	style := columnStyle
	if i == s.cursor {
		style = activeColumnStyle
	}
	return style.Render(strings.Join(lines, "\n"))
}

func cellAt(t [][]string, row, col int) string {
	if row < 0 || row >= len(t) || col < 0 || col >= len(t[row]) {
		return ""
	}
	return t[row][col]
}

func truncate(s string, w int) string {
	return runewidth.Truncate(s, max(1, w), "…")
}
