package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/contactimport/internal/database/repository"
	"github.com/jask/contactimport/internal/grid"
	"github.com/jask/contactimport/internal/service"
	"github.com/jask/contactimport/internal/wizard"
)

const (
	submitLabel  = "Continue to Organize"
	loadingLabel = "Creating import..."
	// gridTop is the number of lines above the grid in View.
	gridTop = 3
	// chrome is the number of lines below the grid: gap, three button lines, gap, help.
	chrome = 6
)

type importCreatedMsg struct {
	table  grid.Table
	record repository.ContactImport
	err    error
}

type focusArea int

const (
	focusGrid focusArea = iota
	focusSubmit
)

// CopyPasteStep is the grid editor where contacts are pasted or typed.
type CopyPasteStep struct {
	ctx     context.Context
	creator service.Creator
	drafts  DraftStore
	grid    grid.Model
	help    help.Model
	focus   focusArea
	loading bool
}

func NewCopyPasteStep(ctx context.Context, creator service.Creator, drafts DraftStore, t grid.Table, opts ...grid.Option) *CopyPasteStep {
	return &CopyPasteStep{
		ctx:     ctx,
		creator: creator,
		drafts:  drafts,
		grid:    grid.New(t, opts...),
		help:    help.New(),
	}
}

func (s *CopyPasteStep) Name() string  { return StepCopyPaste }
func (s *CopyPasteStep) Label() string { return "Copy/paste" }

func (s *CopyPasteStep) Grid() grid.Model { return s.grid }
func (s *CopyPasteStep) Loading() bool    { return s.loading }

// Enter loads the inventory table, if any, into the grid.
func (s *CopyPasteStep) Enter(inv wizard.Inventory) tea.Cmd {
	if inv.Table != nil && !inv.Table.Equal(s.grid.Table()) {
		s.grid.SetTable(inv.Table)
	}
	s.focus = focusGrid
	s.grid.Focus()
	return nil
}

// Leave saves the current table as a draft.
func (s *CopyPasteStep) Leave() tea.Cmd {
	if s.drafts == nil {
		return nil
	}
	t := s.grid.Table().Clone()
	ctx, drafts := s.ctx, s.drafts
	return func() tea.Msg {
		if err := drafts.SaveDraft(ctx, t); err != nil {
			return wizard.ErrMsg{Err: fmt.Errorf("save draft: %w", err)}
		}
		return nil
	}
}

func (s *CopyPasteStep) SetSize(width, height int) {
	s.help.Width = width
	s.grid.SetSize(width, max(1, height-gridTop-chrome))
}

// SubmitDisabled reports whether the submit button is inactive.
func (s *CopyPasteStep) SubmitDisabled() bool {
	return s.loading || s.grid.Table().IsEmpty()
}

func (s *CopyPasteStep) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case importCreatedMsg:
		s.loading = false
		if msg.err != nil {
			return wizard.Fail(fmt.Errorf("create contact import: %w", msg.err))
		}
		table, record := msg.table, msg.record
		return tea.Sequence(
			wizard.SetInventory(func(inv wizard.Inventory) wizard.Inventory {
				inv.Table = table
				inv.Import = &record
				return inv
			}),
			wizard.Navigate(StepOrganize),
		)
	case grid.PasteFailedMsg:
		return wizard.Fail(fmt.Errorf("read clipboard: %w", msg.Err))
	case tea.KeyMsg:
		if s.loading {
			return nil
		}
		switch msg.String() {
		case "tab", "shift+tab":
			s.toggleFocus()
			return nil
		case "ctrl+s":
			return s.submit()
		}
		if s.focus == focusSubmit {
			switch msg.String() {
			case "enter", " ":
				return s.submit()
			case "esc", "up":
				s.toggleFocus()
			}
			return nil
		}
	case tea.MouseMsg:
		if s.loading {
			return nil
		}
		msg.Y -= gridTop
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && s.onButton(msg.Y) {
			s.focus = focusSubmit
			s.grid.Blur()
			return s.submit()
		}
		var cmd tea.Cmd
		s.grid, cmd = s.grid.Update(msg)
		if s.grid.Focused() {
			s.focus = focusGrid
		}
		return cmd
	}
	var cmd tea.Cmd
	s.grid, cmd = s.grid.Update(msg)
	return cmd
}

func (s *CopyPasteStep) toggleFocus() {
	if s.focus == focusGrid {
		s.focus = focusSubmit
		s.grid.Blur()
		return
	}
	s.focus = focusGrid
	s.grid.Focus()
}

// onButton reports whether y, relative to the top of the grid, falls on the
// submit button.
func (s *CopyPasteStep) onButton(y int) bool {
	top := lipgloss.Height(s.grid.View()) + 1
	return y >= top && y < top+3
}

func (s *CopyPasteStep) submit() tea.Cmd {
	if s.SubmitDisabled() {
		return nil
	}
	s.loading = true
	table := s.grid.Table().Clone()
	ctx, creator := s.ctx, s.creator
	return func() tea.Msg {
		rec, err := creator.CreateContactImport(ctx, table)
		return importCreatedMsg{table: table, record: rec, err: err}
	}
}

func (s *CopyPasteStep) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Copy and paste your contacts"))
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("Paste rows from a spreadsheet or type into the cells. The first row is the header."))
	b.WriteString("\n\n")
	b.WriteString(s.grid.View())
	b.WriteString("\n\n")
	label := submitLabel
	if s.loading {
		label = loadingLabel
	}
	b.WriteString(renderButton(label, s.focus == focusSubmit, s.SubmitDisabled()))
	b.WriteString("\n\n")
	b.WriteString(s.help.View(s.grid.KeyMap()))
	return b.String()
}
