package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/contactimport/internal/database/repository"
	"github.com/jask/contactimport/internal/service"
	"github.com/jask/contactimport/internal/wizard"
)

type completedMsg struct {
	record repository.ContactImport
	err    error
}

// ReviewStep shows what the import will produce and completes it.
type ReviewStep struct {
	ctx      context.Context
	importer service.Importer
	record   *repository.ContactImport
	summary  service.Summary
	loading  bool
	done     bool
}

func NewReviewStep(ctx context.Context, importer service.Importer) *ReviewStep {
	return &ReviewStep{ctx: ctx, importer: importer}
}

func (s *ReviewStep) Name() string  { return StepReview }
func (s *ReviewStep) Label() string { return "Review" }

func (s *ReviewStep) Summary() service.Summary { return s.summary }
func (s *ReviewStep) Done() bool               { return s.done }

func (s *ReviewStep) Enter(inv wizard.Inventory) tea.Cmd {
	s.loading = false
	s.record = inv.Import
	if s.record == nil {
		return wizard.Fail(errNoImport)
	}
	s.done = s.record.Status == repository.StatusComplete
	s.summary = service.Summarize(*s.record)
	return nil
}

func (s *ReviewStep) SetSize(int, int) {}

func (s *ReviewStep) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case completedMsg:
		s.loading = false
		if msg.err != nil {
			return wizard.Fail(fmt.Errorf("complete import: %w", msg.err))
		}
		s.done = true
		rec := msg.record
		s.record = &rec
		return wizard.SetInventory(func(inv wizard.Inventory) wizard.Inventory {
			inv.Import = &rec
			return inv
		})
	case tea.KeyMsg:
		if s.loading {
			return nil
		}
		switch msg.String() {
		case "esc":
			if !s.done {
				return wizard.Navigate(StepOrganize)
			}
		case "q":
			if s.done {
				return tea.Quit
			}
		case "enter":
			if s.done {
				return tea.Quit
			}
			if s.record == nil {
				return nil
			}
			s.loading = true
			ctx, importer, id := s.ctx, s.importer, s.record.ID
			return func() tea.Msg {
				rec, err := importer.Complete(ctx, id)
				return completedMsg{record: rec, err: err}
			}
		}
	}
	return nil
}

func (s *ReviewStep) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Review your import"))
	b.WriteString("\n\n")
	if s.record == nil {
		b.WriteString(hintStyle.Render("[esc] Back"))
		return b.String()
	}
	fmt.Fprintf(&b, "Contacts to import: %d\n", s.summary.Contacts)
	fmt.Fprintf(&b, "Missing email:      %d\n", s.summary.MissingEmail)
	fmt.Fprintf(&b, "Invalid email:      %d\n", s.summary.InvalidEmail)
	var mapped []string
	for i, f := range s.record.Mapping {
		if f != service.FieldSkip {
			mapped = append(mapped, fmt.Sprintf("%d→%s", i+1, f))
		}
	}
	if len(mapped) > 0 {
		fmt.Fprintf(&b, "Columns:            %s\n", strings.Join(mapped, ", "))
	}
	b.WriteString("\n")
	switch {
	case s.done:
		b.WriteString("Import complete.\n")
		b.WriteString(hintStyle.Render("[enter/q] Quit"))
	case s.loading:
		b.WriteString(hintStyle.Render("completing..."))
	default:
		b.WriteString(hintStyle.Render("[enter] Complete import  [esc] Back"))
	}
	return b.String()
}
