// Package tui holds the steps of the contact import wizard.
package tui

import (
	"context"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/contactimport/internal/grid"
	"github.com/jask/contactimport/internal/service"
	"github.com/jask/contactimport/internal/wizard"
)

// Step names used with wizard.Navigate.
const (
	StepSource    = "source"
	StepCopyPaste = "copy-paste"
	StepOrganize  = "organize"
	StepReview    = "review"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Underline(true)
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("4"))
	buttonStyle   = lipgloss.NewStyle().Padding(0, 2).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("245"))
	focusedButton = buttonStyle.BorderForeground(lipgloss.Color("4")).Bold(true)
	disabledStyle = buttonStyle.Foreground(lipgloss.Color("240")).BorderForeground(lipgloss.Color("238"))
)

// DraftStore persists the unsubmitted grid table.
type DraftStore interface {
	SaveDraft(ctx context.Context, t grid.Table) error
}

// Deps are the collaborators of the wizard steps.
type Deps struct {
	Importer  service.Importer
	Drafts    DraftStore
	Mappings  MappingMemory
	LoadFile  func(path string) (grid.Table, error)
	GridOpts  []grid.Option
	StartRows int
	StartCols int
}

// Steps builds the four wizard steps in order.
func Steps(ctx context.Context, d Deps) []wizard.Step {
	load := d.LoadFile
	if load == nil {
		load = service.LoadTableFile
	}
	return []wizard.Step{
		NewSourceStep(load),
		NewCopyPasteStep(ctx, d.Importer, d.Drafts, grid.NewTable(d.StartRows, d.StartCols), d.GridOpts...),
		NewOrganizeStep(ctx, d.Importer, d.Mappings),
		NewReviewStep(ctx, d.Importer),
	}
}

func renderButton(label string, focused, disabled bool) string {
	switch {
	case disabled:
		return disabledStyle.Render(label)
	case focused:
		return focusedButton.Render(label)
	default:
		return buttonStyle.Render(label)
	}
}
