// Package wizard is a step-by-step container for bubbletea models. Steps
// share an Inventory and move between each other by name.
package wizard

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/jask/contactimport/internal/database/repository"
	"github.com/jask/contactimport/internal/grid"
)

// Inventory is the state shared by every step.
type Inventory struct {
	Table  grid.Table
	Import *repository.ContactImport
	// Source is "paste" or the path of a loaded file.
	Source string
}

// Step is one page of the wizard.
type Step interface {
	Name() string
	Label() string
	// Enter is called each time the step becomes current.
	Enter(inv Inventory) tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View() string
	SetSize(width, height int)
}

// Leaver is implemented by steps that need to act when the wizard moves
// away from them or quits.
type Leaver interface {
	Leave() tea.Cmd
}

type (
	setInventoryMsg struct{ fn func(Inventory) Inventory }
	navigateMsg     struct{ step string }
)

// ErrMsg carries an error to the wizard's error boundary.
type ErrMsg struct{ Err error }

func (e ErrMsg) Error() string { return e.Err.Error() }

// SetInventory updates the shared inventory.
func SetInventory(fn func(Inventory) Inventory) tea.Cmd {
	return func() tea.Msg { return setInventoryMsg{fn: fn} }
}

// Navigate makes the named step current.
func Navigate(step string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{step: step} }
}

// Fail reports err to the error boundary.
func Fail(err error) tea.Cmd {
	return func() tea.Msg { return ErrMsg{Err: err} }
}

// ErrUnknownStep is reported when navigating to a step that does not exist.
var ErrUnknownStep = errors.New("unknown step")

// headerLines is the height of the step heading, including the gap below it.
const headerLines = 2

var (
	headingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Model runs the steps. It is the only place errors are shown and logged.
type Model struct {
	steps   []Step
	current int
	inv     Inventory
	err     error
	logger  *log.Logger
	width   int
	height  int
	done    bool
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger used by the error boundary.
func WithLogger(l *log.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// WithStart makes the named step current on Init.
func WithStart(name string) Option {
	return func(m *Model) {
		if i := m.index(name); i >= 0 {
			m.current = i
		}
	}
}

// New returns a wizard over steps starting at the first one.
func New(inv Inventory, steps []Step, opts ...Option) *Model {
	m := &Model{steps: steps, inv: inv, logger: log.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Model) Inventory() Inventory { return m.inv }
func (m *Model) Err() error           { return m.err }

// Current returns the current step, or nil for a wizard with no steps.
func (m *Model) Current() Step {
	if len(m.steps) == 0 {
		return nil
	}
	return m.steps[m.current]
}

func (m *Model) index(name string) int {
	for i, s := range m.steps {
		if s.Name() == name {
			return i
		}
	}
	return -1
}

func (m *Model) Init() tea.Cmd {
	if cur := m.Current(); cur != nil {
		return cur.Enter(m.inv)
	}
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cur := m.Current()
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			return m, tea.Sequence(m.leave(), tea.Quit)
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		for _, s := range m.steps {
			s.SetSize(msg.Width, max(0, msg.Height-headerLines-2))
		}
		return m, nil
	case tea.MouseMsg:
		msg.Y -= headerLines
		if cur == nil {
			return m, nil
		}
		return m, cur.Update(msg)
	case setInventoryMsg:
		m.inv = msg.fn(m.inv)
		return m, nil
	case navigateMsg:
		i := m.index(msg.step)
		if i < 0 {
			return m.fail(fmt.Errorf("navigate %q: %w", msg.step, ErrUnknownStep))
		}
		leave := m.leave()
		m.current = i
		m.err = nil
		m.logger.Debug("wizard step", "step", msg.step)
		return m, tea.Batch(leave, m.steps[i].Enter(m.inv))
	case ErrMsg:
		return m.fail(msg.Err)
	}
	if cur == nil {
		return m, nil
	}
	return m, cur.Update(msg)
}

func (m *Model) leave() tea.Cmd {
	if l, ok := m.Current().(Leaver); ok {
		return l.Leave()
	}
	return nil
}

func (m *Model) fail(err error) (tea.Model, tea.Cmd) {
	if err == nil {
		return m, nil
	}
	m.err = err
	name := ""
	if cur := m.Current(); cur != nil {
		name = cur.Name()
	}
	m.logger.Error("wizard", "step", name, "err", err)
	return m, nil
}

func (m *Model) View() string {
	if m.done {
		return ""
	}
	cur := m.Current()
	if cur == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(headingStyle.Render(fmt.Sprintf("Step %d of %d: %s", m.current+1, len(m.steps), cur.Label())))
	b.WriteString("\n\n")
	b.WriteString(cur.View())
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render("error: " + m.err.Error()))
	} else {
		b.WriteString(footerStyle.Render("ctrl+c quit"))
	}
	return b.String()
}
