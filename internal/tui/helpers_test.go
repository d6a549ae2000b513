package tui

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/jask/contactimport/internal/database"
	"github.com/jask/contactimport/internal/database/repository"
	"github.com/jask/contactimport/internal/grid"
	"github.com/jask/contactimport/internal/service"
	"github.com/jask/contactimport/internal/wizard"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func pasteMsg(text string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text), Paste: true}
}

var cmdType = reflect.TypeOf((tea.Cmd)(nil))

// drain runs cmd and feeds every resulting message back into w, expanding
// batches and sequences. It stops at tea.Quit and reports whether it saw it.
func drain(t *testing.T, w *wizard.Model, cmd tea.Cmd) (quit bool) {
	t.Helper()
	if cmd == nil {
		return false
	}
	msg := cmd()
	switch msg.(type) {
	case nil:
		return false
	case tea.QuitMsg:
		return true
	}
	if v := reflect.ValueOf(msg); v.Kind() == reflect.Slice && v.Type().Elem() == cmdType {
		for i := 0; i < v.Len(); i++ {
			c, _ := v.Index(i).Interface().(tea.Cmd)
			if drain(t, w, c) {
				return true
			}
		}
		return false
	}
	_, next := w.Update(msg)
	return drain(t, w, next)
}

// send delivers msg to w and drops the resulting command. Use it for keys
// that open the cell editor, whose cursor blink command never settles.
func send(w *wizard.Model, msg tea.Msg) {
	w.Update(msg)
}

func quietLogger() *log.Logger { return log.New(io.Discard) }

func newTestService(t *testing.T) *service.ImportService {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tui.db")
	if err := database.RunMigrations(path); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db, err := database.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &service.ImportService{
		Imports: repository.NewImportRepo(db),
		Drafts:  repository.NewDraftRepo(db),
		Logger:  quietLogger(),
	}
}

// fakeImporter records calls and fails when err is set.
type fakeImporter struct {
	mu       sync.Mutex
	created  []grid.Table
	mappings [][]string
	err      error
}

func (f *fakeImporter) CreateContactImport(_ context.Context, t grid.Table) (repository.ContactImport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, t)
	if f.err != nil {
		return repository.ContactImport{}, f.err
	}
	return repository.ContactImport{ID: "imp-1", Status: repository.StatusCreated, Table: t.Trimmed()}, nil
}

func (f *fakeImporter) Organize(_ context.Context, id string, mapping []string, hasHeader bool) (repository.ContactImport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mappings = append(f.mappings, mapping)
	if f.err != nil {
		return repository.ContactImport{}, f.err
	}
	return repository.ContactImport{ID: id, Status: repository.StatusOrganized, Mapping: mapping, HasHeader: hasHeader}, nil
}

func (f *fakeImporter) Complete(_ context.Context, id string) (repository.ContactImport, error) {
	if f.err != nil {
		return repository.ContactImport{}, f.err
	}
	return repository.ContactImport{ID: id, Status: repository.StatusComplete}, nil
}

var errBackend = errors.New("backend down")
