package service

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/jask/contactimport/internal/database/repository"
	"github.com/jask/contactimport/internal/grid"
)

var (
	// ErrEmptyTable is returned when every cell of a table is empty.
	ErrEmptyTable = errors.New("table is empty")
	// ErrNotOrganized is returned when completing an import with no mapping.
	ErrNotOrganized = errors.New("import has not been organized")
)

// Creator creates a contact import record from a grid table.
type Creator interface {
	CreateContactImport(ctx context.Context, t grid.Table) (repository.ContactImport, error)
}

// Importer is the full contact import backend used by the wizard.
type Importer interface {
	Creator
	Organize(ctx context.Context, id string, mapping []string, hasHeader bool) (repository.ContactImport, error)
	Complete(ctx context.Context, id string) (repository.ContactImport, error)
}

// draftID is the single local draft slot.
var draftID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("contactimport:grid-draft")).String()

// ImportService stores contact imports and grid drafts in sqlite.
type ImportService struct {
	Imports *repository.ImportRepo
	Drafts  *repository.DraftRepo
	Logger  *log.Logger
}

func (s *ImportService) logger() *log.Logger {
	if s.Logger == nil {
		return log.Default()
	}
	return s.Logger
}

// CreateContactImport trims trailing empty rows and columns from t and stores
// it as a new import record. An unfinished import of the same table is
// returned instead of creating a duplicate.
func (s *ImportService) CreateContactImport(ctx context.Context, t grid.Table) (repository.ContactImport, error) {
	if t.IsEmpty() {
		return repository.ContactImport{}, ErrEmptyTable
	}
	trimmed := t.Trimmed()
	hash := hashTable(trimmed)
	prev, err := s.Imports.ByHash(ctx, hash)
	switch {
	case err == nil && prev.Status != repository.StatusComplete:
		s.logger().Info("reusing contact import with identical table", "id", prev.ID, "status", prev.Status)
		return prev, nil
	case err == nil:
		s.logger().Warn("table was already imported", "id", prev.ID)
	case !errors.Is(err, repository.ErrNotFound):
		return repository.ContactImport{}, fmt.Errorf("lookup source hash: %w", err)
	}
	rec := repository.ContactImport{
		ID:         uuid.NewString(),
		Status:     repository.StatusCreated,
		Table:      trimmed.Clone(),
		SourceHash: hash,
	}
	if err := s.Imports.Insert(ctx, rec); err != nil {
		return repository.ContactImport{}, fmt.Errorf("create contact import: %w", err)
	}
	stored, err := s.Imports.Get(ctx, rec.ID)
	if err != nil {
		return repository.ContactImport{}, err
	}
	s.logger().Info("contact import created", "id", stored.ID, "rows", stored.Rows(), "cols", stored.Cols())
	return stored, nil
}

// Organize validates and stores the column mapping of an import.
func (s *ImportService) Organize(ctx context.Context, id string, mapping []string, hasHeader bool) (repository.ContactImport, error) {
	rec, err := s.Imports.Get(ctx, id)
	if err != nil {
		return repository.ContactImport{}, err
	}
	if err := ValidateMapping(mapping, rec.Cols()); err != nil {
		return repository.ContactImport{}, err
	}
	if err := s.Imports.UpdateMapping(ctx, id, mapping, hasHeader); err != nil {
		return repository.ContactImport{}, fmt.Errorf("organize %s: %w", id, err)
	}
	s.logger().Info("contact import organized", "id", id, "mapping", strings.Join(mapping, ","), "header", hasHeader)
	return s.Imports.Get(ctx, id)
}

// Complete marks an organized import complete and discards the grid draft.
func (s *ImportService) Complete(ctx context.Context, id string) (repository.ContactImport, error) {
	rec, err := s.Imports.Get(ctx, id)
	if err != nil {
		return repository.ContactImport{}, err
	}
	if rec.Status == repository.StatusComplete {
		return rec, nil
	}
	if rec.Status != repository.StatusOrganized {
		return repository.ContactImport{}, fmt.Errorf("complete %s: %w", id, ErrNotOrganized)
	}
	if err := s.Imports.UpdateStatus(ctx, id, repository.StatusComplete); err != nil {
		return repository.ContactImport{}, fmt.Errorf("complete %s: %w", id, err)
	}
	if err := s.DiscardDraft(ctx); err != nil {
		s.logger().Warn("discard draft", "err", err)
	}
	s.logger().Info("contact import complete", "id", id)
	return s.Imports.Get(ctx, id)
}

// SaveDraft stores the unsubmitted grid table.
func (s *ImportService) SaveDraft(ctx context.Context, t grid.Table) error {
	if s.Drafts == nil {
		return nil
	}
	return s.Drafts.Save(ctx, repository.Draft{ID: draftID, Table: t.Clone()})
}

// LoadDraft returns the saved grid table, if any.
func (s *ImportService) LoadDraft(ctx context.Context) (grid.Table, bool, error) {
	if s.Drafts == nil {
		return nil, false, nil
	}
	d, err := s.Drafts.Get(ctx, draftID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return grid.FromRows(d.Table), true, nil
}

// DiscardDraft removes the saved grid table.
func (s *ImportService) DiscardDraft(ctx context.Context) error {
	if s.Drafts == nil {
		return nil
	}
	return s.Drafts.Delete(ctx, draftID)
}

func hashTable(t grid.Table) string {
	h := sha256.New()
	for _, row := range t {
		h.Write([]byte(strings.Join(row, "\t")))
		h.Write([]byte{'\n'})
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
