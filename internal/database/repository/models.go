package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// Import statuses.
const (
	StatusCreated   = "created"
	StatusOrganized = "organized"
	StatusComplete  = "complete"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ContactImport represents a contact import record.
type ContactImport struct {
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	Table      [][]string `json:"table"`
	Mapping    []string   `json:"mapping,omitempty"`
	HasHeader  bool       `json:"has_header"`
	SourceHash string     `json:"source_hash,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Rows returns the number of table rows.
func (c ContactImport) Rows() int { return len(c.Table) }

// Cols returns the number of table columns.
func (c ContactImport) Cols() int {
	if len(c.Table) == 0 {
		return 0
	}
	return len(c.Table[0])
}

// Draft is an unsubmitted grid table.
type Draft struct {
	ID        string
	Table     [][]string
	UpdatedAt time.Time
}
