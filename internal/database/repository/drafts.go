package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// DraftRepo handles grid_drafts.
type DraftRepo struct {
	db DBTX
}

func NewDraftRepo(db DBTX) *DraftRepo { return &DraftRepo{db: db} }

func (r *DraftRepo) Save(ctx context.Context, d Draft) error {
	table, err := json.Marshal(d.Table)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
	INSERT INTO grid_drafts(id, table_json, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET table_json=excluded.table_json, updated_at=CURRENT_TIMESTAMP;
	`, d.ID, string(table))
	return err
}

func (r *DraftRepo) Get(ctx context.Context, id string) (Draft, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, table_json, updated_at FROM grid_drafts WHERE id = ?`, id)
	var (
		d     Draft
		table string
	)
	if err := row.Scan(&d.ID, &table, &d.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Draft{}, ErrNotFound
		}
		return Draft{}, err
	}
	if err := json.Unmarshal([]byte(table), &d.Table); err != nil {
		return Draft{}, fmt.Errorf("decode draft %s: %w", d.ID, err)
	}
	return d, nil
}

func (r *DraftRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM grid_drafts WHERE id = ?`, id)
	return err
}
