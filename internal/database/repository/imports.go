package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ImportRepo handles contact_imports.
type ImportRepo struct {
	db DBTX
}

func NewImportRepo(db DBTX) *ImportRepo { return &ImportRepo{db: db} }

func (r *ImportRepo) Insert(ctx context.Context, c ContactImport) error {
	table, err := json.Marshal(c.Table)
	if err != nil {
		return fmt.Errorf("encode table: %w", err)
	}
	mapping, err := encodeMapping(c.Mapping)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
	INSERT INTO contact_imports(id, status, table_json, row_count, col_count, mapping, has_header, source_hash, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`, c.ID, c.Status, string(table), c.Rows(), c.Cols(), mapping, c.HasHeader, c.SourceHash)
	return err
}

func (r *ImportRepo) Get(ctx context.Context, id string) (ContactImport, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, status, table_json, mapping, has_header, source_hash, created_at, updated_at
	FROM contact_imports WHERE id = ?`, id)
	c, err := scanImport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ContactImport{}, fmt.Errorf("contact import %s: %w", id, ErrNotFound)
	}
	return c, err
}

func (r *ImportRepo) List(ctx context.Context, limit int) ([]ContactImport, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, status, table_json, mapping, has_header, source_hash, created_at, updated_at
	FROM contact_imports ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ContactImport
	for rows.Next() {
		c, err := scanImport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateMapping stores the column mapping and marks the import organized.
func (r *ImportRepo) UpdateMapping(ctx context.Context, id string, mapping []string, hasHeader bool) error {
	enc, err := encodeMapping(mapping)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
	UPDATE contact_imports SET mapping = ?, has_header = ?, status = ?, updated_at = CURRENT_TIMESTAMP
	WHERE id = ?`, enc, hasHeader, StatusOrganized, id)
	if err != nil {
		return err
	}
	return expectOne(res, id)
}

func (r *ImportRepo) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE contact_imports SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	return expectOne(res, id)
}

// ByHash returns the most recent import with the given source hash.
func (r *ImportRepo) ByHash(ctx context.Context, hash string) (ContactImport, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, status, table_json, mapping, has_header, source_hash, created_at, updated_at
	FROM contact_imports WHERE source_hash = ? ORDER BY created_at DESC LIMIT 1`, hash)
	c, err := scanImport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ContactImport{}, ErrNotFound
	}
	return c, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanImport(s scanner) (ContactImport, error) {
	var (
		c       ContactImport
		table   string
		mapping sql.NullString
	)
	if err := s.Scan(&c.ID, &c.Status, &table, &mapping, &c.HasHeader, &c.SourceHash, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return ContactImport{}, err
	}
	if err := json.Unmarshal([]byte(table), &c.Table); err != nil {
		return ContactImport{}, fmt.Errorf("decode table %s: %w", c.ID, err)
	}
	if mapping.Valid && mapping.String != "" {
		if err := json.Unmarshal([]byte(mapping.String), &c.Mapping); err != nil {
			return ContactImport{}, fmt.Errorf("decode mapping %s: %w", c.ID, err)
		}
	}
	return c, nil
}

func encodeMapping(m []string) (*string, error) {
	if len(m) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode mapping: %w", err)
	}
	s := string(b)
	return &s, nil
}

func expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("contact import %s: %w", id, ErrNotFound)
	}
	return nil
}
