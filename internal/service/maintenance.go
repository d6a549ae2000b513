package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/contactimport/internal/database"
)

// MaintenanceService houses destructive actions exposed on the command line.
type MaintenanceService struct {
	DB *sql.DB
}

// Reset deletes every import record and draft, keeping the schema.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	if err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		for _, t := range []string{"grid_drafts", "contact_imports"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return fmt.Errorf("reset table %s: %w", t, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return nil
}
