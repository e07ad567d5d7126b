package db

import (
	"context"
	"database/sql"
	"errors"
)

// Global returns the singleton portal-wide settings row, creating it with
// defaults on first read.
func (s *Store) Global(ctx context.Context) (*GlobalSettings, error) {
	var g GlobalSettings
	err := s.db.QueryRowContext(ctx,
		`SELECT id, maintenance_active, maintenance_message FROM global_settings WHERE id = 1`).
		Scan(&g.ID, &g.MaintenanceActive, &g.MaintenanceMessage)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO global_settings (id) VALUES (1)`); err != nil {
			return nil, err
		}
		return s.Global(ctx)
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Store) SetMaintenance(ctx context.Context, active bool, message string) error {
	if _, err := s.Global(ctx); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE global_settings SET maintenance_active = ?, maintenance_message = ? WHERE id = 1`,
		active, message)
	return err
}
