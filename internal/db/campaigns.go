package db

import (
	"context"
	"database/sql"
	"errors"
)

const campaignCols = `id, name, slug, description, creator_id`

func scanCampaign(row *sql.Row) (*Campaign, error) {
	var c Campaign
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) CampaignByID(ctx context.Context, id int64) (*Campaign, error) {
	return scanCampaign(s.db.QueryRowContext(ctx,
		`SELECT `+campaignCols+` FROM campaigns WHERE id = ?`, id))
}

// CampaignBySlug matches case-insensitively; slugs are stored lowercase
// but public URLs are forgiving.
func (s *Store) CampaignBySlug(ctx context.Context, slug string) (*Campaign, error) {
	return scanCampaign(s.db.QueryRowContext(ctx,
		`SELECT `+campaignCols+` FROM campaigns WHERE slug = lower(?)`, slug))
}

func (s *Store) SlugTaken(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM campaigns WHERE slug = lower(?))`, slug).Scan(&exists)
	return exists, err
}

// CreateCampaign inserts the campaign and its default settings row so the
// edit screen always has something to load.
func (s *Store) CreateCampaign(ctx context.Context, c *Campaign) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO campaigns (name, slug, description, creator_id) VALUES (?, ?, ?, ?)`,
		c.Name, c.Slug, c.Description, c.CreatorID)
	if err != nil {
		return err
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO settings (campaign_id, theme_primary, theme_secondary, font_family, call_to_action)
		 VALUES (?, ?, ?, ?, ?)`,
		c.ID, DefaultThemePrimary, DefaultThemeSecondary, DefaultFontFamily, DefaultCallToAction)
	return err
}

func (s *Store) UpdateCampaign(ctx context.Context, c *Campaign) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE campaigns SET name = ?, slug = ?, description = ? WHERE id = ?`,
		c.Name, c.Slug, c.Description, c.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// DeleteCampaign cascades to the campaign's news and settings via foreign
// keys.
func (s *Store) DeleteCampaign(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ListCampaigns returns campaigns owned by ownerID, or every campaign when
// ownerID is zero (elevated callers).
func (s *Store) ListCampaigns(ctx context.Context, ownerID int64) ([]Campaign, error) {
	query := `SELECT ` + campaignCols + ` FROM campaigns`
	args := []any{}
	if ownerID != 0 {
		query += ` WHERE creator_id = ?`
		args = append(args, ownerID)
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Campaign
	for rows.Next() {
		var c Campaign
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatorID); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
