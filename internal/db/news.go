package db

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const newsCols = `id, author_id, campaign_id, title, content, author_name, published_at, category, image_url`

func scanNews(row *sql.Row) (*News, error) {
	var n News
	err := row.Scan(&n.ID, &n.AuthorID, &n.CampaignID, &n.Title, &n.Content,
		&n.AuthorName, &n.PublishedAt, &n.Category, &n.ImageURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *Store) NewsByID(ctx context.Context, id int64) (*News, error) {
	return scanNews(s.db.QueryRowContext(ctx,
		`SELECT `+newsCols+` FROM news WHERE id = ?`, id))
}

// NewsInCampaign looks a news item up scoped to one campaign, so a public
// detail URL cannot leak items across tenants.
func (s *Store) NewsInCampaign(ctx context.Context, id, campaignID int64) (*News, error) {
	return scanNews(s.db.QueryRowContext(ctx,
		`SELECT `+newsCols+` FROM news WHERE id = ? AND campaign_id = ?`, id, campaignID))
}

func (s *Store) CreateNews(ctx context.Context, n *News) error {
	if n.PublishedAt.IsZero() {
		n.PublishedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO news (author_id, campaign_id, title, content, author_name, published_at, category, image_url)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.AuthorID, n.CampaignID, n.Title, n.Content, n.AuthorName, n.PublishedAt, n.Category, n.ImageURL)
	if err != nil {
		return err
	}
	n.ID, err = res.LastInsertId()
	return err
}

func (s *Store) UpdateNews(ctx context.Context, n *News) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE news SET campaign_id = ?, title = ?, content = ?, author_name = ?, category = ?, image_url = ?
		 WHERE id = ?`,
		n.CampaignID, n.Title, n.Content, n.AuthorName, n.Category, n.ImageURL, n.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) DeleteNews(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM news WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ListNews returns news authored by ownerID, newest first, or everything
// when ownerID is zero (elevated callers).
func (s *Store) ListNews(ctx context.Context, ownerID int64) ([]News, error) {
	query := `SELECT ` + newsCols + ` FROM news`
	args := []any{}
	if ownerID != 0 {
		query += ` WHERE author_id = ?`
		args = append(args, ownerID)
	}
	query += ` ORDER BY published_at DESC`
	return s.queryNews(ctx, query, args...)
}

// CampaignFeed returns one page of a campaign's public feed plus the total
// page count. Pages are 1-based.
func (s *Store) CampaignFeed(ctx context.Context, campaignID int64, category string, page, perPage int) ([]News, int, error) {
	if page < 1 {
		page = 1
	}
	where := ` WHERE campaign_id = ?`
	args := []any{campaignID}
	if category != "" {
		where += ` AND category = ?`
		args = append(args, category)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM news`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, perPage, (page-1)*perPage)
	items, err := s.queryNews(ctx,
		`SELECT `+newsCols+` FROM news`+where+` ORDER BY published_at DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, err
	}

	pages := (total + perPage - 1) / perPage
	return items, pages, nil
}

// LatestSessionLog returns the most recent session-log entry, used by the
// virtual tabletop integration API.
func (s *Store) LatestSessionLog(ctx context.Context) (*News, error) {
	return scanNews(s.db.QueryRowContext(ctx,
		`SELECT `+newsCols+` FROM news WHERE category = ? ORDER BY published_at DESC LIMIT 1`,
		CategorySessionLog))
}

func (s *Store) queryNews(ctx context.Context, query string, args ...any) ([]News, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []News
	for rows.Next() {
		var n News
		if err := rows.Scan(&n.ID, &n.AuthorID, &n.CampaignID, &n.Title, &n.Content,
			&n.AuthorName, &n.PublishedAt, &n.Category, &n.ImageURL); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
