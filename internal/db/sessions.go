package db

import (
	"context"
	"time"
)

// Legacy sessions mirror the signed credential for consumers that only
// read the session store: a token keyed row holding the username and the
// caller's primary campaign.

func (s *Store) InsertLegacySession(ctx context.Context, token, username string, campaignID int64, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO legacy_sessions (token, username, campaign_id, expires_at) VALUES (?, ?, ?, ?)`,
		token, username, campaignID, expiresAt)
	return err
}

func (s *Store) DeleteLegacySession(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM legacy_sessions WHERE token = ?`, token)
	return err
}

func (s *Store) PruneLegacySessions(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM legacy_sessions WHERE expires_at < ?`, time.Now())
	return err
}

// LegacySession returns the mirrored username and campaign id for a token,
// or ErrNotFound when the token is unknown or expired.
func (s *Store) LegacySession(ctx context.Context, token string) (username string, campaignID int64, err error) {
	var expires time.Time
	err = s.db.QueryRowContext(ctx,
		`SELECT username, campaign_id, expires_at FROM legacy_sessions WHERE token = ?`, token).
		Scan(&username, &campaignID, &expires)
	if err != nil {
		return "", 0, ErrNotFound
	}
	if time.Now().After(expires) {
		return "", 0, ErrNotFound
	}
	return username, campaignID, nil
}
