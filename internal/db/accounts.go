package db

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const accountCols = `id, name, username, password_hash, profile_image_url, created_at, birth_date, account_type, campaign_id`

func scanAccount(row *sql.Row) (*Account, error) {
	var a Account
	var birth sql.NullTime
	err := row.Scan(&a.ID, &a.Name, &a.Username, &a.PasswordHash, &a.ProfileImageURL,
		&a.CreatedAt, &birth, &a.AccountType, &a.CampaignID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.BirthDate = birth.Time
	return &a, nil
}

func (s *Store) AccountByID(ctx context.Context, id int64) (*Account, error) {
	return scanAccount(s.db.QueryRowContext(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE id = ?`, id))
}

// AccountByUsername is a case-sensitive exact match; logins do not
// normalize usernames.
func (s *Store) AccountByUsername(ctx context.Context, username string) (*Account, error) {
	return scanAccount(s.db.QueryRowContext(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE username = ?`, username))
}

func (s *Store) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE username = ?)`, username).Scan(&exists)
	return exists, err
}

func (s *Store) CreateAccount(ctx context.Context, a *Account) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (name, username, password_hash, profile_image_url, created_at, birth_date, account_type, campaign_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Name, a.Username, a.PasswordHash, a.ProfileImageURL, a.CreatedAt, a.BirthDate, a.AccountType, a.CampaignID)
	if err != nil {
		return err
	}
	a.ID, err = res.LastInsertId()
	return err
}

func (s *Store) UpdateAccountPassword(ctx context.Context, id int64, hash string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE accounts SET password_hash = ? WHERE id = ?`, hash, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) UpdateAccountProfileImage(ctx context.Context, id int64, url string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE accounts SET profile_image_url = ? WHERE id = ?`, url, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) UpdateAccountProfile(ctx context.Context, id int64, name string, birthDate time.Time, campaignID int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, birth_date = ?, campaign_id = ? WHERE id = ?`,
		name, birthDate, campaignID, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) ListAccounts(ctx context.Context) ([]Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+accountCols+` FROM accounts ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		var a Account
		var birth sql.NullTime
		if err := rows.Scan(&a.ID, &a.Name, &a.Username, &a.PasswordHash, &a.ProfileImageURL,
			&a.CreatedAt, &birth, &a.AccountType, &a.CampaignID); err != nil {
			return nil, err
		}
		a.BirthDate = birth.Time
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) DeleteAccount(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// HasDeveloper reports whether the bootstrap Developer account exists.
func (s *Store) HasDeveloper(ctx context.Context) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE account_type = ?)`, TypeDeveloper).Scan(&exists)
	return exists, err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
