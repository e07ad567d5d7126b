// Package db is the portal's SQLite persistence layer: schema migration,
// the bootstrap seed and typed query helpers for every entity.
package db

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a row does not exist. Handlers map it to
// 404, as opposed to authorization failures which map to 403.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &Store{db: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL DEFAULT '',
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			profile_image_url TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			birth_date DATETIME,
			account_type INTEGER NOT NULL DEFAULT 1,
			campaign_id INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS campaigns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			slug TEXT UNIQUE NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			creator_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE RESTRICT
		)`,
		`CREATE TABLE IF NOT EXISTS news (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			author_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			campaign_id INTEGER NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			author_name TEXT NOT NULL DEFAULT '',
			published_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			category TEXT NOT NULL DEFAULT 'Update',
			image_url TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			campaign_id INTEGER UNIQUE NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
			discord_webhook_url TEXT NOT NULL DEFAULT '',
			vtt_url TEXT NOT NULL DEFAULT '',
			theme_primary TEXT NOT NULL DEFAULT '#8e0000',
			theme_secondary TEXT NOT NULL DEFAULT '#3a0000',
			font_family TEXT NOT NULL DEFAULT '''Segoe UI'', sans-serif',
			banner_url TEXT NOT NULL DEFAULT '',
			thumbnail_url TEXT NOT NULL DEFAULT '',
			call_to_action TEXT NOT NULL DEFAULT '',
			show_session_clock INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS global_settings (
			id INTEGER PRIMARY KEY CHECK(id = 1),
			maintenance_active INTEGER NOT NULL DEFAULT 0,
			maintenance_message TEXT NOT NULL DEFAULT 'The portal is under maintenance.'
		)`,
		`CREATE TABLE IF NOT EXISTS legacy_sessions (
			token TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			campaign_id INTEGER NOT NULL DEFAULT 0,
			expires_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_news_campaign ON news(campaign_id, published_at)`,
		`CREATE INDEX IF NOT EXISTS idx_news_author ON news(author_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}
