package db

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"gmportal/internal/upload"
)

// SeedDeveloper creates the bootstrap Developer account when no account
// with Developer privilege exists yet. Returns the username and password
// to surface in the startup log, or empty strings when nothing was seeded.
func (s *Store) SeedDeveloper(ctx context.Context) (username, password string, err error) {
	exists, err := s.HasDeveloper(ctx)
	if err != nil {
		return "", "", err
	}
	if exists {
		return "", "", nil
	}

	username, password = "developer", "changeme"
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", "", err
	}
	acc := &Account{
		Name:            "The Creator",
		Username:        username,
		PasswordHash:    string(hash),
		ProfileImageURL: upload.DefaultProfileImage,
		BirthDate:       time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		AccountType:     TypeDeveloper,
	}
	if err := s.CreateAccount(ctx, acc); err != nil {
		return "", "", fmt.Errorf("seed developer: %w", err)
	}
	return username, password, nil
}
