// Package auth implements credential verification, registration and the
// signed persistent credential the portal authenticates requests with.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"gmportal/internal/db"
	"gmportal/internal/upload"
)

var (
	// ErrInvalidCredentials covers both unknown usernames and wrong
	// passwords so login failures do not enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrValidation         = errors.New("validation error")
	// ErrForbiddenType rejects self-registration at elevated privilege.
	ErrForbiddenType = errors.New("privilege level not allowed")
)

const (
	MinPasswordLen = 6
	minUsernameLen = 4
	maxUsernameLen = 20
)

// Store is the slice of the persistence layer auth needs.
type Store interface {
	AccountByID(ctx context.Context, id int64) (*db.Account, error)
	AccountByUsername(ctx context.Context, username string) (*db.Account, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	CreateAccount(ctx context.Context, a *db.Account) error
	UpdateAccountPassword(ctx context.Context, id int64, hash string) error
	InsertLegacySession(ctx context.Context, token, username string, campaignID int64, expiresAt time.Time) error
	DeleteLegacySession(ctx context.Context, token string) error
}

type Service struct {
	store  Store
	secret []byte
	ttl    time.Duration
}

func NewService(store Store, secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &Service{store: store, secret: []byte(secret), ttl: ttl}
}

// Credential is the signed token handed to the browser plus its expiry,
// for the cookie the handler sets.
type Credential struct {
	Token     string
	ExpiresAt time.Time
}

// Authenticate verifies username and password, issues the signed
// credential and writes the mirrored legacy session record.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*db.Account, Credential, error) {
	acc, err := s.store.AccountByUsername(ctx, username)
	if errors.Is(err, db.ErrNotFound) {
		return nil, Credential{}, ErrInvalidCredentials
	}
	if err != nil {
		return nil, Credential{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		return nil, Credential{}, ErrInvalidCredentials
	}

	cred, jti, err := s.issueToken(acc)
	if err != nil {
		return nil, Credential{}, err
	}
	if err := s.store.InsertLegacySession(ctx, jti, acc.Username, acc.CampaignID, cred.ExpiresAt); err != nil {
		return nil, Credential{}, fmt.Errorf("mirror session: %w", err)
	}
	return acc, cred, nil
}

// Logout invalidates the credential's mirrored session. Unknown or already
// expired tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) {
	claims, err := s.ParseToken(token)
	if err != nil {
		return
	}
	s.store.DeleteLegacySession(ctx, claims.ID)
}

// RegisterInput is the self-registration form.
type RegisterInput struct {
	Name            string
	Username        string
	Password        string
	ConfirmPassword string
	AccountType     db.AccountType
	CampaignID      int64
}

// Register creates an account from the public registration form. Elevated
// privilege cannot be self-assigned here; administrative account creation
// goes through CreateAccount instead.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*db.Account, error) {
	if in.AccountType >= db.TypeAdministrator {
		return nil, ErrForbiddenType
	}
	if !in.AccountType.Valid() {
		return nil, fmt.Errorf("%w: unknown account type", ErrValidation)
	}
	return s.createAccount(ctx, in)
}

// CreateAccount is the administrative path: any privilege level, same
// field validation.
func (s *Service) CreateAccount(ctx context.Context, in RegisterInput) (*db.Account, error) {
	if !in.AccountType.Valid() {
		return nil, fmt.Errorf("%w: unknown account type", ErrValidation)
	}
	return s.createAccount(ctx, in)
}

func (s *Service) createAccount(ctx context.Context, in RegisterInput) (*db.Account, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if n := len(in.Username); n < minUsernameLen || n > maxUsernameLen {
		return nil, fmt.Errorf("%w: username must be %d-%d characters", ErrValidation, minUsernameLen, maxUsernameLen)
	}
	if len(in.Password) < MinPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLen)
	}
	if in.Password != in.ConfirmPassword {
		return nil, fmt.Errorf("%w: passwords do not match", ErrValidation)
	}

	taken, err := s.store.UsernameTaken(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrDuplicateUsername
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	acc := &db.Account{
		Name:            in.Name,
		Username:        in.Username,
		PasswordHash:    string(hash),
		ProfileImageURL: upload.DefaultProfileImage,
		AccountType:     in.AccountType,
		CampaignID:      in.CampaignID,
	}
	if err := s.store.CreateAccount(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

// ChangePassword replaces the stored hash after verifying the current
// password.
func (s *Service) ChangePassword(ctx context.Context, accountID int64, current, newPass, confirm string) error {
	if len(newPass) < MinPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLen)
	}
	if newPass != confirm {
		return fmt.Errorf("%w: passwords do not match", ErrValidation)
	}

	acc, err := s.store.AccountByID(ctx, accountID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(current)) != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPass), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.store.UpdateAccountPassword(ctx, accountID, string(hash))
}
