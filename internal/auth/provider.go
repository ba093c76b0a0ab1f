package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mindbridge.app/companion/internal/core"
	"mindbridge.app/companion/internal/store"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// UserStore is the slice of the SQLite store the provider needs.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*store.User, error)
	GetUserByEmail(ctx context.Context, email string) (*store.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// LocalProvider is the built-in identity provider: bcrypt hashes in the
// service's own database.
type LocalProvider struct {
	users UserStore
}

func NewLocalProvider(users UserStore) *LocalProvider {
	return &LocalProvider{users: users}
}

func (p *LocalProvider) CreateAccount(ctx context.Context, email, password string) (core.Account, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return core.Account{}, fmt.Errorf("failed to hash password: %w", err)
	}
	user, err := p.users.CreateUser(ctx, normalizeEmail(email), hash)
	if err != nil {
		return core.Account{}, err
	}
	return core.Account{ID: user.ID, Email: user.Email}, nil
}

func (p *LocalProvider) Authenticate(ctx context.Context, email, password string) (core.Account, error) {
	user, err := p.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return core.Account{}, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !CheckPasswordHash(password, user.PasswordHash) {
		return core.Account{}, ErrInvalidCredentials
	}
	return core.Account{ID: user.ID, Email: user.Email}, nil
}

func (p *LocalProvider) DeleteAccount(ctx context.Context, accountID int64) error {
	return p.users.DeleteUser(ctx, accountID)
}

// Emails are matched case-insensitively.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ core.IdentityProvider = (*LocalProvider)(nil)
