// Package identity manages users, their passwords and roles.
package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/shortify/internal/apperr"
	"github.com/iudanet/shortify/internal/crypto"
	"github.com/iudanet/shortify/internal/models"
	"github.com/iudanet/shortify/internal/server/storage"
	"github.com/iudanet/shortify/internal/validation"
)

// Provider implements user lookup, registration and role management
type Provider struct {
	users  storage.UserStorage
	logger *slog.Logger
	now    func() time.Time
}

// NewProvider создает identity provider
func NewProvider(logger *slog.Logger, users storage.UserStorage) *Provider {
	return &Provider{users: users, logger: logger, now: time.Now}
}

// FindByID returns user by ID
func (p *Provider) FindByID(ctx context.Context, userID string) (*models.User, error) {
	return p.find(p.users.GetUserByID(ctx, userID))
}

// FindByEmail returns user by email; lookup is case-insensitive
func (p *Provider) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return p.find(p.users.GetUserByEmail(ctx, normalizeEmail(email)))
}

func (p *Provider) find(user *models.User, err error) (*models.User, error) {
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// Create validates input, hashes the password and stores a new user together
// with the initial role; an empty role stores the user without any.
// All validation failures are reported together.
func (p *Provider) Create(ctx context.Context, email, username, password, role string) (*models.User, error) {
	email = normalizeEmail(email)

	var errs []error
	if err := validation.ValidateEmail(email); err != nil {
		errs = append(errs, apperr.New(apperr.InvalidInput, err.Error()))
	}
	if err := validation.ValidateUsername(username); err != nil {
		errs = append(errs, apperr.New(apperr.InvalidInput, err.Error()))
	}
	if err := validation.ValidatePassword(password); err != nil {
		errs = append(errs, apperr.New(apperr.InvalidInput, err.Error()))
	}
	if role != "" {
		if err := validation.ValidateRole(role); err != nil {
			errs = append(errs, apperr.New(apperr.InvalidInput, err.Error()))
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    p.now(),
	}

	if role == "" {
		err = p.users.CreateUser(ctx, user)
	} else {
		err = p.users.CreateUserWithRole(ctx, user, role)
	}
	if err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			return nil, apperr.ErrUserExists
		}
		return nil, err
	}

	p.logger.InfoContext(ctx, "user created", slog.String("user_id", user.ID), slog.String("role", role))

	return user, nil
}

// CheckPassword reports whether password matches the stored hash
func (p *Provider) CheckPassword(user *models.User, password string) bool {
	if user == nil {
		return false
	}
	if err := crypto.VerifyPassword(password, user.PasswordHash); err != nil {
		if !errors.Is(err, crypto.ErrPasswordMismatch) {
			p.logger.Warn("password verification failed", slog.String("user_id", user.ID), slog.Any("error", err))
		}
		return false
	}
	return true
}

// RolesOf returns roles of the user in grant order
func (p *Provider) RolesOf(ctx context.Context, userID string) ([]string, error) {
	return p.users.GetUserRoles(ctx, userID)
}

// AddToRole grants a known role to the user
func (p *Provider) AddToRole(ctx context.Context, userID, role string) error {
	if err := validation.ValidateRole(role); err != nil {
		return apperr.New(apperr.InvalidInput, err.Error())
	}

	if err := p.users.AddUserRole(ctx, userID, role); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return apperr.ErrUserNotFound
		}
		return err
	}

	p.logger.InfoContext(ctx, "role granted", slog.String("user_id", userID), slog.String("role", role))

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
