package storage

import (
	"context"

	"github.com/iudanet/shortify/internal/models"
)

// UserStorage defines interface for user and role persistence
type UserStorage interface {
	// CreateUser creates a new user in the storage
	// Returns ErrUserAlreadyExists if email is already registered
	CreateUser(ctx context.Context, user *models.User) error

	// CreateUserWithRole creates the user and grants the initial role atomically:
	// either both rows are written or neither
	// Returns ErrUserAlreadyExists if email is already registered
	CreateUserWithRole(ctx context.Context, user *models.User, role string) error

	// GetUserByID retrieves user by ID
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	// GetUserByEmail retrieves user by email
	// Returns ErrUserNotFound if user doesn't exist
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserRoles returns role names of the user in the order they were granted
	// Returns empty slice if the user has no roles
	GetUserRoles(ctx context.Context, userID string) ([]string, error)

	// AddUserRole grants a role to the user; granting an existing role is a no-op
	// Returns ErrUserNotFound if user doesn't exist
	AddUserRole(ctx context.Context, userID, role string) error
}
