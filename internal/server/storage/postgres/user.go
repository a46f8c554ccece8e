package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/shortify/internal/models"
	"github.com/iudanet/shortify/internal/server/storage"
	"github.com/iudanet/shortify/internal/server/storage/dbx"
)

// CreateUser creates a new user in the storage
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	return insertUser(ctx, s.db, user)
}

// CreateUserWithRole creates the user and grants the initial role in one transaction
func (s *Storage) CreateUserWithRole(ctx context.Context, user *models.User, role string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := insertUser(ctx, tx, user); err != nil {
			return err
		}
		return insertRole(ctx, tx, user.ID, role, user.CreatedAt)
	})
}

func insertUser(ctx context.Context, db dbx.DBTX, user *models.User) error {
	query := `
		INSERT INTO users (id, email, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

func insertRole(ctx context.Context, db dbx.DBTX, userID, role string, grantedAt time.Time) error {
	query := `
		INSERT INTO user_roles (user_id, role, granted_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, role) DO NOTHING
	`

	if _, err := db.ExecContext(ctx, query, userID, role, grantedAt); err != nil {
		return fmt.Errorf("failed to add user role: %w", err)
	}

	return nil
}

// GetUserByID retrieves user by ID
func (s *Storage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	query := `
		SELECT id, email, username, password_hash, created_at
		FROM users
		WHERE id = $1
	`

	return s.getUser(ctx, query, userID)
}

// GetUserByEmail retrieves user by email
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, email, username, password_hash, created_at
		FROM users
		WHERE email = $1
	`

	return s.getUser(ctx, query, email)
}

func (s *Storage) getUser(ctx context.Context, query string, arg string) (*models.User, error) {
	user := &models.User{}

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetUserRoles returns role names of the user in the order they were granted
func (s *Storage) GetUserRoles(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT role
		FROM user_roles
		WHERE user_id = $1
		ORDER BY granted_at
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user roles: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	roles := []string{}
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("failed to scan role: %w", err)
		}
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return roles, nil
}

// AddUserRole grants a role to the user
func (s *Storage) AddUserRole(ctx context.Context, userID, role string) error {
	if _, err := s.GetUserByID(ctx, userID); err != nil {
		return err
	}

	return insertRole(ctx, s.db, userID, role, time.Now())
}
