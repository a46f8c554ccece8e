package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/shortify/internal/models"
	"github.com/iudanet/shortify/internal/server/storage"
)

// SaveRefreshToken stores a new refresh token
func (s *Storage) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, token, user_id, expires_at, created_at, revoked)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		token.ID,
		token.Token,
		token.UserID,
		token.ExpiresAt,
		token.CreatedAt,
		token.Revoked,
	)

	if err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}

	return nil
}

// GetRefreshToken retrieves refresh token by token value
func (s *Storage) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `
		SELECT id, token, user_id, expires_at, created_at, revoked
		FROM refresh_tokens
		WHERE token = ?
	`

	refreshToken, err := scanToken(s.db.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}

	return refreshToken, nil
}

// GetUserTokens retrieves refresh tokens for a user
func (s *Storage) GetUserTokens(ctx context.Context, userID string, includeRevoked bool) ([]*models.RefreshToken, error) {
	query := `
		SELECT id, token, user_id, expires_at, created_at, revoked
		FROM refresh_tokens
		WHERE user_id = ? AND (? OR revoked = 0)
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID, includeRevoked)
	if err != nil {
		return nil, fmt.Errorf("failed to query user tokens: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var tokens []*models.RefreshToken

	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	if len(tokens) == 0 {
		return nil, storage.ErrTokenNotFound
	}

	return tokens, nil
}

// RevokeRefreshToken marks the token revoked if it is still unrevoked
func (s *Storage) RevokeRefreshToken(ctx context.Context, token string) error {
	query := `UPDATE refresh_tokens SET revoked = 1 WHERE token = ? AND revoked = 0`

	result, err := s.db.ExecContext(ctx, query, token)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrTokenNotFound
	}

	return nil
}

// RevokeUserTokens marks all unrevoked tokens of the user as revoked
func (s *Storage) RevokeUserTokens(ctx context.Context, userID string) (int, error) {
	query := `UPDATE refresh_tokens SET revoked = 1 WHERE user_id = ? AND revoked = 0`

	result, err := s.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke user tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}

func scanToken(row rowScanner) (*models.RefreshToken, error) {
	token := &models.RefreshToken{}
	if err := row.Scan(
		&token.ID,
		&token.Token,
		&token.UserID,
		&token.ExpiresAt,
		&token.CreatedAt,
		&token.Revoked,
	); err != nil {
		return nil, err
	}
	return token, nil
}
