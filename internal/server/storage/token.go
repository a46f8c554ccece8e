package storage

import (
	"context"

	"github.com/iudanet/shortify/internal/models"
)

// TokenStorage defines interface for refresh token persistence
type TokenStorage interface {
	// SaveRefreshToken stores a new refresh token
	SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error

	// GetRefreshToken retrieves refresh token by token value
	// Returns ErrTokenNotFound if token doesn't exist
	GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)

	// GetUserTokens retrieves refresh tokens for a user, newest first
	// Revoked tokens are skipped unless includeRevoked is set
	// Returns ErrTokenNotFound if no tokens found
	GetUserTokens(ctx context.Context, userID string, includeRevoked bool) ([]*models.RefreshToken, error)

	// RevokeRefreshToken marks the token revoked, only if it is not revoked yet.
	// Concurrent callers racing on the same token: exactly one succeeds.
	// Returns ErrTokenNotFound if no unrevoked token with this value exists
	RevokeRefreshToken(ctx context.Context, token string) error

	// RevokeUserTokens marks every unrevoked token of the user as revoked
	// Returns number of revoked tokens
	RevokeUserTokens(ctx context.Context, userID string) (int, error)
}
