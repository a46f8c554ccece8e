// Package tokens issues token pairs and drives the refresh token lifecycle:
// rotation, validation and revocation.
package tokens

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/shortify/internal/apperr"
	"github.com/iudanet/shortify/internal/models"
	"github.com/iudanet/shortify/internal/server/jwt"
	"github.com/iudanet/shortify/internal/server/storage"
)

// Issuer mints access and refresh tokens
type Issuer interface {
	GenerateAccessToken(userID, email, role string) (string, time.Time, error)
	GenerateRefreshToken() (string, error)
	ParseExpiredAccessToken(tokenString string) (*jwt.Claims, error)
	RefreshTTL() time.Duration
}

// Users resolves the owner of a token during rotation
type Users interface {
	FindByID(ctx context.Context, userID string) (*models.User, error)
	RolesOf(ctx context.Context, userID string) ([]string, error)
}

// Pair is a freshly minted access/refresh token pair
type Pair struct {
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
	AccessToken      string
	RefreshToken     string
	Role             string
}

// Service implements issuing and lifecycle of refresh tokens
type Service struct {
	issuer Issuer
	store  storage.TokenStorage
	users  Users
	logger *slog.Logger
	now    func() time.Time
}

// NewService создает сервис токенов
func NewService(logger *slog.Logger, issuer Issuer, store storage.TokenStorage, users Users) *Service {
	return &Service{
		issuer: issuer,
		store:  store,
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

// IssuePair mints both tokens and persists the refresh token as active
func (s *Service) IssuePair(ctx context.Context, user *models.User, role string) (*Pair, error) {
	accessToken, accessExpiresAt, err := s.issuer.GenerateAccessToken(user.ID, user.Email, role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.issuer.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	now := s.now()
	record := &models.RefreshToken{
		ID:        uuid.New().String(),
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: now.Add(s.issuer.RefreshTTL()),
		CreatedAt: now,
	}

	if err := s.store.SaveRefreshToken(ctx, record); err != nil {
		return nil, err
	}

	return &Pair{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiresAt,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: record.ExpiresAt,
		Role:             role,
	}, nil
}

// Rotate exchanges an active refresh token for a new pair.
// The access token may be expired but must carry a valid signature.
func (s *Service) Rotate(ctx context.Context, accessToken, refreshToken string) (*Pair, error) {
	claims, err := s.issuer.ParseExpiredAccessToken(accessToken)
	if err != nil {
		s.logger.WarnContext(ctx, "rotation rejected: invalid access token", slog.Any("error", err))
		return nil, err
	}
	userID := claims.UserID()

	match, err := s.findActive(ctx, userID, refreshToken)
	if err != nil {
		return nil, err
	}
	if match == nil {
		s.logger.WarnContext(ctx, "rotation rejected: refresh token not active", slog.String("user_id", userID))
		return nil, apperr.ErrInvalidRefreshToken
	}

	// условный UPDATE: из параллельных ротаций одного токена проходит только одна
	if err := s.store.RevokeRefreshToken(ctx, match.Token); err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			s.logger.WarnContext(ctx, "rotation rejected: refresh token already spent", slog.String("user_id", userID))
			return nil, apperr.ErrInvalidRefreshToken
		}
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	roles, err := s.users.RolesOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	role := models.PrimaryRole(roles)
	if role == "" {
		role = models.RoleUser
	}

	pair, err := s.IssuePair(ctx, user, role)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "tokens rotated", slog.String("user_id", user.ID))

	return pair, nil
}

// Validate reports whether refreshToken is an active token of userID.
// Any failure, including store errors, yields false.
func (s *Service) Validate(ctx context.Context, userID, refreshToken string) bool {
	match, err := s.findActive(ctx, userID, refreshToken)
	if err != nil {
		s.logger.WarnContext(ctx, "refresh token validation failed", slog.Any("error", err))
		return false
	}
	return match != nil
}

// Revoke marks the token revoked; unknown or already revoked tokens are ignored
func (s *Service) Revoke(ctx context.Context, refreshToken string) error {
	if err := s.store.RevokeRefreshToken(ctx, refreshToken); err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			return nil
		}
		return err
	}
	return nil
}

// RevokeAll revokes every active token of the user and returns their number
func (s *Service) RevokeAll(ctx context.Context, userID string) (int, error) {
	n, err := s.store.RevokeUserTokens(ctx, userID)
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "user tokens revoked", slog.String("user_id", userID), slog.Int("count", n))

	return n, nil
}

// findActive returns the matching active token, nil when nothing matches
func (s *Service) findActive(ctx context.Context, userID, refreshToken string) (*models.RefreshToken, error) {
	if userID == "" || refreshToken == "" {
		return nil, nil
	}

	tokens, err := s.store.GetUserTokens(ctx, userID, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			return nil, nil
		}
		return nil, err
	}

	now := s.now()
	for _, t := range tokens {
		if subtle.ConstantTimeCompare([]byte(t.Token), []byte(refreshToken)) == 1 && t.Active(now) {
			return t, nil
		}
	}

	return nil, nil
}
