// Package jwt mints and verifies access tokens and mints opaque refresh tokens.
package jwt

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/iudanet/shortify/internal/apperr"
)

const refreshTokenBytes = 32

// Config содержит параметры подписи, загружается один раз при старте
type Config struct {
	Issuer     string
	Audience   string
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Claims represents access token claims
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwtlib.RegisteredClaims
}

// UserID returns the token subject
func (c *Claims) UserID() string {
	return c.Subject
}

// Service provides JWT token generation and validation
type Service struct {
	rand io.Reader
	now  func() time.Time
	cfg  Config
}

// NewService creates a new JWT service
// r is the entropy source for refresh tokens, nil means crypto/rand
func NewService(cfg Config, r io.Reader) *Service {
	if r == nil {
		r = rand.Reader
	}
	return &Service{cfg: cfg, rand: r, now: time.Now}
}

// RefreshTTL returns lifetime of refresh tokens
func (s *Service) RefreshTTL() time.Duration {
	return s.cfg.RefreshTTL
}

// GenerateAccessToken creates a signed HS256 access token
// Returns the token and its expiry
func (s *Service) GenerateAccessToken(userID, email, role string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.cfg.AccessTTL)

	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.cfg.Issuer,
			Audience:  jwtlib.ClaimStrings{s.cfg.Audience},
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			IssuedAt:  jwtlib.NewNumericDate(now),
			NotBefore: jwtlib.NewNumericDate(now),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.cfg.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// GenerateRefreshToken creates a new random refresh token
func (s *Service) GenerateRefreshToken() (string, error) {
	// Генерируем случайные 32 байта
	tokenBytes := make([]byte, refreshTokenBytes)
	if _, err := io.ReadFull(s.rand, tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.URLEncoding.EncodeToString(tokenBytes), nil
}

// ValidateAccessToken checks signature, algorithm, expiry, issuer and audience
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.parse(tokenString,
		jwtlib.WithIssuer(s.cfg.Issuer),
		jwtlib.WithAudience(s.cfg.Audience),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(s.now),
	)
}

// ParseExpiredAccessToken checks signature, algorithm and structure only.
// Lifetime is not checked: the only caller is refresh token rotation, which
// receives access tokens that have usually expired already.
func (s *Service) ParseExpiredAccessToken(tokenString string) (*Claims, error) {
	return s.parse(tokenString, jwtlib.WithoutClaimsValidation())
}

func (s *Service) parse(tokenString string, opts ...jwtlib.ParserOption) (*Claims, error) {
	opts = append(opts, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))

	claims := &Claims{}
	token, err := jwtlib.ParseWithClaims(tokenString, claims, func(token *jwtlib.Token) (interface{}, error) {
		// Проверяем что используется правильный алгоритм подписи
		if _, ok := token.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.cfg.Secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, apperr.ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidToken, errors.New("missing subject"))
	}

	return claims, nil
}
