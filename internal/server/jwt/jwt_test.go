package jwt

import (
	"bytes"
	"encoding/base64"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/shortify/internal/apperr"
)

func testConfig() Config {
	return Config{
		Issuer:     "shortify",
		Audience:   "shortify-clients",
		Secret:     []byte("test-secret-key-at-least-32-bytes!!"),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}
}

func newTestService(now time.Time) *Service {
	s := NewService(testConfig(), nil)
	s.now = func() time.Time { return now }
	return s
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	now := time.Now()
	s := newTestService(now)

	token, expiresAt, err := s.GenerateAccessToken("user-1", "u@example.com", "User")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, now.Add(15*time.Minute), expiresAt)

	claims, err := s.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "u@example.com", claims.Email)
	assert.Equal(t, "User", claims.Role)
	assert.Equal(t, "shortify", claims.Issuer)
	assert.Equal(t, jwtlib.ClaimStrings{"shortify-clients"}, claims.Audience)
}

func TestGenerateAccessToken_Deterministic(t *testing.T) {
	now := time.Unix(1700000000, 0)
	s := newTestService(now)

	first, _, err := s.GenerateAccessToken("user-1", "u@example.com", "User")
	require.NoError(t, err)
	second, _, err := s.GenerateAccessToken("user-1", "u@example.com", "User")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestValidationPolicies(t *testing.T) {
	issuedAt := time.Now().Add(-time.Hour)
	issuer := newTestService(issuedAt)

	expired, _, err := issuer.GenerateAccessToken("user-1", "u@example.com", "User")
	require.NoError(t, err)

	other := NewService(Config{
		Issuer:    "shortify",
		Audience:  "shortify-clients",
		Secret:    []byte("another-secret-key-at-least-32b!!!"),
		AccessTTL: 15 * time.Minute,
	}, nil)
	foreign, _, err := other.GenerateAccessToken("user-1", "u@example.com", "User")
	require.NoError(t, err)

	wrongIssuer := NewService(Config{
		Issuer:    "someone-else",
		Audience:  "shortify-clients",
		Secret:    testConfig().Secret,
		AccessTTL: 15 * time.Minute,
	}, nil)
	alien, _, err := wrongIssuer.GenerateAccessToken("user-1", "u@example.com", "User")
	require.NoError(t, err)

	hs512, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS512, Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{Subject: "user-1"},
	}).SignedString(testConfig().Secret)
	require.NoError(t, err)

	none, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{Subject: "user-1"},
	}).SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, Claims{
		Role: "User",
	}).SignedString(testConfig().Secret)
	require.NoError(t, err)

	s := newTestService(time.Now())

	tests := []struct {
		name        string
		token       string
		wantFull    bool
		wantExpired bool
	}{
		{name: "expired token", token: expired, wantFull: false, wantExpired: true},
		{name: "foreign signature", token: foreign, wantFull: false, wantExpired: false},
		{name: "wrong issuer", token: alien, wantFull: false, wantExpired: true},
		{name: "HS512 algorithm", token: hs512, wantFull: false, wantExpired: false},
		{name: "alg none", token: none, wantFull: false, wantExpired: false},
		{name: "missing subject", token: noSubject, wantFull: false, wantExpired: false},
		{name: "garbage", token: "not.a.jwt", wantFull: false, wantExpired: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.ValidateAccessToken(tt.token)
			if tt.wantFull {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, apperr.ErrInvalidToken)
			}

			claims, err := s.ParseExpiredAccessToken(tt.token)
			if tt.wantExpired {
				require.NoError(t, err)
				assert.Equal(t, "user-1", claims.UserID())
			} else {
				assert.ErrorIs(t, err, apperr.ErrInvalidToken)
			}
		})
	}
}

func TestGenerateRefreshToken(t *testing.T) {
	entropy := bytes.Repeat([]byte{0xAB}, 64)
	s := NewService(testConfig(), bytes.NewReader(entropy))

	first, err := s.GenerateRefreshToken()
	require.NoError(t, err)
	assert.Equal(t, base64.URLEncoding.EncodeToString(entropy[:32]), first)

	raw, err := base64.URLEncoding.DecodeString(first)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	second, err := s.GenerateRefreshToken()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// энтропия закончилась
	_, err = s.GenerateRefreshToken()
	assert.Error(t, err)
}

func TestGenerateRefreshToken_Random(t *testing.T) {
	s := NewService(testConfig(), nil)

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		token, err := s.GenerateRefreshToken()
		require.NoError(t, err)
		_, dup := seen[token]
		require.False(t, dup)
		seen[token] = struct{}{}
	}
}
