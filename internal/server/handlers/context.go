package handlers

import (
	"context"

	"github.com/iudanet/shortify/internal/models"
	"github.com/iudanet/shortify/internal/server/jwt"
)

type contextKey string

// ClaimsKey is the context key for access token claims
const ClaimsKey contextKey = "claims"

// WithClaims stores verified access token claims in ctx
func WithClaims(ctx context.Context, claims *jwt.Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, claims)
}

// ClaimsFromContext returns claims stored by the auth middleware
func ClaimsFromContext(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*jwt.Claims)
	return claims, ok && claims != nil
}

func isAdmin(claims *jwt.Claims) bool {
	return claims != nil && claims.Role == models.RoleAdmin
}
