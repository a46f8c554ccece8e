package middleware

import (
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/iudanet/shortify/internal/apperr"
	"github.com/iudanet/shortify/internal/server/handlers"
	"github.com/iudanet/shortify/internal/server/jwt"
)

// TokenValidator проверяет access token по полной политике
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (*jwt.Claims, error)
}

// AuthMiddleware создает middleware для проверки JWT токена
func AuthMiddleware(logger *slog.Logger, validator TokenValidator) func(http.Handler) http.Handler {
	return authenticate(logger, validator, false)
}

// OptionalAuth пропускает анонимные запросы, но отклоняет невалидный токен
func OptionalAuth(logger *slog.Logger, validator TokenValidator) func(http.Handler) http.Handler {
	return authenticate(logger, validator, true)
}

func authenticate(logger *slog.Logger, validator TokenValidator, optional bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Извлекаем токен из заголовка Authorization
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				if optional {
					next.ServeHTTP(w, r)
					return
				}
				logger.WarnContext(r.Context(), "missing Authorization header")
				handlers.WriteFail(w, logger, http.StatusUnauthorized, "missing token")
				return
			}

			// Ожидаем формат: "Bearer <token>"
			scheme, tokenString, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || tokenString == "" {
				logger.WarnContext(r.Context(), "invalid Authorization header format")
				handlers.WriteFail(w, logger, http.StatusUnauthorized, "invalid token format")
				return
			}

			claims, err := validator.ValidateAccessToken(strings.TrimSpace(tokenString))
			if err != nil {
				logger.WarnContext(r.Context(), "invalid access token", slog.String("reason", err.Error()))
				handlers.WriteFail(w, logger, http.StatusUnauthorized, apperr.ErrInvalidToken.Error())
				return
			}

			logger.DebugContext(r.Context(), "user authenticated",
				slog.String("user_id", claims.UserID()),
				slog.String("role", claims.Role))

			next.ServeHTTP(w, r.WithContext(handlers.WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole пропускает только пользователей с одной из ролей.
// Должен стоять после AuthMiddleware.
func RequireRole(logger *slog.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := handlers.ClaimsFromContext(r.Context())
			if !ok {
				handlers.WriteFail(w, logger, http.StatusUnauthorized, "missing token")
				return
			}
			if !slices.Contains(roles, claims.Role) {
				logger.WarnContext(r.Context(), "role not permitted",
					slog.String("user_id", claims.UserID()),
					slog.String("role", claims.Role))
				handlers.WriteFail(w, logger, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
