package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/shortify/internal/apperr"
	"github.com/iudanet/shortify/internal/models"
	"github.com/iudanet/shortify/internal/server/tokens"
	"github.com/iudanet/shortify/internal/validation"
	"github.com/iudanet/shortify/pkg/api"
)

// RefreshCookieName имя cookie с refresh token
const RefreshCookieName = "refreshToken"

var errRoleNotAllowed = apperr.New(apperr.InvalidInput, "role is not available for self-registration")

// IdentityProvider управляет учетными записями
type IdentityProvider interface {
	FindByID(ctx context.Context, userID string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, email, username, password, role string) (*models.User, error)
	CheckPassword(user *models.User, password string) bool
	RolesOf(ctx context.Context, userID string) ([]string, error)
	AddToRole(ctx context.Context, userID, role string) error
}

// TokenService выпускает и отзывает токены
type TokenService interface {
	IssuePair(ctx context.Context, user *models.User, role string) (*tokens.Pair, error)
	Rotate(ctx context.Context, accessToken, refreshToken string) (*tokens.Pair, error)
	Revoke(ctx context.Context, refreshToken string) error
	RevokeAll(ctx context.Context, userID string) (int, error)
}

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	logger       *slog.Logger
	identity     IdentityProvider
	tokens       TokenService
	secureCookie bool
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, identity IdentityProvider, tokens TokenService, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		logger:       logger,
		identity:     identity,
		tokens:       tokens,
		secureCookie: secureCookie,
	}
}

// Register обрабатывает POST /api/v1/auth/register
// Регистрация нового пользователя, в ответе сразу выдается пара токенов
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode register request", slog.Any("error", err))
		WriteFail(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if err := validation.ValidateRole(role); err != nil {
		writeError(w, r, h.logger, "invalid role", apperr.New(apperr.InvalidInput, err.Error()))
		return
	}
	// Admin создается только через cmd/admin
	if role != models.RoleUser {
		writeError(w, r, h.logger, "role not allowed", errRoleNotAllowed)
		return
	}

	user, err := h.identity.Create(ctx, req.Email, req.Username, req.Password, role)
	if err != nil {
		writeError(w, r, h.logger, "failed to create user", err)
		return
	}

	pair, err := h.tokens.IssuePair(ctx, user, role)
	if err != nil {
		writeError(w, r, h.logger, "failed to issue tokens", err)
		return
	}

	h.logger.InfoContext(ctx, "user registered successfully",
		slog.String("user_id", user.ID),
		slog.String("role", role))

	h.setRefreshCookie(w, pair)
	writeOK(w, h.logger, authResponse(user, pair), http.StatusCreated)
}

// Login обрабатывает POST /api/v1/auth/login
// Аутентификация пользователя по email и паролю
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", slog.Any("error", err))
		WriteFail(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.identity.FindByEmail(ctx, req.Email)
	if err != nil {
		// Не раскрываем, существует ли пользователь
		if errors.Is(err, apperr.ErrUserNotFound) {
			err = apperr.ErrInvalidCredentials
		}
		writeError(w, r, h.logger, "login failed", err)
		return
	}

	if !h.identity.CheckPassword(user, req.Password) {
		writeError(w, r, h.logger, "login failed", apperr.ErrInvalidCredentials)
		return
	}

	roles, err := h.identity.RolesOf(ctx, user.ID)
	if err != nil {
		writeError(w, r, h.logger, "failed to load roles", err)
		return
	}
	if len(roles) == 0 {
		writeError(w, r, h.logger, "login failed", apperr.ErrNoRoles)
		return
	}

	pair, err := h.tokens.IssuePair(ctx, user, models.PrimaryRole(roles))
	if err != nil {
		writeError(w, r, h.logger, "failed to issue tokens", err)
		return
	}

	h.logger.InfoContext(ctx, "user logged in successfully", slog.String("user_id", user.ID))

	h.setRefreshCookie(w, pair)
	writeOK(w, h.logger, authResponse(user, pair), http.StatusOK)
}

// Refresh обрабатывает POST /api/v1/auth/refresh
// Ротация пары токенов: refresh token берется из cookie, затем из тела запроса
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RefreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode refresh request", slog.Any("error", err))
		WriteFail(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	refreshToken := refreshTokenFrom(r, req.RefreshToken)
	if refreshToken == "" || req.AccessToken == "" {
		writeError(w, r, h.logger, "refresh failed", apperr.ErrInvalidRefreshToken)
		return
	}

	pair, err := h.tokens.Rotate(ctx, req.AccessToken, refreshToken)
	if err != nil {
		h.clearRefreshCookie(w)
		writeError(w, r, h.logger, "refresh failed", err)
		return
	}

	h.setRefreshCookie(w, pair)
	writeOK(w, h.logger, api.AuthResponse{
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		Role:             pair.Role,
	}, http.StatusOK)
}

// Logout обрабатывает POST /api/v1/auth/logout
// Отзывает текущий refresh token, повторный вызов не является ошибкой
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// тело необязательно, токен может прийти только в cookie
	var req api.RefreshRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		WriteFail(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	if token := refreshTokenFrom(r, req.RefreshToken); token != "" {
		if err := h.tokens.Revoke(ctx, token); err != nil {
			writeError(w, r, h.logger, "failed to revoke token", err)
			return
		}
	}

	h.clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// LogoutAll обрабатывает POST /api/v1/auth/logout-all
// Отзывает все refresh токены текущего пользователя
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		writeError(w, r, h.logger, "missing claims", apperr.ErrInvalidToken)
		return
	}

	n, err := h.tokens.RevokeAll(ctx, claims.UserID())
	if err != nil {
		writeError(w, r, h.logger, "failed to revoke tokens", err)
		return
	}

	h.logger.InfoContext(ctx, "all sessions revoked",
		slog.String("user_id", claims.UserID()),
		slog.Int("count", n))

	h.clearRefreshCookie(w)
	writeOK(w, h.logger, api.LogoutAllResponse{Revoked: n}, http.StatusOK)
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, pair *tokens.Pair) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    pair.RefreshToken,
		Path:     "/api/v1/auth",
		Expires:  pair.RefreshExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    "",
		Path:     "/api/v1/auth",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

func refreshTokenFrom(r *http.Request, fallback string) string {
	if c, err := r.Cookie(RefreshCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return fallback
}

func authResponse(user *models.User, pair *tokens.Pair) api.AuthResponse {
	return api.AuthResponse{
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		UserID:           user.ID,
		Email:            user.Email,
		Username:         user.Username,
		Role:             pair.Role,
	}
}
