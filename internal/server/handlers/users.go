package handlers

import (
	"log/slog"
	"net/http"

	"github.com/iudanet/shortify/pkg/api"
)

// UsersHandler отдает профили пользователей и управляет ролями
type UsersHandler struct {
	logger   *slog.Logger
	identity IdentityProvider
}

// NewUsersHandler создает новый handler для пользователей
func NewUsersHandler(logger *slog.Logger, identity IdentityProvider) *UsersHandler {
	return &UsersHandler{logger: logger, identity: identity}
}

// Get обрабатывает GET /api/v1/users/{id}
func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.identity.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, "failed to get user", err)
		return
	}

	writeOK(w, h.logger, api.UserResponse{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
	}, http.StatusOK)
}

// AddRole обрабатывает POST /api/v1/users/{id}/roles
// Доступен только Admin (см. RequireRole)
func (h *UsersHandler) AddRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := r.PathValue("id")

	var req api.AddRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode add role request", slog.Any("error", err))
		WriteFail(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.identity.AddToRole(ctx, userID, req.Role); err != nil {
		writeError(w, r, h.logger, "failed to add role", err)
		return
	}

	roles, err := h.identity.RolesOf(ctx, userID)
	if err != nil {
		writeError(w, r, h.logger, "failed to load roles", err)
		return
	}

	writeOK(w, h.logger, api.RolesResponse{Roles: roles}, http.StatusOK)
}
