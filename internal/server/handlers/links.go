package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/shortify/internal/apperr"
	"github.com/iudanet/shortify/internal/models"
	"github.com/iudanet/shortify/internal/server/links"
	"github.com/iudanet/shortify/pkg/api"
)

// LinkService операции над короткими ссылками
type LinkService interface {
	CreateShortLink(ctx context.Context, req links.CreateRequest) (*models.LinkEntry, error)
	Resolve(ctx context.Context, code string) (string, error)
	GetLink(ctx context.Context, linkID string) (*models.LinkEntry, error)
	ListActive(ctx context.Context) ([]*models.LinkEntry, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*models.LinkEntry, error)
	UpdateLink(ctx context.Context, req links.UpdateRequest) (*models.LinkEntry, error)
	RemoveLink(ctx context.Context, linkID, requesterID string, privileged bool) error
}

// LinksHandler обрабатывает запросы к коротким ссылкам
type LinksHandler struct {
	logger  *slog.Logger
	links   LinkService
	baseURL string
}

// NewLinksHandler создает новый handler для ссылок.
// baseURL используется для построения shortUrl в ответах.
func NewLinksHandler(logger *slog.Logger, links LinkService, baseURL string) *LinksHandler {
	return &LinksHandler{
		logger:  logger,
		links:   links,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Create обрабатывает POST /api/v1/links
// Анонимный запрос создает ссылку без владельца
func (h *LinksHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateLinkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode create link request", slog.Any("error", err))
		WriteFail(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	create := links.CreateRequest{
		URL:         req.URL,
		Title:       req.Title,
		Description: req.Description,
		CodeLength:  req.Length,
	}
	if claims, ok := ClaimsFromContext(ctx); ok {
		userID := claims.UserID()
		create.CreatedBy = &userID
	}

	link, err := h.links.CreateShortLink(ctx, create)
	// код заняли между проверкой и вставкой, одна повторная попытка
	if errors.Is(err, apperr.ErrDuplicateCode) {
		h.logger.InfoContext(ctx, "short code taken concurrently, retrying")
		link, err = h.links.CreateShortLink(ctx, create)
	}
	if err != nil {
		writeError(w, r, h.logger, "failed to create short link", err)
		return
	}

	writeOK(w, h.logger, h.toResponse(link), http.StatusCreated)
}

// List обрабатывает GET /api/v1/links
func (h *LinksHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.links.ListActive(r.Context())
	if err != nil {
		writeError(w, r, h.logger, "failed to list links", err)
		return
	}
	writeOK(w, h.logger, h.toResponses(entries), http.StatusOK)
}

// ListMine обрабатывает GET /api/v1/links/mine
func (h *LinksHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, "missing claims", apperr.ErrInvalidToken)
		return
	}

	entries, err := h.links.ListByCreator(r.Context(), claims.UserID())
	if err != nil {
		writeError(w, r, h.logger, "failed to list user links", err)
		return
	}
	writeOK(w, h.logger, h.toResponses(entries), http.StatusOK)
}

// Get обрабатывает GET /api/v1/links/{id}
func (h *LinksHandler) Get(w http.ResponseWriter, r *http.Request) {
	link, err := h.links.GetLink(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.logger, "failed to get link", err)
		return
	}
	writeOK(w, h.logger, h.toResponse(link), http.StatusOK)
}

// Update обрабатывает PUT /api/v1/links/{id}
func (h *LinksHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		writeError(w, r, h.logger, "missing claims", apperr.ErrInvalidToken)
		return
	}

	var req api.UpdateLinkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode update link request", slog.Any("error", err))
		WriteFail(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	link, err := h.links.UpdateLink(ctx, links.UpdateRequest{
		LinkID:      r.PathValue("id"),
		RequesterID: claims.UserID(),
		URL:         req.URL,
		Title:       req.Title,
		Description: req.Description,
		Privileged:  isAdmin(claims),
	})
	if err != nil {
		writeError(w, r, h.logger, "failed to update link", err)
		return
	}
	writeOK(w, h.logger, h.toResponse(link), http.StatusOK)
}

// Delete обрабатывает DELETE /api/v1/links/{id}
// Admin может удалить любую ссылку
func (h *LinksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, h.logger, "missing claims", apperr.ErrInvalidToken)
		return
	}

	if err := h.links.RemoveLink(r.Context(), r.PathValue("id"), claims.UserID(), isAdmin(claims)); err != nil {
		writeError(w, r, h.logger, "failed to remove link", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Redirect обрабатывает GET /r/{code}
func (h *LinksHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	target, err := h.links.Resolve(r.Context(), r.PathValue("code"))
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			http.NotFound(w, r)
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to resolve short code", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *LinksHandler) toResponse(link *models.LinkEntry) api.LinkResponse {
	return api.LinkResponse{
		CreatedAt:   link.CreatedAt,
		UpdatedAt:   link.UpdatedAt,
		CreatedBy:   link.CreatedBy,
		ID:          link.ID,
		OriginalURL: link.OriginalURL,
		ShortCode:   link.ShortCode,
		ShortURL:    h.baseURL + "/r/" + link.ShortCode,
		Title:       link.Title,
		Description: link.Description,
	}
}

func (h *LinksHandler) toResponses(entries []*models.LinkEntry) []api.LinkResponse {
	out := make([]api.LinkResponse, 0, len(entries))
	for _, link := range entries {
		out = append(out, h.toResponse(link))
	}
	return out
}
