// Package links creates, resolves and manages short links.
package links

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/shortify/internal/apperr"
	"github.com/iudanet/shortify/internal/models"
	"github.com/iudanet/shortify/internal/server/cache"
	"github.com/iudanet/shortify/internal/server/storage"
	"github.com/iudanet/shortify/internal/shortcode"
	"github.com/iudanet/shortify/internal/validation"
)

// MaxAttempts bounds the number of candidate codes tried per creation
const MaxAttempts = 6

// CodeGenerator produces random short codes
type CodeGenerator interface {
	Generate(length int) (string, error)
}

// CreateRequest описывает запрос на сокращение ссылки
type CreateRequest struct {
	CreatedBy   *string // nil для анонимной ссылки
	URL         string
	Title       string
	Description string
	CodeLength  int // 0 означает длину по умолчанию
}

// UpdateRequest описывает изменение ссылки
type UpdateRequest struct {
	LinkID      string
	RequesterID string
	URL         string
	Title       string
	Description string
	Privileged  bool
}

// Service предоставляет операции над короткими ссылками
type Service struct {
	store         storage.LinkStorage
	generator     CodeGenerator
	cache         cache.Cache
	logger        *slog.Logger
	now           func() time.Time
	defaultLength int
}

// NewService создает сервис ссылок
// nil cache disables redirect caching
func NewService(logger *slog.Logger, store storage.LinkStorage, generator CodeGenerator, c cache.Cache, defaultLength int) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	if defaultLength <= 0 {
		defaultLength = shortcode.DefaultLength
	}
	return &Service{
		store:         store,
		generator:     generator,
		cache:         c,
		logger:        logger,
		now:           time.Now,
		defaultLength: defaultLength,
	}
}

// CreateShortLink validates the URL and persists a link under a fresh code.
// Candidates already used by an active link are discarded, at most MaxAttempts times.
// Returns apperr.ErrDuplicateCode if a concurrent writer claimed the code between
// the check and the insert; the caller may retry once.
func (s *Service) CreateShortLink(ctx context.Context, req CreateRequest) (*models.LinkEntry, error) {
	if err := validation.ValidateURL(req.URL); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidURL, err)
	}

	length := req.CodeLength
	if length == 0 {
		length = s.defaultLength
	}
	if length < 0 || length > shortcode.MaxLength {
		return nil, apperr.ErrInvalidCodeLength
	}

	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		code, err := s.generator.Generate(length)
		if err != nil {
			return nil, fmt.Errorf("failed to generate code: %w", err)
		}

		taken, err := s.store.ActiveCodeExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if taken {
			s.logger.DebugContext(ctx, "short code collision", slog.Int("attempt", attempt), slog.Int("length", length))
			continue
		}

		now := s.now()
		link := &models.LinkEntry{
			ID:          uuid.New().String(),
			OriginalURL: req.URL,
			ShortCode:   code,
			CreatedBy:   req.CreatedBy,
			Title:       req.Title,
			Description: req.Description,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := s.store.CreateLink(ctx, link); err != nil {
			if errors.Is(err, storage.ErrDuplicateCode) {
				return nil, apperr.ErrDuplicateCode
			}
			return nil, err
		}

		s.logger.InfoContext(ctx, "short link created",
			slog.String("link_id", link.ID),
			slog.String("code", code))

		return link, nil
	}

	s.logger.WarnContext(ctx, "short code generation exhausted", slog.Int("length", length))
	return nil, apperr.ErrCodeGenerationExhausted
}

// Resolve returns the original URL of the active link with the given code
func (s *Service) Resolve(ctx context.Context, code string) (string, error) {
	if url, err := s.cache.Get(ctx, code); err == nil {
		return url, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.WarnContext(ctx, "redirect cache read failed", slog.Any("error", err))
	}

	link, err := s.store.GetActiveLinkByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, storage.ErrLinkNotFound) {
			return "", err
		}

		// различаем "нет такой ссылки" и "нет ни одной ссылки"
		n, cerr := s.store.CountActiveLinks(ctx)
		if cerr != nil {
			return "", cerr
		}
		if n == 0 {
			return "", apperr.ErrNoLinksAvailable
		}
		return "", apperr.ErrLinkNotFound
	}

	if err := s.cache.Set(ctx, code, link.OriginalURL); err != nil {
		s.logger.WarnContext(ctx, "redirect cache write failed", slog.Any("error", err))
		return link.OriginalURL, nil
	}

	// ссылку могли удалить или изменить между чтением и записью в кэш
	s.recheck(ctx, code, link.OriginalURL)

	return link.OriginalURL, nil
}

// recheck drops the cached entry unless the store still maps code to url
func (s *Service) recheck(ctx context.Context, code, url string) {
	current, err := s.store.GetActiveLinkByCode(ctx, code)
	if err == nil && current.OriginalURL == url {
		return
	}
	if err != nil && !errors.Is(err, storage.ErrLinkNotFound) {
		s.logger.WarnContext(ctx, "redirect cache recheck failed", slog.Any("error", err))
	}
	s.invalidate(ctx, code)
}

// GetLink returns an active link by ID
func (s *Service) GetLink(ctx context.Context, linkID string) (*models.LinkEntry, error) {
	link, err := s.store.GetLinkByID(ctx, linkID)
	if err != nil {
		if errors.Is(err, storage.ErrLinkNotFound) {
			return nil, apperr.ErrLinkNotFound
		}
		return nil, err
	}
	return link, nil
}

// ListActive returns every active link, newest first
func (s *Service) ListActive(ctx context.Context) ([]*models.LinkEntry, error) {
	return s.list(s.store.ListActiveLinks(ctx))
}

// ListByCreator returns active links created by the user, newest first
func (s *Service) ListByCreator(ctx context.Context, creatorID string) ([]*models.LinkEntry, error) {
	return s.list(s.store.ListLinksByCreator(ctx, creatorID))
}

func (s *Service) list(links []*models.LinkEntry, err error) ([]*models.LinkEntry, error) {
	if err != nil {
		if errors.Is(err, storage.ErrNoLinks) {
			return nil, apperr.ErrNoLinksAvailable
		}
		return nil, err
	}
	return links, nil
}

// UpdateLink changes URL, title and description; only the creator or a privileged user may do it
func (s *Service) UpdateLink(ctx context.Context, req UpdateRequest) (*models.LinkEntry, error) {
	if err := validation.ValidateURL(req.URL); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrInvalidURL, err)
	}

	link, err := s.authorize(ctx, req.LinkID, req.RequesterID, req.Privileged)
	if err != nil {
		return nil, err
	}

	link.OriginalURL = req.URL
	link.Title = req.Title
	link.Description = req.Description
	link.UpdatedAt = s.now()

	if err := s.store.UpdateLink(ctx, link); err != nil {
		if errors.Is(err, storage.ErrLinkNotFound) {
			return nil, apperr.ErrLinkNotFound
		}
		return nil, err
	}

	s.invalidate(ctx, link.ShortCode)

	s.logger.InfoContext(ctx, "short link updated", slog.String("link_id", link.ID))

	return link, nil
}

// RemoveLink soft-deletes a link; only the creator or a privileged user may do it
func (s *Service) RemoveLink(ctx context.Context, linkID, requesterID string, privileged bool) error {
	link, err := s.authorize(ctx, linkID, requesterID, privileged)
	if err != nil {
		return err
	}

	if err := s.store.SoftDeleteLink(ctx, link.ID); err != nil {
		if errors.Is(err, storage.ErrLinkNotFound) {
			return apperr.ErrLinkNotFound
		}
		return err
	}

	s.invalidate(ctx, link.ShortCode)

	s.logger.InfoContext(ctx, "short link removed",
		slog.String("link_id", link.ID),
		slog.String("requester_id", requesterID))

	return nil
}

func (s *Service) authorize(ctx context.Context, linkID, requesterID string, privileged bool) (*models.LinkEntry, error) {
	link, err := s.GetLink(ctx, linkID)
	if err != nil {
		return nil, err
	}

	if !privileged && !link.OwnedBy(requesterID) {
		s.logger.WarnContext(ctx, "link access denied",
			slog.String("link_id", linkID),
			slog.String("requester_id", requesterID))
		return nil, apperr.ErrForbidden
	}

	return link, nil
}

func (s *Service) invalidate(ctx context.Context, code string) {
	if err := s.cache.Delete(ctx, code); err != nil {
		s.logger.WarnContext(ctx, "redirect cache invalidation failed", slog.Any("error", err))
	}
}
