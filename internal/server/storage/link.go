package storage

import (
	"context"

	"github.com/iudanet/shortify/internal/models"
)

// LinkStorage defines interface for short link persistence.
// Deleted links are invisible to every read except where noted.
type LinkStorage interface {
	// CreateLink inserts a new link
	// Returns ErrDuplicateCode if an active link already uses the same short code
	CreateLink(ctx context.Context, link *models.LinkEntry) error

	// GetLinkByID retrieves an active link by ID
	// Returns ErrLinkNotFound if link doesn't exist or is deleted
	GetLinkByID(ctx context.Context, id string) (*models.LinkEntry, error)

	// GetActiveLinkByCode retrieves an active link by its short code
	// Returns ErrLinkNotFound if no active link has this code
	GetActiveLinkByCode(ctx context.Context, code string) (*models.LinkEntry, error)

	// ActiveCodeExists reports whether an active link already uses the code
	ActiveCodeExists(ctx context.Context, code string) (bool, error)

	// ListActiveLinks retrieves all active links, newest first
	// Returns ErrNoLinks if there are none
	ListActiveLinks(ctx context.Context) ([]*models.LinkEntry, error)

	// ListLinksByCreator retrieves active links created by the user, newest first
	// Returns ErrNoLinks if there are none
	ListLinksByCreator(ctx context.Context, creatorID string) ([]*models.LinkEntry, error)

	// CountActiveLinks returns number of active links
	CountActiveLinks(ctx context.Context) (int, error)

	// UpdateLink updates original URL, title and description of an active link
	// Returns ErrLinkNotFound if link doesn't exist or is deleted
	UpdateLink(ctx context.Context, link *models.LinkEntry) error

	// SoftDeleteLink marks link as deleted
	// Returns ErrLinkNotFound if link doesn't exist or is already deleted
	SoftDeleteLink(ctx context.Context, id string) error
}
