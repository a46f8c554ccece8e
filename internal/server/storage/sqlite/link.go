package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/shortify/internal/models"
	"github.com/iudanet/shortify/internal/server/storage"
)

const linkColumns = `id, original_url, short_code, created_by, title, description, created_at, updated_at, deleted_at, is_deleted`

// CreateLink inserts a new link
func (s *Storage) CreateLink(ctx context.Context, link *models.LinkEntry) error {
	query := `
		INSERT INTO links (id, original_url, short_code, created_by, title, description, created_at, updated_at, is_deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0)
	`

	_, err := s.db.ExecContext(ctx, query,
		link.ID,
		link.OriginalURL,
		link.ShortCode,
		nullString(link.CreatedBy),
		link.Title,
		link.Description,
		link.CreatedAt,
		link.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicateCode
		}
		return fmt.Errorf("failed to insert link: %w", err)
	}

	return nil
}

// GetLinkByID retrieves an active link by ID
func (s *Storage) GetLinkByID(ctx context.Context, id string) (*models.LinkEntry, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = ? AND is_deleted = 0`

	return s.getLink(ctx, query, id)
}

// GetActiveLinkByCode retrieves an active link by short code
func (s *Storage) GetActiveLinkByCode(ctx context.Context, code string) (*models.LinkEntry, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE short_code = ? AND is_deleted = 0`

	return s.getLink(ctx, query, code)
}

func (s *Storage) getLink(ctx context.Context, query string, arg string) (*models.LinkEntry, error) {
	link, err := scanLink(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return link, nil
}

// ActiveCodeExists reports whether an active link already uses the code
func (s *Storage) ActiveCodeExists(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM links WHERE short_code = ? AND is_deleted = 0)`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check short code: %w", err)
	}

	return exists, nil
}

// ListActiveLinks retrieves all active links
func (s *Storage) ListActiveLinks(ctx context.Context) ([]*models.LinkEntry, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE is_deleted = 0 ORDER BY created_at DESC`

	return s.listLinks(ctx, query)
}

// ListLinksByCreator retrieves active links created by the user
func (s *Storage) ListLinksByCreator(ctx context.Context, creatorID string) ([]*models.LinkEntry, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE created_by = ? AND is_deleted = 0 ORDER BY created_at DESC`

	return s.listLinks(ctx, query, creatorID)
}

func (s *Storage) listLinks(ctx context.Context, query string, args ...any) ([]*models.LinkEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var links []*models.LinkEntry
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	if len(links) == 0 {
		return nil, storage.ErrNoLinks
	}

	return links, nil
}

// CountActiveLinks returns number of active links
func (s *Storage) CountActiveLinks(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM links WHERE is_deleted = 0`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count links: %w", err)
	}
	return n, nil
}

// UpdateLink updates mutable fields of an active link
func (s *Storage) UpdateLink(ctx context.Context, link *models.LinkEntry) error {
	query := `
		UPDATE links
		SET original_url = ?, title = ?, description = ?, updated_at = ?
		WHERE id = ? AND is_deleted = 0
	`

	result, err := s.db.ExecContext(ctx, query,
		link.OriginalURL,
		link.Title,
		link.Description,
		link.UpdatedAt,
		link.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update link: %w", err)
	}

	return expectOneRow(result, storage.ErrLinkNotFound)
}

// SoftDeleteLink marks link as deleted
func (s *Storage) SoftDeleteLink(ctx context.Context, id string) error {
	query := `UPDATE links SET is_deleted = 1, deleted_at = ? WHERE id = ? AND is_deleted = 0`

	result, err := s.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	return expectOneRow(result, storage.ErrLinkNotFound)
}

func expectOneRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return notFound
	}

	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func scanLink(row rowScanner) (*models.LinkEntry, error) {
	link := &models.LinkEntry{}
	var (
		createdBy sql.NullString
		deletedAt sql.NullTime
	)

	if err := row.Scan(
		&link.ID,
		&link.OriginalURL,
		&link.ShortCode,
		&createdBy,
		&link.Title,
		&link.Description,
		&link.CreatedAt,
		&link.UpdatedAt,
		&deletedAt,
		&link.IsDeleted,
	); err != nil {
		return nil, err
	}

	if createdBy.Valid {
		link.CreatedBy = &createdBy.String
	}
	if deletedAt.Valid {
		link.DeletedAt = &deletedAt.Time
	}

	return link, nil
}
