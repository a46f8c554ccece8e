package models

import "time"

// LinkEntry представляет одно соответствие короткий код -> исходный URL
type LinkEntry struct {
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	CreatedBy   *string    `json:"created_by,omitempty"` // nil для анонимных ссылок
	ID          string     `json:"id"`
	OriginalURL string     `json:"original_url"`
	ShortCode   string     `json:"short_code"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	IsDeleted   bool       `json:"is_deleted"`
}

// OwnedBy reports whether userID created the link. Anonymous links have no owner.
func (l *LinkEntry) OwnedBy(userID string) bool {
	return l.CreatedBy != nil && userID != "" && *l.CreatedBy == userID
}
