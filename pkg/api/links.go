package api

import "time"

// CreateLinkRequest представляет запрос на сокращение ссылки
type CreateLinkRequest struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Length      int    `json:"length,omitempty"` // 0 означает длину по умолчанию
}

// UpdateLinkRequest представляет запрос на изменение ссылки
type UpdateLinkRequest struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// LinkResponse представляет короткую ссылку
type LinkResponse struct {
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	CreatedBy   *string   `json:"createdBy,omitempty"`
	ID          string    `json:"id"`
	OriginalURL string    `json:"originalUrl"`
	ShortCode   string    `json:"shortCode"`
	ShortURL    string    `json:"shortUrl"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
}
