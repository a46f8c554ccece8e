// Package storage defines the local state kept by the shortify client.
package storage

import (
	"context"
	"errors"
	"time"
)

// Common client storage errors
var (
	// ErrSessionNotFound indicates that no session is stored
	ErrSessionNotFound = errors.New("session not found")
)

// SessionStorage хранит текущую сессию пользователя
type SessionStorage interface {
	SaveSession(ctx context.Context, s *Session) error
	// GetSession returns ErrSessionNotFound when nobody is logged in
	GetSession(ctx context.Context) (*Session, error)
	// DeleteSession is a no-op when nothing is stored
	DeleteSession(ctx context.Context) error
}

// HistoryStorage хранит ссылки, созданные с этого клиента
type HistoryStorage interface {
	AddLink(ctx context.Context, link *LinkRecord) error
	ListLinks(ctx context.Context) ([]*LinkRecord, error)
	RemoveLink(ctx context.Context, code string) error
}

// Session is a stored token pair with the identity it belongs to
type Session struct {
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
	UserID           string    `json:"user_id"`
	Email            string    `json:"email"`
	Username         string    `json:"username"`
	Role             string    `json:"role"`
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
}

// Expired reports whether the refresh token can no longer be used at now
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.RefreshExpiresAt)
}

// LinkRecord is a short link created from this client
type LinkRecord struct {
	CreatedAt   time.Time `json:"created_at"`
	ID          string    `json:"id"`
	ShortCode   string    `json:"short_code"`
	ShortURL    string    `json:"short_url"`
	OriginalURL string    `json:"original_url"`
	// пусто для анонимных ссылок
	Owner string `json:"owner,omitempty"`
}
