package models

import "time"

// Роли пользователей
const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)

// PrimaryRole picks the role that goes into an access token: Admin wins over
// any other grant, otherwise the earliest one. Empty roles yield "".
func PrimaryRole(roles []string) string {
	if len(roles) == 0 {
		return ""
	}
	for _, r := range roles {
		if r == RoleAdmin {
			return RoleAdmin
		}
	}
	return roles[0]
}

// User представляет пользователя в системе
type User struct {
	CreatedAt    time.Time `json:"created_at"` // время создания
	ID           string    `json:"id"`         // UUID пользователя
	Email        string    `json:"email"`      // уникальный email
	Username     string    `json:"username"`   // отображаемое имя
	PasswordHash string    `json:"-"`          // bcrypt хеш пароля
}

// RefreshToken представляет refresh token пользователя.
// Токен пригоден для использования, пока !Revoked && now < ExpiresAt.
type RefreshToken struct {
	ExpiresAt time.Time `json:"expires_at"` // время истечения
	CreatedAt time.Time `json:"created_at"` // время создания
	ID        string    `json:"id"`         // UUID записи
	UserID    string    `json:"user_id"`    // ID пользователя
	Token     string    `json:"-"`          // непрозрачное значение токена
	Revoked   bool      `json:"revoked"`
}

// Active reports whether the token can still be exchanged at the given moment.
func (t *RefreshToken) Active(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}
