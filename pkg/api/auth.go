package api

import "time"

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Email    string `json:"email"`          // email, используется как логин
	Username string `json:"username"`       // отображаемое имя
	Password string `json:"password"`       // пароль в открытом виде, хранится только bcrypt хеш
	Role     string `json:"role,omitempty"` // роль, по умолчанию User
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest представляет запрос на обновление пары токенов.
// RefreshToken может прийти в cookie, тогда в теле он не обязателен.
type RefreshRequest struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// AuthResponse представляет ответ с парой токенов
type AuthResponse struct {
	AccessExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshExpiresAt time.Time `json:"refreshTokenExpiresAt"`
	AccessToken      string    `json:"accessToken"`  // JWT access token
	RefreshToken     string    `json:"refreshToken"` // непрозрачный refresh token
	UserID           string    `json:"userId"`
	Email            string    `json:"email"`
	Username         string    `json:"userName"`
	Role             string    `json:"role"`
}

// LogoutAllResponse сообщает количество отозванных refresh токенов
type LogoutAllResponse struct {
	Revoked int `json:"revoked"`
}

// UserResponse представляет публичный профиль пользователя
type UserResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"userName"`
}

// AddRoleRequest представляет запрос на выдачу роли пользователю
type AddRoleRequest struct {
	Role string `json:"role"`
}

// RolesResponse список ролей пользователя
type RolesResponse struct {
	Roles []string `json:"roles"`
}
