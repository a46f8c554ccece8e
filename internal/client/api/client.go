package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iudanet/shortify/internal/result"
	"github.com/iudanet/shortify/pkg/api"
)

// Error описывает неуспешный ответ сервера
type Error struct {
	Messages   []string
	StatusCode int
}

func (e *Error) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("server error (%d)", e.StatusCode)
	}
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, strings.Join(e.Messages, "; "))
}

// IsUnauthorized reports whether err is a 401 response from the server
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsNotFound reports whether err is a 404 response from the server
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			// короткие ссылки не раскрываем автоматически
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Register регистрирует нового пользователя
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error) {
	var resp api.AuthResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/register", "", req, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

// Login выполняет аутентификацию пользователя
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error) {
	var resp api.AuthResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/login", "", req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Refresh обменивает пару токенов на новую
func (c *Client) Refresh(ctx context.Context, accessToken, refreshToken string) (*api.AuthResponse, error) {
	var resp api.AuthResponse
	req := api.RefreshRequest{AccessToken: accessToken, RefreshToken: refreshToken}
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/refresh", "", req, &resp); err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	return &resp, nil
}

// Logout отзывает refresh token
func (c *Client) Logout(ctx context.Context, accessToken, refreshToken string) error {
	req := api.RefreshRequest{RefreshToken: refreshToken}
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/logout", accessToken, req, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// LogoutAll отзывает все refresh токены пользователя
func (c *Client) LogoutAll(ctx context.Context, accessToken string) (int, error) {
	var resp api.LogoutAllResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/auth/logout-all", accessToken, nil, &resp); err != nil {
		return 0, fmt.Errorf("logout-all request failed: %w", err)
	}
	return resp.Revoked, nil
}

// CreateLink создает короткую ссылку; accessToken может быть пустым
func (c *Client) CreateLink(ctx context.Context, accessToken string, req api.CreateLinkRequest) (*api.LinkResponse, error) {
	var resp api.LinkResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/v1/links", accessToken, req, &resp); err != nil {
		return nil, fmt.Errorf("create link request failed: %w", err)
	}
	return &resp, nil
}

// ListMyLinks возвращает ссылки текущего пользователя
func (c *Client) ListMyLinks(ctx context.Context, accessToken string) ([]api.LinkResponse, error) {
	var resp []api.LinkResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/links/mine", accessToken, nil, &resp); err != nil {
		return nil, fmt.Errorf("list links request failed: %w", err)
	}
	return resp, nil
}

// DeleteLink удаляет ссылку по ID
func (c *Client) DeleteLink(ctx context.Context, accessToken, id string) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/api/v1/links/"+id, accessToken, nil, nil); err != nil {
		return fmt.Errorf("delete link request failed: %w", err)
	}
	return nil
}

// Resolve возвращает исходный URL для короткого кода без перехода по нему
func (c *Client) Resolve(ctx context.Context, code string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/r/"+code, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusFound {
		return "", &Error{StatusCode: resp.StatusCode}
	}
	return resp.Header.Get("Location"), nil
}

// doRequest выполняет HTTP запрос и разбирает конверт ответа
func (c *Client) doRequest(ctx context.Context, method, path, accessToken string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		var envelope result.Result[json.RawMessage]
		if err := json.Unmarshal(respBody, &envelope); err == nil {
			apiErr.Messages = envelope.Errors
		}
		return apiErr
	}

	// 204 и ответы без полезной нагрузки
	if out == nil || len(respBody) == 0 {
		return nil
	}

	envelope := result.Result[json.RawMessage]{}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if err := json.Unmarshal(envelope.Value, out); err != nil {
		return fmt.Errorf("failed to decode response payload: %w", err)
	}

	return nil
}
