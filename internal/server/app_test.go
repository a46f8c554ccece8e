package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/shortify/internal/models"
	"github.com/iudanet/shortify/internal/result"
	"github.com/iudanet/shortify/internal/server/config"
	"github.com/iudanet/shortify/internal/server/identity"
	"github.com/iudanet/shortify/pkg/api"
)

type testClient struct {
	t      *testing.T
	app    *App
	srv    *httptest.Server
	client *http.Client
}

func newTestApp(t *testing.T, mutate func(c *config.Config)) *testClient {
	t.Helper()

	var cfg config.Config
	cfg.LoadDefaults()
	cfg.DatabaseDSN = ":memory:"
	cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
	cfg.BaseURL = "https://sho.rt"
	cfg.SecureCookies = false
	if mutate != nil {
		mutate(&cfg)
	}
	require.NoError(t, cfg.Validate())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := NewApp(context.Background(), &cfg, logger, "test")
	require.NoError(t, err)

	srv := httptest.NewServer(app.Handler())
	t.Cleanup(func() {
		srv.Close()
		assert.NoError(t, app.Close())
	})

	return &testClient{
		t:   t,
		app: app,
		srv: srv,
		client: &http.Client{
			// редиректы проверяем сами
			CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
		},
	}
}

func (c *testClient) do(method, path, token string, body any) *http.Response {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.srv.URL+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	require.NoError(c.t, err)
	c.t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) result.Result[T] {
	t.Helper()

	var res result.Result[T]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return res
}

func (c *testClient) register(email string) api.AuthResponse {
	c.t.Helper()

	resp := c.do(http.MethodPost, "/api/v1/auth/register", "", api.RegisterRequest{
		Email:    email,
		Username: "tester",
		Password: "password123",
	})
	require.Equal(c.t, http.StatusCreated, resp.StatusCode)
	return decode[api.AuthResponse](c.t, resp).Value
}

func TestApp_LinkLifecycle(t *testing.T) {
	c := newTestApp(t, nil)
	session := c.register("owner@example.com")

	// создание ссылки
	resp := c.do(http.MethodPost, "/api/v1/links", session.AccessToken, api.CreateLinkRequest{URL: "https://example.com", Length: 6})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	link := decode[api.LinkResponse](t, resp).Value
	assert.Len(t, link.ShortCode, 6)
	assert.Equal(t, "https://sho.rt/r/"+link.ShortCode, link.ShortURL)
	require.NotNil(t, link.CreatedBy)
	assert.Equal(t, session.UserID, *link.CreatedBy)

	// редирект
	resp = c.do(http.MethodGet, "/r/"+link.ShortCode, "", nil)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://example.com", resp.Header.Get("Location"))

	// список своих ссылок
	resp = c.do(http.MethodGet, "/api/v1/links/mine", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]api.LinkResponse](t, resp).Value, 1)

	// чужой пользователь не может удалить
	other := c.register("other@example.com")
	resp = c.do(http.MethodDelete, "/api/v1/links/"+link.ID, other.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// владелец удаляет, редирект больше не работает
	resp = c.do(http.MethodDelete, "/api/v1/links/"+link.ID, session.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = c.do(http.MethodGet, "/r/"+link.ShortCode, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = c.do(http.MethodGet, "/api/v1/links/"+link.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestApp_AnonymousLinkAndValidation(t *testing.T) {
	c := newTestApp(t, nil)

	resp := c.do(http.MethodPost, "/api/v1/links", "", api.CreateLinkRequest{URL: "http://example.org/a?b=c"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	link := decode[api.LinkResponse](t, resp).Value
	assert.Nil(t, link.CreatedBy)
	assert.Len(t, link.ShortCode, 6)

	resp = c.do(http.MethodPost, "/api/v1/links", "", api.CreateLinkRequest{URL: "ftp://example.org"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	errs := decode[*api.LinkResponse](t, resp).Errors
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "invalid URL")

	resp = c.do(http.MethodPost, "/api/v1/links", "not-a-token", api.CreateLinkRequest{URL: "https://example.org"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// анонимную ссылку никто кроме Admin удалить не может
	session := c.register("someone@example.com")
	resp = c.do(http.MethodDelete, "/api/v1/links/"+link.ID, session.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestApp_ResolveWithoutLinks(t *testing.T) {
	c := newTestApp(t, nil)

	resp := c.do(http.MethodGet, "/r/abcdef", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = c.do(http.MethodGet, "/api/v1/links", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, []string{"no links found"}, decode[*[]api.LinkResponse](t, resp).Errors)
}

func TestApp_TokenRotation(t *testing.T) {
	c := newTestApp(t, nil)
	session := c.register("rotate@example.com")

	resp := c.do(http.MethodPost, "/api/v1/auth/refresh", "", api.RefreshRequest{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rotated := decode[api.AuthResponse](t, resp).Value

	// повторное использование старого токена отклоняется
	resp = c.do(http.MethodPost, "/api/v1/auth/refresh", "", api.RefreshRequest{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = c.do(http.MethodPost, "/api/v1/auth/logout-all", rotated.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[api.LogoutAllResponse](t, resp).Value.Revoked)

	resp = c.do(http.MethodPost, "/api/v1/auth/refresh", "", api.RefreshRequest{
		AccessToken:  rotated.AccessToken,
		RefreshToken: rotated.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestApp_AdminRoutes(t *testing.T) {
	c := newTestApp(t, nil)
	user := c.register("plain@example.com")

	resp := c.do(http.MethodPost, "/api/v1/users/"+user.UserID+"/roles", user.AccessToken, api.AddRoleRequest{Role: "Admin"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = c.do(http.MethodGet, "/api/v1/users/"+user.UserID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = c.do(http.MethodGet, "/api/v1/users/"+user.UserID, user.AccessToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "plain@example.com", decode[api.UserResponse](t, resp).Value.Email)
}

func (c *testClient) login(email string) api.AuthResponse {
	c.t.Helper()

	resp := c.do(http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest{Email: email, Password: "password123"})
	require.Equal(c.t, http.StatusOK, resp.StatusCode)
	return decode[api.AuthResponse](c.t, resp).Value
}

func TestApp_PromotionTakesEffect(t *testing.T) {
	c := newTestApp(t, nil)
	root := c.register("root@example.com")
	plain := c.register("plain@example.com")
	assert.Equal(t, models.RoleUser, root.Role)

	// первый админ выдается напрямую в хранилище, как это делает cmd/admin
	users := identity.NewProvider(slog.New(slog.NewTextHandler(io.Discard, nil)), c.app.store)
	require.NoError(t, users.AddToRole(context.Background(), root.UserID, models.RoleAdmin))

	root = c.login("root@example.com")
	require.Equal(t, models.RoleAdmin, root.Role)

	resp := c.do(http.MethodPost, "/api/v1/users/"+plain.UserID+"/roles", root.AccessToken, api.AddRoleRequest{Role: models.RoleAdmin})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// ротация старой пары тоже выдает новую роль
	resp = c.do(http.MethodPost, "/api/v1/auth/refresh", "", api.RefreshRequest{
		AccessToken:  plain.AccessToken,
		RefreshToken: plain.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.RoleAdmin, decode[api.AuthResponse](t, resp).Value.Role)

	assert.Equal(t, models.RoleAdmin, c.login("plain@example.com").Role)
}

func TestApp_HealthAndRateLimit(t *testing.T) {
	c := newTestApp(t, func(cfg *config.Config) {
		cfg.AuthRateLimit = 1
	})

	resp := c.do(http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = c.do(http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest{Email: "x@example.com", Password: "password123"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = c.do(http.MethodPost, "/api/v1/auth/login", "", api.LoginRequest{Email: "x@example.com", Password: "password123"})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestApp_BoltCache(t *testing.T) {
	c := newTestApp(t, func(cfg *config.Config) {
		cfg.CacheBackend = config.CacheBolt
		cfg.BoltPath = filepath.Join(t.TempDir(), "redirects.db")
	})

	resp := c.do(http.MethodPost, "/api/v1/links", "", api.CreateLinkRequest{URL: "https://cached.example.com"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	link := decode[api.LinkResponse](t, resp).Value

	for i := 0; i < 2; i++ {
		resp = c.do(http.MethodGet, "/r/"+link.ShortCode, "", nil)
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "https://cached.example.com", resp.Header.Get("Location"))
	}
}

func TestNewApp_Errors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var cfg config.Config
	cfg.LoadDefaults()
	cfg.DatabaseDSN = ":memory:"
	cfg.CacheBackend = config.CacheBolt
	cfg.BoltPath = filepath.Join(t.TempDir(), "missing", "dir", "redirects.db")

	_, err := NewApp(context.Background(), &cfg, logger, "test")
	assert.ErrorContains(t, err, "bolt cache init error")

	cfg.DBDriver = "mysql"
	_, err = NewApp(context.Background(), &cfg, logger, "test")
	assert.ErrorContains(t, err, "unknown database driver")
}
