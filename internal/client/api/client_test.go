package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/shortify/internal/result"
	"github.com/iudanet/shortify/pkg/api"
)

func writeEnvelope[T any](t *testing.T, w http.ResponseWriter, status int, res result.Result[T]) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(res))
}

// TestNewClient проверяет создание нового клиента
func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	assert.Equal(t, "http://localhost:8080", client.baseURL)
	require.NotNil(t, client.httpClient)
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
}

func TestClient_Register(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/auth/register", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var req api.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "alice@example.com", req.Email)

		writeEnvelope(t, w, http.StatusCreated, result.Ok(api.AuthResponse{
			AccessToken:  "access",
			RefreshToken: "refresh",
			UserID:       "user-1",
			Email:        req.Email,
		}))
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).Register(context.Background(), api.RegisterRequest{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "access", resp.AccessToken)
	assert.Equal(t, "refresh", resp.RefreshToken)
	assert.Equal(t, "user-1", resp.UserID)
}

func TestClient_ErrorEnvelope(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		wantMessages []string
		unauthorized bool
	}{
		{
			name:         "envelope with messages",
			status:       http.StatusBadRequest,
			body:         `{"success":false,"result":null,"errors":["invalid credentials"]}`,
			wantMessages: []string{"invalid credentials"},
		},
		{
			name:         "unauthorized",
			status:       http.StatusUnauthorized,
			body:         `{"success":false,"result":null,"errors":["invalid token"]}`,
			wantMessages: []string{"invalid token"},
			unauthorized: true,
		},
		{
			name:   "plain text body",
			status: http.StatusBadGateway,
			body:   "bad gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL).Login(context.Background(), api.LoginRequest{Email: "a@b.c", Password: "x"})
			require.Error(t, err)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMessages, apiErr.Messages)
			assert.Equal(t, tt.unauthorized, IsUnauthorized(err))
		})
	}
}

func TestClient_LinkCalls(t *testing.T) {
	owner := "user-1"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "POST /api/v1/links":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			var req api.CreateLinkRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			writeEnvelope(t, w, http.StatusCreated, result.Ok(api.LinkResponse{
				ID: "link-1", OriginalURL: req.URL, ShortCode: "abc123", CreatedBy: &owner,
			}))
		case "GET /api/v1/links/mine":
			writeEnvelope(t, w, http.StatusOK, result.Ok([]api.LinkResponse{{ID: "link-1", ShortCode: "abc123"}}))
		case "DELETE /api/v1/links/link-1":
			w.WriteHeader(http.StatusNoContent)
		case "GET /r/abc123":
			http.Redirect(w, r, "https://example.com", http.StatusFound)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	ctx := context.Background()
	client := NewClient(server.URL)

	link, err := client.CreateLink(ctx, "tok", api.CreateLinkRequest{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, "abc123", link.ShortCode)
	assert.Equal(t, "https://example.com", link.OriginalURL)

	links, err := client.ListMyLinks(ctx, "tok")
	require.NoError(t, err)
	assert.Len(t, links, 1)

	require.NoError(t, client.DeleteLink(ctx, "tok", "link-1"))

	target, err := client.Resolve(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", target)

	_, err = client.Resolve(ctx, "zzz999")
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsUnauthorized(err))
}

func TestClient_RefreshAndLogout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req api.RefreshRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		switch r.URL.Path {
		case "/api/v1/auth/refresh":
			assert.Equal(t, "old-access", req.AccessToken)
			assert.Equal(t, "old-refresh", req.RefreshToken)
			writeEnvelope(t, w, http.StatusOK, result.Ok(api.AuthResponse{AccessToken: "new-access", RefreshToken: "new-refresh"}))
		case "/api/v1/auth/logout":
			assert.Equal(t, "Bearer new-access", r.Header.Get("Authorization"))
			assert.Equal(t, "new-refresh", req.RefreshToken)
			w.WriteHeader(http.StatusNoContent)
		case "/api/v1/auth/logout-all":
			writeEnvelope(t, w, http.StatusOK, result.Ok(api.LogoutAllResponse{Revoked: 3}))
		}
	}))
	defer server.Close()

	ctx := context.Background()
	client := NewClient(server.URL)

	pair, err := client.Refresh(ctx, "old-access", "old-refresh")
	require.NoError(t, err)
	assert.Equal(t, "new-access", pair.AccessToken)

	require.NoError(t, client.Logout(ctx, pair.AccessToken, pair.RefreshToken))

	n, err := client.LogoutAll(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
