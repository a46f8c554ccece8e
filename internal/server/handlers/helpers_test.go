package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/shortify/internal/result"
	"github.com/iudanet/shortify/internal/server/jwt"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeResult[T any](t *testing.T, w *httptest.ResponseRecorder) result.Result[T] {
	t.Helper()

	var res result.Result[T]
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	return res
}

func withClaims(r *http.Request, userID, role string) *http.Request {
	claims := &jwt.Claims{
		Email:            userID + "@example.com",
		Role:             role,
		RegisteredClaims: jwtlib.RegisteredClaims{Subject: userID},
	}
	return r.WithContext(WithClaims(r.Context(), claims))
}
