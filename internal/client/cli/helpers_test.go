package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apiclient "github.com/iudanet/shortify/internal/client/api"
	"github.com/iudanet/shortify/internal/client/storage"
	"github.com/iudanet/shortify/internal/client/storage/boltdb"
	"github.com/iudanet/shortify/pkg/api"
)

// scriptedIO отдает заранее заданный ввод и копит вывод
type scriptedIO struct {
	out       bytes.Buffer
	inputs    []string
	passwords []string
}

func (s *scriptedIO) Println(a ...any)               { fmt.Fprintln(&s.out, a...) }
func (s *scriptedIO) Printf(format string, a ...any) { fmt.Fprintf(&s.out, format, a...) }
func (s *scriptedIO) Write(p []byte) (int, error)    { return s.out.Write(p) }

func (s *scriptedIO) ReadInput(string) (string, error) {
	if len(s.inputs) == 0 {
		return "", fmt.Errorf("no more input")
	}
	v := s.inputs[0]
	s.inputs = s.inputs[1:]
	return v, nil
}

func (s *scriptedIO) ReadPassword(string) (string, error) {
	if len(s.passwords) == 0 {
		return "", fmt.Errorf("no more passwords")
	}
	v := s.passwords[0]
	s.passwords = s.passwords[1:]
	return v, nil
}

// fakeAPI имитирует сервер: access токены "access-N", refresh токены "refresh-N"
type fakeAPI struct {
	now        time.Time
	links      map[string]api.LinkResponse
	validToken string
	refresh    string
	calls      []string
	serial     int
}

func newFakeAPI(now time.Time) *fakeAPI {
	return &fakeAPI{now: now, links: map[string]api.LinkResponse{}}
}

func (f *fakeAPI) issue() *api.AuthResponse {
	f.serial++
	f.validToken = fmt.Sprintf("access-%d", f.serial)
	f.refresh = fmt.Sprintf("refresh-%d", f.serial)
	return &api.AuthResponse{
		AccessToken:      f.validToken,
		RefreshToken:     f.refresh,
		AccessExpiresAt:  f.now.Add(15 * time.Minute),
		RefreshExpiresAt: f.now.Add(24 * time.Hour),
		UserID:           "user-1",
		Email:            "alice@example.com",
		Username:         "alice",
		Role:             "User",
	}
}

func unauthorized() error {
	return &apiclient.Error{StatusCode: http.StatusUnauthorized, Messages: []string{"invalid token"}}
}

func (f *fakeAPI) authorize(token string) error {
	if token != f.validToken {
		return unauthorized()
	}
	return nil
}

func (f *fakeAPI) Register(_ context.Context, req api.RegisterRequest) (*api.AuthResponse, error) {
	f.calls = append(f.calls, "register")
	if req.Email == "taken@example.com" {
		return nil, &apiclient.Error{StatusCode: http.StatusConflict, Messages: []string{"user already exists"}}
	}
	return f.issue(), nil
}

func (f *fakeAPI) Login(_ context.Context, req api.LoginRequest) (*api.AuthResponse, error) {
	f.calls = append(f.calls, "login")
	if req.Password != "password123" {
		return nil, &apiclient.Error{StatusCode: http.StatusBadRequest, Messages: []string{"invalid credentials"}}
	}
	return f.issue(), nil
}

func (f *fakeAPI) Refresh(_ context.Context, _, refreshToken string) (*api.AuthResponse, error) {
	f.calls = append(f.calls, "refresh")
	if refreshToken != f.refresh {
		return nil, unauthorized()
	}
	return f.issue(), nil
}

func (f *fakeAPI) Logout(_ context.Context, _, refreshToken string) error {
	f.calls = append(f.calls, "logout")
	if refreshToken == f.refresh {
		f.refresh = ""
	}
	return nil
}

func (f *fakeAPI) LogoutAll(_ context.Context, token string) (int, error) {
	f.calls = append(f.calls, "logout-all")
	if err := f.authorize(token); err != nil {
		return 0, err
	}
	f.refresh = ""
	return 2, nil
}

func (f *fakeAPI) CreateLink(_ context.Context, token string, req api.CreateLinkRequest) (*api.LinkResponse, error) {
	f.calls = append(f.calls, "create")
	var owner *string
	if token != "" {
		if err := f.authorize(token); err != nil {
			return nil, err
		}
		id := "user-1"
		owner = &id
	}

	code := fmt.Sprintf("code%02d", len(f.links)+1)
	link := api.LinkResponse{
		ID:          "link-" + code,
		OriginalURL: req.URL,
		ShortCode:   code,
		ShortURL:    "https://sho.rt/r/" + code,
		CreatedBy:   owner,
		CreatedAt:   f.now,
	}
	f.links[link.ID] = link
	return &link, nil
}

func (f *fakeAPI) ListMyLinks(_ context.Context, token string) ([]api.LinkResponse, error) {
	f.calls = append(f.calls, "list")
	if err := f.authorize(token); err != nil {
		return nil, err
	}
	var out []api.LinkResponse
	for _, l := range f.links {
		if l.CreatedBy != nil {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return nil, &apiclient.Error{StatusCode: http.StatusNotFound, Messages: []string{"no links found"}}
	}
	return out, nil
}

func (f *fakeAPI) DeleteLink(_ context.Context, token, id string) error {
	f.calls = append(f.calls, "delete")
	if err := f.authorize(token); err != nil {
		return err
	}
	if _, ok := f.links[id]; !ok {
		return &apiclient.Error{StatusCode: http.StatusNotFound, Messages: []string{"link not found"}}
	}
	delete(f.links, id)
	return nil
}

func (f *fakeAPI) Resolve(_ context.Context, code string) (string, error) {
	f.calls = append(f.calls, "resolve")
	for _, l := range f.links {
		if l.ShortCode == code {
			return l.OriginalURL, nil
		}
	}
	return "", &apiclient.Error{StatusCode: http.StatusNotFound}
}

type testEnv struct {
	cli   *Cli
	io    *scriptedIO
	api   *fakeAPI
	store *boltdb.Storage
	now   time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	io := &scriptedIO{}
	fake := newFakeAPI(now)

	c := New(io, fake, store, Options{})
	c.now = func() time.Time { return now }
	c.getenv = func(string) string { return "" }

	return &testEnv{cli: c, io: io, api: fake, store: store, now: now}
}

// login сохраняет сессию, как после успешного входа
func (e *testEnv) login(t *testing.T) *storage.Session {
	t.Helper()
	session := sessionFrom(e.api.issue())
	require.NoError(t, e.store.SaveSession(context.Background(), session))
	return session
}
