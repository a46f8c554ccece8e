// Package cli implements the shortify command-line client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/iudanet/shortify/internal/client/iocli"
	"github.com/iudanet/shortify/internal/client/storage"
	"github.com/iudanet/shortify/pkg/api"
)

// PasswordEnv задает пароль без интерактивного ввода
const PasswordEnv = "SHORTIFY_PASSWORD"

// APIClient is the subset of the HTTP client used by commands
type APIClient interface {
	Register(ctx context.Context, req api.RegisterRequest) (*api.AuthResponse, error)
	Login(ctx context.Context, req api.LoginRequest) (*api.AuthResponse, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*api.AuthResponse, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	LogoutAll(ctx context.Context, accessToken string) (int, error)
	CreateLink(ctx context.Context, accessToken string, req api.CreateLinkRequest) (*api.LinkResponse, error)
	ListMyLinks(ctx context.Context, accessToken string) ([]api.LinkResponse, error)
	DeleteLink(ctx context.Context, accessToken, id string) error
	Resolve(ctx context.Context, code string) (string, error)
}

// Store объединяет локальные хранилища клиента
type Store interface {
	storage.SessionStorage
	storage.HistoryStorage
}

// Options are global client options
type Options struct {
	PasswordFile string
}

type Cli struct {
	io     iocli.IO
	api    APIClient
	store  Store
	now    func() time.Time
	getenv func(string) string
	opts   Options
}

func New(io iocli.IO, apiClient APIClient, store Store, opts Options) *Cli {
	return &Cli{
		io:     io,
		api:    apiClient,
		store:  store,
		opts:   opts,
		now:    time.Now,
		getenv: os.Getenv,
	}
}

// ErrUnknownCommand is returned by Run for unsupported commands
var ErrUnknownCommand = errors.New("unknown command")

// Run executes a single command
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return c.runRegister(ctx)
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "logout-all":
		return c.runLogoutAll(ctx)
	case "status":
		return c.runStatus(ctx)
	case "shorten":
		return c.runShorten(ctx, args)
	case "list":
		return c.runList(ctx, args)
	case "delete":
		return c.runDelete(ctx, args)
	case "resolve":
		return c.runResolve(ctx, args)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, command)
	}
}

// getPassword retrieves the password with priority:
// 1. Environment variable SHORTIFY_PASSWORD
// 2. File from --password-file
// 3. Interactive prompt
func (c *Cli) getPassword(prompt string) (string, error) {
	if envPassword := c.getenv(PasswordEnv); envPassword != "" {
		return envPassword, nil
	}

	if c.opts.PasswordFile != "" {
		content, err := os.ReadFile(c.opts.PasswordFile)
		if err != nil {
			return "", fmt.Errorf("failed to read password file: %w", err)
		}
		// Убираем trailing newline/whitespace
		password := strings.TrimSpace(string(content))
		if password == "" {
			return "", fmt.Errorf("password file is empty")
		}
		return password, nil
	}

	password, err := c.io.ReadPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password from stdin: %w", err)
	}
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	return password, nil
}

func PrintUsage(io iocli.IO) {
	io.Println("Shortify Client")
	io.Println()
	io.Println("Usage:")
	io.Println("  shortify [OPTIONS] COMMAND [ARGS]")
	io.Println()
	io.Println("Options:")
	io.Println("  --version              Show version information")
	io.Println("  --server URL           Server URL (default: http://localhost:8080)")
	io.Println("  --db PATH              Path to local database (default: shortify-client.db)")
	io.Println("  --password-file PATH   Path to file containing the account password")
	io.Println()
	io.Println("Password Priority (highest to lowest):")
	io.Println("  1. " + PasswordEnv + " environment variable")
	io.Println("  2. --password-file (file path)")
	io.Println("  3. Interactive prompt (fallback)")
	io.Println()
	io.Println("Commands:")
	io.Println("  register                       Register new user")
	io.Println("  login                          Login to server")
	io.Println("  logout                         Logout and revoke the current refresh token")
	io.Println("  logout-all                     Revoke every session of the current user")
	io.Println("  status                         Show authentication status")
	io.Println("  shorten [-length N] [-title T] <url>   Create a short link")
	io.Println("  list [-local]                  List your links (or the local history)")
	io.Println("  delete <id>                    Delete a link")
	io.Println("  resolve <code>                 Show the original URL of a short code")
	io.Println()
	io.Println("Examples:")
	io.Println("  shortify register")
	io.Println("  shortify shorten -length 8 https://example.com/some/long/path")
	io.Println("  shortify resolve aB3xY9")
	io.Println("  shortify --server https://sho.rt list")
}
