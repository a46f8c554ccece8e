// Command shortify-admin creates users with a given role directly in the database,
// or grants the role when the user already exists.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/iudanet/shortify/internal/apperr"
	"github.com/iudanet/shortify/internal/client/iocli"
	"github.com/iudanet/shortify/internal/models"
	"github.com/iudanet/shortify/internal/server"
	"github.com/iudanet/shortify/internal/server/config"
	"github.com/iudanet/shortify/internal/server/identity"
)

const passwordEnv = "SHORTIFY_ADMIN_PASSWORD"

type options struct {
	email        string
	username     string
	role         string
	passwordFile string
}

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	var cfg config.Config
	cfg.LoadDefaults()
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return err
	}

	opts := options{role: models.RoleAdmin}

	fs := flag.NewFlagSet("shortify-admin", flag.ContinueOnError)
	fs.StringVar(&cfg.DBDriver, "driver", cfg.DBDriver, "database driver (sqlite|postgres)")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&opts.email, "email", "", "user email (required)")
	fs.StringVar(&opts.username, "username", "", "display name, defaults to the email local part")
	fs.StringVar(&opts.role, "role", opts.role, "role to grant (User|Admin)")
	fs.StringVar(&opts.passwordFile, "password-file", "", "file with the password; "+passwordEnv+" or a prompt otherwise")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if opts.email == "" {
		return errors.New("-email is required")
	}
	if opts.username == "" {
		opts.username, _, _ = strings.Cut(opts.email, "@")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	store, err := server.OpenStorage(ctx, &cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	users := identity.NewProvider(logger, store)
	console := iocli.NewStdio()

	user, err := users.FindByEmail(ctx, opts.email)
	switch {
	case err == nil:
		console.Printf("User %s already exists, granting role %s\n", user.Email, opts.role)
		if err := users.AddToRole(ctx, user.ID, opts.role); err != nil {
			return fmt.Errorf("failed to grant role: %w", err)
		}
	case errors.Is(err, apperr.ErrUserNotFound):
		password, perr := readPassword(console, opts.passwordFile)
		if perr != nil {
			return perr
		}
		user, err = users.Create(ctx, opts.email, opts.username, password, opts.role)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
	default:
		return fmt.Errorf("failed to look up user: %w", err)
	}

	roles, err := users.RolesOf(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to load roles: %w", err)
	}

	console.Printf("✓ %s (%s) has roles %s, tokens carry %s\n",
		user.Email, user.ID, strings.Join(roles, ", "), models.PrimaryRole(roles))
	return nil
}

func readPassword(console iocli.IO, passwordFile string) (string, error) {
	if v := os.Getenv(passwordEnv); v != "" {
		return v, nil
	}
	if passwordFile != "" {
		f, err := os.Open(passwordFile)
		if err != nil {
			return "", fmt.Errorf("failed to open password file: %w", err)
		}
		defer func() {
			_ = f.Close()
		}()
		return iocli.NewStream(f, io.Discard).ReadPassword("")
	}

	password, err := console.ReadPassword("Password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	confirm, err := console.ReadPassword("Repeat password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if password != confirm {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}
