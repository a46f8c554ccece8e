package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	apiclient "github.com/iudanet/shortify/internal/client/api"
	"github.com/iudanet/shortify/internal/client/storage"
	"github.com/iudanet/shortify/internal/validation"
	"github.com/iudanet/shortify/pkg/api"
)

var errNotLoggedIn = errors.New("not authenticated. Please run 'shortify login' first")

func (c *Cli) runRegister(ctx context.Context) error {
	c.io.Println("=== Register ===")
	c.io.Println()

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}
	if err := validation.ValidateEmail(email); err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}

	username, err := c.io.ReadInput("Username: ")
	if err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}
	if err := validation.ValidateUsername(username); err != nil {
		return fmt.Errorf("invalid username: %w", err)
	}

	password, err := c.getPassword("Password: ")
	if err != nil {
		return err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}

	resp, err := c.api.Register(ctx, api.RegisterRequest{Email: email, Username: username, Password: password})
	if err != nil {
		return err
	}

	if err := c.saveSession(ctx, resp); err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Registration successful!")
	c.io.Printf("User ID: %s\n", resp.UserID)
	return nil
}

func (c *Cli) runLogin(ctx context.Context) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	password, err := c.getPassword("Password: ")
	if err != nil {
		return err
	}

	resp, err := c.api.Login(ctx, api.LoginRequest{Email: email, Password: password})
	if err != nil {
		return err
	}

	if err := c.saveSession(ctx, resp); err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Login successful!")
	c.io.Printf("Username: %s\n", resp.Username)
	c.io.Printf("Role: %s\n", resp.Role)
	c.io.Printf("Session valid until: %s\n", resp.RefreshExpiresAt.Format(time.RFC3339))
	return nil
}

func (c *Cli) runLogout(ctx context.Context) error {
	c.io.Println("=== Logout ===")

	session, err := c.store.GetSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			c.io.Println("Not logged in.")
			return nil
		}
		return fmt.Errorf("failed to load session: %w", err)
	}

	// локальную сессию удаляем даже если сервер недоступен
	if err := c.api.Logout(ctx, session.AccessToken, session.RefreshToken); err != nil && !apiclient.IsUnauthorized(err) {
		c.io.Printf("Warning: server logout failed: %v\n", err)
	}

	if err := c.store.DeleteSession(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	c.io.Println("✓ Logout successful!")
	return nil
}

func (c *Cli) runLogoutAll(ctx context.Context) error {
	var revoked int
	err := c.withSession(ctx, func(token string) error {
		n, err := c.api.LogoutAll(ctx, token)
		revoked = n
		return err
	})
	if err != nil {
		return err
	}

	if err := c.store.DeleteSession(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	c.io.Printf("✓ Revoked %d session(s)\n", revoked)
	return nil
}

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Authentication Status ===")
	c.io.Println()

	session, err := c.store.GetSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			c.io.Println("Status: Not authenticated")
			c.io.Println()
			c.io.Println("Run 'shortify login' to authenticate.")
			return nil
		}
		return fmt.Errorf("failed to load session: %w", err)
	}

	now := c.now()
	if session.Expired(now) {
		c.io.Println("Status: Session expired")
		c.io.Println("Run 'shortify login' to authenticate again.")
		return nil
	}

	c.io.Println("Status: Authenticated")
	c.io.Printf("Email: %s\n", session.Email)
	c.io.Printf("Username: %s\n", session.Username)
	c.io.Printf("Role: %s\n", session.Role)
	c.io.Printf("Session expires: %s\n", session.RefreshExpiresAt.Format(time.RFC3339))
	c.io.Printf("Time remaining: %s\n", session.RefreshExpiresAt.Sub(now).Round(time.Second))
	return nil
}

// withSession вызывает fn с access токеном текущей сессии.
// Просроченный или отклоненный сервером access токен обновляется один раз.
func (c *Cli) withSession(ctx context.Context, fn func(accessToken string) error) error {
	session, err := c.store.GetSession(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return errNotLoggedIn
		}
		return fmt.Errorf("failed to load session: %w", err)
	}

	now := c.now()
	if session.Expired(now) {
		_ = c.store.DeleteSession(ctx)
		return errNotLoggedIn
	}

	if now.Before(session.AccessExpiresAt) {
		err = fn(session.AccessToken)
		if !apiclient.IsUnauthorized(err) {
			return err
		}
	}

	session, err = c.refresh(ctx, session)
	if err != nil {
		return err
	}
	return fn(session.AccessToken)
}

func (c *Cli) refresh(ctx context.Context, session *storage.Session) (*storage.Session, error) {
	resp, err := c.api.Refresh(ctx, session.AccessToken, session.RefreshToken)
	if err != nil {
		if apiclient.IsUnauthorized(err) {
			_ = c.store.DeleteSession(ctx)
			return nil, errNotLoggedIn
		}
		return nil, err
	}

	next := sessionFrom(resp)
	if err := c.store.SaveSession(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return next, nil
}

func (c *Cli) saveSession(ctx context.Context, resp *api.AuthResponse) error {
	if err := c.store.SaveSession(ctx, sessionFrom(resp)); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func sessionFrom(resp *api.AuthResponse) *storage.Session {
	return &storage.Session{
		UserID:           resp.UserID,
		Email:            resp.Email,
		Username:         resp.Username,
		Role:             resp.Role,
		AccessToken:      resp.AccessToken,
		RefreshToken:     resp.RefreshToken,
		AccessExpiresAt:  resp.AccessExpiresAt,
		RefreshExpiresAt: resp.RefreshExpiresAt,
	}
}
