// Package server wires storage, caches, services and HTTP routes
// into a runnable shortify server with graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/shortify/internal/models"
	"github.com/iudanet/shortify/internal/server/cache"
	"github.com/iudanet/shortify/internal/server/cache/boltcache"
	"github.com/iudanet/shortify/internal/server/cache/rediscache"
	"github.com/iudanet/shortify/internal/server/config"
	"github.com/iudanet/shortify/internal/server/handlers"
	"github.com/iudanet/shortify/internal/server/identity"
	"github.com/iudanet/shortify/internal/server/jwt"
	"github.com/iudanet/shortify/internal/server/links"
	"github.com/iudanet/shortify/internal/server/middleware"
	"github.com/iudanet/shortify/internal/server/storage"
	"github.com/iudanet/shortify/internal/server/storage/postgres"
	"github.com/iudanet/shortify/internal/server/storage/sqlite"
	"github.com/iudanet/shortify/internal/server/tokens"
	"github.com/iudanet/shortify/internal/shortcode"
)

const healthPath = "/api/v1/health"

// App holds every long-lived component of the server
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   storage.Storage
	cache   cache.Cache
	limiter *middleware.PathRateLimiter
	handler http.Handler
}

// NewApp opens storage and cache and builds the HTTP handler.
// The caller must Close the App when Run is not used.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, version string) (*App, error) {
	store, err := OpenStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	redirects, err := openCache(ctx, cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	app := &App{
		cfg:    cfg,
		logger: logger,
		store:  store,
		cache:  redirects,
		limiter: middleware.NewPathRateLimiter([]middleware.PathRateLimit{
			{Path: "/api/v1/auth/login", Rate: cfg.AuthRateLimit, Window: cfg.RateWindow},
			{Path: "/api/v1/auth/register", Rate: cfg.AuthRateLimit, Window: cfg.RateWindow},
		}, cfg.RateLimit, cfg.RateWindow, logger),
	}
	app.handler = app.routes(version)

	logger.InfoContext(ctx, "application initialized",
		slog.String("db_driver", cfg.DBDriver),
		slog.String("cache", cfg.CacheBackend))

	return app, nil
}

// OpenStorage opens the configured database and applies migrations
func OpenStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.DBDriver {
	case config.DriverSQLite:
		s, err := sqlite.New(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("sqlite init error: %w", err)
		}
		return s, nil
	case config.DriverPostgres:
		s, err := postgres.New(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("postgres init error: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DBDriver)
	}
}

func openCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.CacheBackend {
	case config.CacheBolt:
		c, err := boltcache.New(ctx, cfg.BoltPath, cfg.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("bolt cache init error: %w", err)
		}
		return c, nil
	case config.CacheRedis:
		c, err := rediscache.New(ctx, cfg.RedisAddr, cfg.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("redis cache init error: %w", err)
		}
		return c, nil
	default:
		return cache.Noop{}, nil
	}
}

func (a *App) routes(version string) http.Handler {
	issuer := jwt.NewService(a.cfg.JWT(), nil)
	users := identity.NewProvider(a.logger, a.store)
	tokenService := tokens.NewService(a.logger, issuer, a.store, users)
	linkService := links.NewService(a.logger, a.store, shortcode.NewGenerator(nil), a.cache, a.cfg.CodeLength)

	authHandler := handlers.NewAuthHandler(a.logger, users, tokenService, a.cfg.SecureCookies)
	linksHandler := handlers.NewLinksHandler(a.logger, linkService, a.cfg.BaseURL)
	usersHandler := handlers.NewUsersHandler(a.logger, users)
	healthHandler := handlers.NewHealthHandler(a.logger, a.store, version)

	auth := middleware.AuthMiddleware(a.logger, issuer)
	optionalAuth := middleware.OptionalAuth(a.logger, issuer)
	adminOnly := middleware.RequireRole(a.logger, models.RoleAdmin)

	mux := http.NewServeMux()

	// Public endpoints
	mux.HandleFunc("GET "+healthPath, healthHandler.Health)
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("GET /api/v1/links", linksHandler.List)
	mux.HandleFunc("GET /api/v1/links/{id}", linksHandler.Get)
	mux.HandleFunc("GET /r/{code}", linksHandler.Redirect)

	// Anonymous or authenticated
	mux.Handle("POST /api/v1/links", optionalAuth(http.HandlerFunc(linksHandler.Create)))

	// Protected endpoints
	mux.Handle("POST /api/v1/auth/logout", auth(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("POST /api/v1/auth/logout-all", auth(http.HandlerFunc(authHandler.LogoutAll)))
	mux.Handle("GET /api/v1/links/mine", auth(http.HandlerFunc(linksHandler.ListMine)))
	mux.Handle("PUT /api/v1/links/{id}", auth(http.HandlerFunc(linksHandler.Update)))
	mux.Handle("DELETE /api/v1/links/{id}", auth(http.HandlerFunc(linksHandler.Delete)))
	mux.Handle("GET /api/v1/users/{id}", auth(http.HandlerFunc(usersHandler.Get)))
	mux.Handle("POST /api/v1/users/{id}/roles", auth(adminOnly(http.HandlerFunc(usersHandler.AddRole))))

	// Цепочка: recovery -> logging -> rate limit -> mux
	var handler http.Handler = mux
	handler = a.limiter.Middleware(handler)
	handler = middleware.LoggingWithSkip(a.logger, []string{healthPath})(handler)
	handler = middleware.RecoveryMiddleware(a.logger)(handler)

	return handler
}

// Handler returns the root HTTP handler
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully
// and releases storage and cache.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		a.logger.InfoContext(ctx, "starting HTTP server", slog.String("addr", a.cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
		close(errC)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case serveErr = <-errC:
		a.logger.Error("HTTP server failed", slog.Any("error", serveErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown failed", slog.Any("error", err))
		serveErr = errors.Join(serveErr, err)
	}

	if err := a.Close(); err != nil {
		serveErr = errors.Join(serveErr, err)
	}

	a.logger.Info("server stopped")
	return serveErr
}

// Close stops background workers and closes cache and storage
func (a *App) Close() error {
	a.limiter.Stop()
	return errors.Join(a.cache.Close(), a.store.Close())
}
