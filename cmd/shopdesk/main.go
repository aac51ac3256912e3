// Package main is the entry point for the shopdesk server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"shopdesk/internal/cache"
	"shopdesk/internal/catalog"
	"shopdesk/internal/catalogapi"
	"shopdesk/internal/config"
	"shopdesk/internal/creds"
	"shopdesk/internal/handlers"
	"shopdesk/internal/middleware"
	"shopdesk/internal/router"
	"shopdesk/internal/session"
)

func main() {
	// Structured logger for the whole process.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// A .env file is a development convenience; absence is fine.
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"catalog", cfg.CatalogBaseURL,
	)

	// Open the local credential store.
	if err := os.MkdirAll(filepath.Dir(cfg.CredsPath()), 0o750); err != nil {
		slog.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}
	credStore, err := creds.Open(cfg.CredsPath())
	if err != nil {
		slog.Error("failed to open credential store", "error", err)
		os.Exit(1)
	}
	defer credStore.Close()

	// Connect to Valkey (Redis-compatible cache + session store).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Initialize session store backed by Valkey.
	// In non-development environments, mark session cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	// Remote catalog client and the state container that mirrors it.
	// The container is created here and owned by the handler layer; there
	// is no ambient singleton.
	client := catalogapi.New(cfg.CatalogBaseURL, cfg.CatalogTimeout)
	container := catalog.New(client)

	// Response cache for the catalog read path.
	catalogCache := cache.NewCatalogCache(valkeyClient, cache.DefaultCatalogTTL)

	// Create handler groups with their dependencies.
	authHandlers := handlers.NewAuth(sessionStore, credStore)
	productHandlers := handlers.NewProducts(container, catalogCache)

	// Per-IP rate limiting.
	limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	defer limiter.Stop()

	// Set up the Chi router with all middleware and routes.
	r := router.New(sessionStore, authHandlers, productHandlers, limiter, secureCookies)

	// Create the HTTP server with sensible timeouts. WriteTimeout must
	// accommodate slow upstream catalog responses.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
