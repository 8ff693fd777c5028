// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"atelier/internal/apiclient"
	"atelier/internal/cache"
	"atelier/internal/database"
	"atelier/internal/handlers"
	"atelier/internal/imaging"
	"atelier/internal/middleware"
	"atelier/internal/preview"
	"atelier/internal/render"
	"atelier/internal/router"
	"atelier/internal/session"
	"atelier/internal/store"
)

// Public contact submissions allowed per client IP.
const (
	contactRateLimit  = 5
	contactRateWindow = 10 * time.Minute
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Connects to PostgreSQL and Valkey, applies pending migrations, seeds the
development admin account when APP_ENV=development, and serves the site
until SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
	}

	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		return fmt.Errorf("connect to valkey: %w", err)
	}
	defer valkeyClient.Close()

	imaging.Startup(0)
	defer imaging.Shutdown()

	// Outside development, cookies are HTTPS-only.
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	// In dev mode pages load htmx from the CDN; release builds vendor it.
	renderer, err := render.New(cfg.IsDev())
	if err != nil {
		return fmt.Errorf("initialize template renderer: %w", err)
	}

	api := apiclient.New(cfg.APIBaseURL, nil)
	userStore := store.NewUserStore(db)
	optionStore := store.NewOptionStore(db)
	previews := preview.NewStore(valkeyClient, cfg.PreviewTTL)
	pageCache := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)

	loginLimiter := middleware.NewRateLimiter(cfg.LoginRateLimit, time.Minute)
	defer loginLimiter.Stop()
	contactLimiter := middleware.NewRateLimiter(contactRateLimit, contactRateWindow)
	defer contactLimiter.Stop()

	r := router.New(router.Deps{
		Sessions:       sessionStore,
		PageCache:      pageCache,
		LoginLimiter:   loginLimiter,
		ContactLimiter: contactLimiter,
		Admin:          handlers.NewAdmin(renderer, sessionStore, api, userStore, optionStore, previews, pageCache, imaging.PDFThumbnailer),
		Auth:           handlers.NewAuth(renderer, sessionStore, userStore),
		Public:         handlers.NewPublic(renderer, api),
		SecureCookies:  secureCookies,
	})

	// WriteTimeout covers editor submissions that upload files to the
	// content API.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr(), "content_api", api.BaseURL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
