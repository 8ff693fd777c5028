// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Command atelier runs the Atelier catalogue site and back office, and
// provides the maintenance commands around it.
package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"atelier/internal/config"
	"atelier/internal/database"
)

var rootCmd = &cobra.Command{
	Use:   "atelier",
	Short: "Atelier catalogue site and back office",
	Long: `Atelier serves the public tile catalogue and the admin back office on
top of the remote content API.

COMMANDS:
  serve         Start the HTTP server
  migrate       Apply pending database migrations
  user          Create, re-key or remove back office accounts
  option        List or remove custom size and finish options

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger(os.Getenv("APP_ENV"))
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// setupLogger installs the default structured logger: JSON in production,
// text with debug output elsewhere.
func setupLogger(env string) {
	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(handler))
}

// loadConfig loads configuration and logs the essentials.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr(), "api", cfg.APIBaseURL)
	return cfg, nil
}

// openDB connects to PostgreSQL and applies pending migrations, for the
// maintenance commands.
func openDB() (*sql.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}
