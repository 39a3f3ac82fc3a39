// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package tools implements the annotate-tools command line: sentence
// import, corpus token statistics, machine translation drafts and seeding.
package tools

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"

	"github.com/wimarka/annotate/internal/store"
	"github.com/wimarka/annotate/internal/version"
)

// Config holds the settings shared by all commands. Flags override the
// environment.
type Config struct {
	DBPath        string `env:"ANNOTATE_DB_PATH" envDefault:"./data/annotate.db"`
	AdminEmail    string `env:"ANNOTATE_ADMIN_EMAIL" envDefault:"admin@example.com"`
	AdminPassword string `env:"ANNOTATE_ADMIN_PASSWORD"`
	AssistURL     string `env:"ANNOTATE_ASSIST_URL" envDefault:"http://localhost:11434"`
	AssistModel   string `env:"ANNOTATE_ASSIST_MODEL" envDefault:"gemma3:4b"`
}

// LoadConfig reads Config from ANNOTATE_* variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// NewRootCommand builds the command tree. cfg supplies flag defaults.
func NewRootCommand(cfg Config, info version.Info) *cobra.Command {
	root := &cobra.Command{
		Use:           "annotate-tools",
		Short:         "Maintenance tools for the annotation database and corpus",
		Version:       info.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database path")

	root.AddCommand(
		newImportCommand(&cfg),
		newTokensCommand(),
		newTranslateCommand(&cfg),
		newSeedCommand(&cfg),
	)

	return root
}

// openDB opens and migrates the database at path, creating its directory.
func openDB(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := store.NewDB(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := ctx.Err(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}
