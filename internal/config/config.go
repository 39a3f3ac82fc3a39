// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the server configuration from ANNOTATE_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
	"your-secret-key-change-in-production",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string        `env:"ANNOTATE_DB_PATH" envDefault:"./data/annotate.db"`
	JWTSecret  string        `env:"ANNOTATE_JWT_SECRET,required"`
	TokenTTL   time.Duration `env:"ANNOTATE_TOKEN_TTL" envDefault:"30m"`
	ServerHost string        `env:"ANNOTATE_SERVER_HOST" envDefault:"localhost"`
	ServerPort int           `env:"ANNOTATE_SERVER_PORT" envDefault:"8000"`
	Env        string        `env:"ANNOTATE_ENV" envDefault:"development"`
	LogLevel   string        `env:"ANNOTATE_LOG_LEVEL" envDefault:"info"`

	// HTTP surface
	CORSOrigins    []string      `env:"ANNOTATE_CORS_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`
	RequestTimeout time.Duration `env:"ANNOTATE_REQUEST_TIMEOUT" envDefault:"30s"`
	APIRateLimit   float64       `env:"ANNOTATE_API_RATE_LIMIT" envDefault:"20"` // requests per second per IP
	APIRateBurst   int           `env:"ANNOTATE_API_RATE_BURST" envDefault:"40"`

	// Seeding configuration
	DoSeed        bool   `env:"ANNOTATE_DO_SEED" envDefault:"false"`
	AdminEmail    string `env:"ANNOTATE_ADMIN_EMAIL" envDefault:"admin@example.com"`
	AdminPassword string `env:"ANNOTATE_ADMIN_PASSWORD"`

	// Translation assist
	AssistURL   string `env:"ANNOTATE_ASSIST_URL" envDefault:"http://localhost:11434"`
	AssistModel string `env:"ANNOTATE_ASSIST_MODEL" envDefault:"gemma3:4b"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// MinJWTSecretLength is the minimum required length for the token signing secret.
// HS256 keys should be at least as long as the hash output.
const MinJWTSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.JWTSecret) < MinJWTSecretLength {
		return nil, fmt.Errorf("ANNOTATE_JWT_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinJWTSecretLength, len(cfg.JWTSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.JWTSecret == weak {
			return nil, errors.New("ANNOTATE_JWT_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.JWTSecret) {
		slog.Warn("ANNOTATE_JWT_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("ANNOTATE_TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}

	if cfg.DoSeed && !cfg.IsDevelopment() && cfg.AdminPassword == "" {
		return nil, errors.New("ANNOTATE_ADMIN_PASSWORD is required when seeding outside development")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
