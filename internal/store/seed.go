// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wimarka/annotate/internal/auth"
)

// Default admin credentials
const (
	DefaultAdminEmail    = "admin@example.com"
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
)

// SeedOptions controls what Seed creates.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
	// SampleSentences inserts the demo sentences when the table is empty.
	SampleSentences bool
}

// sampleSentences covers the target languages annotators usually pick.
var sampleSentences = []CreateSentenceParams{
	{SourceText: "Good morning! How are you today?", MachineTranslation: "Magandang umaga! Kumusta ka ngayong araw?", ReferenceTranslation: nullString("Magandang umaga! Kumusta ka ngayon?"), SourceLanguage: "en", TargetLanguage: "tagalog", Domain: nullString("general")},
	{SourceText: "Please help me carry this heavy bag.", MachineTranslation: "Pakitulong sa akin na buhatin ang mabigat na bag na ito.", ReferenceTranslation: nullString("Tulungan mo naman akong buhatin ang mabigat na bag na ito."), SourceLanguage: "en", TargetLanguage: "tagalog", Domain: nullString("general")},
	{SourceText: "Where is the nearest hospital?", MachineTranslation: "Asa man ang pinaka-duol nga ospital?", ReferenceTranslation: nullString("Asa man ang duol nga tambalanan?"), SourceLanguage: "en", TargetLanguage: "cebuano", Domain: nullString("medical")},
	{SourceText: "Thank you very much for your help.", MachineTranslation: "Salamat kaayo sa imong tabang.", ReferenceTranslation: nullString("Daghang salamat sa imong tabang."), SourceLanguage: "en", TargetLanguage: "cebuano", Domain: nullString("general")},
	{SourceText: "What time does the store open?", MachineTranslation: "Ania nga oras ti panaglukat ti tienda?", ReferenceTranslation: nullString("Mano nga oras ti panaglukat ti tienda?"), SourceLanguage: "en", TargetLanguage: "ilocano", Domain: nullString("general")},
	{SourceText: "I need to buy some food for dinner.", MachineTranslation: "Kinahanglan ko nga mamakal sang pagkaon para sa panihapon.", ReferenceTranslation: nullString("Dapat ako magbakal sang kaon para sa panihapon."), SourceLanguage: "en", TargetLanguage: "hiligaynon", Domain: nullString("general")},
	{SourceText: "The weather is very hot today.", MachineTranslation: "Maaninit na maray an panahon ngonyan.", ReferenceTranslation: nullString("Malasakit na an panahon ngonyan."), SourceLanguage: "en", TargetLanguage: "bicolano", Domain: nullString("general")},
	{SourceText: "Can you speak English?", MachineTranslation: "Makakayani ka ba nga magsulti hin Iningles?", ReferenceTranslation: nullString("Makakabasol ka ba hin Iningles?"), SourceLanguage: "en", TargetLanguage: "waray", Domain: nullString("general")},
	{SourceText: "How much does this cost?", MachineTranslation: "Magkanu ya ini?", ReferenceTranslation: nullString("Pila ya ini?"), SourceLanguage: "en", TargetLanguage: "pampangan", Domain: nullString("general")},
	{SourceText: "Please wait for me here.", MachineTranslation: "Pakiayat ak diad toy lugar.", ReferenceTranslation: nullString("Pakiuray ak diad toy lugar."), SourceLanguage: "en", TargetLanguage: "pangasinan", Domain: nullString("general")},
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Seed creates the default admin account and, optionally, sample sentences.
// It is idempotent.
func Seed(ctx context.Context, db *sql.DB, opts SeedOptions) error {
	if opts.AdminEmail == "" {
		opts.AdminEmail = DefaultAdminEmail
	}
	if opts.AdminPassword == "" {
		opts.AdminPassword = DefaultAdminPassword
	}

	queries := New(db)

	if err := seedAdmin(ctx, queries, opts); err != nil {
		return err
	}

	if !opts.SampleSentences {
		return nil
	}

	count, err := queries.CountSentences(ctx)
	if err != nil {
		return fmt.Errorf("counting sentences: %w", err)
	}
	if count > 0 {
		slog.Info("sentences already present, skipping sample sentences", "count", count)
		return nil
	}

	now := time.Now().UTC()
	for _, s := range sampleSentences {
		s.CreatedAt = now
		if _, err := queries.CreateSentence(ctx, s); err != nil {
			return fmt.Errorf("creating sample sentence: %w", err)
		}
	}
	slog.Info("added sample sentences", "count", len(sampleSentences))

	return nil
}

func seedAdmin(ctx context.Context, queries *Queries, opts SeedOptions) error {
	_, err := queries.GetUserByEmail(ctx, opts.AdminEmail)
	if err == nil {
		slog.Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	passwordHash, err := auth.HashPassword(opts.AdminPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	user, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        opts.AdminEmail,
		Username:     DefaultAdminUsername,
		PasswordHash: passwordHash,
		FirstName:    "Admin",
		LastName:     "User",
		IsActive:     true,
		IsAdmin:      true,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created default admin user",
		"id", user.ID,
		"email", user.Email,
	)

	return nil
}
