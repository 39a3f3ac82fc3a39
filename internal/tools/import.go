// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package tools

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wimarka/annotate/internal/importer"
	"github.com/wimarka/annotate/internal/service"
	"github.com/wimarka/annotate/internal/store"
)

func newImportCommand(cfg *Config) *cobra.Command {
	var actorEmail string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Bulk insert sentences from a JSON, YAML, CSV or XLSX file",
		Long: `Reads sentences from the given file and inserts them in a single
transaction. The format is chosen by extension. CSV and XLSX files need a
header row with source_text, machine_translation, source_language and
target_language columns.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := importer.ReadFile(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			db, err := openDB(ctx, cfg.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			var actor store.User
			if actorEmail != "" {
				actor, err = store.New(db).GetUserByEmail(ctx, actorEmail)
				if errors.Is(err, sql.ErrNoRows) {
					return fmt.Errorf("no user with email %s", actorEmail)
				}
				if err != nil {
					return fmt.Errorf("loading user: %w", err)
				}
			}

			created, err := service.NewSentenceService(db, service.NewEventService(db)).BulkCreate(ctx, actor, inputs)
			if err != nil {
				return describeImportError(err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d sentences from %s\n", len(created), args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&actorEmail, "as", "", "record the import under this user's email")
	return cmd
}

// describeImportError lists field errors one per line, sorted by field.
func describeImportError(err error) error {
	var ve *service.ValidationError
	if !errors.As(err, &ve) {
		return err
	}

	fields := make([]string, 0, len(ve.Fields))
	for f := range ve.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msg := "validation failed, nothing was imported:"
	for _, f := range fields {
		msg += fmt.Sprintf("\n  %s: %s", f, ve.Fields[f])
	}
	return errors.New(msg)
}
