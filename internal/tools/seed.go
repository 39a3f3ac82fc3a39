// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package tools

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wimarka/annotate/internal/store"
)

func newSeedCommand(cfg *Config) *cobra.Command {
	var samples bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the admin account and optionally the sample sentences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDB(cmd.Context(), cfg.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			err = store.Seed(cmd.Context(), db, store.SeedOptions{
				AdminEmail:      cfg.AdminEmail,
				AdminPassword:   cfg.AdminPassword,
				SampleSentences: samples,
			})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s\n", cfg.DBPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&samples, "samples", true, "insert sample sentences when the table is empty")
	cmd.Flags().StringVar(&cfg.AdminEmail, "admin-email", cfg.AdminEmail, "admin account email")
	return cmd
}
