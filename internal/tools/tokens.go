// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package tools

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/wimarka/annotate/internal/corpus"
)

func newTokensCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tokens <file>...",
		Short: "Print token statistics for text files, one sentence per line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			perFile, total, err := corpus.CountFiles(args, "Total")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{"files": perFile, "total": total})
			}

			for _, s := range perFile {
				if err := s.Write(out); err != nil {
					return err
				}
			}
			return total.Write(out)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print statistics as JSON")
	return cmd
}
