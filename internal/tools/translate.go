// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package tools

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wimarka/annotate/internal/assist"
)

func newTranslateCommand(cfg *Config) *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "translate <file>",
		Short: "Draft machine translations for each line of a text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer func() { _ = f.Close() }()

			client := assist.New(cfg.AssistURL, cfg.AssistModel, nil)

			out := cmd.OutOrStdout()
			n, failed := 0, 0
			scanner := bufio.NewScanner(f)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				n++
				text, err := client.Translate(cmd.Context(), line, language)
				if err != nil {
					failed++
					_, _ = fmt.Fprintf(out, "%d. Request failed: %v\n", n, err)
					continue
				}
				_, _ = fmt.Fprintf(out, "%d. %s\n", n, strings.TrimSpace(text))
			}
			if err := scanner.Err(); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d lines failed", failed, n)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", "Tagalog", "target language")
	cmd.Flags().StringVar(&cfg.AssistURL, "url", cfg.AssistURL, "generation endpoint base URL")
	cmd.Flags().StringVar(&cfg.AssistModel, "model", cfg.AssistModel, "model name")
	return cmd
}
