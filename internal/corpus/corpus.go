// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package corpus computes token statistics over plain-text sentence files,
// one sentence per line.
package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// punctuation is split off into tokens of its own.
var punctuation = strings.NewReplacer(
	`"`, ` " `,
	",", " , ",
	".", " . ",
	"!", " ! ",
	"?", " ? ",
	";", " ; ",
	":", " : ",
	"(", " ( ",
	")", " ) ",
)

// Tokenize splits line into whitespace-separated tokens after separating
// punctuation. The line is converted to NFC first so composed and
// decomposed spellings count as the same token.
func Tokenize(line string) []string {
	return strings.Fields(punctuation.Replace(norm.NFC.String(line)))
}

// Stats summarises the tokens of a file or group of files.
type Stats struct {
	Name         string  `json:"name"`
	Lines        int     `json:"lines"`
	Tokens       int     `json:"tokens"`
	UniqueTokens int     `json:"unique_tokens"`
	MaxTokens    int     `json:"max_tokens"`
	MinTokens    int     `json:"min_tokens"`
	AvgTokens    float64 `json:"avg_tokens"`
}

// Counter accumulates token counts line by line. The zero value is ready
// to use.
type Counter struct {
	seen    map[string]struct{}
	tokens  int
	lengths []int
}

// AddLine tokenizes line and records it. Empty lines count as lines with
// zero tokens.
func (c *Counter) AddLine(line string) {
	if c.seen == nil {
		c.seen = make(map[string]struct{})
	}
	tokens := Tokenize(line)
	for _, tok := range tokens {
		c.seen[tok] = struct{}{}
	}
	c.tokens += len(tokens)
	c.lengths = append(c.lengths, len(tokens))
}

// Merge adds everything recorded by other to c.
func (c *Counter) Merge(other *Counter) {
	if c.seen == nil {
		c.seen = make(map[string]struct{}, len(other.seen))
	}
	for tok := range other.seen {
		c.seen[tok] = struct{}{}
	}
	c.tokens += other.tokens
	c.lengths = append(c.lengths, other.lengths...)
}

// Stats returns the summary of what c has recorded under name.
func (c *Counter) Stats(name string) Stats {
	s := Stats{
		Name:         name,
		Lines:        len(c.lengths),
		Tokens:       c.tokens,
		UniqueTokens: len(c.seen),
	}
	if len(c.lengths) == 0 {
		return s
	}

	s.MinTokens = c.lengths[0]
	for _, n := range c.lengths {
		s.MaxTokens = max(s.MaxTokens, n)
		s.MinTokens = min(s.MinTokens, n)
	}
	s.AvgTokens = float64(c.tokens) / float64(len(c.lengths))
	return s
}

// Count reads r line by line into a new Counter.
func Count(r io.Reader) (*Counter, error) {
	c := &Counter{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		c.AddLine(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

// CountFiles returns per-file statistics for paths and the aggregate over
// all of them, named total.
func CountFiles(paths []string, total string) ([]Stats, Stats, error) {
	all := &Counter{}
	perFile := make([]Stats, 0, len(paths))

	for _, path := range paths {
		c, err := countFile(path)
		if err != nil {
			return nil, Stats{}, err
		}
		perFile = append(perFile, c.Stats(path))
		all.Merge(c)
	}

	return perFile, all.Stats(total), nil
}

func countFile(path string) (*Counter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	c, err := Count(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return c, nil
}

// Write prints s in the plain report format used by the tools CLI.
func (s Stats) Write(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s\nTokens: %d\nUnique Tokens: %d\nMax Tokens: %d\nMin Tokens: %d\nAvg Tokens: %.2f\n\n",
		s.Name, s.Tokens, s.UniqueTokens, s.MaxTokens, s.MinTokens, s.AvgTokens)
	return err
}
