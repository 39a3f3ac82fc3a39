// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package importer reads sentence batches from JSON, YAML, CSV and XLSX
// files for bulk insertion.
package importer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/wimarka/annotate/internal/service"
)

// Format is a supported input file format.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

var (
	// ErrUnsupportedFormat is returned for unknown file extensions.
	ErrUnsupportedFormat = errors.New("unsupported import format")
	// ErrMissingColumn is returned when a tabular file lacks a required column.
	ErrMissingColumn = errors.New("missing required column")
)

// Column names for tabular formats. They match the JSON field names.
const (
	ColSourceText           = "source_text"
	ColTagalogSourceText    = "tagalog_source_text"
	ColMachineTranslation   = "machine_translation"
	ColReferenceTranslation = "reference_translation"
	ColSourceLanguage       = "source_language"
	ColTargetLanguage       = "target_language"
	ColDomain               = "domain"
)

var requiredColumns = []string{ColSourceText, ColMachineTranslation, ColSourceLanguage, ColTargetLanguage}

// document is the object form of JSON and YAML files. A bare list is
// also accepted.
type document struct {
	Sentences []service.SentenceInput `json:"sentences" yaml:"sentences"`
}

// DetectFormat returns the format implied by the extension of path.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ReadFile reads the sentences in the file at path.
func ReadFile(path string) ([]service.SentenceInput, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	sentences, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return sentences, nil
}

// Read decodes sentences in the given format from r. Values are returned
// as written; validation and normalization happen on insert.
func Read(r io.Reader, format Format) ([]service.SentenceInput, error) {
	switch format {
	case FormatJSON:
		return readJSON(r)
	case FormatYAML:
		return readYAML(r)
	case FormatCSV:
		return readCSV(r)
	case FormatXLSX:
		return readXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func readJSON(r io.Reader) ([]service.SentenceInput, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []service.SentenceInput
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
		return list, nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	return doc.Sentences, nil
}

func readYAML(r io.Reader) ([]service.SentenceInput, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	if node.Content[0].Kind == yaml.SequenceNode {
		var list []service.SentenceInput
		if err := node.Content[0].Decode(&list); err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
		return list, nil
	}

	var doc document
	if err := node.Content[0].Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	return doc.Sentences, nil
}

func readCSV(r io.Reader) ([]service.SentenceInput, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}
	return fromRows(rows)
}

func readXLSX(r io.Reader) ([]service.SentenceInput, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	return fromRows(rows)
}

// fromRows maps a header row plus data rows to sentence inputs. Blank rows
// are skipped. Empty optional cells stay nil.
func fromRows(rows [][]string) ([]service.SentenceInput, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}
	optional := func(row []string, col string) *string {
		v := strings.TrimSpace(cell(row, col))
		if v == "" {
			return nil
		}
		return &v
	}

	sentences := make([]service.SentenceInput, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		sentences = append(sentences, service.SentenceInput{
			SourceText:           cell(row, ColSourceText),
			TagalogSourceText:    optional(row, ColTagalogSourceText),
			MachineTranslation:   cell(row, ColMachineTranslation),
			ReferenceTranslation: optional(row, ColReferenceTranslation),
			SourceLanguage:       cell(row, ColSourceLanguage),
			TargetLanguage:       cell(row, ColTargetLanguage),
			Domain:               optional(row, ColDomain),
		})
	}
	return sentences, nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
