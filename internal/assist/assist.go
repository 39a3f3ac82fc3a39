// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package assist is a client for an Ollama-style text generation endpoint
// used to draft machine translations.
package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const httpTimeout = 120 * time.Second

// Default endpoint settings.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "gemma3:4b"
)

// StatusError is returned when the endpoint answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("generate failed (status %d): %s", e.StatusCode, e.Body)
}

// Client calls {BaseURL}/api/generate.
type Client struct {
	baseURL string
	model   string
	http    *http.Client
}

// New creates a client for baseURL and model. Empty values fall back to
// DefaultBaseURL and DefaultModel. A nil httpClient uses a client with a
// 120s timeout.
func New(baseURL, model string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: httpTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    httpClient,
	}
}

// Model returns the model name sent with each request.
func (c *Client) Model() string { return c.model }

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends prompt as a single non-streaming request and returns the
// generated text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Model: c.model, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("http call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var result generateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	return result.Response, nil
}

// TranslatePrompt builds the prompt asking for line in language.
func TranslatePrompt(line, language string) string {
	return fmt.Sprintf("Translate this line '%s' into %s. Then response only with this format: %s - Translation", line, language, line)
}

// Translate asks the model to translate line into language.
func (c *Client) Translate(ctx context.Context, line, language string) (string, error) {
	return c.Generate(ctx, TranslatePrompt(line, language))
}
