// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler holds HTTP helpers shared by the API handlers and the
// health endpoints.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// ErrMissingParam is returned when a URL parameter is empty.
var ErrMissingParam = errors.New("missing url parameter")

// ParseIDParam parses the "{id}" URL parameter.
func ParseIDParam(r *http.Request) (int64, error) {
	return ParseURLParamInt64(r, "id")
}

// ParseURLParamInt64 parses a named chi URL parameter as int64.
func ParseURLParamInt64(r *http.Request, name string) (int64, error) {
	str := chi.URLParam(r, name)
	if str == "" {
		return 0, ErrMissingParam
	}
	return strconv.ParseInt(str, 10, 64)
}

// ParseIntParam parses an integer query parameter.
// Returns defaultVal if the parameter is missing, empty, or invalid.
// Values below minVal return defaultVal.
func ParseIntParam(r *http.Request, param string, defaultVal, minVal int64) int64 {
	str := r.URL.Query().Get(param)
	if str == "" {
		return defaultVal
	}
	val, err := strconv.ParseInt(str, 10, 64)
	if err != nil || val < minVal {
		return defaultVal
	}
	return val
}

// ParsePage reads the skip and limit query parameters. A missing or
// invalid limit yields 0, which the services replace with their default;
// oversized limits are clamped by the services.
func ParsePage(r *http.Request) (skip, limit int64) {
	return ParseIntParam(r, "skip", 0, 0), ParseIntParam(r, "limit", 0, 1)
}
