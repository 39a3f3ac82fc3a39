// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wimarka/annotate/internal/service"
	"github.com/wimarka/annotate/internal/store"
	"github.com/wimarka/annotate/internal/testutil"
	"github.com/wimarka/annotate/internal/version"
)

// staticTokens resolves "admin" and "user" to fixed accounts.
type staticTokens struct{}

func (staticTokens) ResolveToken(_ context.Context, token string) (store.User, error) {
	switch token {
	case "admin":
		return store.User{ID: 1, IsAdmin: true, IsActive: true}, nil
	case "user":
		return store.User{ID: 2, IsActive: true}, nil
	}
	return store.User{}, service.ErrUnauthorized
}

func newTestHealthHandler(t *testing.T) (*HealthHandler, *sql.DB) {
	t.Helper()
	db := testutil.TestMemoryDB(t)
	return NewHealthHandler(db, staticTokens{}, t.TempDir(), version.Info{Version: "v1.2.3", GitCommit: "abc1234"}), db
}

func serveHealth(h *HealthHandler, fn func(http.ResponseWriter, *http.Request), path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	fn(w, req)
	return w
}

func decodeMap(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return resp
}

func TestHealthHandler_Health_Public(t *testing.T) {
	for _, token := range []string{"", "user", "bogus"} {
		t.Run("token="+token, func(t *testing.T) {
			h, _ := newTestHealthHandler(t)
			w := serveHealth(h, h.Health, "/health", token)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d; want 200", w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q; want application/json", ct)
			}

			resp := decodeMap(t, w)
			if resp["status"] != "healthy" {
				t.Errorf("status = %v; want healthy", resp["status"])
			}
			if _, ok := resp["checks"]; ok {
				t.Error("non-admin response should not include checks")
			}
		})
	}
}

func TestHealthHandler_Health_Admin(t *testing.T) {
	h, _ := newTestHealthHandler(t)
	w := serveHealth(h, h.Health, "/health?verbose=true", "admin")

	var resp HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp.Version != "v1.2.3 (abc1234)" {
		t.Errorf("Version = %q", resp.Version)
	}
	if resp.Checks["database"].Status != "healthy" {
		t.Errorf("database check = %+v", resp.Checks["database"])
	}
	if _, ok := resp.Checks["disk"]; !ok {
		t.Error("disk check missing")
	}
	if resp.System == nil || resp.System.GoVersion == "" {
		t.Error("verbose admin response should include system info")
	}
}

func TestHealthHandler_UnhealthyDatabase(t *testing.T) {
	h, db := newTestHealthHandler(t)
	_ = db.Close()

	w := serveHealth(h, h.Health, "/health", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d; want 503", w.Code)
	}
	if resp := decodeMap(t, w); resp["status"] != "degraded" {
		t.Errorf("status = %v; want degraded", resp["status"])
	}

	w = serveHealth(h, h.Readiness, "/health/ready", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("ready status = %d; want 503", w.Code)
	}
	resp := decodeMap(t, w)
	if resp["status"] != "not_ready" {
		t.Errorf("status = %v; want not_ready", resp["status"])
	}
	if _, ok := resp["message"]; ok {
		t.Error("anonymous not-ready response should not include the error")
	}

	resp = decodeMap(t, serveHealth(h, h.Readiness, "/health/ready", "admin"))
	if resp["message"] == nil {
		t.Error("admin not-ready response should include the error")
	}
}

func TestHealthHandler_Probes(t *testing.T) {
	h, _ := newTestHealthHandler(t)

	if resp := decodeMap(t, serveHealth(h, h.Liveness, "/health/live", "")); resp["status"] != "alive" {
		t.Errorf("liveness status = %v; want alive", resp["status"])
	}
	if resp := decodeMap(t, serveHealth(h, h.Readiness, "/health/ready", "")); resp["status"] != "ready" {
		t.Errorf("readiness status = %v; want ready", resp["status"])
	}
}

func TestHealthHandler_DiskCheck(t *testing.T) {
	tests := []struct {
		name    string
		dataDir string
	}{
		{"unset", ""},
		{"missing", "/nonexistent/annotate-data"},
		{"temp dir", t.TempDir()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &HealthHandler{dataDir: tt.dataDir}
			if check := h.checkDiskSpace(); check.Status == "unhealthy" {
				t.Errorf("checkDiskSpace() = %+v", check)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes uint64
		want  string
	}{
		{0, "0 B"},
		{500, "500 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1048576, "1.00 MB"},
		{1073741824, "1.00 GB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatBytes(tt.bytes); got != tt.want {
				t.Errorf("formatBytes(%d) = %q; want %q", tt.bytes, got, tt.want)
			}
		})
	}
}
