// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Timeout bounds handler time. When the deadline passes before the handler
// has written anything, a 503 JSON error is sent. Handlers observe the
// deadline through the request context. A handler panic is re-raised on the
// calling goroutine so an outer recoverer can handle it.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			done := make(chan struct{})
			panicked := make(chan any, 1)
			tw := &timeoutWriter{ResponseWriter: w}

			go func() {
				defer close(done)
				defer func() {
					if p := recover(); p != nil {
						panicked <- p
					}
				}()
				next.ServeHTTP(tw, r.WithContext(ctx))
			}()

			select {
			case <-done:
				rethrow(panicked)
			case <-ctx.Done():
				select {
				case <-done:
					rethrow(panicked)
					return
				default:
				}
				tw.mu.Lock()
				if !tw.wroteHeader {
					tw.timedOut = true
					WriteAPIError(w, http.StatusServiceUnavailable, CodeTimeout, "Request timeout", nil)
					tw.mu.Unlock()
					go logLatePanic(r, done, panicked)
					return
				}
				tw.mu.Unlock()
				// Headers already went out, so the handler finishes the response.
				<-done
				rethrow(panicked)
			}
		})
	}
}

func rethrow(panicked <-chan any) {
	select {
	case p := <-panicked:
		panic(p)
	default:
	}
}

// logLatePanic reports a panic raised after the timeout response was sent.
func logLatePanic(r *http.Request, done <-chan struct{}, panicked <-chan any) {
	<-done
	select {
	case p := <-panicked:
		slog.Error("handler panicked after timeout", "panic", p, "method", r.Method, "path", r.URL.Path)
	default:
	}
}

// timeoutWriter tracks whether headers were written and discards output
// produced after a timeout response.
type timeoutWriter struct {
	http.ResponseWriter
	mu          sync.Mutex
	wroteHeader bool
	timedOut    bool
}

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut || tw.wroteHeader {
		return
	}
	tw.wroteHeader = true
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	if !tw.wroteHeader {
		tw.wroteHeader = true
		tw.ResponseWriter.WriteHeader(http.StatusOK)
	}
	return tw.ResponseWriter.Write(b)
}
