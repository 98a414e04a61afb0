// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/madhouse/internal/api"
	"github.com/taibuivan/madhouse/internal/auth"
	"github.com/taibuivan/madhouse/internal/contacts"
	"github.com/taibuivan/madhouse/internal/events"
	"github.com/taibuivan/madhouse/internal/platform/config"
	"github.com/taibuivan/madhouse/internal/platform/middleware"
	"github.com/taibuivan/madhouse/internal/platform/sec"
	"github.com/taibuivan/madhouse/internal/platform/storage"
)

// unverified treats every account as unverified; no store is involved.
type unverified struct{}

func (unverified) IsVerified(context.Context, int64) (bool, error) { return false, nil }

// newTestServer assembles the router with services that never reach a store:
// every request exercised here is answered by middleware or a guard.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	tokens, err := sec.NewTokenService("access-secret", "refresh-secret", "madhouse-admin")
	require.NoError(t, err)

	cfg := &config.Config{ServerPort: "0", Environment: "production", ExtraOrigins: "https://admin.madhouse.example"}

	authService := auth.NewService(nil, tokens, sec.NewPasswordHasher(4), nil, auth.Settings{})
	handlers := api.Handlers{
		Liveness:  func(writer http.ResponseWriter, _ *http.Request) { writer.WriteHeader(http.StatusOK) },
		Readiness: func(writer http.ResponseWriter, _ *http.Request) { writer.WriteHeader(http.StatusOK) },
		Auth:      auth.NewHandler(authService, auth.NewCookieWriter(auth.CookieSettings{})),
		Events:    events.NewHandler(events.NewService(nil, storage.Unconfigured{}, time.Second)),
		Contacts:  contacts.NewHandler(contacts.NewService(nil, tokens, nil, contacts.Settings{})),
	}

	guards := middleware.NewGuards(tokens, unverified{}, time.Second)
	return api.NewServer(t.Context(), cfg, quietLogger(), guards, handlers).Handler()
}

/*
TestServer_Routing checks mounting, guard placement and CORS on the assembled router.
*/
func TestServer_Routing(t *testing.T) {
	server := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"liveness", http.MethodGet, "/health", http.StatusOK},
		{"readiness", http.MethodGet, "/ready", http.StatusOK},
		{"me_requires_identity", http.MethodGet, "/auth/me", http.StatusUnauthorized},
		{"event_write_requires_identity", http.MethodPost, "/events", http.StatusUnauthorized},
		{"contact_list_requires_identity", http.MethodGet, "/contacts", http.StatusUnauthorized},
		{"bulk_email_requires_identity", http.MethodPost, "/contacts/bulk-email", http.StatusUnauthorized},
		{"unknown_route", http.MethodGet, "/comics", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, recorder.Code)
			assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
		})
	}
}

/*
TestServer_CORS allows listed origins only, outside development.
*/
func TestServer_CORS(t *testing.T) {
	server := newTestServer(t)

	preflight := func(origin string) *httptest.ResponseRecorder {
		request := httptest.NewRequest(http.MethodOptions, "/events", nil)
		request.Header.Set("Origin", origin)
		recorder := httptest.NewRecorder()
		server.ServeHTTP(recorder, request)
		return recorder
	}

	allowed := preflight("https://admin.madhouse.example")
	assert.Equal(t, http.StatusNoContent, allowed.Code)
	assert.Equal(t, "https://admin.madhouse.example", allowed.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", allowed.Header().Get("Access-Control-Allow-Credentials"))

	denied := preflight("https://evil.example")
	assert.Empty(t, denied.Header().Get("Access-Control-Allow-Origin"))
}
