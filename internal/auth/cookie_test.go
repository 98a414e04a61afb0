// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/madhouse/internal/auth"
)

func cookiesByName(recorder *httptest.ResponseRecorder) map[string]*http.Cookie {
	byName := map[string]*http.Cookie{}
	for _, cookie := range recorder.Result().Cookies() {
		byName[cookie.Name] = cookie
	}
	return byName
}

func testSession() *auth.Session {
	return &auth.Session{
		AccessToken:      "access.jwt",
		AccessExpiresAt:  baseTime.Add(15 * time.Minute),
		RefreshToken:     "refresh.jwt",
		RefreshExpiresAt: baseTime.Add(30 * 24 * time.Hour),
		Account:          &auth.Account{ID: 1},
	}
}

/*
TestCookieWriter_Attributes verifies the attribute matrix per environment.
*/
func TestCookieWriter_Attributes(t *testing.T) {
	tests := []struct {
		name       string
		production bool
		secure     bool
		sameSite   http.SameSite
	}{
		{"production", true, true, http.SameSiteNoneMode},
		{"development", false, false, http.SameSiteLaxMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := auth.NewCookieWriter(auth.CookieSettings{
				Production:      tt.production,
				FallbackEnabled: true,
				AccessTTL:       15 * time.Minute,
				RefreshTTL:      30 * 24 * time.Hour,
			})

			recorder := httptest.NewRecorder()
			writer.WriteSession(recorder, testSession())
			cookies := cookiesByName(recorder)

			// 1. Access cookie
			access := cookies["token"]
			require.NotNil(t, access)
			assert.Equal(t, "access.jwt", access.Value)
			assert.Equal(t, 900, access.MaxAge)
			assert.Equal(t, "/", access.Path)
			assert.Equal(t, tt.secure, access.Secure)
			assert.Equal(t, tt.sameSite, access.SameSite)
			assert.False(t, access.HttpOnly)

			// 2. Refresh cookie
			refresh := cookies["refreshToken"]
			require.NotNil(t, refresh)
			assert.Equal(t, "refresh.jwt", refresh.Value)
			assert.Equal(t, 30*24*3600, refresh.MaxAge)
			assert.True(t, refresh.HttpOnly)
			assert.Equal(t, tt.secure, refresh.Secure)
			assert.Equal(t, tt.sameSite, refresh.SameSite)

			// 3. Fallback cookie leaves SameSite to the browser
			fallback := cookies["token_fallback"]
			require.NotNil(t, fallback)
			assert.Equal(t, "access.jwt", fallback.Value)
			assert.True(t, fallback.HttpOnly)
			assert.Equal(t, http.SameSite(0), fallback.SameSite)
		})
	}
}

/*
TestCookieWriter_FallbackDisabled omits the fallback copy.
*/
func TestCookieWriter_FallbackDisabled(t *testing.T) {
	writer := auth.NewCookieWriter(auth.CookieSettings{AccessHTTPOnly: true, AccessTTL: time.Minute, RefreshTTL: time.Hour})

	recorder := httptest.NewRecorder()
	writer.WriteSession(recorder, testSession())
	cookies := cookiesByName(recorder)

	assert.Len(t, cookies, 2)
	assert.True(t, cookies["token"].HttpOnly)
	assert.NotContains(t, cookies, "token_fallback")
}

/*
TestCookieWriter_Clear expires all three cookies.
*/
func TestCookieWriter_Clear(t *testing.T) {
	writer := auth.NewCookieWriter(auth.CookieSettings{Production: true})

	recorder := httptest.NewRecorder()
	writer.Clear(recorder)
	cookies := cookiesByName(recorder)

	require.Len(t, cookies, 3)
	for _, name := range []string{"token", "refreshToken", "token_fallback"} {
		cookie := cookies[name]
		require.NotNil(t, cookie, name)
		assert.Empty(t, cookie.Value)
		assert.Equal(t, -1, cookie.MaxAge)
		assert.Equal(t, "/", cookie.Path)
	}
}
