// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"time"

	"github.com/taibuivan/madhouse/internal/platform/constants"
)

// CookieSettings captures every attribute decision, resolved once at startup.
type CookieSettings struct {
	Production      bool
	Domain          string
	AccessHTTPOnly  bool
	FallbackEnabled bool
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
}

// CookieWriter attaches session tokens to responses.
//
// # Cookies
//   - token:          access token, HttpOnly configurable.
//   - refreshToken:   refresh token, always HttpOnly.
//   - token_fallback: access token with SameSite left to the browser default.
type CookieWriter struct {
	settings CookieSettings
}

// NewCookieWriter constructs a [CookieWriter].
func NewCookieWriter(settings CookieSettings) *CookieWriter {
	return &CookieWriter{settings: settings}
}

// WriteSession sets the session cookies for a freshly issued session.
func (cookies *CookieWriter) WriteSession(writer http.ResponseWriter, session *Session) {
	http.SetCookie(writer, cookies.build(
		constants.AccessTokenCookieName, session.AccessToken,
		cookies.settings.AccessTTL, session.AccessExpiresAt,
		cookies.settings.AccessHTTPOnly, cookies.sameSite(),
	))

	http.SetCookie(writer, cookies.build(
		constants.RefreshTokenCookieName, session.RefreshToken,
		cookies.settings.RefreshTTL, session.RefreshExpiresAt,
		true, cookies.sameSite(),
	))

	if cookies.settings.FallbackEnabled {
		http.SetCookie(writer, cookies.build(
			constants.FallbackTokenCookieName, session.AccessToken,
			cookies.settings.AccessTTL, session.AccessExpiresAt,
			true, 0,
		))
	}
}

// Clear overwrites every session cookie with an empty, already-expired one.
func (cookies *CookieWriter) Clear(writer http.ResponseWriter) {
	expired := time.Unix(0, 0)

	http.SetCookie(writer, cookies.expire(constants.AccessTokenCookieName, expired, cookies.settings.AccessHTTPOnly, cookies.sameSite()))
	http.SetCookie(writer, cookies.expire(constants.RefreshTokenCookieName, expired, true, cookies.sameSite()))
	http.SetCookie(writer, cookies.expire(constants.FallbackTokenCookieName, expired, true, 0))
}

func (cookies *CookieWriter) build(name, value string, timeToLive time.Duration, expiresAt time.Time, httpOnly bool, sameSite http.SameSite) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     constants.SessionCookiePath,
		Domain:   cookies.settings.Domain,
		Expires:  expiresAt,
		MaxAge:   int(timeToLive / time.Second),
		Secure:   cookies.settings.Production,
		HttpOnly: httpOnly,
		SameSite: sameSite,
	}
}

func (cookies *CookieWriter) expire(name string, expiredAt time.Time, httpOnly bool, sameSite http.SameSite) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     constants.SessionCookiePath,
		Domain:   cookies.settings.Domain,
		Expires:  expiredAt,
		MaxAge:   -1,
		Secure:   cookies.settings.Production,
		HttpOnly: httpOnly,
		SameSite: sameSite,
	}
}

// sameSite is None in production (cross-site admin UI), Lax elsewhere.
func (cookies *CookieWriter) sameSite() http.SameSite {
	if cookies.settings.Production {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}
