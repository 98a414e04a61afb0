// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/taibuivan/madhouse/internal/platform/apperr"
	"github.com/taibuivan/madhouse/internal/platform/constants"
	"github.com/taibuivan/madhouse/internal/platform/ctxutil"
	"github.com/taibuivan/madhouse/internal/platform/respond"
	"github.com/taibuivan/madhouse/internal/platform/sec"
)

// # Token Extraction

// TokenSource extracts a bearer credential from a request. It reports false
// when the source holds nothing usable.
type TokenSource func(request *http.Request) (string, bool)

// FromCookie reads the token from the named cookie.
func FromCookie(name string) TokenSource {
	return func(request *http.Request) (string, bool) {
		cookie, err := request.Cookie(name)
		if err != nil || cookie.Value == "" {
			return "", false
		}
		return cookie.Value, true
	}
}

// FromBearerHeader reads an 'Authorization: Bearer <token>' header.
// A header using any other scheme is treated as absent.
func FromBearerHeader() TokenSource {
	return func(request *http.Request) (string, bool) {
		scheme, token, found := strings.Cut(request.Header.Get(constants.HeaderAuthorization), " ")
		if !found || !strings.EqualFold(scheme, "bearer") {
			return "", false
		}
		token = strings.TrimSpace(token)
		return token, token != ""
	}
}

// FromHeader reads the raw token from a custom header.
func FromHeader(name string) TokenSource {
	return func(request *http.Request) (string, bool) {
		token := strings.TrimSpace(request.Header.Get(name))
		return token, token != ""
	}
}

// DefaultTokenSources returns the extraction order used by the admin API:
// primary cookie, fallback cookie, bearer header, custom header.
func DefaultTokenSources() []TokenSource {
	return []TokenSource{
		FromCookie(constants.AccessTokenCookieName),
		FromCookie(constants.FallbackTokenCookieName),
		FromBearerHeader(),
		FromHeader(constants.HeaderAccessToken),
	}
}

// ExtractToken tries each source in order and returns the first hit.
func ExtractToken(request *http.Request, sources []TokenSource) (string, bool) {
	for _, source := range sources {
		if token, ok := source(request); ok {
			return token, true
		}
	}
	return "", false
}

// # Identity Guard

// TokenVerifier defines the interface needed to verify access tokens in middleware.
//
// Defining TokenVerifier here decouples the middleware from [sec.TokenService],
// allowing us to inject fakes during unit testing.
type TokenVerifier interface {
	VerifyAccessToken(tokenStr string) (*sec.AccessClaims, error)
}

// Authenticate is the identity guard. It rejects requests that carry no valid
// access token and injects [*sec.AccessClaims] into the request context.
//
// # Flow
//  1. Try every [TokenSource] in order (defaults when none are given).
//  2. If none yields a token, abort with 401 "No token provided".
//  3. Verify the token; expired and invalid tokens get distinct 401 messages.
//  4. Inject the claims and a user-scoped logger into the context.
func Authenticate(verifier TokenVerifier, sources ...TokenSource) func(http.Handler) http.Handler {
	if len(sources) == 0 {
		sources = DefaultTokenSources()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Extraction ─────────────────────────────────────────────────
			token, ok := ExtractToken(request, sources)
			if !ok {
				respond.Error(writer, request, apperr.Unauthorized("No token provided"))
				return
			}

			// ── 2. Verification ───────────────────────────────────────────────
			claims, err := verifier.VerifyAccessToken(token)
			if err != nil {
				ctxutil.GetLogger(request.Context()).DebugContext(request.Context(), "identity_guard_rejected",
					slog.String("reason", err.Error()),
				)
				if errors.Is(err, sec.ErrTokenExpired) {
					respond.Error(writer, request, apperr.Unauthorized("Token has expired"))
					return
				}
				respond.Error(writer, request, apperr.Unauthorized("Invalid token"))
				return
			}

			// ── 3. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			ctx = ctxutil.WithLogger(ctx, ctxutil.GetLogger(ctx).With(slog.Int64("account_id", claims.AccountID)))
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// # Verification Guard

// VerificationChecker reports the current verification state of an account.
// It returns false without error when the account no longer exists.
type VerificationChecker interface {
	IsVerified(ctx context.Context, accountID int64) (bool, error)
}

// RequireVerified is the verification guard. It must be mounted AFTER
// [Authenticate]. The flag embedded in the token is ignored; the current
// value is always re-read through checker.
func RequireVerified(checker VerificationChecker, timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			claims := ctxutil.GetAuthUser(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if claims == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			// ── 2. Fresh Verification Lookup ──────────────────────────────────
			ctx, cancel := context.WithTimeout(request.Context(), timeout)
			verified, err := checker.IsVerified(ctx, claims.AccountID)
			cancel()

			if err != nil {
				respond.Error(writer, request, apperr.Internal(err))
				return
			}

			if !verified {
				respond.Error(writer, request, apperr.Forbidden(
					"Account is not verified. Please verify your account to access this resource.",
				))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// # Guard Bundle

// Guards bundles the identity and verification guards so domain handlers can
// mount them on their own route groups.
type Guards struct {
	Identity func(http.Handler) http.Handler
	Verified func(http.Handler) http.Handler
}

// NewGuards builds both guards. Verified already includes Identity.
func NewGuards(verifier TokenVerifier, checker VerificationChecker, timeout time.Duration, sources ...TokenSource) Guards {
	identity := Authenticate(verifier, sources...)
	verified := RequireVerified(checker, timeout)

	return Guards{
		Identity: identity,
		Verified: func(next http.Handler) http.Handler {
			return identity(verified(next))
		},
	}
}
