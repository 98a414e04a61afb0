// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/madhouse/internal/platform/sec"
)

// fixedClock is a settable clock shared between issuer and verifier.
type fixedClock struct {
	current time.Time
}

func (clock *fixedClock) Now() time.Time { return clock.current }

func newTokenService(t *testing.T, clock *fixedClock) *sec.TokenService {
	t.Helper()
	service, err := sec.NewTokenService("access-secret", "refresh-secret", "test-issuer", sec.WithTokenClock(clock.Now))
	require.NoError(t, err)
	return service
}

/*
TestNewTokenService_RejectsSharedSecrets ensures the two token kinds stay separable.
*/
func TestNewTokenService_RejectsSharedSecrets(t *testing.T) {
	_, err := sec.NewTokenService("same", "same", "iss")
	assert.Error(t, err)

	_, err = sec.NewTokenService("", "refresh", "iss")
	assert.Error(t, err)
}

/*
TestAccessToken_RoundTrip verifies the claims survive signing and verification.
*/
func TestAccessToken_RoundTrip(t *testing.T) {
	clock := &fixedClock{current: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	service := newTokenService(t, clock)

	token, expiresAt, err := service.IssueAccessToken(sec.Identity{
		ID: 7, Email: "a@b.com", Username: "alice", IsVerified: true,
	}, 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, clock.current.Add(15*time.Minute), expiresAt)

	claims, err := service.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.AccountID)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, "a@b.com", claims.Email)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.IsVerified)
}

/*
TestAccessToken_ExpiryBoundary checks that a token is rejected at exactly its
exp instant and accepted one second earlier.
*/
func TestAccessToken_ExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := &fixedClock{current: issuedAt}
	service := newTokenService(t, clock)

	token, _, err := service.IssueAccessToken(sec.Identity{ID: 1, Email: "x@y.z"}, 15*time.Minute)
	require.NoError(t, err)

	// 1. One second before exp: valid
	clock.current = issuedAt.Add(15*time.Minute - time.Second)
	_, err = service.VerifyAccessToken(token)
	assert.NoError(t, err)

	// 2. Exactly at exp: expired
	clock.current = issuedAt.Add(15 * time.Minute)
	_, err = service.VerifyAccessToken(token)
	assert.ErrorIs(t, err, sec.ErrTokenExpired)

	// 3. Later: still expired
	clock.current = issuedAt.Add(time.Hour)
	_, err = service.VerifyAccessToken(token)
	assert.ErrorIs(t, err, sec.ErrTokenExpired)
}

/*
TestTokens_NotInterchangeable verifies a refresh token is never accepted as an
access token and vice versa.
*/
func TestTokens_NotInterchangeable(t *testing.T) {
	clock := &fixedClock{current: time.Now()}
	service := newTokenService(t, clock)

	refresh, _, err := service.IssueRefreshToken(9, time.Hour)
	require.NoError(t, err)
	access, _, err := service.IssueAccessToken(sec.Identity{ID: 9}, time.Hour)
	require.NoError(t, err)
	subscription, err := service.IssueSubscriptionToken(9, time.Hour)
	require.NoError(t, err)

	_, err = service.VerifyAccessToken(refresh)
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)

	_, err = service.VerifyRefreshToken(access)
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)

	_, err = service.VerifyAccessToken(subscription)
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)

	claims, err := service.VerifyRefreshToken(refresh)
	require.NoError(t, err)
	id, err := claims.AccountID()
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)

	sub, err := service.VerifySubscriptionToken(subscription)
	require.NoError(t, err)
	assert.Equal(t, int64(9), sub.ContactID)
}

/*
TestVerify_Garbage ensures malformed and foreign-signed input maps to ErrTokenInvalid.
*/
func TestVerify_Garbage(t *testing.T) {
	clock := &fixedClock{current: time.Now()}
	service := newTokenService(t, clock)

	other, err := sec.NewTokenService("other-access", "other-refresh", "test-issuer", sec.WithTokenClock(clock.Now))
	require.NoError(t, err)
	foreign, _, err := other.IssueAccessToken(sec.Identity{ID: 1}, time.Hour)
	require.NoError(t, err)

	for _, token := range []string{"", "not-a-jwt", "a.b.c", foreign} {
		_, err := service.VerifyAccessToken(token)
		assert.ErrorIs(t, err, sec.ErrTokenInvalid, token)
	}
}
