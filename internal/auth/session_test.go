// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/madhouse/internal/auth"
	"github.com/taibuivan/madhouse/internal/platform/apperr"
)

/*
TestSignUp_HashesAndHidesSecrets checks the stored hash and the serialized account.
*/
func TestSignUp_HashesAndHidesSecrets(t *testing.T) {
	f := newFixture(t)

	account, err := f.service.SignUp(context.Background(), auth.SignUpInput{
		Email:    "  Admin@Madhouse.Example ",
		Password: "correct-horse",
		Username: "admin",
	})
	require.NoError(t, err)

	// 1. Email normalized, password hashed
	assert.Equal(t, "admin@madhouse.example", account.Email)
	assert.NotEqual(t, "correct-horse", account.PasswordHash)
	assert.True(t, f.hasher.Compare("correct-horse", f.accounts.get(t, account.ID).PasswordHash))
	assert.False(t, account.IsVerified)

	// 2. Secrets never serialize
	account.SetOTP("123456", baseTime)
	payload, err := json.Marshal(account)
	require.NoError(t, err)
	assert.NotContains(t, string(payload), "correct-horse")
	assert.NotContains(t, string(payload), account.PasswordHash)
	assert.NotContains(t, string(payload), "123456")
}

/*
TestSignUp_Conflict covers both the pre-check and a race lost at insert time.
*/
func TestSignUp_Conflict(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "admin@madhouse.example", "correct-horse")

	_, err := f.service.SignUp(context.Background(), auth.SignUpInput{Email: "ADMIN@madhouse.example", Password: "x-password", Username: "b"})
	assertAppError(t, err, http.StatusConflict, "User already exists")

	f.accounts.createErr = auth.ErrEmailTaken
	_, err = f.service.SignUp(context.Background(), auth.SignUpInput{Email: "other@madhouse.example", Password: "x-password", Username: "c"})
	assertAppError(t, err, http.StatusConflict, "User already exists")
}

/*
TestLogin_RoundTripClaims verifies the access token carries the account snapshot.
*/
func TestLogin_RoundTripClaims(t *testing.T) {
	f := newFixture(t)
	account := f.seed(t, "admin@madhouse.example", "correct-horse")

	session, err := f.service.Login(context.Background(), "Admin@Madhouse.example", "correct-horse")
	require.NoError(t, err)

	claims, err := f.tokens.VerifyAccessToken(session.AccessToken)
	require.NoError(t, err)

	assert.Equal(t, account.ID, claims.AccountID)
	assert.Equal(t, "admin@madhouse.example", claims.Email)
	assert.Equal(t, "admin", claims.Username)
	assert.False(t, claims.IsVerified)
	assert.Equal(t, "1", claims.Subject)
	assert.Equal(t, baseTime.Add(15*time.Minute), session.AccessExpiresAt)
	assert.Equal(t, baseTime.Add(30*24*time.Hour), session.RefreshExpiresAt)

	refresh, err := f.tokens.VerifyRefreshToken(session.RefreshToken)
	require.NoError(t, err)
	refreshID, err := refresh.AccountID()
	require.NoError(t, err)
	assert.Equal(t, account.ID, refreshID)
}

/*
TestLogin_EnumerationResistant ensures unknown email and wrong password are indistinguishable.
*/
func TestLogin_EnumerationResistant(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "admin@madhouse.example", "correct-horse")

	_, unknownErr := f.service.Login(context.Background(), "nobody@madhouse.example", "correct-horse")
	_, wrongErr := f.service.Login(context.Background(), "admin@madhouse.example", "wrong-horse")

	assertAppError(t, unknownErr, http.StatusUnauthorized, "Invalid email or password")
	assertAppError(t, wrongErr, http.StatusUnauthorized, "Invalid email or password")
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

/*
TestRefresh covers the happy path and every rejection branch.
*/
func TestRefresh(t *testing.T) {
	f := newFixture(t)
	account := f.seed(t, "admin@madhouse.example", "correct-horse")

	session, err := f.service.Login(context.Background(), "admin@madhouse.example", "correct-horse")
	require.NoError(t, err)

	t.Run("mints_fresh_pair_with_current_claims", func(t *testing.T) {
		// Verification happened after login; refresh must pick it up
		stored := f.accounts.get(t, account.ID)
		stored.IsVerified = true
		require.NoError(t, f.accounts.Update(context.Background(), stored))

		f.now = baseTime.Add(time.Hour)
		t.Cleanup(func() { f.now = baseTime })

		refreshed, err := f.service.Refresh(context.Background(), session.RefreshToken)
		require.NoError(t, err)

		claims, err := f.tokens.VerifyAccessToken(refreshed.AccessToken)
		require.NoError(t, err)
		assert.True(t, claims.IsVerified)
		assert.Equal(t, baseTime.Add(time.Hour+15*time.Minute), refreshed.AccessExpiresAt)
	})

	t.Run("access_token_is_not_a_refresh_token", func(t *testing.T) {
		_, err := f.service.Refresh(context.Background(), session.AccessToken)
		assertAppError(t, err, http.StatusUnauthorized, "Invalid refresh token")
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := f.service.Refresh(context.Background(), "garbage")
		assertAppError(t, err, http.StatusUnauthorized, "Invalid refresh token")
	})

	t.Run("expired", func(t *testing.T) {
		f.now = baseTime.Add(30 * 24 * time.Hour)
		t.Cleanup(func() { f.now = baseTime })

		_, err := f.service.Refresh(context.Background(), session.RefreshToken)
		assertAppError(t, err, http.StatusUnauthorized, "Refresh token expired, please log in again")
	})

	t.Run("account_deleted", func(t *testing.T) {
		f.accounts.delete(account.ID)

		_, err := f.service.Refresh(context.Background(), session.RefreshToken)
		assertAppError(t, err, http.StatusUnauthorized, "Invalid refresh token")
	})
}

/*
TestCurrentIdentity_And_IsVerified reads fresh state from the store.
*/
func TestCurrentIdentity_And_IsVerified(t *testing.T) {
	f := newFixture(t)
	account := f.seed(t, "admin@madhouse.example", "correct-horse")

	profile, err := f.service.CurrentIdentity(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, auth.ProfileView{ID: account.ID, Email: "admin@madhouse.example", Username: "admin"}, *profile)

	verified, err := f.service.IsVerified(context.Background(), account.ID)
	require.NoError(t, err)
	assert.False(t, verified)

	verified, err = f.service.IsVerified(context.Background(), 999)
	require.NoError(t, err)
	assert.False(t, verified)

	_, err = f.service.CurrentIdentity(context.Background(), 999)
	assertAppError(t, err, http.StatusNotFound, "User not found")
}

func assertAppError(t *testing.T, err error, status int, message string) {
	t.Helper()
	appError := apperr.As(err)
	require.NotNil(t, appError, "expected AppError, got %v", err)
	assert.Equal(t, status, appError.HTTPStatus)
	assert.Equal(t, message, appError.Message)
}
