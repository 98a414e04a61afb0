// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the admin identity and session subsystem.

It owns credential verification, dual-token session issuance, the OTP-based
password-recovery state machine and the verification lookup used by the
route guards.

# Architecture

  - Entities: [Account] and its public [ProfileView].
  - Service: Orchestrates sign-up, login, refresh and recovery.
  - Repository: [AccountRepository], implemented on PostgreSQL.
  - Transport: [Handler] and [CookieWriter].

Sessions are stateless; nothing about a session is persisted server-side.
*/
package auth

import (
	"strings"
	"time"

	"github.com/taibuivan/madhouse/internal/platform/sec"
)

// # Domain Entities

// Account represents an administrator of the Madhouse backend.
//
// OTP and OTPExpiry are either both nil or both set.
type Account struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	IsVerified   bool       `json:"isVerified"`
	OTP          *string    `json:"-"`
	OTPExpiry    *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Identity returns the snapshot embedded into access tokens.
func (account *Account) Identity() sec.Identity {
	return sec.Identity{
		ID:         account.ID,
		Email:      account.Email,
		Username:   account.Username,
		IsVerified: account.IsVerified,
	}
}

// HasOTP reports whether a recovery attempt is outstanding.
func (account *Account) HasOTP() bool {
	return account.OTP != nil && account.OTPExpiry != nil
}

// SetOTP replaces any outstanding code.
func (account *Account) SetOTP(code string, expiry time.Time) {
	account.OTP = &code
	account.OTPExpiry = &expiry
}

// ClearOTP drops the outstanding code.
func (account *Account) ClearOTP() {
	account.OTP = nil
	account.OTPExpiry = nil
}

// ProfileView is the account shape returned by /auth/me and login.
type ProfileView struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	IsVerified bool   `json:"isVerified"`
}

// Profile projects the account onto its public view.
func (account *Account) Profile() ProfileView {
	return ProfileView{
		ID:         account.ID,
		Email:      account.Email,
		Username:   account.Username,
		IsVerified: account.IsVerified,
	}
}

// NormalizeEmail lowercases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// # Field Identifiers

// Field names used in validation details and response bodies.
const (
	FieldUsername     = "username"
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldNewPassword  = "newPassword"
	FieldOTP          = "otp"
	FieldRefreshToken = "refresh_token"
	FieldAccessToken  = "access_token"
	FieldUser         = "user"
	FieldMessage      = "message"
)
