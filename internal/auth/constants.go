// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// # Input Constraints

const (
	// MinPasswordLength is enforced on sign-up and reset.
	MinPasswordLength = 8

	// MaxPasswordLength is bcrypt's input limit, in bytes.
	MaxPasswordLength = 72

	// MinUsernameLength is enforced on sign-up.
	MinUsernameLength = 3

	// MaxUsernameLength is enforced on sign-up.
	MaxUsernameLength = 50
)

// # Recovery Lock

const (
	// recoveryLockedCalls is the number of bounded calls RequestOTP makes under the lock.
	recoveryLockedCalls = 4

	recoveryLockSlack        = 2 * time.Second
	unboundedRecoveryLockTTL = time.Minute
)

// # Client Messages

const (
	msgInvalidCredentials = "Invalid email or password"
	msgUserExists         = "User already exists"
	msgUserMissing        = "User does not exist"
	msgRefreshExpired     = "Refresh token expired, please log in again"
	msgRefreshInvalid     = "Invalid refresh token"
	msgRefreshMissing     = "Refresh token not provided"
	msgNoOTP              = "No OTP found. Please request a new one."
	msgInvalidOTP         = "Invalid OTP"
	msgOTPExpired         = "OTP has expired. Please request a new one."
	msgOTPMailFailed      = "Failed to send email. Please try again."
	msgRecoveryInProgress = "A recovery request is already in progress"
	msgSignUpSuccess      = "User created successfully"
	msgLoginSuccess       = "Login successful"
	msgRefreshSuccess     = "Token refreshed successfully"
	msgOTPSent            = "OTP sent successfully to your email"
	msgOTPVerified        = "OTP verified successfully. Your account is now verified."
	msgPasswordReset      = "Password reset successfully. You can now login with your new password."
	msgLogoutSuccess      = "Logged out successfully"
)
