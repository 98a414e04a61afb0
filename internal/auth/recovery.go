// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/madhouse/internal/platform/apperr"
	"github.com/taibuivan/madhouse/internal/platform/ctxutil"
	"github.com/taibuivan/madhouse/internal/platform/mail"
	"github.com/taibuivan/madhouse/internal/platform/redis"
)

// # Password Recovery
//
// States per account: NoRecovery -> OtpIssued -> (Verified | Expired | Consumed).
// Every transition back to NoRecovery clears the OTP pair in the same write.

// RecoveryLockTTL is the lease a recovery lock needs to outlive the longest
// locked section: lookup, persist, dispatch and rollback, each bounded by
// storeTimeout. Without a store timeout the calls are unbounded and a fixed
// lease applies.
func RecoveryLockTTL(storeTimeout time.Duration) time.Duration {
	if storeTimeout <= 0 {
		return unboundedRecoveryLockTTL
	}
	return recoveryLockedCalls*storeTimeout + recoveryLockSlack
}

/*
RequestOTP issues a fresh one-time code and mails it to the account.

A new request overwrites any outstanding code. If delivery fails the code is
rolled back so no undeliverable OTP stays valid.

Parameters:
  - ctx: context.Context
  - email: string

Returns:
  - string: Normalized email the code was sent to
  - error: Unauthorized (unknown account), BadRequest (mail failure) or Conflict (concurrent attempt)
*/
func (service *Service) RequestOTP(ctx context.Context, email string) (string, error) {
	email = NormalizeEmail(email)

	err := service.withRecoveryLock(ctx, email, func(ctx context.Context) error {
		account, err := service.findByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, ErrAccountNotFound) {
				return apperr.Unauthorized(msgUserMissing)
			}
			return apperr.Internal(err)
		}

		// 1. Issue and persist the code
		code, err := service.otp()
		if err != nil {
			return apperr.Internal(fmt.Errorf("auth_service_otp_generation_failed: %w", err))
		}

		account.SetOTP(code, service.now().Add(service.settings.OTPTTL))
		if err := service.update(ctx, account); err != nil {
			return apperr.Internal(fmt.Errorf("auth_service_otp_persist_failed: %w", err))
		}

		// 2. Deliver it
		if err := service.send(ctx, otpMessage(account.Email, code, service.settings.OTPTTL)); err != nil {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "otp_dispatch_failed",
				slog.Int64("account_id", account.ID),
				slog.String("error", err.Error()),
			)

			// 3. Compensate so the undelivered code cannot be used, even when
			// the caller has gone away
			account.ClearOTP()
			if rollbackErr := service.update(context.WithoutCancel(ctx), account); rollbackErr != nil {
				ctxutil.GetLogger(ctx).ErrorContext(ctx, "otp_rollback_failed",
					slog.Int64("account_id", account.ID),
					slog.String("error", rollbackErr.Error()),
				)
			}

			return apperr.BadRequest(msgOTPMailFailed)
		}

		return nil
	})

	if err != nil {
		return "", err
	}
	return email, nil
}

/*
VerifyOTP consumes a valid code and marks the account verified.

Parameters:
  - ctx: context.Context
  - email: string
  - code: string

Returns:
  - string: Normalized email
  - error: NotFound, BadRequest (missing, wrong or expired code) or Conflict
*/
func (service *Service) VerifyOTP(ctx context.Context, email, code string) (string, error) {
	email = NormalizeEmail(email)

	err := service.withRecoveryLock(ctx, email, func(ctx context.Context) error {
		account, err := service.checkOTP(ctx, email, code)
		if err != nil {
			return err
		}

		account.ClearOTP()
		account.IsVerified = true

		if err := service.update(ctx, account); err != nil {
			return apperr.Internal(fmt.Errorf("auth_service_otp_verify_failed: %w", err))
		}
		return nil
	})

	if err != nil {
		return "", err
	}
	return email, nil
}

/*
ResetPassword consumes a valid code and replaces the password in one write.

The account is also marked verified, since holding the code proves
control of the mailbox.

Parameters:
  - ctx: context.Context
  - email: string
  - code: string
  - newPassword: string

Returns:
  - error: NotFound, BadRequest (missing, wrong or expired code) or Conflict
*/
func (service *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = NormalizeEmail(email)

	return service.withRecoveryLock(ctx, email, func(ctx context.Context) error {
		account, err := service.checkOTP(ctx, email, code)
		if err != nil {
			return err
		}

		hashedPassword, err := service.hasher.Hash(newPassword)
		if err != nil {
			return apperr.Internal(fmt.Errorf("auth_service_reset_hash_failed: %w", err))
		}

		account.PasswordHash = hashedPassword
		account.ClearOTP()
		account.IsVerified = true

		if err := service.update(ctx, account); err != nil {
			return apperr.Internal(fmt.Errorf("auth_service_reset_update_failed: %w", err))
		}
		return nil
	})
}

// checkOTP runs the shared validation sequence. An expired code is cleared
// before the error is returned.
func (service *Service) checkOTP(ctx context.Context, email, code string) (*Account, error) {
	account, err := service.findByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, apperr.NotFound("User")
		}
		return nil, apperr.Internal(err)
	}

	if !account.HasOTP() {
		return nil, apperr.BadRequest(msgNoOTP)
	}

	if subtle.ConstantTimeCompare([]byte(*account.OTP), []byte(code)) != 1 {
		return nil, apperr.BadRequest(msgInvalidOTP)
	}

	if service.now().After(*account.OTPExpiry) {
		account.ClearOTP()
		if err := service.update(ctx, account); err != nil {
			return nil, apperr.Internal(fmt.Errorf("auth_service_otp_expire_failed: %w", err))
		}
		return nil, apperr.BadRequest(msgOTPExpired)
	}

	return account, nil
}

// withRecoveryLock serializes recovery operations for one account.
func (service *Service) withRecoveryLock(ctx context.Context, email string, work func(context.Context) error) error {
	err := service.locker.WithLock(ctx, email, work)
	if errors.Is(err, redis.ErrLockNotAcquired) {
		return apperr.Conflict(msgRecoveryInProgress)
	}
	return err
}

func (service *Service) send(parent context.Context, message mail.Message) error {
	ctx, cancel := service.storeContext(parent)
	defer cancel()
	return service.mailer.Send(ctx, message)
}
