// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taibuivan/madhouse/internal/platform/apperr"
	"github.com/taibuivan/madhouse/internal/platform/mail"
	"github.com/taibuivan/madhouse/internal/platform/sec"
)

// # Contracts & Types

// TokenIssuer mints and verifies session tokens.
type TokenIssuer interface {
	IssueAccessToken(identity sec.Identity, timeToLive time.Duration) (string, time.Time, error)
	IssueRefreshToken(accountID int64, timeToLive time.Duration) (string, time.Time, error)
	VerifyRefreshToken(tokenString string) (*sec.RefreshClaims, error)
}

// PasswordHasher hashes and compares passwords.
type PasswordHasher interface {
	Hash(plainTextPassword string) (string, error)
	Compare(plainTextPassword, existingHash string) bool
}

// KeyedLocker serializes work per key.
type KeyedLocker interface {
	WithLock(ctx context.Context, key string, work func(context.Context) error) error
}

// Settings holds the lifetimes and deadlines the service applies.
type Settings struct {
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	OTPTTL          time.Duration
	StoreTimeout    time.Duration
}

// Service implements the admin identity use cases.
type Service struct {
	accounts AccountRepository
	tokens   TokenIssuer
	hasher   PasswordHasher
	mailer   mail.Sender
	locker   KeyedLocker
	settings Settings
	now      func() time.Time
	otp      func() (string, error)
}

// Option customises a [Service].
type Option func(*Service)

// WithClock overrides the wall clock used for OTP expiry.
func WithClock(now func() time.Time) Option {
	return func(service *Service) { service.now = now }
}

// WithLocker serializes recovery operations per account.
func WithLocker(locker KeyedLocker) Option {
	return func(service *Service) { service.locker = locker }
}

// WithOTPGenerator overrides the one-time code source.
func WithOTPGenerator(generate func() (string, error)) Option {
	return func(service *Service) { service.otp = generate }
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	accounts AccountRepository,
	tokens TokenIssuer,
	hasher PasswordHasher,
	mailer mail.Sender,
	settings Settings,
	options ...Option,
) *Service {
	service := &Service{
		accounts: accounts,
		tokens:   tokens,
		hasher:   hasher,
		mailer:   mailer,
		locker:   passthroughLocker{},
		settings: settings,
		now:      time.Now,
		otp: func() (string, error) {
			return sec.GenerateOTP(sec.DefaultOTPLength)
		},
	}
	for _, option := range options {
		option(service)
	}
	return service
}

// Settings returns the configured lifetimes.
func (service *Service) Settings() Settings {
	return service.settings
}

// # Registration

// SignUpInput holds the data required to enroll a new administrator.
type SignUpInput struct {
	Email    string
	Password string
	Username string
}

/*
SignUp validates uniqueness, hashes the password and persists a new account.

Parameters:
  - context: context.Context
  - input: SignUpInput

Returns:
  - *Account: Created entity (never serializes secrets)
  - error: Conflict when the email exists, otherwise storage failures
*/
func (service *Service) SignUp(context context.Context, input SignUpInput) (*Account, error) {
	email := NormalizeEmail(input.Email)

	// Pre-check for a friendly conflict
	_, err := service.findByEmail(context, email)
	if err == nil {
		return nil, apperr.Conflict(msgUserExists)
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return nil, apperr.Internal(err)
	}

	hashedPassword, err := service.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_hash_failed: %w", err))
	}

	account := &Account{
		Username:     input.Username,
		Email:        email,
		PasswordHash: hashedPassword,
		IsVerified:   false,
	}

	ctx, cancel := service.storeContext(context)
	defer cancel()

	// A concurrent sign-up can still win the race past the pre-check
	if err := service.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, apperr.Conflict(msgUserExists)
		}
		return nil, apperr.Internal(fmt.Errorf("auth_service_signup_failed: %w", err))
	}

	return account, nil
}

// # Identity Lookups

/*
CurrentIdentity returns the public profile of the authenticated account.

Returns:
  - *ProfileView: Public projection
  - error: NotFound when the account no longer exists
*/
func (service *Service) CurrentIdentity(context context.Context, accountID int64) (*ProfileView, error) {
	account, err := service.findByID(context, accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, apperr.NotFound("User")
		}
		return nil, apperr.Internal(err)
	}

	profile := account.Profile()
	return &profile, nil
}

// IsVerified reports the current verification flag. A missing account is
// reported as unverified.
func (service *Service) IsVerified(context context.Context, accountID int64) (bool, error) {
	account, err := service.findByID(context, accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return false, nil
		}
		return false, err
	}
	return account.IsVerified, nil
}

// # Store Helpers

// storeContext bounds a single store or mail call.
func (service *Service) storeContext(parent context.Context) (context.Context, context.CancelFunc) {
	if service.settings.StoreTimeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, service.settings.StoreTimeout)
}

func (service *Service) findByEmail(parent context.Context, email string) (*Account, error) {
	ctx, cancel := service.storeContext(parent)
	defer cancel()
	return service.accounts.FindByEmail(ctx, email)
}

func (service *Service) findByID(parent context.Context, id int64) (*Account, error) {
	ctx, cancel := service.storeContext(parent)
	defer cancel()
	return service.accounts.FindByID(ctx, id)
}

func (service *Service) update(parent context.Context, account *Account) error {
	ctx, cancel := service.storeContext(parent)
	defer cancel()
	return service.accounts.Update(ctx, account)
}

// passthroughLocker runs work without serialization.
type passthroughLocker struct{}

func (passthroughLocker) WithLock(ctx context.Context, _ string, work func(context.Context) error) error {
	return work(ctx)
}
