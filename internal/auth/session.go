// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taibuivan/madhouse/internal/platform/apperr"
	"github.com/taibuivan/madhouse/internal/platform/sec"
)

// Session is a freshly minted access/refresh pair.
type Session struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
	Account          *Account
}

/*
Login verifies credentials and issues a session.

Unknown emails and wrong passwords produce the same error so callers cannot
enumerate accounts.

Parameters:
  - context: context.Context
  - email: string
  - password: string

Returns:
  - *Session: Transport-ready token pair
  - error: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, email, password string) (*Session, error) {
	account, err := service.findByEmail(context, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, apperr.Unauthorized(msgInvalidCredentials)
		}
		return nil, apperr.Internal(err)
	}

	if !service.hasher.Compare(password, account.PasswordHash) {
		return nil, apperr.Unauthorized(msgInvalidCredentials)
	}

	return service.issue(account)
}

/*
Refresh exchanges a valid refresh token for a brand new session.

The account is re-read so the new access token carries current claims.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *Session: New token pair
  - error: Unauthorized with distinct messages for expired and invalid tokens
*/
func (service *Service) Refresh(context context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, apperr.Unauthorized(msgRefreshMissing)
	}

	claims, err := service.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, sec.ErrTokenExpired) {
			return nil, apperr.Unauthorized(msgRefreshExpired)
		}
		return nil, apperr.Unauthorized(msgRefreshInvalid)
	}

	accountID, err := claims.AccountID()
	if err != nil {
		return nil, apperr.Unauthorized(msgRefreshInvalid)
	}

	account, err := service.findByID(context, accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, apperr.Unauthorized(msgRefreshInvalid)
		}
		return nil, apperr.Internal(err)
	}

	return service.issue(account)
}

// issue mints both tokens for account.
func (service *Service) issue(account *Account) (*Session, error) {
	accessToken, accessExpiresAt, err := service.tokens.IssueAccessToken(account.Identity(), service.settings.AccessTokenTTL)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_access_token_failed: %w", err))
	}

	refreshToken, refreshExpiresAt, err := service.tokens.IssueRefreshToken(account.ID, service.settings.RefreshTokenTTL)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_refresh_token_failed: %w", err))
	}

	return &Session{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiresAt,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpiresAt,
		Account:          account,
	}, nil
}
