// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing, OTP
// generation) from the domain logic. It acts as an Infrastructure service
// injected into the Application layer via small interfaces.
//
// # Token Kinds
//
// Three token kinds are issued, each bound to its own audience:
//   - access: short-lived, signed with the access secret.
//   - refresh: long-lived, signed with the refresh secret, carries only "sub".
//   - subscription: mailing-list confirmation links, signed with the access secret.
//
// A token of one kind never verifies as another, even when secrets are shared.
package sec

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Audiences bound into every issued token.
const (
	AudienceAccess       = "access"
	AudienceRefresh      = "refresh"
	AudienceSubscription = "subscription"
)

var (
	// ErrTokenExpired is returned when a token is well-signed but past its expiry.
	ErrTokenExpired = errors.New("sec: token expired")

	// ErrTokenInvalid is returned for every other verification failure.
	ErrTokenInvalid = errors.New("sec: token invalid")
)

// Identity is the account snapshot embedded into an access token.
type Identity struct {
	ID         int64
	Email      string
	Username   string
	IsVerified bool
}

// AccessClaims represents the payload embedded inside a JWT Access Token.
//
// The IsVerified flag is informational only: authorization decisions re-read
// the flag from the store because the token copy may be stale.
type AccessClaims struct {
	jwt.RegisteredClaims

	AccountID  int64  `json:"id"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	IsVerified bool   `json:"isVerified"`
}

// RefreshClaims carries nothing but the subject.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// AccountID parses the numeric account id out of the "sub" claim.
func (claims *RefreshClaims) AccountID() (int64, error) {
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed subject", ErrTokenInvalid)
	}
	return id, nil
}

// SubscriptionClaims confirms a mailing-list subscription.
type SubscriptionClaims struct {
	jwt.RegisteredClaims

	ContactID int64 `json:"contactId"`
}

// TokenService handles generation and verification of HS256 JWT tokens.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	now           func() time.Time
}

// TokenOption customises a [TokenService].
type TokenOption func(*TokenService)

// WithTokenClock overrides the clock used for iat/exp and for verification.
func WithTokenClock(now func() time.Time) TokenOption {
	return func(service *TokenService) {
		service.now = now
	}
}

// NewTokenService creates a new TokenService.
//
// The two secrets must be non-empty and different.
func NewTokenService(accessSecret, refreshSecret, issuer string, options ...TokenOption) (*TokenService, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("sec: token secrets must not be empty")
	}
	if accessSecret == refreshSecret {
		return nil, errors.New("sec: access and refresh secrets must differ")
	}

	service := &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
		now:           time.Now,
	}
	for _, option := range options {
		option(service)
	}
	return service, nil
}

// # Issuing

// IssueAccessToken signs a short-lived access token for identity.
func (service *TokenService) IssueAccessToken(identity Identity, timeToLive time.Duration) (string, time.Time, error) {
	currentTime := service.now()
	expiresAt := currentTime.Add(timeToLive)

	claims := AccessClaims{
		RegisteredClaims: service.registered(strconv.FormatInt(identity.ID, 10), AudienceAccess, currentTime, expiresAt),
		AccountID:        identity.ID,
		Email:            identity.Email,
		Username:         identity.Username,
		IsVerified:       identity.IsVerified,
	}

	signed, err := service.sign(claims, service.accessSecret)
	return signed, expiresAt, err
}

// IssueRefreshToken signs a long-lived refresh token carrying only the subject.
func (service *TokenService) IssueRefreshToken(accountID int64, timeToLive time.Duration) (string, time.Time, error) {
	currentTime := service.now()
	expiresAt := currentTime.Add(timeToLive)

	claims := RefreshClaims{
		RegisteredClaims: service.registered(strconv.FormatInt(accountID, 10), AudienceRefresh, currentTime, expiresAt),
	}

	signed, err := service.sign(claims, service.refreshSecret)
	return signed, expiresAt, err
}

// IssueSubscriptionToken signs a confirmation token for a mailing-list contact.
func (service *TokenService) IssueSubscriptionToken(contactID int64, timeToLive time.Duration) (string, error) {
	currentTime := service.now()

	claims := SubscriptionClaims{
		RegisteredClaims: service.registered(strconv.FormatInt(contactID, 10), AudienceSubscription, currentTime, currentTime.Add(timeToLive)),
		ContactID:        contactID,
	}

	return service.sign(claims, service.accessSecret)
}

// # Verification

// VerifyAccessToken checks the signature, audience and expiry of an access token.
func (service *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := service.parse(tokenString, claims, service.accessSecret, AudienceAccess); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyRefreshToken checks the signature, audience and expiry of a refresh token.
func (service *TokenService) VerifyRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := service.parse(tokenString, claims, service.refreshSecret, AudienceRefresh); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifySubscriptionToken checks a mailing-list confirmation token.
func (service *TokenService) VerifySubscriptionToken(tokenString string) (*SubscriptionClaims, error) {
	claims := &SubscriptionClaims{}
	if err := service.parse(tokenString, claims, service.accessSecret, AudienceSubscription); err != nil {
		return nil, err
	}
	return claims, nil
}

// # Helpers

func (service *TokenService) registered(subject, audience string, issuedAt, expiresAt time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    service.issuer,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
}

func (service *TokenService) sign(claims jwt.Claims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign token: %w", err)
	}
	return signedToken, nil
}

// parse verifies tokenString into claims and folds every library error into
// either [ErrTokenExpired] or [ErrTokenInvalid].
func (service *TokenService) parse(tokenString string, claims jwt.Claims, secret []byte, audience string) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithIssuer(service.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(service.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !token.Valid {
		return ErrTokenInvalid
	}

	return nil
}
