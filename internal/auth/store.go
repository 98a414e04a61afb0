// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
)

var (
	// ErrAccountNotFound is returned by repositories when no account matches.
	ErrAccountNotFound = errors.New("auth: account not found")

	// ErrEmailTaken is returned by Create when the email is already registered.
	ErrEmailTaken = errors.New("auth: email already registered")
)

// # Account Data Access

// AccountRepository defines the data access contract for admin accounts.
type AccountRepository interface {

	/*
		FindByEmail returns the account registered under a normalized email.

		Parameters:
		  - context: context.Context
		  - email: string (lowercase)

		Returns:
		  - *Account: Hydrated entity
		  - error: ErrAccountNotFound or database failures
	*/
	FindByEmail(context context.Context, email string) (*Account, error)

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: int64

		Returns:
		  - *Account: Hydrated entity
		  - error: ErrAccountNotFound or database failures
	*/
	FindByID(context context.Context, id int64) (*Account, error)

	/*
		Create persists a new account and fills ID and timestamps.

		Parameters:
		  - context: context.Context
		  - account: *Account

		Returns:
		  - error: ErrEmailTaken or database failures
	*/
	Create(context context.Context, account *Account) error

	/*
		Update persists the mutable fields: password hash, verification flag and OTP pair.

		Parameters:
		  - context: context.Context
		  - account: *Account

		Returns:
		  - error: ErrAccountNotFound or database failures
	*/
	Update(context context.Context, account *Account) error
}
