// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/madhouse/internal/platform/database/schema"
	"github.com/taibuivan/madhouse/internal/platform/dberr"
)

// # Account Repository

// PostgresAccountRepository implements [AccountRepository] using pgx.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new PostgreSQL implementation of the AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

var accountColumns = strings.Join(schema.AdminAccount.Columns(), ", ")

/*
FindByEmail retrieves an account by its unique, case-insensitive email.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *Account: Hydrated account entity
  - error: ErrAccountNotFound or database errors
*/
func (repository *PostgresAccountRepository) FindByEmail(context context.Context, email string) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE LOWER(%s) = LOWER($1)`,
		accountColumns, schema.AdminAccount.Table, schema.AdminAccount.Email)

	return repository.findOne(context, query, email)
}

/*
FindByID retrieves an account by primary key.

Parameters:
  - context: context.Context
  - id: int64

Returns:
  - *Account: Hydrated account entity
  - error: ErrAccountNotFound or database errors
*/
func (repository *PostgresAccountRepository) FindByID(context context.Context, id int64) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		accountColumns, schema.AdminAccount.Table, schema.AdminAccount.ID)

	return repository.findOne(context, query, id)
}

/*
Create inserts a new account and hydrates its generated columns.

Parameters:
  - context: context.Context
  - account: *Account

Returns:
  - error: ErrEmailTaken on unique violation, otherwise database errors
*/
func (repository *PostgresAccountRepository) Create(context context.Context, account *Account) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s, %s, %s`,
		schema.AdminAccount.Table,
		schema.AdminAccount.Username, schema.AdminAccount.Email, schema.AdminAccount.PasswordHash, schema.AdminAccount.IsVerified,
		schema.AdminAccount.ID, schema.AdminAccount.CreatedAt, schema.AdminAccount.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.IsVerified,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("postgres_account_repo_create_failed: %w", err)
	}

	return nil
}

/*
Update writes the mutable columns in a single statement.

Parameters:
  - context: context.Context
  - account: *Account

Returns:
  - error: ErrAccountNotFound when no row matched, otherwise database errors
*/
func (repository *PostgresAccountRepository) Update(context context.Context, account *Account) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = NOW()
		WHERE %s = $1
		RETURNING %s`,
		schema.AdminAccount.Table,
		schema.AdminAccount.Username, schema.AdminAccount.PasswordHash, schema.AdminAccount.IsVerified,
		schema.AdminAccount.OTP, schema.AdminAccount.OTPExpiry, schema.AdminAccount.UpdatedAt,
		schema.AdminAccount.ID,
		schema.AdminAccount.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		account.ID,
		account.Username,
		account.PasswordHash,
		account.IsVerified,
		account.OTP,
		account.OTPExpiry,
	).Scan(&account.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("postgres_account_repo_update_failed: %w", err)
	}

	return nil
}

// findOne runs a single-row account query.
func (repository *PostgresAccountRepository) findOne(context context.Context, query string, argument any) (*Account, error) {
	account := &Account{}
	err := repository.pool.QueryRow(context, query, argument).Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.IsVerified,
		&account.OTP,
		&account.OTPExpiry,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("postgres_account_repo_find_failed: %w", err)
	}

	return account, nil
}
