// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/madhouse/internal/auth"
	"github.com/taibuivan/madhouse/internal/platform/constants"
	"github.com/taibuivan/madhouse/internal/platform/mail"
	"github.com/taibuivan/madhouse/internal/platform/sec"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// # Account Store

// memoryAccounts stores copies so unsaved mutations never leak into the store.
type memoryAccounts struct {
	mu        sync.Mutex
	byID      map[int64]*auth.Account
	nextID    int64
	createErr error
	updates   int
}

func newMemoryAccounts() *memoryAccounts {
	return &memoryAccounts{byID: map[int64]*auth.Account{}, nextID: 1}
}

func clone(account *auth.Account) *auth.Account {
	copied := *account
	if account.OTP != nil {
		code := *account.OTP
		copied.OTP = &code
	}
	if account.OTPExpiry != nil {
		expiry := *account.OTPExpiry
		copied.OTPExpiry = &expiry
	}
	return &copied
}

func (store *memoryAccounts) FindByEmail(_ context.Context, email string) (*auth.Account, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, account := range store.byID {
		if account.Email == email {
			return clone(account), nil
		}
	}
	return nil, auth.ErrAccountNotFound
}

func (store *memoryAccounts) FindByID(_ context.Context, id int64) (*auth.Account, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if account, ok := store.byID[id]; ok {
		return clone(account), nil
	}
	return nil, auth.ErrAccountNotFound
}

func (store *memoryAccounts) Create(_ context.Context, account *auth.Account) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.createErr != nil {
		return store.createErr
	}
	account.ID = store.nextID
	account.CreatedAt = baseTime
	account.UpdatedAt = baseTime
	store.nextID++
	store.byID[account.ID] = clone(account)
	return nil
}

// Update refuses cancelled contexts the way a pgx pool does.
func (store *memoryAccounts) Update(ctx context.Context, account *auth.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.byID[account.ID]; !ok {
		return auth.ErrAccountNotFound
	}
	store.updates++
	store.byID[account.ID] = clone(account)
	return nil
}

func (store *memoryAccounts) get(t *testing.T, id int64) *auth.Account {
	t.Helper()
	account, err := store.FindByID(context.Background(), id)
	require.NoError(t, err)
	return account
}

func (store *memoryAccounts) delete(id int64) {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.byID, id)
}

// # Mailer

type recordingMailer struct {
	mu     sync.Mutex
	sent   []mail.Message
	err    error
	onSend func()
}

func (mailer *recordingMailer) Send(_ context.Context, message mail.Message) error {
	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	if mailer.onSend != nil {
		mailer.onSend()
	}
	if mailer.err != nil {
		return mailer.err
	}
	mailer.sent = append(mailer.sent, message)
	return nil
}

// # Fixture

type fixture struct {
	accounts *memoryAccounts
	mailer   *recordingMailer
	tokens   *sec.TokenService
	hasher   *sec.PasswordHasher
	service  *auth.Service
	now      time.Time
}

var errSMTPDown = errors.New("smtp: connection refused")

func newFixture(t *testing.T, options ...auth.Option) *fixture {
	t.Helper()

	f := &fixture{
		accounts: newMemoryAccounts(),
		mailer:   &recordingMailer{},
		hasher:   sec.NewPasswordHasher(bcrypt.MinCost),
		now:      baseTime,
	}

	clock := func() time.Time { return f.now }

	tokens, err := sec.NewTokenService("access-secret", "refresh-secret", constants.AuthIssuer, sec.WithTokenClock(clock))
	require.NoError(t, err)
	f.tokens = tokens

	options = append([]auth.Option{
		auth.WithClock(clock),
		auth.WithOTPGenerator(func() (string, error) { return "123456", nil }),
	}, options...)

	f.service = auth.NewService(f.accounts, f.tokens, f.hasher, f.mailer, auth.Settings{
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 30 * 24 * time.Hour,
		OTPTTL:          60 * time.Minute,
		StoreTimeout:    time.Second,
	}, options...)

	return f
}

// seed registers an account directly through the service.
func (f *fixture) seed(t *testing.T, email, password string) *auth.Account {
	t.Helper()
	account, err := f.service.SignUp(context.Background(), auth.SignUpInput{
		Email:    email,
		Password: password,
		Username: "admin",
	})
	require.NoError(t, err)
	return account
}
