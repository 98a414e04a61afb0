// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contacts_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/madhouse/internal/contacts"
	"github.com/taibuivan/madhouse/internal/platform/apperr"
	"github.com/taibuivan/madhouse/internal/platform/constants"
	"github.com/taibuivan/madhouse/internal/platform/dberr"
	"github.com/taibuivan/madhouse/internal/platform/mail"
	"github.com/taibuivan/madhouse/internal/platform/sec"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// # Contact Store

type memoryContacts struct {
	mu     sync.Mutex
	byID   map[int64]contacts.Contact
	nextID int64
}

func newMemoryContacts() *memoryContacts {
	return &memoryContacts{byID: map[int64]contacts.Contact{}, nextID: 1}
}

func (store *memoryContacts) sorted(keep func(contacts.Contact) bool) []*contacts.Contact {
	matched := []*contacts.Contact{}
	for _, contact := range store.byID {
		if keep(contact) {
			copied := contact
			matched = append(matched, &copied)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	return matched
}

func (store *memoryContacts) ListContacts(_ context.Context, filter contacts.Filter, limit, offset int) ([]*contacts.Contact, int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	matched := store.sorted(func(contact contacts.Contact) bool {
		if filter.Email != "" && !strings.Contains(contact.Email, strings.ToLower(filter.Email)) {
			return false
		}
		return filter.Status == "" || contact.Status == filter.Status
	})

	total := len(matched)
	if offset >= total {
		return []*contacts.Contact{}, total, nil
	}
	return matched[offset:min(offset+limit, total)], total, nil
}

func (store *memoryContacts) GetContact(_ context.Context, id int64) (*contacts.Contact, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	contact, ok := store.byID[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return &contact, nil
}

func (store *memoryContacts) FindContactByEmail(_ context.Context, email string) (*contacts.Contact, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, contact := range store.byID {
		if contact.Email == email {
			return &contact, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (store *memoryContacts) CreateContact(_ context.Context, contact *contacts.Contact) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	for _, existing := range store.byID {
		if existing.Email == contact.Email {
			return apperr.Conflict("Resource already exists")
		}
	}
	contact.ID = store.nextID
	contact.CreatedAt = baseTime
	contact.UpdatedAt = baseTime
	store.nextID++
	store.byID[contact.ID] = *contact
	return nil
}

func (store *memoryContacts) UpdateContact(_ context.Context, contact *contacts.Contact) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.byID[contact.ID]; !ok {
		return dberr.ErrNotFound
	}
	store.byID[contact.ID] = *contact
	return nil
}

func (store *memoryContacts) SetContactStatus(_ context.Context, id int64, status contacts.Status) (*contacts.Contact, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	contact, ok := store.byID[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	contact.Status = status
	store.byID[id] = contact
	return &contact, nil
}

func (store *memoryContacts) DeleteContact(_ context.Context, id int64) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if _, ok := store.byID[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(store.byID, id)
	return nil
}

func (store *memoryContacts) CountActiveContacts(_ context.Context) (int, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.sorted(func(contact contacts.Contact) bool { return contact.Status == contacts.StatusActive })), nil
}

func (store *memoryContacts) ListActiveContacts(_ context.Context, afterID int64, limit int) ([]*contacts.Contact, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	matched := store.sorted(func(contact contacts.Contact) bool {
		return contact.Status == contacts.StatusActive && contact.ID > afterID
	})
	return matched[:min(limit, len(matched))], nil
}

func (store *memoryContacts) put(contact contacts.Contact) int64 {
	_ = store.CreateContact(context.Background(), &contact)
	return contact.ID
}

func (store *memoryContacts) status(id int64) contacts.Status {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.byID[id].Status
}

// # Mailer

var errMailboxFull = errors.New("smtp: 552 mailbox full")

type recordingMailer struct {
	mu      sync.Mutex
	sent    []mail.Message
	failFor map[string]bool
	err     error
}

func (mailer *recordingMailer) Send(_ context.Context, message mail.Message) error {
	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	if mailer.err != nil {
		return mailer.err
	}
	if mailer.failFor[message.To] {
		return errMailboxFull
	}
	mailer.sent = append(mailer.sent, message)
	return nil
}

func (mailer *recordingMailer) last(t *testing.T) mail.Message {
	t.Helper()
	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	require.NotEmpty(t, mailer.sent)
	return mailer.sent[len(mailer.sent)-1]
}

// # Fixture

type contactsFixture struct {
	repo    *memoryContacts
	mailer  *recordingMailer
	tokens  *sec.TokenService
	service *contacts.Service
	now     time.Time
}

func newContactsFixture(t *testing.T) *contactsFixture {
	t.Helper()

	f := &contactsFixture{
		repo:   newMemoryContacts(),
		mailer: &recordingMailer{failFor: map[string]bool{}},
		now:    baseTime,
	}

	tokens, err := sec.NewTokenService("access-secret", "refresh-secret", constants.AuthIssuer,
		sec.WithTokenClock(func() time.Time { return f.now }),
	)
	require.NoError(t, err)
	f.tokens = tokens

	f.service = contacts.NewService(f.repo, f.tokens, f.mailer, contacts.Settings{
		AppURL:       "https://api.madhouse.example/",
		StoreTimeout: time.Second,
		Concurrency:  3,
	})
	return f
}
