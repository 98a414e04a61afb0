// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contacts

import "context"

// Repository persists contacts. Lookups by email expect a normalized address.
type Repository interface {
	ListContacts(context context.Context, filter Filter, limit, offset int) ([]*Contact, int, error)
	GetContact(context context.Context, id int64) (*Contact, error)
	FindContactByEmail(context context.Context, email string) (*Contact, error)
	CreateContact(context context.Context, contact *Contact) error
	UpdateContact(context context.Context, contact *Contact) error
	SetContactStatus(context context.Context, id int64, status Status) (*Contact, error)
	DeleteContact(context context.Context, id int64) error

	// CountActiveContacts and ListActiveContacts drive bulk email. The listing
	// is keyset-paginated by id so concurrent sign-ups never shift a batch.
	CountActiveContacts(context context.Context) (int, error)
	ListActiveContacts(context context.Context, afterID int64, limit int) ([]*Contact, error)
}
