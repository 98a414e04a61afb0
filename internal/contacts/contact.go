// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package contacts manages the events mailing list.

Subscriptions are double opt-in: a contact stays INACTIVE until the signed
link mailed to it is followed. Only ACTIVE contacts receive bulk email.
*/
package contacts

import "time"

// Status is the subscription state of a [Contact].
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Statuses lists every valid status.
var Statuses = []string{string(StatusActive), string(StatusInactive)}

// Valid reports whether status is a known value.
func (status Status) Valid() bool {
	return status == StatusActive || status == StatusInactive
}

// Contact is a mailing-list subscriber.
type Contact struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstname"`
	LastName  string    `json:"lastname"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Filter narrows a paginated listing.
type Filter struct {
	Email  string // case-insensitive substring
	Status Status // empty means every status
}

// RecipientResult is the outcome of one bulk-email delivery.
type RecipientResult struct {
	Email   string `json:"email"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BulkResult summarises a bulk-email run.
type BulkResult struct {
	TotalContacts int               `json:"totalContacts"`
	SuccessCount  int               `json:"successCount"`
	FailedCount   int               `json:"failedCount"`
	FailedEmails  []string          `json:"failedEmails"`
	Recipients    []RecipientResult `json:"recipients"`
}

const (
	FieldEmail       = "email"
	FieldFirstName   = "firstname"
	FieldLastName    = "lastname"
	FieldStatus      = "status"
	FieldSubject     = "subject"
	FieldHTMLContent = "html_content"
	FieldBatchSize   = "batch_size"
	FieldMessage     = "message"
	FieldData        = "data"
	FieldResults     = "results"
)

// Bulk email batching.
const (
	DefaultBatchSize = 50
	MaxBatchSize     = 500
)

// SubscriptionTTL is the validity of a confirmation link.
const SubscriptionTTL = 24 * time.Hour
