// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contacts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/madhouse/internal/platform/apperr"
	"github.com/taibuivan/madhouse/internal/platform/ctxutil"
	"github.com/taibuivan/madhouse/internal/platform/dberr"
	"github.com/taibuivan/madhouse/internal/platform/mail"
	"github.com/taibuivan/madhouse/internal/platform/sec"
	"github.com/taibuivan/madhouse/pkg/slice"
)

const (
	msgAlreadySubscribed = "Email is already subscribed to our events"
	msgConfirmMailFailed = "Failed to send confirmation email. Please try again later."
	msgInvalidLink       = "Invalid or expired confirmation link"
	msgNoActiveContacts  = "No active contacts found to send emails to"
)

// SubscriptionTokens signs and verifies confirmation links.
type SubscriptionTokens interface {
	IssueSubscriptionToken(contactID int64, timeToLive time.Duration) (string, error)
	VerifySubscriptionToken(tokenString string) (*sec.SubscriptionClaims, error)
}

// Settings configures the [Service].
type Settings struct {
	// AppURL is the public base URL confirmation links point at.
	AppURL string

	// StoreTimeout bounds each store and mail call.
	StoreTimeout time.Duration

	// Concurrency caps parallel deliveries within a bulk-email batch.
	Concurrency int
}

// Service implements mailing-list management.
type Service struct {
	repo     Repository
	tokens   SubscriptionTokens
	mailer   mail.Sender
	settings Settings
}

// NewService constructs a [Service].
func NewService(repo Repository, tokens SubscriptionTokens, mailer mail.Sender, settings Settings) *Service {
	if settings.Concurrency < 1 {
		settings.Concurrency = 1
	}
	return &Service{repo: repo, tokens: tokens, mailer: mailer, settings: settings}
}

// SubscribeInput holds a new subscriber's details.
type SubscribeInput struct {
	Email     string
	FirstName string
	LastName  string
}

/*
Subscribe registers an address and mails it a confirmation link.

An INACTIVE contact is refreshed and re-sent a link; an ACTIVE one conflicts.

Returns:
  - *Contact: The INACTIVE contact
  - error: Conflict, BadRequest (mail failure) or storage failures
*/
func (service *Service) Subscribe(ctx context.Context, input SubscribeInput) (*Contact, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	existing, err := service.findByEmail(ctx, email)
	if err != nil && !errors.Is(err, dberr.ErrNotFound) {
		return nil, err
	}

	if existing != nil && existing.Status == StatusActive {
		return nil, apperr.Conflict(msgAlreadySubscribed)
	}

	contact := &Contact{
		Email:     email,
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Status:    StatusInactive,
	}

	if err := service.save(ctx, existing, contact); err != nil {
		return nil, err
	}

	// 1. Sign the link
	token, err := service.tokens.IssueSubscriptionToken(contact.ID, SubscriptionTTL)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("contact_token_failed: %w", err))
	}

	// 2. Deliver it
	mailCtx, cancel := service.bounded(ctx)
	defer cancel()

	if err := service.mailer.Send(mailCtx, confirmMessage(contact.Email, service.confirmURL(token))); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "contact_confirmation_dispatch_failed",
			slog.Int64("contact_id", contact.ID),
			slog.String("error", err.Error()),
		)
		return nil, apperr.BadRequest(msgConfirmMailFailed)
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "contact_subscribed", slog.Int64("contact_id", contact.ID))
	return contact, nil
}

// save creates contact, or overwrites existing when it is INACTIVE.
func (service *Service) save(ctx context.Context, existing, contact *Contact) error {
	storeCtx, cancel := service.bounded(ctx)
	defer cancel()

	if existing != nil {
		contact.ID = existing.ID
		contact.CreatedAt = existing.CreatedAt
		return service.repo.UpdateContact(storeCtx, contact)
	}

	// A concurrent subscribe for the same address loses on the unique index
	err := service.repo.CreateContact(storeCtx, contact)
	if apperr.StatusOf(err) == http.StatusConflict {
		return apperr.Conflict(msgAlreadySubscribed)
	}
	return err
}

/*
Confirm activates the contact named by a confirmation token.

Every failure, including a deleted contact, is reported as an invalid link.
*/
func (service *Service) Confirm(ctx context.Context, token string) (*Contact, error) {
	claims, err := service.tokens.VerifySubscriptionToken(token)
	if err != nil {
		return nil, apperr.BadRequest(msgInvalidLink)
	}

	storeCtx, cancel := service.bounded(ctx)
	defer cancel()

	contact, err := service.repo.SetContactStatus(storeCtx, claims.ContactID, StatusActive)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, apperr.BadRequest(msgInvalidLink)
		}
		return nil, err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "contact_confirmed", slog.Int64("contact_id", contact.ID))
	return contact, nil
}

func (service *Service) ListContacts(ctx context.Context, filter Filter, limit, offset int) ([]*Contact, int, error) {
	storeCtx, cancel := service.bounded(ctx)
	defer cancel()
	return service.repo.ListContacts(storeCtx, filter, limit, offset)
}

func (service *Service) RemoveContact(ctx context.Context, id int64) error {
	storeCtx, cancel := service.bounded(ctx)
	defer cancel()

	if err := service.repo.DeleteContact(storeCtx, id); err != nil {
		return notFoundAsContact(err)
	}

	ctxutil.GetLogger(ctx).WarnContext(ctx, "contact_removed", slog.Int64("contact_id", id))
	return nil
}

// UpdateStatus sets the status directly, bypassing double opt-in.
func (service *Service) UpdateStatus(ctx context.Context, id int64, status Status) (*Contact, error) {
	storeCtx, cancel := service.bounded(ctx)
	defer cancel()

	contact, err := service.repo.SetContactStatus(storeCtx, id, status)
	if err != nil {
		return nil, notFoundAsContact(err)
	}
	return contact, nil
}

// # Bulk Email

/*
SendBulkEmail delivers a personalised message to every ACTIVE contact.

Contacts are read in batches of batchSize; deliveries within a batch run
with bounded concurrency. A failed delivery is recorded and never aborts
the run, and nothing already sent is rolled back.

Returns:
  - *BulkResult: Per-recipient outcomes and totals
  - error: BadRequest when there is nobody to mail, otherwise storage failures
*/
func (service *Service) SendBulkEmail(ctx context.Context, subject, content string, batchSize int) (*BulkResult, error) {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	batchSize = min(batchSize, MaxBatchSize)

	countCtx, cancel := service.bounded(ctx)
	total, err := service.repo.CountActiveContacts(countCtx)
	cancel()
	if err != nil {
		return nil, err
	}

	if total == 0 {
		return nil, apperr.BadRequest(msgNoActiveContacts)
	}

	result := &BulkResult{
		TotalContacts: total,
		FailedEmails:  []string{},
		Recipients:    make([]RecipientResult, 0, total),
	}

	var afterID int64
	for {
		batchCtx, cancel := service.bounded(ctx)
		batch, err := service.repo.ListActiveContacts(batchCtx, afterID, batchSize)
		cancel()
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}

		result.Recipients = append(result.Recipients, service.sendBatch(ctx, subject, content, batch)...)
		afterID = batch[len(batch)-1].ID

		if len(batch) < batchSize {
			break
		}
	}

	failed := slice.Filter(result.Recipients, func(recipient RecipientResult) bool { return !recipient.Success })
	result.FailedCount = len(failed)
	result.SuccessCount = len(result.Recipients) - len(failed)
	if len(failed) > 0 {
		result.FailedEmails = slice.Map(failed, func(recipient RecipientResult) string { return recipient.Email })
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "bulk_email_finished",
		slog.Int("total", result.TotalContacts),
		slog.Int("sent", result.SuccessCount),
		slog.Int("failed", result.FailedCount),
	)
	return result, nil
}

// sendBatch delivers to every contact in batch. Results keep batch order.
func (service *Service) sendBatch(ctx context.Context, subject, content string, batch []*Contact) []RecipientResult {
	results := make([]RecipientResult, len(batch))

	group := errgroup.Group{}
	group.SetLimit(service.settings.Concurrency)

	for index, contact := range batch {
		group.Go(func() error {
			mailCtx, cancel := service.bounded(ctx)
			defer cancel()

			results[index] = RecipientResult{Email: contact.Email, Success: true}

			err := service.mailer.Send(mailCtx, mail.Message{
				To:      contact.Email,
				Subject: subject,
				HTML:    personalize(content, contact),
			})
			if err != nil {
				ctxutil.GetLogger(ctx).WarnContext(ctx, "bulk_email_delivery_failed",
					slog.Int64("contact_id", contact.ID),
					slog.String("error", err.Error()),
				)
				results[index] = RecipientResult{Email: contact.Email, Success: false, Error: err.Error()}
			}

			// Delivery failures are recorded, not propagated.
			return nil
		})
	}

	_ = group.Wait()
	return results
}

// BulkSummary formats the completion message for a bulk run.
func BulkSummary(result *BulkResult) string {
	return fmt.Sprintf("Bulk email sending completed. %d sent successfully, %d failed.", result.SuccessCount, result.FailedCount)
}

// # Helpers

func (service *Service) findByEmail(ctx context.Context, email string) (*Contact, error) {
	storeCtx, cancel := service.bounded(ctx)
	defer cancel()
	return service.repo.FindContactByEmail(storeCtx, email)
}

func (service *Service) confirmURL(token string) string {
	return strings.TrimRight(service.settings.AppURL, "/") + "/contacts/confirm?token=" + url.QueryEscape(token)
}

func (service *Service) bounded(parent context.Context) (context.Context, context.CancelFunc) {
	if service.settings.StoreTimeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, service.settings.StoreTimeout)
}

func notFoundAsContact(err error) error {
	if errors.Is(err, dberr.ErrNotFound) {
		return apperr.NotFound("Contact")
	}
	return err
}
