// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/madhouse/internal/platform/apperr"
	"github.com/taibuivan/madhouse/internal/platform/ctxutil"
	"github.com/taibuivan/madhouse/internal/platform/dberr"
	"github.com/taibuivan/madhouse/internal/platform/storage"
	"github.com/taibuivan/madhouse/internal/platform/validate"
	"github.com/taibuivan/madhouse/pkg/pointer"
	"github.com/taibuivan/madhouse/pkg/slug"
)

const (
	msgPastStartDate    = "Start date cannot be in the past for UPCOMING events."
	msgUnsupportedImage = "Image must be a JPEG, PNG, WebP or GIF file"
	msgUploadsDisabled  = "Image uploads are not enabled"
)

// Image is an uploaded cover image, not yet stored.
type Image struct {
	Data        []byte
	ContentType string
}

// CreateInput holds the fields accepted when creating an event.
type CreateInput struct {
	Title       string
	Description string
	Location    string
	Status      Status
	StartDate   time.Time
	EndDate     time.Time
	ImageURL    *string
}

// UpdateInput is a partial update. Nil fields are left untouched.
type UpdateInput struct {
	Title       *string
	Description *string
	Location    *string
	Status      *Status
	StartDate   *time.Time
	EndDate     *time.Time
	ImageURL    *string
}

// Service implements event management.
type Service struct {
	repo     Repository
	uploader storage.Uploader
	timeout  time.Duration
	now      func() time.Time
}

// Option customises a [Service].
type Option func(*Service)

// WithClock overrides the wall clock used for date checks and sweeps.
func WithClock(now func() time.Time) Option {
	return func(service *Service) { service.now = now }
}

// NewService constructs a [Service]. timeout bounds each store and upload call.
func NewService(repo Repository, uploader storage.Uploader, timeout time.Duration, options ...Option) *Service {
	service := &Service{
		repo:     repo,
		uploader: uploader,
		timeout:  timeout,
		now:      time.Now,
	}
	for _, option := range options {
		option(service)
	}
	return service
}

// # Queries

func (service *Service) ListEvents(ctx context.Context, filter Filter, limit, offset int) ([]*Event, int, error) {
	ctx, cancel := service.bounded(ctx)
	defer cancel()
	return service.repo.ListEvents(ctx, filter, limit, offset)
}

func (service *Service) GetEvent(ctx context.Context, id int64) (*Event, error) {
	ctx, cancel := service.bounded(ctx)
	defer cancel()

	event, err := service.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, notFoundAsEvent(err)
	}
	return event, nil
}

// # Commands

/*
CreateEvent validates, uploads the optional image and persists a new event.

An uploaded image takes precedence over an image URL in the input.

Returns:
  - *Event: The stored event
  - error: ValidationError, BadRequest (past UPCOMING start) or storage failures
*/
func (service *Service) CreateEvent(ctx context.Context, input CreateInput, image *Image) (*Event, error) {
	if input.Status == "" {
		input.Status = StatusUpcoming
	}

	event := &Event{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Location:    input.Location,
		Status:      input.Status,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Image:       input.ImageURL,
	}

	if err := service.check(event, true); err != nil {
		return nil, err
	}

	if err := service.attach(ctx, event, image); err != nil {
		return nil, err
	}

	event.Slug = slug.From(event.Title)

	storeCtx, cancel := service.bounded(ctx)
	defer cancel()

	if err := service.repo.CreateEvent(storeCtx, event); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "event_created",
		slog.Int64("event_id", event.ID),
		slog.String("status", string(event.Status)),
	)
	return event, nil
}

/*
UpdateEvent applies a partial update.

The past-start rule is only enforced when the update touches the status or
the start date, so an UPCOMING event already past its start can still have
its description edited before the sweeper moves it on.
*/
func (service *Service) UpdateEvent(ctx context.Context, id int64, input UpdateInput, image *Image) (*Event, error) {
	event, err := service.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		event.Title = strings.TrimSpace(*input.Title)
		event.Slug = slug.From(event.Title)
	}
	event.Description = pointer.Fallback(input.Description, event.Description)
	event.Location = pointer.Fallback(input.Location, event.Location)
	event.Status = pointer.Fallback(input.Status, event.Status)
	event.StartDate = pointer.Fallback(input.StartDate, event.StartDate)
	event.EndDate = pointer.Fallback(input.EndDate, event.EndDate)
	if input.ImageURL != nil {
		event.Image = input.ImageURL
	}

	if err := service.check(event, input.Status != nil || input.StartDate != nil); err != nil {
		return nil, err
	}

	if err := service.attach(ctx, event, image); err != nil {
		return nil, err
	}

	storeCtx, cancel := service.bounded(ctx)
	defer cancel()

	if err := service.repo.UpdateEvent(storeCtx, event); err != nil {
		return nil, notFoundAsEvent(err)
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "event_updated", slog.Int64("event_id", event.ID))
	return event, nil
}

func (service *Service) DeleteEvent(ctx context.Context, id int64) error {
	storeCtx, cancel := service.bounded(ctx)
	defer cancel()

	if err := service.repo.DeleteEvent(storeCtx, id); err != nil {
		return notFoundAsEvent(err)
	}

	ctxutil.GetLogger(ctx).WarnContext(ctx, "event_deleted", slog.Int64("event_id", id))
	return nil
}

// SweepStatuses advances UPCOMING and ONGOING events against the current time.
func (service *Service) SweepStatuses(ctx context.Context) (SweepResult, error) {
	return service.repo.SweepStatuses(ctx, service.now())
}

// # Helpers

// check validates the event. pastRule enables the UPCOMING start-date rule.
func (service *Service) check(event *Event, pastRule bool) error {
	validator := &validate.Validator{}
	validator.Required(FieldTitle, event.Title).
		MaxLen(FieldTitle, event.Title, MaxTitleLength).
		OneOf(FieldStatus, string(event.Status), Statuses...).
		RequiredTime(FieldStartDate, event.StartDate).
		RequiredTime(FieldEndDate, event.EndDate).
		NotBefore(FieldEndDate, event.EndDate, event.StartDate, "Must not be before the start date")

	if err := validator.Err(); err != nil {
		return err
	}

	if pastRule && event.Status == StatusUpcoming && event.StartDate.Before(service.now()) {
		return apperr.BadRequest(msgPastStartDate)
	}
	return nil
}

// attach uploads image, when present, and points the event at it.
func (service *Service) attach(ctx context.Context, event *Event, image *Image) error {
	if image == nil || len(image.Data) == 0 {
		return nil
	}

	uploadCtx, cancel := service.bounded(ctx)
	defer cancel()

	url, err := service.uploader.Upload(uploadCtx, image.Data, image.ContentType)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			return apperr.ValidationError(msgUnsupportedImage, apperr.FieldError{Field: FieldImage, Message: msgUnsupportedImage})
		}
		if errors.Is(err, storage.ErrNotConfigured) {
			return apperr.BadRequest(msgUploadsDisabled)
		}
		return apperr.Internal(fmt.Errorf("event_image_upload_failed: %w", err))
	}

	event.Image = &url
	return nil
}

func (service *Service) bounded(parent context.Context) (context.Context, context.CancelFunc) {
	if service.timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, service.timeout)
}

func notFoundAsEvent(err error) error {
	if errors.Is(err, dberr.ErrNotFound) {
		return apperr.NotFound("Event")
	}
	return err
}
