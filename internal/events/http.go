// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package events

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/madhouse/internal/platform/apperr"
	"github.com/taibuivan/madhouse/internal/platform/middleware"
	requestutil "github.com/taibuivan/madhouse/internal/platform/request"
	"github.com/taibuivan/madhouse/internal/platform/respond"
	"github.com/taibuivan/madhouse/internal/platform/storage"
	"github.com/taibuivan/madhouse/internal/platform/validate"
	"github.com/taibuivan/madhouse/pkg/pagination"
	"github.com/taibuivan/madhouse/pkg/pointer"
	"github.com/taibuivan/madhouse/pkg/query"
)

// maxFormMemory bounds the multipart form held in memory; the image cap
// plus room for the text fields.
const maxFormMemory = storage.MaxImageSize + 1<<20

// Handler exposes the event endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the event router.
//
// # Endpoints
//   - GET    /, /{id}          public
//   - POST   /                 verified admin, multipart or JSON
//   - PATCH  /{id}             verified admin, multipart or JSON
//   - DELETE /{id}             verified admin
func (handler *Handler) Routes(guards middleware.Guards) chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.listEvents)
	router.Get("/{id}", handler.getEvent)

	router.Group(func(adminRoute chi.Router) {
		adminRoute.Use(guards.Verified)

		adminRoute.Post("/", handler.createEvent)
		adminRoute.Patch("/{id}", handler.updateEvent)
		adminRoute.Delete("/{id}", handler.deleteEvent)
	})

	return router
}

// eventForm is the wire shape shared by JSON and multipart bodies.
// Every field is optional at this layer.
type eventForm struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	Status      *string `json:"status"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
	Image       *string `json:"image"`
}

func (handler *Handler) listEvents(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	// "?status=UPCOMING,ONGOING" selects several statuses at once
	filter := Filter{}
	for _, raw := range query.StringSlice(request.URL.Query().Get(FieldStatus)) {
		status := Status(strings.ToUpper(raw))
		if !status.Valid() {
			validator := &validate.Validator{}
			respond.Error(writer, request, validator.OneOf(FieldStatus, string(status), Statuses...).Err())
			return
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	events, total, err := handler.service.ListEvents(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, events, paginationParams.Meta(total))
}

func (handler *Handler) getEvent(writer http.ResponseWriter, request *http.Request) {
	eventID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	event, err := handler.service.GetEvent(request.Context(), eventID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, event)
}

/*
CreateEvent stores a new event.

POST /events

Response:
  - 201: Event
  - 400: Validation failure or UPCOMING event starting in the past
*/
func (handler *Handler) createEvent(writer http.ResponseWriter, request *http.Request) {
	form, image, err := readEventForm(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	startDate := parseDate(validator, FieldStartDate, form.StartDate)
	endDate := parseDate(validator, FieldEndDate, form.EndDate)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	input := CreateInput{
		Title:       pointer.Val(form.Title),
		Description: pointer.Val(form.Description),
		Location:    pointer.Val(form.Location),
		Status:      Status(strings.ToUpper(pointer.Val(form.Status))),
		StartDate:   pointer.Val(startDate),
		EndDate:     pointer.Val(endDate),
		ImageURL:    nonEmpty(form.Image),
	}

	event, err := handler.service.CreateEvent(request.Context(), input, image)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, event)
}

func (handler *Handler) updateEvent(writer http.ResponseWriter, request *http.Request) {
	eventID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	form, image, err := readEventForm(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	input := UpdateInput{
		Title:       form.Title,
		Description: form.Description,
		Location:    form.Location,
		StartDate:   parseDate(validator, FieldStartDate, form.StartDate),
		EndDate:     parseDate(validator, FieldEndDate, form.EndDate),
		ImageURL:    nonEmpty(form.Image),
	}
	if form.Status != nil {
		status := Status(strings.ToUpper(*form.Status))
		input.Status = &status
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	event, err := handler.service.UpdateEvent(request.Context(), eventID, input, image)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, event)
}

func (handler *Handler) deleteEvent(writer http.ResponseWriter, request *http.Request) {
	eventID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteEvent(request.Context(), eventID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Body Parsing

// readEventForm decodes either a multipart form (with an optional "image"
// file part) or a JSON body.
func readEventForm(writer http.ResponseWriter, request *http.Request) (*eventForm, *Image, error) {
	mediaType, _, _ := mime.ParseMediaType(request.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		form := &eventForm{}
		if err := requestutil.DecodeJSON(request, form); err != nil {
			return nil, nil, err
		}
		return form, nil, nil
	}

	request.Body = http.MaxBytesReader(writer, request.Body, maxFormMemory)
	if err := request.ParseMultipartForm(maxFormMemory); err != nil {
		return nil, nil, apperr.ValidationError("Invalid multipart form")
	}

	form := &eventForm{
		Title:       formValue(request, FieldTitle),
		Description: formValue(request, FieldDescription),
		Location:    formValue(request, FieldLocation),
		Status:      formValue(request, FieldStatus),
		StartDate:   formValue(request, FieldStartDate),
		EndDate:     formValue(request, FieldEndDate),
		Image:       formValue(request, FieldImage),
	}

	file, header, err := request.FormFile(FieldImage)
	if errors.Is(err, http.ErrMissingFile) {
		return form, nil, nil
	}
	if err != nil {
		return nil, nil, apperr.ValidationError("Invalid image upload")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, storage.MaxImageSize+1))
	if err != nil {
		return nil, nil, apperr.ValidationError("Invalid image upload")
	}
	if len(data) > storage.MaxImageSize {
		return nil, nil, apperr.ValidationError("Image exceeds the 5MB limit",
			apperr.FieldError{Field: FieldImage, Message: "Maximum 5MB"})
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	return form, &Image{Data: data, ContentType: contentType}, nil
}

func formValue(request *http.Request, key string) *string {
	values, ok := request.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func parseDate(validator *validate.Validator, field string, raw *string) *time.Time {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}

	value := strings.TrimSpace(*raw)
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return &parsed
		}
	}

	validator.Custom(field, true, "Must be an RFC 3339 timestamp")
	return nil
}

func nonEmpty(value *string) *string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	return value
}
