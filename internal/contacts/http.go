// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contacts

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/madhouse/internal/platform/apperr"
	"github.com/taibuivan/madhouse/internal/platform/ctxutil"
	"github.com/taibuivan/madhouse/internal/platform/middleware"
	requestutil "github.com/taibuivan/madhouse/internal/platform/request"
	"github.com/taibuivan/madhouse/internal/platform/respond"
	"github.com/taibuivan/madhouse/internal/platform/validate"
	"github.com/taibuivan/madhouse/pkg/pagination"
)

const (
	msgSubscribed      = "Subscription created. Please confirm your email to activate subscription."
	msgBulkFieldsEmpty = "Subject and message are required"
	siteURL            = "https://4-tl.vercel.app"
)

// Handler exposes the mailing-list endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the contacts router.
//
// # Endpoints
//   - GET    /confirm            public, HTML
//   - POST   /                   verified admin
//   - GET    /                   verified admin
//   - DELETE /{id}               verified admin
//   - PATCH  /{id}/status        verified admin
//   - POST   /bulk-email         verified admin
func (handler *Handler) Routes(guards middleware.Guards) chi.Router {
	router := chi.NewRouter()

	router.Get("/confirm", handler.confirm)

	router.Group(func(adminRoute chi.Router) {
		adminRoute.Use(guards.Verified)

		adminRoute.Post("/", handler.subscribe)
		adminRoute.Get("/", handler.listContacts)
		adminRoute.Delete("/{id}", handler.removeContact)
		adminRoute.Patch("/{id}/status", handler.updateStatus)
		adminRoute.Post("/bulk-email", handler.sendBulkEmail)
	})

	return router
}

type subscribeRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type bulkEmailRequest struct {
	Subject     string `json:"subject"`
	HTMLContent string `json:"html_content"`
	BatchSize   int    `json:"batch_size"`
}

/*
Subscribe adds an address to the mailing list.

POST /contacts

Response:
  - 201: {message, data: Contact}
  - 400: Validation failure or confirmation mail failed
  - 409: Already subscribed
*/
func (handler *Handler) subscribe(writer http.ResponseWriter, request *http.Request) {
	var input subscribeRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		MaxLen(FieldFirstName, input.FirstName, 100).
		MaxLen(FieldLastName, input.LastName, 100)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	contact, err := handler.service.Subscribe(request.Context(), SubscribeInput{
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]any{
		FieldMessage: msgSubscribed,
		FieldData:    contact,
	})
}

/*
Confirm follows a double opt-in link.

GET /contacts/confirm?token=

Response is an HTML page: 200 when confirmed, 400 otherwise.
*/
func (handler *Handler) confirm(writer http.ResponseWriter, request *http.Request) {
	token := request.URL.Query().Get("token")

	if token == "" {
		respond.HTML(writer, http.StatusBadRequest, renderPage(page{
			Title:    "Madhouse Subscription",
			Heading:  "Confirmation token is required",
			Link:     siteURL,
			LinkText: "You can try subscribing again.",
		}))
		return
	}

	if _, err := handler.service.Confirm(request.Context(), token); err != nil {
		if apperr.StatusOf(err) != http.StatusBadRequest {
			ctxutil.GetLogger(request.Context()).ErrorContext(request.Context(), "contact_confirm_failed",
				slog.String("error", err.Error()),
			)
		}
		respond.HTML(writer, http.StatusBadRequest, renderPage(page{
			Title:    "Madhouse Subscription",
			Heading:  "Invalid or expired confirmation link",
			Link:     siteURL,
			LinkText: "You can try subscribing again.",
		}))
		return
	}

	respond.HTML(writer, http.StatusOK, renderPage(page{
		Title:    "Subscription Confirmed",
		Heading:  "🔥 You are now a subscriber",
		Link:     siteURL,
		LinkText: "You can start receiving mails from madhouse",
	}))
}

func (handler *Handler) listContacts(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	query := request.URL.Query()

	filter := Filter{
		Email:  strings.TrimSpace(query.Get(FieldEmail)),
		Status: Status(strings.ToUpper(query.Get(FieldStatus))),
	}

	if filter.Status != "" && !filter.Status.Valid() {
		validator := &validate.Validator{}
		respond.Error(writer, request, validator.OneOf(FieldStatus, string(filter.Status), Statuses...).Err())
		return
	}

	contacts, total, err := handler.service.ListContacts(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, contacts, paginationParams.Meta(total))
}

func (handler *Handler) removeContact(writer http.ResponseWriter, request *http.Request) {
	contactID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RemoveContact(request.Context(), contactID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

func (handler *Handler) updateStatus(writer http.ResponseWriter, request *http.Request) {
	contactID, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input statusRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	status := Status(strings.ToUpper(input.Status))
	validator := &validate.Validator{}
	if err := validator.OneOf(FieldStatus, string(status), Statuses...).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	contact, err := handler.service.UpdateStatus(request.Context(), contactID, status)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, contact)
}

/*
SendBulkEmail mails every active contact.

POST /contacts/bulk-email

Response:
  - 200: {message, results}
  - 400: Missing subject/content or no active contacts
*/
func (handler *Handler) sendBulkEmail(writer http.ResponseWriter, request *http.Request) {
	var input bulkEmailRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if strings.TrimSpace(input.Subject) == "" || strings.TrimSpace(input.HTMLContent) == "" {
		respond.Error(writer, request, apperr.BadRequest(msgBulkFieldsEmpty))
		return
	}

	result, err := handler.service.SendBulkEmail(request.Context(), input.Subject, input.HTMLContent, input.BatchSize)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		FieldMessage: BulkSummary(result),
		FieldResults: result,
	})
}
