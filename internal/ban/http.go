// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package ban

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/compatdex/compatdex/internal/platform/middleware"
	requestutil "github.com/compatdex/compatdex/internal/platform/request"
	"github.com/compatdex/compatdex/internal/platform/sec"
	"github.com/compatdex/compatdex/internal/platform/respond"
	"github.com/compatdex/compatdex/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for the ban registry.
type Handler struct {
	service *Service
}

// NewHandler constructs a new ban [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with ban endpoints.
//
// Everything is moderator territory; the finer-grained permission checks
// (archive is admin-only) live in the service.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(staff chi.Router) {
		staff.Use(middleware.RequireRole(sec.RoleModerator))

		staff.Post("/", handler.create)
		staff.Get("/", handler.list)
		staff.Get("/status/{userID}", handler.checkStatus)
		staff.Get("/{banID}", handler.get)
		staff.Patch("/{banID}", handler.update)
		staff.Post("/{banID}/lift", handler.lift)
		staff.Post("/{banID}/archive", handler.archive)
	})

	return router
}

// # Request Payloads

type createRequest struct {
	UserID    string     `json:"user_id"`
	Reason    string     `json:"reason"`
	Notes     *string    `json:"notes"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type updateRequest struct {
	Reason    *string    `json:"reason"`
	Notes     *string    `json:"notes"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type liftRequest struct {
	Notes *string `json:"notes"`
}

type archiveRequest struct {
	Note string `json:"note"`
}

// # Endpoints

/*
POST /api/v1/bans.

Description: Issues a new ban.

Request:
  - user_id: string (UUID)
  - reason: string
  - notes: string (optional)
  - expires_at: RFC3339 timestamp (optional; absent means permanent)

Response:
  - 201: Ban: Created
  - 403: ErrForbidden: Actor does not outrank the target
  - 409: ALREADY_BANNED: Target already has an active ban
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	actorID, actorRole, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body createRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.service.Create(request.Context(), actorID, actorRole, CreateInput{
		UserID:    body.UserID,
		Reason:    body.Reason,
		Notes:     body.Notes,
		ExpiresAt: body.ExpiresAt,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}

/*
GET /api/v1/bans.

Description: Lists ban records, newest first.

Request:
  - user_id: string (optional filter)
  - include_archived: "true" to include archived records
  - limit, page: int

Response:
  - 200: []Ban: Paginated records
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	filter := Filter{
		UserID:          request.URL.Query().Get("user_id"),
		IncludeArchived: request.URL.Query().Get("include_archived") == "true",
	}

	bans, total, err := handler.service.List(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, bans, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/bans/status/{userID}.

Description: Answers whether a user is currently suspended.

Response:
  - 200: Status: is_banned plus the responsible ban, if any
*/
func (handler *Handler) checkStatus(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.ID(request, "userID")

	status, err := handler.service.CheckStatus(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, status)
}

/*
GET /api/v1/bans/{banID}.

Response:
  - 200: Ban: Success
  - 404: ErrNotFound: Unknown ban
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	banID := requestutil.ID(request, "banID")

	ban, err := handler.service.Get(request.Context(), banID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, ban)
}

/*
PATCH /api/v1/bans/{banID}.

Description: Edits reason, notes, or expiry of an active ban. The activity
flag is not editable here.

Response:
  - 200: Ban: Updated
  - 409: INVALID_TRANSITION: Ban is no longer active
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	actorID, actorRole, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	banID := requestutil.ID(request, "banID")

	var body updateRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := handler.service.Update(request.Context(), actorID, actorRole, banID, UpdateInput{
		Reason:    body.Reason,
		Notes:     body.Notes,
		ExpiresAt: body.ExpiresAt,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated)
}

/*
POST /api/v1/bans/{banID}/lift.

Description: Explicitly deactivates an active ban.

Response:
  - 200: Ban: Lifted
  - 409: INVALID_TRANSITION: Ban is not active
*/
func (handler *Handler) lift(writer http.ResponseWriter, request *http.Request) {
	actorID, actorRole, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	banID := requestutil.ID(request, "banID")

	var body liftRequest
	if err := requestutil.DecodeJSONOptional(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	lifted, err := handler.service.Lift(request.Context(), actorID, actorRole, banID, body.Notes)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, lifted)
}

/*
POST /api/v1/bans/{banID}/archive.

Description: Soft-deletes a ban record. Admin only.

Response:
  - 200: Ban: Archived
  - 409: INVALID_TRANSITION: Already archived
*/
func (handler *Handler) archive(writer http.ResponseWriter, request *http.Request) {
	actorID, actorRole, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	banID := requestutil.ID(request, "banID")

	var body archiveRequest
	if err := requestutil.DecodeJSONOptional(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	archived, err := handler.service.Archive(request.Context(), actorID, actorRole, banID, body.Note)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, archived)
}
