// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package trust

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/compatdex/compatdex/internal/platform/middleware"
	requestutil "github.com/compatdex/compatdex/internal/platform/request"
	"github.com/compatdex/compatdex/internal/platform/sec"
	"github.com/compatdex/compatdex/internal/platform/respond"
	"github.com/compatdex/compatdex/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for trust standing and history reads.
//
// There is no generic write endpoint: ledger entries are only created by the
// moderation workflows themselves.
type Handler struct {
	service *Service
}

// NewHandler constructs a new trust [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with trust endpoints.
//
// # Routing Strategy
//
//   - Self Service: Any authenticated user may read their own standing.
//   - Lookups (Restricted): Reading someone else's standing requires [RoleModerator].
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Self Service
	router.Group(func(self chi.Router) {
		self.Use(middleware.RequireAuth)

		self.Get("/me", handler.getOwnStanding)
		self.Get("/me/history", handler.getOwnHistory)
	})

	// ## Lookups (Moderator Protected)
	router.Group(func(staff chi.Router) {
		staff.Use(middleware.RequireRole(sec.RoleModerator))

		staff.Get("/{userID}", handler.getStanding)
		staff.Get("/{userID}/history", handler.getHistory)
	})

	return router
}

/*
GET /api/v1/trust/me.

Description: Returns the authenticated user's own score and level.

Response:
  - 200: Standing: Success
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) getOwnStanding(writer http.ResponseWriter, request *http.Request) {
	userID, _, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	standing, err := handler.service.GetStanding(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, standing)
}

/*
GET /api/v1/trust/me/history.

Description: Returns the authenticated user's own ledger history.

Request:
  - limit, page: int

Response:
  - 200: []Entry: Paginated ledger rows, newest first
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) getOwnHistory(writer http.ResponseWriter, request *http.Request) {
	userID, _, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.writeHistory(writer, request, userID)
}

/*
GET /api/v1/trust/{userID}.

Description: Returns another user's score and level. Moderator only.

Request:
  - userID: string (UUID)

Response:
  - 200: Standing: Success
  - 403: ErrForbidden: Moderator only
*/
func (handler *Handler) getStanding(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.ID(request, "userID")

	standing, err := handler.service.GetStanding(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, standing)
}

/*
GET /api/v1/trust/{userID}/history.

Description: Returns another user's ledger history. Moderator only.

Request:
  - userID: string (UUID)
  - limit, page: int

Response:
  - 200: []Entry: Paginated ledger rows, newest first
  - 403: ErrForbidden: Moderator only
*/
func (handler *Handler) getHistory(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.ID(request, "userID")
	handler.writeHistory(writer, request, userID)
}

// writeHistory renders a paginated ledger history response.
func (handler *Handler) writeHistory(writer http.ResponseWriter, request *http.Request, userID string) {
	paginationParams := pagination.FromRequest(request)

	entries, total, err := handler.service.GetHistory(request.Context(), userID, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, entries, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}
