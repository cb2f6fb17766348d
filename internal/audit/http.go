// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package audit

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

// Handler implements the read-only HTTP viewer for the audit log.
//
// No write endpoints exist here: the only write path into the log is
// [InsertTx], called from inside sibling repositories' transactions.
type Handler struct {
	service *Service
}

// NewHandler constructs a new audit [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the audit viewer endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))

		admin.Get("/", handler.listEntries)
		admin.Get("/{id}", handler.getEntry)
	})

	return router
}

/*
GET /api/v1/audit.

Description: Retrieves a newest-first page of audit entries, filterable by
actor, target user, entity, and action.

Request:
  - actor_id: string (UUID)
  - target_user_id: string (UUID)
  - entity_type: string
  - entity_id: string (UUID)
  - action: string
  - limit, page: int

Response:
  - 200: []Entry: Paginated list
  - 401: ErrUnauthorized: Authentication required
  - 403: ErrForbidden: Admin only
*/
func (handler *Handler) listEntries(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()

	filter := Filter{
		ActorID:      queryParams.Get("actor_id"),
		TargetUserID: queryParams.Get("target_user_id"),
		EntityType:   queryParams.Get("entity_type"),
		EntityID:     queryParams.Get("entity_id"),
		Action:       queryParams.Get("action"),
	}

	entries, total, err := handler.service.ListEntries(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, entries, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/audit/{id}.

Description: Retrieves a single audit entry with its full field diff.

Request:
  - id: string (UUID)

Response:
  - 200: Entry: Success
  - 404: ErrNotFound: Entry not found
*/
func (handler *Handler) getEntry(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.ID(request, "id")

	entry, err := handler.service.GetEntry(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, entry)
}
