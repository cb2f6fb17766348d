// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package listing

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/compatdex/compatdex/internal/platform/middleware"
	requestutil "github.com/compatdex/compatdex/internal/platform/request"
	"github.com/compatdex/compatdex/internal/platform/respond"
	"github.com/compatdex/compatdex/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for the listing catalogue.
type Handler struct {
	service *Service
	banGate func(http.Handler) http.Handler
}

// NewHandler constructs a new listing [Handler].
//
// banGate blocks suspended users from submitting; browsing stays open.
func NewHandler(service *Service, banGate func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, banGate: banGate}
}

// Routes returns a [chi.Router] configured with catalogue endpoints.
//
// # Routing Strategy
//
//   - Discovery (Public): Accessible by all visitors for browsing.
//   - Submission (Restricted): Authenticated, non-banned users only.
//   - Verification (Restricted): DEVELOPER and above.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Public Discovery Endpoints
	router.Get("/", handler.list)
	router.Get("/{listingID}", handler.get)
	router.Get("/slug/{slug}", handler.getBySlug)

	// ## Submission (Authenticated, Not Banned)
	router.Group(func(authors chi.Router) {
		authors.Use(middleware.RequireAuth)
		authors.Use(handler.banGate)

		authors.Post("/", handler.submit)
	})

	// ## Developer Verification
	router.Group(func(developers chi.Router) {
		developers.Use(middleware.RequireAuth)

		developers.Post("/{listingID}/verify", handler.verify)
	})

	return router
}

// # Request Payloads

type submitRequest struct {
	GameTitle   string  `json:"game_title"`
	Emulator    string  `json:"emulator"`
	Device      string  `json:"device"`
	Performance string  `json:"performance"`
	Notes       *string `json:"notes"`
}

// # Endpoints

/*
GET /api/v1/listings.

Description: Browses the catalogue.

Request:
  - status: PENDING | APPROVED | REJECTED (optional)
  - author_id: string (optional)
  - emulator: string (optional)
  - limit, page: int

Response:
  - 200: []Listing: Paginated records
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()
	filter := Filter{
		Status:   ApprovalStatus(queryParams.Get("status")),
		AuthorID: queryParams.Get("author_id"),
		Emulator: queryParams.Get("emulator"),
	}

	listings, total, err := handler.service.List(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, listings, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/listings/{listingID}.

Response:
  - 200: Listing: Success
  - 404: ErrNotFound: Unknown listing
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	listingID := requestutil.ID(request, "listingID")

	found, err := handler.service.Get(request.Context(), listingID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, found)
}

/*
GET /api/v1/listings/slug/{slug}.

Response:
  - 200: Listing: Success
  - 404: ErrNotFound: Unknown slug
*/
func (handler *Handler) getBySlug(writer http.ResponseWriter, request *http.Request) {
	slugParam := chi.URLParam(request, "slug")

	found, err := handler.service.GetBySlug(request.Context(), slugParam)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, found)
}

/*
POST /api/v1/listings.

Description: Submits a new compatibility report into the moderation queue.

Request:
  - game_title, emulator, device: string
  - performance: perfect | playable | ingame | menus | unplayable
  - notes: string (optional)

Response:
  - 201: Listing: Created as PENDING
  - 403: ErrForbidden: Caller is banned
*/
func (handler *Handler) submit(writer http.ResponseWriter, request *http.Request) {
	authorID, _, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body submitRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.service.Submit(request.Context(), authorID, SubmitInput{
		GameTitle:   body.GameTitle,
		Emulator:    body.Emulator,
		Device:      body.Device,
		Performance: body.Performance,
		Notes:       body.Notes,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}

/*
POST /api/v1/listings/{listingID}/verify.

Description: Marks a listing developer-verified and credits the author.

Response:
  - 200: Listing: Verified
  - 403: ErrForbidden: Below DEVELOPER without an explicit grant
  - 409: INVALID_TRANSITION: Already verified
*/
func (handler *Handler) verify(writer http.ResponseWriter, request *http.Request) {
	actorID, actorRole, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	listingID := requestutil.ID(request, "listingID")

	verified, err := handler.service.Verify(request.Context(), actorID, actorRole, listingID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, verified)
}
