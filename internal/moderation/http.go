// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package moderation

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/compatdex/compatdex/internal/content/listing"
	"github.com/compatdex/compatdex/internal/platform/middleware"
	requestutil "github.com/compatdex/compatdex/internal/platform/request"
	"github.com/compatdex/compatdex/internal/platform/respond"
	"github.com/compatdex/compatdex/internal/platform/sec"
	"github.com/compatdex/compatdex/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for the moderation queue.
type Handler struct {
	service *Service
	banGate func(http.Handler) http.Handler
}

// NewHandler constructs a new moderation [Handler].
//
// banGate keeps suspended users from filing reports; everything else on
// this router is staff-only anyway.
func NewHandler(service *Service, banGate func(http.Handler) http.Handler) *Handler {
	return &Handler{service: service, banGate: banGate}
}

// Routes returns a [chi.Router] configured with moderation endpoints.
//
// # Routing Strategy
//
//   - Report Filing (Restricted): Authenticated, non-banned users.
//   - Queue & Decisions (Restricted): MODERATOR and above. The status
//     override additionally requires ADMIN, enforced by its permission key.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// ## Report Filing (Authenticated, Not Banned)
	router.Group(func(reporters chi.Router) {
		reporters.Use(middleware.RequireAuth)
		reporters.Use(handler.banGate)

		reporters.Post("/reports", handler.createReport)
	})

	// ## Staff Queue & Decisions
	router.Group(func(staff chi.Router) {
		staff.Use(middleware.RequireRole(sec.RoleModerator))

		staff.Get("/reports", handler.listReports)
		staff.Get("/reports/{reportID}", handler.getReport)
		staff.Post("/reports/{reportID}/review", handler.startReview)
		staff.Post("/reports/{reportID}/resolve", handler.resolve)

		staff.Post("/listings/{listingID}/approve", handler.approve)
		staff.Post("/listings/{listingID}/reject", handler.reject)
		staff.Post("/listings/{listingID}/override", handler.override)
	})

	return router
}

// # Request Payloads

type createReportRequest struct {
	TargetID    string  `json:"target_id"`
	Reason      string  `json:"reason"`
	Description *string `json:"description"`
}

type resolveRequest struct {
	Outcome string  `json:"outcome"`
	Notes   *string `json:"notes"`
}

type processRequest struct {
	Notes *string `json:"notes"`
}

type overrideRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// # Report Endpoints

/*
POST /api/v1/moderation/reports.

Description: Files a complaint against a listing.

Request:
  - target_id: string
  - reason: FAKE_LISTING | WRONG_INFO | INAPPROPRIATE | SPAM | OTHER
  - description: string (optional)

Response:
  - 201: Report: Created as PENDING
  - 409: DUPLICATE_REPORT: Caller already reported this listing
*/
func (handler *Handler) createReport(writer http.ResponseWriter, request *http.Request) {
	reporterID, _, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body createReportRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	created, err := handler.service.CreateReport(request.Context(), reporterID, CreateReportInput{
		TargetID:    body.TargetID,
		Reason:      body.Reason,
		Description: body.Description,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}

/*
GET /api/v1/moderation/reports.

Request:
  - status: PENDING | UNDER_REVIEW | RESOLVED | DISMISSED (optional)
  - target_id: string (optional)
  - limit, page: int

Response:
  - 200: []Report: Paginated queue
*/
func (handler *Handler) listReports(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()
	filter := ReportFilter{
		Status:   ReportStatus(queryParams.Get("status")),
		TargetID: queryParams.Get("target_id"),
	}

	reports, total, err := handler.service.ListReports(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, reports, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/moderation/reports/{reportID}.

Response:
  - 200: Report: Success
  - 404: ErrNotFound: Unknown report
*/
func (handler *Handler) getReport(writer http.ResponseWriter, request *http.Request) {
	reportID := requestutil.ID(request, "reportID")

	found, err := handler.service.GetReport(request.Context(), reportID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, found)
}

/*
POST /api/v1/moderation/reports/{reportID}/review.

Description: Claims a PENDING report for review.

Response:
  - 200: Report: Now UNDER_REVIEW
  - 409: ALREADY_RESOLVED: Report reached a terminal state
*/
func (handler *Handler) startReview(writer http.ResponseWriter, request *http.Request) {
	actorID, actorRole, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	reportID := requestutil.ID(request, "reportID")

	reviewing, err := handler.service.StartReview(request.Context(), actorID, actorRole, reportID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, reviewing)
}

/*
POST /api/v1/moderation/reports/{reportID}/resolve.

Description: Settles a report. RESOLVED confirms the complaint (and rejects
the listing if it had been approved); DISMISSED penalizes false reporting.

Request:
  - outcome: RESOLVED | DISMISSED
  - notes: string (optional)

Response:
  - 200: Report: Settled
  - 409: ALREADY_RESOLVED: Another reviewer settled it first
*/
func (handler *Handler) resolve(writer http.ResponseWriter, request *http.Request) {
	actorID, actorRole, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body resolveRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	reportID := requestutil.ID(request, "reportID")

	resolved, err := handler.service.Resolve(request.Context(), actorID, actorRole, reportID, Outcome(body.Outcome), body.Notes)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, resolved)
}

// # Content Endpoints

/*
POST /api/v1/moderation/listings/{listingID}/approve.

Response:
  - 200: Listing: Now APPROVED
  - 409: INVALID_TRANSITION: Listing was not PENDING
*/
func (handler *Handler) approve(writer http.ResponseWriter, request *http.Request) {
	handler.processListing(writer, request, handler.service.Approve)
}

/*
POST /api/v1/moderation/listings/{listingID}/reject.

Response:
  - 200: Listing: Now REJECTED
  - 409: INVALID_TRANSITION: Listing was not PENDING
*/
func (handler *Handler) reject(writer http.ResponseWriter, request *http.Request) {
	handler.processListing(writer, request, handler.service.Reject)
}

func (handler *Handler) processListing(
	writer http.ResponseWriter,
	request *http.Request,
	decide func(ctx context.Context, actorID string, actorRole sec.UserRole, listingID string, notes *string) (*listing.Listing, error),
) {
	actorID, actorRole, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body processRequest
	if err := requestutil.DecodeJSONOptional(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	listingID := requestutil.ID(request, "listingID")

	processed, err := decide(request.Context(), actorID, actorRole, listingID, body.Notes)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, processed)
}

/*
POST /api/v1/moderation/listings/{listingID}/override.

Description: Force-moves a listing to any status. ADMIN only; notes are
mandatory.

Request:
  - status: PENDING | APPROVED | REJECTED
  - notes: string

Response:
  - 200: Listing: Status overridden
  - 403: ErrForbidden: Below ADMIN without an explicit grant
*/
func (handler *Handler) override(writer http.ResponseWriter, request *http.Request) {
	actorID, actorRole, err := requestutil.RequiredActor(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var body overrideRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	listingID := requestutil.ID(request, "listingID")

	overridden, err := handler.service.Override(request.Context(), actorID, actorRole, listingID, listing.ApprovalStatus(body.Status), body.Notes)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, overridden)
}
