// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package moderation

import (
	"context"
	"log/slog"

	"github.com/compatdex/compatdex/internal/content/listing"
	"github.com/compatdex/compatdex/internal/notify"
	"github.com/compatdex/compatdex/internal/perm"
	"github.com/compatdex/compatdex/internal/platform/constants"
	"github.com/compatdex/compatdex/internal/platform/sec"
	"github.com/compatdex/compatdex/internal/platform/validate"
	"github.com/compatdex/compatdex/internal/trust"
	"github.com/compatdex/compatdex/pkg/uuid"
)

// # Collaborator Contracts

// ListingReader supplies listing lookups for guard checks.
//
// Only reads happen through here; status writes stay inside the
// transactional repository.
type ListingReader interface {
	FindByID(ctx context.Context, id string) (*listing.Listing, error)
}

// # Service Implementation

// Service orchestrates both moderation state machines with their guards.
type Service struct {
	repo       Repository
	listings   ListingReader
	perms      *perm.Service
	trust      *trust.Service
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
}

// NewService constructs the moderation service.
func NewService(
	repo Repository,
	listings ListingReader,
	perms *perm.Service,
	trustService *trust.Service,
	dispatcher *notify.Dispatcher,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:       repo,
		listings:   listings,
		perms:      perms,
		trust:      trustService,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// # Report Operations

/*
CreateReport files a complaint against a listing.

Description: Rejects self-reports (you cannot report your own listing) and
duplicate (reporter, target) pairs. The report enters as PENDING.

Parameters:
  - ctx: context.Context
  - reporterID: string
  - input: CreateReportInput

Returns:
  - *Report: Created record
  - error: Validation, conflict, or persistence failures
*/
func (service *Service) CreateReport(ctx context.Context, reporterID string, input CreateReportInput) (*Report, error) {
	validator := &validate.Validator{}
	validator.Required("target_id", input.TargetID).
		UUID("target_id", input.TargetID).
		OneOf("reason", input.Reason, AllReasons()...)
	if input.Description != nil {
		validator.MaxLen("description", *input.Description, constants.MaxDescriptionLength)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	target, err := service.listings.FindByID(ctx, input.TargetID)
	if err != nil {
		return nil, err
	}

	validator = &validate.Validator{}
	validator.Custom("target_id", target.AuthorID == reporterID, "You cannot report your own listing")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		ID:           uuid.New(),
		TargetID:     input.TargetID,
		ReportedByID: reporterID,
		Reason:       input.Reason,
		Description:  input.Description,
		Status:       ReportPending,
	}

	if err := service.repo.InsertReport(ctx, report); err != nil {
		return nil, err
	}

	service.logger.Info("report_created",
		slog.String("report_id", report.ID),
		slog.String("target_id", input.TargetID),
		slog.String("reporter_id", reporterID),
		slog.String("reason", input.Reason),
	)
	return report, nil
}

// GetReport retrieves one report.
func (service *Service) GetReport(ctx context.Context, reportID string) (*Report, error) {
	return service.repo.FindReportByID(ctx, reportID)
}

// ListReports returns a filtered page of the moderation queue.
func (service *Service) ListReports(ctx context.Context, filter ReportFilter, limit, offset int) ([]*Report, int, error) {
	return service.repo.ListReports(ctx, filter, limit, offset)
}

/*
StartReview claims a PENDING report for a reviewer.

Parameters:
  - ctx: context.Context
  - actorID: string
  - actorRole: sec.UserRole
  - reportID: string

Returns:
  - *Report: Updated record
  - error: Authorization, conflict, or persistence failures
*/
func (service *Service) StartReview(ctx context.Context, actorID string, actorRole sec.UserRole, reportID string) (*Report, error) {
	if err := service.perms.Require(ctx, actorID, actorRole, perm.KeyModerationReview); err != nil {
		return nil, err
	}

	reviewing, err := service.repo.StartReview(ctx, reportID, actorID)
	if err != nil {
		return nil, err
	}

	service.logger.Info("report_review_started",
		slog.String("report_id", reportID),
		slog.String("reviewer_id", actorID),
	)
	return reviewing, nil
}

/*
Resolve settles a report with a terminal outcome.

Description: One atomic unit of work — report status, the conditional
listing rejection, the reporter's trust entry (REPORT_CONFIRMED on
RESOLVED, FALSE_REPORT on DISMISSED), and the audit entry all commit
together. A losing concurrent resolver gets ALREADY_RESOLVED and no ledger
row.

Parameters:
  - ctx: context.Context
  - actorID: string
  - actorRole: sec.UserRole
  - reportID: string
  - outcome: Outcome (RESOLVED or DISMISSED)
  - notes: *string

Returns:
  - *Report: Updated record
  - error: Validation, authorization, conflict, or persistence failures
*/
func (service *Service) Resolve(ctx context.Context, actorID string, actorRole sec.UserRole, reportID string, outcome Outcome, notes *string) (*Report, error) {
	validator := &validate.Validator{}
	validator.OneOf("outcome", string(outcome), string(ReportResolved), string(ReportDismissed))
	if notes != nil {
		validator.MaxLen("notes", *notes, constants.MaxNotesLength)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.perms.Require(ctx, actorID, actorRole, perm.KeyModerationReview); err != nil {
		return nil, err
	}

	existing, err := service.repo.FindReportByID(ctx, reportID)
	if err != nil {
		return nil, err
	}

	trustAction := trust.ActionReportConfirmed
	if outcome == ReportDismissed {
		trustAction = trust.ActionFalseReport
	}
	trustEntry, _ := trust.NewEntry(existing.ReportedByID, trustAction)
	trustEntry.WithMetadata(map[string]any{"report_id": reportID})

	resolved, err := service.repo.ResolveReport(ctx, reportID, actorID, outcome, notes, trustEntry)
	if err != nil {
		return nil, err
	}

	service.trust.OnLedgerWrite(ctx, existing.ReportedByID)
	service.dispatcher.Publish(ctx, notify.Event{
		Type:         notify.EventReportResolved,
		ActorID:      actorID,
		TargetUserID: existing.ReportedByID,
		EntityID:     reportID,
		Metadata:     map[string]any{"outcome": string(outcome)},
	})
	service.logger.Info("report_resolved",
		slog.String("report_id", reportID),
		slog.String("reviewer_id", actorID),
		slog.String("outcome", string(outcome)),
	)
	return resolved, nil
}

// # Content Operations

/*
Approve moves a PENDING listing to APPROVED.

Description: Credits LISTING_APPROVED to the author atomically with the
status change.

Parameters:
  - ctx: context.Context
  - actorID: string
  - actorRole: sec.UserRole
  - listingID: string
  - notes: *string

Returns:
  - *listing.Listing: Updated record
  - error: Authorization, conflict, or persistence failures
*/
func (service *Service) Approve(ctx context.Context, actorID string, actorRole sec.UserRole, listingID string, notes *string) (*listing.Listing, error) {
	return service.process(ctx, actorID, actorRole, listingID, notes, listing.StatusApproved)
}

/*
Reject moves a PENDING listing to REJECTED.

Description: Debits LISTING_REJECTED from the author atomically with the
status change.

Parameters:
  - ctx: context.Context
  - actorID: string
  - actorRole: sec.UserRole
  - listingID: string
  - notes: *string

Returns:
  - *listing.Listing: Updated record
  - error: Authorization, conflict, or persistence failures
*/
func (service *Service) Reject(ctx context.Context, actorID string, actorRole sec.UserRole, listingID string, notes *string) (*listing.Listing, error) {
	return service.process(ctx, actorID, actorRole, listingID, notes, listing.StatusRejected)
}

func (service *Service) process(ctx context.Context, actorID string, actorRole sec.UserRole, listingID string, notes *string, newStatus listing.ApprovalStatus) (*listing.Listing, error) {
	if notes != nil {
		validator := &validate.Validator{}
		validator.MaxLen("notes", *notes, constants.MaxNotesLength)
		if err := validator.Err(); err != nil {
			return nil, err
		}
	}

	if err := service.perms.Require(ctx, actorID, actorRole, perm.KeyModerationApprove); err != nil {
		return nil, err
	}

	existing, err := service.listings.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	trustAction := trust.ActionListingApproved
	eventType := notify.EventListingApproved
	if newStatus == listing.StatusRejected {
		trustAction = trust.ActionListingRejected
		eventType = notify.EventListingRejected
	}
	trustEntry, _ := trust.NewEntry(existing.AuthorID, trustAction)
	trustEntry.WithMetadata(map[string]any{"listing_id": listingID})

	var processed *listing.Listing
	if newStatus == listing.StatusApproved {
		processed, err = service.repo.ApproveListing(ctx, listingID, actorID, notes, trustEntry)
	} else {
		processed, err = service.repo.RejectListing(ctx, listingID, actorID, notes, trustEntry)
	}
	if err != nil {
		return nil, err
	}

	service.trust.OnLedgerWrite(ctx, existing.AuthorID)
	service.dispatcher.Publish(ctx, notify.Event{
		Type:         eventType,
		ActorID:      actorID,
		TargetUserID: existing.AuthorID,
		EntityID:     listingID,
	})
	service.logger.Info("listing_processed",
		slog.String("listing_id", listingID),
		slog.String("actor_id", actorID),
		slog.String("status", string(newStatus)),
	)
	return processed, nil
}

/*
Override force-moves a listing to any approval status.

Description: The only exit from a terminal state, gated strictly above
approve/reject, and always audited. Notes are mandatory: an override without
a written justification is not accepted.

Parameters:
  - ctx: context.Context
  - actorID: string
  - actorRole: sec.UserRole
  - listingID: string
  - newStatus: listing.ApprovalStatus
  - notes: string

Returns:
  - *listing.Listing: Updated record
  - error: Validation, authorization, conflict, or persistence failures
*/
func (service *Service) Override(ctx context.Context, actorID string, actorRole sec.UserRole, listingID string, newStatus listing.ApprovalStatus, notes string) (*listing.Listing, error) {
	validator := &validate.Validator{}
	validator.Custom("status", !newStatus.IsValid(), "Unknown approval status").
		Required("notes", notes).
		MaxLen("notes", notes, constants.MaxNotesLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.perms.Require(ctx, actorID, actorRole, perm.KeyModerationOverride); err != nil {
		return nil, err
	}

	overridden, err := service.repo.OverrideListingStatus(ctx, listingID, actorID, newStatus, notes)
	if err != nil {
		return nil, err
	}

	service.logger.Info("listing_status_overridden",
		slog.String("listing_id", listingID),
		slog.String("actor_id", actorID),
		slog.String("new_status", string(newStatus)),
	)
	return overridden, nil
}
