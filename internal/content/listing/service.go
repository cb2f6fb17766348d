// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package listing

import (
	"context"
	"log/slog"

	"github.com/compatdex/compatdex/internal/notify"
	"github.com/compatdex/compatdex/internal/perm"
	"github.com/compatdex/compatdex/internal/platform/constants"
	"github.com/compatdex/compatdex/internal/platform/sec"
	"github.com/compatdex/compatdex/internal/platform/validate"
	"github.com/compatdex/compatdex/internal/trust"
	"github.com/compatdex/compatdex/pkg/slug"
	"github.com/compatdex/compatdex/pkg/uuid"
)

// maxFieldLength caps the short free-text identity fields of a listing.
const maxFieldLength = 200

// Service implements listing submission, browsing, and developer verification.
type Service struct {
	repo       Repository
	perms      *perm.Service
	trust      *trust.Service
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
}

// NewService constructs the listing service.
func NewService(
	repo Repository,
	perms *perm.Service,
	trustService *trust.Service,
	dispatcher *notify.Dispatcher,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:       repo,
		perms:      perms,
		trust:      trustService,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// # Catalogue Operations

/*
Submit creates a new compatibility report in the moderation queue.

Description: The listing enters as PENDING; visibility to the public
catalogue comes only after moderation approves it. The slug is derived from
game title, emulator, and device.

Parameters:
  - ctx: context.Context
  - authorID: string
  - input: SubmitInput

Returns:
  - *Listing: Created record
  - error: Validation or persistence failures
*/
func (service *Service) Submit(ctx context.Context, authorID string, input SubmitInput) (*Listing, error) {
	validator := &validate.Validator{}
	validator.Required("game_title", input.GameTitle).
		MaxLen("game_title", input.GameTitle, maxFieldLength).
		Required("emulator", input.Emulator).
		MaxLen("emulator", input.Emulator, maxFieldLength).
		Required("device", input.Device).
		MaxLen("device", input.Device, maxFieldLength).
		OneOf("performance", input.Performance, AllPerformanceRatings()...)
	if input.Notes != nil {
		validator.MaxLen("notes", *input.Notes, constants.MaxNotesLength)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	created := &Listing{
		ID:          uuid.New(),
		Slug:        slug.Join(input.GameTitle, input.Emulator, input.Device),
		AuthorID:    authorID,
		GameTitle:   input.GameTitle,
		Emulator:    input.Emulator,
		Device:      input.Device,
		Performance: input.Performance,
		Notes:       input.Notes,
		Status:      StatusPending,
	}

	if err := service.repo.Insert(ctx, created); err != nil {
		return nil, err
	}

	service.logger.Info("listing_submitted",
		slog.String("listing_id", created.ID),
		slog.String("author_id", authorID),
		slog.String("slug", created.Slug),
	)
	return created, nil
}

// Get retrieves one listing by ID.
func (service *Service) Get(ctx context.Context, id string) (*Listing, error) {
	return service.repo.FindByID(ctx, id)
}

// GetBySlug retrieves one listing by its URL slug.
func (service *Service) GetBySlug(ctx context.Context, s string) (*Listing, error) {
	return service.repo.FindBySlug(ctx, s)
}

// List returns a filtered page of listings.
func (service *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]*Listing, int, error) {
	return service.repo.List(ctx, filter, limit, offset)
}

// # Developer Verification

/*
Verify marks a listing as confirmed by an emulator developer.

Description: Requires the listing:verify permission (DEVELOPER and above).
Verifying your own listing is rejected: the badge exists to be a second
pair of eyes, and it credits the author's trust score. The
LISTING_DEVELOPER_VERIFIED ledger entry commits with the flag atomically.

Parameters:
  - ctx: context.Context
  - actorID: string
  - actorRole: sec.UserRole
  - listingID: string

Returns:
  - *Listing: Updated record
  - error: Validation, authorization, conflict, or persistence failures
*/
func (service *Service) Verify(ctx context.Context, actorID string, actorRole sec.UserRole, listingID string) (*Listing, error) {
	if err := service.perms.Require(ctx, actorID, actorRole, perm.KeyListingVerify); err != nil {
		return nil, err
	}

	existing, err := service.repo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	validator.Custom("listing_id", existing.AuthorID == actorID, "You cannot verify your own listing")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	trustEntry, _ := trust.NewEntry(existing.AuthorID, trust.ActionListingDeveloperVerified)
	trustEntry.WithTarget(actorID).
		WithMetadata(map[string]any{"listing_id": listingID})

	verified, err := service.repo.Verify(ctx, listingID, actorID, trustEntry)
	if err != nil {
		return nil, err
	}

	service.trust.OnLedgerWrite(ctx, existing.AuthorID)
	service.dispatcher.Publish(ctx, notify.Event{
		Type:         notify.EventListingVerified,
		ActorID:      actorID,
		TargetUserID: existing.AuthorID,
		EntityID:     listingID,
	})
	service.logger.Info("listing_verified",
		slog.String("listing_id", listingID),
		slog.String("verifier_id", actorID),
	)
	return verified, nil
}
