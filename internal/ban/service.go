// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package ban

import (
	"context"
	"log/slog"
	"time"

	"github.com/compatdex/compatdex/internal/notify"
	"github.com/compatdex/compatdex/internal/perm"
	"github.com/compatdex/compatdex/internal/platform/apperr"
	"github.com/compatdex/compatdex/internal/platform/constants"
	"github.com/compatdex/compatdex/internal/platform/sec"
	"github.com/compatdex/compatdex/internal/platform/validate"
	"github.com/compatdex/compatdex/internal/trust"
	"github.com/compatdex/compatdex/pkg/uuid"
)

// # Collaborator Contracts

// RoleDirectory resolves a user's current role.
//
// The outranking guard always consults the target's role as committed right
// now, never a role captured at ban creation time.
type RoleDirectory interface {
	FindRole(ctx context.Context, userID string) (sec.UserRole, error)
}

// # Service Implementation

// Service implements the ban lifecycle with its authorization guards.
type Service struct {
	repo       Repository
	perms      *perm.Service
	directory  RoleDirectory
	trust      *trust.Service
	dispatcher *notify.Dispatcher
	logger     *slog.Logger
}

// NewService constructs the ban service.
func NewService(
	repo Repository,
	perms *perm.Service,
	directory RoleDirectory,
	trustService *trust.Service,
	dispatcher *notify.Dispatcher,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:       repo,
		perms:      perms,
		directory:  directory,
		trust:      trustService,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// # Lifecycle Operations

/*
Create issues a new ban against a user.

Description: Rejects self-bans and past expiry dates before any write. The
actor needs the ban:create permission and must strictly outrank the target's
current role. The insert, its audit entry, and the BAN_ISSUED trust debit
commit atomically; a concurrent duplicate surfaces as ALREADY_BANNED.

Parameters:
  - ctx: context.Context
  - actorID: string
  - actorRole: sec.UserRole
  - input: CreateInput

Returns:
  - *Ban: Created record
  - error: Validation, authorization, conflict, or persistence failures
*/
func (service *Service) Create(ctx context.Context, actorID string, actorRole sec.UserRole, input CreateInput) (*Ban, error) {
	validator := &validate.Validator{}
	validator.Required("user_id", input.UserID).
		UUID("user_id", input.UserID).
		Required("reason", input.Reason).
		MaxLen("reason", input.Reason, constants.MaxReasonLength).
		Future("expires_at", input.ExpiresAt).
		Custom("user_id", input.UserID == actorID, "You cannot ban yourself")
	if input.Notes != nil {
		validator.MaxLen("notes", *input.Notes, constants.MaxNotesLength)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.perms.Require(ctx, actorID, actorRole, perm.KeyBanCreate); err != nil {
		return nil, err
	}
	if err := service.requireOutranks(ctx, actorRole, input.UserID); err != nil {
		return nil, err
	}

	ban := &Ban{
		ID:         uuid.New(),
		UserID:     input.UserID,
		BannedByID: actorID,
		Reason:     input.Reason,
		Notes:      input.Notes,
		ExpiresAt:  input.ExpiresAt,
	}

	trustEntry, _ := trust.NewEntry(input.UserID, trust.ActionBanIssued)
	trustEntry.WithMetadata(map[string]any{"ban_id": ban.ID})

	if err := service.repo.Create(ctx, ban, trustEntry); err != nil {
		return nil, err
	}

	service.trust.OnLedgerWrite(ctx, input.UserID)
	service.dispatcher.Publish(ctx, notify.Event{
		Type:         notify.EventBanCreated,
		ActorID:      actorID,
		TargetUserID: input.UserID,
		EntityID:     ban.ID,
	})
	service.logger.Info("ban_created",
		slog.String("ban_id", ban.ID),
		slog.String("actor_id", actorID),
		slog.String("user_id", input.UserID),
		slog.Bool("permanent", input.ExpiresAt == nil),
	)
	return ban, nil
}

/*
Update edits the mutable fields of an active ban.

Description: The activity flag cannot be changed here; deactivation goes
through Lift or Archive only. The outranking guard runs against the target's
current role, so a target promoted since the ban was issued becomes
untouchable to a lower-ranked actor.

Parameters:
  - ctx: context.Context
  - actorID: string
  - actorRole: sec.UserRole
  - banID: string
  - input: UpdateInput

Returns:
  - *Ban: Updated record
  - error: Validation, authorization, conflict, or persistence failures
*/
func (service *Service) Update(ctx context.Context, actorID string, actorRole sec.UserRole, banID string, input UpdateInput) (*Ban, error) {
	validator := &validate.Validator{}
	if input.Reason != nil {
		validator.Required("reason", *input.Reason).
			MaxLen("reason", *input.Reason, constants.MaxReasonLength)
	}
	if input.Notes != nil {
		validator.MaxLen("notes", *input.Notes, constants.MaxNotesLength)
	}
	validator.Future("expires_at", input.ExpiresAt)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.perms.Require(ctx, actorID, actorRole, perm.KeyBanUpdate); err != nil {
		return nil, err
	}

	existing, err := service.repo.FindByID(ctx, banID)
	if err != nil {
		return nil, err
	}
	if err := service.requireOutranks(ctx, actorRole, existing.UserID); err != nil {
		return nil, err
	}

	updated, err := service.repo.Update(ctx, banID, actorID, input)
	if err != nil {
		return nil, err
	}

	service.logger.Info("ban_updated",
		slog.String("ban_id", banID),
		slog.String("actor_id", actorID),
	)
	return updated, nil
}

/*
Lift explicitly deactivates an active ban.

Description: Stamps unbannedat/unbannedbyid and credits BAN_LIFTED back to
the target in the same transaction. Lifting a ban that is already lifted,
expired, or archived fails with INVALID_TRANSITION.

Parameters:
  - ctx: context.Context
  - actorID: string
  - actorRole: sec.UserRole
  - banID: string
  - notes: *string

Returns:
  - *Ban: Updated record
  - error: Validation, authorization, conflict, or persistence failures
*/
func (service *Service) Lift(ctx context.Context, actorID string, actorRole sec.UserRole, banID string, notes *string) (*Ban, error) {
	if notes != nil {
		validator := &validate.Validator{}
		validator.MaxLen("notes", *notes, constants.MaxNotesLength)
		if err := validator.Err(); err != nil {
			return nil, err
		}
	}

	if err := service.perms.Require(ctx, actorID, actorRole, perm.KeyBanLift); err != nil {
		return nil, err
	}

	existing, err := service.repo.FindByID(ctx, banID)
	if err != nil {
		return nil, err
	}
	if err := service.requireOutranks(ctx, actorRole, existing.UserID); err != nil {
		return nil, err
	}

	trustEntry, _ := trust.NewEntry(existing.UserID, trust.ActionBanLifted)
	trustEntry.WithMetadata(map[string]any{"ban_id": banID})

	lifted, err := service.repo.Lift(ctx, banID, actorID, notes, trustEntry)
	if err != nil {
		return nil, err
	}

	service.trust.OnLedgerWrite(ctx, existing.UserID)
	service.dispatcher.Publish(ctx, notify.Event{
		Type:         notify.EventBanLifted,
		ActorID:      actorID,
		TargetUserID: existing.UserID,
		EntityID:     banID,
	})
	service.logger.Info("ban_lifted",
		slog.String("ban_id", banID),
		slog.String("actor_id", actorID),
		slog.String("user_id", existing.UserID),
	)
	return lifted, nil
}

/*
Archive soft-deletes a ban record.

Description: Administrative operation, gated above lift. No outranking check
applies: archiving is record management, not an action against the user.

Parameters:
  - ctx: context.Context
  - actorID: string
  - actorRole: sec.UserRole
  - banID: string
  - note: string

Returns:
  - *Ban: Updated record
  - error: Authorization, conflict, or persistence failures
*/
func (service *Service) Archive(ctx context.Context, actorID string, actorRole sec.UserRole, banID, note string) (*Ban, error) {
	if err := service.perms.Require(ctx, actorID, actorRole, perm.KeyBanArchive); err != nil {
		return nil, err
	}

	if note == "" {
		note = "Archived"
	}
	validator := &validate.Validator{}
	validator.MaxLen("note", note, constants.MaxNotesLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	archived, err := service.repo.Archive(ctx, banID, actorID, note)
	if err != nil {
		return nil, err
	}

	service.logger.Info("ban_archived",
		slog.String("ban_id", banID),
		slog.String("actor_id", actorID),
	)
	return archived, nil
}

// # Read Operations

/*
CheckStatus answers whether a user is suspended right now.

Description: Read-time derived. An active-flagged ban whose expiry has
passed reports not-banned without any row being touched.

Parameters:
  - ctx: context.Context
  - userID: string

Returns:
  - *Status: IsBanned plus the responsible ban, if any
  - error: Database retrieval failures
*/
func (service *Service) CheckStatus(ctx context.Context, userID string) (*Status, error) {
	active, err := service.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return &Status{IsBanned: false}, nil
		}
		return nil, err
	}

	if !active.InEffect(time.Now()) {
		return &Status{IsBanned: false}, nil
	}
	return &Status{IsBanned: true, Ban: active}, nil
}

// IsBanned implements the middleware ban gate.
func (service *Service) IsBanned(ctx context.Context, userID string) (bool, error) {
	status, err := service.CheckStatus(ctx, userID)
	if err != nil {
		return false, err
	}
	return status.IsBanned, nil
}

// Get retrieves one ban record.
func (service *Service) Get(ctx context.Context, banID string) (*Ban, error) {
	return service.repo.FindByID(ctx, banID)
}

// List returns a filtered page of ban records.
func (service *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]*Ban, int, error) {
	return service.repo.List(ctx, filter, limit, offset)
}

// requireOutranks enforces the hierarchy guard against the target's
// current role.
func (service *Service) requireOutranks(ctx context.Context, actorRole sec.UserRole, targetUserID string) error {
	targetRole, err := service.directory.FindRole(ctx, targetUserID)
	if err != nil {
		return err
	}
	if !actorRole.Outranks(targetRole) {
		return apperr.Forbidden("You must outrank the target user")
	}
	return nil
}
