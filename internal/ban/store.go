// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package ban

import (
	"context"

	"github.com/compatdex/compatdex/internal/trust"
)

// # Search & Filtering

// Filter holds parameters for listing ban records.
type Filter struct {
	UserID          string
	IncludeArchived bool
}

// # Data Access

// Repository defines the data access contract for ban records.
//
// Mutating methods own their transactions: each re-reads the row under a
// lock, re-validates the lifecycle precondition, applies the change, and
// writes the audit entry (plus any trust ledger entry) before committing.
// Precondition failures surface as typed conflicts, never as silent no-ops.
type Repository interface {

	/*
		Create inserts a new active ban for a user.

		Description: Re-validates "no active, unexpired ban" under a row lock
		inside its own transaction, deactivates any stale expired rows, and
		writes the audit entry and the BAN_ISSUED trust entry atomically with
		the insert. A losing race surfaces as ALREADY_BANNED.

		Parameters:
		  - context: context.Context
		  - ban: *Ban (ID, UserID, BannedByID, Reason, Notes, ExpiresAt set)
		  - trustEntry: *trust.Entry

		Returns:
		  - error: apperr CodeAlreadyBanned conflict, or persistence failures
	*/
	Create(context context.Context, ban *Ban, trustEntry *trust.Entry) error

	/*
		Update edits the mutable fields of an active ban.

		Description: Requires the derived state to still be ACTIVE under the
		row lock. Writes a before/after field diff to the audit log in the
		same transaction.

		Parameters:
		  - context: context.Context
		  - banID: string
		  - actorID: string
		  - input: UpdateInput

		Returns:
		  - *Ban: Updated record
		  - error: apperr CodeInvalidTransition, apperr.NotFound, or persistence failures
	*/
	Update(context context.Context, banID, actorID string, input UpdateInput) (*Ban, error)

	/*
		Lift explicitly deactivates an active ban.

		Description: Requires derived state ACTIVE; stamps unbannedat and
		unbannedbyid, and writes the audit entry plus the BAN_LIFTED trust
		entry atomically.

		Parameters:
		  - context: context.Context
		  - banID: string
		  - actorID: string
		  - notes: *string
		  - trustEntry: *trust.Entry

		Returns:
		  - *Ban: Updated record
		  - error: apperr CodeInvalidTransition, apperr.NotFound, or persistence failures
	*/
	Lift(context context.Context, banID, actorID string, notes *string, trustEntry *trust.Entry) (*Ban, error)

	/*
		Archive soft-deletes a ban record.

		Description: Forces isactive=false, marks the row archived, and
		appends the archive note to any existing notes. The row is never
		physically deleted.

		Parameters:
		  - context: context.Context
		  - banID: string
		  - actorID: string
		  - note: string

		Returns:
		  - *Ban: Updated record
		  - error: apperr CodeInvalidTransition if already archived, or persistence failures
	*/
	Archive(context context.Context, banID, actorID, note string) (*Ban, error)

	/*
		FindByID retrieves a single ban record.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Ban: Hydrated record
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*Ban, error)

	/*
		FindActiveByUser retrieves the user's current active-flagged ban.

		Description: Expiry is not evaluated here; callers derive it via
		[Ban.State]. Returns apperr.NotFound when no active-flagged row
		exists.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - *Ban: Hydrated record
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindActiveByUser(context context.Context, userID string) (*Ban, error)

	/*
		List returns a filtered, newest-first page of ban records.

		Parameters:
		  - context: context.Context
		  - filter: Filter
		  - limit, offset: int

		Returns:
		  - []*Ban: Slice of records
		  - int: Total record count
		  - error: Database retrieval failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Ban, int, error)
}
