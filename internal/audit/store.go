// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package audit

import "context"

// # Audit Data Access

// Repository defines the read-only data access contract for the audit log.
//
// There is deliberately no Insert method here: writes happen exclusively via
// [InsertTx] inside the transaction of the privileged action being recorded.
type Repository interface {

	/*
		List returns a filtered, newest-first slice of audit entries and the
		total count.

		Parameters:
		  - context: context.Context
		  - filter: Filter (actor, entity, action)
		  - limit: int
		  - offset: int

		Returns:
		  - []*Entry: Slice of matching entries
		  - int: Total record count
		  - error: Database retrieval failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Entry, int, error)

	/*
		FindByID retrieves a single audit entry.

		Parameters:
		  - context: context.Context
		  - id: string (UUIDv7)

		Returns:
		  - *Entry: Hydrated entry
		  - error: ErrNotFound if missing
	*/
	FindByID(context context.Context, id string) (*Entry, error)
}
