// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package perm

import (
	"context"

	"github.com/compatdex/compatdex/internal/audit"
)

// # Grant Data Access

// GrantRepository defines the data access contract for explicit permission grants.
type GrantRepository interface {

	/*
		ListKeysByUser returns the permission keys explicitly granted to a user.

		Parameters:
		  - context: context.Context
		  - userID: string (UUIDv7)

		Returns:
		  - []string: Granted permission keys (empty slice if none)
		  - error: Database retrieval failures
	*/
	ListKeysByUser(context context.Context, userID string) ([]string, error)

	/*
		ListByUser returns the full grant records for a user.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - []*Grant: Grant records
		  - error: Database retrieval failures
	*/
	ListByUser(context context.Context, userID string) ([]*Grant, error)

	/*
		Insert persists a grant and its audit entry in one transaction.

		Description: Idempotent — re-granting an existing pair is a no-op
		(reported via the bool return) and writes no audit entry.

		Parameters:
		  - context: context.Context
		  - grant: *Grant
		  - auditEntry: *audit.Entry

		Returns:
		  - bool: true if a new grant row was created
		  - error: Persistence failures
	*/
	Insert(context context.Context, grant *Grant, auditEntry *audit.Entry) (bool, error)

	/*
		Delete removes a grant and writes its audit entry in one transaction.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - permissionKey: string
		  - auditEntry: *audit.Entry

		Returns:
		  - bool: true if a grant row was actually removed
		  - error: Persistence failures
	*/
	Delete(context context.Context, userID, permissionKey string, auditEntry *audit.Entry) (bool, error)
}
