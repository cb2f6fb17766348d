// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package auth

import (
	"context"
	"time"

	"github.com/compatdex/compatdex/internal/platform/sec"
)

// # Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		Create persists a new user account.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: apperr CONFLICT on username/email collision, or persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		FindByID retrieves a user by primary key.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated record
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail retrieves a user by email address.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated record
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByUsername retrieves a user by username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *User: Hydrated record
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		FindRole returns a user's current role.

		Description: The authoritative read used by role-sensitive mutations;
		never served from JWT claims.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - sec.UserRole: Current role
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindRole(context context.Context, userID string) (sec.UserRole, error)

	/*
		UpdateLastLogin stamps a successful authentication.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	UpdateLastLogin(context context.Context, userID string) error

	/*
		UpdateRole changes a user's role and audits the change.

		Description: Locks the row, refuses a no-op change, and writes the
		before/after audit entry in the same transaction.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newRole: sec.UserRole
		  - actorID: string

		Returns:
		  - *User: Updated record
		  - error: apperr CodeInvalidTransition if the role is unchanged, or persistence failures
	*/
	UpdateRole(context context.Context, userID string, newRole sec.UserRole, actorID string) (*User, error)
}

// SessionRepository stores refresh-token sessions keyed by token hash.
//
// Entries expire on their own in Redis; revocation is just deletion.
type SessionRepository interface {

	/*
		Set stores a session token hash with its user and TTL.

		Parameters:
		  - context: context.Context
		  - tokenHash: string
		  - userID: string
		  - ttl: time.Duration

		Returns:
		  - error: Execution errors
	*/
	Set(context context.Context, tokenHash, userID string, ttl time.Duration) error

	/*
		Get resolves a token hash to its user ID.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - string: Owning user ID
		  - error: apperr.NotFound if absent or expired, or connectivity errors
	*/
	Get(context context.Context, tokenHash string) (string, error)

	/*
		Delete revokes a session.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - error: Deletion failures
	*/
	Delete(context context.Context, tokenHash string) error
}
