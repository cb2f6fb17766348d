// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package trust

import (
	"context"
	"time"
)

// # Ledger Data Access

// Repository defines the data access contract for the trust ledger.
//
// The contract is intentionally insert-and-aggregate only: there is no
// update or delete operation, matching the append-only table.
type Repository interface {

	/*
		Insert appends one ledger entry in its own transaction.

		Used for standalone events. Events coupled to another mutation
		(report resolution, ban issuance) go through [InsertTx] inside the
		owning repository's transaction instead.

		Parameters:
		  - context: context.Context
		  - entry: *Entry

		Returns:
		  - error: Persistence failures
	*/
	Insert(context context.Context, entry *Entry) error

	/*
		SumByUser aggregates the user's score by replaying the ledger.

		Parameters:
		  - context: context.Context
		  - userID: string (UUIDv7)

		Returns:
		  - int: SUM(weight) over all entries for the user (0 if none)
		  - error: Database retrieval failures
	*/
	SumByUser(context context.Context, userID string) (int, error)

	/*
		ListByUser returns the user's ledger history, newest first.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - limit, offset: int

		Returns:
		  - []*Entry: Slice of entries
		  - int: Total record count
		  - error: Database retrieval failures
	*/
	ListByUser(context context.Context, userID string, limit, offset int) ([]*Entry, int, error)
}

// # Score Cache

// ScoreCache is the optional materialized-score index over the ledger.
//
// # Invariant
//
// The cache is never written except from a fresh ledger aggregate and is
// invalidated on every insert. A cold or unavailable cache only costs a
// SUM query; it can never make a score diverge from the ledger.
type ScoreCache interface {

	/*
		Get returns the cached score for a user.

		Returns:
		  - int: Cached score
		  - bool: false on cache miss
		  - error: Connectivity failures (treated as a miss by the service)
	*/
	Get(context context.Context, userID string) (int, bool, error)

	/*
		Set stores a freshly aggregated score with a TTL.
	*/
	Set(context context.Context, userID string, score int, ttl time.Duration) error

	/*
		Invalidate drops the cached score after a ledger insert.
	*/
	Invalidate(context context.Context, userID string) error
}
