// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package listing

import (
	"context"

	"github.com/compatdex/compatdex/internal/trust"
)

// # Data Access

// Repository defines the data access contract for listings.
//
// The approval status cluster is deliberately absent from this interface:
// status changes go through the moderation package's transactional store,
// which writes core.listing only as part of its state machine.
type Repository interface {

	/*
		Insert persists a new PENDING listing.

		Parameters:
		  - context: context.Context
		  - listing: *Listing (ID, Slug, AuthorID and content fields set)

		Returns:
		  - error: Persistence failures
	*/
	Insert(context context.Context, listing *Listing) error

	/*
		FindByID retrieves a single listing.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Listing: Hydrated record
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*Listing, error)

	/*
		FindBySlug retrieves a single listing by its URL slug.

		Parameters:
		  - context: context.Context
		  - slug: string

		Returns:
		  - *Listing: Hydrated record
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindBySlug(context context.Context, slug string) (*Listing, error)

	/*
		List returns a filtered, newest-first page of listings.

		Parameters:
		  - context: context.Context
		  - filter: Filter
		  - limit, offset: int

		Returns:
		  - []*Listing: Slice of records
		  - int: Total record count
		  - error: Database retrieval failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Listing, int, error)

	/*
		Verify marks a listing developer-verified and credits its author.

		Description: Row-locked; a listing that is already verified is a
		typed conflict. The LISTING_DEVELOPER_VERIFIED trust entry commits
		with the flag in one transaction.

		Parameters:
		  - context: context.Context
		  - listingID: string
		  - verifierID: string
		  - trustEntry: *trust.Entry

		Returns:
		  - *Listing: Updated record
		  - error: apperr CodeInvalidTransition, apperr.NotFound, or persistence failures
	*/
	Verify(context context.Context, listingID, verifierID string, trustEntry *trust.Entry) (*Listing, error)
}
