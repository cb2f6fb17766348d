// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package moderation

import (
	"context"

	"github.com/compatdex/compatdex/internal/content/listing"
	"github.com/compatdex/compatdex/internal/trust"
)

// # Data Access

// Repository defines the data access contract for both state machines.
//
// Mutating methods own their transactions and re-validate state machine
// preconditions under row locks; racing losers receive typed conflicts.
type Repository interface {

	/*
		InsertReport persists a new PENDING report.

		Description: The composite unique index on (reporter, target) turns
		a duplicate into a DUPLICATE_REPORT conflict.

		Parameters:
		  - context: context.Context
		  - report: *Report

		Returns:
		  - error: apperr CodeDuplicateReport conflict, or persistence failures
	*/
	InsertReport(context context.Context, report *Report) error

	/*
		FindReportByID retrieves a single report.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Report: Hydrated record
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindReportByID(context context.Context, id string) (*Report, error)

	/*
		ListReports returns a filtered, newest-first page of reports.

		Parameters:
		  - context: context.Context
		  - filter: ReportFilter
		  - limit, offset: int

		Returns:
		  - []*Report: Slice of records
		  - int: Total record count
		  - error: Database retrieval failures
	*/
	ListReports(context context.Context, filter ReportFilter, limit, offset int) ([]*Report, int, error)

	/*
		StartReview moves a PENDING report to UNDER_REVIEW.

		Parameters:
		  - context: context.Context
		  - reportID: string
		  - reviewerID: string

		Returns:
		  - *Report: Updated record
		  - error: apperr CodeAlreadyResolved or CodeInvalidTransition conflicts
	*/
	StartReview(context context.Context, reportID, reviewerID string) (*Report, error)

	/*
		ResolveReport settles a report in one atomic unit of work.

		Description: Under the report row lock: stamps status, reviewer, and
		notes; on RESOLVED, flips the target listing APPROVED→REJECTED with
		processednotes referencing the report; writes the reporter's trust
		entry and the audit entry. A concurrent second resolver fails with
		ALREADY_RESOLVED and produces no ledger row.

		Parameters:
		  - context: context.Context
		  - reportID: string
		  - reviewerID: string
		  - outcome: Outcome (RESOLVED or DISMISSED)
		  - notes: *string
		  - trustEntry: *trust.Entry (reporter credit or debit)

		Returns:
		  - *Report: Updated record
		  - error: apperr CodeAlreadyResolved conflict, or persistence failures
	*/
	ResolveReport(context context.Context, reportID, reviewerID string, outcome Outcome, notes *string, trustEntry *trust.Entry) (*Report, error)

	/*
		ApproveListing moves a PENDING listing to APPROVED.

		Description: Stamps the processed cluster and credits the author's
		LISTING_APPROVED trust entry in the same transaction.

		Parameters:
		  - context: context.Context
		  - listingID: string
		  - actorID: string
		  - notes: *string
		  - trustEntry: *trust.Entry

		Returns:
		  - *listing.Listing: Updated record
		  - error: apperr CodeInvalidTransition conflict, or persistence failures
	*/
	ApproveListing(context context.Context, listingID, actorID string, notes *string, trustEntry *trust.Entry) (*listing.Listing, error)

	/*
		RejectListing moves a PENDING listing to REJECTED.

		Parameters:
		  - context: context.Context
		  - listingID: string
		  - actorID: string
		  - notes: *string
		  - trustEntry: *trust.Entry

		Returns:
		  - *listing.Listing: Updated record
		  - error: apperr CodeInvalidTransition conflict, or persistence failures
	*/
	RejectListing(context context.Context, listingID, actorID string, notes *string, trustEntry *trust.Entry) (*listing.Listing, error)

	/*
		OverrideListingStatus force-moves a listing to any status.

		Description: The only exit from a terminal state. Writes a
		before/after audit entry in the same transaction; emits no trust
		entries.

		Parameters:
		  - context: context.Context
		  - listingID: string
		  - actorID: string
		  - newStatus: listing.ApprovalStatus
		  - notes: string

		Returns:
		  - *listing.Listing: Updated record
		  - error: apperr CodeInvalidTransition if the status is unchanged, or persistence failures
	*/
	OverrideListingStatus(context context.Context, listingID, actorID string, newStatus listing.ApprovalStatus, notes string) (*listing.Listing, error)
}
