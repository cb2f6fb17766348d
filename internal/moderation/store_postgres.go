// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

/*
Package moderation (Postgres) implements the storage layer for both state
machines.

# Schema Table Mapping
  - mod.report: User-filed complaints and their review lifecycle.
  - core.listing: Approval field cluster, written only through this store.

Resolution is the one place in the system where two domain tables mutate in
a single transaction: the report row, the listing's approval cluster, the
trust ledger, and the audit log commit as one unit.
*/
package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/compatdex/compatdex/internal/audit"
	"github.com/compatdex/compatdex/internal/content/listing"
	"github.com/compatdex/compatdex/internal/platform/apperr"
	"github.com/compatdex/compatdex/internal/platform/database/schema"
	"github.com/compatdex/compatdex/internal/platform/dberr"
	"github.com/compatdex/compatdex/internal/trust"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new Postgres implementation for moderation.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// reportColumns is the canonical select list for mod.report.
var reportColumns = fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
	schema.ModReport.ID, schema.ModReport.TargetID, schema.ModReport.ReportedByID,
	schema.ModReport.Reason, schema.ModReport.Description, schema.ModReport.Status,
	schema.ModReport.ReviewedByID, schema.ModReport.ReviewedAt,
	schema.ModReport.ReviewNotes, schema.ModReport.CreatedAt,
)

// scanReport hydrates one report row in reportColumns order.
func scanReport(row pgx.Row, report *Report) error {
	return row.Scan(
		&report.ID, &report.TargetID, &report.ReportedByID,
		&report.Reason, &report.Description, &report.Status,
		&report.ReviewedByID, &report.ReviewedAt,
		&report.ReviewNotes, &report.CreatedAt,
	)
}

// # Report Machine

func (repository *PostgresRepository) InsertReport(ctx context.Context, report *Report) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING %s`,
		schema.ModReport.Table,
		schema.ModReport.ID, schema.ModReport.TargetID, schema.ModReport.ReportedByID,
		schema.ModReport.Reason, schema.ModReport.Description, schema.ModReport.Status,
		schema.ModReport.CreatedAt,
		schema.ModReport.CreatedAt,
	)
	err := repository.pool.QueryRow(ctx, query,
		report.ID, report.TargetID, report.ReportedByID,
		report.Reason, report.Description, report.Status,
	).Scan(&report.CreatedAt)
	if err != nil {
		if dberr.IsUniqueViolation(err) && dberr.ConstraintName(err) == schema.UniqueReporterTargetConstraint {
			return apperr.Conflict(apperr.CodeDuplicateReport, "You have already reported this listing")
		}
		return dberr.Wrap(err, "insert_report")
	}
	return nil
}

func (repository *PostgresRepository) FindReportByID(ctx context.Context, id string) (*Report, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1`,
		reportColumns, schema.ModReport.Table, schema.ModReport.ID,
	)
	report := &Report{}
	if err := scanReport(repository.pool.QueryRow(ctx, query, id), report); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Report")
		}
		return nil, dberr.Wrap(err, "get_report")
	}
	return report, nil
}

func (repository *PostgresRepository) ListReports(ctx context.Context, filter ReportFilter, limit, offset int) ([]*Report, int, error) {
	conditions := "TRUE"
	args := []any{}
	argID := 1

	if filter.Status != "" {
		conditions += fmt.Sprintf(" AND %s = $%d", schema.ModReport.Status, argID)
		args = append(args, filter.Status)
		argID++
	}
	if filter.TargetID != "" {
		conditions += fmt.Sprintf(" AND %s = $%d", schema.ModReport.TargetID, argID)
		args = append(args, filter.TargetID)
		argID++
	}

	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() as total
		FROM %s
		WHERE %s
		ORDER BY %s DESC
		LIMIT $%d OFFSET $%d`,
		reportColumns, schema.ModReport.Table, conditions,
		schema.ModReport.CreatedAt, argID, argID+1,
	)
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_reports")
	}
	defer rows.Close()

	var reports []*Report
	var total int
	for rows.Next() {
		report := &Report{}
		err := rows.Scan(
			&report.ID, &report.TargetID, &report.ReportedByID,
			&report.Reason, &report.Description, &report.Status,
			&report.ReviewedByID, &report.ReviewedAt,
			&report.ReviewNotes, &report.CreatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_report")
		}
		reports = append(reports, report)
	}

	return reports, total, nil
}

func (repository *PostgresRepository) StartReview(ctx context.Context, reportID, reviewerID string) (*Report, error) {
	transaction, err := repository.pool.Begin(ctx)
	if err != nil {
		return nil, dberr.Wrap(err, "begin_review_tx")
	}
	defer transaction.Rollback(ctx)

	existing, err := lockReport(ctx, transaction, reportID)
	if err != nil {
		return nil, err
	}
	if existing.Status.IsTerminal() {
		return nil, apperr.Conflict(apperr.CodeAlreadyResolved, "Report is already settled")
	}
	if !existing.Status.CanTransitionTo(ReportUnderReview) {
		return nil, apperr.Conflict(apperr.CodeInvalidTransition,
			fmt.Sprintf("Cannot start review from %s", existing.Status))
	}

	updated := *existing
	updated.Status = ReportUnderReview
	updated.ReviewedByID = &reviewerID

	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3
		WHERE %s = $1`,
		schema.ModReport.Table, schema.ModReport.Status, schema.ModReport.ReviewedByID,
		schema.ModReport.ID,
	)
	if _, err := transaction.Exec(ctx, query, reportID, ReportUnderReview, reviewerID); err != nil {
		return nil, dberr.Wrap(err, "start_review")
	}

	if err := transaction.Commit(ctx); err != nil {
		return nil, dberr.Wrap(err, "commit_review_tx")
	}
	return &updated, nil
}

func (repository *PostgresRepository) ResolveReport(ctx context.Context, reportID, reviewerID string, outcome Outcome, notes *string, trustEntry *trust.Entry) (*Report, error) {
	transaction, err := repository.pool.Begin(ctx)
	if err != nil {
		return nil, dberr.Wrap(err, "begin_resolve_tx")
	}
	defer transaction.Rollback(ctx)

	existing, err := lockReport(ctx, transaction, reportID)
	if err != nil {
		return nil, err
	}
	if existing.Status.IsTerminal() {
		return nil, apperr.Conflict(apperr.CodeAlreadyResolved, "Report is already settled")
	}

	now := time.Now()
	updated := *existing
	updated.Status = outcome
	updated.ReviewedByID = &reviewerID
	updated.ReviewedAt = &now
	updated.ReviewNotes = notes

	reportQuery := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = NOW(), %s = $4
		WHERE %s = $1
		RETURNING %s`,
		schema.ModReport.Table, schema.ModReport.Status, schema.ModReport.ReviewedByID,
		schema.ModReport.ReviewedAt, schema.ModReport.ReviewNotes,
		schema.ModReport.ID, schema.ModReport.ReviewedAt,
	)
	err = transaction.QueryRow(ctx, reportQuery, reportID, outcome, reviewerID, notes).
		Scan(&updated.ReviewedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "resolve_report")
	}

	changes := audit.Changes{
		"status": {Before: string(existing.Status), After: string(outcome)},
	}

	// A confirmed report takes the listing down with it, once.
	if outcome == ReportResolved {
		target, err := lockListing(ctx, transaction, existing.TargetID)
		if err != nil {
			return nil, err
		}
		if target.Status == listing.StatusApproved {
			processedNotes := fmt.Sprintf("Rejected on resolution of report %s (%s)", reportID, existing.Reason)
			rejectQuery := fmt.Sprintf(`
				UPDATE %s SET %s = $2, %s = NOW(), %s = $3, %s = $4, %s = NOW()
				WHERE %s = $1`,
				schema.CoreListing.Table, schema.CoreListing.Status,
				schema.CoreListing.ProcessedAt, schema.CoreListing.ProcessedByUserID,
				schema.CoreListing.ProcessedNotes, schema.CoreListing.UpdatedAt,
				schema.CoreListing.ID,
			)
			_, err := transaction.Exec(ctx, rejectQuery,
				existing.TargetID, listing.StatusRejected, reviewerID, processedNotes,
			)
			if err != nil {
				return nil, dberr.Wrap(err, "reject_listing_on_resolve")
			}
			changes["listing_status"] = audit.Change{
				Before: string(listing.StatusApproved),
				After:  string(listing.StatusRejected),
			}
		}
	}

	if err := trust.InsertTx(ctx, transaction, trustEntry); err != nil {
		return nil, err
	}

	entry := audit.NewEntry(reviewerID, audit.ActionReportResolved, audit.EntityReport, reportID).
		WithTarget(existing.ReportedByID).
		WithMetadata(changes)
	if err := audit.InsertTx(ctx, transaction, entry); err != nil {
		return nil, err
	}

	if err := transaction.Commit(ctx); err != nil {
		return nil, dberr.Wrap(err, "commit_resolve_tx")
	}
	return &updated, nil
}

// # Content Machine

func (repository *PostgresRepository) ApproveListing(ctx context.Context, listingID, actorID string, notes *string, trustEntry *trust.Entry) (*listing.Listing, error) {
	return repository.processListing(ctx, listingID, actorID, listing.StatusApproved, notes, trustEntry)
}

func (repository *PostgresRepository) RejectListing(ctx context.Context, listingID, actorID string, notes *string, trustEntry *trust.Entry) (*listing.Listing, error) {
	return repository.processListing(ctx, listingID, actorID, listing.StatusRejected, notes, trustEntry)
}

// processListing runs the normal approve/reject path under the listing's
// row lock.
func (repository *PostgresRepository) processListing(ctx context.Context, listingID, actorID string, newStatus listing.ApprovalStatus, notes *string, trustEntry *trust.Entry) (*listing.Listing, error) {
	transaction, err := repository.pool.Begin(ctx)
	if err != nil {
		return nil, dberr.Wrap(err, "begin_process_tx")
	}
	defer transaction.Rollback(ctx)

	existing, err := lockListing(ctx, transaction, listingID)
	if err != nil {
		return nil, err
	}
	if !existing.Status.CanTransitionTo(newStatus) {
		return nil, apperr.Conflict(apperr.CodeInvalidTransition,
			fmt.Sprintf("Cannot move listing from %s to %s", existing.Status, newStatus))
	}

	now := time.Now()
	updated := *existing
	updated.Status = newStatus
	updated.ProcessedAt = &now
	updated.ProcessedByUserID = &actorID
	updated.ProcessedNotes = notes

	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = NOW(), %s = $3, %s = $4, %s = NOW()
		WHERE %s = $1
		RETURNING %s, %s`,
		schema.CoreListing.Table, schema.CoreListing.Status,
		schema.CoreListing.ProcessedAt, schema.CoreListing.ProcessedByUserID,
		schema.CoreListing.ProcessedNotes, schema.CoreListing.UpdatedAt,
		schema.CoreListing.ID, schema.CoreListing.ProcessedAt, schema.CoreListing.UpdatedAt,
	)
	err = transaction.QueryRow(ctx, query, listingID, newStatus, actorID, notes).
		Scan(&updated.ProcessedAt, &updated.UpdatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "process_listing")
	}

	if err := trust.InsertTx(ctx, transaction, trustEntry); err != nil {
		return nil, err
	}

	if err := transaction.Commit(ctx); err != nil {
		return nil, dberr.Wrap(err, "commit_process_tx")
	}
	return &updated, nil
}

func (repository *PostgresRepository) OverrideListingStatus(ctx context.Context, listingID, actorID string, newStatus listing.ApprovalStatus, notes string) (*listing.Listing, error) {
	transaction, err := repository.pool.Begin(ctx)
	if err != nil {
		return nil, dberr.Wrap(err, "begin_override_tx")
	}
	defer transaction.Rollback(ctx)

	existing, err := lockListing(ctx, transaction, listingID)
	if err != nil {
		return nil, err
	}
	if existing.Status == newStatus {
		return nil, apperr.Conflict(apperr.CodeInvalidTransition,
			fmt.Sprintf("Listing is already %s", newStatus))
	}

	now := time.Now()
	updated := *existing
	updated.Status = newStatus
	updated.ProcessedAt = &now
	updated.ProcessedByUserID = &actorID
	updated.ProcessedNotes = &notes

	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = NOW(), %s = $3, %s = $4, %s = NOW()
		WHERE %s = $1
		RETURNING %s, %s`,
		schema.CoreListing.Table, schema.CoreListing.Status,
		schema.CoreListing.ProcessedAt, schema.CoreListing.ProcessedByUserID,
		schema.CoreListing.ProcessedNotes, schema.CoreListing.UpdatedAt,
		schema.CoreListing.ID, schema.CoreListing.ProcessedAt, schema.CoreListing.UpdatedAt,
	)
	err = transaction.QueryRow(ctx, query, listingID, newStatus, actorID, notes).
		Scan(&updated.ProcessedAt, &updated.UpdatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "override_listing")
	}

	entry := audit.NewEntry(actorID, audit.ActionStatusOverridden, audit.EntityListing, listingID).
		WithTarget(existing.AuthorID).
		WithMetadata(audit.Changes{
			"status": {Before: string(existing.Status), After: string(newStatus)},
		})
	if err := audit.InsertTx(ctx, transaction, entry); err != nil {
		return nil, err
	}

	if err := transaction.Commit(ctx); err != nil {
		return nil, dberr.Wrap(err, "commit_override_tx")
	}
	return &updated, nil
}

// # Row Locks

func lockReport(ctx context.Context, transaction pgx.Tx, reportID string) (*Report, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1
		FOR UPDATE`,
		reportColumns, schema.ModReport.Table, schema.ModReport.ID,
	)
	report := &Report{}
	if err := scanReport(transaction.QueryRow(ctx, query, reportID), report); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Report")
		}
		return nil, dberr.Wrap(err, "lock_report")
	}
	return report, nil
}

func lockListing(ctx context.Context, transaction pgx.Tx, listingID string) (*listing.Listing, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1
		FOR UPDATE`,
		listing.SelectColumns(), schema.CoreListing.Table, schema.CoreListing.ID,
	)
	target := &listing.Listing{}
	if err := listing.ScanListing(transaction.QueryRow(ctx, query, listingID), target); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Listing")
		}
		return nil, dberr.Wrap(err, "lock_listing")
	}
	return target, nil
}

var _ Repository = (*PostgresRepository)(nil)
