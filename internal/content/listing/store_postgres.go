// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

/*
Package listing (Postgres) implements the storage layer for the catalogue.

# Schema Table Mapping
  - core.listing: Compatibility reports with their approval field cluster.
*/
package listing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/compatdex/compatdex/internal/platform/apperr"
	"github.com/compatdex/compatdex/internal/platform/database/schema"
	"github.com/compatdex/compatdex/internal/platform/dberr"
	"github.com/compatdex/compatdex/internal/trust"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new Postgres implementation for listings.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// listingColumns is the canonical select list shared by every query here
// and by the moderation package's transactional reads.
var listingColumns = fmt.Sprintf(
	"%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
	schema.CoreListing.ID, schema.CoreListing.Slug, schema.CoreListing.AuthorID,
	schema.CoreListing.GameTitle, schema.CoreListing.Emulator, schema.CoreListing.Device,
	schema.CoreListing.Performance, schema.CoreListing.Notes, schema.CoreListing.Status,
	schema.CoreListing.ProcessedAt, schema.CoreListing.ProcessedByUserID,
	schema.CoreListing.ProcessedNotes, schema.CoreListing.IsVerified,
	schema.CoreListing.VerifiedByID, schema.CoreListing.CreatedAt, schema.CoreListing.UpdatedAt,
)

// ScanListing hydrates one listing row in the canonical column order.
//
// Exported for the moderation store, which locks and re-reads listings
// inside its own transactions.
func ScanListing(row pgx.Row, l *Listing) error {
	return row.Scan(
		&l.ID, &l.Slug, &l.AuthorID,
		&l.GameTitle, &l.Emulator, &l.Device,
		&l.Performance, &l.Notes, &l.Status,
		&l.ProcessedAt, &l.ProcessedByUserID,
		&l.ProcessedNotes, &l.IsVerified,
		&l.VerifiedByID, &l.CreatedAt, &l.UpdatedAt,
	)
}

// SelectColumns returns the canonical column list for cross-package
// transactional reads of core.listing.
func SelectColumns() string {
	return listingColumns
}

// # Catalogue Writes

func (repository *PostgresRepository) Insert(ctx context.Context, l *Listing) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, NOW(), NOW())
		RETURNING %s, %s`,
		schema.CoreListing.Table,
		schema.CoreListing.ID, schema.CoreListing.Slug, schema.CoreListing.AuthorID,
		schema.CoreListing.GameTitle, schema.CoreListing.Emulator, schema.CoreListing.Device,
		schema.CoreListing.Performance, schema.CoreListing.Notes, schema.CoreListing.Status,
		schema.CoreListing.IsVerified, schema.CoreListing.CreatedAt, schema.CoreListing.UpdatedAt,
		schema.CoreListing.CreatedAt, schema.CoreListing.UpdatedAt,
	)
	err := repository.pool.QueryRow(ctx, query,
		l.ID, l.Slug, l.AuthorID, l.GameTitle, l.Emulator, l.Device,
		l.Performance, l.Notes, l.Status,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "insert_listing")
	}
	return nil
}

func (repository *PostgresRepository) Verify(ctx context.Context, listingID, verifierID string, trustEntry *trust.Entry) (*Listing, error) {
	transaction, err := repository.pool.Begin(ctx)
	if err != nil {
		return nil, dberr.Wrap(err, "begin_verify_tx")
	}
	defer transaction.Rollback(ctx)

	lockQuery := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1
		FOR UPDATE`,
		listingColumns, schema.CoreListing.Table, schema.CoreListing.ID,
	)
	existing := &Listing{}
	if err := ScanListing(transaction.QueryRow(ctx, lockQuery, listingID), existing); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Listing")
		}
		return nil, dberr.Wrap(err, "lock_listing")
	}
	if existing.IsVerified {
		return nil, apperr.Conflict(apperr.CodeInvalidTransition, "Listing is already verified")
	}

	updateQuery := fmt.Sprintf(`
		UPDATE %s SET %s = TRUE, %s = $2, %s = NOW()
		WHERE %s = $1
		RETURNING %s`,
		schema.CoreListing.Table, schema.CoreListing.IsVerified,
		schema.CoreListing.VerifiedByID, schema.CoreListing.UpdatedAt,
		schema.CoreListing.ID, schema.CoreListing.UpdatedAt,
	)
	updated := *existing
	updated.IsVerified = true
	updated.VerifiedByID = &verifierID
	if err := transaction.QueryRow(ctx, updateQuery, listingID, verifierID).Scan(&updated.UpdatedAt); err != nil {
		return nil, dberr.Wrap(err, "verify_listing")
	}

	if err := trust.InsertTx(ctx, transaction, trustEntry); err != nil {
		return nil, err
	}

	if err := transaction.Commit(ctx); err != nil {
		return nil, dberr.Wrap(err, "commit_verify_tx")
	}
	return &updated, nil
}

// # Catalogue Reads

func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Listing, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1`,
		listingColumns, schema.CoreListing.Table, schema.CoreListing.ID,
	)
	return repository.findOne(ctx, query, id)
}

func (repository *PostgresRepository) FindBySlug(ctx context.Context, slug string) (*Listing, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1`,
		listingColumns, schema.CoreListing.Table, schema.CoreListing.Slug,
	)
	return repository.findOne(ctx, query, slug)
}

func (repository *PostgresRepository) findOne(ctx context.Context, query, arg string) (*Listing, error) {
	l := &Listing{}
	if err := ScanListing(repository.pool.QueryRow(ctx, query, arg), l); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Listing")
		}
		return nil, dberr.Wrap(err, "get_listing")
	}
	return l, nil
}

func (repository *PostgresRepository) List(ctx context.Context, filter Filter, limit, offset int) ([]*Listing, int, error) {
	conditions := "TRUE"
	args := []any{}
	argID := 1

	if filter.Status != "" {
		conditions += fmt.Sprintf(" AND %s = $%d", schema.CoreListing.Status, argID)
		args = append(args, filter.Status)
		argID++
	}
	if filter.AuthorID != "" {
		conditions += fmt.Sprintf(" AND %s = $%d", schema.CoreListing.AuthorID, argID)
		args = append(args, filter.AuthorID)
		argID++
	}
	if filter.Emulator != "" {
		conditions += fmt.Sprintf(" AND %s = $%d", schema.CoreListing.Emulator, argID)
		args = append(args, filter.Emulator)
		argID++
	}

	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() as total
		FROM %s
		WHERE %s
		ORDER BY %s DESC
		LIMIT $%d OFFSET $%d`,
		listingColumns, schema.CoreListing.Table, conditions,
		schema.CoreListing.CreatedAt, argID, argID+1,
	)
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_listings")
	}
	defer rows.Close()

	var listings []*Listing
	var total int
	for rows.Next() {
		l := &Listing{}
		err := rows.Scan(
			&l.ID, &l.Slug, &l.AuthorID,
			&l.GameTitle, &l.Emulator, &l.Device,
			&l.Performance, &l.Notes, &l.Status,
			&l.ProcessedAt, &l.ProcessedByUserID,
			&l.ProcessedNotes, &l.IsVerified,
			&l.VerifiedByID, &l.CreatedAt, &l.UpdatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_listing")
		}
		listings = append(listings, l)
	}

	return listings, total, nil
}

var _ Repository = (*PostgresRepository)(nil)
