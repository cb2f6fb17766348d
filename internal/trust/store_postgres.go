// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package trust

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/compatdex/compatdex/internal/platform/dberr"
)

// # Transactional Writer

/*
InsertTx appends one ledger entry inside the caller's open transaction.

Description: Lets the ban and moderation repositories couple a trust event to
the mutation that caused it — resolving a report and crediting the reporter
commit or roll back as one unit. If this insert fails, the caller's whole
transaction must fail.

Parameters:
  - context: context.Context
  - tx: pgx.Tx (The caller's open transaction)
  - entry: *Entry

Returns:
  - error: Serialization or persistence failures
*/
func InsertTx(context context.Context, tx pgx.Tx, entry *Entry) error {
	metadataJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("trust: failed to serialize metadata: %w", err)
	}

	const query = `
		INSERT INTO mod.trustledger (
			id, userid, action, weight, targetuserid, metadata, createdat
		) VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING createdat
	`
	err = tx.QueryRow(context, query,
		entry.ID, entry.UserID, entry.Action, entry.Weight, entry.TargetUserID, metadataJSON,
	).Scan(&entry.CreatedAt)

	return dberr.Wrap(err, "insert_trust_entry")
}

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed trust ledger store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// # Ledger Writes

/*
Insert appends one ledger entry in its own short transaction.

Parameters:
  - context: context.Context
  - entry: *Entry

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Insert(context context.Context, entry *Entry) error {
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_trust_insert_tx")
	}
	defer transaction.Rollback(context)

	if err := InsertTx(context, transaction, entry); err != nil {
		return err
	}

	return transaction.Commit(context)
}

// # Ledger Aggregation

/*
SumByUser replays the ledger to derive the user's current score.

Description: COALESCE collapses "no entries" into score 0 rather than NULL.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - int: SUM(weight) for the user
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) SumByUser(context context.Context, userID string) (int, error) {
	const query = `
		SELECT COALESCE(SUM(weight), 0)
		FROM mod.trustledger
		WHERE userid = $1
	`
	var score int
	if err := repository.db.QueryRow(context, query, userID).Scan(&score); err != nil {
		return 0, dberr.Wrap(err, "sum_trust_score")
	}
	return score, nil
}

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
func (repository *PostgresRepository) ListByUser(context context.Context, userID string, limit, offset int) ([]*Entry, int, error) {
	const query = `
		SELECT
			id, userid, action, weight, targetuserid, metadata, createdat,
			COUNT(*) OVER() as total
		FROM mod.trustledger
		WHERE userid = $1
		ORDER BY createdat DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := repository.db.Query(context, query, userID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_trust_entries")
	}
	defer rows.Close()

	var entries []*Entry
	var total int
	for rows.Next() {
		entry := &Entry{}
		var metadataJSON []byte
		err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.Action, &entry.Weight,
			&entry.TargetUserID, &metadataJSON, &entry.CreatedAt, &total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_trust_entry")
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
				return nil, 0, fmt.Errorf("trust: corrupt metadata on entry %s: %w", entry.ID, err)
			}
		}
		entries = append(entries, entry)
	}

	return entries, total, nil
}

// ensure PostgresRepository keeps satisfying the contract as it evolves.
var _ Repository = (*PostgresRepository)(nil)
