// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/compatdex/compatdex/internal/platform/dberr"
)

// # Transactional Writer

/*
InsertTx appends one audit entry inside the caller's open transaction.

Description: This is the only write path into system.auditlog. Sibling
repositories (ban, moderation, perm, users) call it from within their own
pgx transactions so that a failed audit insert rolls back the privileged
action it was supposed to record.

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
		return fmt.Errorf("audit: failed to serialize metadata: %w", err)
	}

	const query = `
		INSERT INTO system.auditlog (
			id, actorid, action, entitytype, entityid, targetuserid, metadata, createdat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING createdat
	`
	err = tx.QueryRow(context, query,
		entry.ID, entry.ActorID, entry.Action, entry.EntityType, entry.EntityID,
		entry.TargetUserID, metadataJSON,
	).Scan(&entry.CreatedAt)

	return dberr.Wrap(err, "insert_audit_entry")
}

// PostgresRepository implements the read-only [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed audit store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// # Audit Retrieval

/*
List returns a filtered, newest-first page of audit entries.

Description: Uses COUNT(*) OVER() for total metadata in a single round trip.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit: int
  - offset: int

Returns:
  - []*Entry: Slice of matching entries
  - int: Total record count
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Entry, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT
			id, actorid, action, entitytype, entityid, targetuserid, metadata, createdat,
			COUNT(*) OVER() as total
		FROM system.auditlog
		WHERE TRUE
	`)

	args := []any{}
	argID := 1

	if filter.ActorID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND actorid = $%d", argID))
		args = append(args, filter.ActorID)
		argID++
	}

	if filter.TargetUserID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND targetuserid = $%d", argID))
		args = append(args, filter.TargetUserID)
		argID++
	}

	if filter.EntityType != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND entitytype = $%d", argID))
		args = append(args, filter.EntityType)
		argID++
	}

	if filter.EntityID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND entityid = $%d", argID))
		args = append(args, filter.EntityID)
		argID++
	}

	if filter.Action != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND action = $%d", argID))
		args = append(args, filter.Action)
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY createdat DESC LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.db.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_audit_entries")
	}
	defer rows.Close()

	var entries []*Entry
	var total int
	for rows.Next() {
		entry := &Entry{}
		var metadataJSON []byte
		err := rows.Scan(
			&entry.ID, &entry.ActorID, &entry.Action, &entry.EntityType, &entry.EntityID,
			&entry.TargetUserID, &metadataJSON, &entry.CreatedAt, &total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_audit_entry")
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
				return nil, 0, fmt.Errorf("audit: corrupt metadata on entry %s: %w", entry.ID, err)
			}
		}
		entries = append(entries, entry)
	}

	return entries, total, nil
}

/*
FindByID retrieves a single audit entry by its primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Entry: Hydrated entry
  - error: ErrNotFound if missing
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Entry, error) {
	const query = `
		SELECT id, actorid, action, entitytype, entityid, targetuserid, metadata, createdat
		FROM system.auditlog
		WHERE id = $1
	`
	entry := &Entry{}
	var metadataJSON []byte
	err := repository.db.QueryRow(context, query, id).Scan(
		&entry.ID, &entry.ActorID, &entry.Action, &entry.EntityType, &entry.EntityID,
		&entry.TargetUserID, &metadataJSON, &entry.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_audit_entry")
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &entry.Metadata); err != nil {
			return nil, fmt.Errorf("audit: corrupt metadata on entry %s: %w", entry.ID, err)
		}
	}
	return entry, nil
}
