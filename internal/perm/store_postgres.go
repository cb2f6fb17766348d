// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package perm

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/compatdex/compatdex/internal/audit"
	"github.com/compatdex/compatdex/internal/platform/dberr"
)

// PostgresGrantRepository implements [GrantRepository] using pgx.
type PostgresGrantRepository struct {
	db *pgxpool.Pool
}

// NewPostgresGrantRepository constructs a PostgreSQL backed grant store.
func NewPostgresGrantRepository(db *pgxpool.Pool) *PostgresGrantRepository {
	return &PostgresGrantRepository{db: db}
}

// # Grant Retrieval

/*
ListKeysByUser returns the permission keys explicitly granted to a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []string: Granted keys
  - error: Database retrieval failures
*/
func (repository *PostgresGrantRepository) ListKeysByUser(context context.Context, userID string) ([]string, error) {
	const query = `
		SELECT permissionkey
		FROM mod.permissiongrant
		WHERE userid = $1
	`
	rows, err := repository.db.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_grant_keys")
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, dberr.Wrap(err, "scan_grant_key")
		}
		keys = append(keys, key)
	}

	return keys, nil
}

/*
ListByUser returns the full grant records for a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []*Grant: Grant records
  - error: Database retrieval failures
*/
func (repository *PostgresGrantRepository) ListByUser(context context.Context, userID string) ([]*Grant, error) {
	const query = `
		SELECT userid, permissionkey, grantedbyid, createdat
		FROM mod.permissiongrant
		WHERE userid = $1
		ORDER BY createdat ASC
	`
	rows, err := repository.db.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_grants")
	}
	defer rows.Close()

	var grants []*Grant
	for rows.Next() {
		grant := &Grant{}
		if err := rows.Scan(&grant.UserID, &grant.PermissionKey, &grant.GrantedByID, &grant.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_grant")
		}
		grants = append(grants, grant)
	}

	return grants, nil
}

// # Grant Mutation

/*
Insert persists a grant and its audit entry in one transaction.

Description: ON CONFLICT DO NOTHING makes re-grants idempotent; the audit
entry is only written when a row was actually created, so the audit log
records real state changes only.

Parameters:
  - context: context.Context
  - grant: *Grant
  - auditEntry: *audit.Entry

Returns:
  - bool: true if a new grant row was created
  - error: Persistence failures
*/
func (repository *PostgresGrantRepository) Insert(context context.Context, grant *Grant, auditEntry *audit.Entry) (bool, error) {
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return false, dberr.Wrap(err, "begin_grant_tx")
	}
	defer transaction.Rollback(context)

	const query = `
		INSERT INTO mod.permissiongrant (userid, permissionkey, grantedbyid, createdat)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT DO NOTHING
	`
	result, err := transaction.Exec(context, query, grant.UserID, grant.PermissionKey, grant.GrantedByID)
	if err != nil {
		return false, dberr.Wrap(err, "insert_grant")
	}

	created := result.RowsAffected() > 0
	if created {
		if err := audit.InsertTx(context, transaction, auditEntry); err != nil {
			return false, err
		}
	}

	if err := transaction.Commit(context); err != nil {
		return false, dberr.Wrap(err, "commit_grant_tx")
	}

	return created, nil
}

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
func (repository *PostgresGrantRepository) Delete(context context.Context, userID, permissionKey string, auditEntry *audit.Entry) (bool, error) {
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return false, dberr.Wrap(err, "begin_revoke_tx")
	}
	defer transaction.Rollback(context)

	const query = `
		DELETE FROM mod.permissiongrant
		WHERE userid = $1 AND permissionkey = $2
	`
	result, err := transaction.Exec(context, query, userID, permissionKey)
	if err != nil {
		return false, dberr.Wrap(err, "delete_grant")
	}

	removed := result.RowsAffected() > 0
	if removed {
		if err := audit.InsertTx(context, transaction, auditEntry); err != nil {
			return false, err
		}
	}

	if err := transaction.Commit(context); err != nil {
		return false, dberr.Wrap(err, "commit_revoke_tx")
	}

	return removed, nil
}

var _ GrantRepository = (*PostgresGrantRepository)(nil)
