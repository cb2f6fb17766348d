// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

/*
Package ban (Postgres) implements the storage layer for suspension records.

# Schema Table Mapping
  - mod.ban: Suspension records, soft-deleted via the archive flag.

Mutations run under SELECT ... FOR UPDATE so lifecycle preconditions are
re-validated against the committed row, not against whatever the caller read
in an earlier request. The partial unique index on (userid) WHERE isactive
backstops the create race: the losing transaction gets a typed
ALREADY_BANNED conflict instead of a second active ban row.
*/
package ban

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/compatdex/compatdex/internal/audit"
	"github.com/compatdex/compatdex/internal/platform/apperr"
	"github.com/compatdex/compatdex/internal/platform/database/schema"
	"github.com/compatdex/compatdex/internal/platform/dberr"
	"github.com/compatdex/compatdex/internal/trust"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new Postgres implementation for ban records.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// banColumns is the canonical select list, kept in one place so every
// query scans in the same order.
var banColumns = fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
	schema.ModBan.ID, schema.ModBan.UserID, schema.ModBan.BannedByID,
	schema.ModBan.Reason, schema.ModBan.Notes, schema.ModBan.IsActive,
	schema.ModBan.IsArchived, schema.ModBan.ExpiresAt, schema.ModBan.UnbannedAt,
	schema.ModBan.UnbannedByID, schema.ModBan.CreatedAt, schema.ModBan.UpdatedAt,
)

// scanBan hydrates one ban row in banColumns order.
func scanBan(row pgx.Row, ban *Ban) error {
	return row.Scan(
		&ban.ID, &ban.UserID, &ban.BannedByID,
		&ban.Reason, &ban.Notes, &ban.IsActive,
		&ban.IsArchived, &ban.ExpiresAt, &ban.UnbannedAt,
		&ban.UnbannedByID, &ban.CreatedAt, &ban.UpdatedAt,
	)
}

// # Lifecycle Mutations

func (repository *PostgresRepository) Create(ctx context.Context, ban *Ban, trustEntry *trust.Entry) error {
	transaction, err := repository.pool.Begin(ctx)
	if err != nil {
		return dberr.Wrap(err, "begin_ban_create_tx")
	}
	defer transaction.Rollback(ctx)

	// Lock every active-flagged row for the target. An unexpired one is a
	// real conflict; expired ones are stale flags left by passive expiry
	// and get reconciled here so the unique index admits the new ban.
	lockQuery := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s
		FOR UPDATE`,
		banColumns, schema.ModBan.Table, schema.ModBan.UserID, schema.ModBan.IsActive,
	)
	rows, err := transaction.Query(ctx, lockQuery, ban.UserID)
	if err != nil {
		return dberr.Wrap(err, "lock_active_bans")
	}

	now := time.Now()
	var staleIDs []string
	for rows.Next() {
		existing := &Ban{}
		if err := scanBan(rows, existing); err != nil {
			rows.Close()
			return dberr.Wrap(err, "scan_active_ban")
		}
		if existing.InEffect(now) {
			rows.Close()
			return apperr.Conflict(apperr.CodeAlreadyBanned, "User already has an active ban")
		}
		staleIDs = append(staleIDs, existing.ID)
	}
	rows.Close()

	if len(staleIDs) > 0 {
		reconcileQuery := fmt.Sprintf(`
			UPDATE %s SET %s = FALSE, %s = NOW()
			WHERE %s = ANY($1)`,
			schema.ModBan.Table, schema.ModBan.IsActive, schema.ModBan.UpdatedAt,
			schema.ModBan.ID,
		)
		if _, err := transaction.Exec(ctx, reconcileQuery, staleIDs); err != nil {
			return dberr.Wrap(err, "reconcile_expired_bans")
		}
	}

	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, TRUE, FALSE, $6, NOW(), NOW())
		RETURNING %s, %s`,
		schema.ModBan.Table,
		schema.ModBan.ID, schema.ModBan.UserID, schema.ModBan.BannedByID,
		schema.ModBan.Reason, schema.ModBan.Notes, schema.ModBan.IsActive,
		schema.ModBan.IsArchived, schema.ModBan.ExpiresAt,
		schema.ModBan.CreatedAt, schema.ModBan.UpdatedAt,
		schema.ModBan.CreatedAt, schema.ModBan.UpdatedAt,
	)
	err = transaction.QueryRow(ctx, insertQuery,
		ban.ID, ban.UserID, ban.BannedByID, ban.Reason, ban.Notes, ban.ExpiresAt,
	).Scan(&ban.CreatedAt, &ban.UpdatedAt)
	if err != nil {
		if dberr.IsUniqueViolation(err) && dberr.ConstraintName(err) == schema.UniqueActiveBanConstraint {
			return apperr.Conflict(apperr.CodeAlreadyBanned, "User already has an active ban")
		}
		return dberr.Wrap(err, "insert_ban")
	}
	ban.IsActive = true
	ban.IsArchived = false

	entry := audit.NewEntry(ban.BannedByID, audit.ActionBanCreated, audit.EntityBan, ban.ID).
		WithTarget(ban.UserID).
		WithMetadata(audit.Changes{
			"reason":     {After: ban.Reason},
			"expires_at": {After: formatExpiry(ban.ExpiresAt)},
		})
	if err := audit.InsertTx(ctx, transaction, entry); err != nil {
		return err
	}

	if err := trust.InsertTx(ctx, transaction, trustEntry); err != nil {
		return err
	}

	if err := transaction.Commit(ctx); err != nil {
		return dberr.Wrap(err, "commit_ban_create_tx")
	}
	return nil
}

func (repository *PostgresRepository) Update(ctx context.Context, banID, actorID string, input UpdateInput) (*Ban, error) {
	transaction, err := repository.pool.Begin(ctx)
	if err != nil {
		return nil, dberr.Wrap(err, "begin_ban_update_tx")
	}
	defer transaction.Rollback(ctx)

	existing, err := lockBan(ctx, transaction, banID)
	if err != nil {
		return nil, err
	}
	if state := existing.State(time.Now()); state != StateActive {
		return nil, apperr.Conflict(apperr.CodeInvalidTransition,
			fmt.Sprintf("Cannot edit a ban in state %s", state))
	}

	before := map[string]any{
		"reason":     existing.Reason,
		"notes":      derefString(existing.Notes),
		"expires_at": formatExpiry(existing.ExpiresAt),
	}

	updated := *existing
	if input.Reason != nil {
		updated.Reason = *input.Reason
	}
	if input.Notes != nil {
		updated.Notes = input.Notes
	}
	if input.ExpiresAt != nil {
		updated.ExpiresAt = input.ExpiresAt
	}

	after := map[string]any{
		"reason":     updated.Reason,
		"notes":      derefString(updated.Notes),
		"expires_at": formatExpiry(updated.ExpiresAt),
	}

	updateQuery := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = NOW()
		WHERE %s = $1
		RETURNING %s`,
		schema.ModBan.Table, schema.ModBan.Reason, schema.ModBan.Notes,
		schema.ModBan.ExpiresAt, schema.ModBan.UpdatedAt,
		schema.ModBan.ID, schema.ModBan.UpdatedAt,
	)
	err = transaction.QueryRow(ctx, updateQuery,
		banID, updated.Reason, updated.Notes, updated.ExpiresAt,
	).Scan(&updated.UpdatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "update_ban")
	}

	entry := audit.NewEntry(actorID, audit.ActionBanUpdated, audit.EntityBan, banID).
		WithTarget(existing.UserID).
		WithMetadata(audit.Diff(before, after))
	if err := audit.InsertTx(ctx, transaction, entry); err != nil {
		return nil, err
	}

	if err := transaction.Commit(ctx); err != nil {
		return nil, dberr.Wrap(err, "commit_ban_update_tx")
	}
	return &updated, nil
}

func (repository *PostgresRepository) Lift(ctx context.Context, banID, actorID string, notes *string, trustEntry *trust.Entry) (*Ban, error) {
	transaction, err := repository.pool.Begin(ctx)
	if err != nil {
		return nil, dberr.Wrap(err, "begin_ban_lift_tx")
	}
	defer transaction.Rollback(ctx)

	existing, err := lockBan(ctx, transaction, banID)
	if err != nil {
		return nil, err
	}
	if state := existing.State(time.Now()); state != StateActive {
		return nil, apperr.Conflict(apperr.CodeInvalidTransition,
			fmt.Sprintf("Cannot lift a ban in state %s", state))
	}

	updated := *existing
	if notes != nil {
		updated.Notes = appendNote(existing.Notes, *notes)
	}
	updated.IsActive = false
	updated.UnbannedByID = &actorID

	liftQuery := fmt.Sprintf(`
		UPDATE %s SET %s = FALSE, %s = NOW(), %s = $2, %s = $3, %s = NOW()
		WHERE %s = $1
		RETURNING %s, %s`,
		schema.ModBan.Table, schema.ModBan.IsActive, schema.ModBan.UnbannedAt,
		schema.ModBan.UnbannedByID, schema.ModBan.Notes, schema.ModBan.UpdatedAt,
		schema.ModBan.ID, schema.ModBan.UnbannedAt, schema.ModBan.UpdatedAt,
	)
	err = transaction.QueryRow(ctx, liftQuery, banID, actorID, updated.Notes).
		Scan(&updated.UnbannedAt, &updated.UpdatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "lift_ban")
	}

	entry := audit.NewEntry(actorID, audit.ActionBanLifted, audit.EntityBan, banID).
		WithTarget(existing.UserID).
		WithMetadata(audit.Changes{
			"is_active": {Before: true, After: false},
		})
	if err := audit.InsertTx(ctx, transaction, entry); err != nil {
		return nil, err
	}

	if err := trust.InsertTx(ctx, transaction, trustEntry); err != nil {
		return nil, err
	}

	if err := transaction.Commit(ctx); err != nil {
		return nil, dberr.Wrap(err, "commit_ban_lift_tx")
	}
	return &updated, nil
}

func (repository *PostgresRepository) Archive(ctx context.Context, banID, actorID, note string) (*Ban, error) {
	transaction, err := repository.pool.Begin(ctx)
	if err != nil {
		return nil, dberr.Wrap(err, "begin_ban_archive_tx")
	}
	defer transaction.Rollback(ctx)

	existing, err := lockBan(ctx, transaction, banID)
	if err != nil {
		return nil, err
	}
	if existing.IsArchived {
		return nil, apperr.Conflict(apperr.CodeInvalidTransition, "Ban is already archived")
	}

	updated := *existing
	updated.Notes = appendNote(existing.Notes, note)
	updated.IsActive = false
	updated.IsArchived = true

	archiveQuery := fmt.Sprintf(`
		UPDATE %s SET %s = FALSE, %s = TRUE, %s = $2, %s = NOW()
		WHERE %s = $1
		RETURNING %s`,
		schema.ModBan.Table, schema.ModBan.IsActive, schema.ModBan.IsArchived,
		schema.ModBan.Notes, schema.ModBan.UpdatedAt,
		schema.ModBan.ID, schema.ModBan.UpdatedAt,
	)
	if err := transaction.QueryRow(ctx, archiveQuery, banID, updated.Notes).Scan(&updated.UpdatedAt); err != nil {
		return nil, dberr.Wrap(err, "archive_ban")
	}

	entry := audit.NewEntry(actorID, audit.ActionBanArchived, audit.EntityBan, banID).
		WithTarget(existing.UserID).
		WithMetadata(audit.Changes{
			"is_archived": {Before: false, After: true},
		})
	if err := audit.InsertTx(ctx, transaction, entry); err != nil {
		return nil, err
	}

	if err := transaction.Commit(ctx); err != nil {
		return nil, dberr.Wrap(err, "commit_ban_archive_tx")
	}
	return &updated, nil
}

// lockBan reads one ban row under FOR UPDATE within the given transaction.
func lockBan(ctx context.Context, transaction pgx.Tx, banID string) (*Ban, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1
		FOR UPDATE`,
		banColumns, schema.ModBan.Table, schema.ModBan.ID,
	)
	ban := &Ban{}
	if err := scanBan(transaction.QueryRow(ctx, query, banID), ban); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Ban")
		}
		return nil, dberr.Wrap(err, "lock_ban")
	}
	return ban, nil
}

// # Retrieval

func (repository *PostgresRepository) FindByID(ctx context.Context, id string) (*Ban, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1`,
		banColumns, schema.ModBan.Table, schema.ModBan.ID,
	)
	ban := &Ban{}
	if err := scanBan(repository.pool.QueryRow(ctx, query, id), ban); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Ban")
		}
		return nil, dberr.Wrap(err, "get_ban")
	}
	return ban, nil
}

func (repository *PostgresRepository) FindActiveByUser(ctx context.Context, userID string) (*Ban, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s AND NOT %s
		ORDER BY %s DESC
		LIMIT 1`,
		banColumns, schema.ModBan.Table,
		schema.ModBan.UserID, schema.ModBan.IsActive, schema.ModBan.IsArchived,
		schema.ModBan.CreatedAt,
	)
	ban := &Ban{}
	if err := scanBan(repository.pool.QueryRow(ctx, query, userID), ban); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Ban")
		}
		return nil, dberr.Wrap(err, "get_active_ban")
	}
	return ban, nil
}

func (repository *PostgresRepository) List(ctx context.Context, filter Filter, limit, offset int) ([]*Ban, int, error) {
	conditions := "TRUE"
	args := []any{}
	argID := 1

	if filter.UserID != "" {
		conditions += fmt.Sprintf(" AND %s = $%d", schema.ModBan.UserID, argID)
		args = append(args, filter.UserID)
		argID++
	}
	if !filter.IncludeArchived {
		conditions += fmt.Sprintf(" AND NOT %s", schema.ModBan.IsArchived)
	}

	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() as total
		FROM %s
		WHERE %s
		ORDER BY %s DESC
		LIMIT $%d OFFSET $%d`,
		banColumns, schema.ModBan.Table, conditions,
		schema.ModBan.CreatedAt, argID, argID+1,
	)
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_bans")
	}
	defer rows.Close()

	var bans []*Ban
	var total int
	for rows.Next() {
		ban := &Ban{}
		err := rows.Scan(
			&ban.ID, &ban.UserID, &ban.BannedByID,
			&ban.Reason, &ban.Notes, &ban.IsActive,
			&ban.IsArchived, &ban.ExpiresAt, &ban.UnbannedAt,
			&ban.UnbannedByID, &ban.CreatedAt, &ban.UpdatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_ban")
		}
		bans = append(bans, ban)
	}

	return bans, total, nil
}

// # Helpers

// appendNote adds a line to existing notes instead of overwriting history.
func appendNote(existing *string, note string) *string {
	if existing == nil || *existing == "" {
		return &note
	}
	combined := *existing + "\n" + note
	return &combined
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func formatExpiry(expiresAt *time.Time) any {
	if expiresAt == nil {
		return nil
	}
	return expiresAt.UTC().Format(time.RFC3339)
}

var _ Repository = (*PostgresRepository)(nil)
