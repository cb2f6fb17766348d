// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/compatdex/compatdex/internal/audit"
	"github.com/compatdex/compatdex/internal/platform/apperr"
	"github.com/compatdex/compatdex/internal/platform/database/schema"
	"github.com/compatdex/compatdex/internal/platform/dberr"
	"github.com/compatdex/compatdex/internal/platform/sec"
)

// PostgresUserRepository implements [UserRepository] using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a new Postgres implementation for accounts.
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// userColumns is the canonical select list, kept in one place so every
// query scans in the same order.
var userColumns = fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s",
	schema.UserAccount.ID, schema.UserAccount.Username, schema.UserAccount.Email,
	schema.UserAccount.Password, schema.UserAccount.Role, schema.UserAccount.LastLoginAt,
	schema.UserAccount.CreatedAt, schema.UserAccount.UpdatedAt,
)

// scanUser hydrates one account row in userColumns order.
func scanUser(row pgx.Row, user *User) error {
	return row.Scan(
		&user.ID, &user.Username, &user.Email,
		&user.PasswordHash, &user.Role, &user.LastLoginAt,
		&user.CreatedAt, &user.UpdatedAt,
	)
}

// # Mutations

func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING %s, %s`,
		schema.UserAccount.Table,
		schema.UserAccount.ID, schema.UserAccount.Username, schema.UserAccount.Email,
		schema.UserAccount.Password, schema.UserAccount.Role,
		schema.UserAccount.CreatedAt, schema.UserAccount.UpdatedAt,
		schema.UserAccount.CreatedAt, schema.UserAccount.UpdatedAt,
	)

	err := repository.pool.QueryRow(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Role,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return apperr.Conflict(apperr.CodeConflict, "Username or email is already registered")
		}
		return dberr.Wrap(err, "insert_user")
	}
	return nil
}

func (repository *PostgresUserRepository) UpdateLastLogin(ctx context.Context, userID string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = NOW(), %s = NOW()
		WHERE %s = $1`,
		schema.UserAccount.Table, schema.UserAccount.LastLoginAt,
		schema.UserAccount.UpdatedAt, schema.UserAccount.ID,
	)
	if _, err := repository.pool.Exec(ctx, query, userID); err != nil {
		return dberr.Wrap(err, "update_last_login")
	}
	return nil
}

func (repository *PostgresUserRepository) UpdateRole(ctx context.Context, userID string, newRole sec.UserRole, actorID string) (*User, error) {
	transaction, err := repository.pool.Begin(ctx)
	if err != nil {
		return nil, dberr.Wrap(err, "begin_role_change_tx")
	}
	defer transaction.Rollback(ctx)

	lockQuery := fmt.Sprintf(`
		SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`,
		userColumns, schema.UserAccount.Table, schema.UserAccount.ID,
	)
	existing := &User{}
	if err := scanUser(transaction.QueryRow(ctx, lockQuery, userID), existing); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, dberr.Wrap(err, "lock_user")
	}

	if existing.Role == newRole {
		return nil, apperr.Conflict(apperr.CodeInvalidTransition, "User already has this role")
	}

	updateQuery := fmt.Sprintf(`
		UPDATE %s SET %s = $1, %s = NOW()
		WHERE %s = $2
		RETURNING %s`,
		schema.UserAccount.Table, schema.UserAccount.Role,
		schema.UserAccount.UpdatedAt, schema.UserAccount.ID,
		userColumns,
	)
	updated := &User{}
	if err := scanUser(transaction.QueryRow(ctx, updateQuery, newRole, userID), updated); err != nil {
		return nil, dberr.Wrap(err, "update_user_role")
	}

	auditEntry := audit.NewEntry(actorID, audit.ActionRoleChanged, audit.EntityUser, userID).
		WithTarget(userID).
		WithMetadata(audit.Diff(
			map[string]any{"role": string(existing.Role)},
			map[string]any{"role": string(newRole)},
		))
	if err := audit.InsertTx(ctx, transaction, auditEntry); err != nil {
		return nil, err
	}

	if err := transaction.Commit(ctx); err != nil {
		return nil, dberr.Wrap(err, "commit_role_change_tx")
	}
	return updated, nil
}

// # Lookups

func (repository *PostgresUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	return repository.findOne(ctx, schema.UserAccount.ID, id)
}

func (repository *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return repository.findOne(ctx, schema.UserAccount.Email, email)
}

func (repository *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return repository.findOne(ctx, schema.UserAccount.Username, username)
}

func (repository *PostgresUserRepository) findOne(ctx context.Context, column, value string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE %s = $1`,
		userColumns, schema.UserAccount.Table, column,
	)
	user := &User{}
	if err := scanUser(repository.pool.QueryRow(ctx, query, value), user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, dberr.Wrap(err, "find_user")
	}
	return user, nil
}

func (repository *PostgresUserRepository) FindRole(ctx context.Context, userID string) (sec.UserRole, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE %s = $1`,
		schema.UserAccount.Role, schema.UserAccount.Table, schema.UserAccount.ID,
	)
	var role sec.UserRole
	if err := repository.pool.QueryRow(ctx, query, userID).Scan(&role); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperr.NotFound("User")
		}
		return "", dberr.Wrap(err, "find_user_role")
	}
	return role, nil
}
