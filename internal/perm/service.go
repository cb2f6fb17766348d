// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package perm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/compatdex/compatdex/internal/audit"
	"github.com/compatdex/compatdex/internal/platform/apperr"
	"github.com/compatdex/compatdex/internal/platform/sec"
)

const (
	grantCacheSize = 4096
	grantCacheTTL  = 5 * time.Minute
)

// Service answers permission checks and manages explicit grants.
//
// Role checks are resolved from the static registry alone. Explicit
// grants are loaded per user through an expiring LRU so hot actors do
// not hit the database on every request.
type Service struct {
	repo   GrantRepository
	cache  *expirable.LRU[string, map[string]struct{}]
	logger *slog.Logger
}

// NewService constructs the permission service.
func NewService(repo GrantRepository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  expirable.NewLRU[string, map[string]struct{}](grantCacheSize, nil, grantCacheTTL),
		logger: logger,
	}
}

// # Permission Checks

/*
Has reports whether an actor holds a permission.

Description: Unknown keys always deny. A role at or above the permission's
minimum role passes without any lookup; otherwise the actor's explicit
grants are consulted. Grant lookup failures deny.

Parameters:
  - context: context.Context
  - userID: string
  - role: sec.UserRole
  - key: string

Returns:
  - bool: true if the actor holds the permission
*/
func (service *Service) Has(context context.Context, userID string, role sec.UserRole, key string) bool {
	permission, known := Lookup(key)
	if !known {
		service.logger.Warn("permission_unknown_key", slog.String("key", key))
		return false
	}

	if role.AtLeast(permission.MinimumRole) {
		return true
	}

	grants, err := service.grantsFor(context, userID)
	if err != nil {
		service.logger.Error("permission_grant_lookup_failed",
			slog.String("user_id", userID),
			slog.String("key", key),
			slog.Any("error", err),
		)
		return false
	}

	_, held := grants[key]
	return held
}

/*
Require returns a forbidden error unless the actor holds a permission.

Parameters:
  - context: context.Context
  - userID: string
  - role: sec.UserRole
  - key: string

Returns:
  - error: apperr.Forbidden when the permission is missing
*/
func (service *Service) Require(context context.Context, userID string, role sec.UserRole, key string) error {
	if !service.Has(context, userID, role, key) {
		return apperr.Forbidden(fmt.Sprintf("missing permission %q", key))
	}
	return nil
}

func (service *Service) grantsFor(context context.Context, userID string) (map[string]struct{}, error) {
	if grants, ok := service.cache.Get(userID); ok {
		return grants, nil
	}

	keys, err := service.repo.ListKeysByUser(context, userID)
	if err != nil {
		return nil, err
	}

	grants := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		grants[key] = struct{}{}
	}

	service.cache.Add(userID, grants)
	return grants, nil
}

// # Grant Management

/*
Grant gives a user an explicit permission, recording the act in the audit log.

Description: Granting an unknown key is a validation error. Re-granting an
already held permission is a no-op and produces no audit entry.

Parameters:
  - context: context.Context
  - actorID: string
  - userID: string
  - key: string

Returns:
  - error: Validation or persistence failures
*/
func (service *Service) Grant(context context.Context, actorID, userID, key string) error {
	if _, known := Lookup(key); !known {
		return apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   "permission_key",
			Message: fmt.Sprintf("unknown permission %q", key),
		})
	}

	grant := &Grant{
		UserID:        userID,
		PermissionKey: key,
		GrantedByID:   actorID,
	}

	entry := audit.NewEntry(actorID, audit.ActionGrantCreated, audit.EntityGrant, key).
		WithTarget(userID)

	created, err := service.repo.Insert(context, grant, entry)
	if err != nil {
		return err
	}
	if !created {
		return nil
	}

	service.cache.Remove(userID)
	service.logger.Info("permission_granted",
		slog.String("actor_id", actorID),
		slog.String("user_id", userID),
		slog.String("key", key),
	)
	return nil
}

/*
Revoke removes an explicit permission grant, recording the act in the audit log.

Parameters:
  - context: context.Context
  - actorID: string
  - userID: string
  - key: string

Returns:
  - error: Not-found or persistence failures
*/
func (service *Service) Revoke(context context.Context, actorID, userID, key string) error {
	entry := audit.NewEntry(actorID, audit.ActionGrantRevoked, audit.EntityGrant, key).
		WithTarget(userID)

	removed, err := service.repo.Delete(context, userID, key, entry)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.NotFound("permission grant")
	}

	service.cache.Remove(userID)
	service.logger.Info("permission_revoked",
		slog.String("actor_id", actorID),
		slog.String("user_id", userID),
		slog.String("key", key),
	)
	return nil
}

/*
ListGrants returns a user's explicit grants.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []*Grant: Grant records
  - error: Retrieval failures
*/
func (service *Service) ListGrants(context context.Context, userID string) ([]*Grant, error) {
	return service.repo.ListByUser(context, userID)
}
