// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

/*
Package audit implements the write-once audit log for privileged mutations.

Every ban lifecycle change, approval override, report resolution, role change,
and permission grant writes exactly one audit entry — inside the same database
transaction as the mutation it records. An action that cannot be audited must
not be allowed to succeed, so the insert helper is designed to be called with
the caller's open transaction.

# Core Responsibility

  - Immutability: Entries are inserted once and never updated or deleted.
  - Completeness: The [InsertTx] helper makes the audit write part of the
    parent operation's atomic unit of work.
  - Diffs: Metadata records only changed fields (before/after), not snapshots.

The read side (viewer endpoints) is strictly read-only; no write path exists
through the HTTP surface.
*/
package audit

import (
	"time"

	"github.com/compatdex/compatdex/pkg/uuid"
)

// # Audit Actions

// Action identifies the privileged operation an entry records.
type Action string

const (
	ActionBanCreated       Action = "ban.created"
	ActionBanUpdated       Action = "ban.updated"
	ActionBanLifted        Action = "ban.lifted"
	ActionBanArchived      Action = "ban.archived"
	ActionStatusOverridden Action = "moderation.status_overridden"
	ActionReportResolved   Action = "moderation.report_resolved"
	ActionRoleChanged      Action = "user.role_changed"
	ActionGrantCreated     Action = "permission.grant_created"
	ActionGrantRevoked     Action = "permission.grant_revoked"
)

// # Entity Types

const (
	EntityBan     = "ban"
	EntityListing = "listing"
	EntityReport  = "report"
	EntityUser    = "user"
	EntityGrant   = "permission_grant"
)

// # Core Entities

// Change records the before/after pair for a single mutated field.
type Change struct {
	Before any `json:"before"`
	After  any `json:"after"`
}

// Changes maps field names to their recorded mutations.
//
// Serialized to the jsonb metadata column. Only fields that actually changed
// appear here.
type Changes map[string]Change

// Entry is a single immutable audit record.
type Entry struct {
	ID           string    `json:"id"` // UUIDv7
	ActorID      string    `json:"actor_id"`
	Action       Action    `json:"action"`
	EntityType   string    `json:"entity_type"`
	EntityID     string    `json:"entity_id"`
	TargetUserID *string   `json:"target_user_id,omitempty"`
	Metadata     Changes   `json:"metadata,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewEntry builds an audit entry with a fresh UUIDv7.
//
// CreatedAt is stamped by the database at insert time.
func NewEntry(actorID string, action Action, entityType, entityID string) *Entry {
	return &Entry{
		ID:         uuid.New(),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	}
}

// WithTarget attaches the affected user to the entry.
func (e *Entry) WithTarget(userID string) *Entry {
	e.TargetUserID = &userID
	return e
}

// WithMetadata attaches a field diff to the entry.
func (e *Entry) WithMetadata(changes Changes) *Entry {
	if len(changes) > 0 {
		e.Metadata = changes
	}
	return e
}

// # Diff Construction

// Diff compares two field maps and keeps only the keys whose values differ.
//
// Callers pass the before/after values of the fields they mutated; unchanged
// fields are dropped so the audit row stays a minimal diff, not a snapshot.
func Diff(before, after map[string]any) Changes {
	changes := Changes{}
	for field, newValue := range after {
		oldValue := before[field]
		if oldValue != newValue {
			changes[field] = Change{Before: oldValue, After: newValue}
		}
	}
	return changes
}

// # Search & Filtering

// Filter holds parameters for querying the audit log viewer.
type Filter struct {
	ActorID      string `json:"actor_id"`
	TargetUserID string `json:"target_user_id"`
	EntityType   string `json:"entity_type"`
	EntityID     string `json:"entity_id"`
	Action       string `json:"action"`
}
