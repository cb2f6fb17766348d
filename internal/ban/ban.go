// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

/*
Package ban implements the suspension registry for the moderation engine.

A ban is a time-boxed or permanent suspension of one user, issued by a
moderator who outranks them. Rows are never deleted: the lifecycle ends in
an archived record, not a missing one.

# Lifecycle

	NONE → ACTIVE → (LIFTED | EXPIRED | ARCHIVED)

Expiry is passive. A ban whose expiresat has passed is logically inactive at
read time without any row mutation; no background sweep exists or is needed.
Lifting is the explicit path and stamps who lifted and when. Archiving is the
administrative soft-delete: the record survives, appended with an archive
note.

# Authority

Every mutating operation re-checks, inside the request that performs it, that
the actor strictly outranks the target's current role. The role at ban
creation time is irrelevant for later updates or lifts: a demoted moderator
cannot ride a stale session.
*/
package ban

import (
	"time"
)

// # Lifecycle States

// State is the derived lifecycle position of a ban.
//
// It is computed from the record's fields at read time, never stored.
type State string

const (
	StateActive   State = "ACTIVE"
	StateLifted   State = "LIFTED"
	StateExpired  State = "EXPIRED"
	StateArchived State = "ARCHIVED"
)

// # Core Entities

// Ban is a single suspension record.
//
// ExpiresAt nil means permanent. IsActive is the storage-level flag backing
// the one-active-ban-per-user unique index; lifecycle questions go through
// [Ban.State], which also accounts for passive expiry.
type Ban struct {
	ID           string     `json:"id"` // UUIDv7
	UserID       string     `json:"user_id"`
	BannedByID   string     `json:"banned_by_id"`
	Reason       string     `json:"reason"`
	Notes        *string    `json:"notes,omitempty"`
	IsActive     bool       `json:"is_active"`
	IsArchived   bool       `json:"is_archived"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	UnbannedAt   *time.Time `json:"unbanned_at,omitempty"`
	UnbannedByID *string    `json:"unbanned_by_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// State derives the lifecycle position of the ban at the given instant.
//
// Archive wins over everything; an explicit lift wins over expiry. A ban
// past its expiresat is EXPIRED even though isactive was never flipped.
func (b *Ban) State(now time.Time) State {
	switch {
	case b.IsArchived:
		return StateArchived
	case b.UnbannedAt != nil:
		return StateLifted
	case b.ExpiresAt != nil && !b.ExpiresAt.After(now):
		return StateExpired
	default:
		return StateActive
	}
}

// InEffect reports whether the ban suspends its target at the given instant.
func (b *Ban) InEffect(now time.Time) bool {
	return b.State(now) == StateActive
}

// Status is the read-model answer to "is this user banned right now".
type Status struct {
	IsBanned bool `json:"is_banned"`
	Ban      *Ban `json:"ban,omitempty"`
}

// # Mutation Inputs

// CreateInput carries the caller-supplied fields for issuing a ban.
type CreateInput struct {
	UserID    string
	Reason    string
	Notes     *string
	ExpiresAt *time.Time
}

// UpdateInput carries the editable fields of an active ban.
//
// Nil means "leave unchanged". Lifecycle flags are deliberately absent:
// deactivation only happens through lift or archive.
type UpdateInput struct {
	Reason    *string
	Notes     *string
	ExpiresAt *time.Time
}
