// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

/*
Package trust implements the append-only behavioral reputation ledger.

Every reputation-affecting event (confirmed report, false report, approved
listing, ban) is one immutable ledger row with a fixed weight from a static
table. A user's score is the sum of their rows; their level is a threshold
bucket over that score.

# Core Responsibility

  - Ledger: Defines the immutable [Entry] and the closed [Action] enum.
  - Derivation: Score and level are always recomputable from the ledger
    alone. The Redis cache is a rebuildable index, never the authority.
  - Atomicity: [InsertTx] lets the ban and moderation repositories write
    ledger rows inside their own transactions, so a resolved report and its
    trust credit commit as one unit.

The insert-only design makes concurrent scoring race-free: there is no
read-modify-write on a mutable score field anywhere in the system.
*/
package trust

import (
	"time"

	"github.com/compatdex/compatdex/pkg/uuid"
)

// # Trust Actions

// Action is the closed set of reputation-affecting events.
type Action string

const (
	// A report filed by the user was resolved as valid.
	ActionReportConfirmed Action = "REPORT_CONFIRMED"

	// A report filed by the user was dismissed as unfounded.
	ActionFalseReport Action = "FALSE_REPORT"

	// A listing authored by the user passed moderation.
	ActionListingApproved Action = "LISTING_APPROVED"

	// A listing authored by the user was rejected in moderation.
	ActionListingRejected Action = "LISTING_REJECTED"

	// A listing authored by the user was verified by an emulator developer.
	ActionListingDeveloperVerified Action = "LISTING_DEVELOPER_VERIFIED"

	// The user was banned.
	ActionBanIssued Action = "BAN_ISSUED"

	// The user's ban was explicitly lifted by a moderator.
	ActionBanLifted Action = "BAN_LIFTED"
)

// actionWeights is the static action→weight table.
//
// These values are deliberately explicit constants (not configuration): a
// change to the reputation economy should be a reviewed code diff, and the
// table is pinned by tests.
var actionWeights = map[Action]int{
	ActionReportConfirmed:          +10,
	ActionFalseReport:              -15,
	ActionListingApproved:          +5,
	ActionListingRejected:          -2,
	ActionListingDeveloperVerified: +20,
	ActionBanIssued:                -50,
	ActionBanLifted:                +10,
}

// WeightOf returns the fixed point value for an action.
//
// The second return is false for unknown actions; callers must treat that
// as a hard error, never default to zero.
func WeightOf(action Action) (int, bool) {
	weight, known := actionWeights[action]
	return weight, known
}

// # Trust Levels

// Level is a discrete reputation bucket derived from the summed score.
type Level int

// levelThresholds lists the exclusive lower bound of each level above 0,
// in ascending order. A score must be strictly greater than the bound to
// reach the level.
var levelThresholds = []struct {
	Level Level
	Above int
}{
	{Level: 1, Above: 0},
	{Level: 2, Above: 50},
	{Level: 3, Above: 150},
	{Level: 4, Above: 400},
}

// LevelOf maps a score to its trust level via threshold lookup.
//
// Scores at or below zero are Level 0.
func LevelOf(score int) Level {
	level := Level(0)
	for _, threshold := range levelThresholds {
		if score > threshold.Above {
			level = threshold.Level
		}
	}
	return level
}

// # Core Entities

// Entry is a single immutable ledger record.
//
// Entries are never updated or deleted; correcting a mistake means
// appending a compensating entry.
type Entry struct {
	ID           string         `json:"id"` // UUIDv7
	UserID       string         `json:"user_id"`
	Action       Action         `json:"action"`
	Weight       int            `json:"weight"`
	TargetUserID *string        `json:"target_user_id,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// NewEntry builds a ledger entry for the given action, resolving its weight
// from the static table.
//
// Returns false if the action is unknown; the caller must abort rather than
// write an unweighted row.
func NewEntry(userID string, action Action) (*Entry, bool) {
	weight, known := WeightOf(action)
	if !known {
		return nil, false
	}

	return &Entry{
		ID:     uuid.New(),
		UserID: userID,
		Action: action,
		Weight: weight,
	}, true
}

// WithTarget attaches the other party of the event (e.g. the banned user on
// a moderator-issued entry).
func (e *Entry) WithTarget(userID string) *Entry {
	e.TargetUserID = &userID
	return e
}

// WithMetadata attaches free-form linkage data (report id, listing id).
func (e *Entry) WithMetadata(metadata map[string]any) *Entry {
	if len(metadata) > 0 {
		e.Metadata = metadata
	}
	return e
}

// # Read Models

// Standing is the derived reputation view returned by the API.
type Standing struct {
	UserID string `json:"user_id"`
	Score  int    `json:"score"`
	Level  Level  `json:"level"`
}
