// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

/*
Package listing implements the compatibility report catalogue.

A listing records how well one game runs in one emulator on one device. New
submissions enter the moderation queue as PENDING; the approval field
cluster (status, processedat, processedbyuserid, processednotes) is owned by
this package but only written through the moderation state machine.

# Approval Status

	PENDING → APPROVED
	PENDING → REJECTED
	APPROVED → REJECTED   (only as the outcome of a resolved report)

Any other movement goes through the separately-audited override operation,
never the normal path.
*/
package listing

import (
	"time"
)

// # Approval Status

// ApprovalStatus is the moderation position of a listing.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "PENDING"
	StatusApproved ApprovalStatus = "APPROVED"
	StatusRejected ApprovalStatus = "REJECTED"
)

// IsValid reports whether the value is a known status.
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether the status can only be left via override or a
// resolved report.
func (s ApprovalStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// CanTransitionTo reports whether the normal approve/reject path may move
// the status to target. The report-resolution path (APPROVED→REJECTED) and
// the override path have their own rules and do not consult this.
func (s ApprovalStatus) CanTransitionTo(target ApprovalStatus) bool {
	return s == StatusPending && (target == StatusApproved || target == StatusRejected)
}

// # Performance Ratings

// Known performance ratings for a compatibility report.
const (
	PerformancePerfect    = "perfect"
	PerformancePlayable   = "playable"
	PerformanceIngame     = "ingame"
	PerformanceMenus      = "menus"
	PerformanceUnplayable = "unplayable"
)

// AllPerformanceRatings lists the accepted ratings, best first.
func AllPerformanceRatings() []string {
	return []string{
		PerformancePerfect, PerformancePlayable, PerformanceIngame,
		PerformanceMenus, PerformanceUnplayable,
	}
}

// # Core Entities

// Listing is one game/emulator/device compatibility report.
type Listing struct {
	ID          string  `json:"id"` // UUIDv7
	Slug        string  `json:"slug"`
	AuthorID    string  `json:"author_id"`
	GameTitle   string  `json:"game_title"`
	Emulator    string  `json:"emulator"`
	Device      string  `json:"device"`
	Performance string  `json:"performance"`
	Notes       *string `json:"notes,omitempty"`

	// Approval field cluster, written only via the moderation state machine.
	Status            ApprovalStatus `json:"status"`
	ProcessedAt       *time.Time     `json:"processed_at,omitempty"`
	ProcessedByUserID *string        `json:"processed_by_user_id,omitempty"`
	ProcessedNotes    *string        `json:"processed_notes,omitempty"`

	// Developer verification, a parallel badge independent of approval.
	IsVerified   bool    `json:"is_verified"`
	VerifiedByID *string `json:"verified_by_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubmitInput carries the author-supplied fields of a new listing.
type SubmitInput struct {
	GameTitle   string
	Emulator    string
	Device      string
	Performance string
	Notes       *string
}

// Filter holds parameters for browsing the catalogue.
type Filter struct {
	Status   ApprovalStatus
	AuthorID string
	Emulator string
}
