// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

/*
Package moderation implements the approval and report state machines.

Two machines run here. The content machine moves a listing's approval
status along its legal transitions; the report machine takes a user-filed
complaint through review to a terminal outcome. They couple at resolution:
resolving a report as valid is the only normal path that can knock an
APPROVED listing back to REJECTED, and a resolution also settles the
reporter's trust score — confirmed reports credit, dismissed ones debit.

Every resolution is one transaction: report row, listing status, trust
ledger entry, and audit entry commit together or not at all. Concurrent
reviewers racing on the same report are decided by a row lock; the loser
gets ALREADY_RESOLVED, never a double credit.
*/
package moderation

import (
	"time"
)

// # Report Status

// ReportStatus is the position of a report in its state machine.
//
//	PENDING → UNDER_REVIEW → {RESOLVED | DISMISSED}
//
// Terminal once resolved or dismissed. Resolving straight from PENDING is
// permitted; the review step marks a claim, it is not a required stop.
type ReportStatus string

const (
	ReportPending     ReportStatus = "PENDING"
	ReportUnderReview ReportStatus = "UNDER_REVIEW"
	ReportResolved    ReportStatus = "RESOLVED"
	ReportDismissed   ReportStatus = "DISMISSED"
)

// IsTerminal reports whether no further transition is legal.
func (s ReportStatus) IsTerminal() bool {
	return s == ReportResolved || s == ReportDismissed
}

// CanTransitionTo reports whether the machine may move from s to target.
func (s ReportStatus) CanTransitionTo(target ReportStatus) bool {
	switch s {
	case ReportPending:
		return target == ReportUnderReview || target == ReportResolved || target == ReportDismissed
	case ReportUnderReview:
		return target == ReportResolved || target == ReportDismissed
	}
	return false
}

// Outcome is a terminal resolution of a report.
type Outcome = ReportStatus

// # Report Reasons

// Accepted reasons for filing a report.
const (
	ReasonFakeListing   = "FAKE_LISTING"
	ReasonWrongInfo     = "WRONG_INFO"
	ReasonInappropriate = "INAPPROPRIATE"
	ReasonSpam          = "SPAM"
	ReasonOther         = "OTHER"
)

// AllReasons lists the accepted report reasons.
func AllReasons() []string {
	return []string{
		ReasonFakeListing, ReasonWrongInfo, ReasonInappropriate,
		ReasonSpam, ReasonOther,
	}
}

// # Core Entities

// Report is one user-filed complaint against a listing.
//
// One report per (reporter, target) pair; duplicates are rejected, not
// merged.
type Report struct {
	ID           string       `json:"id"` // UUIDv7
	TargetID     string       `json:"target_id"`
	ReportedByID string       `json:"reported_by_id"`
	Reason       string       `json:"reason"`
	Description  *string      `json:"description,omitempty"`
	Status       ReportStatus `json:"status"`
	ReviewedByID *string      `json:"reviewed_by_id,omitempty"`
	ReviewedAt   *time.Time   `json:"reviewed_at,omitempty"`
	ReviewNotes  *string      `json:"review_notes,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// CreateReportInput carries the reporter-supplied fields of a new report.
type CreateReportInput struct {
	TargetID    string
	Reason      string
	Description *string
}

// ReportFilter holds parameters for the moderation queue.
type ReportFilter struct {
	Status   ReportStatus
	TargetID string
}
