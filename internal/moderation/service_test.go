// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package moderation_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compatdex/compatdex/internal/audit"
	"github.com/compatdex/compatdex/internal/content/listing"
	"github.com/compatdex/compatdex/internal/moderation"
	"github.com/compatdex/compatdex/internal/perm"
	"github.com/compatdex/compatdex/internal/platform/apperr"
	"github.com/compatdex/compatdex/internal/platform/sec"
	"github.com/compatdex/compatdex/internal/trust"
	"github.com/compatdex/compatdex/pkg/uuid"
)

// # In-Memory Fakes

// fakeModRepo mirrors the state machine preconditions of the Postgres
// store, for both reports and listing status writes. It doubles as the
// ListingReader.
type fakeModRepo struct {
	reports      map[string]*moderation.Report
	listings     map[string]*listing.Listing
	trustEntries []*trust.Entry
}

func newFakeModRepo() *fakeModRepo {
	return &fakeModRepo{
		reports:  map[string]*moderation.Report{},
		listings: map[string]*listing.Listing{},
	}
}

func (f *fakeModRepo) InsertReport(_ context.Context, report *moderation.Report) error {
	for _, existing := range f.reports {
		if existing.ReportedByID == report.ReportedByID && existing.TargetID == report.TargetID {
			return apperr.Conflict(apperr.CodeDuplicateReport, "You have already reported this listing")
		}
	}
	report.CreatedAt = time.Now()
	f.reports[report.ID] = report
	return nil
}

func (f *fakeModRepo) FindReportByID(_ context.Context, id string) (*moderation.Report, error) {
	existing, ok := f.reports[id]
	if !ok {
		return nil, apperr.NotFound("Report")
	}
	return existing, nil
}

func (f *fakeModRepo) ListReports(_ context.Context, _ moderation.ReportFilter, _, _ int) ([]*moderation.Report, int, error) {
	var out []*moderation.Report
	for _, existing := range f.reports {
		out = append(out, existing)
	}
	return out, len(out), nil
}

func (f *fakeModRepo) StartReview(_ context.Context, reportID, reviewerID string) (*moderation.Report, error) {
	existing, ok := f.reports[reportID]
	if !ok {
		return nil, apperr.NotFound("Report")
	}
	if existing.Status.IsTerminal() {
		return nil, apperr.Conflict(apperr.CodeAlreadyResolved, "Report is already settled")
	}
	if !existing.Status.CanTransitionTo(moderation.ReportUnderReview) {
		return nil, apperr.Conflict(apperr.CodeInvalidTransition, "Report is already under review")
	}
	now := time.Now()
	existing.Status = moderation.ReportUnderReview
	existing.ReviewedByID = &reviewerID
	existing.ReviewedAt = &now
	return existing, nil
}

func (f *fakeModRepo) ResolveReport(_ context.Context, reportID, reviewerID string, outcome moderation.Outcome, notes *string, trustEntry *trust.Entry) (*moderation.Report, error) {
	existing, ok := f.reports[reportID]
	if !ok {
		return nil, apperr.NotFound("Report")
	}
	if existing.Status.IsTerminal() {
		return nil, apperr.Conflict(apperr.CodeAlreadyResolved, "Report is already settled")
	}
	now := time.Now()
	existing.Status = outcome
	existing.ReviewedByID = &reviewerID
	existing.ReviewedAt = &now
	existing.ReviewNotes = notes

	if outcome == moderation.ReportResolved {
		if target, found := f.listings[existing.TargetID]; found && target.Status == listing.StatusApproved {
			processedNotes := fmt.Sprintf("Rejected on resolution of report %s (%s)", reportID, existing.Reason)
			target.Status = listing.StatusRejected
			target.ProcessedAt = &now
			target.ProcessedByUserID = &reviewerID
			target.ProcessedNotes = &processedNotes
		}
	}

	f.trustEntries = append(f.trustEntries, trustEntry)
	return existing, nil
}

func (f *fakeModRepo) ApproveListing(_ context.Context, listingID, actorID string, notes *string, trustEntry *trust.Entry) (*listing.Listing, error) {
	return f.process(listingID, actorID, notes, listing.StatusApproved, trustEntry)
}

func (f *fakeModRepo) RejectListing(_ context.Context, listingID, actorID string, notes *string, trustEntry *trust.Entry) (*listing.Listing, error) {
	return f.process(listingID, actorID, notes, listing.StatusRejected, trustEntry)
}

func (f *fakeModRepo) process(listingID, actorID string, notes *string, newStatus listing.ApprovalStatus, trustEntry *trust.Entry) (*listing.Listing, error) {
	existing, ok := f.listings[listingID]
	if !ok {
		return nil, apperr.NotFound("Listing")
	}
	if !existing.Status.CanTransitionTo(newStatus) {
		return nil, apperr.Conflict(apperr.CodeInvalidTransition, "Listing is not pending")
	}
	now := time.Now()
	existing.Status = newStatus
	existing.ProcessedAt = &now
	existing.ProcessedByUserID = &actorID
	existing.ProcessedNotes = notes
	f.trustEntries = append(f.trustEntries, trustEntry)
	return existing, nil
}

func (f *fakeModRepo) OverrideListingStatus(_ context.Context, listingID, actorID string, newStatus listing.ApprovalStatus, notes string) (*listing.Listing, error) {
	existing, ok := f.listings[listingID]
	if !ok {
		return nil, apperr.NotFound("Listing")
	}
	if existing.Status == newStatus {
		return nil, apperr.Conflict(apperr.CodeInvalidTransition, "Listing already has this status")
	}
	now := time.Now()
	existing.Status = newStatus
	existing.ProcessedAt = &now
	existing.ProcessedByUserID = &actorID
	existing.ProcessedNotes = &notes
	return existing, nil
}

func (f *fakeModRepo) FindByID(_ context.Context, id string) (*listing.Listing, error) {
	existing, ok := f.listings[id]
	if !ok {
		return nil, apperr.NotFound("Listing")
	}
	return existing, nil
}

// fakeGrantRepo holds no explicit grants.
type fakeGrantRepo struct{}

func (fakeGrantRepo) ListKeysByUser(context.Context, string) ([]string, error) { return nil, nil }
func (fakeGrantRepo) ListByUser(context.Context, string) ([]*perm.Grant, error) {
	return nil, nil
}
func (fakeGrantRepo) Insert(context.Context, *perm.Grant, *audit.Entry) (bool, error) {
	return true, nil
}
func (fakeGrantRepo) Delete(context.Context, string, string, *audit.Entry) (bool, error) {
	return true, nil
}

// fakeTrustRepo is an append-only in-memory ledger.
type fakeTrustRepo struct {
	entries []*trust.Entry
}

func (f *fakeTrustRepo) Insert(_ context.Context, entry *trust.Entry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeTrustRepo) SumByUser(_ context.Context, userID string) (int, error) {
	sum := 0
	for _, entry := range f.entries {
		if entry.UserID == userID {
			sum += entry.Weight
		}
	}
	return sum, nil
}

func (f *fakeTrustRepo) ListByUser(_ context.Context, userID string, _, _ int) ([]*trust.Entry, int, error) {
	var out []*trust.Entry
	for _, entry := range f.entries {
		if entry.UserID == userID {
			out = append(out, entry)
		}
	}
	return out, len(out), nil
}

// # Fixture

type fixture struct {
	service *moderation.Service
	repo    *fakeModRepo
}

func newFixture() *fixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := newFakeModRepo()
	perms := perm.NewService(fakeGrantRepo{}, logger)
	trustService := trust.NewService(&fakeTrustRepo{}, nil, logger)

	return &fixture{
		service: moderation.NewService(repo, repo, perms, trustService, nil, logger),
		repo:    repo,
	}
}

func (f *fixture) seedListing(authorID string, status listing.ApprovalStatus) *listing.Listing {
	seeded := &listing.Listing{
		ID:          uuid.New(),
		AuthorID:    authorID,
		GameTitle:   "Wind Waker",
		Emulator:    "dolphin",
		Device:      "rog-ally",
		Performance: "playable",
		Status:      status,
	}
	f.repo.listings[seeded.ID] = seeded
	return seeded
}

// # Tests

/*
TestService_CreateReport_SelfReport rejects reporting your own listing.
*/
func TestService_CreateReport_SelfReport(t *testing.T) {
	f := newFixture()
	authorID := uuid.New()
	target := f.seedListing(authorID, listing.StatusApproved)

	_, err := f.service.CreateReport(context.Background(), authorID, moderation.CreateReportInput{
		TargetID: target.ID,
		Reason:   moderation.ReasonWrongInfo,
	})

	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	assert.Empty(t, f.repo.reports)
}

/*
TestService_CreateReport_Duplicate rejects a second report from the same
reporter against the same listing.
*/
func TestService_CreateReport_Duplicate(t *testing.T) {
	f := newFixture()
	reporterID := uuid.New()
	target := f.seedListing(uuid.New(), listing.StatusApproved)
	input := moderation.CreateReportInput{
		TargetID: target.ID,
		Reason:   moderation.ReasonSpam,
	}

	first, err := f.service.CreateReport(context.Background(), reporterID, input)
	require.NoError(t, err)
	assert.Equal(t, moderation.ReportPending, first.Status)

	_, err = f.service.CreateReport(context.Background(), reporterID, input)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeDuplicateReport, apperr.As(err).Code)
}

/*
TestService_CreateReport_UnknownReason rejects reasons outside the accepted
set before touching storage.
*/
func TestService_CreateReport_UnknownReason(t *testing.T) {
	f := newFixture()
	target := f.seedListing(uuid.New(), listing.StatusApproved)

	_, err := f.service.CreateReport(context.Background(), uuid.New(), moderation.CreateReportInput{
		TargetID: target.ID,
		Reason:   "I_JUST_DONT_LIKE_IT",
	})

	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

/*
TestService_Resolve_RejectsApprovedListing checks the coupled resolution:
confirming a report against an APPROVED listing rejects the listing with
notes referencing the report, and credits the reporter exactly once.
*/
func TestService_Resolve_RejectsApprovedListing(t *testing.T) {
	f := newFixture()
	reporterID := uuid.New()
	reviewerID := uuid.New()
	target := f.seedListing(uuid.New(), listing.StatusApproved)

	report, err := f.service.CreateReport(context.Background(), reporterID, moderation.CreateReportInput{
		TargetID: target.ID,
		Reason:   moderation.ReasonFakeListing,
	})
	require.NoError(t, err)

	resolved, err := f.service.Resolve(context.Background(), reviewerID, sec.RoleModerator, report.ID, moderation.ReportResolved, nil)
	require.NoError(t, err)
	assert.Equal(t, moderation.ReportResolved, resolved.Status)

	assert.Equal(t, listing.StatusRejected, target.Status)
	require.NotNil(t, target.ProcessedNotes)
	assert.Contains(t, *target.ProcessedNotes, report.ID)

	require.Len(t, f.repo.trustEntries, 1)
	entry := f.repo.trustEntries[0]
	assert.Equal(t, reporterID, entry.UserID)
	assert.Equal(t, trust.ActionReportConfirmed, entry.Action)
	assert.Equal(t, 10, entry.Weight)
}

/*
TestService_Resolve_DoubleResolve lets the first reviewer win; the second
gets ALREADY_RESOLVED and the reporter is credited only once.
*/
func TestService_Resolve_DoubleResolve(t *testing.T) {
	f := newFixture()
	reporterID := uuid.New()
	target := f.seedListing(uuid.New(), listing.StatusApproved)

	report, err := f.service.CreateReport(context.Background(), reporterID, moderation.CreateReportInput{
		TargetID: target.ID,
		Reason:   moderation.ReasonFakeListing,
	})
	require.NoError(t, err)

	_, err = f.service.Resolve(context.Background(), uuid.New(), sec.RoleModerator, report.ID, moderation.ReportResolved, nil)
	require.NoError(t, err)

	_, err = f.service.Resolve(context.Background(), uuid.New(), sec.RoleModerator, report.ID, moderation.ReportDismissed, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeAlreadyResolved, apperr.As(err).Code)
	assert.Len(t, f.repo.trustEntries, 1)
}

/*
TestService_Resolve_DismissalPenalty debits the reporter on dismissal and
leaves the listing untouched.
*/
func TestService_Resolve_DismissalPenalty(t *testing.T) {
	f := newFixture()
	reporterID := uuid.New()
	target := f.seedListing(uuid.New(), listing.StatusApproved)

	report, err := f.service.CreateReport(context.Background(), reporterID, moderation.CreateReportInput{
		TargetID: target.ID,
		Reason:   moderation.ReasonOther,
	})
	require.NoError(t, err)

	dismissed, err := f.service.Resolve(context.Background(), uuid.New(), sec.RoleModerator, report.ID, moderation.ReportDismissed, nil)
	require.NoError(t, err)
	assert.Equal(t, moderation.ReportDismissed, dismissed.Status)

	assert.Equal(t, listing.StatusApproved, target.Status)

	require.Len(t, f.repo.trustEntries, 1)
	entry := f.repo.trustEntries[0]
	assert.Equal(t, reporterID, entry.UserID)
	assert.Equal(t, trust.ActionFalseReport, entry.Action)
	assert.Equal(t, -15, entry.Weight)
}

/*
TestService_Resolve_RequiresModerator keeps resolution away from regular
users and authors.
*/
func TestService_Resolve_RequiresModerator(t *testing.T) {
	f := newFixture()
	target := f.seedListing(uuid.New(), listing.StatusApproved)

	report, err := f.service.CreateReport(context.Background(), uuid.New(), moderation.CreateReportInput{
		TargetID: target.ID,
		Reason:   moderation.ReasonSpam,
	})
	require.NoError(t, err)

	for _, role := range []sec.UserRole{sec.RoleUser, sec.RoleAuthor, sec.RoleDeveloper} {
		_, err = f.service.Resolve(context.Background(), uuid.New(), role, report.ID, moderation.ReportResolved, nil)
		require.Error(t, err)
		assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
	}
	assert.Empty(t, f.repo.trustEntries)
}

/*
TestService_StartReview_ClaimsReport moves PENDING to UNDER_REVIEW and
stamps the reviewer; a second claim fails.
*/
func TestService_StartReview_ClaimsReport(t *testing.T) {
	f := newFixture()
	reviewerID := uuid.New()
	target := f.seedListing(uuid.New(), listing.StatusPending)

	report, err := f.service.CreateReport(context.Background(), uuid.New(), moderation.CreateReportInput{
		TargetID: target.ID,
		Reason:   moderation.ReasonInappropriate,
	})
	require.NoError(t, err)

	reviewing, err := f.service.StartReview(context.Background(), reviewerID, sec.RoleModerator, report.ID)
	require.NoError(t, err)
	assert.Equal(t, moderation.ReportUnderReview, reviewing.Status)
	require.NotNil(t, reviewing.ReviewedByID)
	assert.Equal(t, reviewerID, *reviewing.ReviewedByID)

	_, err = f.service.StartReview(context.Background(), uuid.New(), sec.RoleModerator, report.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidTransition, apperr.As(err).Code)
}

/*
TestService_Approve_CreditsAuthor approves a PENDING listing and credits
its author.
*/
func TestService_Approve_CreditsAuthor(t *testing.T) {
	f := newFixture()
	authorID := uuid.New()
	target := f.seedListing(authorID, listing.StatusPending)

	approved, err := f.service.Approve(context.Background(), uuid.New(), sec.RoleModerator, target.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, listing.StatusApproved, approved.Status)

	require.Len(t, f.repo.trustEntries, 1)
	entry := f.repo.trustEntries[0]
	assert.Equal(t, authorID, entry.UserID)
	assert.Equal(t, trust.ActionListingApproved, entry.Action)
	assert.Equal(t, 5, entry.Weight)
}

/*
TestService_Reject_InvalidTransition refuses to reject an already-approved
listing through the normal path.
*/
func TestService_Reject_InvalidTransition(t *testing.T) {
	f := newFixture()
	target := f.seedListing(uuid.New(), listing.StatusApproved)

	_, err := f.service.Reject(context.Background(), uuid.New(), sec.RoleModerator, target.ID, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidTransition, apperr.As(err).Code)
	assert.Empty(t, f.repo.trustEntries)
}

/*
TestService_Override_ExitsTerminal lets an admin pull a REJECTED listing
back to APPROVED, with mandatory notes and no trust entries.
*/
func TestService_Override_ExitsTerminal(t *testing.T) {
	f := newFixture()
	target := f.seedListing(uuid.New(), listing.StatusRejected)

	overridden, err := f.service.Override(context.Background(), uuid.New(), sec.RoleAdmin, target.ID, listing.StatusApproved, "Appeal upheld")
	require.NoError(t, err)
	assert.Equal(t, listing.StatusApproved, overridden.Status)
	assert.Empty(t, f.repo.trustEntries)
}

/*
TestService_Override_Guards requires the ADMIN tier and written notes.
*/
func TestService_Override_Guards(t *testing.T) {
	f := newFixture()
	target := f.seedListing(uuid.New(), listing.StatusRejected)

	_, err := f.service.Override(context.Background(), uuid.New(), sec.RoleModerator, target.ID, listing.StatusApproved, "Appeal upheld")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	_, err = f.service.Override(context.Background(), uuid.New(), sec.RoleAdmin, target.ID, listing.StatusApproved, "")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}
