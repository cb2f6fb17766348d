// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package trust_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compatdex/compatdex/internal/platform/apperr"
	"github.com/compatdex/compatdex/internal/trust"
)

// # In-Memory Fakes

type fakeLedgerRepo struct {
	entries []*trust.Entry
	sums    int
}

func (f *fakeLedgerRepo) Insert(_ context.Context, entry *trust.Entry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeLedgerRepo) SumByUser(_ context.Context, userID string) (int, error) {
	f.sums++
	total := 0
	for _, entry := range f.entries {
		if entry.UserID == userID {
			total += entry.Weight
		}
	}
	return total, nil
}

func (f *fakeLedgerRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]*trust.Entry, int, error) {
	var matched []*trust.Entry
	for _, entry := range f.entries {
		if entry.UserID == userID {
			matched = append(matched, entry)
		}
	}
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

// fakeScoreCache records hits and invalidations; failing simulates an
// unreachable Redis.
type fakeScoreCache struct {
	scores        map[string]int
	failing       bool
	invalidations int
}

func newFakeScoreCache() *fakeScoreCache {
	return &fakeScoreCache{scores: map[string]int{}}
}

func (f *fakeScoreCache) Get(_ context.Context, userID string) (int, bool, error) {
	if f.failing {
		return 0, false, errors.New("connection refused")
	}
	score, hit := f.scores[userID]
	return score, hit, nil
}

func (f *fakeScoreCache) Set(_ context.Context, userID string, score int, _ time.Duration) error {
	if f.failing {
		return errors.New("connection refused")
	}
	f.scores[userID] = score
	return nil
}

func (f *fakeScoreCache) Invalidate(_ context.Context, userID string) error {
	f.invalidations++
	if f.failing {
		return errors.New("connection refused")
	}
	delete(f.scores, userID)
	return nil
}

// # Fixtures

func newTrustFixture(t *testing.T) (*trust.Service, *fakeLedgerRepo, *fakeScoreCache) {
	t.Helper()

	repo := &fakeLedgerRepo{}
	cache := newFakeScoreCache()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return trust.NewService(repo, cache, logger), repo, cache
}

// # Tests

func TestLogAction_AppendsWeightedEntry(t *testing.T) {
	service, repo, _ := newTrustFixture(t)

	entry, err := service.LogAction(context.Background(), "user-1", trust.ActionReportConfirmed, "mod-1", map[string]any{"report_id": "rep-1"})

	require.NoError(t, err)
	assert.Equal(t, 10, entry.Weight)
	require.NotNil(t, entry.TargetUserID)
	assert.Equal(t, "mod-1", *entry.TargetUserID)
	require.Len(t, repo.entries, 1)
}

func TestLogAction_UnknownActionRejected(t *testing.T) {
	service, repo, _ := newTrustFixture(t)

	_, err := service.LogAction(context.Background(), "user-1", trust.Action("VIBES"), "", nil)

	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	assert.Empty(t, repo.entries, "an unweighted row must never reach the ledger")
}

func TestLogAction_InvalidatesCachedScore(t *testing.T) {
	service, _, cache := newTrustFixture(t)
	cache.scores["user-1"] = 40

	_, err := service.LogAction(context.Background(), "user-1", trust.ActionListingApproved, "", nil)

	require.NoError(t, err)
	_, hit := cache.scores["user-1"]
	assert.False(t, hit, "stale score must be dropped on write")
}

func TestGetScore_CacheAside(t *testing.T) {
	service, repo, cache := newTrustFixture(t)
	_, err := service.LogAction(context.Background(), "user-1", trust.ActionReportConfirmed, "", nil)
	require.NoError(t, err)
	_, err = service.LogAction(context.Background(), "user-1", trust.ActionFalseReport, "", nil)
	require.NoError(t, err)

	// First read misses and replays the ledger.
	score, err := service.GetScore(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, -5, score)
	assert.Equal(t, 1, repo.sums)
	assert.Equal(t, -5, cache.scores["user-1"])

	// Second read is served from the cache.
	score, err = service.GetScore(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, -5, score)
	assert.Equal(t, 1, repo.sums)
}

func TestGetScore_CacheFailureFallsThrough(t *testing.T) {
	service, _, cache := newTrustFixture(t)
	cache.failing = true
	_, err := service.LogAction(context.Background(), "user-1", trust.ActionBanIssued, "", nil)
	require.NoError(t, err)

	score, err := service.GetScore(context.Background(), "user-1")

	require.NoError(t, err, "an unreachable cache must not fail the read")
	assert.Equal(t, -50, score)
}

func TestGetStanding_DerivesLevel(t *testing.T) {
	service, _, _ := newTrustFixture(t)
	for i := 0; i < 6; i++ {
		_, err := service.LogAction(context.Background(), "user-1", trust.ActionReportConfirmed, "", nil)
		require.NoError(t, err)
	}

	standing, err := service.GetStanding(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, 60, standing.Score)
	assert.Equal(t, trust.Level(2), standing.Level)
}

func TestOnLedgerWrite_SkipsEmptyIDs(t *testing.T) {
	service, _, cache := newTrustFixture(t)
	cache.scores["user-1"] = 25

	service.OnLedgerWrite(context.Background(), "", "user-1")

	assert.Equal(t, 1, cache.invalidations)
	_, hit := cache.scores["user-1"]
	assert.False(t, hit)
}

func TestGetHistory_Pagination(t *testing.T) {
	service, _, _ := newTrustFixture(t)
	actions := []trust.Action{trust.ActionReportConfirmed, trust.ActionListingApproved, trust.ActionBanLifted}
	for _, action := range actions {
		_, err := service.LogAction(context.Background(), "user-1", action, "", nil)
		require.NoError(t, err)
	}

	page, total, err := service.GetHistory(context.Background(), "user-1", 2, 2)

	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 1)
}
