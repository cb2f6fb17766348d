// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package listing_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compatdex/compatdex/internal/audit"
	"github.com/compatdex/compatdex/internal/content/listing"
	"github.com/compatdex/compatdex/internal/perm"
	"github.com/compatdex/compatdex/internal/platform/apperr"
	"github.com/compatdex/compatdex/internal/platform/sec"
	"github.com/compatdex/compatdex/internal/trust"
	"github.com/compatdex/compatdex/pkg/uuid"
)

// # In-Memory Fakes

type fakeListingRepo struct {
	listings     map[string]*listing.Listing
	trustEntries []*trust.Entry
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{listings: map[string]*listing.Listing{}}
}

func (f *fakeListingRepo) Insert(_ context.Context, created *listing.Listing) error {
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	f.listings[created.ID] = created
	return nil
}

func (f *fakeListingRepo) FindByID(_ context.Context, id string) (*listing.Listing, error) {
	existing, ok := f.listings[id]
	if !ok {
		return nil, apperr.NotFound("Listing")
	}
	return existing, nil
}

func (f *fakeListingRepo) FindBySlug(_ context.Context, slug string) (*listing.Listing, error) {
	for _, existing := range f.listings {
		if existing.Slug == slug {
			return existing, nil
		}
	}
	return nil, apperr.NotFound("Listing")
}

func (f *fakeListingRepo) List(_ context.Context, _ listing.Filter, _, _ int) ([]*listing.Listing, int, error) {
	var out []*listing.Listing
	for _, existing := range f.listings {
		out = append(out, existing)
	}
	return out, len(out), nil
}

func (f *fakeListingRepo) Verify(_ context.Context, listingID, verifierID string, trustEntry *trust.Entry) (*listing.Listing, error) {
	existing, ok := f.listings[listingID]
	if !ok {
		return nil, apperr.NotFound("Listing")
	}
	if existing.IsVerified {
		return nil, apperr.Conflict(apperr.CodeInvalidTransition, "Listing is already verified")
	}
	existing.IsVerified = true
	existing.VerifiedByID = &verifierID
	f.trustEntries = append(f.trustEntries, trustEntry)
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

func newService(repo *fakeListingRepo) *listing.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	perms := perm.NewService(fakeGrantRepo{}, logger)
	trustService := trust.NewService(&fakeTrustRepo{}, nil, logger)
	return listing.NewService(repo, perms, trustService, nil, logger)
}

// # Tests

/*
TestService_Submit_EntersPending creates a listing in the moderation queue
with a slug derived from its identity fields.
*/
func TestService_Submit_EntersPending(t *testing.T) {
	repo := newFakeListingRepo()
	service := newService(repo)
	authorID := uuid.New()

	created, err := service.Submit(context.Background(), authorID, listing.SubmitInput{
		GameTitle:   "Metroid Prime",
		Emulator:    "Dolphin",
		Device:      "Steam Deck",
		Performance: "perfect",
	})

	require.NoError(t, err)
	assert.Equal(t, listing.StatusPending, created.Status)
	assert.Equal(t, authorID, created.AuthorID)
	assert.Equal(t, "metroid-prime-dolphin-steam-deck", created.Slug)
	assert.False(t, created.IsVerified)
}

/*
TestService_Submit_Validation rejects malformed submissions before any
write.
*/
func TestService_Submit_Validation(t *testing.T) {
	testCases := []struct {
		name  string
		input listing.SubmitInput
	}{
		{"missing game title", listing.SubmitInput{Emulator: "dolphin", Device: "deck", Performance: "perfect"}},
		{"missing emulator", listing.SubmitInput{GameTitle: "Okami", Device: "deck", Performance: "perfect"}},
		{"missing device", listing.SubmitInput{GameTitle: "Okami", Emulator: "dolphin", Performance: "perfect"}},
		{"unknown performance rating", listing.SubmitInput{GameTitle: "Okami", Emulator: "dolphin", Device: "deck", Performance: "flawless"}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			repo := newFakeListingRepo()
			service := newService(repo)

			_, err := service.Submit(context.Background(), uuid.New(), testCase.input)

			require.Error(t, err)
			assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
			assert.Empty(t, repo.listings)
		})
	}
}

/*
TestService_Verify_CreditsAuthor lets a developer verify someone else's
listing and credits the author, not the verifier.
*/
func TestService_Verify_CreditsAuthor(t *testing.T) {
	repo := newFakeListingRepo()
	service := newService(repo)
	authorID := uuid.New()
	verifierID := uuid.New()

	created, err := service.Submit(context.Background(), authorID, listing.SubmitInput{
		GameTitle:   "Persona 3",
		Emulator:    "PCSX2",
		Device:      "rog-ally",
		Performance: "playable",
	})
	require.NoError(t, err)

	verified, err := service.Verify(context.Background(), verifierID, sec.RoleDeveloper, created.ID)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	require.NotNil(t, verified.VerifiedByID)
	assert.Equal(t, verifierID, *verified.VerifiedByID)

	require.Len(t, repo.trustEntries, 1)
	entry := repo.trustEntries[0]
	assert.Equal(t, authorID, entry.UserID)
	assert.Equal(t, trust.ActionListingDeveloperVerified, entry.Action)
	assert.Equal(t, 20, entry.Weight)
	require.NotNil(t, entry.TargetUserID)
	assert.Equal(t, verifierID, *entry.TargetUserID)
}

/*
TestService_Verify_Guards rejects self-verification and callers below
DEVELOPER.
*/
func TestService_Verify_Guards(t *testing.T) {
	repo := newFakeListingRepo()
	service := newService(repo)
	authorID := uuid.New()

	created, err := service.Submit(context.Background(), authorID, listing.SubmitInput{
		GameTitle:   "Persona 3",
		Emulator:    "PCSX2",
		Device:      "rog-ally",
		Performance: "playable",
	})
	require.NoError(t, err)

	_, err = service.Verify(context.Background(), authorID, sec.RoleDeveloper, created.ID)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)

	_, err = service.Verify(context.Background(), uuid.New(), sec.RoleAuthor, created.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	assert.Empty(t, repo.trustEntries)
}

/*
TestService_Verify_OnlyOnce conflicts on a second verification.
*/
func TestService_Verify_OnlyOnce(t *testing.T) {
	repo := newFakeListingRepo()
	service := newService(repo)

	created, err := service.Submit(context.Background(), uuid.New(), listing.SubmitInput{
		GameTitle:   "Persona 3",
		Emulator:    "PCSX2",
		Device:      "rog-ally",
		Performance: "playable",
	})
	require.NoError(t, err)

	_, err = service.Verify(context.Background(), uuid.New(), sec.RoleDeveloper, created.ID)
	require.NoError(t, err)

	_, err = service.Verify(context.Background(), uuid.New(), sec.RoleDeveloper, created.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidTransition, apperr.As(err).Code)
	assert.Len(t, repo.trustEntries, 1)
}
