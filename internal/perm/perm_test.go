// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package perm_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compatdex/compatdex/internal/audit"
	"github.com/compatdex/compatdex/internal/perm"
	"github.com/compatdex/compatdex/internal/platform/apperr"
	"github.com/compatdex/compatdex/internal/platform/sec"
)

// # In-Memory Fakes

type fakeGrantRepo struct {
	grants       map[string]map[string]*perm.Grant // userID → key → grant
	auditEntries []*audit.Entry
	lookups      int
}

func newFakeGrantRepo() *fakeGrantRepo {
	return &fakeGrantRepo{grants: map[string]map[string]*perm.Grant{}}
}

func (f *fakeGrantRepo) ListKeysByUser(_ context.Context, userID string) ([]string, error) {
	f.lookups++
	keys := make([]string, 0, len(f.grants[userID]))
	for key := range f.grants[userID] {
		keys = append(keys, key)
	}
	return keys, nil
}

func (f *fakeGrantRepo) ListByUser(_ context.Context, userID string) ([]*perm.Grant, error) {
	grants := make([]*perm.Grant, 0, len(f.grants[userID]))
	for _, grant := range f.grants[userID] {
		grants = append(grants, grant)
	}
	return grants, nil
}

func (f *fakeGrantRepo) Insert(_ context.Context, grant *perm.Grant, auditEntry *audit.Entry) (bool, error) {
	if f.grants[grant.UserID] == nil {
		f.grants[grant.UserID] = map[string]*perm.Grant{}
	}
	if _, held := f.grants[grant.UserID][grant.PermissionKey]; held {
		return false, nil
	}
	f.grants[grant.UserID][grant.PermissionKey] = grant
	f.auditEntries = append(f.auditEntries, auditEntry)
	return true, nil
}

func (f *fakeGrantRepo) Delete(_ context.Context, userID, permissionKey string, auditEntry *audit.Entry) (bool, error) {
	if _, held := f.grants[userID][permissionKey]; !held {
		return false, nil
	}
	delete(f.grants[userID], permissionKey)
	f.auditEntries = append(f.auditEntries, auditEntry)
	return true, nil
}

func newPermFixture(t *testing.T) (*perm.Service, *fakeGrantRepo) {
	t.Helper()

	repo := newFakeGrantRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return perm.NewService(repo, logger), repo
}

// # Registry

func TestLookup_UnknownKey(t *testing.T) {
	_, known := perm.Lookup("ban:obliterate")

	assert.False(t, known)
}

// TestRegistry_Thresholds pins the authority design: archive and override
// sit strictly above the moderator tier.
func TestRegistry_Thresholds(t *testing.T) {
	tests := []struct {
		key     string
		minimum sec.UserRole
	}{
		{perm.KeyBanCreate, sec.RoleModerator},
		{perm.KeyBanLift, sec.RoleModerator},
		{perm.KeyBanArchive, sec.RoleAdmin},
		{perm.KeyModerationApprove, sec.RoleModerator},
		{perm.KeyModerationOverride, sec.RoleAdmin},
		{perm.KeyListingVerify, sec.RoleDeveloper},
		{perm.KeyUserChangeRole, sec.RoleAdmin},
		{perm.KeyAuditView, sec.RoleAdmin},
	}

	for _, test := range tests {
		t.Run(test.key, func(t *testing.T) {
			permission, known := perm.Lookup(test.key)

			require.True(t, known)
			assert.Equal(t, test.minimum, permission.MinimumRole)
		})
	}
}

// # Checks

func TestHas_RoleThreshold(t *testing.T) {
	service, repo := newPermFixture(t)

	assert.True(t, service.Has(context.Background(), "mod-1", sec.RoleModerator, perm.KeyBanCreate))
	assert.True(t, service.Has(context.Background(), "admin-1", sec.RoleAdmin, perm.KeyBanCreate))
	assert.False(t, service.Has(context.Background(), "user-1", sec.RoleUser, perm.KeyBanCreate))

	// Role passes never consult the grant table.
	assert.Equal(t, 1, repo.lookups, "only the denied check should have hit the repository")
}

func TestHas_UnknownKeyFailsClosed(t *testing.T) {
	service, _ := newPermFixture(t)

	assert.False(t, service.Has(context.Background(), "admin-1", sec.RoleSuperAdmin, "ban:obliterate"))
}

func TestHas_ExplicitGrantOverride(t *testing.T) {
	service, _ := newPermFixture(t)
	require.NoError(t, service.Grant(context.Background(), "admin-1", "user-1", perm.KeyListingVerify))

	assert.True(t, service.Has(context.Background(), "user-1", sec.RoleUser, perm.KeyListingVerify))
	assert.False(t, service.Has(context.Background(), "user-1", sec.RoleUser, perm.KeyBanCreate),
		"a grant covers exactly one key")
}

func TestRequire_Forbidden(t *testing.T) {
	service, _ := newPermFixture(t)

	err := service.Require(context.Background(), "user-1", sec.RoleUser, perm.KeyBanArchive)

	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}

// # Grant Management

func TestGrant_AuditsAndInvalidatesCache(t *testing.T) {
	service, repo := newPermFixture(t)

	// Prime the (empty) grant cache for the user.
	assert.False(t, service.Has(context.Background(), "user-1", sec.RoleUser, perm.KeyListingVerify))

	require.NoError(t, service.Grant(context.Background(), "admin-1", "user-1", perm.KeyListingVerify))

	assert.True(t, service.Has(context.Background(), "user-1", sec.RoleUser, perm.KeyListingVerify),
		"the cached empty grant set must be dropped on grant")
	require.Len(t, repo.auditEntries, 1)
	assert.Equal(t, audit.ActionGrantCreated, repo.auditEntries[0].Action)
}

func TestGrant_UnknownKeyRejected(t *testing.T) {
	service, repo := newPermFixture(t)

	err := service.Grant(context.Background(), "admin-1", "user-1", "ban:obliterate")

	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	assert.Empty(t, repo.auditEntries)
}

func TestGrant_RegrantIsSilentNoop(t *testing.T) {
	service, repo := newPermFixture(t)
	require.NoError(t, service.Grant(context.Background(), "admin-1", "user-1", perm.KeyListingVerify))

	require.NoError(t, service.Grant(context.Background(), "admin-2", "user-1", perm.KeyListingVerify))

	assert.Len(t, repo.auditEntries, 1, "a no-op regrant must not produce an audit entry")
}

func TestRevoke(t *testing.T) {
	service, repo := newPermFixture(t)
	require.NoError(t, service.Grant(context.Background(), "admin-1", "user-1", perm.KeyListingVerify))

	require.NoError(t, service.Revoke(context.Background(), "admin-1", "user-1", perm.KeyListingVerify))

	assert.False(t, service.Has(context.Background(), "user-1", sec.RoleUser, perm.KeyListingVerify))
	require.Len(t, repo.auditEntries, 2)
	assert.Equal(t, audit.ActionGrantRevoked, repo.auditEntries[1].Action)
}

func TestRevoke_MissingGrant(t *testing.T) {
	service, _ := newPermFixture(t)

	err := service.Revoke(context.Background(), "admin-1", "user-1", perm.KeyListingVerify)

	require.Error(t, err)
	assert.Equal(t, apperr.CodeNotFound, apperr.As(err).Code)
}
