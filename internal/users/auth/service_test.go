// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package auth_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditpkg "github.com/compatdex/compatdex/internal/audit"
	"github.com/compatdex/compatdex/internal/perm"
	"github.com/compatdex/compatdex/internal/platform/apperr"
	"github.com/compatdex/compatdex/internal/platform/sec"
	"github.com/compatdex/compatdex/internal/users/auth"
	"github.com/compatdex/compatdex/pkg/uuid"
)

// # In-Memory Fakes

type fakeUserRepo struct {
	users map[string]*auth.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*auth.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *auth.User) error {
	for _, existing := range f.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return apperr.Conflict(apperr.CodeConflict, "Username or email is already registered")
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*auth.User, error) {
	existing, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return existing, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, existing := range f.users {
		if existing.Email == email {
			return existing, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	for _, existing := range f.users {
		if existing.Username == username {
			return existing, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeUserRepo) FindRole(_ context.Context, userID string) (sec.UserRole, error) {
	existing, ok := f.users[userID]
	if !ok {
		return "", apperr.NotFound("User")
	}
	return existing.Role, nil
}

func (f *fakeUserRepo) UpdateLastLogin(_ context.Context, userID string) error {
	if existing, ok := f.users[userID]; ok {
		now := time.Now()
		existing.LastLoginAt = &now
	}
	return nil
}

func (f *fakeUserRepo) UpdateRole(_ context.Context, userID string, newRole sec.UserRole, _ string) (*auth.User, error) {
	existing, ok := f.users[userID]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	if existing.Role == newRole {
		return nil, apperr.Conflict(apperr.CodeInvalidTransition, "User already has this role")
	}
	existing.Role = newRole
	return existing, nil
}

// fakeSessionRepo stores token hashes in memory; TTLs are ignored.
type fakeSessionRepo struct {
	sessions map[string]string
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]string{}}
}

func (f *fakeSessionRepo) Set(_ context.Context, tokenHash, userID string, _ time.Duration) error {
	f.sessions[tokenHash] = userID
	return nil
}

func (f *fakeSessionRepo) Get(_ context.Context, tokenHash string) (string, error) {
	userID, ok := f.sessions[tokenHash]
	if !ok {
		return "", apperr.NotFound("Session")
	}
	return userID, nil
}

func (f *fakeSessionRepo) Delete(_ context.Context, tokenHash string) error {
	delete(f.sessions, tokenHash)
	return nil
}

// fakeTokenProvider issues predictable, unsigned tokens.
type fakeTokenProvider struct{}

func (fakeTokenProvider) GenerateAccessToken(userID, _ string, role sec.UserRole, _ time.Duration) (string, error) {
	return fmt.Sprintf("token:%s:%s", userID, role), nil
}

// fakeGrantRepo holds no explicit grants.
type fakeGrantRepo struct{}

func (fakeGrantRepo) ListKeysByUser(context.Context, string) ([]string, error) { return nil, nil }
func (fakeGrantRepo) ListByUser(context.Context, string) ([]*perm.Grant, error) {
	return nil, nil
}
func (fakeGrantRepo) Insert(context.Context, *perm.Grant, *auditpkg.Entry) (bool, error) {
	return true, nil
}
func (fakeGrantRepo) Delete(context.Context, string, string, *auditpkg.Entry) (bool, error) {
	return true, nil
}

// # Fixture

type fixture struct {
	service  *auth.Service
	users    *fakeUserRepo
	sessions *fakeSessionRepo
}

func newFixture() *fixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	perms := perm.NewService(fakeGrantRepo{}, logger)

	return &fixture{
		service:  auth.NewService(users, sessions, fakeTokenProvider{}, perms, logger),
		users:    users,
		sessions: sessions,
	}
}

func (f *fixture) seedUser(t *testing.T, role sec.UserRole) *auth.User {
	t.Helper()
	hash, err := sec.HashPassword("correct horse battery")
	require.NoError(t, err)
	user := &auth.User{
		ID:           uuid.New(),
		Username:     "user-" + uuid.New()[:8],
		Email:        uuid.New()[:8] + "@compatdex.app",
		PasswordHash: hash,
		Role:         role,
	}
	f.users.users[user.ID] = user
	return user
}

// # Tests

/*
TestService_Register_EntersUserTier enrolls a new member at the lowest tier
with a hashed password.
*/
func TestService_Register_EntersUserTier(t *testing.T) {
	f := newFixture()

	created, err := f.service.Register(context.Background(), auth.RegisterInput{
		Username: "retrofan",
		Email:    "retrofan@example.com",
		Password: "hunter2hunter2",
	})

	require.NoError(t, err)
	assert.Equal(t, sec.RoleUser, created.Role)
	assert.NotEqual(t, "hunter2hunter2", created.PasswordHash)
	assert.True(t, sec.CheckPasswordHash("hunter2hunter2", created.PasswordHash))
}

/*
TestService_Register_Validation rejects malformed enrollments.
*/
func TestService_Register_Validation(t *testing.T) {
	testCases := []struct {
		name  string
		input auth.RegisterInput
	}{
		{"short password", auth.RegisterInput{Username: "retrofan", Email: "a@b.io", Password: "short"}},
		{"bad email", auth.RegisterInput{Username: "retrofan", Email: "not-an-email", Password: "hunter2hunter2"}},
		{"missing username", auth.RegisterInput{Email: "a@b.io", Password: "hunter2hunter2"}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			f := newFixture()

			_, err := f.service.Register(context.Background(), testCase.input)

			require.Error(t, err)
			assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
			assert.Empty(t, f.users.users)
		})
	}
}

/*
TestService_Register_DuplicateUsername surfaces the uniqueness conflict.
*/
func TestService_Register_DuplicateUsername(t *testing.T) {
	f := newFixture()
	input := auth.RegisterInput{
		Username: "retrofan",
		Email:    "retrofan@example.com",
		Password: "hunter2hunter2",
	}

	_, err := f.service.Register(context.Background(), input)
	require.NoError(t, err)

	input.Email = "other@example.com"
	_, err = f.service.Register(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeConflict, apperr.As(err).Code)
}

/*
TestService_Login_IssuesSession exchanges valid credentials for a token
pair and stores the hashed refresh token.
*/
func TestService_Login_IssuesSession(t *testing.T) {
	f := newFixture()
	user := f.seedUser(t, sec.RoleAuthor)

	session, err := f.service.Login(context.Background(), auth.LoginInput{
		Login:    user.Email,
		Password: "correct horse battery",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.NotNil(t, user.LastLoginAt)

	// The raw refresh token never touches the store.
	_, stored := f.sessions.sessions[session.RefreshToken]
	assert.False(t, stored)
	userID, err := f.sessions.Get(context.Background(), sec.HashToken(session.RefreshToken))
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

/*
TestService_Login_WrongPassword returns the generic unauthorized message.
*/
func TestService_Login_WrongPassword(t *testing.T) {
	f := newFixture()
	user := f.seedUser(t, sec.RoleUser)

	_, err := f.service.Login(context.Background(), auth.LoginInput{
		Login:    user.Username,
		Password: "wrong",
	})

	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
	assert.Empty(t, f.sessions.sessions)
}

/*
TestService_RefreshSession_Rotates revokes the presented token and issues a
new one; replaying the old token fails.
*/
func TestService_RefreshSession_Rotates(t *testing.T) {
	f := newFixture()
	user := f.seedUser(t, sec.RoleUser)

	first, err := f.service.Login(context.Background(), auth.LoginInput{
		Login:    user.Email,
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	second, err := f.service.RefreshSession(context.Background(), first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	_, err = f.service.RefreshSession(context.Background(), first.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

/*
TestService_Logout_Idempotent succeeds for unknown tokens and revokes known
ones.
*/
func TestService_Logout_Idempotent(t *testing.T) {
	f := newFixture()
	user := f.seedUser(t, sec.RoleUser)

	session, err := f.service.Login(context.Background(), auth.LoginInput{
		Login:    user.Email,
		Password: "correct horse battery",
	})
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(context.Background(), session.RefreshToken))
	require.NoError(t, f.service.Logout(context.Background(), session.RefreshToken))
	assert.Empty(t, f.sessions.sessions)
}

/*
TestService_ChangeRole_OutrankingInvariant checks the double outranking
rule: the actor must sit strictly above both the target's current role and
the role being assigned.
*/
func TestService_ChangeRole_OutrankingInvariant(t *testing.T) {
	testCases := []struct {
		name        string
		actorRole   sec.UserRole
		currentRole sec.UserRole
		newRole     sec.UserRole
		wantCode    string
	}{
		{"admin promotes user to moderator", sec.RoleAdmin, sec.RoleUser, sec.RoleModerator, ""},
		{"admin demotes moderator", sec.RoleAdmin, sec.RoleModerator, sec.RoleUser, ""},
		{"super admin mints admin", sec.RoleSuperAdmin, sec.RoleModerator, sec.RoleAdmin, ""},
		{"admin cannot mint a peer", sec.RoleAdmin, sec.RoleUser, sec.RoleAdmin, "FORBIDDEN"},
		{"admin cannot demote a peer", sec.RoleAdmin, sec.RoleAdmin, sec.RoleUser, "FORBIDDEN"},
		{"moderator lacks the capability", sec.RoleModerator, sec.RoleUser, sec.RoleAuthor, "FORBIDDEN"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			f := newFixture()
			actor := f.seedUser(t, testCase.actorRole)
			target := f.seedUser(t, testCase.currentRole)

			updated, err := f.service.ChangeRole(context.Background(), actor.ID, testCase.actorRole, target.ID, testCase.newRole)

			if testCase.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, testCase.newRole, updated.Role)
			} else {
				require.Error(t, err)
				assert.Equal(t, testCase.wantCode, apperr.As(err).Code)
				assert.Equal(t, testCase.currentRole, target.Role)
			}
		})
	}
}

/*
TestService_ChangeRole_NeverSelf rejects self-service promotions.
*/
func TestService_ChangeRole_NeverSelf(t *testing.T) {
	f := newFixture()
	actor := f.seedUser(t, sec.RoleAdmin)

	_, err := f.service.ChangeRole(context.Background(), actor.ID, sec.RoleAdmin, actor.ID, sec.RoleSuperAdmin)

	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
	assert.Equal(t, sec.RoleAdmin, actor.Role)
}
