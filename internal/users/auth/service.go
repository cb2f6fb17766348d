// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/compatdex/compatdex/internal/perm"
	"github.com/compatdex/compatdex/internal/platform/apperr"
	"github.com/compatdex/compatdex/internal/platform/constants"
	"github.com/compatdex/compatdex/internal/platform/sec"
	"github.com/compatdex/compatdex/internal/platform/validate"
	"github.com/compatdex/compatdex/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for generating access tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	GenerateAccessToken(userID, username string, role sec.UserRole, timeToLive time.Duration) (string, error)
}

// Service implements user authentication and role administration.
type Service struct {
	users    UserRepository
	sessions SessionRepository
	tokens   TokenProvider
	perms    *perm.Service
	logger   *slog.Logger
}

// NewService constructs a new auth [Service].
func NewService(
	users UserRepository,
	sessions SessionRepository,
	tokens TokenProvider,
	perms *perm.Service,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		perms:    perms,
		logger:   logger,
	}
}

// # Registration Flow

/*
Register validates, hashes, and persists a brand new user account.

Description: New members always enter at the USER tier; promotion happens
only through ChangeRole.

Parameters:
  - ctx: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - error: Validation, conflict, or storage failures
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	validator := &validate.Validator{}
	validator.Required("username", input.Username).
		Username("username", input.Username).
		MaxLen("username", input.Username, MaxCredentialLength).
		Required("email", input.Email).
		Email("email", input.Email).
		MaxLen("email", input.Email, MaxCredentialLength).
		Required("password", input.Password).
		MinLen("password", input.Password, MinPasswordLength).
		MaxLen("password", input.Password, MaxCredentialLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Role:         sec.RoleUser,
	}

	// The unique indexes decide collisions; a pre-check here would just
	// race against concurrent registrations.
	if err := service.users.Create(ctx, user); err != nil {
		return nil, err
	}

	service.logger.Info("user_registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// # Authentication Flow

/*
Login validates credentials and issues an access/refresh token pair.

Description: Looks the account up by email or username, compares the
password hash in constant time, and stores the hashed refresh token in the
session store. Failures are always the same generic message to prevent
account enumeration.

Parameters:
  - ctx: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready session identifiers
  - error: Unauthorized or internal failures
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (*LoginSession, error) {
	user, err := service.users.FindByEmail(ctx, input.Login)
	if err != nil {
		user, err = service.users.FindByUsername(ctx, input.Login)
	}
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	session, err := service.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := service.users.UpdateLastLogin(ctx, user.ID); err != nil {
		service.logger.Warn("last_login_stamp_failed",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	service.logger.Info("user_logged_in", slog.String("user_id", user.ID))
	return session, nil
}

/*
RefreshSession implements refresh token rotation.

Description: Resolves the presented token, revokes it immediately so a
replayed token dies, and issues a fresh pair.

Parameters:
  - ctx: context.Context
  - refreshToken: string

Returns:
  - *LoginSession: New session credentials
  - error: Unauthorized or storage failures
*/
func (service *Service) RefreshSession(ctx context.Context, refreshToken string) (*LoginSession, error) {
	tokenHash := sec.HashToken(refreshToken)
	userID, err := service.sessions.Get(ctx, tokenHash)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	if err := service.sessions.Delete(ctx, tokenHash); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_revoke_failed: %w", err)
	}

	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperr.Unauthorized("User not found")
	}

	return service.issueSession(ctx, user)
}

/*
Logout revokes the presented refresh token.

Description: Idempotent; an unknown or already-revoked token is still a
successful logout.

Parameters:
  - ctx: context.Context
  - refreshToken: string

Returns:
  - error: Revocation failures
*/
func (service *Service) Logout(ctx context.Context, refreshToken string) error {
	return service.sessions.Delete(ctx, sec.HashToken(refreshToken))
}

// issueSession generates and persists a token pair for an authenticated user.
func (service *Service) issueSession(ctx context.Context, user *User) (*LoginSession, error) {
	accessToken, err := service.tokens.GenerateAccessToken(user.ID, user.Username, user.Role, constants.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	refreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	expiresAt := time.Now().Add(RefreshTokenTTL)
	if err := service.sessions.Set(ctx, sec.HashToken(refreshToken), user.ID, RefreshTokenTTL); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: expiresAt,
		User:                  user,
	}, nil
}

// # Directory Reads

// Me returns the authenticated user's own account.
func (service *Service) Me(ctx context.Context, userID string) (*User, error) {
	return service.users.FindByID(ctx, userID)
}

// FindRole returns a user's current role from storage.
//
// This is the authoritative role read the ban registry and permission
// checks depend on; JWT claims are never trusted for outranking decisions.
func (service *Service) FindRole(ctx context.Context, userID string) (sec.UserRole, error) {
	return service.users.FindRole(ctx, userID)
}

// # Role Administration

/*
ChangeRole moves a user to a different tier of the hierarchy.

Description: Requires the users:change_role permission (ADMIN and above).
The actor must strictly outrank both the target's current role and the role
being assigned, and can never change their own; an admin can therefore
neither demote a peer nor mint one. Audited with a before/after diff.

Parameters:
  - ctx: context.Context
  - actorID: string
  - actorRole: sec.UserRole
  - targetUserID: string
  - newRole: sec.UserRole

Returns:
  - *User: Updated record
  - error: Validation, authorization, conflict, or persistence failures
*/
func (service *Service) ChangeRole(ctx context.Context, actorID string, actorRole sec.UserRole, targetUserID string, newRole sec.UserRole) (*User, error) {
	validator := &validate.Validator{}
	validator.Custom("role", !newRole.IsValid(), "Unknown role").
		Custom("user_id", targetUserID == actorID, "You cannot change your own role")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.perms.Require(ctx, actorID, actorRole, perm.KeyUserChangeRole); err != nil {
		return nil, err
	}

	currentRole, err := service.users.FindRole(ctx, targetUserID)
	if err != nil {
		return nil, err
	}
	if !actorRole.Outranks(currentRole) || !actorRole.Outranks(newRole) {
		return nil, apperr.Forbidden("You must outrank both the current and the assigned role")
	}

	updated, err := service.users.UpdateRole(ctx, targetUserID, newRole, actorID)
	if err != nil {
		return nil, err
	}

	service.logger.Info("user_role_changed",
		slog.String("user_id", targetUserID),
		slog.String("actor_id", actorID),
		slog.String("old_role", string(currentRole)),
		slog.String("new_role", string(newRole)),
	)
	return updated, nil
}
