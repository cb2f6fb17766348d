// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

/*
Package auth implements the local identity provider.

It registers accounts, verifies credentials, and issues the RS256 access
tokens the rest of the engine trusts as the request actor. The user row is
also the single source of truth for a member's role: role-sensitive
mutations elsewhere (bans, grants) re-read it here instead of trusting the
role baked into a possibly stale JWT.

Sessions are refresh tokens stored hashed in Redis with their own TTL;
access tokens stay short-lived and stateless.
*/
package auth

import (
	"time"

	"github.com/compatdex/compatdex/internal/platform/sec"
)

// # Domain Entities

// User represents a registered member of the Compatdex platform.
type User struct {
	ID           string       `json:"id"` // UUIDv7
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	Role         sec.UserRole `json:"role"`
	LastLoginAt  *time.Time   `json:"last_login_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// # Inputs

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Login    string // Username or email.
	Password string
}

// LoginSession represents a successfully established user session.
type LoginSession struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	User                  *User     `json:"user"`
}
