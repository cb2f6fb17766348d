// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package auth

import "time"

// # Authentication Constraints

const (
	// RefreshTokenTTL is the duration a session/refresh token remains valid.
	// Long-lived (30 days) to provide a good user experience.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// RefreshTokenLength is the byte length of the random secure token.
	RefreshTokenLength = 32

	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 8

	// MaxCredentialLength caps usernames, emails, and passwords.
	MaxCredentialLength = 120
)
