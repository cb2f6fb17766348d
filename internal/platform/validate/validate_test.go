// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package validate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compatdex/compatdex/internal/platform/apperr"
	"github.com/compatdex/compatdex/internal/platform/validate"
)

func TestValidator_PassingChainReturnsNil(t *testing.T) {
	validator := &validate.Validator{}

	err := validator.
		Required("reason", "spam").
		MaxLen("reason", "spam", 500).
		UUID("target_id", "0192d5a0-7b3c-7def-8a01-abcdef012345").
		OneOf("status", "PENDING", "PENDING", "APPROVED").
		Err()

	assert.NoError(t, err)
	assert.False(t, validator.HasErrors())
}

func TestValidator_CollectsAllFailures(t *testing.T) {
	validator := &validate.Validator{}

	err := validator.
		Required("reason", "   ").
		UUID("target_id", "not-a-uuid").
		OneOf("status", "LIMBO", "PENDING", "APPROVED").
		Err()

	require.Error(t, err)
	appErr := apperr.As(err)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	assert.Len(t, appErr.Details, 3, "the chain must not short-circuit")
}

func TestValidator_MaxLenCountsRunes(t *testing.T) {
	validator := &validate.Validator{}

	// Five runes, fifteen bytes.
	err := validator.MaxLen("notes", "ばんごはん", 6).Err()

	assert.NoError(t, err)
}

func TestValidator_Username(t *testing.T) {
	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{name: "plain handle", value: "dolphin_fan_99", valid: true},
		{name: "too short", value: "ab", valid: false},
		{name: "spaces", value: "dolphin fan", valid: false},
		{name: "punctuation", value: "dolphin!", valid: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := (&validate.Validator{}).Username("username", test.value).Err()

			if test.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidator_Future(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	assert.Error(t, (&validate.Validator{}).Future("expires_at", &past).Err())
	assert.NoError(t, (&validate.Validator{}).Future("expires_at", &future).Err())
	assert.NoError(t, (&validate.Validator{}).Future("expires_at", nil).Err(),
		"nil means a permanent ban, not an invalid one")
}

func TestValidator_Custom(t *testing.T) {
	err := (&validate.Validator{}).
		Custom("target_id", true, "You cannot report your own listing").
		Err()

	require.Error(t, err)
	appErr := apperr.As(err)
	require.Len(t, appErr.Details, 1)
	assert.Equal(t, "target_id", appErr.Details[0].Field)
	assert.Equal(t, "You cannot report your own listing", appErr.Details[0].Message)
}
