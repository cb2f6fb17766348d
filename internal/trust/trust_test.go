// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package trust_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compatdex/compatdex/internal/trust"
)

// # Weight Table

// TestWeightOf pins the full reputation economy. A diff in this table is a
// deliberate policy change, not a refactor.
func TestWeightOf(t *testing.T) {
	tests := []struct {
		action trust.Action
		weight int
	}{
		{trust.ActionReportConfirmed, +10},
		{trust.ActionFalseReport, -15},
		{trust.ActionListingApproved, +5},
		{trust.ActionListingRejected, -2},
		{trust.ActionListingDeveloperVerified, +20},
		{trust.ActionBanIssued, -50},
		{trust.ActionBanLifted, +10},
	}

	for _, test := range tests {
		t.Run(string(test.action), func(t *testing.T) {
			weight, known := trust.WeightOf(test.action)

			require.True(t, known)
			assert.Equal(t, test.weight, weight)
		})
	}
}

func TestWeightOf_UnknownAction(t *testing.T) {
	_, known := trust.WeightOf(trust.Action("KARMA_BONUS"))

	assert.False(t, known)
}

// # Level Thresholds

// TestLevelOf exercises each threshold boundary: the bound itself stays in
// the lower level, one point above crosses.
func TestLevelOf(t *testing.T) {
	tests := []struct {
		score int
		level trust.Level
	}{
		{score: -120, level: 0},
		{score: 0, level: 0},
		{score: 1, level: 1},
		{score: 50, level: 1},
		{score: 51, level: 2},
		{score: 150, level: 2},
		{score: 151, level: 3},
		{score: 400, level: 3},
		{score: 401, level: 4},
		{score: 9000, level: 4},
	}

	for _, test := range tests {
		assert.Equal(t, test.level, trust.LevelOf(test.score), "score %d", test.score)
	}
}

// # Entry Construction

func TestNewEntry(t *testing.T) {
	entry, known := trust.NewEntry("user-1", trust.ActionBanIssued)

	require.True(t, known)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "user-1", entry.UserID)
	assert.Equal(t, -50, entry.Weight)
	assert.Nil(t, entry.TargetUserID)
	assert.Nil(t, entry.Metadata)
}

func TestNewEntry_UnknownAction(t *testing.T) {
	entry, known := trust.NewEntry("user-1", trust.Action("GOOD_VIBES"))

	assert.False(t, known)
	assert.Nil(t, entry)
}

func TestEntry_Chainers(t *testing.T) {
	entry, known := trust.NewEntry("user-1", trust.ActionBanLifted)
	require.True(t, known)

	entry.WithTarget("mod-1").WithMetadata(map[string]any{"ban_id": "ban-1"})

	require.NotNil(t, entry.TargetUserID)
	assert.Equal(t, "mod-1", *entry.TargetUserID)
	assert.Equal(t, "ban-1", entry.Metadata["ban_id"])
}

func TestEntry_WithMetadata_EmptyStaysNil(t *testing.T) {
	entry, known := trust.NewEntry("user-1", trust.ActionListingApproved)
	require.True(t, known)

	entry.WithMetadata(map[string]any{})

	assert.Nil(t, entry.Metadata)
}
