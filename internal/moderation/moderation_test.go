// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package moderation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/compatdex/compatdex/internal/moderation"
)

func TestReportStatus_CanTransitionTo(t *testing.T) {
	testCases := []struct {
		name    string
		from    moderation.ReportStatus
		to      moderation.ReportStatus
		allowed bool
	}{
		{"pending to under review", moderation.ReportPending, moderation.ReportUnderReview, true},
		{"pending straight to resolved", moderation.ReportPending, moderation.ReportResolved, true},
		{"pending straight to dismissed", moderation.ReportPending, moderation.ReportDismissed, true},
		{"under review to resolved", moderation.ReportUnderReview, moderation.ReportResolved, true},
		{"under review to dismissed", moderation.ReportUnderReview, moderation.ReportDismissed, true},
		{"under review back to pending", moderation.ReportUnderReview, moderation.ReportPending, false},
		{"resolved is terminal", moderation.ReportResolved, moderation.ReportDismissed, false},
		{"dismissed is terminal", moderation.ReportDismissed, moderation.ReportResolved, false},
		{"resolved cannot reopen", moderation.ReportResolved, moderation.ReportUnderReview, false},
		{"no self transition", moderation.ReportPending, moderation.ReportPending, false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.allowed, testCase.from.CanTransitionTo(testCase.to))
		})
	}
}

func TestReportStatus_IsTerminal(t *testing.T) {
	assert.False(t, moderation.ReportPending.IsTerminal())
	assert.False(t, moderation.ReportUnderReview.IsTerminal())
	assert.True(t, moderation.ReportResolved.IsTerminal())
	assert.True(t, moderation.ReportDismissed.IsTerminal())
}
