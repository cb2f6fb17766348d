// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package listing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/compatdex/compatdex/internal/content/listing"
)

func TestApprovalStatus_CanTransitionTo(t *testing.T) {
	testCases := []struct {
		name    string
		from    listing.ApprovalStatus
		to      listing.ApprovalStatus
		allowed bool
	}{
		{"pending to approved", listing.StatusPending, listing.StatusApproved, true},
		{"pending to rejected", listing.StatusPending, listing.StatusRejected, true},
		{"approved is terminal", listing.StatusApproved, listing.StatusRejected, false},
		{"rejected is terminal", listing.StatusRejected, listing.StatusApproved, false},
		{"no return to pending", listing.StatusApproved, listing.StatusPending, false},
		{"no self transition", listing.StatusPending, listing.StatusPending, false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.allowed, testCase.from.CanTransitionTo(testCase.to))
		})
	}
}

func TestApprovalStatus_IsValid(t *testing.T) {
	for _, status := range []listing.ApprovalStatus{listing.StatusPending, listing.StatusApproved, listing.StatusRejected} {
		assert.True(t, status.IsValid())
	}
	assert.False(t, listing.ApprovalStatus("ARCHIVED").IsValid())
	assert.False(t, listing.ApprovalStatus("").IsValid())
}
