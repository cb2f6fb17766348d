// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package ban_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/compatdex/compatdex/internal/ban"
)

/*
TestBan_State verifies the read-time lifecycle derivation.
*/
func TestBan_State(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	liftedAt := now.Add(-time.Minute)

	tests := []struct {
		name string
		ban  ban.Ban
		want ban.State
	}{
		{"permanent_active", ban.Ban{IsActive: true}, ban.StateActive},
		{"temporary_unexpired", ban.Ban{IsActive: true, ExpiresAt: &future}, ban.StateActive},
		{"temporary_expired", ban.Ban{IsActive: true, ExpiresAt: &past}, ban.StateExpired},
		{"expiry_at_exact_instant", ban.Ban{IsActive: true, ExpiresAt: &now}, ban.StateExpired},
		{"explicitly_lifted", ban.Ban{UnbannedAt: &liftedAt}, ban.StateLifted},
		{"lifted_wins_over_expiry", ban.Ban{UnbannedAt: &liftedAt, ExpiresAt: &past}, ban.StateLifted},
		{"archived", ban.Ban{IsArchived: true}, ban.StateArchived},
		{"archived_wins_over_lifted", ban.Ban{IsArchived: true, UnbannedAt: &liftedAt}, ban.StateArchived},
		{"archived_wins_over_expiry", ban.Ban{IsArchived: true, ExpiresAt: &past}, ban.StateArchived},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ban.State(now))
		})
	}
}

/*
TestBan_InEffect verifies that only a derived-ACTIVE ban suspends its target.
*/
func TestBan_InEffect(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Second)

	permanent := ban.Ban{IsActive: true}
	assert.True(t, permanent.InEffect(now))

	expired := ban.Ban{IsActive: true, ExpiresAt: &past}
	assert.False(t, expired.InEffect(now), "expiry must take effect without any mutation")
	assert.True(t, expired.IsActive, "passive expiry must not flip the stored flag")
}
