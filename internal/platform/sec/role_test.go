// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/compatdex/compatdex/internal/platform/sec"
)

// TestRoleHierarchy_TotalOrder walks every role pair and checks the two
// predicates against the ascending order of AllRoles.
func TestRoleHierarchy_TotalOrder(t *testing.T) {
	roles := sec.AllRoles()

	for i, lower := range roles {
		for j, higher := range roles {
			wantAtLeast := i >= j
			wantOutranks := i > j

			assert.Equal(t, wantAtLeast, lower.AtLeast(higher),
				"%s.AtLeast(%s)", lower, higher)
			assert.Equal(t, wantOutranks, lower.Outranks(higher),
				"%s.Outranks(%s)", lower, higher)
		}
	}
}

func TestRoleHierarchy_NobodyOutranksThemselves(t *testing.T) {
	for _, role := range sec.AllRoles() {
		assert.False(t, role.Outranks(role), "%s", role)
	}
}

func TestRoleHierarchy_Extremes(t *testing.T) {
	for _, role := range sec.AllRoles() {
		if role != sec.RoleSuperAdmin {
			assert.True(t, sec.RoleSuperAdmin.Outranks(role))
		}
		if role != sec.RoleUser {
			assert.False(t, sec.RoleUser.Outranks(role))
		}
	}
}

// Unknown roles satisfy no threshold, not even against themselves.
func TestRole_Unknown(t *testing.T) {
	ghost := sec.UserRole("root")

	assert.False(t, ghost.IsValid())
	assert.False(t, ghost.AtLeast(sec.RoleUser))
	assert.False(t, ghost.Outranks(ghost))
	assert.True(t, sec.RoleUser.Outranks(ghost))
}

func TestRole_IsValid(t *testing.T) {
	for _, role := range sec.AllRoles() {
		assert.True(t, role.IsValid(), "%s", role)
	}
	assert.False(t, sec.UserRole("").IsValid())
}
