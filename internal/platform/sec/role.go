// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
//
// The six roles form a strict total order. Every privileged operation in the
// moderation engine reduces to exactly two predicates over this order:
// [UserRole.AtLeast] for capability thresholds and [UserRole.Outranks] for
// the ban hierarchy.
type UserRole string

const (
	// Full system control, including archive and role administration
	RoleSuperAdmin UserRole = "super_admin"

	// Administrative access: permission grants, status overrides
	RoleAdmin UserRole = "admin"

	// Can moderate reports, listings, and issue bans
	RoleModerator UserRole = "moderator"

	// Verified emulator developer; can mark listings as developer-verified
	RoleDeveloper UserRole = "developer"

	// Trusted contributor with an established submission history
	RoleAuthor UserRole = "author"

	// Default role for standard registered users
	RoleUser UserRole = "user"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// Outranks reports whether the current role is strictly above the target role.
//
// This is the guard used by the ban registry: a moderator can never ban
// another moderator, and nobody outranks themselves.
func (r UserRole) Outranks(target UserRole) bool {
	return r.level() > target.level()
}

// IsValid reports whether the role is one of the six known roles.
func (r UserRole) IsValid() bool {
	return r.level() > 0
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {

	// Linear scale (10-60) allows for future intermediate roles.
	// Unknown roles map to 0: they satisfy no threshold and outrank nothing.
	switch r {
	case RoleSuperAdmin:
		return 60
	case RoleAdmin:
		return 50
	case RoleModerator:
		return 40
	case RoleDeveloper:
		return 30
	case RoleAuthor:
		return 20
	case RoleUser:
		return 10
	default:
		return 0
	}
}

// AllRoles lists every known role in ascending hierarchy order.
//
// Used by validation (role change requests) and by the hierarchy tests.
func AllRoles() []UserRole {
	return []UserRole{RoleUser, RoleAuthor, RoleDeveloper, RoleModerator, RoleAdmin, RoleSuperAdmin}
}
