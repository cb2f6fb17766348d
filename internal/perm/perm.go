// Copyright (c) 2026 Compatdex. All rights reserved.
// Author: dev@compatdex.app

/*
Package perm implements the permission registry for the moderation engine.

Capabilities are fine-grained keys mapped to a minimum role, independent of
the numeric hierarchy, so a capability can be re-thresholded without
redefining roles. A user satisfies a permission if their role meets the
minimum, or if an explicit per-user grant row exists as an override.

# Core Responsibility

  - Registry: The closed, static table of known [Permission] keys.
  - Checking: [Service.Has] — pure ordinal comparison for the common case,
    grant lookup (LRU-cached) only for the override path.
  - Administration: Grant/revoke operations, audited like every privileged
    mutation.

Unknown permission keys always deny: the registry fails closed.
*/
package perm

import (
	"time"

	"github.com/compatdex/compatdex/internal/platform/sec"
)

// # Permission Keys

const (
	KeyBanCreate          = "ban:create"
	KeyBanUpdate          = "ban:update"
	KeyBanLift            = "ban:lift"
	KeyBanArchive         = "ban:archive"
	KeyModerationApprove  = "moderation:approve"
	KeyModerationReview   = "moderation:review"
	KeyModerationOverride = "moderation:override"
	KeyListingVerify      = "listing:verify"
	KeyTrustViewOthers    = "trust:view_others"
	KeyUserChangeRole     = "user:change_role"
	KeyPermissionGrant    = "permission:grant"
	KeyAuditView          = "audit:view"
)

// # Core Entities

// Permission describes one capability in the static registry.
type Permission struct {
	Key         string       `json:"key"`
	Label       string       `json:"label"`
	Category    string       `json:"category"`
	MinimumRole sec.UserRole `json:"minimum_role"`
}

// Grant is an explicit per-user permission override.
type Grant struct {
	UserID        string    `json:"user_id"`
	PermissionKey string    `json:"permission_key"`
	GrantedByID   string    `json:"granted_by_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// # Static Registry

// registry is the closed set of known permissions.
//
// Thresholds encode the authority design: archive sits strictly above
// lift, override strictly above approve/reject.
var registry = map[string]Permission{
	KeyBanCreate:          {Key: KeyBanCreate, Label: "Issue bans", Category: "bans", MinimumRole: sec.RoleModerator},
	KeyBanUpdate:          {Key: KeyBanUpdate, Label: "Edit ban details", Category: "bans", MinimumRole: sec.RoleModerator},
	KeyBanLift:            {Key: KeyBanLift, Label: "Lift bans", Category: "bans", MinimumRole: sec.RoleModerator},
	KeyBanArchive:         {Key: KeyBanArchive, Label: "Archive ban records", Category: "bans", MinimumRole: sec.RoleAdmin},
	KeyModerationApprove:  {Key: KeyModerationApprove, Label: "Approve or reject listings", Category: "moderation", MinimumRole: sec.RoleModerator},
	KeyModerationReview:   {Key: KeyModerationReview, Label: "Review reports", Category: "moderation", MinimumRole: sec.RoleModerator},
	KeyModerationOverride: {Key: KeyModerationOverride, Label: "Override terminal approval states", Category: "moderation", MinimumRole: sec.RoleAdmin},
	KeyListingVerify:      {Key: KeyListingVerify, Label: "Developer-verify listings", Category: "listings", MinimumRole: sec.RoleDeveloper},
	KeyTrustViewOthers:    {Key: KeyTrustViewOthers, Label: "View other users' trust standing", Category: "trust", MinimumRole: sec.RoleModerator},
	KeyUserChangeRole:     {Key: KeyUserChangeRole, Label: "Change user roles", Category: "users", MinimumRole: sec.RoleAdmin},
	KeyPermissionGrant:    {Key: KeyPermissionGrant, Label: "Grant or revoke permissions", Category: "users", MinimumRole: sec.RoleAdmin},
	KeyAuditView:          {Key: KeyAuditView, Label: "View the audit log", Category: "system", MinimumRole: sec.RoleAdmin},
}

// Lookup returns the registry entry for a key.
//
// The second return is false for unknown keys; callers must deny.
func Lookup(key string) (Permission, bool) {
	permission, known := registry[key]
	return permission, known
}

// All returns every registered permission.
//
// Used by the admin UI to render the capability matrix.
func All() []Permission {
	permissions := make([]Permission, 0, len(registry))
	for _, permission := range registry {
		permissions = append(permissions, permission)
	}
	return permissions
}
