package schema

// ModBanTable represents the 'mod.ban' table
type ModBanTable struct {
	Table        string
	ID           string
	UserID       string
	BannedByID   string
	Reason       string
	Notes        string
	IsActive     string
	IsArchived   string
	ExpiresAt    string
	UnbannedAt   string
	UnbannedByID string
	CreatedAt    string
	UpdatedAt    string
}

// ModBan is the schema definition for mod.ban
var ModBan = ModBanTable{
	Table:        "mod.ban",
	ID:           "id",
	UserID:       "userid",
	BannedByID:   "bannedbyid",
	Reason:       "reason",
	Notes:        "notes",
	IsActive:     "isactive",
	IsArchived:   "isarchived",
	ExpiresAt:    "expiresat",
	UnbannedAt:   "unbannedat",
	UnbannedByID: "unbannedbyid",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}

// UniqueActiveBanConstraint is the partial unique index guaranteeing at most
// one active ban per user. Violations map to ALREADY_BANNED.
const UniqueActiveBanConstraint = "ban_one_active_per_user"
