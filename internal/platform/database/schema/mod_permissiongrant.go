package schema

// ModPermissionGrantTable represents the 'mod.permissiongrant' table
type ModPermissionGrantTable struct {
	Table         string
	UserID        string
	PermissionKey string
	GrantedByID   string
	CreatedAt     string
}

// ModPermissionGrant is the schema definition for mod.permissiongrant
var ModPermissionGrant = ModPermissionGrantTable{
	Table:         "mod.permissiongrant",
	UserID:        "userid",
	PermissionKey: "permissionkey",
	GrantedByID:   "grantedbyid",
	CreatedAt:     "createdat",
}
