package schema

// SystemAuditLogTable represents the 'system.auditlog' table.
//
// Write-once: rows are inserted inside the transaction of the privileged
// action they record and are never updated or deleted.
type SystemAuditLogTable struct {
	Table        string
	ID           string
	ActorID      string
	Action       string
	EntityType   string
	EntityID     string
	TargetUserID string
	Metadata     string
	CreatedAt    string
}

// SystemAuditLog is the schema definition for system.auditlog
var SystemAuditLog = SystemAuditLogTable{
	Table:        "system.auditlog",
	ID:           "id",
	ActorID:      "actorid",
	Action:       "action",
	EntityType:   "entitytype",
	EntityID:     "entityid",
	TargetUserID: "targetuserid",
	Metadata:     "metadata",
	CreatedAt:    "createdat",
}
