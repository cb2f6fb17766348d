package schema

// ModTrustLedgerTable represents the 'mod.trustledger' table.
//
// The table is append-only: no repository issues UPDATE or DELETE against it.
type ModTrustLedgerTable struct {
	Table        string
	ID           string
	UserID       string
	Action       string
	Weight       string
	TargetUserID string
	Metadata     string
	CreatedAt    string
}

// ModTrustLedger is the schema definition for mod.trustledger
var ModTrustLedger = ModTrustLedgerTable{
	Table:        "mod.trustledger",
	ID:           "id",
	UserID:       "userid",
	Action:       "action",
	Weight:       "weight",
	TargetUserID: "targetuserid",
	Metadata:     "metadata",
	CreatedAt:    "createdat",
}
