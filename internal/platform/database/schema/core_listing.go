package schema

// CoreListingTable represents the 'core.listing' table
type CoreListingTable struct {
	Table             string
	ID                string
	Slug              string
	AuthorID          string
	GameTitle         string
	Emulator          string
	Device            string
	Performance       string
	Notes             string
	Status            string
	ProcessedAt       string
	ProcessedByUserID string
	ProcessedNotes    string
	IsVerified        string
	VerifiedByID      string
	CreatedAt         string
	UpdatedAt         string
}

// CoreListing is the schema definition for core.listing
var CoreListing = CoreListingTable{
	Table:             "core.listing",
	ID:                "id",
	Slug:              "slug",
	AuthorID:          "authorid",
	GameTitle:         "gametitle",
	Emulator:          "emulator",
	Device:            "device",
	Performance:       "performance",
	Notes:             "notes",
	Status:            "status",
	ProcessedAt:       "processedat",
	ProcessedByUserID: "processedbyuserid",
	ProcessedNotes:    "processednotes",
	IsVerified:        "isverified",
	VerifiedByID:      "verifiedbyid",
	CreatedAt:         "createdat",
	UpdatedAt:         "updatedat",
}
