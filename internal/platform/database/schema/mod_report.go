package schema

// ModReportTable represents the 'mod.report' table
type ModReportTable struct {
	Table        string
	ID           string
	TargetID     string
	ReportedByID string
	Reason       string
	Description  string
	Status       string
	ReviewedByID string
	ReviewedAt   string
	ReviewNotes  string
	CreatedAt    string
}

// ModReport is the schema definition for mod.report
var ModReport = ModReportTable{
	Table:        "mod.report",
	ID:           "id",
	TargetID:     "targetid",
	ReportedByID: "reportedbyid",
	Reason:       "reason",
	Description:  "description",
	Status:       "status",
	ReviewedByID: "reviewedbyid",
	ReviewedAt:   "reviewedat",
	ReviewNotes:  "reviewnotes",
	CreatedAt:    "createdat",
}

// UniqueReporterTargetConstraint is the composite unique index enforcing one
// report per (reporter, target) pair. Violations map to DUPLICATE_REPORT.
const UniqueReporterTargetConstraint = "report_one_per_reporter_target"
