package model

import "time"

// ComparisonRun is one persisted comparison: who was compared, what came
// out, and when. Outcomes are stored alongside the summary so past runs can
// be re-rendered without re-matching.
type ComparisonRun struct {
	ID            string            `json:"id"`
	Supplier      string            `json:"supplier"`
	DeclaredCount int               `json:"declared_count"`
	Summary       ComparisonSummary `json:"summary"`
	Outcomes      []MatchOutcome    `json:"outcomes,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}

// AuditAction names a recordable event.
type AuditAction string

const (
	AuditReferenceImported AuditAction = "reference_imported"
	AuditComparisonRun     AuditAction = "comparison_run"
)

// AuditEvent is one entry in the audit trail. Detail is free-form JSON
// supplied by the caller.
type AuditEvent struct {
	ID        string      `json:"id"`
	Action    AuditAction `json:"action"`
	Actor     string      `json:"actor,omitempty"`
	Detail    string      `json:"detail,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}
