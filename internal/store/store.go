// Package store persists reference facility lists, comparison runs, and
// audit events. Two drivers share one interface: SQLite for local use and
// Postgres for the shared deployment.
package store

import (
	"context"

	"github.com/sells-group/smelter-recon/internal/model"
)

// ReferenceCount summarizes how many facilities a standard holds per metal.
type ReferenceCount struct {
	Standard model.Standard `json:"standard"`
	Metal    string         `json:"metal"`
	Count    int            `json:"count"`
}

// RunFilter specifies criteria for listing comparison runs.
type RunFilter struct {
	Supplier string `json:"supplier,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

// Store defines the persistence interface around the reconciliation engine.
// The engine itself never touches it; the cmd and serve layers do.
type Store interface {
	// Reference facilities. ReplaceReference swaps out a standard's rows
	// atomically; ListReference returns rows for the given standards
	// ordered by standard then facility id, so index insertion order (and
	// with it the exact-match tie-break) is reproducible across runs.
	ReplaceReference(ctx context.Context, standard model.Standard, facilities []model.ReferenceFacility) (int, error)
	ListReference(ctx context.Context, standards []model.Standard) ([]model.ReferenceFacility, error)
	ReferenceCounts(ctx context.Context) ([]ReferenceCount, error)

	// Comparison runs.
	CreateRun(ctx context.Context, supplier string, summary model.ComparisonSummary, outcomes []model.MatchOutcome) (*model.ComparisonRun, error)
	GetRun(ctx context.Context, runID string) (*model.ComparisonRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.ComparisonRun, error)

	// Audit trail.
	RecordAudit(ctx context.Context, action model.AuditAction, actor, detail string) error
	ListAudit(ctx context.Context, limit int) ([]model.AuditEvent, error)

	// Lifecycle.
	Migrate(ctx context.Context) error
	Close() error
}
