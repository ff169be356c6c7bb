package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/smelter-recon/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS reference_facilities (
	id              TEXT PRIMARY KEY,
	standard        TEXT NOT NULL,
	facility_id     TEXT,
	name            TEXT NOT NULL,
	metal           TEXT,
	status          TEXT,
	country         TEXT,
	region          TEXT,
	city            TEXT,
	cross_reference TEXT,
	imported_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS comparison_runs (
	id             TEXT PRIMARY KEY,
	supplier       TEXT NOT NULL,
	declared_count INTEGER NOT NULL,
	summary        TEXT NOT NULL,
	outcomes       TEXT NOT NULL,
	created_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS audit_events (
	id         TEXT PRIMARY KEY,
	action     TEXT NOT NULL,
	actor      TEXT,
	detail     TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_reference_standard ON reference_facilities(standard);
CREATE INDEX IF NOT EXISTS idx_reference_facility_id ON reference_facilities(facility_id);
CREATE INDEX IF NOT EXISTS idx_runs_supplier ON comparison_runs(supplier);
CREATE INDEX IF NOT EXISTS idx_audit_action ON audit_events(action);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ReplaceReference(ctx context.Context, standard model.Standard, facilities []model.ReferenceFacility) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin replace reference")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM reference_facilities WHERE standard = ?`, string(standard),
	); err != nil {
		return 0, eris.Wrapf(err, "sqlite: delete reference rows for %s", standard)
	}

	for _, f := range facilities {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO reference_facilities
			 (id, standard, facility_id, name, metal, status, country, region, city, cross_reference)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), string(standard), f.FacilityID, f.StandardName, f.Metal,
			f.AssessmentStatus, f.Country, f.Region, f.City, f.CrossReference,
		); err != nil {
			return 0, eris.Wrap(err, "sqlite: insert reference facility")
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit replace reference")
	}
	return len(facilities), nil
}

func (s *SQLiteStore) ListReference(ctx context.Context, standards []model.Standard) ([]model.ReferenceFacility, error) {
	query := `SELECT facility_id, name, metal, status, country, region, city, cross_reference
		FROM reference_facilities`
	args := make([]any, 0, len(standards))
	if len(standards) > 0 {
		query += ` WHERE standard IN (` + placeholders(len(standards)) + `)`
		for _, std := range standards {
			args = append(args, string(std))
		}
	}
	query += ` ORDER BY standard, facility_id, name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list reference")
	}
	defer rows.Close()

	var out []model.ReferenceFacility
	for rows.Next() {
		var f model.ReferenceFacility
		if err := rows.Scan(&f.FacilityID, &f.StandardName, &f.Metal, &f.AssessmentStatus,
			&f.Country, &f.Region, &f.City, &f.CrossReference); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan reference facility")
		}
		out = append(out, f)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate reference")
}

func (s *SQLiteStore) ReferenceCounts(ctx context.Context) ([]ReferenceCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT standard, COALESCE(metal, ''), COUNT(*)
		 FROM reference_facilities GROUP BY standard, metal ORDER BY standard, metal`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: reference counts")
	}
	defer rows.Close()

	var out []ReferenceCount
	for rows.Next() {
		var c ReferenceCount
		var std string
		if err := rows.Scan(&std, &c.Metal, &c.Count); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan reference count")
		}
		c.Standard = model.Standard(std)
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate reference counts")
}

func (s *SQLiteStore) CreateRun(ctx context.Context, supplier string, summary model.ComparisonSummary, outcomes []model.MatchOutcome) (*model.ComparisonRun, error) {
	run := &model.ComparisonRun{
		ID:            uuid.New().String(),
		Supplier:      supplier,
		DeclaredCount: len(outcomes),
		Summary:       summary,
		Outcomes:      outcomes,
		CreatedAt:     time.Now().UTC(),
	}

	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal summary")
	}
	outcomesJSON, err := json.Marshal(outcomes)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal outcomes")
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO comparison_runs (id, supplier, declared_count, summary, outcomes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Supplier, run.DeclaredCount, string(summaryJSON), string(outcomesJSON), run.CreatedAt,
	); err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}
	return run, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.ComparisonRun, error) {
	var (
		run          model.ComparisonRun
		summaryJSON  string
		outcomesJSON string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, supplier, declared_count, summary, outcomes, created_at
		 FROM comparison_runs WHERE id = ?`, runID,
	).Scan(&run.ID, &run.Supplier, &run.DeclaredCount, &summaryJSON, &outcomesJSON, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("sqlite: run %s not found", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}

	if err := json.Unmarshal([]byte(summaryJSON), &run.Summary); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal summary")
	}
	if err := json.Unmarshal([]byte(outcomesJSON), &run.Outcomes); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal outcomes")
	}
	return &run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.ComparisonRun, error) {
	query := `SELECT id, supplier, declared_count, summary, created_at FROM comparison_runs`
	var args []any
	if filter.Supplier != "" {
		query += ` WHERE supplier = ?`
		args = append(args, filter.Supplier)
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var out []model.ComparisonRun
	for rows.Next() {
		var run model.ComparisonRun
		var summaryJSON string
		if err := rows.Scan(&run.ID, &run.Supplier, &run.DeclaredCount, &summaryJSON, &run.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		if err := json.Unmarshal([]byte(summaryJSON), &run.Summary); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal run summary")
		}
		out = append(out, run)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

func (s *SQLiteStore) RecordAudit(ctx context.Context, action model.AuditAction, actor, detail string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_events (id, action, actor, detail, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), string(action), actor, detail, time.Now().UTC(),
	)
	return eris.Wrap(err, "sqlite: insert audit event")
}

func (s *SQLiteStore) ListAudit(ctx context.Context, limit int) ([]model.AuditEvent, error) {
	query := `SELECT id, action, COALESCE(actor, ''), COALESCE(detail, ''), created_at
		FROM audit_events ORDER BY created_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list audit events")
	}
	defer rows.Close()

	var out []model.AuditEvent
	for rows.Next() {
		var e model.AuditEvent
		var action string
		if err := rows.Scan(&e.ID, &action, &e.Actor, &e.Detail, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan audit event")
		}
		e.Action = model.AuditAction(action)
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate audit events")
}

// placeholders returns n comma-separated "?" markers.
func placeholders(n int) string {
	out := make([]byte, 0, 2*n)
	for i := 0; i < n; i++ {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, '?')
	}
	return string(out)
}
