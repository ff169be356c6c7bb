package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/smelter-recon/internal/model"
)

// Pool is the subset of pgxpool.Pool methods the store uses; pgxmock
// satisfies it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

var (
	_ Store = (*PostgresStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS reference_facilities (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	standard        TEXT NOT NULL,
	facility_id     TEXT,
	name            TEXT NOT NULL,
	metal           TEXT,
	status          TEXT,
	country         TEXT,
	region          TEXT,
	city            TEXT,
	cross_reference TEXT,
	imported_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS comparison_runs (
	id             TEXT PRIMARY KEY,
	supplier       TEXT NOT NULL,
	declared_count INTEGER NOT NULL,
	summary        JSONB NOT NULL,
	outcomes       JSONB NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS audit_events (
	id         TEXT PRIMARY KEY,
	action     TEXT NOT NULL,
	actor      TEXT,
	detail     JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_reference_standard ON reference_facilities(standard);
CREATE INDEX IF NOT EXISTS idx_reference_facility_id ON reference_facilities(facility_id);
CREATE INDEX IF NOT EXISTS idx_runs_supplier ON comparison_runs(supplier);
CREATE INDEX IF NOT EXISTS idx_audit_action ON audit_events(action);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) ReplaceReference(ctx context.Context, standard model.Standard, facilities []model.ReferenceFacility) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: begin replace reference")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM reference_facilities WHERE standard = $1`, string(standard),
	); err != nil {
		return 0, eris.Wrapf(err, "postgres: delete reference rows for %s", standard)
	}

	for _, f := range facilities {
		if _, err := tx.Exec(ctx,
			`INSERT INTO reference_facilities
			 (id, standard, facility_id, name, metal, status, country, region, city, cross_reference)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			uuid.New().String(), string(standard), f.FacilityID, f.StandardName, f.Metal,
			f.AssessmentStatus, f.Country, f.Region, f.City, f.CrossReference,
		); err != nil {
			return 0, eris.Wrap(err, "postgres: insert reference facility")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "postgres: commit replace reference")
	}
	return len(facilities), nil
}

func (s *PostgresStore) ListReference(ctx context.Context, standards []model.Standard) ([]model.ReferenceFacility, error) {
	query := `SELECT facility_id, name, metal, status, country, region, city, cross_reference
		FROM reference_facilities`
	var args []any
	if len(standards) > 0 {
		query += ` WHERE standard = ANY($1)`
		stds := make([]string, len(standards))
		for i, std := range standards {
			stds[i] = string(std)
		}
		args = append(args, stds)
	}
	query += ` ORDER BY standard, facility_id, name`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list reference")
	}
	defer rows.Close()

	var out []model.ReferenceFacility
	for rows.Next() {
		var f model.ReferenceFacility
		if err := rows.Scan(&f.FacilityID, &f.StandardName, &f.Metal, &f.AssessmentStatus,
			&f.Country, &f.Region, &f.City, &f.CrossReference); err != nil {
			return nil, eris.Wrap(err, "postgres: scan reference facility")
		}
		out = append(out, f)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate reference")
}

func (s *PostgresStore) ReferenceCounts(ctx context.Context) ([]ReferenceCount, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT standard, COALESCE(metal, ''), COUNT(*)
		 FROM reference_facilities GROUP BY standard, metal ORDER BY standard, metal`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: reference counts")
	}
	defer rows.Close()

	var out []ReferenceCount
	for rows.Next() {
		var c ReferenceCount
		var std string
		if err := rows.Scan(&std, &c.Metal, &c.Count); err != nil {
			return nil, eris.Wrap(err, "postgres: scan reference count")
		}
		c.Standard = model.Standard(std)
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate reference counts")
}

func (s *PostgresStore) CreateRun(ctx context.Context, supplier string, summary model.ComparisonSummary, outcomes []model.MatchOutcome) (*model.ComparisonRun, error) {
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
		return nil, eris.Wrap(err, "postgres: marshal summary")
	}
	outcomesJSON, err := json.Marshal(outcomes)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal outcomes")
	}

	if _, err := s.pool.Exec(ctx,
		`INSERT INTO comparison_runs (id, supplier, declared_count, summary, outcomes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID, run.Supplier, run.DeclaredCount, summaryJSON, outcomesJSON, run.CreatedAt,
	); err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}
	return run, nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.ComparisonRun, error) {
	var (
		run          model.ComparisonRun
		summaryJSON  []byte
		outcomesJSON []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, supplier, declared_count, summary, outcomes, created_at
		 FROM comparison_runs WHERE id = $1`, runID,
	).Scan(&run.ID, &run.Supplier, &run.DeclaredCount, &summaryJSON, &outcomesJSON, &run.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("postgres: run %s not found", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}

	if err := json.Unmarshal(summaryJSON, &run.Summary); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal summary")
	}
	if err := json.Unmarshal(outcomesJSON, &run.Outcomes); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal outcomes")
	}
	return &run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.ComparisonRun, error) {
	query := `SELECT id, supplier, declared_count, summary, created_at FROM comparison_runs`
	var args []any
	if filter.Supplier != "" {
		args = append(args, filter.Supplier)
		query += ` WHERE supplier = $1`
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		if filter.Supplier != "" {
			query += ` LIMIT $2`
		} else {
			query += ` LIMIT $1`
		}
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var out []model.ComparisonRun
	for rows.Next() {
		var run model.ComparisonRun
		var summaryJSON []byte
		if err := rows.Scan(&run.ID, &run.Supplier, &run.DeclaredCount, &summaryJSON, &run.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if err := json.Unmarshal(summaryJSON, &run.Summary); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal run summary")
		}
		out = append(out, run)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate runs")
}

func (s *PostgresStore) RecordAudit(ctx context.Context, action model.AuditAction, actor, detail string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO audit_events (id, action, actor, detail, created_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), string(action), actor, detail, time.Now().UTC(),
	)
	return eris.Wrap(err, "postgres: insert audit event")
}

func (s *PostgresStore) ListAudit(ctx context.Context, limit int) ([]model.AuditEvent, error) {
	query := `SELECT id, action, COALESCE(actor, ''), COALESCE(detail::text, ''), created_at
		FROM audit_events ORDER BY created_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list audit events")
	}
	defer rows.Close()

	var out []model.AuditEvent
	for rows.Next() {
		var e model.AuditEvent
		var action string
		if err := rows.Scan(&e.ID, &action, &e.Actor, &e.Detail, &e.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan audit event")
		}
		e.Action = model.AuditAction(action)
		out = append(out, e)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate audit events")
}
