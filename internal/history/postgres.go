package history

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is the subset of pgx used by PostgresStore. Both *pgxpool.Pool and
// pgx.Tx satisfy it.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

const createRunsTable = `-- name: CreateRunsTable :exec
CREATE TABLE IF NOT EXISTS csvtool_runs (
    id                 UUID PRIMARY KEY,
    command            TEXT NOT NULL,
    source             TEXT NOT NULL,
    output             TEXT,
    status             TEXT NOT NULL,
    rows_in            INTEGER NOT NULL DEFAULT 0,
    rows_out           INTEGER NOT NULL DEFAULT 0,
    duplicates_removed INTEGER NOT NULL DEFAULT 0,
    error_code         TEXT,
    started_at         TIMESTAMPTZ NOT NULL,
    finished_at        TIMESTAMPTZ NOT NULL
)`

const createRunsIndex = `-- name: CreateRunsIndex :exec
CREATE INDEX IF NOT EXISTS csvtool_runs_started_at_idx ON csvtool_runs (started_at DESC)`

const insertRun = `-- name: InsertRun :exec
INSERT INTO csvtool_runs (
    id, command, source, output, status, rows_in, rows_out,
    duplicates_removed, error_code, started_at, finished_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

const listRuns = `-- name: ListRuns :many
SELECT id::text, command, source, output, status, rows_in, rows_out,
       duplicates_removed, error_code, started_at, finished_at
FROM csvtool_runs
ORDER BY started_at DESC
LIMIT $1`

// PostgresStore persists runs in the csvtool_runs table.
type PostgresStore struct {
	db DBTX
}

// NewPostgresStore wraps a pool or transaction.
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the runs table and index if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createRunsTable); err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	if _, err := s.db.Exec(ctx, createRunsIndex); err != nil {
		return fmt.Errorf("create runs index: %w", err)
	}
	return nil
}

// Record inserts a run.
func (s *PostgresStore) Record(ctx context.Context, run Run) error {
	_, err := s.db.Exec(ctx, insertRun,
		run.ID,
		string(run.Command),
		run.Source,
		toPgText(run.Output),
		string(run.Status),
		int32(run.RowsIn),
		int32(run.RowsOut),
		int32(run.DuplicatesRemoved),
		toPgText(run.ErrorCode),
		run.StartedAt,
		run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	return nil
}

// List returns up to limit runs, newest first.
func (s *PostgresStore) List(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.Query(ctx, listRuns, int32(normalizeLimit(limit)))
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                        Run
			command, status          string
			output, errorCode        pgtype.Text
			rowsIn, rowsOut, removed int32
		)
		if err := rows.Scan(
			&r.ID, &command, &r.Source, &output, &status,
			&rowsIn, &rowsOut, &removed, &errorCode,
			&r.StartedAt, &r.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Command = Command(command)
		r.Status = Status(status)
		r.Output = output.String
		r.ErrorCode = errorCode.String
		r.RowsIn = int(rowsIn)
		r.RowsOut = int(rowsOut)
		r.DuplicatesRemoved = int(removed)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// toPgText converts a string to pgtype.Text; empty strings become NULL.
func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
