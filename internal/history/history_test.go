package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pashagolub/pgxmock/v3"
)

func sampleRun(id string, started time.Time) Run {
	return Run{
		ID:                id,
		Command:           CommandTransform,
		Source:            "clients.xlsx",
		Output:            "clean.csv",
		Status:            StatusSucceeded,
		RowsIn:            5,
		RowsOut:           3,
		DuplicatesRemoved: 2,
		StartedAt:         started,
		FinishedAt:        started.Add(time.Second),
	}
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(10)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		if err := store.Record(ctx, sampleRun(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	runs, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("List() returned %d runs, want 2", len(runs))
	}
	if runs[0].ID != "c" || runs[1].ID != "b" {
		t.Errorf("List() ids = [%s %s], want [c b]", runs[0].ID, runs[1].ID)
	}
}

func TestMemoryStore_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(2)
	now := time.Now()

	for _, id := range []string{"a", "b", "c"} {
		_ = store.Record(ctx, sampleRun(id, now))
	}

	runs, _ := store.List(ctx, 0)
	if len(runs) != 2 {
		t.Fatalf("List() returned %d runs, want 2", len(runs))
	}
	if runs[0].ID != "c" || runs[1].ID != "b" {
		t.Errorf("List() ids = [%s %s], want [c b]", runs[0].ID, runs[1].ID)
	}
}

func TestRunDuration(t *testing.T) {
	r := sampleRun("x", time.Now())
	if r.Duration() != time.Second {
		t.Errorf("Duration() = %v, want %v", r.Duration(), time.Second)
	}
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	if a == b {
		t.Errorf("NewRunID() returned the same id twice: %s", a)
	}
	if len(a) != 36 {
		t.Errorf("NewRunID() = %q, want a 36 character uuid", a)
	}
}

func TestPostgresStore_EnsureSchema(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool() error = %v", err)
	}
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS csvtool_runs").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS csvtool_runs_started_at_idx").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	if err := NewPostgresStore(mock).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresStore_Record(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool() error = %v", err)
	}
	defer mock.Close()

	run := sampleRun("5f0c7c1e-8f1b-4a53-9d56-0c3a5b8f0d11", time.Now())
	run.Output = ""

	mock.ExpectExec("INSERT INTO csvtool_runs").
		WithArgs(
			run.ID,
			"transform",
			"clients.xlsx",
			pgtype.Text{},
			"succeeded",
			int32(5),
			int32(3),
			int32(2),
			pgtype.Text{},
			pgxmock.AnyArg(),
			pgxmock.AnyArg(),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := NewPostgresStore(mock).Record(context.Background(), run); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresStore_RecordError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool() error = %v", err)
	}
	defer mock.Close()

	dbErr := errors.New("connection refused")
	mock.ExpectExec("INSERT INTO csvtool_runs").WillReturnError(dbErr)

	err = NewPostgresStore(mock).Record(context.Background(), sampleRun("id", time.Now()))
	if !errors.Is(err, dbErr) {
		t.Errorf("Record() error = %v, want wrapped %v", err, dbErr)
	}
}

func TestPostgresStore_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool() error = %v", err)
	}
	defer mock.Close()

	started := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	columns := []string{
		"id", "command", "source", "output", "status", "rows_in", "rows_out",
		"duplicates_removed", "error_code", "started_at", "finished_at",
	}
	rows := pgxmock.NewRows(columns).
		AddRow("run-2", "profile", "a.csv", pgtype.Text{}, "failed",
			int32(0), int32(0), int32(0), pgtype.Text{String: "SCH001", Valid: true},
			started.Add(time.Minute), started.Add(time.Minute)).
		AddRow("run-1", "transform", "b.csv", pgtype.Text{String: "out.csv", Valid: true}, "succeeded",
			int32(4), int32(3), int32(1), pgtype.Text{},
			started, started.Add(time.Second))

	mock.ExpectQuery("SELECT (.+) FROM csvtool_runs").
		WithArgs(int32(DefaultListLimit)).
		WillReturnRows(rows)

	runs, err := NewPostgresStore(mock).List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("List() returned %d runs, want 2", len(runs))
	}

	if runs[0].ErrorCode != "SCH001" || runs[0].Status != StatusFailed {
		t.Errorf("runs[0] = %+v, want failed SCH001", runs[0])
	}
	if runs[0].Output != "" {
		t.Errorf("runs[0].Output = %q, want empty for NULL", runs[0].Output)
	}
	if runs[1].Command != CommandTransform || runs[1].DuplicatesRemoved != 1 || runs[1].Output != "out.csv" {
		t.Errorf("runs[1] = %+v", runs[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
