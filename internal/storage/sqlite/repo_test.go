package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"cdrlens/internal/normalizer"
	"cdrlens/internal/storage"
)

func openTestRepo(t *testing.T) *Repo {
	t.Helper()

	repo, err := New(context.Background(), storage.Config{Kind: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(repo.Close)

	r := repo.(*Repo)
	if err := r.EnsureTable(context.Background()); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	return r
}

func testRecord(start time.Time) normalizer.Record {
	return normalizer.Record{
		StartTime:   start,
		EndTime:     start.Add(2 * time.Minute),
		DurationSec: 120,
		HasDuration: true,
		Caller:      "500123",
		Callee:      "800456",
		Direction:   "inbound",
		Status:      "ANSWERED",
		Operator:    "OpA",
		Answered:    true,
		Date:        time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
		Hour:        start.Hour(),
		Weekday:     start.Weekday().String(),
	}
}

func TestEnsureTable_Idempotent(t *testing.T) {
	r := openTestRepo(t)
	if err := r.EnsureTable(context.Background()); err != nil {
		t.Fatalf("second EnsureTable: %v", err)
	}
}

func TestInsertRecords_RoundTrip(t *testing.T) {
	r := openTestRepo(t)

	start := time.Date(2024, 6, 1, 9, 15, 0, 0, time.UTC)
	recs := []normalizer.Record{
		testRecord(start),
		testRecord(start.Add(time.Hour)),
	}

	n, err := r.InsertRecords(context.Background(), recs)
	if err != nil {
		t.Fatalf("InsertRecords: %v", err)
	}
	if n != 2 {
		t.Fatalf("inserted=%d, want 2", n)
	}

	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM cdr_records`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("count=%d, want 2", count)
	}

	// Timestamps round-trip through TEXT storage.
	var gotStart string
	var gotDur sql.NullFloat64
	var gotCr sql.NullString
	err = r.db.QueryRow(`SELECT start_time, duration_sec, callee FROM cdr_records ORDER BY id LIMIT 1`).
		Scan(&gotStart, &gotDur, &gotCr)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	parsed, err := time.Parse(time.RFC3339Nano, gotStart)
	if err != nil {
		t.Fatalf("parse start_time %q: %v", gotStart, err)
	}
	if !parsed.Equal(start) {
		t.Fatalf("start_time=%v, want %v", parsed, start)
	}
	if !gotDur.Valid || gotDur.Float64 != 120 {
		t.Fatalf("duration_sec=%v, want 120", gotDur)
	}
	if !gotCr.Valid || gotCr.String != "800456" {
		t.Fatalf("callee=%v, want 800456", gotCr)
	}
}

func TestInsertRecords_MissingFieldsBecomeNULL(t *testing.T) {
	r := openTestRepo(t)

	rec := normalizer.Record{
		StartTime: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		Date:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Hour:      9,
		Weekday:   "Saturday",
	}
	if _, err := r.InsertRecords(context.Background(), []normalizer.Record{rec}); err != nil {
		t.Fatalf("InsertRecords: %v", err)
	}

	var endTime, caller sql.NullString
	var cost sql.NullFloat64
	err := r.db.QueryRow(`SELECT end_time, caller, cost FROM cdr_records LIMIT 1`).
		Scan(&endTime, &caller, &cost)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if endTime.Valid {
		t.Fatalf("end_time=%q, want NULL", endTime.String)
	}
	if caller.Valid {
		t.Fatalf("caller=%q, want NULL", caller.String)
	}
	if cost.Valid {
		t.Fatalf("cost=%v, want NULL", cost.Float64)
	}
}

func TestInsertRecords_EmptyBatch(t *testing.T) {
	r := openTestRepo(t)

	n, err := r.InsertRecords(context.Background(), nil)
	if err != nil {
		t.Fatalf("InsertRecords(nil): %v", err)
	}
	if n != 0 {
		t.Fatalf("inserted=%d, want 0", n)
	}
}
