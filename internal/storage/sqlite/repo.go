// Package sqlite implements storage.Repository on modernc.org/sqlite.
//
// SQLite has no native timestamp type; even a TIMESTAMPTZ column gets TEXT
// affinity. Timestamps are therefore stored as RFC3339Nano strings for
// reliable round-trip behavior and easy debugging.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"cdrlens/internal/normalizer"
	"cdrlens/internal/storage"
)

type Repo struct {
	db    *sql.DB
	table string
}

func init() {
	storage.Register("sqlite", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	table := cfg.Table
	if table == "" {
		table = storage.DefaultTable
	}
	return &Repo{db: db, table: table}, nil
}

func (r *Repo) Close() { _ = r.db.Close() }

// EnsureTable creates the destination table if needed, keeping startup
// idempotent.
func (r *Repo) EnsureTable(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, buildCreateSQL(r.table)); err != nil {
		return fmt.Errorf("create table %s: %w", r.table, err)
	}
	return nil
}

// InsertRecords performs a multi-row insert of the batch.
func (r *Repo) InsertRecords(ctx context.Context, recs []normalizer.Record) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	cols := storage.Columns
	colList := make([]string, 0, len(cols))
	for _, c := range cols {
		colList = append(colList, sqlIdent(c))
	}
	placeholders := "(" + strings.TrimRight(strings.Repeat("?,", len(cols)), ",") + ")"

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(r.table)
	b.WriteString(" (")
	b.WriteString(strings.Join(colList, ", "))
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(recs)*len(cols))
	for i, rec := range recs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(placeholders)
		args = append(args, sqliteArgs(storage.RecordArgs(rec))...)
	}

	res, err := r.db.ExecContext(ctx, b.String(), args...)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// sqliteArgs rewrites time.Time arguments as RFC3339Nano strings. Other
// values pass through untouched.
func sqliteArgs(args []any) []any {
	for i, a := range args {
		if t, ok := a.(time.Time); ok {
			args[i] = formatTime(t)
		}
	}
	return args
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func sqlIdent(id string) string {
	// SQLite supports "quoted identifiers"
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func buildCreateSQL(table string) string {
	cols := []string{
		`"start_time" TEXT NOT NULL`,
		`"end_time" TEXT`,
		`"duration_sec" REAL`,
		`"caller" TEXT`,
		`"callee" TEXT`,
		`"direction" TEXT`,
		`"status" TEXT`,
		`"operator" TEXT`,
		`"country" TEXT`,
		`"mcc" TEXT`,
		`"mnc" TEXT`,
		`"cell_id" TEXT`,
		`"imsi" TEXT`,
		`"imei" TEXT`,
		`"setup_time_ms" REAL`,
		`"cost" REAL`,
		`"answered" INTEGER NOT NULL`,
		`"failed" INTEGER NOT NULL`,
		`"date" TEXT NOT NULL`,
		`"hour" INTEGER NOT NULL`,
		`"weekday" TEXT NOT NULL`,
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  id INTEGER PRIMARY KEY AUTOINCREMENT,\n  %s\n);", table, strings.Join(cols, ",\n  "))
}
