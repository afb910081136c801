// Package mssql implements storage.Repository on SQL Server via the
// microsoft/go-mssqldb driver.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"cdrlens/internal/normalizer"
	"cdrlens/internal/storage"
)

type Repo struct {
	db    *sql.DB
	table string
}

func init() {
	storage.Register("mssql", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
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

// EnsureTable creates the destination table if it does not exist. SQL Server
// has no CREATE TABLE IF NOT EXISTS, so existence is checked via sys.objects.
func (r *Repo) EnsureTable(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, buildCreateSQL(r.table)); err != nil {
		return fmt.Errorf("create table %s: %w", r.table, err)
	}
	return nil
}

// InsertRecords performs batched multi-row inserts.
//
// SQL Server caps parameters at 2100 per statement, so the batch is chunked
// to stay under the limit.
func (r *Repo) InsertRecords(ctx context.Context, recs []normalizer.Record) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	maxRows := maxParams / len(storage.Columns)
	var total int64
	for start := 0; start < len(recs); start += maxRows {
		end := start + maxRows
		if end > len(recs) {
			end = len(recs)
		}
		n, err := r.insertChunk(ctx, recs[start:end])
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

const maxParams = 2000

func (r *Repo) insertChunk(ctx context.Context, recs []normalizer.Record) (int64, error) {
	cols := storage.Columns
	q := buildInsertSQL(r.table, cols, len(recs))

	args := make([]any, 0, len(recs)*len(cols))
	for _, rec := range recs {
		args = append(args, storage.RecordArgs(rec)...)
	}

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// buildInsertSQL builds a multi-row INSERT with @pN placeholders.
func buildInsertSQL(table string, columns []string, rows int) string {
	colList := make([]string, 0, len(columns))
	for _, c := range columns {
		colList = append(colList, sqlIdent(c))
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(colList, ", "))
	b.WriteString(") VALUES ")

	p := 1
	for i := 0; i < rows; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := range columns {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "@p%d", p)
			p++
		}
		b.WriteString(")")
	}

	return b.String()
}

func sqlIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

func buildCreateSQL(table string) string {
	cols := []string{
		`[start_time] DATETIMEOFFSET NOT NULL`,
		`[end_time] DATETIMEOFFSET`,
		`[duration_sec] FLOAT`,
		`[caller] NVARCHAR(64)`,
		`[callee] NVARCHAR(64)`,
		`[direction] NVARCHAR(16)`,
		`[status] NVARCHAR(64)`,
		`[operator] NVARCHAR(128)`,
		`[country] NVARCHAR(64)`,
		`[mcc] NVARCHAR(8)`,
		`[mnc] NVARCHAR(8)`,
		`[cell_id] NVARCHAR(32)`,
		`[imsi] NVARCHAR(32)`,
		`[imei] NVARCHAR(32)`,
		`[setup_time_ms] FLOAT`,
		`[cost] FLOAT`,
		`[answered] BIT NOT NULL`,
		`[failed] BIT NOT NULL`,
		`[date] DATE NOT NULL`,
		`[hour] SMALLINT NOT NULL`,
		`[weekday] NVARCHAR(16) NOT NULL`,
	}
	return fmt.Sprintf(
		"IF NOT EXISTS (SELECT 1 FROM sys.objects WHERE object_id = OBJECT_ID(N'%s') AND type = N'U')\nCREATE TABLE %s (\n  [id] BIGINT IDENTITY(1,1) PRIMARY KEY,\n  %s\n);",
		table, table, strings.Join(cols, ",\n  "),
	)
}
