// Package postgres implements storage.Repository on pgx.
//
// Batches go through pgx's CopyFrom, which uses the binary COPY protocol and
// is much faster than multi-row INSERT for bulk loads.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cdrlens/internal/normalizer"
	"cdrlens/internal/storage"
)

type Repo struct {
	pool  *pgxpool.Pool
	table string
}

func init() {
	storage.Register("postgres", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	table := cfg.Table
	if table == "" {
		table = storage.DefaultTable
	}
	return &Repo{pool: pool, table: table}, nil
}

func (r *Repo) Close() { r.pool.Close() }

func (r *Repo) EnsureTable(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, buildCreateSQL(r.table)); err != nil {
		return fmt.Errorf("create table %s: %w", r.table, err)
	}
	return nil
}

func (r *Repo) InsertRecords(ctx context.Context, recs []normalizer.Record) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, storage.RecordArgs(rec))
	}

	n, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{r.table},
		storage.Columns,
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", r.table, err)
	}
	return n, nil
}

func buildCreateSQL(table string) string {
	cols := []string{
		`start_time TIMESTAMPTZ NOT NULL`,
		`end_time TIMESTAMPTZ`,
		`duration_sec DOUBLE PRECISION`,
		`caller TEXT`,
		`callee TEXT`,
		`direction TEXT`,
		`status TEXT`,
		`operator TEXT`,
		`country TEXT`,
		`mcc TEXT`,
		`mnc TEXT`,
		`cell_id TEXT`,
		`imsi TEXT`,
		`imei TEXT`,
		`setup_time_ms DOUBLE PRECISION`,
		`cost DOUBLE PRECISION`,
		`answered BOOLEAN NOT NULL`,
		`failed BOOLEAN NOT NULL`,
		`date DATE NOT NULL`,
		`hour SMALLINT NOT NULL`,
		`weekday TEXT NOT NULL`,
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  id BIGSERIAL PRIMARY KEY,\n  %s\n);", table, strings.Join(cols, ",\n  "))
}
