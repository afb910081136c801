// Package storage persists normalized CDR records into a SQL backend.
//
// Backends register themselves by kind (sqlite, postgres, mssql) from an
// init() function; cmd binaries select one via Config.Kind. The package
// itself owns the canonical column set so every backend writes the same
// shape.
package storage

import (
	"context"
	"fmt"
	"sync"

	"cdrlens/internal/normalizer"
)

// Config is the minimal configuration needed to create a repository.
//
// Edge cases:
//   - Kind must be non-empty and must match a registered backend kind.
//   - DSN is passed through to the backend factory; validation is
//     backend-specific.
//   - If Table is empty, backends default to "cdr_records".
type Config struct {
	Kind  string
	DSN   string
	Table string
}

// DefaultTable is the destination table name used when Config.Table is empty.
const DefaultTable = "cdr_records"

// Repository is a backend-agnostic sink for normalized records.
//
// The interface is intentionally minimal: the pipeline only ever creates the
// destination table and appends record batches. Each backend implements the
// semantics in its own idiomatic way (placeholder style, timestamp storage).
type Repository interface {
	// Close releases backend resources. Treat as "call once" at shutdown.
	Close()

	// EnsureTable creates the destination table if it does not exist.
	EnsureTable(ctx context.Context) error

	// InsertRecords appends a batch of normalized records and reports the
	// number of rows written. An empty batch is a no-op.
	InsertRecords(ctx context.Context, recs []normalizer.Record) (int64, error)
}

type factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a backend under a kind (e.g. "postgres", "sqlite").
//
// When to use:
//   - Call Register from an init() function in a backend package.
//   - The kind string becomes the lookup key used by New.
//
// Panics:
//   - If kind is empty.
//   - If f is nil.
//   - If kind is already registered. This is intentional to fail fast and
//     avoid ambiguous backend selection.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}

	factories[kind] = f
}

// New constructs a Repository using the registered backend factory.
//
// Concurrency:
//   - Safe for concurrent use with Register. New takes a read lock while
//     selecting the factory.
//
// Errors:
//   - Returns an error if cfg.Kind is empty or unsupported.
//   - Returns whatever error the registered factory returns.
func New(ctx context.Context, cfg Config) (Repository, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing storage.kind")
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}
