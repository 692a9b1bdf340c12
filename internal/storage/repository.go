// Package storage contains storage-agnostic contracts for the optional
// aggregate-table export sink, plus the factory that concrete backends
// (sqlite, postgres) register themselves with at init time. Callers
// obtain a Repository via New and stay backend-agnostic; backend-specific
// wiring lives in one blank-importable package (storage/all).
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Config selects and configures a storage backend.
type Config struct {
	// Kind selects the backend implementation ("sqlite", "postgres").
	Kind string

	// DSN is the backend connection string: a file path for sqlite, a
	// postgresql:// URL for postgres.
	DSN string

	// TablePrefix is prepended to each aggregate name to form the
	// destination table name.
	TablePrefix string
}

// Repository is the minimal write-only surface the export needs.
type Repository interface {
	// CopyFrom bulk-inserts rows (aligned to columns order) into table
	// and returns the number of rows inserted.
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// Exec executes an arbitrary SQL statement (typically DDL).
	Exec(ctx context.Context, sql string) error

	// Close releases the underlying connection resources.
	Close()
}

// Factory constructs a Repository for a Config.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	facMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for the given storage
// kind. It is typically called from backend packages' init functions.
func Register(kind string, fn Factory) {
	facMu.Lock()
	defer facMu.Unlock()
	factories[kind] = fn
}

// New opens a Repository for cfg.Kind. Unknown kinds report the
// registered kinds to make a missing blank import obvious.
func New(ctx context.Context, cfg Config) (Repository, error) {
	facMu.RLock()
	fn, ok := factories[cfg.Kind]
	facMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unknown kind %q (registered: %v)", cfg.Kind, registeredKinds())
	}
	return fn(ctx, cfg)
}

func registeredKinds() []string {
	facMu.RLock()
	defer facMu.RUnlock()
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
