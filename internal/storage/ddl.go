package storage

import (
	"context"
	"fmt"
	"sync"
)

// Generic column types used in TableDef. Backends map them to their own
// SQL type names.
const (
	TypeText    = "TEXT"
	TypeInteger = "INTEGER"
	TypeReal    = "REAL"
)

// Column describes one destination column.
type Column struct {
	Name    string
	SQLType string // one of TypeText, TypeInteger, TypeReal
}

// TableDef is a backend-agnostic table definition inferred from an
// aggregate table's values.
type TableDef struct {
	Name    string
	Columns []Column
}

// DDLBootstrapper applies backend-specific DDL (typically CREATE TABLE
// IF NOT EXISTS) for a TableDef via repo.Exec. Backends register their
// implementation for a given storage kind at init time.
type DDLBootstrapper func(ctx context.Context, repo Repository, def TableDef) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) a DDLBootstrapper for the given
// storage kind.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable locates the DDLBootstrapper for kind and invokes it.
// Callers do not need to know which backend they are using; they simply
// pass the definition and the already-open Repository.
func EnsureTable(ctx context.Context, kind string, repo Repository, def TableDef) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("storage: no DDL bootstrapper registered for kind %q", kind)
	}
	return fn(ctx, repo, def)
}
