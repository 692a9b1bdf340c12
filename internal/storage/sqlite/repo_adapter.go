package sqlite

import (
	"context"
	"fmt"
	"strings"

	"ipldash/internal/storage"
)

// newRepository is a test hook that points to NewRepository by default.
// Tests may replace this variable to avoid real DB connections.
var newRepository = NewRepository

// wrappedRepo adapts *sqlite.Repository to the storage.Repository interface,
// adding a Close method that calls the cleanup function returned by
// NewRepository.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

// Close implements storage.Repository.Close.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

// Ensure wrappedRepo satisfies the interface at compile time.
var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	// DDL bootstrap registration. SQLite's type affinity accepts the
	// generic TEXT/INTEGER/REAL names as-is.
	storage.RegisterDDL("sqlite",
		func(ctx context.Context, repo storage.Repository, def storage.TableDef) error {
			return repo.Exec(ctx, createTableSQL(def))
		})
}

func createTableSQL(def storage.TableDef) string {
	cols := make([]string, 0, len(def.Columns))
	for _, c := range def.Columns {
		cols = append(cols, fmt.Sprintf("%s %s", c.Name, c.SQLType))
	}
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s)",
		def.Name,
		strings.Join(cols, ", "),
	)
}
