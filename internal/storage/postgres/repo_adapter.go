package postgres

import (
	"context"
	"fmt"
	"strings"

	"ipldash/internal/storage"
)

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

// wrappedRepo adapts *postgres.Repository to the storage.Repository interface,
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

var _ storage.Repository = (*wrappedRepo)(nil)

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("postgres",
		func(ctx context.Context, repo storage.Repository, def storage.TableDef) error {
			return repo.Exec(ctx, createTableSQL(def))
		})
}

// pgType maps the generic column types to Postgres equivalents.
func pgType(t string) string {
	switch t {
	case storage.TypeInteger:
		return "BIGINT"
	case storage.TypeReal:
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}

func createTableSQL(def storage.TableDef) string {
	cols := make([]string, 0, len(def.Columns))
	for _, c := range def.Columns {
		cols = append(cols, fmt.Sprintf("%s %s", pgIdent(c.Name), pgType(c.SQLType)))
	}
	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s)",
		pgFQN(def.Name),
		strings.Join(cols, ", "),
	)
}
