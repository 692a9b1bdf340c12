package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"ipldash/internal/storage"
)

func testRepo(t *testing.T) *Repository {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db")
	r, closeFn, err := NewRepository(context.Background(), Config{DSN: dsn})
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	t.Cleanup(closeFn)
	return r
}

func kpisDef() storage.TableDef {
	return storage.TableDef{
		Name: "agg_kpis",
		Columns: []storage.Column{
			{Name: "total_matches", SQLType: storage.TypeInteger},
			{Name: "total_runs", SQLType: storage.TypeInteger},
			{Name: "strike_rate", SQLType: storage.TypeReal},
		},
	}
}

func TestNewRepositoryRejectsEmptyDSN(t *testing.T) {
	if _, _, err := NewRepository(context.Background(), Config{}); err == nil {
		t.Fatalf("empty DSN accepted")
	}
}

func TestCreateTableSQL(t *testing.T) {
	want := "CREATE TABLE IF NOT EXISTS agg_kpis " +
		"(total_matches INTEGER, total_runs INTEGER, strike_rate REAL)"
	if got := createTableSQL(kpisDef()); got != want {
		t.Fatalf("createTableSQL = %q, want %q", got, want)
	}
}

func TestCopyFromRoundTrip(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()

	if err := r.Exec(ctx, createTableSQL(kpisDef())); err != nil {
		t.Fatalf("Exec DDL: %v", err)
	}
	// Idempotent: a second run must not fail.
	if err := r.Exec(ctx, createTableSQL(kpisDef())); err != nil {
		t.Fatalf("Exec DDL twice: %v", err)
	}

	n, err := r.CopyFrom(ctx, "agg_kpis",
		[]string{"total_matches", "total_runs", "strike_rate"},
		[][]any{
			{2, 21, 150.0},
			{1, 9, nil},
		})
	if err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
	if n != 2 {
		t.Fatalf("inserted = %d, want 2", n)
	}

	var count, runs int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(total_runs), 0) FROM agg_kpis").Scan(&count, &runs); err != nil {
		t.Fatalf("query back: %v", err)
	}
	if count != 2 || runs != 30 {
		t.Fatalf("count=%d runs=%d", count, runs)
	}
}

func TestCopyFromEmptyRowsIsNoop(t *testing.T) {
	r := testRepo(t)
	n, err := r.CopyFrom(context.Background(), "agg_kpis", []string{"a"}, nil)
	if err != nil || n != 0 {
		t.Fatalf("n=%d err=%v", n, err)
	}
}

func TestCopyFromRowWidthMismatch(t *testing.T) {
	r := testRepo(t)
	ctx := context.Background()
	if err := r.Exec(ctx, createTableSQL(kpisDef())); err != nil {
		t.Fatalf("Exec DDL: %v", err)
	}
	_, err := r.CopyFrom(ctx, "agg_kpis",
		[]string{"total_matches", "total_runs", "strike_rate"},
		[][]any{{1}})
	if err == nil {
		t.Fatalf("short row accepted")
	}
}
