package storage

import (
	"context"
	"errors"
	"testing"

	"ipldash/internal/records"
)

// fakeRepo records every DDL statement and copy request so tests can
// inspect what ExportTables sent without a real database.
type fakeRepo struct {
	execs     []string
	copies    []fakeCopy
	copyErr   error
	execCalls int
}

type fakeCopy struct {
	table   string
	columns []string
	rows    [][]any
}

func (f *fakeRepo) CopyFrom(_ context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if f.copyErr != nil {
		return 0, f.copyErr
	}
	f.copies = append(f.copies, fakeCopy{table: table, columns: columns, rows: rows})
	return int64(len(rows)), nil
}

func (f *fakeRepo) Exec(_ context.Context, sqlText string) error {
	f.execCalls++
	f.execs = append(f.execs, sqlText)
	return nil
}

func (f *fakeRepo) Close() {}

func registerFakeDDL(t *testing.T) {
	t.Helper()
	RegisterDDL("fake", func(ctx context.Context, r Repository, def TableDef) error {
		return r.Exec(ctx, def.Name)
	})
}

func TestExportTablesWritesInSortedOrder(t *testing.T) {
	repo := &fakeRepo{}
	registerFakeDDL(t)

	kpis := records.New("total_matches", "total_runs")
	kpis.Append(records.Record{"total_matches": 2, "total_runs": 21})
	batsmen := records.New("batsman", "runs", "strike_rate")
	batsmen.Append(records.Record{"batsman": "B", "runs": 6, "strike_rate": 600.0})
	batsmen.Append(records.Record{"batsman": "A", "runs": 4, "strike_rate": 400.0})

	tables := map[string]*records.Table{
		"kpis":        kpis,
		"top_batsmen": batsmen,
	}
	if err := ExportTables(context.Background(), "fake", repo, "agg_", tables, "test"); err != nil {
		t.Fatalf("ExportTables: %v", err)
	}

	if len(repo.copies) != 2 {
		t.Fatalf("copies = %d, want 2", len(repo.copies))
	}
	if repo.copies[0].table != "agg_kpis" || repo.copies[1].table != "agg_top_batsmen" {
		t.Fatalf("copy order = %s, %s", repo.copies[0].table, repo.copies[1].table)
	}
	if repo.execCalls != 2 {
		t.Fatalf("DDL applied %d times, want 2", repo.execCalls)
	}
	if len(repo.copies[1].rows) != 2 || repo.copies[1].rows[0][0] != "B" {
		t.Fatalf("batsmen rows = %v", repo.copies[1].rows)
	}
}

func TestExportTablesSkipsNilAndEmptyTables(t *testing.T) {
	repo := &fakeRepo{}
	registerFakeDDL(t)

	tables := map[string]*records.Table{
		"empty": records.New(),
		"nil":   nil,
	}
	if err := ExportTables(context.Background(), "fake", repo, "agg_", tables, "test"); err != nil {
		t.Fatalf("ExportTables: %v", err)
	}
	if len(repo.copies) != 0 || repo.execCalls != 0 {
		t.Fatalf("empty tables reached the repository")
	}
}

func TestExportTablesPropagatesCopyError(t *testing.T) {
	repo := &fakeRepo{copyErr: errors.New("disk full")}
	registerFakeDDL(t)

	kpis := records.New("total_matches")
	kpis.Append(records.Record{"total_matches": 2})

	err := ExportTables(context.Background(), "fake", repo, "agg_", map[string]*records.Table{"kpis": kpis}, "test")
	if err == nil || !errors.Is(err, repo.copyErr) {
		t.Fatalf("err = %v", err)
	}
}

func TestEnsureTableUnknownKind(t *testing.T) {
	err := EnsureTable(context.Background(), "no-such-kind", &fakeRepo{}, TableDef{Name: "t"})
	if err == nil {
		t.Fatalf("expected error for unregistered kind")
	}
}

func TestInferColumnType(t *testing.T) {
	tbl := records.New("ints", "floats", "mixed", "text", "allnil")
	tbl.Append(records.Record{"ints": 1, "floats": 1.5, "mixed": 1, "text": "a", "allnil": nil})
	tbl.Append(records.Record{"ints": int64(2), "floats": 2.0, "mixed": 2.5, "text": "b", "allnil": nil})
	tbl.Append(records.Record{"ints": nil, "floats": nil, "mixed": nil, "text": nil, "allnil": nil})

	cases := map[string]string{
		"ints":   TypeInteger,
		"floats": TypeReal,
		"mixed":  TypeReal,
		"text":   TypeText,
		"allnil": TypeText,
	}
	for col, want := range cases {
		if got := inferColumnType(tbl, col); got != want {
			t.Fatalf("inferColumnType(%s) = %s, want %s", col, got, want)
		}
	}
}

func TestSQLIdent(t *testing.T) {
	cases := map[string]string{
		"top_batsmen":    "top_batsmen",
		"Mumbai Indians": "mumbai_indians",
		"Wins (2017)":    "wins_2017",
		"2017":           "t_2017",
		"***":            "col",
		"":               "col",
		"a--b":           "a_b",
	}
	for in, want := range cases {
		if got := sqlIdent(in); got != want {
			t.Fatalf("sqlIdent(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInferTableDefFoldsColumnNames(t *testing.T) {
	tbl := records.New("season", "Mumbai Indians")
	tbl.Append(records.Record{"season": "2017", "Mumbai Indians": 1})

	def := inferTableDef("agg_wins_by_season", tbl)
	if def.Name != "agg_wins_by_season" {
		t.Fatalf("def name = %s", def.Name)
	}
	if len(def.Columns) != 2 || def.Columns[1].Name != "mumbai_indians" {
		t.Fatalf("columns = %v", def.Columns)
	}
	if def.Columns[0].SQLType != TypeText || def.Columns[1].SQLType != TypeInteger {
		t.Fatalf("types = %v", def.Columns)
	}
}
