package records_test

import (
	"testing"

	"ipldash/internal/records"
)

func TestRecordCoercions(t *testing.T) {
	r := records.Record{
		"s":     "hello",
		"n":     "42",
		"f":     "3.5",
		"i":     7,
		"fl":    2.75,
		"nilv":  nil,
		"blank": "   ",
	}

	if got := r.Int("n"); got != 42 {
		t.Fatalf("Int(n) = %d, want 42", got)
	}
	if got := r.Int("f"); got != 3 {
		t.Fatalf("Int(f) = %d, want 3", got)
	}
	if got := r.Int("s"); got != 0 {
		t.Fatalf("Int(s) = %d, want 0", got)
	}
	if got := r.Int("missing"); got != 0 {
		t.Fatalf("Int(missing) = %d, want 0", got)
	}
	if got := r.Float("f"); got != 3.5 {
		t.Fatalf("Float(f) = %v, want 3.5", got)
	}
	if got := r.Float("i"); got != 7 {
		t.Fatalf("Float(i) = %v, want 7", got)
	}
	if got := r.String("i"); got != "7" {
		t.Fatalf("String(i) = %q, want \"7\"", got)
	}
	if got := r.String("fl"); got != "2.75" {
		t.Fatalf("String(fl) = %q, want \"2.75\"", got)
	}
	if got := r.String("nilv"); got != "" {
		t.Fatalf("String(nilv) = %q, want empty", got)
	}
}

func TestRecordHas(t *testing.T) {
	r := records.Record{"a": "x", "b": nil, "c": "  ", "d": 0}
	if !r.Has("a") {
		t.Fatalf("Has(a) = false, want true")
	}
	if r.Has("b") {
		t.Fatalf("Has(b) = true for nil value")
	}
	if r.Has("c") {
		t.Fatalf("Has(c) = true for blank string")
	}
	if !r.Has("d") {
		t.Fatalf("Has(d) = false for zero int")
	}
	if r.Has("missing") {
		t.Fatalf("Has(missing) = true")
	}
}

func TestTableCloneIsDeep(t *testing.T) {
	tbl := records.New("a", "b")
	tbl.Append(records.Record{"a": "1", "b": "2"})

	cp := tbl.Clone()
	cp.Rows[0]["a"] = "changed"
	cp.Columns[0] = "renamed"

	if tbl.Rows[0]["a"] != "1" {
		t.Fatalf("clone mutation leaked into source row")
	}
	if tbl.Columns[0] != "a" {
		t.Fatalf("clone mutation leaked into source columns")
	}
}

func TestTableRename(t *testing.T) {
	tbl := records.New("id", "x")
	tbl.Append(records.Record{"id": "1", "x": "y"})
	tbl.Rename("id", "match_id")

	if !tbl.HasColumn("match_id") || tbl.HasColumn("id") {
		t.Fatalf("columns after rename: %v", tbl.Columns)
	}
	if tbl.Rows[0]["match_id"] != "1" {
		t.Fatalf("row value not carried over: %v", tbl.Rows[0])
	}
	if _, ok := tbl.Rows[0]["id"]; ok {
		t.Fatalf("old key still present: %v", tbl.Rows[0])
	}

	// Renaming a missing column is a no-op.
	tbl.Rename("nope", "other")
	if len(tbl.Columns) != 2 {
		t.Fatalf("no-op rename changed columns: %v", tbl.Columns)
	}
}

func TestTableEnsureColumnBackfills(t *testing.T) {
	tbl := records.New("a")
	tbl.Append(records.Record{"a": "1"})
	tbl.EnsureColumn("b")

	if !tbl.HasColumn("b") {
		t.Fatalf("column b missing after EnsureColumn")
	}
	if v, ok := tbl.Rows[0]["b"]; !ok || v != nil {
		t.Fatalf("row not backfilled with nil: %v", tbl.Rows[0])
	}

	// Second call must not duplicate the column.
	tbl.EnsureColumn("b")
	if len(tbl.Columns) != 2 {
		t.Fatalf("duplicate column after repeated EnsureColumn: %v", tbl.Columns)
	}
}

func TestTableColumn(t *testing.T) {
	tbl := records.New("a")
	tbl.Append(records.Record{"a": "x"})
	tbl.Append(records.Record{"a": "y"})

	got := tbl.Column("a")
	if len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Fatalf("Column(a) = %v", got)
	}
}
