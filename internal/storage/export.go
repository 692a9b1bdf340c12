package storage

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"ipldash/internal/metrics"
	"ipldash/internal/records"
)

// ExportTables writes every aggregate table to the repository: one
// destination table per aggregate, named prefix+name, created on demand
// with column types inferred from the values. Tables are written in
// sorted name order so runs are deterministic.
func ExportTables(
	ctx context.Context,
	kind string,
	repo Repository,
	prefix string,
	tables map[string]*records.Table,
	job string,
) error {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	start := time.Now()
	var exportErr error
	for _, name := range names {
		t := tables[name]
		if t == nil || len(t.Columns) == 0 {
			continue
		}
		def := inferTableDef(prefix+name, t)
		if err := EnsureTable(ctx, kind, repo, def); err != nil {
			exportErr = fmt.Errorf("ensure table %s: %w", def.Name, err)
			break
		}

		cols := make([]string, len(def.Columns))
		for i, c := range def.Columns {
			cols[i] = c.Name
		}
		rows := make([][]any, t.Len())
		for i, r := range t.Rows {
			row := make([]any, len(t.Columns))
			for j, c := range t.Columns {
				row[j] = r[c]
			}
			rows[i] = row
		}

		n, err := repo.CopyFrom(ctx, def.Name, cols, rows)
		if err != nil {
			exportErr = fmt.Errorf("export %s: %w", def.Name, err)
			break
		}
		metrics.RecordRows(job, "exported", n)
		log.Printf("export: %s rows=%d", def.Name, n)
	}

	metrics.RecordStage(job, "export", exportErr, time.Since(start))
	return exportErr
}

// inferTableDef derives a backend-agnostic table definition from the
// values of one aggregate table: a column whose non-nil values are all
// ints becomes INTEGER, any float widens it to REAL, anything else is
// TEXT. Destination column names are folded to safe SQL identifiers.
func inferTableDef(name string, t *records.Table) TableDef {
	def := TableDef{Name: sqlIdent(name)}
	for _, col := range t.Columns {
		sqlType := inferColumnType(t, col)
		def.Columns = append(def.Columns, Column{Name: sqlIdent(col), SQLType: sqlType})
	}
	return def
}

func inferColumnType(t *records.Table, col string) string {
	sawValue := false
	sawFloat := false
	for _, r := range t.Rows {
		switch r[col].(type) {
		case nil:
			continue
		case int, int64:
			sawValue = true
		case float64:
			sawValue = true
			sawFloat = true
		default:
			return TypeText
		}
	}
	switch {
	case !sawValue:
		return TypeText
	case sawFloat:
		return TypeReal
	default:
		return TypeInteger
	}
}

// sqlIdent folds an aggregate/column name into a conservative SQL
// identifier: lowercase ASCII letters, digits, and underscores. Team
// names used as matrix columns ("Mumbai Indians") become
// "mumbai_indians".
func sqlIdent(s string) string {
	out := make([]rune, 0, len(s))
	prevUnderscore := false
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
			prevUnderscore = false
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			out = append(out, r)
			prevUnderscore = false
		default:
			if !prevUnderscore && len(out) > 0 {
				out = append(out, '_')
				prevUnderscore = true
			}
		}
	}
	// Trim a trailing separator left by punctuation at the end.
	for len(out) > 0 && out[len(out)-1] == '_' {
		out = out[:len(out)-1]
	}
	if len(out) == 0 {
		return "col"
	}
	if out[0] >= '0' && out[0] <= '9' {
		return "t_" + string(out)
	}
	return string(out)
}
