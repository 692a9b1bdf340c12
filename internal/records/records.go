// Package records defines the tabular unit of work shared by the
// parser, the pipeline stages, the renderers, and the export path: a
// Table of ordered columns over loosely typed rows.
//
// Values stay as whatever the producer put in (strings from the CSV
// parser, ints from the enricher) and consumers coerce on read through
// the Record accessors, which never panic and fall back to zero values.
package records

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is a single row: column name to value. Values may be nil when
// the source field was empty.
type Record map[string]any

// Clone returns a shallow copy of the record. Values are shared, which
// is fine for the scalar types records carry.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Has reports whether key holds a usable value: present, non-nil, and
// not an all-whitespace string.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// Int returns the value at key coerced to int. Strings are parsed,
// floats truncated; anything else yields 0.
func (r Record) Int(key string) int {
	switch t := r[key].(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case float32:
		return int(t)
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return int(n)
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f)
		}
	}
	return 0
}

// Float returns the value at key coerced to float64, or 0 when the
// value is absent or unparseable.
func (r Record) Float(key string) float64 {
	switch t := r[key].(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
	}
	return 0
}

// String returns the value at key as a string. Nil becomes "", numbers
// are formatted; this is what makes string-compared join keys work when
// one side carries ints.
func (r Record) String(key string) string {
	switch t := r[key].(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// Table is an ordered set of columns over rows. Columns carries the
// presentation order; Rows index by column name.
type Table struct {
	Columns []string
	Rows    []Record
}

// New returns an empty table with the given column order.
func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Len returns the row count.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether name is declared in Columns.
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// EnsureColumn declares name if it is missing, backfilling nil into
// rows that lack the key so every row stays addressable by every
// declared column.
func (t *Table) EnsureColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
	for _, r := range t.Rows {
		if _, ok := r[name]; !ok {
			r[name] = nil
		}
	}
}

// Append adds a row. The record is stored as-is; callers hand over
// ownership.
func (t *Table) Append(r Record) {
	t.Rows = append(t.Rows, r)
}

// Clone deep-copies the table: fresh column slice, fresh record maps.
func (t *Table) Clone() *Table {
	out := New(t.Columns...)
	out.Rows = make([]Record, 0, len(t.Rows))
	for _, r := range t.Rows {
		out.Rows = append(out.Rows, r.Clone())
	}
	return out
}

// Rename changes a column name in Columns and in every row. A missing
// old name is a no-op.
func (t *Table) Rename(old, updated string) {
	renamed := false
	for i, c := range t.Columns {
		if c == old {
			t.Columns[i] = updated
			renamed = true
			break
		}
	}
	if !renamed {
		return
	}
	for _, r := range t.Rows {
		if v, ok := r[old]; ok {
			r[updated] = v
			delete(r, old)
		}
	}
}

// Column returns the values of one column in row order. Unknown
// columns yield a slice of nils.
func (t *Table) Column(name string) []any {
	out := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[name]
	}
	return out
}
