// Package dashboard implements the match/delivery preparation pipeline:
// join-key normalization, delivery enrichment, the match-column left
// join, and the aggregate menu the renderers consume.
//
// Control flow is strictly linear (normalize → enrich → join →
// aggregate) and every stage returns a new table; inputs are never
// mutated in place.
package dashboard

import "ipldash/internal/records"

// KeyColumn is the canonical join-key name shared by both tables after
// normalization.
const KeyColumn = "match_id"

// keyCandidates are the identifier column names tried in priority order
// when a table does not already carry KeyColumn. Kaggle exports of the
// match table use "id"; some delivery exports use "matchid".
var keyCandidates = []string{KeyColumn, "id", "matchid", "match"}

// FindKeyColumn returns the first candidate identifier column present in
// the table, in priority order.
func FindKeyColumn(t *records.Table) (string, bool) {
	for _, c := range keyCandidates {
		if t.HasColumn(c) {
			return c, true
		}
	}
	return "", false
}

// NormalizeKeys returns copies of both tables with their identifier
// column renamed to KeyColumn when an alternate name was found. No other
// columns are touched and nothing is dropped. Absence of any usable key
// is not an error here; the joiner discovers it and falls back to
// returning deliveries unjoined.
func NormalizeKeys(matches, deliveries *records.Table) (*records.Table, *records.Table) {
	return normalizeKey(matches), normalizeKey(deliveries)
}

func normalizeKey(t *records.Table) *records.Table {
	if t == nil {
		return nil
	}
	out := t.Clone()
	if out.HasColumn(KeyColumn) {
		return out
	}
	if name, ok := FindKeyColumn(out); ok {
		out.Rename(name, KeyColumn)
	}
	return out
}
