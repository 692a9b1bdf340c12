package dashboard

import "ipldash/internal/records"

// matchProjection lists the match-level columns attached to each
// delivery by the join, in output order. Only those actually present in
// the match table are attached.
var matchProjection = []string{"season", "winner", "venue", "team1", "team2"}

// JoinMatchColumns left-joins the enriched deliveries onto a projection
// of the match table keyed by KeyColumn. Every delivery row is preserved;
// deliveries whose match_id has no counterpart keep nil for the joined
// columns. When either table lacks the normalized key the deliveries are
// returned as an unjoined copy and match-dependent aggregates degrade
// downstream.
//
// Keys are compared as strings so an integer-typed id on one side still
// matches its textual form on the other. The first match row wins for a
// duplicated id, keeping the join row-count-preserving either way.
func JoinMatchColumns(deliveries, matches *records.Table) *records.Table {
	if deliveries == nil {
		return nil
	}
	out := deliveries.Clone()
	if matches == nil || !out.HasColumn(KeyColumn) || !matches.HasColumn(KeyColumn) {
		return out
	}

	var attach []string
	for _, c := range matchProjection {
		if matches.HasColumn(c) {
			attach = append(attach, c)
		}
	}
	if len(attach) == 0 {
		return out
	}

	index := make(map[string]records.Record, matches.Len())
	for _, m := range matches.Rows {
		k := m.String(KeyColumn)
		if k == "" {
			continue
		}
		if _, seen := index[k]; !seen {
			index[k] = m
		}
	}

	for _, d := range out.Rows {
		m := index[d.String(KeyColumn)]
		for _, c := range attach {
			if m != nil {
				d[c] = m[c]
			} else if _, ok := d[c]; !ok {
				d[c] = nil
			}
		}
	}
	for _, c := range attach {
		out.EnsureColumn(c)
	}
	return out
}
