package dashboard

import "ipldash/internal/records"

// Derived delivery columns.
const (
	ColTotalRuns     = "total_runs"
	ColLegalDelivery = "legal_delivery"
	ColIsWicket      = "is_wicket"
)

// Source delivery columns consumed by the enricher.
const (
	colBatsmanRuns     = "batsman_runs"
	colExtraRuns       = "extra_runs"
	colWideRuns        = "wide_runs"
	colNoballRuns      = "noball_runs"
	colPlayerDismissed = "player_dismissed"
)

// EnrichDeliveries returns a copy of the delivery table with the run
// columns coerced to integers and the derived columns attached:
//
//   - total_runs:     existing column when present, else batsman_runs +
//     extra_runs, else 0
//   - legal_delivery: 1 iff wide_runs == 0 and noball_runs == 0. Byes and
//     leg-byes still count as legal; only wides and no-balls are excluded,
//     matching the convention that a legal delivery is one that counts
//     toward the bowler's over.
//   - is_wicket:      1 iff player_dismissed is non-null (0 everywhere
//     when the column is absent). Run-outs are flagged like any other
//     dismissal; the bowler aggregate applies its own credit filter.
//
// The input table is never mutated, the output row count equals the
// input row count, and re-running on already-enriched output yields
// identical values.
func EnrichDeliveries(t *records.Table) *records.Table {
	if t == nil {
		return nil
	}
	out := t.Clone()

	hasTotal := out.HasColumn(ColTotalRuns)
	hasBatsman := out.HasColumn(colBatsmanRuns)
	hasExtra := out.HasColumn(colExtraRuns)
	hasDismissed := out.HasColumn(colPlayerDismissed)

	for _, r := range out.Rows {
		batsman := r.Int(colBatsmanRuns)
		extra := r.Int(colExtraRuns)
		wide := r.Int(colWideRuns)
		noball := r.Int(colNoballRuns)

		if hasBatsman {
			r[colBatsmanRuns] = batsman
		}
		if hasExtra {
			r[colExtraRuns] = extra
		}
		r[colWideRuns] = wide
		r[colNoballRuns] = noball

		switch {
		case hasTotal && r.Has(ColTotalRuns):
			r[ColTotalRuns] = r.Int(ColTotalRuns)
		case hasBatsman || hasExtra:
			r[ColTotalRuns] = batsman + extra
		default:
			r[ColTotalRuns] = 0
		}

		if wide == 0 && noball == 0 {
			r[ColLegalDelivery] = 1
		} else {
			r[ColLegalDelivery] = 0
		}

		if hasDismissed && r.Has(colPlayerDismissed) {
			r[ColIsWicket] = 1
		} else {
			r[ColIsWicket] = 0
		}
	}

	out.EnsureColumn(colWideRuns)
	out.EnsureColumn(colNoballRuns)
	out.EnsureColumn(ColTotalRuns)
	out.EnsureColumn(ColLegalDelivery)
	out.EnsureColumn(ColIsWicket)
	return out
}
