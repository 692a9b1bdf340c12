package dashboard

import "ipldash/internal/records"

// ChartSpec describes how a renderer may draw one of the aggregate
// tables. The pipeline only emits data plus these hints; whether (and
// how) a chart is actually drawn is the renderer's concern, so a
// renderer with no charting capability can ignore the spec entirely.
type ChartSpec struct {
	// Kind is one of "bar", "barh", "line".
	Kind string `json:"kind"`
	// Table names the aggregate table the chart is keyed on.
	Table string `json:"table"`
	// X and Y name the category and value columns within that table.
	X string `json:"x"`
	Y string `json:"y"`
	// Title is the human-readable chart caption.
	Title string `json:"title"`
}

// chartSpecs returns a chart spec for every produced table that has a
// sensible default visualization. Tables omitted by the aggregator get
// no spec.
func chartSpecs(tables map[string]*records.Table, f Filter) map[string]ChartSpec {
	specs := make(map[string]ChartSpec)

	if _, ok := tables[TableTopBatsmen]; ok {
		specs[TableTopBatsmen] = ChartSpec{
			Kind: "bar", Table: TableTopBatsmen, X: "batsman", Y: "runs",
			Title: "Top Batsmen by Runs",
		}
	}
	if _, ok := tables[TableTopBowlers]; ok {
		specs[TableTopBowlers] = ChartSpec{
			Kind: "bar", Table: TableTopBowlers, X: "bowler", Y: "wickets",
			Title: "Top Bowlers by Wickets",
		}
	}
	if _, ok := tables[TableMatchesPerSeason]; ok {
		specs[TableMatchesPerSeason] = ChartSpec{
			Kind: "bar", Table: TableMatchesPerSeason, X: "season", Y: "matches",
			Title: "Matches per Season",
		}
	}
	// The wins table only has a single value column in series form; the
	// matrix gets no spec, like head_to_head.
	if _, ok := tables[TableWinsBySeason]; ok && f.TeamActive() {
		specs[TableWinsBySeason] = ChartSpec{
			Kind: "line", Table: TableWinsBySeason, X: "season", Y: "wins",
			Title: "Wins per Season",
		}
	}
	if _, ok := tables[TableTopVenues]; ok {
		specs[TableTopVenues] = ChartSpec{
			Kind: "barh", Table: TableTopVenues, X: "venue", Y: "matches",
			Title: "Top Venues by Matches Hosted",
		}
	}
	return specs
}
