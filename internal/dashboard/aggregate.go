package dashboard

import (
	"sort"
	"strconv"
	"strings"

	"ipldash/internal/records"
)

// AllTeams and AllSeasons are the sentinel filter values meaning "no
// filter". An empty string behaves the same.
const (
	AllTeams   = "All"
	AllSeasons = "All"
)

// Filter selects the slice of the data the aggregates describe. Team must
// exactly match values in the winner/team1/team2 columns; Season is
// compared as a string.
type Filter struct {
	Team   string
	Season string
}

// TeamActive reports whether a specific team is selected.
func (f Filter) TeamActive() bool { return !isAll(f.Team) }

// SeasonActive reports whether a specific season is selected.
func (f Filter) SeasonActive() bool { return !isAll(f.Season) }

func isAll(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "all")
}

// Limits caps the ranked aggregate tables. Zero fields take the
// conventional defaults (15 batsmen, 15 bowlers, 10 venues).
type Limits struct {
	Batsmen int
	Bowlers int
	Venues  int
}

func (l Limits) withDefaults() Limits {
	if l.Batsmen <= 0 {
		l.Batsmen = 15
	}
	if l.Bowlers <= 0 {
		l.Bowlers = 15
	}
	if l.Venues <= 0 {
		l.Venues = 10
	}
	return l
}

// Aggregate table names as they appear in the result map.
const (
	TableKPIs             = "kpis"
	TableTopBatsmen       = "top_batsmen"
	TableTopBowlers       = "top_bowlers"
	TableMatchesPerSeason = "matches_per_season"
	TableWinsBySeason     = "wins_by_season"
	TableTopVenues        = "top_venues"
	TableHeadToHead       = "head_to_head"
)

// nonBowlerDismissals are dismissal kinds not credited to the bowler and
// excluded from the bowler wicket count.
var nonBowlerDismissals = map[string]bool{
	"run out":               true,
	"retired hurt":          true,
	"obstructing the field": true,
}

// Aggregate computes the fixed aggregate menu from the joined deliveries
// and the raw match table. It is a pure function: inputs are read-only
// and a fresh Result is returned on every call.
//
// Each aggregate is computed defensively: when a column it needs is
// absent the aggregate is omitted from the map rather than raising. An
// empty filter slice yields empty tables, not errors.
func Aggregate(joined, matches *records.Table, f Filter, lim Limits) map[string]*records.Table {
	lim = lim.withDefaults()
	out := make(map[string]*records.Table)

	deliveries := filterDeliveries(joined, f)
	seasonMatches := filterMatchesBySeason(matches, f)

	if t := kpiTable(deliveries, seasonMatches); t != nil {
		out[TableKPIs] = t
	}
	if t := topBatsmen(deliveries, lim.Batsmen); t != nil {
		out[TableTopBatsmen] = t
	}
	if t := topBowlers(deliveries, lim.Bowlers); t != nil {
		out[TableTopBowlers] = t
	}
	if t := matchesPerSeason(seasonMatches); t != nil {
		out[TableMatchesPerSeason] = t
	}
	if t := winsBySeason(seasonMatches, f); t != nil {
		out[TableWinsBySeason] = t
	}
	if t := topVenues(seasonMatches, f, lim.Venues); t != nil {
		out[TableTopVenues] = t
	}
	if t := headToHead(seasonMatches); t != nil {
		out[TableHeadToHead] = t
	}
	return out
}

// filterDeliveries restricts the joined deliveries to the selected
// season. The season column only exists when the join succeeded; without
// it a season filter silently matches nothing season-specific and the
// full table is used, mirroring the graceful degradation of the join.
func filterDeliveries(t *records.Table, f Filter) *records.Table {
	if t == nil {
		return nil
	}
	if !f.SeasonActive() || !t.HasColumn("season") {
		return t
	}
	want := strings.TrimSpace(f.Season)
	out := records.New(t.Columns...)
	for _, r := range t.Rows {
		if r.String("season") == want {
			out.Append(r)
		}
	}
	return out
}

func filterMatchesBySeason(t *records.Table, f Filter) *records.Table {
	if t == nil {
		return nil
	}
	if !f.SeasonActive() || !t.HasColumn("season") {
		return t
	}
	want := strings.TrimSpace(f.Season)
	out := records.New(t.Columns...)
	for _, r := range t.Rows {
		if r.String("season") == want {
			out.Append(r)
		}
	}
	return out
}

// kpiTable produces the single-row headline table: total matches (distinct
// identifiers, falling back to row count), total runs, total wickets.
func kpiTable(deliveries, matches *records.Table) *records.Table {
	if deliveries == nil && matches == nil {
		return nil
	}

	totalMatches := 0
	if matches != nil {
		if matches.HasColumn(KeyColumn) {
			seen := make(map[string]bool, matches.Len())
			for _, r := range matches.Rows {
				seen[r.String(KeyColumn)] = true
			}
			totalMatches = len(seen)
		} else {
			totalMatches = matches.Len()
		}
	}

	totalRuns, totalWickets := 0, 0
	if deliveries != nil {
		for _, r := range deliveries.Rows {
			totalRuns += r.Int(ColTotalRuns)
			totalWickets += r.Int(ColIsWicket)
		}
	}

	t := records.New("total_matches", "total_runs", "total_wickets")
	t.Append(records.Record{
		"total_matches": totalMatches,
		"total_runs":    totalRuns,
		"total_wickets": totalWickets,
	})
	return t
}

// group accumulates per-key sums while remembering first-appearance
// order, which is the tie-break order for every ranked aggregate.
type group struct {
	keys []string
	sums map[string]map[string]int
}

func newGroup() *group {
	return &group{sums: make(map[string]map[string]int)}
}

func (g *group) add(key, field string, delta int) {
	m, ok := g.sums[key]
	if !ok {
		m = make(map[string]int)
		g.sums[key] = m
		g.keys = append(g.keys, key)
	}
	m[field] += delta
}

// topBatsmen ranks batsmen by runs with balls faced and strike rate.
func topBatsmen(t *records.Table, n int) *records.Table {
	if t == nil || !t.HasColumn("batsman") {
		return nil
	}
	runKey := colBatsmanRuns
	if !t.HasColumn(runKey) {
		runKey = ColTotalRuns
	}

	g := newGroup()
	for _, r := range t.Rows {
		name := r.String("batsman")
		if name == "" {
			continue
		}
		g.add(name, "runs", r.Int(runKey))
		g.add(name, "balls", r.Int(ColLegalDelivery))
	}

	sort.SliceStable(g.keys, func(i, j int) bool {
		return g.sums[g.keys[i]]["runs"] > g.sums[g.keys[j]]["runs"]
	})
	if len(g.keys) > n {
		g.keys = g.keys[:n]
	}

	out := records.New("batsman", "runs", "balls", "strike_rate")
	for _, name := range g.keys {
		runs := g.sums[name]["runs"]
		balls := g.sums[name]["balls"]
		sr := 0.0
		if balls > 0 {
			sr = float64(runs) / float64(balls) * 100
		}
		out.Append(records.Record{
			"batsman":     name,
			"runs":        runs,
			"balls":       balls,
			"strike_rate": sr,
		})
	}
	return out
}

// topBowlers ranks bowlers by wickets with runs conceded, overs, and
// economy. Wicket credit excludes dismissals not attributable to the
// bowler when the dismissal_kind column is available; without it every
// is_wicket counts, which overcounts run-outs.
func topBowlers(t *records.Table, n int) *records.Table {
	if t == nil || !t.HasColumn("bowler") {
		return nil
	}
	hasKind := t.HasColumn("dismissal_kind")

	g := newGroup()
	for _, r := range t.Rows {
		name := r.String("bowler")
		if name == "" {
			continue
		}
		g.add(name, "runs_conceded", r.Int(ColTotalRuns))
		g.add(name, "legal_balls", r.Int(ColLegalDelivery))

		w := r.Int(ColIsWicket)
		if w == 1 && hasKind && nonBowlerDismissals[strings.ToLower(r.String("dismissal_kind"))] {
			w = 0
		}
		g.add(name, "wickets", w)
	}

	sort.SliceStable(g.keys, func(i, j int) bool {
		return g.sums[g.keys[i]]["wickets"] > g.sums[g.keys[j]]["wickets"]
	})
	if len(g.keys) > n {
		g.keys = g.keys[:n]
	}

	out := records.New("bowler", "wickets", "runs_conceded", "legal_balls", "overs", "economy")
	for _, name := range g.keys {
		s := g.sums[name]
		overs := float64(s["legal_balls"]) / 6
		var economy any
		if overs > 0 {
			economy = float64(s["runs_conceded"]) / overs
		}
		out.Append(records.Record{
			"bowler":        name,
			"wickets":       s["wickets"],
			"runs_conceded": s["runs_conceded"],
			"legal_balls":   s["legal_balls"],
			"overs":         overs,
			"economy":       economy,
		})
	}
	return out
}

// matchesPerSeason counts matches played per season. Unlike
// winsBySeason it keeps no-result matches (null winner), so the counts
// reflect the schedule, not the outcomes. The team filter does not
// apply; like the KPIs this is a league-wide figure.
func matchesPerSeason(matches *records.Table) *records.Table {
	if matches == nil || !matches.HasColumn("season") {
		return nil
	}

	g := newGroup()
	for _, r := range matches.Rows {
		season := r.String("season")
		if season == "" {
			continue
		}
		g.add(season, "matches", 1)
	}
	sortSeasons(g.keys)

	out := records.New("season", "matches")
	for _, s := range g.keys {
		out.Append(records.Record{"season": s, "matches": g.sums[s]["matches"]})
	}
	return out
}

// winsBySeason produces either the season × winner count matrix (no team
// selected, missing combinations filled with 0) or a season → wins
// series for the selected team.
func winsBySeason(matches *records.Table, f Filter) *records.Table {
	if matches == nil || !matches.HasColumn("season") || !matches.HasColumn("winner") {
		return nil
	}

	if f.TeamActive() {
		g := newGroup()
		for _, r := range matches.Rows {
			if r.String("winner") != strings.TrimSpace(f.Team) {
				continue
			}
			season := r.String("season")
			if season == "" {
				continue
			}
			g.add(season, "wins", 1)
		}
		sortSeasons(g.keys)
		out := records.New("season", "wins")
		for _, s := range g.keys {
			out.Append(records.Record{"season": s, "wins": g.sums[s]["wins"]})
		}
		return out
	}

	counts := make(map[string]map[string]int)
	var seasons []string
	winnerSet := make(map[string]bool)
	for _, r := range matches.Rows {
		season, winner := r.String("season"), r.String("winner")
		if season == "" || winner == "" {
			// No-result matches have a null winner and do not count.
			continue
		}
		if counts[season] == nil {
			counts[season] = make(map[string]int)
			seasons = append(seasons, season)
		}
		counts[season][winner]++
		winnerSet[winner] = true
	}
	sortSeasons(seasons)
	winners := make([]string, 0, len(winnerSet))
	for w := range winnerSet {
		winners = append(winners, w)
	}
	sort.Strings(winners)

	out := records.New(append([]string{"season"}, winners...)...)
	for _, s := range seasons {
		row := records.Record{"season": s}
		for _, w := range winners {
			row[w] = counts[s][w]
		}
		out.Append(row)
	}
	return out
}

// topVenues ranks venues by match count, or by matches won by the
// selected team.
func topVenues(matches *records.Table, f Filter, n int) *records.Table {
	if matches == nil || !matches.HasColumn("venue") {
		return nil
	}
	if f.TeamActive() && !matches.HasColumn("winner") {
		return nil
	}

	g := newGroup()
	for _, r := range matches.Rows {
		if f.TeamActive() && r.String("winner") != strings.TrimSpace(f.Team) {
			continue
		}
		venue := r.String("venue")
		if venue == "" {
			venue = "Unknown"
		}
		g.add(venue, "matches", 1)
	}

	sort.SliceStable(g.keys, func(i, j int) bool {
		return g.sums[g.keys[i]]["matches"] > g.sums[g.keys[j]]["matches"]
	})
	if len(g.keys) > n {
		g.keys = g.keys[:n]
	}

	out := records.New("venue", "matches")
	for _, v := range g.keys {
		out.Append(records.Record{"venue": v, "matches": g.sums[v]["matches"]})
	}
	return out
}

// headToHead produces the winner × team2 count matrix. Rows missing any
// of team1/team2/winner are dropped first. The matrix is deliberately
// asymmetric: pairings are not folded into a canonical team-pair key.
func headToHead(matches *records.Table) *records.Table {
	if matches == nil ||
		!matches.HasColumn("team1") || !matches.HasColumn("team2") || !matches.HasColumn("winner") {
		return nil
	}

	counts := make(map[string]map[string]int)
	winnerSet := make(map[string]bool)
	oppSet := make(map[string]bool)
	for _, r := range matches.Rows {
		t1, t2, w := r.String("team1"), r.String("team2"), r.String("winner")
		if t1 == "" || t2 == "" || w == "" {
			continue
		}
		if counts[w] == nil {
			counts[w] = make(map[string]int)
		}
		counts[w][t2]++
		winnerSet[w] = true
		oppSet[t2] = true
	}
	if len(winnerSet) == 0 {
		return records.New("winner")
	}

	winners := sortedKeys(winnerSet)
	opponents := sortedKeys(oppSet)

	out := records.New(append([]string{"winner"}, opponents...)...)
	for _, w := range winners {
		row := records.Record{"winner": w}
		for _, o := range opponents {
			row[o] = counts[w][o]
		}
		out.Append(row)
	}
	return out
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// sortSeasons orders season labels numerically when they all parse as
// numbers, falling back to lexical order for mixed labels like
// "2007/08".
func sortSeasons(seasons []string) {
	numeric := true
	for _, s := range seasons {
		if _, err := strconv.Atoi(s); err != nil {
			numeric = false
			break
		}
	}
	if numeric {
		sort.Slice(seasons, func(i, j int) bool {
			a, _ := strconv.Atoi(seasons[i])
			b, _ := strconv.Atoi(seasons[j])
			return a < b
		})
		return
	}
	sort.Strings(seasons)
}
