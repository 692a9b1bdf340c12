package render_test

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ipldash/internal/dashboard"
	"ipldash/internal/records"
	"ipldash/internal/render"
)

func sampleResult() *dashboard.Result {
	kpis := records.New("total_matches", "total_runs", "total_wickets")
	kpis.Append(records.Record{"total_matches": 2, "total_runs": 21, "total_wickets": 2})

	batsmen := records.New("batsman", "runs", "balls", "strike_rate")
	batsmen.Append(records.Record{"batsman": "B", "runs": 6, "balls": 1, "strike_rate": 600.0})
	batsmen.Append(records.Record{"batsman": "A", "runs": 4, "balls": 1, "strike_rate": 400.0})

	bowlers := records.New("bowler", "wickets", "runs_conceded", "legal_balls", "overs", "economy")
	bowlers.Append(records.Record{
		"bowler": "X", "wickets": 1, "runs_conceded": 12, "legal_balls": 3,
		"overs": 0.5, "economy": 24.0,
	})
	bowlers.Append(records.Record{
		"bowler": "Z", "wickets": 0, "runs_conceded": 1, "legal_balls": 0,
		"overs": 0.0, "economy": nil,
	})

	tables := map[string]*records.Table{
		dashboard.TableKPIs:       kpis,
		dashboard.TableTopBatsmen: batsmen,
		dashboard.TableTopBowlers: bowlers,
	}
	return &dashboard.Result{
		Tables: tables,
		Charts: map[string]dashboard.ChartSpec{
			dashboard.TableTopBatsmen: {
				Kind: "bar", Table: dashboard.TableTopBatsmen,
				X: "batsman", Y: "runs", Title: "Top Batsmen by Runs",
			},
		},
	}
}

func TestOrderedNames(t *testing.T) {
	empty := records.New("x")
	tables := map[string]*records.Table{
		dashboard.TableHeadToHead:       empty,
		dashboard.TableKPIs:             empty,
		dashboard.TableWinsBySeason:     empty,
		dashboard.TableMatchesPerSeason: empty,
		dashboard.TableTopVenues:        empty,
		dashboard.TableTopBowlers:       empty,
		dashboard.TableTopBatsmen:       empty,
		"zz_extra":                      empty,
		"aa_extra":                      empty,
	}

	got := render.OrderedNames(tables)
	want := []string{
		dashboard.TableKPIs, dashboard.TableTopBatsmen, dashboard.TableTopBowlers,
		dashboard.TableMatchesPerSeason, dashboard.TableWinsBySeason,
		dashboard.TableTopVenues, dashboard.TableHeadToHead,
		"aa_extra", "zz_extra",
	}
	if len(got) != len(want) {
		t.Fatalf("OrderedNames = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("OrderedNames = %v, want %v", got, want)
		}
	}
}

func TestCellText(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, "-"},
		{600.0, "600.00"},
		{0.5, "0.50"},
		{6, "6"},
		{"MI", "MI"},
	}
	for _, c := range cases {
		if got := render.CellText(c.in); got != c.want {
			t.Fatalf("CellText(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTermRenderer(t *testing.T) {
	var buf bytes.Buffer
	r, err := render.New("term", render.Options{Writer: &buf})
	if err != nil {
		t.Fatalf("New(term): %v", err)
	}

	res := sampleResult()
	res.Filter = dashboard.Filter{Team: "MI"}
	if err := r.Render(res); err != nil {
		t.Fatalf("Render: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Filter: team=MI season=All",
		"Key Figures",
		"Top Batsmen",
		"600.00", // strike rate, two decimals
		"X",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("term output missing %q:\n%s", want, out)
		}
	}
}

func TestCSVDirRenderer(t *testing.T) {
	dir := t.TempDir()
	r, err := render.New("csvdir", render.Options{Out: dir})
	if err != nil {
		t.Fatalf("New(csvdir): %v", err)
	}
	if err := r.Render(sampleResult()); err != nil {
		t.Fatalf("Render: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "top_batsmen.csv"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "batsman" || rows[1][0] != "B" || rows[1][1] != "6" {
		t.Fatalf("rows = %v", rows)
	}

	// Machine output keeps full precision and empty for nil.
	bf, err := os.ReadFile(filepath.Join(dir, "top_bowlers.csv"))
	if err != nil {
		t.Fatalf("read bowlers: %v", err)
	}
	if !strings.Contains(string(bf), "Z,0,1,0,0,\n") {
		t.Fatalf("bowlers csv = %q", bf)
	}
}

func TestCSVDirRequiresOut(t *testing.T) {
	if _, err := render.New("csvdir", render.Options{}); err == nil {
		t.Fatalf("csvdir without Out must fail")
	}
}

func TestHTMLRenderer(t *testing.T) {
	out := filepath.Join(t.TempDir(), "report.html")
	r, err := render.New("html", render.Options{Out: out})
	if err != nil {
		t.Fatalf("New(html): %v", err)
	}
	if err := r.Render(sampleResult()); err != nil {
		t.Fatalf("Render: %v", err)
	}

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	html := string(b)
	for _, want := range []string{
		"Total Matches", "21", // KPI card
		"Top Batsmen", "600.00",
		"Top Batsmen by Runs", // chart payload
		`"labels":["B","A"]`,
		`"values":[6,4]`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("report missing %q", want)
		}
	}
}

func TestHTMLRequiresOut(t *testing.T) {
	if _, err := render.New("html", render.Options{}); err == nil {
		t.Fatalf("html without Out must fail")
	}
}

func TestNewEmptyKindIsTerm(t *testing.T) {
	var buf bytes.Buffer
	r, err := render.New("", render.Options{Writer: &buf})
	if err != nil {
		t.Fatalf("New(\"\"): %v", err)
	}
	if err := r.Render(sampleResult()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("empty kind did not select the terminal renderer")
	}
}

func TestNewUnknownKindFallsBackToCSVDir(t *testing.T) {
	dir := t.TempDir()
	r, err := render.New("pdf", render.Options{Out: dir})
	if err != nil {
		t.Fatalf("New(pdf): %v", err)
	}
	if err := r.Render(sampleResult()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "kpis.csv")); err != nil {
		t.Fatalf("fallback csvdir wrote nothing: %v", err)
	}
}
