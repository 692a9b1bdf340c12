package webui_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ipldash/internal/config"
	"ipldash/internal/dashboard"
	"ipldash/internal/records"
	"ipldash/internal/webui"
)

const matchesCSV = `id,season,city,date,team1,team2,toss_winner,toss_decision,result,winner,win_by_runs,win_by_wickets,player_of_match,venue
1,2017,Mumbai,2017-04-09,Mumbai Indians,Royal Challengers Bangalore,Mumbai Indians,bat,normal,Mumbai Indians,12,0,A,Wankhede Stadium
2,2018,Kolkata,2018-04-08,Chennai Super Kings,Kolkata Knight Riders,Kolkata Knight Riders,field,normal,Kolkata Knight Riders,0,6,D,Eden Gardens
`

const deliveriesCSV = `match_id,inning,batting_team,bowling_team,over,ball,batsman,non_striker,bowler,wide_runs,noball_runs,extra_runs,batsman_runs,player_dismissed,dismissal_kind,fielder
1,1,Mumbai Indians,Royal Challengers Bangalore,1,1,A,B,X,0,0,0,4,,,
1,1,Mumbai Indians,Royal Challengers Bangalore,1,2,B,A,X,0,0,0,6,B,caught,C
1,1,Mumbai Indians,Royal Challengers Bangalore,1,3,C,A,X,0,0,0,2,,,
2,1,Chennai Super Kings,Kolkata Knight Riders,1,1,D,E,Y,0,0,0,3,,,
2,1,Chennai Super Kings,Kolkata Knight Riders,1,2,E,D,Y,1,0,1,4,,,
2,1,Chennai Super Kings,Kolkata Knight Riders,1,3,F,D,Y,0,0,0,1,F,run out,G
`

func testServer(t *testing.T) *webui.Server {
	t.Helper()
	dir := t.TempDir()
	mp := filepath.Join(dir, "matches.csv")
	dp := filepath.Join(dir, "deliveries.csv")
	if err := os.WriteFile(mp, []byte(matchesCSV), 0o644); err != nil {
		t.Fatalf("write matches: %v", err)
	}
	if err := os.WriteFile(dp, []byte(deliveriesCSV), 0o644); err != nil {
		t.Fatalf("write deliveries: %v", err)
	}

	return webui.NewServer(webui.Config{
		Addr: ":0",
		Dash: config.Dashboard{
			Job: "test",
			Sources: config.Sources{
				Matches:    config.SourceSpec{URL: mp},
				Deliveries: config.SourceSpec{URL: dp},
			},
			Filters: config.Filters{Team: "All", Season: "All"},
		},
	})
}

func TestIndexServesForm(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"<form", "Mumbai Indians", "Kolkata Knight Riders", "2017", "2018"} {
		if !strings.Contains(body, want) {
			t.Fatalf("index missing %q", want)
		}
	}
}

func TestDashboardPostRendersTables(t *testing.T) {
	s := testServer(t)
	form := url.Values{"team": {"All"}, "season": {"All"}}
	req := httptest.NewRequest(http.MethodPost, "/dashboard", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"total_matches", "21", "top_batsmen", "top_bowlers", "wins_by_season"} {
		if !strings.Contains(body, want) {
			t.Fatalf("dashboard page missing %q", want)
		}
	}
}

func TestDashboardPostHonorsFilter(t *testing.T) {
	s := testServer(t)
	form := url.Values{"season": {"2018"}}
	req := httptest.NewRequest(http.MethodPost, "/dashboard", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	// Match 1's batsmen play only in 2017.
	if strings.Contains(body, ">A<") {
		t.Fatalf("season filter leaked 2017 rows:\n%s", body)
	}
	if !strings.Contains(body, ">E<") {
		t.Fatalf("season filter dropped 2018 rows:\n%s", body)
	}
}

func TestAPIAggregates(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/aggregates?team=Mumbai+Indians", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content type = %q", ct)
	}

	var res struct {
		Tables map[string]*records.Table `json:"tables"`
		Filter dashboard.Filter          `json:"filter"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Filter.Team != "Mumbai Indians" {
		t.Fatalf("filter = %+v", res.Filter)
	}
	wins := res.Tables[dashboard.TableWinsBySeason]
	if wins == nil || wins.Len() != 1 || wins.Rows[0].String("season") != "2017" {
		t.Fatalf("wins_by_season = %v", wins)
	}
}

func TestAPIAggregatesFailsWhenSourceMissing(t *testing.T) {
	s := webui.NewServer(webui.Config{
		Dash: config.Dashboard{
			Job: "test",
			Sources: config.Sources{
				Matches:    config.SourceSpec{URL: "/no/such/matches.csv"},
				Deliveries: config.SourceSpec{URL: "/no/such/deliveries.csv"},
			},
		},
	})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/aggregates", nil))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}
