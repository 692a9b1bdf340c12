// Package webui exposes a minimal HTTP server with an HTML form that
// runs the dashboard pipeline and renders the aggregate tables inline.
//
// Routes:
//
//	GET  /               → form with team/season dropdowns
//	POST /dashboard      → runs the pipeline with form inputs; renders tables
//	GET  /api/aggregates → machine-friendly API, returns the result as JSON
package webui

import (
	_ "embed"
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"sort"
	"strings"

	"ipldash/internal/config"
	"ipldash/internal/dashboard"
	"ipldash/internal/loader"
	"ipldash/internal/records"
	"ipldash/internal/render"
)

// indexHTML is an embedded, minimal page with vanilla styling.
//
//go:embed index.tmpl.html
var indexHTML string

// Config controls server startup.
type Config struct {
	Addr string
	// Dash is the dashboard config the server runs; request parameters
	// override the filters only.
	Dash config.Dashboard
}

// Server wraps http.Server for convenience. Loaded source tables are
// cached by the shared Loader, so only the first request pays the
// parse cost.
type Server struct {
	cfg    Config
	mux    *http.ServeMux
	tmpl   *template.Template
	loader *loader.Loader
}

// NewServer constructs a Server with routes and embedded template.
func NewServer(cfg Config) *Server {
	s := &Server{
		cfg: cfg,
		mux: http.NewServeMux(),
		// Parse the embedded template at init time.
		tmpl:   template.Must(template.New("index").Parse(indexHTML)),
		loader: loader.New(cfg.Dash.Job),
	}
	s.routes()
	return s
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return http.ListenAndServe(s.cfg.Addr, s.mux)
}

// Handler exposes the route mux, mainly for tests.
func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/dashboard", s.handleDashboard)
	s.mux.HandleFunc("/api/aggregates", s.handleAPIAggregates)
}

// run loads both sources (cached after the first call) and executes the
// pipeline with the given filter.
func (s *Server) run(r *http.Request, f dashboard.Filter) (*dashboard.Result, error) {
	matches, deliveries, err := s.loader.LoadPair(r.Context(), s.cfg.Dash.Sources)
	if err != nil {
		return nil, err
	}
	return dashboard.Run(matches, deliveries, dashboard.Params{
		Filter: f,
		Limits: dashboard.Limits{
			Batsmen: s.cfg.Dash.Aggregates.TopBatsmen,
			Bowlers: s.cfg.Dash.Aggregates.TopBowlers,
			Venues:  s.cfg.Dash.Aggregates.TopVenues,
		},
		Job: s.cfg.Dash.Job,
	}), nil
}

// filterFrom reads team/season from form or query values, defaulting to
// the config's filters.
func (s *Server) filterFrom(get func(string) string) dashboard.Filter {
	f := dashboard.Filter{
		Team:   s.cfg.Dash.Filters.Team,
		Season: s.cfg.Dash.Filters.Season,
	}
	if v := strings.TrimSpace(get("team")); v != "" {
		f.Team = v
	}
	if v := strings.TrimSpace(get("season")); v != "" {
		f.Season = v
	}
	return f
}

// viewTable is a template-friendly table projection.
type viewTable struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// viewData feeds the embedded page.
type viewData struct {
	Team    string
	Season  string
	Teams   []string
	Seasons []string
	Tables  []viewTable
	Err     string
}

// handleIndex renders the filter form without running the pipeline.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	data := s.baseView(r)
	if err := s.tmpl.Execute(w, data); err != nil {
		log.Println("template error:", err)
	}
}

// handleDashboard processes the form and renders the aggregate tables.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form: "+err.Error(), http.StatusBadRequest)
		return
	}
	f := s.filterFrom(r.FormValue)

	data := s.baseView(r)
	data.Team = f.Team
	data.Season = f.Season

	res, err := s.run(r, f)
	if err != nil {
		data.Err = err.Error()
	} else {
		for _, name := range render.OrderedNames(res.Tables) {
			t := res.Tables[name]
			vt := viewTable{Name: name, Columns: t.Columns}
			for _, rec := range t.Rows {
				row := make([]string, len(t.Columns))
				for i, c := range t.Columns {
					row[i] = render.CellText(rec[c])
				}
				vt.Rows = append(vt.Rows, row)
			}
			data.Tables = append(data.Tables, vt)
		}
	}

	if err := s.tmpl.Execute(w, data); err != nil {
		log.Println("template error:", err)
	}
}

// handleAPIAggregates returns the full result as JSON so scripts can
// curl it easily.
func (s *Server) handleAPIAggregates(w http.ResponseWriter, r *http.Request) {
	f := s.filterFrom(r.URL.Query().Get)
	res, err := s.run(r, f)
	if err != nil {
		http.Error(w, "dashboard failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		log.Println("encode error:", err)
	}
}

// baseView builds the form state, including dropdown values discovered
// from the match table when it is already loadable.
func (s *Server) baseView(r *http.Request) viewData {
	data := viewData{
		Team:   s.cfg.Dash.Filters.Team,
		Season: s.cfg.Dash.Filters.Season,
	}
	matches, err := s.loader.Load(r.Context(), s.cfg.Dash.Sources.Matches)
	if err != nil {
		// Dropdowns stay empty; the form still works with free text.
		return data
	}
	data.Teams = distinct(collect(matches, "team1"), collect(matches, "team2"))
	data.Seasons = distinct(collect(matches, "season"))
	return data
}

func collect(t *records.Table, col string) []string {
	vals := t.Column(col)
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// distinct merges string slices, dedupes, and sorts.
func distinct(lists ...[]string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, list := range lists {
		for _, v := range list {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	sort.Strings(out)
	return out
}

