// Package render turns a dashboard result into a presentable artifact.
// Renderers self-register through init, mirroring the storage backend
// factory, so callers select one by kind string.
package render

import (
	"fmt"
	"io"
	"log"
	"sort"
	"strconv"
	"strings"
	"sync"

	"ipldash/internal/dashboard"
	"ipldash/internal/records"
)

// Renderer consumes a pipeline result and produces output. Construction
// is the capability check: a factory returns an error when its target
// (output path, directory) is missing or unusable, before any tables
// are touched.
type Renderer interface {
	Render(res *dashboard.Result) error
}

// Options carries the renderer target.
type Options struct {
	// Out is the report path for "html" and the output directory for
	// "csvdir". Ignored by "term".
	Out string

	// Writer receives terminal output; defaults to os.Stdout when nil.
	Writer io.Writer
}

// Factory builds a Renderer for the given options.
type Factory func(opt Options) (Renderer, error)

var (
	facMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs a renderer factory under kind. Later registrations
// with the same kind overwrite earlier ones.
func Register(kind string, f Factory) {
	facMu.Lock()
	defer facMu.Unlock()
	factories[kind] = f
}

// FallbackKind is used when the requested renderer kind is unknown.
// Writing plain CSV files never needs a terminal or a template, so it
// is the safe default.
const FallbackKind = "csvdir"

// New selects and constructs a renderer. An empty kind means "term".
// An unknown kind falls back to FallbackKind with a default output
// directory instead of failing the whole run.
func New(kind string, opt Options) (Renderer, error) {
	if kind == "" {
		kind = "term"
	}

	facMu.RLock()
	f, ok := factories[kind]
	facMu.RUnlock()

	if !ok {
		log.Printf("render: unknown kind %q, falling back to %q", kind, FallbackKind)
		facMu.RLock()
		f, ok = factories[FallbackKind]
		facMu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("render: no factory for fallback kind %q", FallbackKind)
		}
		if opt.Out == "" {
			opt.Out = "dashboard_out"
		}
	}
	return f(opt)
}

// tableOrder is the canonical presentation order; result maps are
// unordered.
var tableOrder = []string{
	dashboard.TableKPIs,
	dashboard.TableTopBatsmen,
	dashboard.TableTopBowlers,
	dashboard.TableMatchesPerSeason,
	dashboard.TableWinsBySeason,
	dashboard.TableTopVenues,
	dashboard.TableHeadToHead,
}

// tableTitles maps aggregate names to human headings.
var tableTitles = map[string]string{
	dashboard.TableKPIs:             "Key Figures",
	dashboard.TableTopBatsmen:       "Top Batsmen",
	dashboard.TableTopBowlers:       "Top Bowlers",
	dashboard.TableMatchesPerSeason: "Matches per Season",
	dashboard.TableWinsBySeason:     "Wins by Season",
	dashboard.TableTopVenues:        "Top Venues",
	dashboard.TableHeadToHead:       "Head to Head",
}

// OrderedNames returns the present table names in canonical order,
// followed by any unknown extras in sorted order. The web UI uses it
// too, so the page and the static reports agree on ordering.
func OrderedNames(tables map[string]*records.Table) []string {
	out := make([]string, 0, len(tables))
	seen := make(map[string]bool, len(tables))
	for _, name := range tableOrder {
		if _, ok := tables[name]; ok {
			out = append(out, name)
			seen[name] = true
		}
	}
	extras := make([]string, 0)
	for name := range tables {
		if !seen[name] {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	return append(out, extras...)
}

// titleFor returns the heading for a table name, falling back to a
// cleaned-up version of the name itself.
func titleFor(name string) string {
	if t, ok := tableTitles[name]; ok {
		return t
	}
	words := strings.Split(name, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// CellText formats a single cell for display. Floats keep two decimals,
// nil renders as a dash. Shared with the web UI so both presentation
// surfaces format values identically.
func CellText(v any) string {
	switch t := v.(type) {
	case nil:
		return "-"
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', 2, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', 2, 64)
	default:
		return fmt.Sprint(t)
	}
}

// cellValue formats a single cell for machine output (CSV export).
// Floats keep full precision and nil renders as an empty field.
func cellValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// tableRows flattens a table into display-ready string rows in column
// order.
func tableRows(t *records.Table, format func(any) string) [][]string {
	rows := make([][]string, 0, len(t.Rows))
	for _, rec := range t.Rows {
		row := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			row[i] = format(rec[c])
		}
		rows = append(rows, row)
	}
	return rows
}
