package render

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"strings"

	"ipldash/internal/dashboard"
)

// htmlRenderer writes a single self-contained HTML report.
type htmlRenderer struct {
	out  string
	tmpl *template.Template
}

// reportHTML is an embedded, minimal page with vanilla styling and a
// small inline script that draws CSS bars from the chart specs.
//
//go:embed report.tmpl.html
var reportHTML string

func init() {
	Register("html", func(opt Options) (Renderer, error) {
		if opt.Out == "" {
			return nil, fmt.Errorf("render: html requires an output path")
		}
		t, err := template.New("report").Parse(reportHTML)
		if err != nil {
			return nil, fmt.Errorf("render: parse report template: %w", err)
		}
		return &htmlRenderer{out: opt.Out, tmpl: t}, nil
	})
}

type kpiCard struct {
	Label string
	Value string
}

type htmlSection struct {
	Name    string
	Title   string
	Columns []string
	Rows    [][]string
}

type htmlData struct {
	Team       string
	Season     string
	KPIs       []kpiCard
	Sections   []htmlSection
	ChartsJSON template.JS
}

// Render writes the report file. The KPI table becomes a card strip;
// every other aggregate becomes a plain table section.
func (r *htmlRenderer) Render(res *dashboard.Result) error {
	data := htmlData{
		Team:   orAll(res.Filter.Team),
		Season: orAll(res.Filter.Season),
	}

	for _, name := range OrderedNames(res.Tables) {
		t := res.Tables[name]
		if name == dashboard.TableKPIs && t.Len() > 0 {
			rec := t.Rows[0]
			for _, c := range t.Columns {
				data.KPIs = append(data.KPIs, kpiCard{
					Label: titleFor(c),
					Value: CellText(rec[c]),
				})
			}
			continue
		}
		data.Sections = append(data.Sections, htmlSection{
			Name:    name,
			Title:   titleFor(name),
			Columns: t.Columns,
			Rows:    tableRows(t, CellText),
		})
	}

	charts, err := chartPayload(res)
	if err != nil {
		return err
	}
	data.ChartsJSON = template.JS(charts)

	f, err := os.Create(r.out)
	if err != nil {
		return fmt.Errorf("render: create %s: %w", r.out, err)
	}
	defer f.Close()
	if err := r.tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("render: execute report template: %w", err)
	}
	return nil
}

// chartPayload serializes the chart specs plus the raw series each one
// needs so the inline script has no other data dependency.
func chartPayload(res *dashboard.Result) (string, error) {
	type chart struct {
		dashboard.ChartSpec
		Labels []string  `json:"labels"`
		Values []float64 `json:"values"`
	}

	out := make([]chart, 0, len(res.Charts))
	for _, name := range OrderedNames(res.Tables) {
		spec, ok := res.Charts[name]
		if !ok {
			continue
		}
		t := res.Tables[name]
		if !t.HasColumn(spec.X) || !t.HasColumn(spec.Y) {
			continue
		}
		c := chart{ChartSpec: spec}
		for _, rec := range t.Rows {
			c.Labels = append(c.Labels, rec.String(spec.X))
			c.Values = append(c.Values, rec.Float(spec.Y))
		}
		out = append(out, c)
	}

	b, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("render: marshal charts: %w", err)
	}
	// "</" must not appear verbatim inside the inline script block.
	return strings.ReplaceAll(string(b), "</", "<\\/"), nil
}
