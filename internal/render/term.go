package render

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"ipldash/internal/dashboard"
)

// termRenderer prints the aggregate tables to a terminal using ASCII
// tables with colored headings.
type termRenderer struct {
	w io.Writer
}

func init() {
	Register("term", func(opt Options) (Renderer, error) {
		w := opt.Writer
		if w == nil {
			w = os.Stdout
		}
		return &termRenderer{w: w}, nil
	})
}

// Render writes each aggregate as a heading plus an ASCII table.
func (r *termRenderer) Render(res *dashboard.Result) error {
	heading := color.New(color.FgYellow, color.Bold)

	if res.Filter.TeamActive() || res.Filter.SeasonActive() {
		fmt.Fprintf(r.w, "Filter: team=%s season=%s\n",
			orAll(res.Filter.Team), orAll(res.Filter.Season))
	}

	for _, name := range OrderedNames(res.Tables) {
		t := res.Tables[name]
		heading.Fprintf(r.w, "\n%s\n", titleFor(name))

		tw := tablewriter.NewWriter(r.w)
		tw.SetHeader(t.Columns)
		for _, row := range tableRows(t, CellText) {
			tw.Append(row)
		}
		tw.Render()
	}
	return nil
}

func orAll(s string) string {
	if s == "" {
		return dashboard.AllTeams
	}
	return s
}
