package render

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"ipldash/internal/dashboard"
)

// csvdirRenderer writes one CSV file per aggregate table into a
// directory. It has no terminal or template requirements, which makes
// it the fallback renderer.
type csvdirRenderer struct {
	dir string
}

func init() {
	Register("csvdir", func(opt Options) (Renderer, error) {
		if opt.Out == "" {
			return nil, fmt.Errorf("render: csvdir requires an output directory")
		}
		if err := os.MkdirAll(opt.Out, 0o755); err != nil {
			return nil, fmt.Errorf("render: create output dir: %w", err)
		}
		return &csvdirRenderer{dir: opt.Out}, nil
	})
}

// Render writes <name>.csv for each aggregate, header row first.
func (r *csvdirRenderer) Render(res *dashboard.Result) error {
	for _, name := range OrderedNames(res.Tables) {
		if err := r.writeTable(name, res); err != nil {
			return err
		}
	}
	return nil
}

func (r *csvdirRenderer) writeTable(name string, res *dashboard.Result) error {
	t := res.Tables[name]
	path := filepath.Join(r.dir, name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return fmt.Errorf("render: write %s: %w", path, err)
	}
	for _, row := range tableRows(t, cellValue) {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("render: write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("render: flush %s: %w", path, err)
	}
	return nil
}
