// Package csv implements a streaming CSV parser for the dashboard's two
// tabular inputs (match-level and delivery-level files). It avoids
// whole-file buffering, normalizes headers to canonical snake_case keys,
// and soft-fails malformed rows so one bad line never aborts a load.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"ipldash/internal/records"
)

// Options configures the CSV parser behavior. All fields are optional;
// sensible defaults are applied when a field is zero.
type Options struct {
	// HasHeader indicates whether the first row contains column headers.
	HasHeader bool

	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing ASCII spaces from each field value.
	TrimSpace bool

	// ExpectedFields, when > 0, enforces a fixed field count per record.
	// Rows with a different width are skipped (soft-fail) and counted.
	ExpectedFields int

	// HeaderMap maps source header names to canonical keys (e.g.
	// "Match ID" to "match_id"). Only applies when HasHeader is true.
	HeaderMap map[string]string
}

// Parser parses CSV input according to Options. It is safe to reuse
// across inputs, but Parser itself is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\ufeff"

// skippedLogLimit caps per-row skip logging so a badly mangled file does
// not flood the logs.
const skippedLogLimit = 400

// ParseTable consumes CSV records from r and returns them as a Table
// preserving the source column order, along with the number of rows that
// were skipped due to parse errors or field-count mismatches.
func (p *Parser) ParseTable(r io.Reader) (*records.Table, int, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = p.opt.TrimSpace

	var headers []string
	if p.opt.HasHeader {
		h, err := cr.Read()
		if err != nil {
			return nil, 0, fmt.Errorf("read csv header: %w", err)
		}
		headers = normalizeHeaders(h, p.opt)
	} else if p.opt.ExpectedFields > 0 {
		headers = make([]string, p.opt.ExpectedFields)
		for i := range headers {
			headers[i] = fmt.Sprintf("col_%d", i)
		}
	}

	tbl := records.New(headers...)
	var skipped int

	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if skipped < skippedLogLimit {
				// Soft-fail this row and continue.
				log.Printf("Skipping row %d: %v", line, err)
			}
			skipped++
			continue
		}

		// Enforce expected width when known.
		if len(headers) > 0 && len(row) != len(headers) {
			if skipped < skippedLogLimit {
				log.Printf("Skipping row %d: incorrect number of fields (expected %d, got %d)", line, len(headers), len(row))
			}
			skipped++
			continue
		}
		if len(headers) == 0 {
			// Headerless input with unknown width: synthesize names from
			// the first row and lock the width from there on.
			headers = make([]string, len(row))
			for i := range headers {
				headers[i] = fmt.Sprintf("col_%d", i)
			}
			tbl.Columns = append([]string(nil), headers...)
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[keyFor(i, headers)] = emptyToNil(val)
		}
		tbl.Append(rec)
	}

	return tbl, skipped, nil
}

// Parse is a convenience wrapper that returns only the rows.
func (p *Parser) Parse(r io.Reader) ([]records.Record, int, error) {
	tbl, skipped, err := p.ParseTable(r)
	if err != nil {
		return nil, skipped, err
	}
	return tbl.Rows, skipped, nil
}

// keyFor returns the column key for index idx, using headers when
// available, otherwise synthesizing a "col_N" name.
func keyFor(idx int, headers []string) string {
	if idx < len(headers) && headers[idx] != "" {
		return headers[idx]
	}
	return fmt.Sprintf("col_%d", idx)
}

// emptyToNil converts an empty string to nil; all other values are
// returned as-is.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// normalizeHeaders produces canonical header keys using HeaderMap (when
// provided) and simple normalization (lowercase, spaces to underscores).
// It also strips a UTF-8 BOM from the first cell if present.
func normalizeHeaders(h []string, opt Options) []string {
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		if opt.HeaderMap != nil {
			if m, ok := opt.HeaderMap[c]; ok {
				res[i] = m
				continue
			}
		}
		res[i] = strings.ReplaceAll(strings.ToLower(c), " ", "_")
	}
	return res
}
