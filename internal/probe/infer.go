package probe

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxSampleRows caps how many data rows type inference considers.
const maxSampleRows = 5000

// readCSVSample parses CSV data using delim and returns headers and up
// to maxSampleRows data rows. It is tolerant of trimmed samples and
// malformed lines; data rows with a different column count than the
// header are skipped to keep type inference accurate.
func readCSVSample(data []byte, delim rune) ([]string, [][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1 // allow variable fields; we enforce width ourselves

	// Read header: skip malformed/empty lines until a usable one or EOF.
	var headers []string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return []string{}, [][]string{}, nil
		}
		if err != nil || len(rec) == 0 {
			continue
		}
		headers = stripUTF8BOM(rec)
		break
	}

	rows := make([][]string, 0, 256)
	want := len(headers)
	for len(rows) < maxSampleRows {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil || len(rec) == 0 {
			continue
		}
		if len(rec) != want {
			continue
		}
		rows = append(rows, rec)
	}

	return headers, rows, nil
}

// stripUTF8BOM removes a UTF-8 BOM from the first header field if present.
func stripUTF8BOM(headers []string) []string {
	if len(headers) == 0 {
		return headers
	}
	headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	return headers
}

// inferTypes returns one inferred SQL-like type per header based on the
// sampled rows.
func inferTypes(headers []string, rows [][]string) []string {
	n := len(headers)
	cols := make([][]string, n)
	for _, row := range rows {
		for i := 0; i < n && i < len(row); i++ {
			cols[i] = append(cols[i], row[i])
		}
	}
	types := make([]string, n)
	for i := 0; i < n; i++ {
		types[i] = inferTypeForColumn(cols[i])
	}
	return types
}

// inferTypeForColumn guesses a SQL-friendly type among:
// boolean, integer, real, date, timestamp, text.
// Heuristic: require all non-empty values to satisfy a narrower type.
func inferTypeForColumn(values []string) string {
	nonEmpty := nonEmptyTrimmed(values)
	if len(nonEmpty) == 0 {
		return "text"
	}
	if allMatch(nonEmpty, isInt) {
		return "integer"
	}
	if allMatch(nonEmpty, isBool) {
		return "boolean"
	}
	// The integer check already ran, so any remaining all-numeric column
	// (including mixed int/float) is real.
	if allMatch(nonEmpty, isFloat) {
		return "real"
	}
	// Dates and timestamps (prefer timestamp when any time component exists).
	allDate := true
	anyTime := false
	for _, v := range nonEmpty {
		ok, hasTime := parseDateOrTimestamp(v)
		if !ok {
			allDate = false
			break
		}
		if hasTime {
			anyTime = true
		}
	}
	if allDate {
		if anyTime {
			return "timestamp"
		}
		return "date"
	}
	return "text"
}

func nonEmptyTrimmed(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func allMatch(vals []string, fn func(string) bool) bool {
	for _, v := range vals {
		if !fn(v) {
			return false
		}
	}
	return true
}

// isBool accepts common textual booleans and 1/0.
func isBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "false", "t", "f", "yes", "no", "y", "n", "1", "0":
		return true
	default:
		return false
	}
}

// isInt requires a signed base-10 integer that fits in int64.
func isInt(s string) bool {
	_, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return err == nil
}

// isFloat accepts decimal or scientific notation floats, including
// plain integers.
func isFloat(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

// dateLayouts are common date formats (no time component). The match
// table's date column is DMY slash in older Kaggle exports and ISO in
// newer ones, so both appear early.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"02.01.2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"2006/01/02",
	"20060102",
}

// timestampLayouts are common timestamp formats (with time component).
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"02/01/2006 15:04:05",
	"2006-01-02T15:04:05Z0700",
}

// parseDateOrTimestamp tries to parse s as a timestamp first, then a
// date. It returns ok=true when one of the layouts matched and hasTime
// whether time components were present.
func parseDateOrTimestamp(s string) (ok bool, hasTime bool) {
	st := strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, st); err == nil {
			return true, true
		}
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, st); err == nil {
			return true, false
		}
	}
	return false, false
}

// normalizeFieldName converts arbitrary header text into a lowercase
// ASCII identifier suitable for SQL schemas and record keys:
//  1. lowercase
//  2. strip accents (NFD → remove Mn → NFC)
//  3. keep [a-z0-9_]; convert space/dash/dot to underscore; drop others
//  4. fallback to "col" if empty
func normalizeFieldName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	// Decompose → remove nonspacing marks (accents) → recompose.
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	ascii, _, _ := transform.String(t, s)

	var b strings.Builder
	prevUnderscore := false
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if !prevUnderscore {
				b.WriteRune('_')
				prevUnderscore = true
			}
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "col"
	}
	return name
}
