// Package probe samples the first N bytes of a CSV source and infers
// header names, normalized column names, and SQL-like column types. It
// can emit either a plain text summary or a starter dashboard config
// with the probed source filled in.
//
// It prefers HTTP Range requests but also limits reads client-side, so
// it works even when Range is ignored.
package probe

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"ipldash/internal/config"
	"ipldash/internal/dashboard"
	"ipldash/internal/datasource/file"
	"ipldash/internal/datasource/httpds"
	"ipldash/internal/records"
)

// RoleMatches and RoleDeliveries select which source slot of the
// generated config the probed URL is written into.
const (
	RoleMatches    = "matches"
	RoleDeliveries = "deliveries"
)

// Options control the sampling and output behavior.
type Options struct {
	// URL to fetch.
	URL string
	// MaxBytes to sample from the start of the file.
	MaxBytes int
	// Delimiter (single rune). If zero, default ',' is used.
	Delimiter rune
	// Job is the logical job name written into generated configs.
	Job string
	// Role selects the config source slot: "matches" or "deliveries".
	// Defaults to "deliveries".
	Role string
	// OutputJSON toggles config output; otherwise a CSV summary is
	// returned.
	OutputJSON bool
	// SaveSample, when true, writes the sampled bytes to a local file
	// named after Job.
	SaveSample bool
	// AllowInsecureTLS, when true, skips TLS certificate verification
	// for HTTP downloads (useful for self-signed / internal endpoints).
	AllowInsecureTLS bool
}

// Result carries the rendered output and the inferred header metadata
// for callers that want to inspect it programmatically.
type Result struct {
	// Rendered textual output (CSV lines or JSON with newline).
	Body []byte
	// Original header row (not normalized).
	Headers []string
	// Normalized header names (aligned with Headers).
	Normalized []string
	// Types are the inferred SQL-like types (aligned with Headers).
	Types []string
	// KeyColumn is the join-key candidate found among the normalized
	// headers, or "" when none is present.
	KeyColumn string
}

// peekFn is a small overridable seam that the probe package uses to
// fetch the first N bytes from a URL. In production it is backed by the
// httpds.Client for HTTP/HTTPS URLs, and file.NewLocal otherwise.
// Tests can replace it to avoid real I/O.
var peekFn = func(ctx context.Context, url string, n int, insecure bool) ([]byte, error) {
	if n <= 0 {
		return nil, fmt.Errorf("peek: n must be > 0")
	}

	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		client := httpds.NewClient(httpds.Config{
			InsecureSkipVerify: insecure,
		})
		return client.FetchFirstBytes(ctx, url, n)
	}

	// Local filesystem, with or without a file:// prefix.
	path := strings.TrimPrefix(url, "file://")
	src := file.NewLocal(path)
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	lr := &io.LimitedReader{R: rc, N: int64(n)}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, lr); err != nil && err != io.EOF {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Probe runs the sample+infer pipeline and produces the chosen output.
//
// It mirrors the CLI flow:
//   - fetch first N bytes → cut to last newline
//   - readCSVSample → headers+rows (best-effort, skip bad/misaligned rows)
//   - inferTypes   → per-column types
//   - (optionally) build a starter dashboard config
func Probe(ctx context.Context, opt Options) (Result, error) {
	res := Result{}

	delim := opt.Delimiter
	if delim == 0 {
		delim = ','
	}
	if opt.MaxBytes <= 0 {
		opt.MaxBytes = 20000
	}

	data, err := peekFn(ctx, opt.URL, opt.MaxBytes, opt.AllowInsecureTLS)
	if err != nil {
		return res, fmt.Errorf("fetch sample: %w", err)
	}
	// Cut to last newline boundary to avoid a partial record at the end.
	if i := bytes.LastIndexByte(data, '\n'); i > 0 {
		data = data[:i+1]
	}

	if opt.SaveSample {
		fname := normalizeFieldName(opt.Job) + ".csv"
		if err := writeSample(fname, data); err != nil {
			return res, fmt.Errorf("save sample: %w", err)
		}
	}

	headers, rows, err := readCSVSample(data, delim)
	if err != nil {
		return res, err
	}
	res.Headers = headers

	norm := make([]string, len(headers))
	for i, h := range headers {
		norm[i] = normalizeFieldName(h)
	}
	res.Normalized = norm
	res.Types = inferTypes(headers, rows)

	if key, ok := dashboard.FindKeyColumn(records.New(norm...)); ok {
		res.KeyColumn = key
	}

	if opt.OutputJSON {
		body, err := config.Marshal(buildConfig(opt, headers, norm))
		if err != nil {
			return res, err
		}
		res.Body = append(body, '\n')
		return res, nil
	}

	// CSV-like text (header,normalized,type per line).
	var buf bytes.Buffer
	for i, h := range headers {
		fmt.Fprintf(&buf, "%s,%s,%s\n", h, norm[i], res.Types[i])
	}
	res.Body = buf.Bytes()
	return res, nil
}

// buildConfig emits a starter config.Dashboard with the probed URL in
// the requested source slot. DSNs and the sibling source are left as
// placeholders the user is expected to edit.
func buildConfig(opt Options, headers, norm []string) config.Dashboard {
	job := normalizeFieldName(opt.Job)
	if job == "" || job == "col" {
		job = "dashboard"
	}

	spec := config.SourceSpec{
		URL:         opt.URL,
		InsecureTLS: opt.AllowInsecureTLS,
		Options: config.Options{
			"has_header":      true,
			"trim_space":      true,
			"expected_fields": len(headers),
		},
	}
	if opt.Delimiter != 0 && opt.Delimiter != ',' {
		spec.Delimiter = string(opt.Delimiter)
	}

	// Only emit a header map when normalization actually changed a name.
	hm := make(map[string]string)
	for i, h := range headers {
		if h != norm[i] {
			hm[h] = norm[i]
		}
	}
	if len(hm) > 0 {
		spec.HeaderMap = hm
	}

	var d config.Dashboard
	d.Job = job
	switch opt.Role {
	case RoleMatches:
		d.Sources.Matches = spec
		d.Sources.Deliveries = config.SourceSpec{URL: "deliveries.csv"}
	default:
		d.Sources.Matches = config.SourceSpec{URL: "matches.csv"}
		d.Sources.Deliveries = spec
	}
	d.Filters = config.Filters{Team: "All", Season: "All"}
	d.Render = config.Render{Kind: "html", Out: job + ".html"}
	d.Export = config.Export{Kind: "none"}
	return d
}

// DecodeDelimiter converts a user-supplied string into a single rune
// delimiter.
func DecodeDelimiter(s string) rune {
	if s == "" {
		return ','
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return ','
	}
	return r
}

// writeSample writes the sampled bytes to the specified path. It
// overwrites the file if it already exists.
func writeSample(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}
