// Package config defines the canonical, JSON-serializable configuration
// model for the dashboard. It is intentionally small, explicit, and
// dependency-free so that dashboard definitions can be loaded from disk
// (or generated by the probe) and passed through the program without
// additional glue code.
//
// Design goals:
//
//  1. Stability: Changes to this package should be additive and
//     backwards-compatible whenever possible.
//  2. Clarity: Field names in Go mirror the JSON structure used in
//     dashboard config files.
//  3. Minimalism: No third-party config libraries; decoding is performed
//     by the standard library, with a light Options helper for typed
//     access to free-form parser settings.
//
// Example (trimmed):
//
//	{
//	  "job": "ipl",
//	  "sources": {
//	    "matches":    { "url": "testdata/matches.csv" },
//	    "deliveries": { "url": "https://example.com/deliveries.csv" }
//	  },
//	  "filters": { "team": "All", "season": "All" },
//	  "render":  { "kind": "html", "out": "report.html" },
//	  "export":  { "kind": "none" }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Dashboard is the top-level object decoded from a config file.
type Dashboard struct {
	// Job labels the run for metrics and logs.
	Job string `json:"job"`

	// Sources locate the two input tables.
	Sources Sources `json:"sources"`

	// Filters select the team/season slice; the sentinel "All" (or an
	// empty string) means no filter.
	Filters Filters `json:"filters"`

	// Aggregates caps the ranked aggregate tables; zero values take the
	// conventional defaults (15 batsmen, 15 bowlers, 10 venues).
	Aggregates Aggregates `json:"aggregates"`

	// Render selects the output renderer.
	Render Render `json:"render"`

	// Export optionally writes the aggregate tables to a database sink.
	Export Export `json:"export"`

	// Metrics selects the metrics backend.
	Metrics Metrics `json:"metrics"`
}

// Sources holds the two input locations. Matches is the one-row-per-match
// table; Deliveries is the ball-by-ball table.
type Sources struct {
	Matches    SourceSpec `json:"matches"`
	Deliveries SourceSpec `json:"deliveries"`
}

// SourceSpec locates one tabular input and configures its parsing.
type SourceSpec struct {
	// URL is a local path, file:// path, or http(s):// URL.
	URL string `json:"url"`

	// Delimiter is the CSV field delimiter; default ",".
	Delimiter string `json:"delimiter,omitempty"`

	// HeaderMap maps source header names to canonical keys, for exports
	// whose headers differ from the Kaggle column names.
	HeaderMap map[string]string `json:"header_map,omitempty"`

	// InsecureTLS skips certificate verification for https URLs.
	InsecureTLS bool `json:"insecure_tls,omitempty"`

	// Options is a free-form bag for the remaining parser settings
	// (has_header, trim_space, expected_fields). Missing keys take the
	// parser defaults.
	Options Options `json:"options,omitempty"`
}

// Filters mirror the UI's team/season dropdowns.
type Filters struct {
	Team   string `json:"team"`
	Season string `json:"season"`
}

// Aggregates caps the ranked tables.
type Aggregates struct {
	TopBatsmen int `json:"top_batsmen,omitempty"`
	TopBowlers int `json:"top_bowlers,omitempty"`
	TopVenues  int `json:"top_venues,omitempty"`
}

// Render selects and configures the output renderer.
type Render struct {
	// Kind selects the renderer: "html", "term", or "csvdir".
	Kind string `json:"kind"`

	// Out is the renderer target: the report path for "html", the output
	// directory for "csvdir". Ignored by "term".
	Out string `json:"out,omitempty"`
}

// Export configures the optional database sink for aggregate tables.
type Export struct {
	// Kind selects the storage backend: "none" (default), "sqlite", or
	// "postgres".
	Kind string `json:"kind,omitempty"`

	// DB carries the backend connection settings.
	DB DBConfig `json:"db,omitempty"`
}

// DBConfig configures the export sink connection.
type DBConfig struct {
	// DSN is the connection string (a file path for sqlite, a
	// postgresql:// URL for postgres).
	DSN string `json:"dsn"`

	// TablePrefix is prepended to each aggregate name to form the
	// destination table name (default "agg_").
	TablePrefix string `json:"table_prefix,omitempty"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is "none" (default), "pushgateway", or "datadog".
	Backend string `json:"backend,omitempty"`

	// PushgatewayURL is the Pushgateway base URL for the "pushgateway"
	// backend.
	PushgatewayURL string `json:"pushgateway_url,omitempty"`

	// StatsdAddr is the DogStatsD address for the "datadog" backend.
	StatsdAddr string `json:"statsd_addr,omitempty"`
}

// Load decodes a Dashboard config from the JSON file at path.
func Load(path string) (Dashboard, error) {
	var d Dashboard
	f, err := os.Open(path)
	if err != nil {
		return d, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&d); err != nil {
		return d, fmt.Errorf("decode config %s: %w", path, err)
	}
	return d, nil
}

// Marshal renders a config as indented JSON, for the probe's config
// generation and the web UI's download link.
func Marshal(d Dashboard) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Options is a small helper to fetch typed values from arbitrary JSON
// maps without introducing third-party configuration libraries. It
// purposefully performs only minimal type coercion and returns provided
// defaults when a key is absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def if key is missing or
// not a string.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def if key is missing or not a
// bool.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers are decoded as
// float64 by encoding/json, so this method accepts float64 and casts to
// int. If the value is neither float64 nor int, def is returned.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def if key
// is missing or empty. Useful for single-character parser settings such
// as a CSV delimiter.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// UnmarshalJSON implements json.Unmarshaler so that a missing or null
// "options" object in JSON decodes to a non-nil, empty Options map. This
// removes the need to nil-check Options values at call sites.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}
