// Package config provides configuration models and helpers for the
// dashboard.
//
// This file adds a lightweight linter/validator for Dashboard values. It
// performs static checks over a decoded Dashboard and returns a list of
// issues (errors and warnings) that callers can surface in a CLI or
// tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block
	// execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be
	// surfaced to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Dashboard.
//
// Path is a dotted path into the config (e.g. "sources.matches.url").
// Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a
// single error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// knownRenderers, knownExports, and knownMetrics list the kinds this
// build understands. Unknown kinds are warnings, not errors: renderer
// selection degrades to the csvdir fallback and export/metrics fall back
// to "none".
var (
	knownRenderers = map[string]bool{"": true, "html": true, "term": true, "csvdir": true}
	knownExports   = map[string]bool{"": true, "none": true, "sqlite": true, "postgres": true}
	knownMetrics   = map[string]bool{"": true, "none": true, "pushgateway": true, "datadog": true}
)

// Validate performs static validation / linting of a Dashboard.
//
// It does not mutate the config. Instead it returns a slice of Issue
// values; callers decide whether to treat warnings as fatal.
//
// Example:
//
//	cfg, err := config.Load(path)
//	...
//	for _, iss := range config.Validate(cfg) {
//	    fmt.Printf("%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
//	}
func Validate(d Dashboard) []Issue {
	var issues []Issue

	if strings.TrimSpace(d.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "job",
			Message:  "job is empty; metrics and logs will use the default job name",
		})
	}

	issues = append(issues, validateSource("sources.matches", d.Sources.Matches)...)
	issues = append(issues, validateSource("sources.deliveries", d.Sources.Deliveries)...)

	if d.Aggregates.TopBatsmen < 0 || d.Aggregates.TopBowlers < 0 || d.Aggregates.TopVenues < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "aggregates",
			Message:  "top-N limits must not be negative",
		})
	}

	if !knownRenderers[d.Render.Kind] {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "render.kind",
			Message:  fmt.Sprintf("unknown renderer %q; the run will fall back to csvdir", d.Render.Kind),
		})
	}
	if (d.Render.Kind == "html" || d.Render.Kind == "csvdir") && strings.TrimSpace(d.Render.Out) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "render.out",
			Message:  fmt.Sprintf("renderer %q requires an output path", d.Render.Kind),
		})
	}

	if !knownExports[d.Export.Kind] {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "export.kind",
			Message:  fmt.Sprintf("unknown export backend %q; export will be skipped", d.Export.Kind),
		})
	}
	if exportActive(d.Export) && strings.TrimSpace(d.Export.DB.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "export.db.dsn",
			Message:  fmt.Sprintf("export backend %q requires a DSN", d.Export.Kind),
		})
	}

	if !knownMetrics[d.Metrics.Backend] {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics will be disabled", d.Metrics.Backend),
		})
	}

	return issues
}

// validateSource validates one input location.
func validateSource(path string, s SourceSpec) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.URL) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     path + ".url",
			Message:  "url must not be empty",
		})
	}
	if len([]rune(s.Delimiter)) > 1 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     path + ".delimiter",
			Message:  fmt.Sprintf("delimiter %q has more than one character; only the first is used", s.Delimiter),
		})
	}
	return issues
}

// exportActive reports whether the export sink is configured to run.
func exportActive(e Export) bool {
	return e.Kind != "" && e.Kind != "none" && knownExports[e.Kind]
}

// HasErrors reports whether any issue in the slice is an error.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}
