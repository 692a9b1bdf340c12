package config_test

import (
	"testing"

	"ipldash/internal/config"
)

func validDashboard() config.Dashboard {
	var d config.Dashboard
	d.Job = "ipl"
	d.Sources.Matches.URL = "m.csv"
	d.Sources.Deliveries.URL = "d.csv"
	d.Render.Kind = "term"
	return d
}

func findIssue(issues []config.Issue, path string) (config.Issue, bool) {
	for _, i := range issues {
		if i.Path == path {
			return i, true
		}
	}
	return config.Issue{}, false
}

func TestValidateCleanConfig(t *testing.T) {
	issues := config.Validate(validDashboard())
	if len(issues) != 0 {
		t.Fatalf("issues on valid config: %v", issues)
	}
}

func TestValidateEmptyJobWarns(t *testing.T) {
	d := validDashboard()
	d.Job = " "
	issues := config.Validate(d)
	iss, ok := findIssue(issues, "job")
	if !ok || iss.Severity != config.SeverityWarning {
		t.Fatalf("expected job warning, got %v", issues)
	}
	if config.HasErrors(issues) {
		t.Fatalf("warning treated as error: %v", issues)
	}
}

func TestValidateMissingSourceURL(t *testing.T) {
	d := validDashboard()
	d.Sources.Deliveries.URL = ""
	issues := config.Validate(d)
	iss, ok := findIssue(issues, "sources.deliveries.url")
	if !ok || iss.Severity != config.SeverityError {
		t.Fatalf("expected url error, got %v", issues)
	}
	if !config.HasErrors(issues) {
		t.Fatalf("HasErrors = false")
	}
}

func TestValidateNegativeLimits(t *testing.T) {
	d := validDashboard()
	d.Aggregates.TopBowlers = -1
	if iss, ok := findIssue(config.Validate(d), "aggregates"); !ok || iss.Severity != config.SeverityError {
		t.Fatalf("expected aggregates error")
	}
}

func TestValidateRendererKinds(t *testing.T) {
	d := validDashboard()
	d.Render.Kind = "pdf"
	if iss, ok := findIssue(config.Validate(d), "render.kind"); !ok || iss.Severity != config.SeverityWarning {
		t.Fatalf("expected unknown renderer warning")
	}

	d.Render.Kind = "html"
	d.Render.Out = ""
	if iss, ok := findIssue(config.Validate(d), "render.out"); !ok || iss.Severity != config.SeverityError {
		t.Fatalf("expected html output path error")
	}
}

func TestValidateExport(t *testing.T) {
	d := validDashboard()
	d.Export.Kind = "oracle"
	if iss, ok := findIssue(config.Validate(d), "export.kind"); !ok || iss.Severity != config.SeverityWarning {
		t.Fatalf("expected unknown export warning")
	}

	d.Export.Kind = "sqlite"
	d.Export.DB.DSN = ""
	if iss, ok := findIssue(config.Validate(d), "export.db.dsn"); !ok || iss.Severity != config.SeverityError {
		t.Fatalf("expected DSN error for active export")
	}

	// "none" never needs a DSN.
	d.Export.Kind = "none"
	if _, ok := findIssue(config.Validate(d), "export.db.dsn"); ok {
		t.Fatalf("DSN error for inactive export")
	}
}

func TestValidateMetricsBackend(t *testing.T) {
	d := validDashboard()
	d.Metrics.Backend = "graphite"
	if iss, ok := findIssue(config.Validate(d), "metrics.backend"); !ok || iss.Severity != config.SeverityWarning {
		t.Fatalf("expected unknown metrics warning")
	}
}

func TestValidateMultiRuneDelimiter(t *testing.T) {
	d := validDashboard()
	d.Sources.Matches.Delimiter = ";;"
	if iss, ok := findIssue(config.Validate(d), "sources.matches.delimiter"); !ok || iss.Severity != config.SeverityWarning {
		t.Fatalf("expected delimiter warning")
	}
}
