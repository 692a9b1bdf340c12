package dashboard

import (
	"time"

	"ipldash/internal/metrics"
	"ipldash/internal/records"
)

// Params configures a pipeline run.
type Params struct {
	Filter Filter
	Limits Limits
	// Job labels the run in metrics; defaults to "dashboard".
	Job string
}

// Result is what the pipeline hands to renderers and exporters: the
// aggregate tables keyed by name plus chart specs for the tables that
// have a default visualization.
type Result struct {
	Tables map[string]*records.Table `json:"tables"`
	Charts map[string]ChartSpec      `json:"charts"`
	Filter Filter                    `json:"filter"`
}

// Run executes the four-stage pipeline over the raw match and delivery
// tables: normalize join keys, enrich deliveries, left-join match
// columns, aggregate. Inputs are never mutated; every failure mode
// degrades to a smaller Result rather than an error, which is why Run
// has no error return.
func Run(matches, deliveries *records.Table, p Params) *Result {
	job := p.Job
	if job == "" {
		job = "dashboard"
	}

	start := time.Now()
	m, d := NormalizeKeys(matches, deliveries)
	metrics.RecordStage(job, "normalize", nil, time.Since(start))

	start = time.Now()
	enriched := EnrichDeliveries(d)
	metrics.RecordStage(job, "enrich", nil, time.Since(start))
	metrics.RecordRows(job, "deliveries", int64(enriched.Len()))

	start = time.Now()
	joined := JoinMatchColumns(enriched, m)
	metrics.RecordStage(job, "join", nil, time.Since(start))

	start = time.Now()
	tables := Aggregate(joined, m, p.Filter, p.Limits)
	metrics.RecordStage(job, "aggregate", nil, time.Since(start))

	return &Result{
		Tables: tables,
		Charts: chartSpecs(tables, p.Filter),
		Filter: p.Filter,
	}
}
