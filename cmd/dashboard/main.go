package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"ipldash/internal/config"
	"ipldash/internal/dashboard"
	"ipldash/internal/loader"
	"ipldash/internal/metrics"
	"ipldash/internal/metrics/datadog"
	"ipldash/internal/metrics/prompush"
	"ipldash/internal/render"
	"ipldash/internal/storage"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "ipldash/internal/storage/all"
)

// main is the entry point for the dashboard binary. It loads the
// dashboard config, optionally initializes a metrics backend, runs the
// pipeline, renders the result, and optionally exports the aggregate
// tables to a database.
func main() {
	var (
		cfgPath           string
		teamFlg           string
		seasonFlg         string
		renderFlg         string
		outFlg            string
		metricsBackendFlg string
		pushGatewayURLFlg string
		statsdAddrFlg     string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "configs/sample.json", "dashboard config JSON path")
	flag.StringVar(&teamFlg, "team", "", "team filter (overrides config; \"All\" disables)")
	flag.StringVar(&seasonFlg, "season", "", "season filter (overrides config; \"All\" disables)")
	flag.StringVar(&renderFlg, "render", "", "renderer kind: html, term, csvdir (overrides config)")
	flag.StringVar(&outFlg, "out", "", "renderer output path/dir (overrides config)")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "", "metrics backend to use (pushgateway, datadog, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.StringVar(&statsdAddrFlg, "statsd-addr", "", "DogStatsD address (overrides env STATSD_ADDR)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	d, err := config.Load(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}

	// Flag overrides on top of the file config.
	if teamFlg != "" {
		d.Filters.Team = teamFlg
	}
	if seasonFlg != "" {
		d.Filters.Season = seasonFlg
	}
	if renderFlg != "" {
		d.Render.Kind = renderFlg
	}
	if outFlg != "" {
		d.Render.Out = outFlg
	}

	issues := config.Validate(d)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Printf("Configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}
	if validate {
		log.Printf("Configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	job := d.Job
	if job == "" {
		job = "dashboard"
	}

	setupMetrics(d, job, metricsBackendFlg, pushGatewayURLFlg, statsdAddrFlg, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	ctx := context.Background()
	start := time.Now()

	if *verbose {
		log.Printf("dashboard: matches=%s deliveries=%s render=%s export=%s",
			d.Sources.Matches.URL, d.Sources.Deliveries.URL, d.Render.Kind, d.Export.Kind)
	}

	ld := loader.New(job)
	matches, deliveries, err := ld.LoadPair(ctx, d.Sources)
	if err != nil {
		log.Fatalf("load sources: %v", err)
	}

	res := dashboard.Run(matches, deliveries, dashboard.Params{
		Filter: dashboard.Filter{Team: d.Filters.Team, Season: d.Filters.Season},
		Limits: dashboard.Limits{
			Batsmen: d.Aggregates.TopBatsmen,
			Bowlers: d.Aggregates.TopBowlers,
			Venues:  d.Aggregates.TopVenues,
		},
		Job: job,
	})

	r, err := render.New(d.Render.Kind, render.Options{Out: d.Render.Out})
	if err != nil {
		log.Fatalf("render: %v", err)
	}
	if err := r.Render(res); err != nil {
		log.Fatalf("render: %v", err)
	}

	if err := exportResult(ctx, d, res, job); err != nil {
		log.Fatalf("export: %v", err)
	}

	if *verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
}

// exportResult writes the aggregate tables to the configured database
// sink, if any.
func exportResult(ctx context.Context, d config.Dashboard, res *dashboard.Result, job string) error {
	kind := d.Export.Kind
	if kind == "" || kind == "none" {
		return nil
	}

	prefix := d.Export.DB.TablePrefix
	if prefix == "" {
		prefix = "agg_"
	}

	repo, err := storage.New(ctx, storage.Config{
		Kind:        kind,
		DSN:         d.Export.DB.DSN,
		TablePrefix: prefix,
	})
	if err != nil {
		return err
	}
	defer repo.Close()

	return storage.ExportTables(ctx, kind, repo, prefix, res.Tables, job)
}

// setupMetrics decides the metrics backend: flag → env → config → none.
func setupMetrics(d config.Dashboard, job, backendFlg, gwFlg, statsdFlg string, verbose bool) {
	backendName := backendFlg
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	if backendName == "" {
		backendName = d.Metrics.Backend
	}

	switch backendName {
	case "pushgateway":
		gwURL := gwFlg
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = d.Metrics.PushgatewayURL
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}

		b, err := prompush.NewBackend(job, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, job)
		metrics.SetBackend(b)

	case "datadog":
		addr := statsdFlg
		if addr == "" {
			addr = os.Getenv("STATSD_ADDR")
		}
		if addr == "" {
			addr = d.Metrics.StatsdAddr
		}

		b, err := datadog.NewBackend(datadog.Config{Addr: addr, Namespace: job})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		log.Printf("metrics: backend=%v, addr=%v", backendName, addr)
		metrics.SetBackend(b)

	case "", "none":
		// metrics disabled; nop backend remains
		if verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
