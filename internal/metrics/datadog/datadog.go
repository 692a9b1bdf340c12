// Package datadog implements a Datadog backend for the metrics package.
//
// It adapts the generic metrics.Backend interface to Datadog's DogStatsD
// protocol using the official statsd client library, translating metric
// labels into Datadog tags and forwarding counter and histogram
// observations to a local or remote Datadog agent.
//
// All Datadog-specific dependencies and configuration live here; the
// rest of the project depends only on the metrics.Backend abstraction.
package datadog

import (
	"fmt"

	"ipldash/internal/metrics"

	"github.com/DataDog/datadog-go/v5/statsd"
)

// Config holds Datadog backend configuration.
type Config struct {
	// Addr is the DogStatsD address, e.g. "127.0.0.1:8125" or
	// "unix:///path/to/socket".
	Addr string

	// Namespace is an optional prefix added to all metric names, e.g.
	// "dashboard.".
	Namespace string

	// GlobalTags are tags applied to all metrics emitted by this backend,
	// e.g. []string{"env:prod","service:dashboard"}.
	GlobalTags []string
}

// Backend is a Datadog implementation of metrics.Backend.
//
// It wraps a statsd.Client and maps metric names and labels to Datadog
// metric names and tags. The same Backend instance is intended to be
// installed as the global metrics backend via metrics.SetBackend.
type Backend struct {
	client *statsd.Client
}

// NewBackend constructs a Datadog metrics backend from the given
// configuration. The Addr field is required.
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("datadog: Addr is required")
	}

	var opts []statsd.Option
	if cfg.Namespace != "" {
		opts = append(opts, statsd.WithNamespace(cfg.Namespace))
	}
	if len(cfg.GlobalTags) > 0 {
		opts = append(opts, statsd.WithTags(cfg.GlobalTags))
	}

	c, err := statsd.New(cfg.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("datadog: create client: %w", err)
	}

	return &Backend{client: c}, nil
}

// IncCounter implements metrics.Backend.IncCounter using a Datadog Count
// metric. Labels are converted to tags in the form "key:value".
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	// DogStatsD Count expects an int64; fractional deltas are rounded.
	b.client.Count(name, int64(delta), labelsToTags(labels), 1)
}

// ObserveHistogram implements metrics.Backend.ObserveHistogram using a
// Datadog Histogram metric.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	b.client.Histogram(name, value, labelsToTags(labels), 1)
}

// Flush forces buffered metrics out to the agent.
func (b *Backend) Flush() error {
	if b.client == nil {
		return nil
	}
	if err := b.client.Flush(); err != nil {
		return fmt.Errorf("datadog: flush: %w", err)
	}
	return nil
}

// labelsToTags converts metric labels into Datadog "key:value" tags.
func labelsToTags(labels metrics.Labels) []string {
	if len(labels) == 0 {
		return nil
	}
	tags := make([]string, 0, len(labels))
	for k, v := range labels {
		tags = append(tags, k+":"+v)
	}
	return tags
}
