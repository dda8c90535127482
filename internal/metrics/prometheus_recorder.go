package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "dockbook"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration      *prom.HistogramVec
	conversionDuration prom.Histogram
	outcomes           *prom.CounterVec
	cells              *prom.CounterVec
	viewerFailures     prom.Counter
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder constructs the conversion metrics and registers them
// with reg (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual import stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		conversionDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "conversion_duration_seconds",
			Help:      "Total duration of a Dockerfile import",
			Buckets:   prom.DefBuckets,
		}),
		outcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "conversions_total",
			Help:      "Conversions by final outcome",
		}, []string{"outcome"}),
		cells: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cells_total",
			Help:      "Notebook cells produced by kind",
		}, []string{"kind"}),
		viewerFailures: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "viewer_failures_total",
			Help:      "Viewer launches that failed after a successful write",
		}),
	}
	reg.MustRegister(pr.stageDuration, pr.conversionDuration, pr.outcomes, pr.cells, pr.viewerFailures)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveConversionDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.conversionDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncConversionOutcome(outcome Outcome) {
	if p == nil {
		return
	}
	p.outcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) AddCells(kind string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.cells.WithLabelValues(kind).Add(float64(n))
}

func (p *PrometheusRecorder) IncViewerFailure() {
	if p == nil {
		return
	}
	p.viewerFailures.Inc()
}

// WriteTextfile writes all metrics gathered from reg to path in the text
// exposition format, for pickup by the node_exporter textfile collector.
func WriteTextfile(path string, reg *prom.Registry) error {
	if path == "" {
		return nil
	}
	if err := prom.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
