// Package metrics exposes spatial pooler activity as Prometheus metrics.
//
// Each Collector owns its registry so several poolers, or tests, can run in
// one process without clashing on metric names.
//
//	collector := metrics.NewCollector("spdemo")
//	start := time.Now()
//	sp.Compute(input, true, active)
//	collector.ObserveCompute(true, countTrue(active), time.Since(start))
//	collector.ObserveState(sp.InhibitionRadius(), sp.BoostFactors())
package metrics

import (
	"net/http"
	"time"

	"github.com/gonum/floats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ModeLearn = "learn"
	ModeInfer = "infer"
)

// Collector records pooler iterations and homeostasis state
type Collector struct {
	registry         *prometheus.Registry
	iterations       *prometheus.CounterVec
	activeColumns    prometheus.Histogram
	computeLatency   prometheus.Histogram
	inhibitionRadius prometheus.Gauge
	meanBoost        prometheus.Gauge
	maxBoost         prometheus.Gauge
}

// NewCollector creates a collector whose metric names start with namespace
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		iterations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "iterations_total",
			Help:      "Number of compute calls, by mode",
		}, []string{"mode"}),
		activeColumns: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "active_columns",
			Help:      "Winning columns per compute call",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		computeLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compute_duration_seconds",
			Help:      "Duration of a compute call",
			Buckets:   prometheus.DefBuckets,
		}),
		inhibitionRadius: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inhibition_radius",
			Help:      "Current inhibition radius in columns",
		}),
		meanBoost: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "boost_factor_mean",
			Help:      "Mean column boost factor",
		}),
		maxBoost: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "boost_factor_max",
			Help:      "Largest column boost factor",
		}),
	}
}

// Registry returns the registry all metrics are registered with
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveCompute records one compute call
func (c *Collector) ObserveCompute(learn bool, activeColumns int, duration time.Duration) {
	mode := ModeInfer
	if learn {
		mode = ModeLearn
	}
	c.iterations.WithLabelValues(mode).Inc()
	c.activeColumns.Observe(float64(activeColumns))
	c.computeLatency.Observe(duration.Seconds())
}

// ObserveState records the inhibition radius and boost factor summary
func (c *Collector) ObserveState(inhibitionRadius int, boostFactors []float64) {
	c.inhibitionRadius.Set(float64(inhibitionRadius))
	if len(boostFactors) == 0 {
		return
	}
	c.meanBoost.Set(floats.Sum(boostFactors) / float64(len(boostFactors)))
	c.maxBoost.Set(floats.Max(boostFactors))
}
