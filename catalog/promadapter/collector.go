// Package promadapter bridges Prometheus to the dependency-free
// MetricsCollector interface of the catalog store engine.
package promadapter

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector implements the catalog store MetricsCollector interface on top of
// a Prometheus registerer. Metric vectors are created lazily on first use,
// with the label names taken from the first observation of each metric.
type Collector struct {
	registerer prometheus.Registerer

	mu         sync.Mutex
	histograms map[string]*prometheus.HistogramVec
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
}

// NewCollector creates a Collector registering its metrics with the given registerer.
func NewCollector(registerer prometheus.Registerer) *Collector {
	return &Collector{
		registerer: registerer,
		histograms: make(map[string]*prometheus.HistogramVec),
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
	}
}

// RecordDuration observes an operation duration in seconds.
func (c *Collector) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	c.mu.Lock()
	histogram, ok := c.histograms[metric]
	if !ok {
		histogram = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metric + "_seconds",
				Help:    "Duration of " + metric + " in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			labelNames(labels),
		)
		c.registerer.MustRegister(histogram)
		c.histograms[metric] = histogram
	}
	c.mu.Unlock()

	histogram.With(labels).Observe(duration.Seconds())
}

// IncrementCounter increments a counter by one.
func (c *Collector) IncrementCounter(metric string, labels map[string]string) {
	c.mu.Lock()
	counter, ok := c.counters[metric]
	if !ok {
		counter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metric + "_total",
				Help: "Total number of " + metric + ".",
			},
			labelNames(labels),
		)
		c.registerer.MustRegister(counter)
		c.counters[metric] = counter
	}
	c.mu.Unlock()

	counter.With(labels).Inc()
}

// RecordValue sets a gauge to the given value.
func (c *Collector) RecordValue(metric string, value float64, labels map[string]string) {
	c.mu.Lock()
	gauge, ok := c.gauges[metric]
	if !ok {
		gauge = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metric,
				Help: "Current value of " + metric + ".",
			},
			labelNames(labels),
		)
		c.registerer.MustRegister(gauge)
		c.gauges[metric] = gauge
	}
	c.mu.Unlock()

	gauge.With(labels).Set(value)
}

func labelNames(labels map[string]string) []string {
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
