// Package metrics exports gate outcomes as Prometheus metrics.
//
// Metrics:
//   - <ns>_gate_decisions_total: decisions by task and result (pass, block)
//   - <ns>_gate_check_results_total: check outcomes by task, check and result (pass, fail, error)
//   - <ns>_gate_check_duration_seconds: check evaluation time by task and check
//   - <ns>_gate_last_decision_timestamp_seconds: unix time of the latest decision by task
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/marcelocantos/donegate/internal/gate"
)

// Collector implements gate.Observer.
type Collector struct {
	registry *prometheus.Registry
	now      func() float64

	decisions    *prometheus.CounterVec
	checkResults *prometheus.CounterVec
	checkSeconds *prometheus.HistogramVec
	lastDecision *prometheus.GaugeVec
}

var _ gate.Observer = (*Collector)(nil)

// New creates a collector registered with its own registry.
func New(namespace string, now func() float64) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		now:      now,
		decisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "gate",
				Name:      "decisions_total",
				Help:      "Total number of gate decisions",
			},
			[]string{"task", "result"},
		),
		checkResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "gate",
				Name:      "check_results_total",
				Help:      "Total number of evaluated checks by outcome",
			},
			[]string{"task", "check", "result"},
		),
		checkSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "gate",
				Name:      "check_duration_seconds",
				Help:      "Duration of check evaluation in seconds",
				// Filesystem checks take microseconds; command and http checks can take seconds.
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 12),
			},
			[]string{"task", "check"},
		),
		lastDecision: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "gate",
				Name:      "last_decision_timestamp_seconds",
				Help:      "Unix time of the most recent decision",
			},
			[]string{"task", "result"},
		),
	}

	c.registry.MustRegister(
		c.decisions,
		c.checkResults,
		c.checkSeconds,
		c.lastDecision,
	)
	return c
}

// ObserveResult records one check outcome.
func (c *Collector) ObserveResult(task string, r gate.Result) {
	result := "fail"
	switch {
	case r.Errored():
		result = "error"
	case r.Passed:
		result = "pass"
	}
	c.checkResults.WithLabelValues(task, r.Name, result).Inc()
	c.checkSeconds.WithLabelValues(task, r.Name).Observe(r.Duration.Seconds())
}

// ObserveDecision records a gate decision.
func (c *Collector) ObserveDecision(d gate.Decision) {
	result := "block"
	if d.CanClaim {
		result = "pass"
	}
	c.decisions.WithLabelValues(d.Task, result).Inc()
	c.lastDecision.WithLabelValues(d.Task, result).Set(c.now())
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// WriteTextfile writes all metrics in the text exposition format, for
// node_exporter's textfile collector. The write is atomic.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
