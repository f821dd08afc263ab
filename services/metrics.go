package services

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the connector collectors
type Metrics struct {
	Registry *prometheus.Registry

	FreePercent  *prometheus.GaugeVec
	Results      *prometheus.CounterVec
	PollErrors   *prometheus.CounterVec
	PollDuration prometheus.Histogram
}

// NewMetrics registers the collectors in a new registry
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		FreePercent: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pfemem_free_percent",
				Help: "PFE memory pool free percent.",
			},
			[]string{"device", "card", "mic", "pool"},
		),
		Results: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pfemem_results_total",
				Help: "Check results by state.",
			},
			[]string{"state"},
		),
		PollErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pfemem_poll_errors_total",
				Help: "Failed device polls.",
			},
			[]string{"device"},
		),
		PollDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pfemem_poll_duration_seconds",
				Help:    "Duration of the poll cycle.",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
			},
		),
	}
	m.Registry.MustRegister(
		m.FreePercent,
		m.Results,
		m.PollErrors,
		m.PollDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// SetFree sets the free percent of the pool
func (m *Metrics) SetFree(device, card string, mic int, pool string, value int) {
	m.FreePercent.WithLabelValues(device, card, strconv.Itoa(mic), pool).Set(float64(value))
}

// ResetDevice drops the gauges of the device, cards may disappear between polls
func (m *Metrics) ResetDevice(device string) {
	m.FreePercent.DeletePartialMatch(prometheus.Labels{"device": device})
}

// ObserveResult counts the check result
func (m *Metrics) ObserveResult(state string) {
	m.Results.WithLabelValues(state).Inc()
}

// ObservePollError counts the failed device poll
func (m *Metrics) ObservePollError(device string) {
	m.PollErrors.WithLabelValues(device).Inc()
}

// ObservePoll records the cycle duration
func (m *Metrics) ObservePoll(start time.Time) {
	m.PollDuration.Observe(time.Since(start).Seconds())
}
