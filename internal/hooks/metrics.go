package hooks

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Scan outcomes recorded by ScansTotal.
const (
	OutcomeClean      = "clean"
	OutcomeSuppressed = "suppressed"
	OutcomeIncident   = "incident"
)

// Metrics holds Prometheus metrics for scanned messages.
type Metrics struct {
	ScansTotal    *prometheus.CounterVec
	ScanDuration  prometheus.Histogram
	FindingsTotal *prometheus.CounterVec
}

// NewMetrics creates and registers the scan metrics once per process.
//
// Metrics:
//   - outguard_scans_total{outcome} - messages scanned, by clean/suppressed/incident
//   - outguard_scan_duration_seconds - time spent scanning a message
//   - outguard_scan_findings_total{severity} - findings before suppression
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			ScansTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "outguard_scans_total",
					Help: "Total number of outgoing messages scanned",
				},
				[]string{"outcome"},
			),
			ScanDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "outguard_scan_duration_seconds",
					Help:    "Duration of a message scan in seconds",
					Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
				},
			),
			FindingsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "outguard_scan_findings_total",
					Help: "Total number of findings before suppression",
				},
				[]string{"severity"},
			),
		}
	})
	return globalMetrics
}
