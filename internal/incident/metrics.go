package incident

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for incident reporting.
type Metrics struct {
	IncidentsTotal        *prometheus.CounterVec
	AlertsTotal           *prometheus.CounterVec
	LogWriteFailuresTotal prometheus.Counter
	FindingsTotal         *prometheus.CounterVec
}

// NewMetrics creates and registers the incident metrics once per process.
//
// Metrics:
//   - outguard_incidents_total{severity} - incidents reported
//   - outguard_alerts_total{severity} - alerts pushed to the outbox
//   - outguard_incident_log_write_failures_total - failed log appends
//   - outguard_incident_findings_total{rule} - findings in reported incidents
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			IncidentsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "outguard_incidents_total",
					Help: "Total number of incidents reported",
				},
				[]string{"severity"},
			),
			AlertsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "outguard_alerts_total",
					Help: "Total number of in-band alerts sent",
				},
				[]string{"severity"},
			),
			LogWriteFailuresTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "outguard_incident_log_write_failures_total",
					Help: "Total number of failed incident log appends",
				},
			),
			FindingsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "outguard_incident_findings_total",
					Help: "Total number of findings in reported incidents, by rule",
				},
				[]string{"rule"},
			),
		}
	})
	return globalMetrics
}
