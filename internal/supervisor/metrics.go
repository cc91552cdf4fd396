package supervisor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Registry *prometheus.Registry

	Runs           prometheus.Counter
	FailedRuns     prometheus.Counter
	LastRunSeconds prometheus.Gauge
	ListSize       *prometheus.GaugeVec
	QueueSize      prometheus.Gauge
}

// NewMetrics registers the supervisor metrics on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		Runs: factory.NewCounter(prometheus.CounterOpts{
			Name: "jobsbot_runs_total",
			Help: "Total bot runs started by the supervisor",
		}),
		FailedRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "jobsbot_runs_failed_total",
			Help: "Total bot runs that exited with an error",
		}),
		LastRunSeconds: factory.NewGauge(prometheus.GaugeOpts{
			Name: "jobsbot_last_run_duration_seconds",
			Help: "Duration of the last finished run",
		}),
		ListSize: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "jobsbot_list_size",
			Help: "Number of URLs in each persisted list",
		}, []string{"collection"}),
		QueueSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "jobsbot_queue_size",
			Help: "Targets not yet in taboo",
		}),
	}
}
