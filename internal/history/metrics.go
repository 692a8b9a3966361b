package history

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsAppended = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "labcalc_history_records_appended_total",
		Help: "Records appended, by container kind",
	}, []string{"container"})

	recordsEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "labcalc_history_records_evicted_total",
		Help: "Records evicted from the bounded recent history",
	})

	recordsRemoved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "labcalc_history_records_removed_total",
		Help: "Records removed by explicit deletion, by container kind",
	}, []string{"container"})

	projectCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "labcalc_history_projects",
		Help: "Current number of projects",
	})

	flushFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "labcalc_history_flush_failures_total",
		Help: "State writes rejected by the backing store",
	})
)

func containerKind(containerID string) string {
	if containerID == Recent {
		return Recent
	}
	return "project"
}
