package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_records_total",
		Help: "Number of audit entries recorded, by action and severity.",
	}, []string{"action", "severity"})

	recordFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_record_failures_total",
		Help: "Number of audit entries that could not be stored, by reason.",
	}, []string{"reason"})

	prunedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audit_pruned_total",
		Help: "Number of audit entries removed by the retention prune.",
	})
)
