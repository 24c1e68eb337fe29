package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeAllow = "allow"
	outcomeDeny  = "deny"
)

var decisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "authz_decisions_total",
	Help: "Number of authorization decisions, by stage, outcome and failure code.",
}, []string{"stage", "outcome", "code"})
