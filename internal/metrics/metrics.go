package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	gateEvaluatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reelhaven_gate_evaluated_total",
		Help: "Total number of requests evaluated by the access gate",
	})
	gateAllowedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reelhaven_gate_allowed_total",
		Help: "Total number of requests allowed past the access gate",
	})
	gateDivertedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reelhaven_gate_diverted_total",
		Help: "Total number of requests diverted to the access-request surface",
	})
	gateFailOpenTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reelhaven_gate_fail_open_total",
		Help: "Total number of gate evaluations that failed open due to an internal error",
	})
	accessRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reelhaven_access_requests_submitted_total",
		Help: "Total number of IP access requests submitted",
	})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(
		gateEvaluatedTotal,
		gateAllowedTotal,
		gateDivertedTotal,
		gateFailOpenTotal,
		accessRequestsTotal,
	)
}

// IncGateEvaluated increments the evaluated requests counter.
func IncGateEvaluated() { gateEvaluatedTotal.Inc() }

// IncGateAllowed increments the allowed requests counter.
func IncGateAllowed() { gateAllowedTotal.Inc() }

// IncGateDiverted increments the diverted requests counter.
func IncGateDiverted() { gateDivertedTotal.Inc() }

// IncGateFailOpen increments the fail-open counter.
func IncGateFailOpen() { gateFailOpenTotal.Inc() }

// IncAccessRequestSubmitted increments the submitted access requests counter.
func IncAccessRequestSubmitted() { accessRequestsTotal.Inc() }
