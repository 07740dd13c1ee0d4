// Package metrics exposes Prometheus instrumentation for settlement planning.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/cashflow/internal/settlement"
)

// Outcome labels for PlansTotal.
const (
	OutcomeOK            = "ok"
	OutcomeConfigError   = "configuration_error"
	OutcomeInputError    = "input_error"
	OutcomeInvariant     = "invariant_violation"
	OutcomeInternalError = "internal_error"
)

// Metrics holds the collectors recorded by the settlement services.
type Metrics struct {
	PlansTotal     *prometheus.CounterVec
	TransfersTotal *prometheus.CounterVec
	Rounds         prometheus.Histogram
	TreasurerHops  prometheus.Histogram
	RPCDuration    *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered, which tests use.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PlansTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashflow_plans_total",
				Help: "Settlement plans computed, by outcome",
			},
			[]string{"outcome"},
		),
		TransfersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cashflow_transfers_total",
				Help: "Transfers emitted, by route",
			},
			[]string{"route"},
		),
		Rounds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cashflow_plan_rounds",
			Help:    "Planning rounds per plan",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		}),
		TreasurerHops: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cashflow_plan_treasurer_hops",
			Help:    "Treasurer-mediated payments per plan",
			Buckets: prometheus.LinearBuckets(0, 1, 8),
		}),
		RPCDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cashflow_rpc_duration_seconds",
				Help:    "Connect RPC latency, by procedure and code",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"procedure", "code"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.PlansTotal, m.TransfersTotal, m.Rounds, m.TreasurerHops, m.RPCDuration)
	}
	return m
}

// ObservePlan records a successful plan.
func (m *Metrics) ObservePlan(plan *settlement.Plan) {
	if m == nil {
		return
	}
	m.PlansTotal.WithLabelValues(OutcomeOK).Inc()
	for _, t := range plan.Transfers() {
		route := "direct"
		if t.Routed {
			route = "treasurer"
		}
		m.TransfersTotal.WithLabelValues(route).Inc()
	}
	m.Rounds.Observe(float64(plan.Rounds()))
	m.TreasurerHops.Observe(float64(plan.TreasurerHops()))
}

// ObserveFailure records a failed planning attempt.
func (m *Metrics) ObserveFailure(err error) {
	if m == nil {
		return
	}
	m.PlansTotal.WithLabelValues(Outcome(err)).Inc()
}

// ObserveRPC records the latency of one RPC. code is "ok" on success.
func (m *Metrics) ObserveRPC(procedure, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.RPCDuration.WithLabelValues(procedure, code).Observe(d.Seconds())
}

// Outcome classifies a planning error into an outcome label.
func Outcome(err error) string {
	var (
		configErr    *settlement.ConfigurationError
		inputErr     *settlement.InputError
		invariantErr *settlement.InvariantViolation
	)
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &configErr):
		return OutcomeConfigError
	case errors.As(err, &inputErr):
		return OutcomeInputError
	case errors.As(err, &invariantErr):
		return OutcomeInvariant
	default:
		return OutcomeInternalError
	}
}
