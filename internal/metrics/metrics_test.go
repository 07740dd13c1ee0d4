package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/cashflow/internal/settlement"
)

func TestObservePlan(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	// P1 owes P3 but they share nothing, so the payment routes through T.
	_, plan, err := settlement.Settle(
		[]settlement.Entry{
			{Name: "T", Channels: []string{"A", "C"}},
			{Name: "P1", Channels: []string{"A"}},
			{Name: "P2", Channels: []string{"B"}},
			{Name: "P3", Channels: []string{"C"}},
		},
		[]settlement.Debt{{Debtor: "P1", Creditor: "P3", Amount: 5}},
	)
	require.NoError(t, err)

	m.ObservePlan(plan)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PlansTotal.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.TransfersTotal.WithLabelValues("treasurer")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.TransfersTotal.WithLabelValues("direct")))

	count, err := testutil.GatherAndCount(reg, "cashflow_plan_rounds", "cashflow_plan_treasurer_hops")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestObserveFailure(t *testing.T) {
	m := New(nil)

	m.ObserveFailure(&settlement.ConfigurationError{Reason: "too few"})
	m.ObserveFailure(fmt.Errorf("wrapped: %w", &settlement.InputError{Reason: "bad"}))
	m.ObserveFailure(&settlement.InvariantViolation{Round: 1, Reason: "stuck"})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PlansTotal.WithLabelValues(OutcomeConfigError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PlansTotal.WithLabelValues(OutcomeInputError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PlansTotal.WithLabelValues(OutcomeInvariant)))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveFailure(fmt.Errorf("boom"))
	})
	assert.Equal(t, OutcomeInternalError, Outcome(fmt.Errorf("boom")))
	assert.Equal(t, OutcomeOK, Outcome(nil))
}

func TestObserveRPC(t *testing.T) {
	m := New(nil)

	m.ObserveRPC("/cashflow.v1.SettlementService/Settle", "ok", 3*time.Millisecond)
	m.ObserveRPC("/cashflow.v1.SettlementService/Settle", "ok", 5*time.Millisecond)
	m.ObserveRPC("/cashflow.v1.GroupService/GetGroup", "not_found", time.Millisecond)

	assert.Equal(t, 2, testutil.CollectAndCount(m.RPCDuration))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() {
		nilMetrics.ObserveRPC("/x", "ok", time.Second)
	})
}
