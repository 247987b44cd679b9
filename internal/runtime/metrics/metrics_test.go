package metrics

import (
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	m := New()
	reg := prom.NewRegistry()
	require.NoError(t, m.Register(reg))
	require.Error(t, m.Register(reg), "collectors must not register twice")

	m.ObserveHostCall("db_read", "value")
	m.ObserveHostCall("db_read", "value")
	m.ObserveHostCall("db_read", "trap")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HostCalls.WithLabelValues("db_read", "value")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HostCalls.WithLabelValues("db_read", "trap")))

	m.ObserveExecution("execute", 5000, "")
	m.ObserveExecution("execute", 100, "out of gas")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Executions.WithLabelValues("execute", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Executions.WithLabelValues("execute", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Traps.WithLabelValues("out of gas")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.GasUsed))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveHostCall("gas", "value")
		m.ObserveExecution("query", 1, "guest panic")
	})
}
