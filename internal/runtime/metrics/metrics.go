// Package metrics exposes prometheus collectors for the execution engine.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	prom "github.com/prometheus/client_golang/prometheus"
)

const (
	Namespace = "hostbridge"

	SubsystemHost   = "host"
	SubsystemEngine = "engine"

	LabelImport  = "import"
	LabelOutcome = "outcome"
	LabelEntry   = "entry"
	LabelKind    = "kind"
	LabelResult  = "result"
)

// GasBuckets spans gas use from trivial queries to heavy executions.
var GasBuckets = prom.ExponentialBuckets(1000, 4, 10)

type Metrics struct {
	HostCalls  *prom.CounterVec
	Traps      *prom.CounterVec
	Executions *prom.CounterVec
	GasUsed    *prom.HistogramVec
}

func New() *Metrics {
	return &Metrics{
		HostCalls: prom.NewCounterVec(
			prom.CounterOpts{
				Namespace: Namespace,
				Subsystem: SubsystemHost,
				Name:      "calls_total",
				Help:      "Total number of host function calls.",
			},
			[]string{LabelImport, LabelOutcome}),
		Traps: prom.NewCounterVec(
			prom.CounterOpts{
				Namespace: Namespace,
				Subsystem: SubsystemEngine,
				Name:      "traps_total",
				Help:      "Total number of aborted execution contexts.",
			},
			[]string{LabelKind}),
		Executions: prom.NewCounterVec(
			prom.CounterOpts{
				Namespace: Namespace,
				Subsystem: SubsystemEngine,
				Name:      "executions_total",
				Help:      "Total number of contract entry point calls.",
			},
			[]string{LabelEntry, LabelResult}),
		GasUsed: prom.NewHistogramVec(
			prom.HistogramOpts{
				Namespace: Namespace,
				Subsystem: SubsystemEngine,
				Name:      "gas_used",
				Help:      "Histogram of gas used per entry point call.",
				Buckets:   GasBuckets,
			},
			[]string{LabelEntry}),
	}
}

// Register adds all collectors to reg.
func (m *Metrics) Register(reg prom.Registerer) error {
	for _, c := range []prom.Collector{m.HostCalls, m.Traps, m.Executions, m.GasUsed} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveHostCall(name, outcome string) {
	if m == nil {
		return
	}
	m.HostCalls.WithLabelValues(name, outcome).Inc()
}

// ObserveExecution records a finished entry point call. trap is empty when
// the call completed.
func (m *Metrics) ObserveExecution(entry string, gasUsed uint64, trap string) {
	if m == nil {
		return
	}
	result := "ok"
	if trap != "" {
		result = "error"
		m.Traps.WithLabelValues(trap).Inc()
	}
	m.Executions.WithLabelValues(entry, result).Inc()
	m.GasUsed.WithLabelValues(entry).Observe(float64(gasUsed))
}
