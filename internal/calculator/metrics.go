package calculator

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts calculator activity. A nil *Metrics records nothing.
type Metrics struct {
	calculations *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
	scenarios    prometheus.Gauge
}

// NewMetrics registers the calculator collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loancalc",
			Name:      "calculations_total",
			Help:      "Calculations served, by operation and result.",
		}, []string{"operation", "result"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loancalc",
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups, by outcome.",
		}, []string{"outcome"}),
		scenarios: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "loancalc",
			Name:      "saved_scenarios",
			Help:      "Scenarios currently held in the comparison ledger.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.calculations, m.cacheLookups, m.scenarios)
	}
	return m
}

func (m *Metrics) observe(operation string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.calculations.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) cacheLookup(outcome string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(outcome).Inc()
}

func (m *Metrics) setScenarios(n int) {
	if m == nil {
		return
	}
	m.scenarios.Set(float64(n))
}
