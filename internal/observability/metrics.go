package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DecisionMetrics counts access and guardrail decisions on its own registry.
type DecisionMetrics struct {
	Registry *prometheus.Registry

	AccessDecisions *prometheus.CounterVec
	GuardrailChecks *prometheus.CounterVec
}

func NewDecisionMetrics() *DecisionMetrics {
	reg := prometheus.NewRegistry()

	m := &DecisionMetrics{
		Registry: reg,

		AccessDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agency",
			Name:      "access_decisions_total",
			Help:      "Route and permission decisions by verdict.",
		}, []string{"decision"}),

		GuardrailChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agency",
			Name:      "guardrail_checks_total",
			Help:      "Debt limit and payment checks by kind and outcome.",
		}, []string{"kind", "outcome"}),
	}

	reg.MustRegister(
		m.AccessDecisions,
		m.GuardrailChecks,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *DecisionMetrics) AccessDecision(decision string) {
	if m == nil {
		return
	}
	m.AccessDecisions.WithLabelValues(decision).Inc()
}

func (m *DecisionMetrics) GuardrailCheck(kind, outcome string) {
	if m == nil {
		return
	}
	m.GuardrailChecks.WithLabelValues(kind, outcome).Inc()
}

func (m *DecisionMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
