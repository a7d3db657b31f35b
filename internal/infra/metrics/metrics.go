// Package metrics exposes Prometheus counters for password policy failures,
// soft deletions and email deliveries.
package metrics

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/finance-tracker/platform/internal/application/adapter"
	"github.com/finance-tracker/platform/internal/domain/password"
)

const namespace = "finance_tracker"

// Metrics owns a dedicated registry and the application counters.
type Metrics struct {
	registry           *prometheus.Registry
	passwordViolations *prometheus.CounterVec
	passwordChecks     *prometheus.CounterVec
	softDeletes        *prometheus.CounterVec
	emailDeliveries    *prometheus.CounterVec
}

// New creates the counters and registers them together with the Go and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		passwordViolations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "password",
			Name:      "violations_total",
			Help:      "Password policy violations by code.",
		}, []string{"code"}),
		passwordChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "password",
			Name:      "checks_total",
			Help:      "Password policy checks by result.",
		}, []string{"result"}),
		softDeletes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "persistence",
			Name:      "soft_deletes_total",
			Help:      "Rows marked deleted by table.",
		}, []string{"table"}),
		emailDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "email",
			Name:      "deliveries_total",
			Help:      "Email delivery attempts by template and outcome.",
		}, []string{"template", "outcome"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.passwordViolations,
		m.passwordChecks,
		m.softDeletes,
		m.emailDeliveries,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveSoftDelete counts rows deleted from table.
func (m *Metrics) ObserveSoftDelete(table string, rows int64) {
	m.softDeletes.WithLabelValues(table).Add(float64(rows))
}

// ObserveEmailDelivery counts one delivery attempt.
func (m *Metrics) ObserveEmailDelivery(tmpl, outcome string) {
	m.emailDeliveries.WithLabelValues(tmpl, outcome).Inc()
}

// InstrumentPolicy wraps policy so every check is counted.
func (m *Metrics) InstrumentPolicy(policy adapter.PasswordPolicy) adapter.PasswordPolicy {
	return &instrumentedPolicy{next: policy, metrics: m}
}

type instrumentedPolicy struct {
	next    adapter.PasswordPolicy
	metrics *Metrics
}

func (p *instrumentedPolicy) Validate(candidate string, subject *password.Subject) error {
	err := p.next.Validate(candidate, subject)
	if err == nil {
		p.metrics.passwordChecks.WithLabelValues("accepted").Inc()
		return nil
	}

	p.metrics.passwordChecks.WithLabelValues("rejected").Inc()
	var validationErr *password.ValidationError
	if errors.As(err, &validationErr) {
		for _, code := range validationErr.Codes() {
			p.metrics.passwordViolations.WithLabelValues(code).Inc()
		}
	}
	return err
}

func (p *instrumentedPolicy) HelpTexts() []string {
	return p.next.HelpTexts()
}

func (p *instrumentedPolicy) HelpTextHTML() func() template.HTML {
	return p.next.HelpTextHTML()
}
