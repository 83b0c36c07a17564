package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/custodia-labs/dorcas-auth/internal/core/ports/driven"
)

// Ensure Prometheus implements AuthMetrics
var _ driven.AuthMetrics = (*Prometheus)(nil)

// Prometheus records authentication outcomes as Prometheus counters
type Prometheus struct {
	logins  *prometheus.CounterVec
	lookups *prometheus.CounterVec
}

// NewPrometheus creates the counters and registers them with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	p := &Prometheus{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dorcas",
			Name:      "login_attempts_total",
			Help:      "Login attempts by flow and outcome",
		}, []string{"flow", "outcome"}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dorcas",
			Name:      "user_lookups_total",
			Help:      "User lookups by kind and outcome",
		}, []string{"kind", "outcome"}),
	}

	var err error
	if p.logins, err = registerCounterVec(reg, p.logins); err != nil {
		return nil, err
	}
	if p.lookups, err = registerCounterVec(reg, p.lookups); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Prometheus) LoginAttempt(flow, outcome string) {
	p.logins.WithLabelValues(flow, outcome).Inc()
}

func (p *Prometheus) Lookup(kind, outcome string) {
	p.lookups.WithLabelValues(kind, outcome).Inc()
}

// registerCounterVec registers c, reusing an identical vector already on reg
func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}
