package memo

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports memo table activity as Prometheus counters.
type Metrics struct {
	lookups     *prometheus.CounterVec
	evaluations *prometheus.CounterVec
}

// NewMetrics creates and registers the memo counters on reg. Registering
// twice on the same registry reuses the existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "calcdocs",
		Subsystem: "memo",
		Name:      "lookups_total",
		Help:      "Builder lookups by result (hit, miss).",
	}, []string{"builder", "result"})

	evaluations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "calcdocs",
		Subsystem: "memo",
		Name:      "evaluations_total",
		Help:      "Builder evaluations by outcome (computed, not_computable, error).",
	}, []string{"builder", "outcome"})

	var err error
	if lookups, err = registerCounterVec(reg, lookups); err != nil {
		return nil, err
	}
	if evaluations, err = registerCounterVec(reg, evaluations); err != nil {
		return nil, err
	}
	return &Metrics{lookups: lookups, evaluations: evaluations}, nil
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("register memo metrics: %w", err)
	}
	return c, nil
}

func (m *Metrics) lookup(builder string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.lookups.WithLabelValues(builder, result).Inc()
}

func (m *Metrics) evaluation(builder string, outcome Outcome) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(builder, string(outcome)).Inc()
}
