// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package observe

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gogama/retrier"
	"github.com/gogama/retrier/transient"
)

// Prometheus holds Prometheus collectors for retrier metrics. Create
// one per registry with NewPrometheus, then create a handler per
// retrier with PrometheusHandler.
type Prometheus struct {
	attempts    *prometheus.CounterVec
	completions *prometheus.CounterVec
}

// NewPrometheus creates the retrier collectors and registers them with
// reg. It panics if registration fails, for example because the
// collectors are already registered with reg.
//
// Collectors:
//   - retrier_attempts_total: labels name, outcome and category
//   - retrier_completions_total: labels name and outcome
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "retrier_attempts_total",
			Help: "Total number of job attempts.",
		}, []string{"name", "outcome", "category"}),
		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "retrier_completions_total",
			Help: "Total number of completed executions.",
		}, []string{"name", "outcome"}),
	}
	reg.MustRegister(p.attempts, p.completions)
	return p
}

// PrometheusHandler returns a handler which counts the events of the
// retrier called name in p. Install it for all event kinds with
// HandlerGroup.PushBackAll.
func PrometheusHandler[T any](p *Prometheus, name string) retrier.Handler[T] {
	if p == nil {
		panic("retrier/observe: nil Prometheus")
	}
	return retrier.HandlerFunc[T](func(e retrier.Event[T]) {
		switch e.Kind {
		case retrier.AttemptSuccess:
			p.attempts.WithLabelValues(name, outcomeSuccess, "").Inc()
		case retrier.AttemptFailure:
			category := transient.Categorize(e.Failure.Err).String()
			p.attempts.WithLabelValues(name, outcomeFailure, category).Inc()
		case retrier.Completion:
			p.completions.WithLabelValues(name, completionOutcome(e.Err)).Inc()
		}
	})
}
