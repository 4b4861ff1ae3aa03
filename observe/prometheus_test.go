// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package observe

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/gogama/retrier"
)

func newRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func counterValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	return testutil.ToFloat64(vec.WithLabelValues(labels...))
}

func TestPrometheus(t *testing.T) {
	t.Run("counts events", func(t *testing.T) {
		reg := newRegistry()
		p := NewPrometheus(reg)
		h := PrometheusHandler[string](p, "fetch")
		handleAll(h, testEvents())
		h.Handle(retrier.Event[string]{Kind: retrier.Completion, Err: errJob})

		assert.Equal(t, 1.0, counterValue(t, p.attempts, "fetch", "success", ""))
		assert.Equal(t, 1.0, counterValue(t, p.attempts, "fetch", "failure", "ConnReset"))
		assert.Equal(t, 1.0, counterValue(t, p.attempts, "fetch", "failure", "Not"))
		assert.Equal(t, 1.0, counterValue(t, p.completions, "fetch", "success"))
		assert.Equal(t, 1.0, counterValue(t, p.completions, "fetch", "gave_up"))
		assert.Equal(t, 3, testutil.CollectAndCount(p.attempts))
	})
	t.Run("registered", func(t *testing.T) {
		reg := newRegistry()
		p := NewPrometheus(reg)
		PrometheusHandler[int](p, "x").Handle(retrier.Event[int]{Kind: retrier.Completion})
		n, err := testutil.GatherAndCount(reg, "retrier_completions_total")
		assert.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Panics(t, func() { NewPrometheus(reg) })
	})
	t.Run("nil", func(t *testing.T) {
		assert.PanicsWithValue(t, "retrier/observe: nil Prometheus", func() {
			PrometheusHandler[int](nil, "x")
		})
	})
}
