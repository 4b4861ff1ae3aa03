// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package observe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/gogama/retrier"
	"github.com/gogama/retrier/policy"
)

func setupTestTracer() (*tracetest.SpanRecorder, trace.Tracer) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	tracer := tp.Tracer("test")
	return sr, tracer
}

func attrMap(attrs []attribute.KeyValue) map[string]interface{} {
	m := make(map[string]interface{}, len(attrs))
	for _, kv := range attrs {
		m[string(kv.Key)] = kv.Value.AsInterface()
	}
	return m
}

func TestTraceWithTracer(t *testing.T) {
	t.Run("span per attempt", func(t *testing.T) {
		sr, tracer := setupTestTracer()
		calls := 0
		job := TraceWithTracer(tracer, "fetch", func(context.Context) (string, error) {
			calls++
			if calls == 1 {
				return "", errJob
			}
			return "ok", nil
		})
		r := &retrier.Retrier[string]{RetryPolicy: policy.Constant(0)}
		v, err := r.Do(context.Background(), job)
		require.NoError(t, err)
		assert.Equal(t, "ok", v)

		spans := sr.Ended()
		require.Len(t, spans, 2)
		for i, span := range spans {
			assert.Equal(t, "retrier.attempt", span.Name())
			assert.Equal(t, trace.SpanKindInternal, span.SpanKind())
			attrs := attrMap(span.Attributes())
			assert.Equal(t, "fetch", attrs["retrier.name"])
			assert.Equal(t, int64(i), attrs["retrier.attempt"])
		}
		assert.Equal(t, codes.Error, spans[0].Status().Code)
		assert.Equal(t, "job failed", spans[0].Status().Description)
		assert.Equal(t, "Not", attrMap(spans[0].Attributes())["retrier.error.category"])
		require.Len(t, spans[0].Events(), 1)
		assert.Equal(t, "exception", spans[0].Events()[0].Name)
		assert.Equal(t, codes.Ok, spans[1].Status().Code)
	})
	t.Run("outside a retrier", func(t *testing.T) {
		sr, tracer := setupTestTracer()
		job := TraceWithTracer(tracer, "bare", func(ctx context.Context) (int, error) {
			assert.True(t, trace.SpanFromContext(ctx).SpanContext().IsValid())
			return 1, nil
		})
		v, err := job(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, v)
		spans := sr.Ended()
		require.Len(t, spans, 1)
		_, ok := attrMap(spans[0].Attributes())["retrier.attempt"]
		assert.False(t, ok)
	})
	t.Run("nil job", func(t *testing.T) {
		_, tracer := setupTestTracer()
		assert.PanicsWithValue(t, "retrier/observe: nil job", func() {
			TraceWithTracer[int](tracer, "x", nil)
		})
	})
}
