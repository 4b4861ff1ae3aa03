// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package observe

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gogama/retrier"
	"github.com/gogama/retrier/transient"
)

// instrumentationName is the instrumentation scope name for retrier
// tracing and metrics.
const instrumentationName = "github.com/gogama/retrier"

// Trace wraps job so that each attempt runs in its own OpenTelemetry
// span, using the global TracerProvider. If no TracerProvider is
// configured globally, the noop tracer is used and the wrapper becomes
// a pass-through.
//
// Span attributes include retrier.name and retrier.attempt. On error,
// the span status is set to codes.Error and the span records the error
// and its transience category.
func Trace[T any](name string, job retrier.Job[T]) retrier.Job[T] {
	return TraceWithTracer(otel.Tracer(instrumentationName), name, job)
}

// TraceWithTracer is like Trace but uses the provided tracer.
func TraceWithTracer[T any](tracer trace.Tracer, name string, job retrier.Job[T]) retrier.Job[T] {
	if job == nil {
		panic("retrier/observe: nil job")
	}
	return func(ctx context.Context) (T, error) {
		attrs := []attribute.KeyValue{attribute.String("retrier.name", name)}
		if i, ok := retrier.AttemptFromContext(ctx); ok {
			attrs = append(attrs, attribute.Int64("retrier.attempt", int64(i)))
		}
		ctx, span := tracer.Start(ctx, "retrier.attempt",
			trace.WithAttributes(attrs...),
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		defer span.End()

		v, err := job(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("retrier.error.category", transient.Categorize(err).String()))
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return v, err
	}
}
