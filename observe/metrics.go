// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/gogama/retrier"
	"github.com/gogama/retrier/transient"
)

// Metrics returns a handler which records retrier metrics using the
// global OTel MeterProvider. If no MeterProvider is configured, noop
// instruments are used and the handler does nothing.
//
// Instruments:
//   - retrier.attempts (Int64Counter): completed attempts, with
//     attributes: retrier.name, outcome ("success" or "failure") and,
//     for failures, category
//   - retrier.failure.elapsed (Float64Histogram): time in seconds from
//     the start of the trial to each failed attempt, with attribute
//     retrier.name
//   - retrier.completions (Int64Counter): completed executions, with
//     attributes: retrier.name, outcome ("success", "gave_up",
//     "cancelled" or "condition_closed")
func Metrics[T any](name string) retrier.Handler[T] {
	return MetricsWithMeter[T](otel.Meter(instrumentationName), name)
}

// MetricsWithMeter is like Metrics but uses the provided meter.
func MetricsWithMeter[T any](meter metric.Meter, name string) retrier.Handler[T] {
	// The OTel API returns noop instruments on error.
	attempts, _ := meter.Int64Counter(
		"retrier.attempts",
		metric.WithDescription("Total number of job attempts"),
		metric.WithUnit("{attempt}"),
	)
	elapsed, _ := meter.Float64Histogram(
		"retrier.failure.elapsed",
		metric.WithDescription("Time from trial start to each failed attempt in seconds"),
		metric.WithUnit("s"),
	)
	completions, _ := meter.Int64Counter(
		"retrier.completions",
		metric.WithDescription("Total number of completed executions"),
		metric.WithUnit("{execution}"),
	)

	nameAttr := attribute.String("retrier.name", name)
	return retrier.HandlerFunc[T](func(e retrier.Event[T]) {
		ctx := context.Background()
		switch e.Kind {
		case retrier.AttemptSuccess:
			attempts.Add(ctx, 1, metric.WithAttributes(
				nameAttr,
				attribute.String("outcome", outcomeSuccess),
			))
		case retrier.AttemptFailure:
			attempts.Add(ctx, 1, metric.WithAttributes(
				nameAttr,
				attribute.String("outcome", outcomeFailure),
				attribute.String("category", transient.Categorize(e.Failure.Err).String()),
			))
			elapsed.Record(ctx, time.Since(e.Failure.TrialStart).Seconds(), metric.WithAttributes(nameAttr))
		case retrier.Completion:
			completions.Add(ctx, 1, metric.WithAttributes(
				nameAttr,
				attribute.String("outcome", completionOutcome(e.Err)),
			))
		}
	})
}
