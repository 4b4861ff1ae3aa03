// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package observe provides ready-made event handlers and job wrappers
// which report retrier activity to log/slog, OpenTelemetry and
// Prometheus.
//
// Handlers are installed into a retrier.HandlerGroup:
//
//	handlers := &retrier.HandlerGroup[string]{}
//	handlers.PushBackAll(observe.Logger[string](slog.Default(), "fetch"))
//	handlers.PushBackAll(observe.Metrics[string]("fetch"))
//
// Tracing wraps the job itself, so that each attempt runs inside its
// own span:
//
//	v, err := r.Do(ctx, observe.Trace("fetch", fetch))
package observe

import (
	"errors"

	"github.com/gogama/retrier"
)

// Outcome label values shared by the handlers in this package.
const (
	outcomeSuccess         = "success"
	outcomeFailure         = "failure"
	outcomeGaveUp          = "gave_up"
	outcomeCancelled       = "cancelled"
	outcomeConditionClosed = "condition_closed"
)

// completionOutcome classifies the error of a Completion event.
func completionOutcome(err error) string {
	switch {
	case err == nil:
		return outcomeSuccess
	case errors.Is(err, retrier.ErrCancelled):
		return outcomeCancelled
	case errors.Is(err, retrier.ErrConditionClosed):
		return outcomeConditionClosed
	default:
		return outcomeGaveUp
	}
}
