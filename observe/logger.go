// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package observe

import (
	"log/slog"
	"time"

	"github.com/gogama/retrier"
	"github.com/gogama/retrier/transient"
)

// Logger returns a handler which logs every event with logger. Install
// it for all event kinds with HandlerGroup.PushBackAll.
//
// Successful attempts are logged at debug level, failed attempts at
// warn level, and completions at info level, or at error level when
// the policy gave up. Every record carries the attribute
// "retrier" with the value name.
func Logger[T any](logger *slog.Logger, name string) retrier.Handler[T] {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("retrier", name))
	return retrier.HandlerFunc[T](func(e retrier.Event[T]) {
		switch e.Kind {
		case retrier.AttemptSuccess:
			logger.Debug("attempt succeeded")
		case retrier.AttemptFailure:
			logger.Warn("attempt failed",
				slog.Uint64("attempt", uint64(e.Failure.Index)),
				slog.Duration("elapsed", time.Since(e.Failure.TrialStart)),
				slog.String("category", transient.Categorize(e.Failure.Err).String()),
				slog.String("error", e.Failure.Err.Error()),
			)
		case retrier.Completion:
			outcome := completionOutcome(e.Err)
			switch outcome {
			case outcomeSuccess:
				logger.Info("retrier completed", slog.String("outcome", outcome))
			case outcomeGaveUp:
				logger.Error("retrier gave up",
					slog.String("outcome", outcome),
					slog.String("error", e.Err.Error()),
				)
			default:
				logger.Info("retrier stopped",
					slog.String("outcome", outcome),
					slog.String("error", e.Err.Error()),
				)
			}
		}
	})
}
