// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package retrier runs jobs with automatic retries according to a
pluggable retry policy, while exposing a live stream of attempt-level
events and a single awaitable result.

The simplest way to use the package is Do, which runs a job and waits
for its outcome:

	v, err := retrier.Do(ctx, policy.GiveUpAfter(policy.Default(), 5),
		func(ctx context.Context) (string, error) {
			return fetch(ctx)
		})

For more control, create a Retrier. Its zero value is valid and uses the
default retry policy, policy.Default(), with no attempt timeout:

	r := &retrier.Retrier[string]{
		RetryPolicy:   policy.GiveUpOn(policy.Exponential(100*time.Millisecond, 10*time.Second, policy.FullJitter),
			policy.MaxAttempts(5).Or(policy.Timeout(time.Minute))),
		TimeoutPolicy: timeout.Fixed(2 * time.Second),
	}
	trial := r.Try(ctx, fetch)
	sub := trial.Subscribe()
	for e := range sub.C() {
		...
	}
	v, err := trial.Value(ctx)

A Retrier can start three kinds of execution:

A Trial, started by Try, runs attempts of the job until one succeeds or
the policy gives up. Each failed attempt produces an AttemptFailure
event, a successful attempt produces an AttemptSuccess event, and the
trial ends with exactly one Completion event.

A Gate, started by TryWhen, runs a trial only while a condition from
package condition is true. When the condition becomes false mid-trial,
the running attempt is cancelled and reported as an AttemptFailure with
an error matching ErrCancelled, and a fresh trial starts when the
condition becomes true again.

A Repeater, started by Repeat or RepeatWhen, runs trial after trial,
waiting a fixed interval after each success. It only completes when a
trial gives up or when it is cancelled.

Every execution is driven by its own goroutine and may be cancelled at
any time by calling Cancel, or by ending the context it was started
with. Cancellation is cooperative: the running attempt's context is
cancelled, the execution completes at once with an error matching
ErrCancelled, and a late result from the job is discarded.

To hook into execution events, for example for logging, tracing or
metrics, install a handler into the appropriate handler chain:

	handlers := &retrier.HandlerGroup[string]{}
	handlers.PushBack(retrier.AttemptFailure, retrier.HandlerFunc[string](
		func(e retrier.Event[string]) {
			log.Printf("Attempt %d failed: %v", e.Failure.Index, e.Failure.Err)
		}))
	r := &retrier.Retrier[string]{
		Handlers: handlers,
	}

Package observe provides ready-made handlers for log/slog, OpenTelemetry
and Prometheus.
*/
package retrier
