// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retrier

import (
	"context"
	"runtime/debug"
)

// A Job is a unit of work retried by a Retrier. The job is invoked once
// per attempt, each time on a new goroutine.
//
// The context passed to the job is cancelled when the attempt is
// abandoned, either because the execution was cancelled, because a
// gating condition turned false, or because the attempt timeout
// elapsed. A job should return promptly once its context is done. The
// execution never waits for a job that ignores cancellation, but it
// does discard the job's late result.
type Job[T any] func(ctx context.Context) (T, error)

type attemptKey struct{}

// AttemptFromContext returns the zero-based index, within its trial, of
// the attempt a job's context belongs to. The second return value is
// false if ctx was not passed to a job by a trial.
func AttemptFromContext(ctx context.Context) (uint, bool) {
	i, ok := ctx.Value(attemptKey{}).(uint)
	return i, ok
}

type result[T any] struct {
	value T
	err   error
}

// attempt runs the job and delivers its result on c, which must be
// buffered so that an abandoned attempt never blocks.
func attempt[T any](ctx context.Context, job Job[T], c chan<- result[T]) {
	var r result[T]
	defer func() {
		if v := recover(); v != nil {
			var zero T
			r = result[T]{value: zero, err: &PanicError{Value: v, Stack: debug.Stack()}}
		}
		c <- r
	}()
	r.value, r.err = job(ctx)
}
