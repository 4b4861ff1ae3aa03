// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retrier

import (
	"context"
	"time"

	"github.com/gogama/retrier/condition"
	"github.com/gogama/retrier/policy"
	"github.com/gogama/retrier/timeout"
)

// A Retrier runs jobs with retries. Its zero value is a valid Retrier
// that uses the default retry policy and no attempt timeout.
//
// A Retrier holds only configuration, so one Retrier may start any
// number of executions, concurrently, from any goroutine. Each
// execution is bound to the context passed when starting it: when that
// context ends, the execution is cancelled.
type Retrier[T any] struct {
	// RetryPolicy decides whether to retry after each failed attempt,
	// and how long to wait first. Every trial starts from this policy
	// value.
	//
	// If RetryPolicy is nil, policy.Default() is used.
	RetryPolicy policy.Policy

	// TimeoutPolicy sets the timeout of each attempt's context.
	//
	// If TimeoutPolicy is nil, timeout.Infinite is used.
	TimeoutPolicy timeout.Policy

	// Handlers are run synchronously on the execution's goroutine for
	// each event, before the event reaches subscribers.
	//
	// If Handlers is nil, no handlers are run.
	Handlers *HandlerGroup[T]
}

// Try starts a trial of job and returns without waiting for it.
func (r *Retrier[T]) Try(ctx context.Context, job Job[T]) *Trial[T] {
	mustJob(job)
	return newTrial(ctx, job, r.retryPolicy(), r.timeoutPolicy(), r.Handlers).begin()
}

// TryWhen starts a trial of job gated on cond, and returns without
// waiting for it. See Gate.
func (r *Retrier[T]) TryWhen(ctx context.Context, cond condition.Source, job Job[T]) *Gate[T] {
	mustJob(job)
	mustCondition(cond)
	return newGate(ctx, job, r.retryPolicy(), r.timeoutPolicy(), cond, r.Handlers).begin()
}

// Repeat starts repeating job, with a delay of every between the end
// of a successful trial and the start of the next one. See Repeater.
func (r *Retrier[T]) Repeat(ctx context.Context, every time.Duration, job Job[T]) *Repeater[T] {
	mustJob(job)
	p, tp := r.retryPolicy(), r.timeoutPolicy()
	return newRepeater(ctx, every, func(ctx context.Context) (Cancellable, *Subscription[T]) {
		t := newTrial(ctx, job, p, tp, nil)
		sub := t.Subscribe()
		return t.begin(), sub
	}, r.Handlers).begin()
}

// RepeatWhen is like Repeat, but each trial is gated on cond.
func (r *Retrier[T]) RepeatWhen(ctx context.Context, every time.Duration, cond condition.Source, job Job[T]) *Repeater[T] {
	mustJob(job)
	mustCondition(cond)
	p, tp := r.retryPolicy(), r.timeoutPolicy()
	return newRepeater(ctx, every, func(ctx context.Context) (Cancellable, *Subscription[T]) {
		g := newGate(ctx, job, p, tp, cond, nil)
		sub := g.Subscribe()
		return g.begin(), sub
	}, r.Handlers).begin()
}

// Do runs a trial of job and waits for its outcome. If ctx ends first,
// the trial is cancelled and Do returns an error matching both
// ErrCancelled and the context's cancellation cause.
func (r *Retrier[T]) Do(ctx context.Context, job Job[T]) (T, error) {
	return r.Try(ctx, job).Value(context.Background())
}

// DoWhen runs a trial of job gated on cond, and waits for its outcome.
func (r *Retrier[T]) DoWhen(ctx context.Context, cond condition.Source, job Job[T]) (T, error) {
	return r.TryWhen(ctx, cond, job).Value(context.Background())
}

func (r *Retrier[T]) retryPolicy() policy.Policy {
	if r.RetryPolicy == nil {
		return policy.Default()
	}
	return r.RetryPolicy
}

func (r *Retrier[T]) timeoutPolicy() timeout.Policy {
	if r.TimeoutPolicy == nil {
		return timeout.Infinite
	}
	return r.TimeoutPolicy
}

// Do runs job with retries according to p, and waits for the outcome.
// If p is nil, policy.Default() is used.
func Do[T any](ctx context.Context, p policy.Policy, job Job[T]) (T, error) {
	r := Retrier[T]{RetryPolicy: p}
	return r.Do(ctx, job)
}

func mustJob[T any](job Job[T]) {
	if job == nil {
		panic("retrier: nil job")
	}
}

func mustCondition(cond condition.Source) {
	if cond == nil {
		panic("retrier: nil condition")
	}
}
