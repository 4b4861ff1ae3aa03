// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retrier

import (
	"context"
	"math"
	"time"

	"github.com/gogama/retrier/policy"
	"github.com/gogama/retrier/timeout"
	"github.com/gogama/retrier/transient"
)

// A Trial is a single sequence of job attempts, from the first attempt
// until the job succeeds, the retry policy gives up, or the trial is
// cancelled.
//
// A Trial is driven by its own goroutine, which owns all of the trial's
// state and keeps running until the trial's Completion event, whether
// or not the caller keeps a reference to the Trial. All methods are
// safe for concurrent use.
type Trial[T any] struct {
	job      Job[T]
	policy   policy.Policy
	timeouts timeout.Policy
	start    time.Time

	ctx    context.Context
	cancel context.CancelCauseFunc
	*emitter[T]
}

func newTrial[T any](ctx context.Context, job Job[T], p policy.Policy, tp timeout.Policy, handlers *HandlerGroup[T]) *Trial[T] {
	ctx, cancel := context.WithCancelCause(ctx)
	return &Trial[T]{
		job:      job,
		policy:   p,
		timeouts: tp,
		ctx:      ctx,
		cancel:   cancel,
		emitter:  newEmitter(handlers),
	}
}

// begin records the trial start time and starts the driver goroutine.
// Subscriptions made before begin observe every event of the trial.
func (t *Trial[T]) begin() *Trial[T] {
	t.start = time.Now()
	go t.run()
	return t
}

// Start returns the time the first attempt of the trial started.
func (t *Trial[T]) Start() time.Time {
	return t.start
}

// Cancel cancels the trial. If the trial has not yet completed, the
// running attempt's context is cancelled, or the pending retry delay is
// abandoned, and the trial completes with an error matching
// ErrCancelled. Cancel is idempotent and never blocks.
func (t *Trial[T]) Cancel() {
	t.cancel(ErrCancelled)
}

// Subscribe returns a new Subscription to the trial's events.
func (t *Trial[T]) Subscribe() *Subscription[T] {
	return t.subscribe()
}

// Done returns a channel that is closed when the trial has completed.
func (t *Trial[T]) Done() <-chan struct{} {
	return t.done
}

// Value waits for the trial to complete and returns the successful
// attempt's value, or the trial's terminal error. If the trial has
// already completed, Value returns immediately. If ctx is done first,
// Value returns ctx.Err() without cancelling the trial.
func (t *Trial[T]) Value(ctx context.Context) (T, error) {
	return t.outcome(ctx)
}

func (t *Trial[T]) run() {
	defer t.cancel(nil)

	p := t.policy
	var a timeout.Attempt
	for {
		if t.ctx.Err() != nil {
			t.cancelled()
			return
		}

		r, ok := t.attempt(a)
		if !ok {
			t.cancelled()
			return
		}

		if r.err == nil {
			t.emit(successEvent(r.value))
			t.emit(completionEvent[T](nil))
			return
		}

		f := policy.Failure{TrialStart: t.start, Index: a.Index, Err: r.err}
		t.emit(failureEvent[T](f))
		delay, retry := p.ShouldRetry(f).Retry()
		if !retry {
			t.emit(completionEvent[T](r.err))
			return
		}
		p = p.Next(f, delay)

		if !t.sleep(delay) {
			t.cancelled()
			return
		}

		a.Index++
		a.Err = r.err
		if transient.Categorize(r.err) == transient.Timeout {
			a.Timeouts++
		}
	}
}

// attempt runs one job attempt. It returns false if the trial was
// cancelled before the attempt produced a result the trial can act on.
func (t *Trial[T]) attempt(a timeout.Attempt) (result[T], bool) {
	ctx, cancel := t.attemptContext(a)
	defer cancel()

	c := make(chan result[T], 1)
	go attempt(ctx, t.job, c)

	select {
	case r := <-c:
		if t.ctx.Err() != nil {
			return result[T]{}, false
		}
		return r, true
	case <-t.ctx.Done():
		return result[T]{}, false
	}
}

func (t *Trial[T]) attemptContext(a timeout.Attempt) (context.Context, context.CancelFunc) {
	ctx := context.WithValue(t.ctx, attemptKey{}, a.Index)
	d := time.Duration(math.MaxInt64)
	if t.timeouts != nil {
		d = t.timeouts.Timeout(a)
	}
	if d == math.MaxInt64 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func (t *Trial[T]) sleep(d time.Duration) bool {
	return sleep(t.ctx, d)
}

func (t *Trial[T]) cancelled() {
	t.emit(completionEvent[T](cancelled(context.Cause(t.ctx))))
}

// sleep waits for d to elapse. It returns false if ctx is done first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
