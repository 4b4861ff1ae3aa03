// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retrier

import (
	"context"
	"time"
)

// A Repeater runs trial after trial of the same job, waiting a fixed
// interval after each successful trial before starting the next one.
//
// Every trial starts with attempt index zero and a fresh copy of the
// retry policy. The Repeater relays each trial's events, except that it
// swallows the successful Completion events. It completes only when a
// trial gives up, relaying that trial's Completion, or when it is
// cancelled, in which case it emits exactly one Completion with an
// error matching ErrCancelled.
//
// A Repeater created by RepeatWhen runs each trial as a Gate, so trials
// only make progress while the condition is true. All methods are safe
// for concurrent use.
type Repeater[T any] struct {
	every time.Duration
	next  func(ctx context.Context) (Cancellable, *Subscription[T])

	ctx    context.Context
	cancel context.CancelCauseFunc
	*emitter[T]
}

func newRepeater[T any](ctx context.Context, every time.Duration, next func(context.Context) (Cancellable, *Subscription[T]), handlers *HandlerGroup[T]) *Repeater[T] {
	if every < 0 {
		panic("retrier: negative repeat interval")
	}
	ctx, cancel := context.WithCancelCause(ctx)
	return &Repeater[T]{
		every:   every,
		next:    next,
		ctx:     ctx,
		cancel:  cancel,
		emitter: newEmitter(handlers),
	}
}

func (r *Repeater[T]) begin() *Repeater[T] {
	go r.run()
	return r
}

// Cancel stops the repeater and cancels its running trial, if any. If
// the repeater has not yet completed, it completes with an error
// matching ErrCancelled. Cancel is idempotent and never blocks.
func (r *Repeater[T]) Cancel() {
	r.cancel(ErrCancelled)
}

// Subscribe returns a new Subscription to the repeater's events.
func (r *Repeater[T]) Subscribe() *Subscription[T] {
	return r.subscribe()
}

// Done returns a channel that is closed when the repeater has
// completed.
func (r *Repeater[T]) Done() <-chan struct{} {
	return r.done
}

// Wait waits for the repeater to complete and returns its terminal
// error, which is never nil. If ctx is done first, Wait returns
// ctx.Err() without cancelling the repeater.
func (r *Repeater[T]) Wait(ctx context.Context) error {
	_, err := r.outcome(ctx)
	return err
}

func (r *Repeater[T]) run() {
	defer r.cancel(nil)

	for {
		if !r.trial() {
			return
		}
		if !sleep(r.ctx, r.every) {
			r.cancelled()
			return
		}
	}
}

// trial runs one trial to its end. It returns true if the trial
// succeeded and the repeater should continue.
func (r *Repeater[T]) trial() bool {
	if r.ctx.Err() != nil {
		r.cancelled()
		return false
	}

	inner, sub := r.next(r.ctx)
	defer sub.Close()

	for {
		select {
		case e := <-sub.C():
			if e.Kind != Completion {
				r.emit(e)
				continue
			}
			if e.Err == nil && r.ctx.Err() == nil {
				return true
			}
			if r.ctx.Err() != nil {
				r.cancelled()
			} else {
				r.emit(e)
			}
			return false
		case <-r.ctx.Done():
			inner.Cancel()
			r.cancelled()
			return false
		}
	}
}

func (r *Repeater[T]) cancelled() {
	r.emit(completionEvent[T](cancelled(context.Cause(r.ctx))))
}
