// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retrier

import (
	"context"
	"errors"

	"github.com/gogama/retrier/condition"
	"github.com/gogama/retrier/policy"
	"github.com/gogama/retrier/timeout"
)

// A Gate is a trial which only runs while an external condition is
// true.
//
// The Gate watches a condition.Source. Whenever the condition becomes
// true, the Gate starts a fresh inner trial using the original retry
// policy. Whenever the condition becomes false while an inner trial is
// running, the Gate cancels the inner trial and reports an
// AttemptFailure with an error matching ErrCancelled, but does not
// complete: it waits for the condition to become true again.
//
// Attempt indices in the Gate's AttemptFailure events keep counting
// across disarm and re-arm. The retry policy, on the other hand, starts
// over with each inner trial.
//
// The Gate completes when an inner trial completes, when the Gate is
// cancelled, or with ErrConditionClosed when the condition source ends
// while the condition is not true. Consecutive duplicate condition
// values are ignored. All methods are safe for concurrent use.
type Gate[T any] struct {
	job      Job[T]
	policy   policy.Policy
	timeouts timeout.Policy
	source   condition.Source

	ctx    context.Context
	cancel context.CancelCauseFunc
	*emitter[T]
}

func newGate[T any](ctx context.Context, job Job[T], p policy.Policy, tp timeout.Policy, source condition.Source, handlers *HandlerGroup[T]) *Gate[T] {
	ctx, cancel := context.WithCancelCause(ctx)
	return &Gate[T]{
		job:      job,
		policy:   p,
		timeouts: tp,
		source:   source,
		ctx:      ctx,
		cancel:   cancel,
		emitter:  newEmitter(handlers),
	}
}

func (g *Gate[T]) begin() *Gate[T] {
	go g.run()
	return g
}

// Cancel cancels the gate and any running inner trial. If the gate has
// not yet completed, it completes with an error matching ErrCancelled.
// Cancel is idempotent and never blocks.
func (g *Gate[T]) Cancel() {
	g.cancel(ErrCancelled)
}

// Subscribe returns a new Subscription to the gate's events.
func (g *Gate[T]) Subscribe() *Subscription[T] {
	return g.subscribe()
}

// Done returns a channel that is closed when the gate has completed.
func (g *Gate[T]) Done() <-chan struct{} {
	return g.done
}

// Value waits for the gate to complete and returns the successful
// attempt's value, or the gate's terminal error. If the gate has
// already completed, Value returns immediately. If ctx is done first,
// Value returns ctx.Err() without cancelling the gate.
func (g *Gate[T]) Value(ctx context.Context) (T, error) {
	return g.outcome(ctx)
}

// gateState is the state owned by a Gate's driver goroutine.
type gateState[T any] struct {
	inner *Trial[T]
	sub   *Subscription[T]
	// index is the attempt index the next AttemptFailure is reported
	// with. It is never reset.
	index uint
	armed bool
	known bool
}

func (g *Gate[T]) run() {
	defer g.cancel(nil)

	watchCtx, stopWatching := context.WithCancel(g.ctx)
	defer stopWatching()
	signal := g.source.Watch(watchCtx)

	var s gateState[T]
	for {
		var events <-chan Event[T]
		if s.sub != nil {
			events = s.sub.C()
		}

		select {
		case v, ok := <-signal:
			if !ok {
				signal = nil
				if !s.armed {
					g.emit(completionEvent[T](ErrConditionClosed))
					return
				}
				continue
			}
			if s.known && v == s.armed {
				continue
			}
			s.known, s.armed = true, v
			if v {
				s.inner = newTrial(g.ctx, g.job, g.policy, g.timeouts, nil)
				s.sub = s.inner.Subscribe()
				s.inner.begin()
			} else if s.inner != nil && g.disarm(&s) {
				return
			}
		case e := <-events:
			if g.relay(&s, e) {
				return
			}
		case <-g.ctx.Done():
			if s.inner != nil {
				s.inner.Cancel()
				s.sub.Close()
			}
			g.emit(completionEvent[T](cancelled(context.Cause(g.ctx))))
			return
		}
	}
}

// relay passes an inner trial event upward, re-indexing failures with
// the gate's running attempt index. It returns true if the event was
// terminal for the gate.
func (g *Gate[T]) relay(s *gateState[T], e Event[T]) bool {
	switch e.Kind {
	case AttemptFailure:
		e.Failure.Index = s.index
		s.index++
		g.emit(e)
	case Completion:
		g.emit(e)
		return true
	default:
		g.emit(e)
	}
	return false
}

// disarm cancels the running inner trial and drains its remaining
// events. If the inner trial completed on its own before observing the
// cancellation, its events are relayed as usual and disarm returns
// true. Otherwise the cancellation is reported as an AttemptFailure.
func (g *Gate[T]) disarm(s *gateState[T]) bool {
	inner, sub := s.inner, s.sub
	s.inner, s.sub = nil, nil
	inner.Cancel()
	for e := range sub.C() {
		if e.Kind == Completion && errors.Is(e.Err, ErrCancelled) && g.ctx.Err() == nil {
			g.emit(failureEvent[T](policy.Failure{
				TrialStart: inner.Start(),
				Index:      s.index,
				Err:        ErrCancelled,
			}))
			s.index++
			return false
		}
		if g.relay(s, e) {
			return true
		}
	}
	return false
}
