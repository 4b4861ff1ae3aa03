// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retrier

import (
	"context"
	"sync"

	"github.com/gogama/retrier/internal/fifo"
	"github.com/gogama/retrier/policy"
)

// A Subscription receives the events of an execution, in order, from
// the moment it is created.
//
// Events are queued without bound, so a slow subscriber never delays
// the execution or other subscribers. The channel returned by C is
// closed after the Completion event has been delivered, or promptly
// after Close. Subscribing after the execution has completed yields a
// Subscription whose channel is already closed: streams do not replay
// past events. Use the execution's Value or Wait method to observe an
// outcome that has already happened.
type Subscription[T any] struct {
	pipe   *fifo.Pipe[Event[T]]
	closed chan struct{}
	once   sync.Once
	remove func(*Subscription[T])
}

func newSubscription[T any](remove func(*Subscription[T])) *Subscription[T] {
	return &Subscription[T]{
		pipe:   fifo.New[Event[T]](),
		closed: make(chan struct{}),
		remove: remove,
	}
}

// C returns the channel on which events are delivered.
func (s *Subscription[T]) C() <-chan Event[T] {
	return s.pipe.Out()
}

// Close unsubscribes, discarding any undelivered events. Closing a
// subscription has no effect on the execution. Close is idempotent.
func (s *Subscription[T]) Close() {
	s.once.Do(func() {
		if s.remove != nil {
			s.remove(s)
		}
		s.pipe.Stop()
		close(s.closed)
	})
}

// Successes returns a channel which receives the value of each
// AttemptSuccess event delivered to s. The channel is closed when s
// ends or is closed.
func Successes[T any](s *Subscription[T]) <-chan T {
	return filter(s, AttemptSuccess, func(e Event[T]) T { return e.Value })
}

// Failures returns a channel which receives the failure of each
// AttemptFailure event delivered to s. The channel is closed when s
// ends or is closed.
func Failures[T any](s *Subscription[T]) <-chan policy.Failure {
	return filter(s, AttemptFailure, func(e Event[T]) policy.Failure { return e.Failure })
}

// Completions returns a channel which receives the error, possibly nil,
// of the Completion event delivered to s. The channel is closed when s
// ends or is closed.
func Completions[T any](s *Subscription[T]) <-chan error {
	return filter(s, Completion, func(e Event[T]) error { return e.Err })
}

func filter[T, U any](s *Subscription[T], k Kind, f func(Event[T]) U) <-chan U {
	out := make(chan U)
	go func() {
		defer close(out)
		for e := range s.C() {
			if e.Kind != k {
				continue
			}
			select {
			case out <- f(e):
			case <-s.closed:
				return
			}
		}
	}()
	return out
}

// An emitter delivers the events of one execution to its handlers and
// subscribers, and records the execution's outcome. Only the driver
// goroutine of the execution calls emit.
type emitter[T any] struct {
	handlers *HandlerGroup[T]

	lock       sync.Mutex
	subs       map[*Subscription[T]]struct{}
	terminated bool
	value      T
	err        error

	done chan struct{}
}

func newEmitter[T any](handlers *HandlerGroup[T]) *emitter[T] {
	return &emitter[T]{
		handlers: handlers,
		subs:     make(map[*Subscription[T]]struct{}),
		done:     make(chan struct{}),
	}
}

func (em *emitter[T]) subscribe() *Subscription[T] {
	s := newSubscription(em.unsubscribe)
	em.lock.Lock()
	defer em.lock.Unlock()
	if em.terminated {
		s.pipe.Close()
		return s
	}
	em.subs[s] = struct{}{}
	return s
}

func (em *emitter[T]) unsubscribe(s *Subscription[T]) {
	em.lock.Lock()
	defer em.lock.Unlock()
	delete(em.subs, s)
}

func (em *emitter[T]) emit(e Event[T]) {
	em.handlers.run(e)

	em.lock.Lock()
	defer em.lock.Unlock()
	if em.terminated {
		return
	}
	for s := range em.subs {
		s.pipe.Push(e)
	}
	switch e.Kind {
	case AttemptSuccess:
		em.value = e.Value
	case Completion:
		em.terminated = true
		em.err = e.Err
		if e.Err != nil {
			var zero T
			em.value = zero
		}
		for s := range em.subs {
			s.pipe.Close()
		}
		em.subs = nil
		close(em.done)
	}
}

// outcome waits for the terminal event, or for ctx to be done.
func (em *emitter[T]) outcome(ctx context.Context) (T, error) {
	select {
	case <-em.done:
		return em.value, em.err
	default:
	}
	select {
	case <-em.done:
		return em.value, em.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
