// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retrier

import "context"

// EventSource is the interface that wraps the basic Subscribe method.
//
// Subscribe returns a new Subscription which receives every event
// emitted from the moment of subscription. Subscribing or closing a
// subscription never affects the progress of the execution.
type EventSource[T any] interface {
	Subscribe() *Subscription[T]
}

// Cancellable is the interface that wraps the basic Cancel method.
//
// Cancel requests cancellation of an execution. It may be called any
// number of times from any goroutine, and guarantees that the
// execution emits exactly one Completion event.
type Cancellable interface {
	Cancel()
}

// SingleOutput is the interface that wraps the basic Value method.
//
// Value waits for the execution to complete and returns its outcome.
// It may be called any number of times, before or after completion,
// and always returns the same outcome.
type SingleOutput[T any] interface {
	Value(ctx context.Context) (T, error)
}

// Execution is the interface that groups the methods common to Trial,
// Gate and Repeater.
type Execution[T any] interface {
	EventSource[T]
	Cancellable
	Done() <-chan struct{}
}

// SingleOutputExecution is the interface implemented by executions
// that end with a single outcome, namely Trial and Gate.
type SingleOutputExecution[T any] interface {
	Execution[T]
	SingleOutput[T]
}

var (
	_ SingleOutputExecution[int] = (*Trial[int])(nil)
	_ SingleOutputExecution[int] = (*Gate[int])(nil)
	_ Execution[int]             = (*Repeater[int])(nil)
)
