// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retrier

import (
	"errors"
	"fmt"
)

var (
	// ErrCancelled is the error of the Completion event emitted when an
	// execution is cancelled, and of the AttemptFailure event a gated
	// execution emits when its condition turns false mid-trial.
	//
	// If the execution was cancelled because its parent context ended,
	// the Completion error matches both ErrCancelled and the context's
	// cancellation cause.
	ErrCancelled = errors.New("retrier: cancelled")

	// ErrConditionClosed is the error of the Completion event emitted by
	// a gated execution whose condition source ended while the
	// condition was not true. The job will never run again.
	ErrConditionClosed = errors.New("retrier: condition closed")
)

// cancelled returns the completion error for an execution cancelled
// with the given cause.
func cancelled(cause error) error {
	if cause == nil || errors.Is(cause, ErrCancelled) {
		return ErrCancelled
	}
	return &cancelError{cause: cause}
}

type cancelError struct {
	cause error
}

func (err *cancelError) Error() string {
	return ErrCancelled.Error() + ": " + err.cause.Error()
}

func (err *cancelError) Unwrap() []error {
	return []error{ErrCancelled, err.cause}
}

// A PanicError is the attempt error reported when a job panics. The
// panic is recovered on the attempt's goroutine and treated as an
// ordinary attempt failure, so the policy decides whether to retry.
type PanicError struct {
	// Value is the value passed to panic.
	Value interface{}
	// Stack is the stack trace of the panicking goroutine.
	Stack []byte
}

func (err *PanicError) Error() string {
	return fmt.Sprintf("retrier: job panicked: %v", err.Value)
}

// Unwrap returns the panic value if it is an error.
func (err *PanicError) Unwrap() error {
	if e, ok := err.Value.(error); ok {
		return e
	}
	return nil
}
