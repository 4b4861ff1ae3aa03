// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retrier

import (
	"fmt"

	"github.com/gogama/retrier/policy"
)

// A Kind identifies the type of an Event. Install event handlers for a
// Kind in a Retrier to extend it with custom functionality.
type Kind int

const (
	// AttemptSuccess identifies the event that occurs when a job
	// attempt succeeds.
	//
	// The event's Value field holds the value the job produced. Within
	// a trial, AttemptSuccess is always immediately followed by a
	// successful Completion, except under a Repeater, which swallows
	// successful Completions and starts a new trial instead.
	AttemptSuccess Kind = iota
	// AttemptFailure identifies the event that occurs when a job attempt
	// fails, before the retry policy is consulted.
	//
	// The event's Failure field describes the failed attempt. A gated
	// execution also emits AttemptFailure, with an error matching
	// ErrCancelled, when its condition turns false in the middle of a
	// trial.
	AttemptFailure
	// Completion identifies the terminal event of an execution. Exactly
	// one Completion occurs per execution and no event follows it.
	//
	// The event's Err field is nil if the execution succeeded.
	// Otherwise it is the error of the last attempt, when the policy
	// gave up; an error matching ErrCancelled, when the execution was
	// cancelled; or ErrConditionClosed, when a gated execution's
	// condition source ended while the condition was not true.
	Completion
	// kindSentinel provides the total number of kinds typed as a Kind.
	kindSentinel

	// numKinds provides the total number of kinds as an int.
	numKinds = int(kindSentinel)
)

var kindNames = []string{
	"AttemptSuccess",
	"AttemptFailure",
	"Completion",
}

// Kinds returns a slice containing all event kinds, in the order in
// which they are defined.
func Kinds() []Kind {
	return []Kind{
		AttemptSuccess,
		AttemptFailure,
		Completion,
	}
}

// Name returns the name of the event kind.
func (k Kind) Name() string {
	return kindNames[int(k)]
}

// String returns the name of the event kind.
func (k Kind) String() string {
	return k.Name()
}

// An Event is one item in the event sequence of an execution. Which
// fields are meaningful depends on Kind.
type Event[T any] struct {
	Kind Kind
	// Value is set for AttemptSuccess.
	Value T
	// Failure is set for AttemptFailure.
	Failure policy.Failure
	// Err is set for Completion, and is nil on success.
	Err error
}

func successEvent[T any](v T) Event[T] {
	return Event[T]{Kind: AttemptSuccess, Value: v}
}

func failureEvent[T any](f policy.Failure) Event[T] {
	return Event[T]{Kind: AttemptFailure, Failure: f}
}

func completionEvent[T any](err error) Event[T] {
	return Event[T]{Kind: Completion, Err: err}
}

// String returns a short description of the event.
func (e Event[T]) String() string {
	switch e.Kind {
	case AttemptSuccess:
		return fmt.Sprintf("AttemptSuccess(%v)", e.Value)
	case AttemptFailure:
		return fmt.Sprintf("AttemptFailure(index=%d, %v)", e.Failure.Index, e.Failure.Err)
	case Completion:
		if e.Err == nil {
			return "Completion(nil)"
		}
		return fmt.Sprintf("Completion(%v)", e.Err)
	default:
		return fmt.Sprintf("Event(%d)", int(e.Kind))
	}
}
