// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import (
	"fmt"
	"time"
)

// A Failure describes one failed job attempt within a trial.
//
// A Failure is created once per failed attempt and never modified. The
// TrialStart field is fixed when the first attempt of the trial starts
// and is the same for every later Failure in that trial.
type Failure struct {
	// TrialStart is the time the first attempt of the trial started.
	TrialStart time.Time
	// Index is the zero-based index of the failed attempt.
	Index uint
	// Err is the error the attempt failed with.
	Err error
}

// A Decision is the outcome of asking a Policy whether to retry after a
// Failure. The zero value is GiveUp.
type Decision struct {
	retry bool
	delay time.Duration
}

// GiveUp is the Decision to stop retrying.
var GiveUp = Decision{}

// RetryAfter returns the Decision to retry after waiting for delay.
// Negative delays are treated as zero.
func RetryAfter(delay time.Duration) Decision {
	if delay < 0 {
		delay = 0
	}
	return Decision{retry: true, delay: delay}
}

// Retry reports whether d is a retry decision and, if so, the delay to
// wait before the next attempt.
func (d Decision) Retry() (time.Duration, bool) {
	return d.delay, d.retry
}

// String returns "give up" or "retry after <delay>".
func (d Decision) String() string {
	if !d.retry {
		return "give up"
	}
	return fmt.Sprintf("retry after %v", d.delay)
}

// A Policy decides whether a failed attempt should be retried, and
// produces the Policy to use for the attempt after that.
//
// Implementations must be immutable values, safe for concurrent use
// by multiple goroutines. ShouldRetry and Delay must depend only on
// their argument and the policy's own state, plus any explicitly
// documented randomness.
type Policy interface {
	// Delay returns the delay the policy would wait before retrying
	// after f, ignoring any give-up criteria.
	Delay(f Failure) time.Duration
	// ShouldRetry decides whether to retry after f.
	ShouldRetry(f Failure) Decision
	// Next returns the policy to use for the attempt following f, given
	// that ShouldRetry decided to retry after delay. Next never runs
	// the job; it is a pure data transformation.
	Next(f Failure, delay time.Duration) Policy
}

// Default returns the default policy: exponential backoff with the
// default time slot and maximum delay, full jitter, and no give-up
// criteria.
func Default() Policy {
	return Exponential(DefaultTimeSlot, DefaultMaxDelay, FullJitter)
}

// Constant returns a policy that always retries after delay d.
func Constant(d time.Duration) Policy {
	if d < 0 {
		panic("retrier/policy: negative delay")
	}
	return constant(d)
}

type constant time.Duration

func (c constant) Delay(_ Failure) time.Duration {
	return time.Duration(c)
}

func (c constant) ShouldRetry(f Failure) Decision {
	return RetryAfter(c.Delay(f))
}

func (c constant) Next(_ Failure, _ time.Duration) Policy {
	return c
}
