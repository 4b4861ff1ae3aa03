// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import (
	"errors"
	"time"
)

// GiveUpOn wraps p so that it gives up whenever p decides to retry but
// criteria c return true. The wrapped policy p is not modified, and
// wrappers may be nested arbitrarily.
func GiveUpOn(p Policy, c Criteria) Policy {
	if p == nil {
		panic("retrier/policy: nil policy")
	}
	if c == nil {
		panic("retrier/policy: nil criteria")
	}
	return giveUpOn{wrapped: p, criteria: c}
}

// GiveUpAfter wraps p so that it gives up after n failed attempts.
func GiveUpAfter(p Policy, n uint) Policy {
	return GiveUpOn(p, MaxAttempts(n))
}

// GiveUpAfterTimeout wraps p so that it gives up when the next attempt
// would start d or more after the start of the trial.
func GiveUpAfterTimeout(p Policy, d time.Duration) Policy {
	return GiveUpOn(p, Timeout(d))
}

// GiveUpOnErrors wraps p so that it gives up on any error for which
// pred returns true.
func GiveUpOnErrors(p Policy, pred ErrorPredicate) Policy {
	return GiveUpOn(p, FinalError(pred))
}

type giveUpOn struct {
	wrapped  Policy
	criteria Criteria
}

func (w giveUpOn) Delay(f Failure) time.Duration {
	return w.wrapped.Delay(f)
}

func (w giveUpOn) ShouldRetry(f Failure) Decision {
	d := w.wrapped.ShouldRetry(f)
	delay, retry := d.Retry()
	if !retry || w.criteria(f, delay) {
		return GiveUp
	}
	return d
}

func (w giveUpOn) Next(f Failure, delay time.Duration) Policy {
	return giveUpOn{
		wrapped:  w.wrapped.Next(f, delay),
		criteria: w.criteria,
	}
}

// RetryOn wraps p so that it retries whenever pred returns true for the
// attempt failure, even if p would give up. A forced retry waits for
// p.Delay.
func RetryOn(p Policy, pred func(Failure) bool) Policy {
	if p == nil {
		panic("retrier/policy: nil policy")
	}
	if pred == nil {
		panic("retrier/policy: nil retry predicate")
	}
	return retryOn{wrapped: p, pred: pred}
}

// RetryOnErrors wraps p so that it retries on any error for which pred
// returns true, even if p would give up.
func RetryOnErrors(p Policy, pred ErrorPredicate) Policy {
	if pred == nil {
		panic("retrier/policy: nil error predicate")
	}
	return RetryOn(p, func(f Failure) bool {
		return pred(f.Err)
	})
}

type retryOn struct {
	wrapped Policy
	pred    func(Failure) bool
}

func (w retryOn) Delay(f Failure) time.Duration {
	return w.wrapped.Delay(f)
}

func (w retryOn) ShouldRetry(f Failure) Decision {
	if w.pred(f) {
		return RetryAfter(w.wrapped.Delay(f))
	}
	return w.wrapped.ShouldRetry(f)
}

func (w retryOn) Next(f Failure, delay time.Duration) Policy {
	return retryOn{
		wrapped: w.wrapped.Next(f, delay),
		pred:    w.pred,
	}
}

// Is returns an ErrorPredicate which matches any error for which
// errors.Is reports a match against one of targets.
func Is(targets ...error) ErrorPredicate {
	tt := make([]error, len(targets))
	copy(tt, targets)
	return func(err error) bool {
		for _, target := range tt {
			if errors.Is(err, target) {
				return true
			}
		}
		return false
	}
}
