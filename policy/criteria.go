// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import "time"

// Criteria decide whether a policy should give up instead of retrying.
//
// A Criteria function is called with the attempt failure and with the
// delay the wrapped policy intends to wait before retrying. It returns
// true to give up.
//
// Every Criteria function must be safe for concurrent use by multiple
// goroutines. Criteria can be composed logically using Criteria.And
// and Criteria.Or.
type Criteria func(f Failure, delay time.Duration) bool

// An ErrorPredicate reports whether an error matches some condition.
type ErrorPredicate func(err error) bool

// now is replaced in tests.
var now = time.Now

// And composes two criteria into new criteria which return true if
// both sub-criteria return true, and false otherwise.
//
// Short-circuit logic is used, so g will not be evaluated if c returns
// false.
func (c Criteria) And(g Criteria) Criteria {
	return func(f Failure, delay time.Duration) bool {
		return c(f, delay) && g(f, delay)
	}
}

// Or composes two criteria into new criteria which return true if
// either of the two sub-criteria returns true, but false if they both
// return false.
//
// Short-circuit logic is used, so g will not be evaluated if c returns
// true.
func (c Criteria) Or(g Criteria) Criteria {
	return func(f Failure, delay time.Duration) bool {
		return c(f, delay) || g(f, delay)
	}
}

// MaxAttempts constructs criteria which give up once n attempts have
// failed, in other words when the failure index is at least n-1.
//
// The first attempt of a trial always runs, so MaxAttempts(0) behaves
// the same as MaxAttempts(1).
func MaxAttempts(n uint) Criteria {
	return func(f Failure, _ time.Duration) bool {
		return n == 0 || f.Index >= n-1
	}
}

// Timeout constructs criteria which give up when the next attempt would
// start at or after the trial deadline, TrialStart plus d.
func Timeout(d time.Duration) Criteria {
	return func(f Failure, delay time.Duration) bool {
		next := now().Add(delay)
		return !next.Before(f.TrialStart.Add(d))
	}
}

// FinalError constructs criteria which give up when pred returns true
// for the failure's error.
func FinalError(pred ErrorPredicate) Criteria {
	if pred == nil {
		panic("retrier/policy: nil error predicate")
	}
	return func(f Failure, _ time.Duration) bool {
		return pred(f.Err)
	}
}
