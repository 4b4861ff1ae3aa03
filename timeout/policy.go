// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"math"
	"time"

	"github.com/gogama/retrier/transient"
)

// An Attempt describes the state of a trial just before a job attempt
// starts, as far as timeout policies are concerned.
type Attempt struct {
	// Index is the zero-based index of the attempt about to start.
	Index uint
	// Timeouts is the number of earlier attempts within the trial that
	// failed with a timeout error.
	Timeouts int
	// Err is the error the preceding attempt failed with, or nil if
	// this is the first attempt.
	Err error
}

// TimedOut reports whether the preceding attempt failed with a timeout
// error, as classified by transient.Categorize.
func (a Attempt) TimedOut() bool {
	return transient.Categorize(a.Err) == transient.Timeout
}

// A Policy defines a timeout policy which may be plugged into a retrier
// to direct how to set the timeout for the initial attempt, as well as
// for any subsequent retries.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	// Timeout returns the timeout to set on the next job attempt within
	// the trial. A return value of math.MaxInt64 means no timeout.
	Timeout(a Attempt) time.Duration
}

// DefaultPolicy is a general purpose timeout policy. It sets a fixed
// timeout of 5 seconds on each attempt.
var DefaultPolicy Policy = Fixed(5 * time.Second)

// Infinite is a built-in timeout policy which never times out. It is
// used when no timeout policy is configured.
var Infinite Policy = Fixed(math.MaxInt64)

// Fixed constructs a timeout policy that uses the same value to set
// every attempt timeout. The return value is a timeout policy that
// always returns the value d.
func Fixed(d time.Duration) Policy {
	if d <= 0 {
		panic("retrier/timeout: timeout must be positive")
	}
	return policy([]time.Duration{d})
}

// Adaptive constructs a timeout policy that varies the next timeout
// value if the previous attempt timed out.
//
// Use Adaptive if the job is often subject to one-off slowness that can
// be cured by quickly timing out and retrying, but you also need to
// protect against retry storms when most attempts during a burst of
// slowness are slower than the usual quick timeout.
//
// Parameter usual represents the timeout value the policy will return
// for an initial attempt and for any retry where the immediately
// preceding attempt did not time out.
//
// Parameter after contains timeout values the policy will return if
// the previous attempt timed out. If this was the first timeout of the
// trial, after[0] is returned; if the second, after[1], and so on. If
// more attempts have timed out within the trial than after has
// elements, then the last element of after is returned.
//
// Consider the following timeout policy:
//
//	p := Adaptive(200*time.Millisecond, time.Second, 10*time.Second)
//
// The policy p will use 200 milliseconds as the usual timeout but if
// the preceding attempt timed out and was the first timeout of the
// trial, it will use 1 second; and if the previous attempt timed out
// and was not the first timeout, it will use 10 seconds.
func Adaptive(usual time.Duration, after ...time.Duration) Policy {
	p := make([]time.Duration, 1, 1+len(after))
	p[0] = usual
	p = append(p, after...)
	for _, d := range p {
		if d <= 0 {
			panic("retrier/timeout: timeout must be positive")
		}
	}
	return policy(p)
}

type policy []time.Duration

func (p policy) Timeout(a Attempt) time.Duration {
	if !a.TimedOut() {
		return p[0]
	}

	i := a.Timeouts
	if i > len(p)-1 {
		i = len(p) - 1
	}

	return p[i]
}
