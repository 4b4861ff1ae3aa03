// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

const (
	// DefaultTimeSlot is the time slot used by Default.
	DefaultTimeSlot = 500 * time.Millisecond
	// DefaultMaxDelay is the maximum delay used by Default.
	DefaultMaxDelay = 60 * time.Second
	// DefaultGrowthFactor is the decorrelated jitter growth factor used
	// when a Jitter of kind JitterDecorrelated has no growth factor.
	DefaultGrowthFactor = 3.0
)

// A JitterKind names a jitter strategy.
type JitterKind string

const (
	JitterNone         JitterKind = "none"
	JitterFull         JitterKind = "full"
	JitterDecorrelated JitterKind = "decorrelated"
)

// A Jitter specifies how an exponential policy randomizes its delays.
type Jitter struct {
	Kind JitterKind
	// GrowthFactor is only used by JitterDecorrelated. Zero means
	// DefaultGrowthFactor.
	GrowthFactor float64
}

var (
	// NoJitter uses the exponential delay as-is.
	NoJitter = Jitter{Kind: JitterNone}
	// FullJitter draws the delay uniformly from [0, exponential delay].
	FullJitter = Jitter{Kind: JitterFull}
)

// Decorrelated returns a decorrelated jitter with growth factor g.
//
// The first retry delay is drawn with full jitter. Each later delay is
// drawn uniformly from [timeSlot, max(timeSlot, g*previous)], where
// previous is the delay chosen for the preceding retry.
func Decorrelated(g float64) Jitter {
	if g <= 0 || math.IsNaN(g) || math.IsInf(g, 0) {
		panic("retrier/policy: growth factor must be positive")
	}
	return Jitter{Kind: JitterDecorrelated, GrowthFactor: g}
}

// Exponential constructs a policy implementing exponential backoff with
// optional jitter. It always retries.
//
// The uncapped delay for the attempt with index i is timeSlot * 2**i,
// randomized according to jitter. The delay returned is the smaller of
// the uncapped delay and maxDelay:
//
//	delay := min(maxDelay, jitter(timeSlot * 2**i))
//
// timeSlot must be positive and maxDelay must be at least equal to
// timeSlot. Randomness is drawn from the math/rand/v2 top-level
// generator; use ExponentialSeeded for a dedicated generator.
func Exponential(timeSlot, maxDelay time.Duration, jitter Jitter) Policy {
	return newExponential(timeSlot, maxDelay, jitter, nil)
}

// ExponentialSeeded is like Exponential but draws jitter from a dedicated
// random number generator.
//
// Parameter seed may be a seed value (as a time.Time, int, int64 or
// uint64), a rand.Source, or a *rand.Rand. A dedicated generator is
// shared by the policy and all of its successors, and is guarded by a
// mutex.
func ExponentialSeeded(timeSlot, maxDelay time.Duration, jitter Jitter, seed interface{}) Policy {
	return newExponential(timeSlot, maxDelay, jitter, seedToRand(seed))
}

func newExponential(timeSlot, maxDelay time.Duration, jitter Jitter, r *lockedRand) exponential {
	if timeSlot < 1 {
		panic("retrier/policy: time slot must be positive")
	}
	if maxDelay < timeSlot {
		panic("retrier/policy: max delay must be at least time slot")
	}
	switch jitter.Kind {
	case "":
		jitter.Kind = JitterNone
	case JitterNone, JitterFull:
	case JitterDecorrelated:
		if jitter.GrowthFactor == 0 {
			jitter.GrowthFactor = DefaultGrowthFactor
		}
		if jitter.GrowthFactor < 0 {
			panic("retrier/policy: growth factor must be positive")
		}
	default:
		panic("retrier/policy: invalid jitter kind")
	}
	return exponential{
		timeSlot: timeSlot,
		maxDelay: maxDelay,
		jitter:   jitter,
		rand:     r,
	}
}

type exponential struct {
	timeSlot time.Duration
	maxDelay time.Duration
	jitter   Jitter
	rand     *lockedRand

	// Decorrelated jitter memory, set by Next.
	previous    time.Duration
	hasPrevious bool
}

func (p exponential) Delay(f Failure) time.Duration {
	var d time.Duration
	switch p.jitter.Kind {
	case JitterFull:
		d = p.uniform(0, p.uncapped(f.Index))
	case JitterDecorrelated:
		if !p.hasPrevious {
			d = p.uniform(0, p.uncapped(f.Index))
			break
		}
		hi := scale(p.previous, p.jitter.GrowthFactor)
		if hi < p.timeSlot {
			hi = p.timeSlot
		}
		d = p.uniform(p.timeSlot, hi)
	default:
		d = p.uncapped(f.Index)
	}
	if d > p.maxDelay {
		d = p.maxDelay
	}
	return d
}

func (p exponential) ShouldRetry(f Failure) Decision {
	return RetryAfter(p.Delay(f))
}

func (p exponential) Next(_ Failure, delay time.Duration) Policy {
	if p.jitter.Kind != JitterDecorrelated {
		return p
	}
	next := p
	next.previous = delay
	next.hasPrevious = true
	return next
}

// uncapped returns timeSlot * 2**i, saturating at math.MaxInt64.
func (p exponential) uncapped(i uint) time.Duration {
	return time.Duration(mulSat(int64(p.timeSlot), pow(2, i)))
}

// uniform returns a random duration in [lo, hi].
func (p exponential) uniform(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	n := int64(hi - lo)
	if n < math.MaxInt64 {
		n++
	}
	return lo + time.Duration(p.rand.int64N(n))
}

// pow computes base**exp by exponentiation by squaring, saturating at
// math.MaxInt64. Base must be non-negative.
func pow(base int64, exp uint) int64 {
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result = mulSat(result, base)
		}
		exp >>= 1
		if exp > 0 {
			base = mulSat(base, base)
		}
	}
	return result
}

// mulSat multiplies two non-negative numbers, saturating at
// math.MaxInt64.
func mulSat(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxInt64/b {
		return math.MaxInt64
	}
	return a * b
}

func scale(d time.Duration, f float64) time.Duration {
	x := float64(d) * f
	if x >= math.MaxInt64 {
		return math.MaxInt64
	}
	return time.Duration(x)
}

type lockedRand struct {
	r    *rand.Rand
	lock sync.Mutex
}

func (l *lockedRand) int64N(n int64) int64 {
	if l == nil {
		return rand.Int64N(n)
	}
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.r.Int64N(n)
}

func seedToRand(seed interface{}) *lockedRand {
	var s rand.Source
	switch x := seed.(type) {
	case nil:
		return nil
	case time.Time:
		s = rand.NewPCG(uint64(x.UnixNano()), 0)
	case int:
		s = rand.NewPCG(uint64(x), 0)
	case int64:
		s = rand.NewPCG(uint64(x), 0)
	case uint64:
		s = rand.NewPCG(x, 0)
	case *rand.Rand:
		if x == nil {
			panic("retrier/policy: seed may not be a typed nil")
		}
		return &lockedRand{r: x}
	case rand.Source:
		s = x
	default:
		panic("retrier/policy: invalid seed type")
	}
	return &lockedRand{r: rand.New(s)}
}
