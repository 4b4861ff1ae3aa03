// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExponential(t *testing.T) {
	slot, max := 1*time.Millisecond, 1*time.Hour
	t.Run("invalid time slot", func(t *testing.T) {
		assert.Panics(t, func() {
			Exponential(time.Duration(-1), max, NoJitter)
		}, "negative time slot")
		assert.Panics(t, func() {
			Exponential(time.Duration(0), max, NoJitter)
		}, "zero time slot")
	})
	t.Run("invalid max delay", func(t *testing.T) {
		assert.Panics(t, func() {
			Exponential(time.Duration(2), time.Duration(1), NoJitter)
		}, "max delay less than time slot")
	})
	t.Run("invalid jitter", func(t *testing.T) {
		assert.Panics(t, func() {
			Exponential(slot, max, Jitter{Kind: "equal"})
		})
		assert.Panics(t, func() { Decorrelated(0) })
		assert.Panics(t, func() { Decorrelated(-1) })
		assert.Panics(t, func() { Decorrelated(math.NaN()) })
	})
	t.Run("no jitter", func(t *testing.T) {
		p := Exponential(slot, max, NoJitter)
		for i := uint(0); i < 20; i++ {
			f := Failure{Index: i}
			ceil := time.Duration(1<<i) * time.Millisecond
			assert.Equal(t, ceil, p.Delay(f))
			assert.Equal(t, RetryAfter(ceil), p.ShouldRetry(f))
			assert.Equal(t, p, p.Next(f, ceil))
		}
		assert.Equal(t, max, p.Delay(Failure{Index: 25}))
		assert.Equal(t, max, p.Delay(Failure{Index: 63}))
		assert.Equal(t, max, p.Delay(Failure{Index: 1000}))
		assert.Equal(t, max, p.Delay(Failure{Index: math.MaxUint32}))
	})
	t.Run("no jitter deterministic", func(t *testing.T) {
		p := Exponential(3*time.Millisecond, 700*time.Millisecond, NoJitter)
		for i := uint(0); i < 64; i++ {
			want := 700 * time.Millisecond
			if i < 10 {
				want = min(want, 3*time.Millisecond*time.Duration(1<<i))
			}
			assert.Equal(t, want, p.Delay(Failure{Index: i}), fmt.Sprintf("index %d", i))
		}
	})
	t.Run("full jitter", func(t *testing.T) {
		seeds := []struct {
			name  string
			value interface{}
		}{
			{"nil", nil},
			{"zero time.Time", time.Time{}},
			{"time.Now()", time.Now()},
			{"int", 1},
			{"int64", int64(1)},
			{"uint64", uint64(1)},
			{"rand.Source", rand.NewPCG(1, 2)},
			{"*rand.Rand", rand.New(rand.NewPCG(1, 2))},
		}
		for i, seed := range seeds {
			t.Run(fmt.Sprintf("seeds[%d]=%s", i, seed.name), func(t *testing.T) {
				p := ExponentialSeeded(slot, max, FullJitter, seed.value)
				total := time.Duration(0)
				for j := uint(0); j < 100; j++ {
					d := p.Delay(Failure{Index: j})
					total += d
					assert.GreaterOrEqual(t, d, time.Duration(0))
					if j < 22 {
						assert.LessOrEqual(t, d, time.Duration(1<<j)*time.Millisecond)
					}
					assert.LessOrEqual(t, d, max)
				}
				assert.Greater(t, total, time.Duration(0))
			})
		}
	})
	t.Run("invalid seed", func(t *testing.T) {
		assert.PanicsWithValue(t, "retrier/policy: invalid seed type", func() {
			ExponentialSeeded(slot, max, FullJitter, float64(1))
		})
		var nilRand *rand.Rand
		assert.PanicsWithValue(t, "retrier/policy: seed may not be a typed nil", func() {
			ExponentialSeeded(slot, max, FullJitter, nilRand)
		})
	})
	t.Run("decorrelated jitter", func(t *testing.T) {
		slot := 10 * time.Millisecond
		p := ExponentialSeeded(slot, max, Decorrelated(3), 42)
		f := Failure{Index: 0}
		first := p.Delay(f)
		assert.GreaterOrEqual(t, first, time.Duration(0))
		assert.LessOrEqual(t, first, slot)

		prev := first
		for i := uint(1); i < 50; i++ {
			p = p.Next(Failure{Index: i - 1}, prev)
			d := p.Delay(Failure{Index: i})
			hi := time.Duration(3 * float64(prev))
			if hi < slot {
				hi = slot
			}
			assert.GreaterOrEqual(t, d, slot)
			assert.LessOrEqual(t, d, min(hi, max))
			prev = d
		}
	})
	t.Run("decorrelated memory is per value", func(t *testing.T) {
		slot := 10 * time.Millisecond
		p0 := Exponential(slot, max, Decorrelated(2))
		p1 := p0.Next(Failure{}, time.Minute)
		assert.False(t, p0.(exponential).hasPrevious)
		assert.True(t, p1.(exponential).hasPrevious)
		assert.Equal(t, time.Minute, p1.(exponential).previous)
	})
	t.Run("default growth factor", func(t *testing.T) {
		p := Exponential(slot, max, Jitter{Kind: JitterDecorrelated})
		assert.Equal(t, DefaultGrowthFactor, p.(exponential).jitter.GrowthFactor)
	})
}

func TestPow(t *testing.T) {
	assert.Equal(t, int64(1), pow(2, 0))
	assert.Equal(t, int64(2), pow(2, 1))
	assert.Equal(t, int64(1024), pow(2, 10))
	assert.Equal(t, int64(1)<<62, pow(2, 62))
	assert.Equal(t, int64(math.MaxInt64), pow(2, 63))
	assert.Equal(t, int64(math.MaxInt64), pow(2, 10000))
	assert.Equal(t, int64(243), pow(3, 5))
	assert.Equal(t, int64(0), pow(0, 5))
}

func TestMulSat(t *testing.T) {
	assert.Equal(t, int64(0), mulSat(0, math.MaxInt64))
	assert.Equal(t, int64(6), mulSat(2, 3))
	assert.Equal(t, int64(math.MaxInt64), mulSat(math.MaxInt64, 2))
	assert.Equal(t, int64(math.MaxInt64), mulSat(1<<32, 1<<32))
}
