// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecision(t *testing.T) {
	t.Run("GiveUp", func(t *testing.T) {
		delay, retry := GiveUp.Retry()
		assert.False(t, retry)
		assert.Equal(t, time.Duration(0), delay)
		assert.Equal(t, "give up", GiveUp.String())
		assert.Equal(t, GiveUp, Decision{})
	})
	t.Run("RetryAfter", func(t *testing.T) {
		delay, retry := RetryAfter(time.Second).Retry()
		assert.True(t, retry)
		assert.Equal(t, time.Second, delay)
		assert.Equal(t, "retry after 1s", RetryAfter(time.Second).String())
	})
	t.Run("RetryAfter negative", func(t *testing.T) {
		delay, retry := RetryAfter(-time.Second).Retry()
		assert.True(t, retry)
		assert.Equal(t, time.Duration(0), delay)
	})
}

func TestConstant(t *testing.T) {
	assert.PanicsWithValue(t, "retrier/policy: negative delay", func() { Constant(-1) })
	p := Constant(250 * time.Millisecond)
	for i := uint(0); i < 10; i++ {
		f := Failure{Index: i, Err: errors.New("x")}
		assert.Equal(t, RetryAfter(250*time.Millisecond), p.ShouldRetry(f))
		assert.Equal(t, 250*time.Millisecond, p.Delay(f))
		assert.Equal(t, p, p.Next(f, 250*time.Millisecond))
	}
}

func TestDefault(t *testing.T) {
	p := Default()
	for i := uint(0); i < 20; i++ {
		delay, retry := p.ShouldRetry(Failure{Index: i}).Retry()
		assert.True(t, retry)
		assert.GreaterOrEqual(t, delay, time.Duration(0))
		assert.LessOrEqual(t, delay, DefaultMaxDelay)
		p = p.Next(Failure{Index: i}, delay)
	}
}
