// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCriteria_And(t *testing.T) {
	var calls []string
	c := func(name string, result bool) Criteria {
		return func(_ Failure, _ time.Duration) bool {
			calls = append(calls, name)
			return result
		}
	}
	testCases := []struct {
		a, b  bool
		want  bool
		calls []string
	}{
		{false, false, false, []string{"a"}},
		{false, true, false, []string{"a"}},
		{true, false, false, []string{"a", "b"}},
		{true, true, true, []string{"a", "b"}},
	}
	for _, testCase := range testCases {
		t.Run(fmt.Sprintf("%t&&%t", testCase.a, testCase.b), func(t *testing.T) {
			calls = nil
			assert.Equal(t, testCase.want, c("a", testCase.a).And(c("b", testCase.b))(Failure{}, 0))
			assert.Equal(t, testCase.calls, calls)
		})
	}
}

func TestCriteria_Or(t *testing.T) {
	var calls []string
	c := func(name string, result bool) Criteria {
		return func(_ Failure, _ time.Duration) bool {
			calls = append(calls, name)
			return result
		}
	}
	testCases := []struct {
		a, b  bool
		want  bool
		calls []string
	}{
		{false, false, false, []string{"a", "b"}},
		{false, true, true, []string{"a", "b"}},
		{true, false, true, []string{"a"}},
		{true, true, true, []string{"a"}},
	}
	for _, testCase := range testCases {
		t.Run(fmt.Sprintf("%t||%t", testCase.a, testCase.b), func(t *testing.T) {
			calls = nil
			assert.Equal(t, testCase.want, c("a", testCase.a).Or(c("b", testCase.b))(Failure{}, 0))
			assert.Equal(t, testCase.calls, calls)
		})
	}
}

func TestMaxAttempts(t *testing.T) {
	testCases := []struct {
		n     uint
		index uint
		want  bool
	}{
		{0, 0, true},
		{1, 0, true},
		{2, 0, false},
		{2, 1, true},
		{2, 2, true},
		{5, 3, false},
		{5, 4, true},
	}
	for _, testCase := range testCases {
		t.Run(fmt.Sprintf("n=%d,index=%d", testCase.n, testCase.index), func(t *testing.T) {
			c := MaxAttempts(testCase.n)
			assert.Equal(t, testCase.want, c(Failure{Index: testCase.index}, time.Hour))
		})
	}
}

func TestTimeout(t *testing.T) {
	start := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
	current := start.Add(10 * time.Second)
	now = func() time.Time { return current }
	defer func() { now = time.Now }()

	c := Timeout(30 * time.Second)
	f := Failure{TrialStart: start}
	assert.False(t, c(f, 0))
	assert.False(t, c(f, 19*time.Second))
	assert.True(t, c(f, 20*time.Second), "next attempt exactly at deadline")
	assert.True(t, c(f, 21*time.Second))

	current = start.Add(time.Minute)
	assert.True(t, c(f, 0))
}

func TestFinalError(t *testing.T) {
	assert.PanicsWithValue(t, "retrier/policy: nil error predicate", func() { FinalError(nil) })

	fatal := errors.New("fatal")
	c := FinalError(Is(fatal))
	assert.True(t, c(Failure{Err: fatal}, 0))
	assert.True(t, c(Failure{Err: fmt.Errorf("wrapped: %w", fatal)}, 0))
	assert.False(t, c(Failure{Err: errors.New("other")}, 0))
	assert.False(t, c(Failure{}, 0))
}
