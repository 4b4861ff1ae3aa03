// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package policy provides flexible policies for deciding whether a failed
// job attempt should be retried and how long to wait before retrying.
//
// The interface Policy defines a retry policy. A Policy is an immutable
// value: after every failed attempt the engine asks the current Policy
// for a Decision, and, if the decision is to retry, asks the same Policy
// for its successor via Next. The successor is used for the following
// attempt. Stateful behaviour, such as decorrelated jitter memory, is
// thus carried from attempt to attempt without any shared mutable state.
//
// The base policies, Constant and Exponential, never give up. Give-up
// behaviour is layered on with the combinators GiveUpOn and RetryOn,
// which accept composable Criteria:
//
//	p := policy.GiveUpOn(
//		policy.Exponential(100*time.Millisecond, 5*time.Second, policy.FullJitter),
//		policy.MaxAttempts(5).Or(policy.Timeout(30*time.Second)),
//	)
//
// For declarative configuration, fill in a Config and call its Build
// method.
package policy
