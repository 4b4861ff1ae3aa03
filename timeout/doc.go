// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout defines flexible policies for setting a per-attempt
// timeout on each job attempt within a trial, including on retries. A
// generic interface for timeout policies is provided, Policy, along
// with several useful policy generating functions and built-in policies.
//
// The timeout is applied to the context passed to the job, so a job
// that honors its context fails the attempt with
// context.DeadlineExceeded once the timeout elapses.
package timeout
