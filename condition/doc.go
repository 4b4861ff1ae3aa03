// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package condition provides boolean signal sources which arm and
// disarm a gated retrier.
//
// A gated retrier only runs its job while the most recent value
// received from its Source is true. When the source reports false in
// the middle of an attempt, the attempt is cancelled; when it reports
// true again, a fresh trial starts.
//
// Source implementations provided here are Value, a settable value
// which can be watched by many retriers at once; Chan, which adapts a
// plain channel; Poll, which repeatedly evaluates a probe function;
// and Reachable, which polls an HTTP endpoint.
package condition
