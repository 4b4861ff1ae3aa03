// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies job errors as transient or
// non-transient. This is handy for writing retry policies, as in
//
//	p := policy.RetryOnErrors(policy.GiveUpAfter(policy.Default(), 3), transient.IsTransient)
//
// and for other purposes such as bucketing error metrics.
//
// Besides network errors from the standard library, Categorize
// understands the status codes carried by gRPC errors.
package transient
