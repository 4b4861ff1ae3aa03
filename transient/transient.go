// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"errors"
	"syscall"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// A Category is the transience category of a particular error, as
// reported by function Categorize().
//
// The category Not means the error is not transient, or in other words
// that retrying the job after encountering this error is very unlikely
// to succeed.
//
// All other categories indicate the error is transient, or in other
// words that a retry after encountering this error has some prospect
// of success.
type Category int

const (
	// Not indicates any non-transient error.
	Not Category = iota
	// Timeout indicates a client-side timeout, including an attempt
	// that ran past its context deadline. The remote side may be going
	// through a temporary period of slowness, or the job may succeed on
	// a future attempt given a longer timeout.
	//
	// Function Categorize() will return Timeout if the error or any of
	// its wrapped causes has a Timeout() function that reports true, or
	// if the error carries the gRPC code DeadlineExceeded.
	Timeout
	// ConnRefused indicates the remote host refused the connection, and
	// corresponds to the POSIX error code ECONNREFUSED.
	//
	// Although connection refusal may be a permanent condition, it is
	// classified as transient because it can happen while the remote
	// service is starting or restarting.
	ConnRefused
	// ConnReset indicates the remote host returned an RST packet on a
	// previously active TCP connection, and corresponds to the POSIX
	// error code ECONNRESET.
	ConnReset
	// Unavailable indicates the remote service reported itself as
	// temporarily unavailable, which for gRPC is the code Unavailable
	// or Aborted.
	Unavailable
	// Throttled indicates the remote service rejected the call because
	// a quota or rate limit was exhausted, which for gRPC is the code
	// ResourceExhausted. A retry after a suitable delay may succeed.
	Throttled
	// categorySentinel provides the total number of categories.
	categorySentinel
)

var categoryNames = []string{
	"Not",
	"Timeout",
	"ConnRefused",
	"ConnReset",
	"Unavailable",
	"Throttled",
}

// String returns the name of the category.
func (c Category) String() string {
	if c < 0 || c >= categorySentinel {
		return "Category(?)"
	}
	return categoryNames[c]
}

// Categorize returns the transience category of the given error. All
// non-nil transient errors result in a transience category other than
// Not. A nil error, and an error that is not transient, both produce
// the return value Not.
//
// In assessing transience, Categorize looks at wrapped cause errors
// contained within err, not just err itself. However, Categorize never
// checks if an error has a Temporary() function that returns true, as
// the semantics of Temporary() aren't entirely clear.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if errno == syscall.ECONNRESET {
			return ConnReset
		} else if errno == syscall.ECONNREFUSED {
			return ConnRefused
		}
	}

	var hasStatus hasGRPCStatus
	if errors.As(err, &hasStatus) {
		return categorizeCode(status.Code(hasStatus))
	}

	return Not
}

// IsTransient reports whether err falls in any category other than Not.
// It has the signature of an error predicate so it can be passed
// directly to the policy package's error-based combinators.
func IsTransient(err error) bool {
	return Categorize(err) != Not
}

func categorizeCode(code codes.Code) Category {
	switch code {
	case codes.DeadlineExceeded:
		return Timeout
	case codes.Unavailable, codes.Aborted:
		return Unavailable
	case codes.ResourceExhausted:
		return Throttled
	default:
		return Not
	}
}

type hasTimeout interface {
	Timeout() bool
}

type hasGRPCStatus interface {
	error
	GRPCStatus() *status.Status
}
