// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package policy

import (
	"fmt"
	"time"
)

// A Kind names a base policy in a Config.
type Kind string

const (
	KindConstant    Kind = "constant"
	KindExponential Kind = "exponential"
)

// Config is a declarative description of a policy, suitable for
// loading from JSON. Its zero value describes Default.
//
// Build assembles the described policy. The base policy is wrapped, from
// the inside out, with FinalError give-up criteria, then the RetryOn
// predicate, then the Timeout and MaxAttempts give-up criteria. Thus
// RetryOn may override FinalError, but never the hard limits.
type Config struct {
	Kind Kind `json:"kind"`

	// Delay is used by KindConstant.
	Delay time.Duration `json:"delay"`

	// TimeSlot, MaxDelay, Jitter and GrowthFactor are used by
	// KindExponential.
	TimeSlot     time.Duration `json:"time_slot"`
	MaxDelay     time.Duration `json:"max_delay"`
	Jitter       JitterKind    `json:"jitter"`
	GrowthFactor float64       `json:"growth_factor,omitempty"`

	// MaxAttempts is the maximum number of attempts per trial. Zero
	// means unlimited.
	MaxAttempts uint `json:"max_attempts,omitempty"`
	// Timeout is the maximum trial duration. Zero means unlimited.
	Timeout time.Duration `json:"timeout,omitempty"`

	// FinalError, if not nil, gives up on matching errors.
	FinalError ErrorPredicate `json:"-"`
	// RetryOn, if not nil, forces a retry on matching errors.
	RetryOn ErrorPredicate `json:"-"`
}

// A ConfigError reports an invalid Config field.
type ConfigError struct {
	Field string
	Value string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("retrier/policy: invalid %s: %q", e.Field, e.Value)
}

// Normalize returns a copy of c with defaults filled in, or an error if
// c is invalid.
func (c Config) Normalize() (Config, error) {
	n := c
	switch n.Kind {
	case "":
		n.Kind = KindExponential
	case KindConstant, KindExponential:
	default:
		return Config{}, &ConfigError{Field: "kind", Value: string(n.Kind)}
	}

	if n.Kind == KindConstant {
		if n.Delay < 0 {
			return Config{}, &ConfigError{Field: "delay", Value: n.Delay.String()}
		}
	} else {
		if n.TimeSlot == 0 {
			n.TimeSlot = DefaultTimeSlot
		}
		if n.TimeSlot < 0 {
			return Config{}, &ConfigError{Field: "time_slot", Value: n.TimeSlot.String()}
		}
		if n.MaxDelay == 0 {
			n.MaxDelay = DefaultMaxDelay
		}
		if n.MaxDelay < n.TimeSlot {
			n.MaxDelay = n.TimeSlot
		}
		switch n.Jitter {
		case "":
			n.Jitter = JitterFull
		case JitterNone, JitterFull:
		case JitterDecorrelated:
			if n.GrowthFactor == 0 {
				n.GrowthFactor = DefaultGrowthFactor
			}
			if n.GrowthFactor < 0 {
				return Config{}, &ConfigError{Field: "growth_factor", Value: fmt.Sprint(n.GrowthFactor)}
			}
		default:
			return Config{}, &ConfigError{Field: "jitter", Value: string(n.Jitter)}
		}
	}

	if n.Timeout < 0 {
		return Config{}, &ConfigError{Field: "timeout", Value: n.Timeout.String()}
	}

	return n, nil
}

// Build assembles the policy described by c.
func (c Config) Build() (Policy, error) {
	n, err := c.Normalize()
	if err != nil {
		return nil, err
	}

	var p Policy
	if n.Kind == KindConstant {
		p = Constant(n.Delay)
	} else {
		p = Exponential(n.TimeSlot, n.MaxDelay, Jitter{Kind: n.Jitter, GrowthFactor: n.GrowthFactor})
	}

	if n.FinalError != nil {
		p = GiveUpOnErrors(p, n.FinalError)
	}
	if n.RetryOn != nil {
		p = RetryOnErrors(p, n.RetryOn)
	}
	if n.Timeout > 0 {
		p = GiveUpAfterTimeout(p, n.Timeout)
	}
	if n.MaxAttempts > 0 {
		p = GiveUpAfter(p, n.MaxAttempts)
	}

	return p, nil
}
