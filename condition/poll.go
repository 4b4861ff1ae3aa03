// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package condition

import (
	"context"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/context/ctxhttp"
)

// A Probe evaluates a condition once. The context passed to a Probe
// expires after the poll interval.
type Probe func(ctx context.Context) bool

// Poll constructs a Source which evaluates probe immediately when
// watched, and then once every interval, sending each result that
// differs from the previous one. The source never ends on its own; its
// channel is closed when the watch context is done.
func Poll(interval time.Duration, probe Probe) Source {
	if interval <= 0 {
		panic("retrier/condition: non-positive interval")
	}
	if probe == nil {
		panic("retrier/condition: nil probe")
	}
	return SourceFunc(func(ctx context.Context) <-chan bool {
		out := make(chan bool)
		go poll(ctx, interval, probe, out)
		return out
	})
}

func poll(ctx context.Context, interval time.Duration, probe Probe, out chan<- bool) {
	defer close(out)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	var last, sent bool
	for {
		probeCtx, cancel := context.WithTimeout(ctx, interval)
		b := probe(probeCtx)
		cancel()
		if ctx.Err() != nil {
			return
		}
		if !sent || b != last {
			select {
			case out <- b:
				last, sent = b, true
			case <-ctx.Done():
				return
			}
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// Reachable constructs a Source which polls url with an HTTP GET
// request every interval. The condition is true while the endpoint
// answers with a status code below 500.
//
// If client is nil, http.DefaultClient is used.
func Reachable(client *http.Client, url string, interval time.Duration) Source {
	return Poll(interval, func(ctx context.Context) bool {
		resp, err := ctxhttp.Get(ctx, client, url)
		if err != nil {
			return false
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		return resp.StatusCode < http.StatusInternalServerError
	})
}
