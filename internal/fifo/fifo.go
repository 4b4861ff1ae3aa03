// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package fifo provides an unbounded first-in first-out pipe which
// never blocks its writer.
package fifo

import "sync"

// A Pipe is an unbounded queue with a channel on the reading end.
//
// Push never blocks. Values are delivered on Out in the order they were
// pushed. A pump goroutine moves values from the queue to Out; it exits
// once the pipe is closed and drained, or as soon as the pipe is
// stopped.
type Pipe[E any] struct {
	lock    sync.Mutex
	queue   []E
	closed  bool
	stopped bool

	wake chan struct{}
	stop chan struct{}
	out  chan E
}

// New creates a pipe and starts its pump goroutine.
func New[E any]() *Pipe[E] {
	p := &Pipe[E]{
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
		out:  make(chan E),
	}
	go p.pump()
	return p
}

// Out returns the reading end of the pipe. It is closed after Close
// once every pushed value has been read, or promptly after Stop.
func (p *Pipe[E]) Out() <-chan E {
	return p.out
}

// Push appends e to the pipe. It returns false, discarding e, if the
// pipe is already closed or stopped.
func (p *Pipe[E]) Push(e E) bool {
	p.lock.Lock()
	if p.closed || p.stopped {
		p.lock.Unlock()
		return false
	}
	p.queue = append(p.queue, e)
	p.lock.Unlock()
	p.signal()
	return true
}

// Close marks the end of input. Values already pushed are still
// delivered. Close is idempotent.
func (p *Pipe[E]) Close() {
	p.lock.Lock()
	p.closed = true
	p.lock.Unlock()
	p.signal()
}

// Stop discards any undelivered values and closes Out without waiting
// for a reader. Stop is idempotent and may be called after Close.
func (p *Pipe[E]) Stop() {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	p.queue = nil
	close(p.stop)
}

// Len returns the number of values waiting to be delivered.
func (p *Pipe[E]) Len() int {
	p.lock.Lock()
	defer p.lock.Unlock()
	return len(p.queue)
}

func (p *Pipe[E]) signal() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *Pipe[E]) pop() (e E, ok bool, more bool) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.stopped {
		return
	}
	if len(p.queue) > 0 {
		e = p.queue[0]
		var zero E
		p.queue[0] = zero
		p.queue = p.queue[1:]
		return e, true, true
	}
	return e, false, !p.closed
}

func (p *Pipe[E]) pump() {
	defer close(p.out)
	for {
		e, ok, more := p.pop()
		if !ok {
			if !more {
				return
			}
			select {
			case <-p.wake:
			case <-p.stop:
				return
			}
			continue
		}
		select {
		case p.out <- e:
		case <-p.stop:
			return
		}
	}
}
