// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package condition

import (
	"context"
	"sync"

	"github.com/gogama/retrier/internal/fifo"
)

// A Source is a push-based stream of boolean values.
//
// Watch returns a channel which receives the source's values in order.
// The channel is closed when the source ends, meaning no more values
// will ever arrive, or when ctx is done. No value received on the
// channel means the condition is unknown, which a gated retrier treats
// as false.
type Source interface {
	Watch(ctx context.Context) <-chan bool
}

// The SourceFunc type is an adapter to allow the use of ordinary
// functions as condition sources.
type SourceFunc func(ctx context.Context) <-chan bool

// Watch calls f(ctx).
func (f SourceFunc) Watch(ctx context.Context) <-chan bool {
	return f(ctx)
}

// A Value is a settable boolean condition which multicasts every
// change to all of its watchers. The zero value is not usable; create
// values with NewValue.
//
// A new watcher first receives the current value, if one has been set,
// followed by every later value. A Value never blocks on a slow
// watcher.
type Value struct {
	lock     sync.Mutex
	current  bool
	has      bool
	closed   bool
	watchers map[*fifo.Pipe[bool]]struct{}
	done     chan struct{}
}

// NewValue creates a Value. If initial is provided, its first element
// is the Value's current value; otherwise the Value has no value until
// Set is called.
func NewValue(initial ...bool) *Value {
	v := &Value{
		watchers: make(map[*fifo.Pipe[bool]]struct{}),
		done:     make(chan struct{}),
	}
	if len(initial) > 0 {
		v.current = initial[0]
		v.has = true
	}
	return v
}

// Set changes the current value and sends it to every watcher. Set
// has no effect after Close.
func (v *Value) Set(b bool) {
	v.lock.Lock()
	defer v.lock.Unlock()
	if v.closed {
		return
	}
	v.current = b
	v.has = true
	for p := range v.watchers {
		p.Push(b)
	}
}

// Get returns the current value and whether one has been set.
func (v *Value) Get() (value bool, ok bool) {
	v.lock.Lock()
	defer v.lock.Unlock()
	return v.current, v.has
}

// Close ends the Value. Every watcher channel is closed once its
// pending values are delivered. Close is idempotent.
func (v *Value) Close() {
	v.lock.Lock()
	defer v.lock.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	for p := range v.watchers {
		p.Close()
	}
	v.watchers = nil
	close(v.done)
}

// Watch implements Source.
func (v *Value) Watch(ctx context.Context) <-chan bool {
	p := fifo.New[bool]()
	v.lock.Lock()
	if v.has {
		p.Push(v.current)
	}
	if v.closed {
		v.lock.Unlock()
		p.Close()
		return p.Out()
	}
	v.watchers[p] = struct{}{}
	v.lock.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			v.lock.Lock()
			delete(v.watchers, p)
			v.lock.Unlock()
			p.Stop()
		case <-v.done:
		}
	}()

	return p.Out()
}

// Chan adapts a channel into a Source. The source ends when c is
// closed.
//
// Values received from c are consumed, so a Chan source should have
// only one watcher at a time.
func Chan(c <-chan bool) Source {
	return SourceFunc(func(ctx context.Context) <-chan bool {
		out := make(chan bool)
		go func() {
			defer close(out)
			for {
				select {
				case b, ok := <-c:
					if !ok {
						return
					}
					select {
					case out <- b:
					case <-ctx.Done():
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}()
		return out
	})
}
