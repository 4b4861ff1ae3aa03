// Copyright 2021 The retrier Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retrier

// A HandlerGroup is a group of event handler chains which can be
// installed in a Retrier.
//
// Handlers run synchronously on the goroutine driving the execution,
// in the order the events occur, before the event is delivered to
// subscribers. A handler must not block for long, as the execution
// makes no progress while it runs.
type HandlerGroup[T any] struct {
	handlers [][]Handler[T]
}

// PushBack adds an event handler to the back of the event handler chain
// for a specific event kind.
func (g *HandlerGroup[T]) PushBack(k Kind, h Handler[T]) {
	if h == nil {
		panic("retrier: nil handler")
	}

	if g.handlers == nil {
		g.handlers = make([][]Handler[T], numKinds)
	}

	g.handlers[k] = append(g.handlers[k], h)
}

// PushBackAll adds an event handler to the back of the event handler
// chain for every event kind.
func (g *HandlerGroup[T]) PushBackAll(h Handler[T]) {
	for _, k := range Kinds() {
		g.PushBack(k, h)
	}
}

func (g *HandlerGroup[T]) run(e Event[T]) {
	if g == nil {
		return
	}
	i := int(e.Kind)
	if i < len(g.handlers) {
		run(g.handlers[i], e)
	}
}

func run[T any](chain []Handler[T], e Event[T]) {
	for _, h := range chain {
		h.Handle(e)
	}
}

// A Handler handles the occurrence of an event during an execution.
type Handler[T any] interface {
	Handle(Event[T])
}

// The HandlerFunc type is an adapter to allow the use of ordinary
// functions as event handlers. If f is a function with appropriate
// signature, then HandlerFunc(f) is a Handler that calls f.
type HandlerFunc[T any] func(Event[T])

// Handle calls f(e).
func (f HandlerFunc[T]) Handle(e Event[T]) {
	f(e)
}
