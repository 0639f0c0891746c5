// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exq

import (
	"context"
	"fmt"
	"iter"

	"code.hybscloud.com/atomix"
)

// InspectableQueue is a [Queue] whose head element and size can be
// observed without consuming anything.
type InspectableQueue[T any] struct {
	*Queue[T]
	in inspector[T]
}

// inspector is the state-independent side of an inspectable exchange.
type inspector[T any] interface {
	token() Token
	subscribe(t Token) bool
	unsubscribe(t Token)
	peek(ctx context.Context) (T, error)
	sizes(ctx context.Context) iter.Seq2[int, error]
	getSize() int
}

// NewInspectableQueue creates an inspectable queue over inner.
// head projects the element the next dequeue would return from a state,
// and size projects the number of buffered elements.
func NewInspectableQueue[T, S any](inner Strategy[T, []T, S, int], head func(S) (T, bool), size func(S) int) *InspectableQueue[T] {
	x := &inspection[T, S]{
		ex:   NewExchange(Inspectable(inner)),
		head: head,
		size: size,
	}
	return &InspectableQueue[T]{Queue: &Queue[T]{ps: x}, in: x}
}

// Peek blocks until the queue holds an element and returns it without
// removing it.
func (q *InspectableQueue[T]) Peek(ctx context.Context) (T, error) {
	return q.in.peek(ctx)
}

// Sizes returns an infinite sequence of queue sizes: the current size
// first, then the new size after every state change. Each ranging over it
// registers a fresh observer, released when ranging stops.
func (q *InspectableQueue[T]) Sizes(ctx context.Context) iter.Seq2[int, error] {
	return q.in.sizes(ctx)
}

// GetSize returns the current number of buffered elements.
// It reads the committed state and never blocks or wakes anyone.
func (q *InspectableQueue[T]) GetSize() int {
	return q.in.getSize()
}

// NewToken returns a token not used by any other observer of q.
func (q *InspectableQueue[T]) NewToken() Token {
	return q.in.token()
}

// Subscribe registers t as an observer.
func (q *InspectableQueue[T]) Subscribe(t Token) bool {
	return q.in.subscribe(t)
}

// Unsubscribe releases t. Releasing twice is harmless.
func (q *InspectableQueue[T]) Unsubscribe(t Token) {
	q.in.unsubscribe(t)
}

// inspection adapts an inspectable exchange to PubSub for the embedded
// Queue and implements the observers on top of snapshot probes.
type inspection[T, S any] struct {
	ex     *Exchange[T, Inspected[S, []T], InspectState[S], Probe[int]]
	head   func(S) (T, bool)
	size   func(S) int
	tokens atomix.Uint64
}

func (x *inspection[T, S]) Publish(ctx context.Context, v T) error {
	return x.ex.Publish(ctx, v)
}

func (x *inspection[T, S]) TryPublish(v T) bool {
	return x.ex.TryPublish(v)
}

func (x *inspection[T, S]) Get(ctx context.Context, n int) ([]T, error) {
	out, err := x.ex.Get(ctx, Request(n))
	if err != nil {
		return nil, err
	}
	batch, ok := out.Output()
	if !ok {
		return nil, fmt.Errorf("%w: snapshot delivered for a dequeue", ErrContractViolation)
	}
	return batch, nil
}

func (x *inspection[T, S]) TryGet(n int) ([]T, bool) {
	out, ok := x.ex.TryGet(Request(n))
	if !ok {
		return nil, false
	}
	// A snapshot here yields an empty batch, which the caller reports as
	// a contract violation.
	batch, _ := out.Output()
	return batch, true
}

func (x *inspection[T, S]) Subscribe(n int) bool {
	return x.ex.Subscribe(Request(n))
}

func (x *inspection[T, S]) Unsubscribe(n int) {
	x.ex.Unsubscribe(Request(n))
}

func (x *inspection[T, S]) Stats() Stats {
	return x.ex.Stats()
}

func (x *inspection[T, S]) token() Token {
	return Token(x.tokens.AddAcqRel(1))
}

func (x *inspection[T, S]) subscribe(t Token) bool {
	return x.ex.Subscribe(Observe[int](t))
}

func (x *inspection[T, S]) unsubscribe(t Token) {
	x.ex.Unsubscribe(Observe[int](t))
}

// observe waits for the next state t has not seen yet.
func (x *inspection[T, S]) observe(ctx context.Context, t Token) (S, error) {
	out, err := x.ex.Get(ctx, Observe[int](t))
	if err != nil {
		var zero S
		return zero, err
	}
	s, ok := out.Snapshot()
	if !ok {
		return s, fmt.Errorf("%w: batch delivered for a snapshot", ErrContractViolation)
	}
	return s, nil
}

func (x *inspection[T, S]) peek(ctx context.Context) (T, error) {
	t := x.token()
	x.subscribe(t)
	defer x.unsubscribe(t)
	for {
		s, err := x.observe(ctx, t)
		if err != nil {
			var zero T
			return zero, err
		}
		if v, ok := x.head(s); ok {
			return v, nil
		}
	}
}

func (x *inspection[T, S]) sizes(ctx context.Context) iter.Seq2[int, error] {
	return func(yield func(int, error) bool) {
		t := x.token()
		x.subscribe(t)
		defer x.unsubscribe(t)
		for {
			s, err := x.observe(ctx, t)
			if err != nil {
				yield(0, err)
				return
			}
			if !yield(x.size(s), nil) {
				return
			}
		}
	}
}

func (x *inspection[T, S]) getSize() int {
	return x.size(x.ex.State().Inner())
}
