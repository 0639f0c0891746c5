// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exq

// Handoff is the state of a rendezvous: at most one pending element and a
// flag recording that a consumer is waiting for it.
type Handoff[T any] struct {
	pending T
	full    bool
	waiting bool
}

// Pending returns the element awaiting pickup, if any.
func (h Handoff[T]) Pending() (T, bool) {
	return h.pending, h.full
}

// Waiting reports whether a consumer has announced itself.
func (h Handoff[T]) Waiting() bool {
	return h.waiting
}

// Len returns 1 while an element is pending and 0 otherwise.
func (h Handoff[T]) Len() int {
	if h.full {
		return 1
	}
	return 0
}

type synchronousStrategy[T any] struct{}

// Synchronous returns a rendezvous strategy with no buffering.
//
// A publish is accepted only when a consumer is waiting and no element is
// pending. An empty slot alone is not enough: a consumer announces itself
// through a Get that could not be served, which the exchange records when
// that consumer blocks. Get then takes the pending element and clears the
// waiting flag.
func Synchronous[T any]() Strategy[T, []T, Handoff[T], int] {
	return synchronousStrategy[T]{}
}

func (synchronousStrategy[T]) Initial() Handoff[T] {
	return Handoff[T]{}
}

func (synchronousStrategy[T]) Accepts(_ T, h Handoff[T]) bool {
	return h.waiting && !h.full
}

func (synchronousStrategy[T]) Publish(v T, h Handoff[T]) Handoff[T] {
	return Handoff[T]{pending: v, full: true, waiting: h.waiting}
}

func (synchronousStrategy[T]) Get(_ int, h Handoff[T]) (Handoff[T], []T, bool) {
	if !h.full {
		return Handoff[T]{waiting: true}, nil, false
	}
	return Handoff[T]{}, []T{h.pending}, true
}

func (synchronousStrategy[T]) Empty(h Handoff[T]) bool {
	return !h.full
}

func (synchronousStrategy[T]) Subscribe(_ int, h Handoff[T]) (Handoff[T], bool) {
	return h, false
}

func (synchronousStrategy[T]) Unsubscribe(_ int, h Handoff[T]) Handoff[T] {
	return Handoff[T]{pending: h.pending, full: h.full}
}
