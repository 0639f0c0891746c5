// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exq

// bufferStrategy stores elements in a Buffer and serves batches from its
// front. The push function fixes the ordering: PushBack gives FIFO,
// PushFront gives LIFO.
type bufferStrategy[T any] struct {
	push func(Buffer[T], T) Buffer[T]
}

// Unbounded returns a FIFO strategy that accepts every element.
// A Get with selector n pops up to n elements, fewer if fewer are buffered.
func Unbounded[T any]() Strategy[T, []T, Buffer[T], int] {
	return bufferStrategy[T]{push: Buffer[T].PushBack}
}

// UnboundedLIFO returns a LIFO strategy that accepts every element.
// Elements are delivered newest first.
func UnboundedLIFO[T any]() Strategy[T, []T, Buffer[T], int] {
	return bufferStrategy[T]{push: Buffer[T].PushFront}
}

func (bufferStrategy[T]) Initial() Buffer[T] {
	return Buffer[T]{}
}

func (bufferStrategy[T]) Accepts(T, Buffer[T]) bool {
	return true
}

func (st bufferStrategy[T]) Publish(v T, b Buffer[T]) Buffer[T] {
	return st.push(b, v)
}

func (bufferStrategy[T]) Get(n int, b Buffer[T]) (Buffer[T], []T, bool) {
	if b.IsEmpty() {
		return b, nil, false
	}
	out, rest := b.Take(batchSize(n))
	return rest, out, true
}

func (bufferStrategy[T]) Empty(b Buffer[T]) bool {
	return b.IsEmpty()
}

func (bufferStrategy[T]) Subscribe(_ int, b Buffer[T]) (Buffer[T], bool) {
	return b, true
}

func (bufferStrategy[T]) Unsubscribe(_ int, b Buffer[T]) Buffer[T] {
	return b
}

// circularStrategy overwrites the oldest element instead of rejecting.
type circularStrategy[T any] struct {
	bufferStrategy[T]
	maxSize int
}

// CircularBuffer returns a FIFO strategy holding at most maxSize elements.
// Publishing into a full buffer drops the oldest element first, so
// publishers never block and never get rejected.
//
// Panics if maxSize < 1.
func CircularBuffer[T any](maxSize int) Strategy[T, []T, Buffer[T], int] {
	if maxSize < 1 {
		panic("exq: circular buffer size must be >= 1")
	}
	return circularStrategy[T]{bufferStrategy: bufferStrategy[T]{push: Buffer[T].PushBack}, maxSize: maxSize}
}

func (st circularStrategy[T]) Publish(v T, b Buffer[T]) Buffer[T] {
	if b.Len() >= st.maxSize {
		b = b.DropFront(b.Len() - st.maxSize + 1)
	}
	return b.PushBack(v)
}

// boundedStrategy caps the size of an inner strategy's state.
type boundedStrategy[I, O, S, Sel any] struct {
	Strategy[I, O, S, Sel]
	size    func(S) int
	maxSize int
}

// Bounded wraps inner so that Accepts fails while size(state) >= maxSize.
// All other behavior is inner's.
//
// Panics if maxSize < 1.
func Bounded[I, O, S, Sel any](inner Strategy[I, O, S, Sel], size func(S) int, maxSize int) Strategy[I, O, S, Sel] {
	if maxSize < 1 {
		panic("exq: bounded size must be >= 1")
	}
	return boundedStrategy[I, O, S, Sel]{Strategy: inner, size: size, maxSize: maxSize}
}

func (st boundedStrategy[I, O, S, Sel]) Accepts(i I, s S) bool {
	return st.size(s) < st.maxSize && st.Strategy.Accepts(i, s)
}

// fairStrategy clamps batch requests before they reach the inner strategy.
type fairStrategy[I, O, S any] struct {
	Strategy[I, O, S, int]
	fairSize int
}

// Fair wraps inner so that no Get takes more than fairSize elements at
// once, whatever the consumer asked for. Consumers waiting in line are
// then served in turn instead of one of them draining the whole state.
//
// Panics if fairSize < 1.
func Fair[I, O, S any](inner Strategy[I, O, S, int], fairSize int) Strategy[I, O, S, int] {
	if fairSize < 1 {
		panic("exq: fair size must be >= 1")
	}
	return fairStrategy[I, O, S]{Strategy: inner, fairSize: fairSize}
}

func (st fairStrategy[I, O, S]) Get(n int, s S) (S, O, bool) {
	return st.Strategy.Get(min(batchSize(n), st.fairSize), s)
}

func (st fairStrategy[I, O, S]) Subscribe(n int, s S) (S, bool) {
	return st.Strategy.Subscribe(min(batchSize(n), st.fairSize), s)
}

func (st fairStrategy[I, O, S]) Unsubscribe(n int, s S) S {
	return st.Strategy.Unsubscribe(min(batchSize(n), st.fairSize), s)
}
