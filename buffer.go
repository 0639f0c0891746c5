// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exq

// Buffer is an immutable sequence of elements used as strategy state.
//
// Every method returns a new Buffer and leaves the receiver untouched, so a
// state snapshot can be shared by concurrent transitions and discarded when
// a compare-and-swap loses. Internally it is a banker's queue: a front list
// popped in order and a reversed back list appended to, giving amortized
// O(1) PushBack, PushFront and PopFront.
//
// Invariant: front is nil only when the buffer is empty.
type Buffer[T any] struct {
	front *cell[T]
	back  *cell[T]
	n     int
}

type cell[T any] struct {
	v    T
	next *cell[T]
}

// Len returns the number of elements.
func (b Buffer[T]) Len() int {
	return b.n
}

// IsEmpty reports whether the buffer holds no elements.
func (b Buffer[T]) IsEmpty() bool {
	return b.n == 0
}

// Front returns the element PopFront would return.
func (b Buffer[T]) Front() (T, bool) {
	if b.front == nil {
		var zero T
		return zero, false
	}
	return b.front.v, true
}

// PushBack appends v after the last element.
func (b Buffer[T]) PushBack(v T) Buffer[T] {
	if b.front == nil {
		return Buffer[T]{front: &cell[T]{v: v}, n: 1}
	}
	return Buffer[T]{front: b.front, back: &cell[T]{v: v, next: b.back}, n: b.n + 1}
}

// PushFront prepends v before the first element.
func (b Buffer[T]) PushFront(v T) Buffer[T] {
	return Buffer[T]{front: &cell[T]{v: v, next: b.front}, back: b.back, n: b.n + 1}
}

// PopFront removes the first element.
func (b Buffer[T]) PopFront() (T, Buffer[T], bool) {
	if b.front == nil {
		var zero T
		return zero, b, false
	}
	v := b.front.v
	rest := Buffer[T]{front: b.front.next, back: b.back, n: b.n - 1}
	if rest.front == nil {
		rest.front, rest.back = reverse(rest.back), nil
	}
	return v, rest, true
}

// DropFront removes up to n elements from the front.
func (b Buffer[T]) DropFront(n int) Buffer[T] {
	for ; n > 0 && b.front != nil; n-- {
		_, b, _ = b.PopFront()
	}
	return b
}

// Take removes up to n elements from the front and returns them in order.
// The returned slice is freshly allocated and owned by the caller.
func (b Buffer[T]) Take(n int) ([]T, Buffer[T]) {
	n = min(n, b.n)
	out := make([]T, 0, n)
	for range n {
		var v T
		v, b, _ = b.PopFront()
		out = append(out, v)
	}
	return out, b
}

// Values returns all elements in order without consuming them.
func (b Buffer[T]) Values() []T {
	out := make([]T, 0, b.n)
	for c := b.front; c != nil; c = c.next {
		out = append(out, c.v)
	}
	tail := len(out)
	for c := b.back; c != nil; c = c.next {
		out = append(out, c.v)
	}
	for i, j := tail, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func reverse[T any](c *cell[T]) *cell[T] {
	var r *cell[T]
	for ; c != nil; c = c.next {
		r = &cell[T]{v: c.v, next: r}
	}
	return r
}
