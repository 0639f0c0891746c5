// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exq

// Strategy is the policy an [Exchange] applies to its shared state.
//
// A Strategy holds no mutable state of its own. All methods must be pure
// functions of their arguments: the exchange evaluates them speculatively
// and may discard a result when a concurrent transition commits first. A
// state value S must never be modified in place; return a new value
// instead.
//
// Type parameters:
//   - I: published element
//   - O: output of a successful Get (typically a batch)
//   - S: shared state
//   - Sel: consumer request shape (typically a maximum batch size)
type Strategy[I, O, S, Sel any] interface {
	// Initial returns the state of a fresh exchange.
	Initial() S

	// Accepts reports whether i can be published into s now.
	// Must return false while s has no room.
	Accepts(i I, s S) bool

	// Publish incorporates i into s. Called only after Accepts held;
	// must not drop i silently.
	Publish(i I, s S) S

	// Get serves a request shaped by sel. Returns the new state and the
	// output with ok=true when the request can be satisfied. Otherwise
	// ok is false and the returned state is s, or a state recording that
	// a consumer is waiting.
	Get(sel Sel, s S) (next S, out O, ok bool)

	// Empty reports whether no Get can succeed without another Publish.
	Empty(s S) bool

	// Subscribe registers standing interest described by sel.
	Subscribe(sel Sel, s S) (S, bool)

	// Unsubscribe drops interest described by sel. Must be idempotent.
	Unsubscribe(sel Sel, s S) S
}

// Option is an explicitly present or absent value.
// Terminated queues use the absent value as the end-of-stream sentinel.
type Option[T any] struct {
	v  T
	ok bool
}

// Some returns a present Option holding v.
func Some[T any](v T) Option[T] {
	return Option[T]{v: v, ok: true}
}

// None returns the absent Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) {
	return o.v, o.ok
}

// IsSome reports whether a value is present.
func (o Option[T]) IsSome() bool {
	return o.ok
}

// IsNone reports whether the value is absent.
func (o Option[T]) IsNone() bool {
	return !o.ok
}

// batchSize clamps a requested batch size to at least one element.
func batchSize(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
