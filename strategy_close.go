// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exq

// ClosePolicy selects what happens to buffered elements when the
// end-of-stream sentinel is published.
type ClosePolicy uint8

const (
	// DrainFirst keeps delivering buffered elements after the sentinel and
	// reports termination once they are exhausted.
	DrainFirst ClosePolicy = iota
	// CloseNow discards buffered elements, releases blocked publishers and
	// reports termination from the next Get on.
	CloseNow
)

// String returns the policy name.
func (p ClosePolicy) String() string {
	switch p {
	case DrainFirst:
		return "drain-first"
	case CloseNow:
		return "close-now"
	default:
		return "unknown"
	}
}

// Closable is the state of a sentinel-terminated strategy: the inner
// strategy's state plus the closed flag.
type Closable[S any] struct {
	inner  S
	closed bool
}

// Inner returns the wrapped strategy's state.
func (c Closable[S]) Inner() S {
	return c.inner
}

// Closed reports whether the sentinel has been published.
func (c Closable[S]) Closed() bool {
	return c.closed
}

type closeStrategy[I, O, S, Sel any] struct {
	inner  Strategy[I, O, S, Sel]
	policy ClosePolicy
}

// Terminated wraps inner so that publishing None closes the stream.
//
// Element publishes arrive as Some(i); outputs are Some(o) until the
// stream is closed and exhausted, after which every Get yields None. The
// sentinel is accepted even when inner is full. After close, element
// publishes are accepted and discarded, so publishers never block on a
// closed stream.
func Terminated[I, O, S, Sel any](inner Strategy[I, O, S, Sel], policy ClosePolicy) Strategy[Option[I], Option[O], Closable[S], Sel] {
	if policy != DrainFirst && policy != CloseNow {
		panic("exq: unknown close policy")
	}
	return closeStrategy[I, O, S, Sel]{inner: inner, policy: policy}
}

// CloseDrainFirst is Terminated(inner, DrainFirst).
func CloseDrainFirst[I, O, S, Sel any](inner Strategy[I, O, S, Sel]) Strategy[Option[I], Option[O], Closable[S], Sel] {
	return Terminated(inner, DrainFirst)
}

// CloseImmediately is Terminated(inner, CloseNow).
func CloseImmediately[I, O, S, Sel any](inner Strategy[I, O, S, Sel]) Strategy[Option[I], Option[O], Closable[S], Sel] {
	return Terminated(inner, CloseNow)
}

func (st closeStrategy[I, O, S, Sel]) Initial() Closable[S] {
	return Closable[S]{inner: st.inner.Initial()}
}

func (st closeStrategy[I, O, S, Sel]) Accepts(i Option[I], c Closable[S]) bool {
	v, ok := i.Get()
	if !ok || c.closed {
		return true
	}
	return st.inner.Accepts(v, c.inner)
}

func (st closeStrategy[I, O, S, Sel]) Publish(i Option[I], c Closable[S]) Closable[S] {
	if c.closed {
		return c
	}
	v, ok := i.Get()
	if !ok {
		if st.policy == CloseNow {
			return Closable[S]{inner: st.inner.Initial(), closed: true}
		}
		return Closable[S]{inner: c.inner, closed: true}
	}
	return Closable[S]{inner: st.inner.Publish(v, c.inner)}
}

func (st closeStrategy[I, O, S, Sel]) Get(sel Sel, c Closable[S]) (Closable[S], Option[O], bool) {
	if c.closed && (st.policy == CloseNow || st.inner.Empty(c.inner)) {
		return c, None[O](), true
	}
	next, out, ok := st.inner.Get(sel, c.inner)
	if !ok {
		if c.closed {
			return c, None[O](), true
		}
		return Closable[S]{inner: next}, None[O](), false
	}
	return Closable[S]{inner: next, closed: c.closed}, Some(out), true
}

func (st closeStrategy[I, O, S, Sel]) Empty(c Closable[S]) bool {
	return !c.closed && st.inner.Empty(c.inner)
}

func (st closeStrategy[I, O, S, Sel]) Subscribe(sel Sel, c Closable[S]) (Closable[S], bool) {
	if c.closed {
		return c, false
	}
	next, ok := st.inner.Subscribe(sel, c.inner)
	return Closable[S]{inner: next}, ok
}

func (st closeStrategy[I, O, S, Sel]) Unsubscribe(sel Sel, c Closable[S]) Closable[S] {
	if c.closed {
		return c
	}
	return Closable[S]{inner: st.inner.Unsubscribe(sel, c.inner)}
}
