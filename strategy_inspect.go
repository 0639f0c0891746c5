// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exq

import "slices"

// Token identifies one observer of an inspectable exchange.
// The zero Token is reserved for one-shot snapshots.
type Token uint64

// Probe is the selector of an inspectable strategy: either a request for
// a state snapshot or a request passed through to the inner strategy.
type Probe[Sel any] struct {
	sel      Sel
	token    Token
	snapshot bool
}

// Snapshot returns a probe reading the current state once, unconditionally.
func Snapshot[Sel any]() Probe[Sel] {
	return Probe[Sel]{snapshot: true}
}

// Observe returns a probe keyed by t. A Get with it succeeds once per
// observed state change: after t has seen a state, it waits until a
// publish or a successful inner Get produces a new one.
func Observe[Sel any](t Token) Probe[Sel] {
	return Probe[Sel]{token: t, snapshot: true}
}

// Request returns a probe passing sel to the inner strategy.
func Request[Sel any](sel Sel) Probe[Sel] {
	return Probe[Sel]{sel: sel}
}

// Inspected is the output of an inspectable strategy: a state snapshot or
// the inner strategy's output.
type Inspected[S, O any] struct {
	state    S
	out      O
	snapshot bool
}

// Snapshot returns the observed state when the output is a snapshot.
func (r Inspected[S, O]) Snapshot() (S, bool) {
	return r.state, r.snapshot
}

// Output returns the inner output when the output is not a snapshot.
func (r Inspected[S, O]) Output() (O, bool) {
	return r.out, !r.snapshot
}

// InspectState wraps an inner state with the tokens that have already
// seen it.
type InspectState[S any] struct {
	inner S
	seen  []Token
}

// Inner returns the wrapped strategy's state.
func (s InspectState[S]) Inner() S {
	return s.inner
}

type inspectStrategy[I, O, S, Sel any] struct {
	inner Strategy[I, O, S, Sel]
}

// Inspectable augments inner with snapshot reads.
//
// Probes built by [Snapshot] and [Observe] return the inner state without
// consuming anything; probes built by [Request] behave exactly like inner.
// Observers register with Subscribe(Observe(t)) and must release with
// Unsubscribe(Observe(t)).
func Inspectable[I, O, S, Sel any](inner Strategy[I, O, S, Sel]) Strategy[I, Inspected[S, O], InspectState[S], Probe[Sel]] {
	return inspectStrategy[I, O, S, Sel]{inner: inner}
}

func (st inspectStrategy[I, O, S, Sel]) Initial() InspectState[S] {
	return InspectState[S]{inner: st.inner.Initial()}
}

func (st inspectStrategy[I, O, S, Sel]) Accepts(i I, s InspectState[S]) bool {
	return st.inner.Accepts(i, s.inner)
}

func (st inspectStrategy[I, O, S, Sel]) Publish(i I, s InspectState[S]) InspectState[S] {
	return InspectState[S]{inner: st.inner.Publish(i, s.inner)}
}

func (st inspectStrategy[I, O, S, Sel]) Get(p Probe[Sel], s InspectState[S]) (InspectState[S], Inspected[S, O], bool) {
	if !p.snapshot {
		next, out, ok := st.inner.Get(p.sel, s.inner)
		if !ok {
			return InspectState[S]{inner: next, seen: s.seen}, Inspected[S, O]{}, false
		}
		return InspectState[S]{inner: next}, Inspected[S, O]{out: out}, true
	}
	snap := Inspected[S, O]{state: s.inner, snapshot: true}
	if p.token == 0 {
		return s, snap, true
	}
	if slices.Contains(s.seen, p.token) {
		return s, Inspected[S, O]{}, false
	}
	seen := make([]Token, len(s.seen), len(s.seen)+1)
	copy(seen, s.seen)
	return InspectState[S]{inner: s.inner, seen: append(seen, p.token)}, snap, true
}

func (st inspectStrategy[I, O, S, Sel]) Empty(s InspectState[S]) bool {
	return st.inner.Empty(s.inner)
}

func (st inspectStrategy[I, O, S, Sel]) Subscribe(p Probe[Sel], s InspectState[S]) (InspectState[S], bool) {
	if p.snapshot {
		return st.forget(p.token, s), true
	}
	next, ok := st.inner.Subscribe(p.sel, s.inner)
	return InspectState[S]{inner: next, seen: s.seen}, ok
}

func (st inspectStrategy[I, O, S, Sel]) Unsubscribe(p Probe[Sel], s InspectState[S]) InspectState[S] {
	if p.snapshot {
		return st.forget(p.token, s)
	}
	return InspectState[S]{inner: st.inner.Unsubscribe(p.sel, s.inner), seen: s.seen}
}

func (inspectStrategy[I, O, S, Sel]) forget(t Token, s InspectState[S]) InspectState[S] {
	i := slices.Index(s.seen, t)
	if i < 0 {
		return s
	}
	return InspectState[S]{inner: s.inner, seen: slices.Delete(slices.Clone(s.seen), i, i+1)}
}
