// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exq

import (
	"context"
	"slices"
	"sync/atomic"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"

	"code.hybscloud.com/exq/internal/slab"
)

// waiterCacheSize is the number of idle waiter records an exchange keeps
// for reuse.
const waiterCacheSize = 32

// PubSub is the state-independent view of an [Exchange].
// Queue façades are built on it so that they need not name the strategy's
// state type.
type PubSub[I, O, Sel any] interface {
	// Publish blocks until i is accepted or ctx is done.
	Publish(ctx context.Context, i I) error
	// TryPublish publishes i only if it is accepted right now.
	TryPublish(i I) bool
	// Get blocks until a request shaped by sel is served or ctx is done.
	Get(ctx context.Context, sel Sel) (O, error)
	// TryGet serves sel only if it can be served right now.
	TryGet(sel Sel) (O, bool)
	// Subscribe registers standing interest described by sel.
	Subscribe(sel Sel) bool
	// Unsubscribe drops interest described by sel.
	Unsubscribe(sel Sel)
	// Stats returns activity counters.
	Stats() Stats
}

// Stats is a point-in-time view of an exchange's activity.
//
// On an inspectable queue, Delivered also counts the snapshots served to
// Peek and Sizes observers, and Consumers includes observers blocked
// waiting for the next change. GetSize reads the state directly and is
// not counted.
type Stats struct {
	Published  int64 // elements incorporated into the state
	Delivered  int64 // Get requests served
	Cancelled  int64 // blocked calls excised by cancellation
	Publishers int   // currently blocked publishers
	Consumers  int   // currently blocked consumers
}

// Exchange mediates between publishers and consumers according to a
// [Strategy].
//
// All shared data lives in one immutable snapshot: the strategy state plus
// the blocked publishers and consumers in registration order. Every
// operation computes a new snapshot from the current one and installs it
// with a single compare-and-swap, so transitions are serialized without
// holding a lock. A transition that changes the state runs the wakeup pass
// before committing: blocked consumers and publishers are retried, oldest
// first, until none of them can make progress. Blocked callers are
// signalled only after the snapshot that removes them has been committed.
//
// Blocking calls suspend on a per-call channel, never by spinning.
// Cancelling a blocked call through its context removes it atomically; a
// call that was already served when its context fired returns the result.
type Exchange[I, O, S, Sel any] struct {
	_         pad
	state     atomic.Pointer[snapshot[I, O, S, Sel]]
	_         pad
	ids       atomix.Uint64
	published atomix.Int64
	delivered atomix.Int64
	cancelled atomix.Int64
	strategy  Strategy[I, O, S, Sel]
	free      *slab.Slab[waiter[O]]
}

// waiter is the single-fire completion slot of a blocked call.
type waiter[O any] struct {
	out  O
	done chan struct{}
}

// pending is a registry entry. Its arg is the published element for a
// publisher and the selector for a consumer.
type pending[A, O any] struct {
	id  uint64
	arg A
	w   *waiter[O]
}

type snapshot[I, O, S, Sel any] struct {
	s    S
	pubs []pending[I, O]
	subs []pending[Sel, O]
}

type completion[O any] struct {
	w   *waiter[O]
	out O
}

// effects collects what a transition does beyond replacing the snapshot.
// They are applied only once the transition commits.
type effects[O any] struct {
	fired     []completion[O]
	published int64
	delivered int64
}

// NewExchange creates an exchange in the strategy's initial state.
func NewExchange[I, O, S, Sel any](strategy Strategy[I, O, S, Sel]) *Exchange[I, O, S, Sel] {
	e := &Exchange[I, O, S, Sel]{
		strategy: strategy,
		free:     slab.New[waiter[O]](waiterCacheSize),
	}
	e.state.Store(&snapshot[I, O, S, Sel]{s: strategy.Initial()})
	return e
}

// Publish blocks until the strategy accepts i or ctx is done.
//
// Returns nil once i has been incorporated into the state, or ctx.Err()
// if the call was cancelled before that happened.
func (e *Exchange[I, O, S, Sel]) Publish(ctx context.Context, i I) error {
	var (
		w        *waiter[O]
		id       uint64
		admitted bool
	)
	e.commit(func(cur *snapshot[I, O, S, Sel]) (*snapshot[I, O, S, Sel], *effects[O]) {
		if e.strategy.Accepts(i, cur.s) {
			admitted = true
			fx := &effects[O]{published: 1}
			return e.settle(cur.with(e.strategy.Publish(i, cur.s)), fx), fx
		}
		admitted = false
		if w == nil {
			w, id = e.acquire(), e.ids.AddAcqRel(1)
		}
		next := &snapshot[I, O, S, Sel]{
			s:    cur.s,
			pubs: append(slices.Clip(cur.pubs), pending[I, O]{id: id, arg: i, w: w}),
			subs: cur.subs,
		}
		return next, nil
	})
	if admitted {
		if w != nil {
			e.release(w)
		}
		return nil
	}

	select {
	case <-w.done:
		e.release(w)
		return nil
	case <-ctx.Done():
	}

	removed := false
	e.commit(func(cur *snapshot[I, O, S, Sel]) (*snapshot[I, O, S, Sel], *effects[O]) {
		idx := indexOf(cur.pubs, id)
		removed = idx >= 0
		if !removed {
			return cur, nil
		}
		return &snapshot[I, O, S, Sel]{s: cur.s, pubs: without(cur.pubs, idx), subs: cur.subs}, nil
	})
	if !removed {
		// Admitted by a transition that committed before ours.
		<-w.done
		e.release(w)
		return nil
	}
	e.cancelled.Add(1)
	e.release(w)
	return ctx.Err()
}

// TryPublish publishes i if the strategy accepts it now.
// Never blocks; reports whether i was published.
func (e *Exchange[I, O, S, Sel]) TryPublish(i I) bool {
	admitted := false
	e.commit(func(cur *snapshot[I, O, S, Sel]) (*snapshot[I, O, S, Sel], *effects[O]) {
		admitted = e.strategy.Accepts(i, cur.s)
		if !admitted {
			return cur, nil
		}
		fx := &effects[O]{published: 1}
		return e.settle(cur.with(e.strategy.Publish(i, cur.s)), fx), fx
	})
	return admitted
}

// Get blocks until a request shaped by sel is served or ctx is done.
//
// A blocked Get is retried after every state change, and blocked requests
// are served oldest first among those the new state can satisfy. When ctx
// is done before the request is served, Get returns ctx.Err() and the
// strategy's Unsubscribe hook runs for sel.
func (e *Exchange[I, O, S, Sel]) Get(ctx context.Context, sel Sel) (O, error) {
	var (
		w   *waiter[O]
		id  uint64
		out O
		got bool
	)
	e.commit(func(cur *snapshot[I, O, S, Sel]) (*snapshot[I, O, S, Sel], *effects[O]) {
		next, o, ok := e.strategy.Get(sel, cur.s)
		fx := &effects[O]{}
		if ok {
			got, out = true, o
			fx.delivered = 1
			return e.settle(cur.with(next), fx), fx
		}
		got = false
		if w == nil {
			w, id = e.acquire(), e.ids.AddAcqRel(1)
		}
		ps := &snapshot[I, O, S, Sel]{
			s:    next,
			pubs: cur.pubs,
			subs: append(slices.Clip(cur.subs), pending[Sel, O]{id: id, arg: sel, w: w}),
		}
		return e.settle(ps, fx), fx
	})
	if got {
		if w != nil {
			e.release(w)
		}
		return out, nil
	}

	select {
	case <-w.done:
		return e.collect(w), nil
	case <-ctx.Done():
	}

	removed := false
	e.commit(func(cur *snapshot[I, O, S, Sel]) (*snapshot[I, O, S, Sel], *effects[O]) {
		idx := indexOf(cur.subs, id)
		removed = idx >= 0
		if !removed {
			return cur, nil
		}
		fx := &effects[O]{}
		ps := &snapshot[I, O, S, Sel]{
			s:    e.strategy.Unsubscribe(sel, cur.s),
			pubs: cur.pubs,
			subs: without(cur.subs, idx),
		}
		return e.settle(ps, fx), fx
	})
	if !removed {
		// Served by a transition that committed before ours.
		<-w.done
		return e.collect(w), nil
	}
	e.cancelled.Add(1)
	e.release(w)
	var zero O
	return zero, ctx.Err()
}

// TryGet serves sel if the current state allows it.
// Never blocks and never records the caller as waiting.
func (e *Exchange[I, O, S, Sel]) TryGet(sel Sel) (O, bool) {
	var (
		out O
		got bool
	)
	e.commit(func(cur *snapshot[I, O, S, Sel]) (*snapshot[I, O, S, Sel], *effects[O]) {
		next, o, ok := e.strategy.Get(sel, cur.s)
		got, out = ok, o
		if !ok {
			return cur, nil
		}
		fx := &effects[O]{delivered: 1}
		return e.settle(cur.with(next), fx), fx
	})
	return out, got
}

// Subscribe registers standing interest described by sel.
// Never blocks; reports the strategy's verdict.
func (e *Exchange[I, O, S, Sel]) Subscribe(sel Sel) bool {
	var ok bool
	e.commit(func(cur *snapshot[I, O, S, Sel]) (*snapshot[I, O, S, Sel], *effects[O]) {
		var next S
		next, ok = e.strategy.Subscribe(sel, cur.s)
		fx := &effects[O]{}
		return e.settle(cur.with(next), fx), fx
	})
	return ok
}

// Unsubscribe drops interest described by sel. Never blocks.
func (e *Exchange[I, O, S, Sel]) Unsubscribe(sel Sel) {
	e.commit(func(cur *snapshot[I, O, S, Sel]) (*snapshot[I, O, S, Sel], *effects[O]) {
		fx := &effects[O]{}
		return e.settle(cur.with(e.strategy.Unsubscribe(sel, cur.s)), fx), fx
	})
}

// Empty reports whether the strategy considers the committed state empty.
func (e *Exchange[I, O, S, Sel]) Empty() bool {
	return e.strategy.Empty(e.state.Load().s)
}

// State returns the committed strategy state.
func (e *Exchange[I, O, S, Sel]) State() S {
	return e.state.Load().s
}

// Stats returns activity counters and the number of blocked callers.
func (e *Exchange[I, O, S, Sel]) Stats() Stats {
	cur := e.state.Load()
	return Stats{
		Published:  e.published.Load(),
		Delivered:  e.delivered.Load(),
		Cancelled:  e.cancelled.Load(),
		Publishers: len(cur.pubs),
		Consumers:  len(cur.subs),
	}
}

// commit applies f to the current snapshot until the result is installed.
// f must be free of side effects apart from its captured result variables:
// it is re-run from scratch whenever another transition commits first.
// Returning cur unchanged commits nothing.
func (e *Exchange[I, O, S, Sel]) commit(f func(cur *snapshot[I, O, S, Sel]) (*snapshot[I, O, S, Sel], *effects[O])) {
	sw := spin.Wait{}
	for {
		cur := e.state.Load()
		next, fx := f(cur)
		if next == cur {
			return
		}
		if e.state.CompareAndSwap(cur, next) {
			if fx != nil {
				e.apply(fx)
			}
			return
		}
		sw.Once()
	}
}

func (e *Exchange[I, O, S, Sel]) apply(fx *effects[O]) {
	if fx.published > 0 {
		e.published.Add(fx.published)
	}
	if fx.delivered > 0 {
		e.delivered.Add(fx.delivered)
	}
	for _, c := range fx.fired {
		c.w.out = c.out
		c.w.done <- struct{}{}
	}
}

// settle runs the wakeup pass on ps until it reaches a fixed point.
//
// Consumers are retried before publishers: a failed Get may record a
// waiting consumer (rendezvous), which can let a publisher in, whose
// element the next consumer pass then delivers. The loop ends when a full
// round completes no waiter; each completion removes one, so it
// terminates.
func (e *Exchange[I, O, S, Sel]) settle(ps *snapshot[I, O, S, Sel], fx *effects[O]) *snapshot[I, O, S, Sel] {
	for {
		progressed := false

		if len(ps.subs) > 0 {
			s := ps.s
			keep := make([]pending[Sel, O], 0, len(ps.subs))
			for _, p := range ps.subs {
				next, out, ok := e.strategy.Get(p.arg, s)
				s = next
				if !ok {
					keep = append(keep, p)
					continue
				}
				fx.fired = append(fx.fired, completion[O]{w: p.w, out: out})
				fx.delivered++
				progressed = true
			}
			ps = &snapshot[I, O, S, Sel]{s: s, pubs: ps.pubs, subs: keep}
		}

		if len(ps.pubs) > 0 {
			s := ps.s
			keep := make([]pending[I, O], 0, len(ps.pubs))
			admitted := false
			for _, p := range ps.pubs {
				if !e.strategy.Accepts(p.arg, s) {
					keep = append(keep, p)
					continue
				}
				s = e.strategy.Publish(p.arg, s)
				fx.fired = append(fx.fired, completion[O]{w: p.w})
				fx.published++
				admitted = true
			}
			if admitted {
				ps = &snapshot[I, O, S, Sel]{s: s, pubs: keep, subs: ps.subs}
				progressed = true
			}
		}

		if !progressed {
			return ps
		}
	}
}

func (e *Exchange[I, O, S, Sel]) acquire() *waiter[O] {
	if !RaceEnabled {
		if w, ok := e.free.Get(); ok {
			return w
		}
	}
	return &waiter[O]{done: make(chan struct{}, 1)}
}

// collect takes the delivered output out of w and recycles it.
// The caller must have received from w.done.
func (e *Exchange[I, O, S, Sel]) collect(w *waiter[O]) O {
	out := w.out
	e.release(w)
	return out
}

func (e *Exchange[I, O, S, Sel]) release(w *waiter[O]) {
	if RaceEnabled {
		return
	}
	var zero O
	w.out = zero
	e.free.Put(w)
}

func (ps *snapshot[I, O, S, Sel]) with(s S) *snapshot[I, O, S, Sel] {
	return &snapshot[I, O, S, Sel]{s: s, pubs: ps.pubs, subs: ps.subs}
}

func indexOf[A, O any](ps []pending[A, O], id uint64) int {
	return slices.IndexFunc(ps, func(p pending[A, O]) bool { return p.id == id })
}

func without[A, O any](ps []pending[A, O], idx int) []pending[A, O] {
	return slices.Delete(slices.Clone(ps), idx, idx+1)
}
