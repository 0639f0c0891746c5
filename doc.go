// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package exq provides concurrent queues built on a single exchange
// primitive driven by pluggable strategies.
//
// An [Exchange] owns one shared state and the callers blocked on it. A
// [Strategy] is a value of pure functions deciding how the state evolves:
// whether a published element is accepted, how it is incorporated, and
// what a consumer request yields. Every queue shape in this package is an
// exchange plus a strategy, so the synchronization logic exists once.
//
// # Quick Start
//
// Direct constructors:
//
//	q := exq.NewUnbounded[Event]()
//	q := exq.NewBounded[*Request](4096)
//	q := exq.NewCircularBuffer[Sample](256)
//	q := exq.NewSynchronous[Frame]()
//	q := exq.NewFairBounded[Job](1024, 16)
//
// Builder API composes strategies from a description:
//
//	q := exq.Build[Event](exq.New())                              // unbounded FIFO
//	q := exq.Build[Event](exq.New().Bounded(1024).LIFO())         // bounded LIFO
//	q := exq.BuildTerminated[Event](exq.New().Bounded(64))        // sentinel-terminated
//	q := exq.BuildInspectable[Event](exq.New().CircularBuffer(8)) // Peek / Sizes
//
// # Basic Usage
//
//	q := exq.NewBounded[int](2)
//
//	// Blocking: waits for room or ctx
//	if err := q.Enqueue(ctx, 42); err != nil {
//	    return err // ctx.Err()
//	}
//
//	// Non-blocking
//	if err := q.Offer(43); exq.IsWouldBlock(err) {
//	    // Queue is full - handle backpressure
//	}
//
//	v, err := q.Dequeue(ctx)    // waits for an element
//	v, err = q.TryDequeue()     // ErrWouldBlock when empty
//
//	for batch, err := range q.DequeueChunk(ctx, 64) {
//	    if err != nil {
//	        break // ctx done
//	    }
//	    process(batch)
//	}
//
// # Strategies
//
//	Unbounded[T]()            FIFO, accepts everything
//	UnboundedLIFO[T]()        LIFO, accepts everything
//	CircularBuffer[T](n)      FIFO, drops the oldest element when n are held
//	Synchronous[T]()          rendezvous, accepts only with a consumer waiting
//	Bounded(st, size, n)      accepts only while size(state) < n
//	Fair(st, n)               serves at most n elements per request
//	Terminated(st, policy)    Option elements; None closes the stream
//	Inspectable(st)           adds state snapshots for observers
//
// Strategies are values. Combinators wrap a strategy in another strategy,
// so a fair bounded queue is Fair(Bounded(Unbounded[T](), ...), n), and
// custom strategies plug into [NewExchange], [NewQueue] and
// [NewTerminatedQueue] without touching the engine.
//
// # Blocking and Wakeup
//
// The exchange keeps its state and registries in one immutable snapshot
// replaced by compare-and-swap. A call that changes the state retries the
// blocked consumers and then the blocked publishers, oldest first, until
// no further progress is possible, all inside the same transition. Blocked
// callers are woken through a per-call channel only after that transition
// has committed, so a wakeup is never lost and never delivered twice.
//
// Within one class of waiters, service follows registration order. Across
// classes, order follows causality only: a publish can release consumers,
// and a dequeue can release publishers.
//
// # Cancellation
//
// Blocking calls take a context. A call whose context is done before it is
// served is removed from the exchange and returns ctx.Err(). A call served
// concurrently with its cancellation returns its result and a nil error:
// an element is never dropped and never delivered twice.
//
// # Termination
//
// [TerminatedQueue] carries [Option] elements. Enqueueing None closes the
// stream. With [DrainFirst], elements buffered before the sentinel are
// still delivered; with [CloseNow] they are discarded and blocked
// publishers are released. After termination Dequeue returns None at once
// and every sequence ends cleanly.
//
// # Error Handling
//
// Non-blocking calls return [ErrWouldBlock], sourced from
// [code.hybscloud.com/iox]. It is a control flow signal, not a failure.
//
//	exq.IsWouldBlock(err)        // true if full / empty
//	exq.IsSemantic(err)          // true if control flow signal
//	exq.IsNonFailure(err)        // true if nil or ErrWouldBlock
//	exq.IsContractViolation(err) // true if a strategy broke its contract
//
// [ErrContractViolation] reports a strategy returning output of the wrong
// shape; it fails the calling operation only.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for counters and the waiter free list, and
// [code.hybscloud.com/spin] for CPU pause between contended
// compare-and-swap attempts.
package exq
