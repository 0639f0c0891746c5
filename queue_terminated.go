// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exq

import (
	"context"
	"iter"
	"math"
)

// TerminatedQueue is a queue whose stream ends when None is enqueued.
//
// Whether elements buffered before the sentinel are still delivered depends
// on the [ClosePolicy] the queue was built with. Once terminated, every
// dequeue returns None immediately and every sequence stops.
type TerminatedQueue[T any] struct {
	ps PubSub[Option[T], Option[[]T], int]
}

// NewTerminatedQueue creates a sentinel-terminated queue over inner.
func NewTerminatedQueue[T, S any](inner Strategy[T, []T, S, int], policy ClosePolicy) *TerminatedQueue[T] {
	return &TerminatedQueue[T]{ps: NewExchange(Terminated(inner, policy))}
}

// Enqueue blocks until v is accepted or ctx is done.
// Enqueueing None terminates the queue.
func (q *TerminatedQueue[T]) Enqueue(ctx context.Context, v Option[T]) error {
	return q.ps.Publish(ctx, v)
}

// Offer enqueues v only if it is accepted right now.
// Returns ErrWouldBlock otherwise. Offering None always succeeds.
func (q *TerminatedQueue[T]) Offer(v Option[T]) error {
	if !q.ps.TryPublish(v) {
		return ErrWouldBlock
	}
	return nil
}

// Close terminates the queue. Equivalent to Enqueue(ctx, None[T]()).
// Closing an already terminated queue is a no-op.
func (q *TerminatedQueue[T]) Close(ctx context.Context) error {
	return q.ps.Publish(ctx, None[T]())
}

// Dequeue blocks until an element is available, the queue terminates, or
// ctx is done. Returns None after termination.
func (q *TerminatedQueue[T]) Dequeue(ctx context.Context) (Option[T], error) {
	out, err := q.ps.Get(ctx, 1)
	if err != nil {
		return None[T](), err
	}
	return unwrapTerminated(out)
}

// TryDequeue removes one element if one is available right now.
// Returns None once the queue is terminated, and ErrWouldBlock when
// nothing can be delivered yet.
func (q *TerminatedQueue[T]) TryDequeue() (Option[T], error) {
	out, ok := q.ps.TryGet(1)
	if !ok {
		return None[T](), ErrWouldBlock
	}
	return unwrapTerminated(out)
}

// DequeueChunk returns the sequence of batches of at most maxSize elements
// up to termination. The sequence ends cleanly on termination and yields
// (nil, err) last when ctx is done first.
func (q *TerminatedQueue[T]) DequeueChunk(ctx context.Context, maxSize int) iter.Seq2[[]T, error] {
	return func(yield func([]T, error) bool) {
		for {
			out, err := q.ps.Get(ctx, maxSize)
			if err != nil {
				yield(nil, err)
				return
			}
			batch, ok := out.Get()
			if !ok || !yield(batch, nil) {
				return
			}
		}
	}
}

// DequeueBatch turns a sequence of requested sizes into the sequence of
// delivered batches, stopping early on termination.
func (q *TerminatedQueue[T]) DequeueBatch(ctx context.Context, sizes iter.Seq[int]) iter.Seq2[[]T, error] {
	return func(yield func([]T, error) bool) {
		for n := range sizes {
			out, err := q.ps.Get(ctx, n)
			if err != nil {
				yield(nil, err)
				return
			}
			batch, ok := out.Get()
			if !ok || !yield(batch, nil) {
				return
			}
		}
	}
}

// Stream returns the sequence of elements up to termination.
func (q *TerminatedQueue[T]) Stream(ctx context.Context) iter.Seq2[T, error] {
	return flatten(q.DequeueChunk(ctx, math.MaxInt))
}

// Stats returns the activity counters of the underlying exchange.
func (q *TerminatedQueue[T]) Stats() Stats {
	return q.ps.Stats()
}

func unwrapTerminated[T any](out Option[[]T]) (Option[T], error) {
	batch, ok := out.Get()
	if !ok {
		return None[T](), nil
	}
	v, err := single(batch)
	if err != nil {
		return None[T](), err
	}
	return Some(v), nil
}
