// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exq

import (
	"context"
	"fmt"
	"iter"
	"math"
)

// Queue is an element-oriented queue over an exchange whose consumers
// request batches by maximum size.
//
// All methods are safe for concurrent use by any number of goroutines.
type Queue[T any] struct {
	ps PubSub[T, []T, int]
}

// NewQueue creates a queue driven by strategy.
//
// The strategy must answer a Get with selector n by a non-empty batch of
// at most n elements. Dequeue reports [ErrContractViolation] otherwise.
func NewQueue[T, S any](strategy Strategy[T, []T, S, int]) *Queue[T] {
	return &Queue[T]{ps: NewExchange(strategy)}
}

// Enqueue blocks until v is accepted or ctx is done.
func (q *Queue[T]) Enqueue(ctx context.Context, v T) error {
	return q.ps.Publish(ctx, v)
}

// Offer enqueues v only if it is accepted right now.
// Returns ErrWouldBlock otherwise.
func (q *Queue[T]) Offer(v T) error {
	if !q.ps.TryPublish(v) {
		return ErrWouldBlock
	}
	return nil
}

// EnqueueAll enqueues every element of seq in order, blocking as needed.
// Stops at the first error.
func (q *Queue[T]) EnqueueAll(ctx context.Context, seq iter.Seq[T]) error {
	for v := range seq {
		if err := q.ps.Publish(ctx, v); err != nil {
			return err
		}
	}
	return nil
}

// Dequeue blocks until one element is available or ctx is done.
func (q *Queue[T]) Dequeue(ctx context.Context) (T, error) {
	batch, err := q.ps.Get(ctx, 1)
	if err != nil {
		var zero T
		return zero, err
	}
	return single(batch)
}

// TryDequeue removes one element if one is available right now.
// Returns (zero-value, ErrWouldBlock) otherwise.
func (q *Queue[T]) TryDequeue() (T, error) {
	batch, ok := q.ps.TryGet(1)
	if !ok {
		var zero T
		return zero, ErrWouldBlock
	}
	return single(batch)
}

// DequeueChunk returns an unbounded sequence of batches of at most
// maxSize elements, each obtained by a blocking Get.
//
// The sequence ends when the consumer stops ranging or ctx is done; in the
// latter case it yields (nil, ctx.Err()) last.
func (q *Queue[T]) DequeueChunk(ctx context.Context, maxSize int) iter.Seq2[[]T, error] {
	return func(yield func([]T, error) bool) {
		for {
			batch, err := q.ps.Get(ctx, maxSize)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(batch, nil) {
				return
			}
		}
	}
}

// DequeueBatch turns a sequence of requested sizes into the sequence of
// delivered batches, one blocking Get per requested size.
func (q *Queue[T]) DequeueBatch(ctx context.Context, sizes iter.Seq[int]) iter.Seq2[[]T, error] {
	return func(yield func([]T, error) bool) {
		for n := range sizes {
			batch, err := q.ps.Get(ctx, n)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(batch, nil) {
				return
			}
		}
	}
}

// Stream returns an unbounded sequence of dequeued elements.
// Elements are fetched in the largest batches the strategy allows.
func (q *Queue[T]) Stream(ctx context.Context) iter.Seq2[T, error] {
	return flatten(q.DequeueChunk(ctx, math.MaxInt))
}

// Stats returns the activity counters of the underlying exchange.
func (q *Queue[T]) Stats() Stats {
	return q.ps.Stats()
}

// single unwraps a batch that must hold exactly one element.
func single[T any](batch []T) (T, error) {
	if len(batch) != 1 {
		var zero T
		return zero, fmt.Errorf("%w: batch of %d elements, want 1", ErrContractViolation, len(batch))
	}
	return batch[0], nil
}

func flatten[T any](batches iter.Seq2[[]T, error]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for batch, err := range batches {
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			for _, v := range batch {
				if !yield(v, nil) {
					return
				}
			}
		}
	}
}
