// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exq

import (
	"context"
	"iter"
)

// Producer is the interface for enqueueing elements.
//
// Enqueue waits for the strategy to accept the element; Offer never waits
// and returns ErrWouldBlock instead. Both store v by value.
type Producer[T any] interface {
	// Enqueue adds an element, blocking until it is accepted or ctx is
	// done. Returns ctx.Err() only if the element was not enqueued.
	Enqueue(ctx context.Context, v T) error

	// Offer adds an element if it is accepted right now.
	// Returns nil on success, ErrWouldBlock otherwise.
	Offer(v T) error
}

// Consumer is the interface for dequeueing elements.
//
// Dequeue waits for an element; TryDequeue never waits and returns
// ErrWouldBlock instead. The sequence methods issue one blocking request
// per batch and end when the caller stops ranging or ctx is done.
type Consumer[T any] interface {
	// Dequeue removes one element, blocking until one is available or
	// ctx is done. An element already handed to the caller when ctx
	// fires is returned with a nil error.
	Dequeue(ctx context.Context) (T, error)

	// TryDequeue removes one element if one is available right now.
	// Returns (zero-value, ErrWouldBlock) otherwise.
	TryDequeue() (T, error)

	// DequeueChunk yields batches of at most maxSize elements.
	DequeueChunk(ctx context.Context, maxSize int) iter.Seq2[[]T, error]

	// DequeueBatch yields one batch per requested size.
	DequeueBatch(ctx context.Context, sizes iter.Seq[int]) iter.Seq2[[]T, error]

	// Stream yields single elements.
	Stream(ctx context.Context) iter.Seq2[T, error]
}

// Inspector observes a queue without consuming from it.
type Inspector[T any] interface {
	// Peek blocks until an element is buffered and returns it without
	// removing it.
	Peek(ctx context.Context) (T, error)

	// Sizes yields the current size and then the size after every change.
	Sizes(ctx context.Context) iter.Seq2[int, error]

	// GetSize returns the current size without blocking.
	GetSize() int
}

var (
	_ Producer[int]           = (*Queue[int])(nil)
	_ Consumer[int]           = (*Queue[int])(nil)
	_ Producer[int]           = (*InspectableQueue[int])(nil)
	_ Consumer[int]           = (*InspectableQueue[int])(nil)
	_ Inspector[int]          = (*InspectableQueue[int])(nil)
	_ Producer[Option[int]]   = (*TerminatedQueue[int])(nil)
	_ PubSub[int, []int, int] = (*Exchange[int, []int, Buffer[int], int])(nil)
	_ PubSub[int, []int, int] = (*inspection[int, Buffer[int]])(nil)
)
