// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exq_test

import (
	"context"
	"slices"
	"testing"

	"code.hybscloud.com/exq"
)

func TestTerminatedQueueDrainFirst(t *testing.T) {
	q := exq.BuildTerminated[int](exq.New())
	ctx := context.Background()
	q.Offer(exq.Some(1))
	q.Offer(exq.Some(2))
	if err := q.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var got []int
	for v, err := range q.Stream(ctx) {
		if err != nil {
			t.Fatalf("Stream: %v", err)
		}
		got = append(got, v)
	}
	if want := []int{1, 2}; !slices.Equal(got, want) {
		t.Fatalf("Stream: got %v, want %v", got, want)
	}

	// Terminated: Dequeue answers at once, even without a deadline.
	v, err := q.Dequeue(ctx)
	if err != nil || v.IsSome() {
		t.Fatalf("Dequeue after termination: got (%v, %v), want (None, nil)", v, err)
	}
}

func TestTerminatedQueueCloseNow(t *testing.T) {
	q := exq.BuildTerminated[int](exq.New().CloseNow())
	q.Offer(exq.Some(1))
	q.Offer(exq.Some(2))
	q.Offer(exq.None[int]())

	v, err := q.TryDequeue()
	if err != nil || v.IsSome() {
		t.Fatalf("TryDequeue: got (%v, %v), want (None, nil)", v, err)
	}
}

func TestTerminatedQueueCloseIdempotent(t *testing.T) {
	q := exq.NewTerminatedQueue(exq.Unbounded[int](), exq.DrainFirst)
	ctx := context.Background()
	for range 2 {
		if err := q.Close(ctx); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}
	// Elements after the sentinel are accepted and discarded.
	if err := q.Offer(exq.Some(9)); err != nil {
		t.Fatalf("Offer after Close: %v", err)
	}
	if v, err := q.TryDequeue(); err != nil || v.IsSome() {
		t.Fatalf("TryDequeue: got (%v, %v), want (None, nil)", v, err)
	}
}

func TestTerminatedQueueOpenEmpty(t *testing.T) {
	q := exq.NewTerminatedQueue(exq.Unbounded[int](), exq.DrainFirst)
	if _, err := q.TryDequeue(); !exq.IsWouldBlock(err) {
		t.Fatalf("TryDequeue on open empty queue: got %v, want ErrWouldBlock", err)
	}
	q.Offer(exq.Some(5))
	v, err := q.TryDequeue()
	if got, ok := v.Get(); err != nil || !ok || got != 5 {
		t.Fatalf("TryDequeue: got (%v, %v), want (Some(5), nil)", v, err)
	}
}

func TestTerminatedQueueBoundedSentinel(t *testing.T) {
	q := exq.BuildTerminated[int](exq.New().Bounded(1))
	q.Offer(exq.Some(1))
	if err := q.Offer(exq.Some(2)); !exq.IsWouldBlock(err) {
		t.Fatalf("Offer beyond capacity: got %v, want ErrWouldBlock", err)
	}
	// The sentinel is never refused.
	if err := q.Offer(exq.None[int]()); err != nil {
		t.Fatalf("Offer(None) at capacity: %v", err)
	}
	v, _ := q.TryDequeue()
	if got, ok := v.Get(); !ok || got != 1 {
		t.Fatalf("TryDequeue: got %v, want Some(1)", v)
	}
}

func TestTerminatedQueueSynchronousDefaultsCloseNow(t *testing.T) {
	q := exq.BuildTerminated[int](exq.New().Synchronous())
	if err := q.Offer(exq.Some(1)); !exq.IsWouldBlock(err) {
		t.Fatalf("Offer without consumer: got %v, want ErrWouldBlock", err)
	}
	if err := q.Offer(exq.None[int]()); err != nil {
		t.Fatalf("Offer(None): %v", err)
	}
	v, err := q.Dequeue(context.Background())
	if err != nil || v.IsSome() {
		t.Fatalf("Dequeue: got (%v, %v), want (None, nil)", v, err)
	}
}

func TestTerminatedQueueDequeueBatchStops(t *testing.T) {
	q := exq.BuildTerminated[int](exq.New())
	for i := range 3 {
		q.Offer(exq.Some(i))
	}
	q.Offer(exq.None[int]())

	sizes := slices.Values([]int{2, 2, 2, 2})
	var got [][]int
	for batch, err := range q.DequeueBatch(context.Background(), sizes) {
		if err != nil {
			t.Fatalf("DequeueBatch: %v", err)
		}
		got = append(got, batch)
	}
	if len(got) != 2 || !slices.Equal(got[0], []int{0, 1}) || !slices.Equal(got[1], []int{2}) {
		t.Fatalf("batches: got %v, want [[0 1] [2]]", got)
	}
}
