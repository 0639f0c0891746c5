// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exq_test

import (
	"context"
	"fmt"
	"slices"

	"code.hybscloud.com/exq"
)

// ExampleNewUnbounded demonstrates a basic FIFO queue.
func ExampleNewUnbounded() {
	q := exq.NewUnbounded[string]()
	ctx := context.Background()

	q.Enqueue(ctx, "alpha")
	q.Enqueue(ctx, "beta")

	for range 2 {
		v, _ := q.Dequeue(ctx)
		fmt.Println(v)
	}

	// Output:
	// alpha
	// beta
}

// ExampleNewBounded demonstrates backpressure with Offer.
func ExampleNewBounded() {
	q := exq.NewBounded[int](2)

	for i := 1; i <= 3; i++ {
		if err := q.Offer(i); exq.IsWouldBlock(err) {
			fmt.Println("full, dropped", i)
		}
	}
	v, _ := q.TryDequeue()
	fmt.Println("got", v)
	fmt.Println("offer again:", q.Offer(3) == nil)

	// Output:
	// full, dropped 3
	// got 1
	// offer again: true
}

// ExampleNewCircularBuffer demonstrates keeping only the newest elements.
func ExampleNewCircularBuffer() {
	q := exq.NewCircularBuffer[int](3)
	for i := range 5 {
		q.Offer(i)
	}
	for batch := range q.DequeueChunk(context.Background(), 10) {
		fmt.Println(batch)
		break
	}

	// Output:
	// [2 3 4]
}

// ExampleQueue_DequeueBatch demonstrates requesting batches of varying size.
func ExampleQueue_DequeueBatch() {
	q := exq.NewUnbounded[int]()
	q.EnqueueAll(context.Background(), slices.Values([]int{1, 2, 3, 4, 5, 6}))

	for batch, err := range q.DequeueBatch(context.Background(), slices.Values([]int{1, 2, 3})) {
		if err != nil {
			break
		}
		fmt.Println(batch)
	}

	// Output:
	// [1]
	// [2 3]
	// [4 5 6]
}

// ExampleBuildTerminated demonstrates a stream ended by a sentinel.
func ExampleBuildTerminated() {
	q := exq.BuildTerminated[string](exq.New().Bounded(8))
	ctx := context.Background()

	q.Enqueue(ctx, exq.Some("first"))
	q.Enqueue(ctx, exq.Some("second"))
	q.Close(ctx)

	for v, err := range q.Stream(ctx) {
		if err != nil {
			break
		}
		fmt.Println(v)
	}
	v, _ := q.Dequeue(ctx)
	fmt.Println("after close:", v.IsNone())

	// Output:
	// first
	// second
	// after close: true
}

// ExampleBuildInspectable demonstrates observing a queue without consuming.
func ExampleBuildInspectable() {
	q := exq.BuildInspectable[string](exq.New())
	ctx := context.Background()

	q.Offer("job-1")
	q.Offer("job-2")

	n := q.GetSize()
	head, _ := q.Peek(ctx)
	fmt.Println(n, head)

	v, _ := q.Dequeue(ctx)
	n = q.GetSize()
	fmt.Println(n, v)

	// Output:
	// 2 job-1
	// 1 job-1
}

// ExampleNewExchange demonstrates driving an exchange with a composed
// strategy directly.
func ExampleNewExchange() {
	st := exq.Fair(exq.Bounded(exq.Unbounded[int](), exq.Buffer[int].Len, 4), 2)
	ex := exq.NewExchange(st)

	for i := range 5 {
		fmt.Println("publish", i, ex.TryPublish(i))
	}
	out, ok := ex.TryGet(10)
	fmt.Println(out, ok, ex.State().Len())

	// Output:
	// publish 0 true
	// publish 1 true
	// publish 2 true
	// publish 3 true
	// publish 4 false
	// [0 1] true 2
}
