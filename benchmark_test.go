// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exq_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"code.hybscloud.com/spin"

	"code.hybscloud.com/exq"
)

// =============================================================================
// Single Goroutine Baselines
// =============================================================================

func BenchmarkUnbounded_SingleOp(b *testing.B) {
	q := exq.NewUnbounded[int]()

	b.ResetTimer()
	for i := range b.N {
		q.Offer(i)
		q.TryDequeue()
	}
}

func BenchmarkBounded_SingleOp(b *testing.B) {
	q := exq.NewBounded[int](1024)

	b.ResetTimer()
	for i := range b.N {
		q.Offer(i)
		q.TryDequeue()
	}
}

func BenchmarkCircularBuffer_Overwrite(b *testing.B) {
	q := exq.NewCircularBuffer[int](64)

	b.ResetTimer()
	for i := range b.N {
		q.Offer(i)
	}
}

func BenchmarkInspectable_GetSize(b *testing.B) {
	q := exq.BuildInspectable[int](exq.New().Bounded(1024))
	for i := range 512 {
		q.Offer(i)
	}

	b.ResetTimer()
	for range b.N {
		q.GetSize()
	}
}

func BenchmarkUnbounded_Chunk(b *testing.B) {
	for _, size := range []int{8, 64} {
		b.Run(fmt.Sprintf("Chunk%d", size), func(b *testing.B) {
			q := exq.NewUnbounded[int]()
			ctx := context.Background()

			b.ResetTimer()
			for i := 0; i < b.N; i += size {
				for j := range size {
					q.Offer(i + j)
				}
				for range q.DequeueChunk(ctx, size) {
					break
				}
			}
		})
	}
}

// =============================================================================
// Concurrent
// =============================================================================

func BenchmarkSynchronous_PingPong(b *testing.B) {
	q := exq.NewSynchronous[int]()
	ctx := context.Background()

	b.ResetTimer()
	var wg sync.WaitGroup
	wg.Go(func() {
		for i := range b.N {
			q.Enqueue(ctx, i)
		}
	})
	for range b.N {
		q.Dequeue(ctx)
	}
	wg.Wait()
}

func BenchmarkBounded_ContentionLevels(b *testing.B) {
	workerCounts := []int{2, 4, 8, 16}

	for _, workers := range workerCounts {
		b.Run(fmt.Sprintf("Workers%d", workers), func(b *testing.B) {
			q := exq.NewBounded[int](1024)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			numProducers := max(workers/2, 1)
			numConsumers := max(workers-numProducers, 1)
			opsPerProducer := max(b.N/numProducers, 1)

			b.ResetTimer()

			var producerWg sync.WaitGroup
			var consumerWg sync.WaitGroup

			// Consumers block in Dequeue until ctx is cancelled.
			for range numConsumers {
				consumerWg.Go(func() {
					for {
						if _, err := q.Dequeue(ctx); err != nil {
							return
						}
					}
				})
			}

			for p := range numProducers {
				producerWg.Go(func() {
					base := p * opsPerProducer
					for i := range opsPerProducer {
						q.Enqueue(ctx, base+i)
					}
				})
			}

			producerWg.Wait()
			cancel()
			consumerWg.Wait()
		})
	}
}

// BenchmarkBounded_Polling measures the non-blocking path under contention,
// with callers pausing between attempts.
func BenchmarkBounded_Polling(b *testing.B) {
	q := exq.NewBounded[int](1024)
	numProducers, numConsumers := 2, 2
	opsPerProducer := max(b.N/numProducers, 1)

	b.ResetTimer()

	var producerWg sync.WaitGroup
	var consumerWg sync.WaitGroup
	done := make(chan struct{})

	for range numConsumers {
		consumerWg.Go(func() {
			sw := spin.Wait{}
			for {
				select {
				case <-done:
					for {
						if _, err := q.TryDequeue(); err != nil {
							return
						}
					}
				default:
					if _, err := q.TryDequeue(); err == nil {
						sw.Reset()
					} else {
						sw.Once()
					}
				}
			}
		})
	}

	for p := range numProducers {
		producerWg.Go(func() {
			sw := spin.Wait{}
			base := p * opsPerProducer
			for i := range opsPerProducer {
				for q.Offer(base+i) != nil {
					sw.Once()
				}
				sw.Reset()
			}
		})
	}

	producerWg.Wait()
	close(done)
	consumerWg.Wait()
}
