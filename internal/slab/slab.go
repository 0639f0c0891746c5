// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package slab provides a bounded lock-free free list for recycling
// fixed-shape records between goroutines.
//
// The free list is a CAS-based multi-producer multi-consumer ring with
// per-slot sequence numbers (ABA safe for non-distinct values). A full
// list rejects Put and the record is left to the garbage collector; an
// empty list makes Get report a miss and the caller allocates.
package slab

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// Slab is a bounded free list of *T records.
type Slab[T any] struct {
	_     pad
	tail  atomix.Uint64 // Put index
	_     pad
	head  atomix.Uint64 // Get index
	_     pad
	slots []slot[T]
	mask  uint64
	size  uint64
}

type slot[T any] struct {
	seq atomix.Uint64
	rec *T
	_   padShort
}

// New creates a free list holding at most capacity records.
// Capacity rounds up to the next power of 2.
//
// Panics if capacity < 2.
func New[T any](capacity int) *Slab[T] {
	if capacity < 2 {
		panic("slab: capacity must be >= 2")
	}

	n := uint64(roundToPow2(capacity))
	s := &Slab[T]{
		slots: make([]slot[T], n),
		mask:  n - 1,
		size:  n,
	}
	for i := uint64(0); i < n; i++ {
		s.slots[i].seq.StoreRelaxed(i)
	}
	return s
}

// Put returns rec to the free list.
// Reports false when the list is full. The free list is only a cache: a
// record it cannot hold is left to the garbage collector, so Put never
// waits for room.
func (s *Slab[T]) Put(rec *T) bool {
	sl, pos, ok := s.claim(&s.tail, 0)
	if !ok {
		return false
	}
	sl.rec = rec
	sl.seq.StoreRelease(pos + 1)
	return true
}

// Get takes a record from the free list.
// Returns (nil, false) when the list is empty; the caller then allocates.
func (s *Slab[T]) Get() (*T, bool) {
	sl, pos, ok := s.claim(&s.head, 1)
	if !ok {
		return nil, false
	}
	rec := sl.rec
	sl.rec = nil
	sl.seq.StoreRelease(pos + s.size)
	return rec, true
}

// claim advances cursor past the slot whose sequence equals pos+lag.
// A sequence behind that means the slot is not ready for this side: the
// list is full for Put (lag 0) or empty for Get (lag 1).
func (s *Slab[T]) claim(cursor *atomix.Uint64, lag uint64) (*slot[T], uint64, bool) {
	sw := spin.Wait{}
	for {
		pos := cursor.LoadAcquire()
		sl := &s.slots[pos&s.mask]
		switch d := int64(sl.seq.LoadAcquire()) - int64(pos+lag); {
		case d < 0:
			return nil, 0, false
		case d == 0 && cursor.CompareAndSwapAcqRel(pos, pos+1):
			return sl, pos, true
		}
		sw.Once()
	}
}

// Cap returns the maximum number of records the list retains.
func (s *Slab[T]) Cap() int {
	return int(s.size)
}

// roundToPow2 rounds n up to the next power of 2.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padShort is padding to fill the cache line after a sequence and a pointer.
type padShort [64 - 16]byte
