// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exq

// Kind is the buffering discipline of a queue.
type Kind uint8

const (
	// KindUnbounded accepts every element.
	KindUnbounded Kind = iota
	// KindBounded blocks publishers while maxSize elements are buffered.
	KindBounded
	// KindCircularBuffer drops the oldest element when maxSize are buffered.
	KindCircularBuffer
	// KindSynchronous hands each element directly to a waiting consumer.
	KindSynchronous
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindUnbounded:
		return "unbounded"
	case KindBounded:
		return "bounded"
	case KindCircularBuffer:
		return "circular-buffer"
	case KindSynchronous:
		return "synchronous"
	default:
		return "unknown"
	}
}

// Options configures queue creation and strategy selection.
type Options struct {
	kind     Kind
	maxSize  int
	fairSize int // 0 means no fair cap
	lifo     bool

	policy    ClosePolicy
	policySet bool
}

// Builder creates queues with fluent configuration.
//
// The builder composes a strategy from the configured kind and modifiers
// and wraps it in the requested façade.
//
// Example:
//
//	// Unbounded FIFO queue
//	q := exq.Build[Event](exq.New())
//
//	// Bounded queue serving at most 16 elements per consumer request
//	q := exq.Build[Job](exq.New().Bounded(1024).Fair(16))
//
//	// Sentinel-terminated rendezvous
//	q := exq.BuildTerminated[Frame](exq.New().Synchronous())
//
//	// Circular buffer with observable size
//	q := exq.BuildInspectable[Sample](exq.New().CircularBuffer(256))
type Builder struct {
	opts Options
}

// New creates a builder for an unbounded FIFO queue.
func New() *Builder {
	return &Builder{opts: Options{kind: KindUnbounded}}
}

// Bounded limits the queue to maxSize buffered elements; publishers block
// while it is full.
//
// Panics if maxSize < 1.
func (b *Builder) Bounded(maxSize int) *Builder {
	if maxSize < 1 {
		panic("exq: bounded size must be >= 1")
	}
	b.opts.kind, b.opts.maxSize = KindBounded, maxSize
	return b
}

// CircularBuffer limits the queue to maxSize buffered elements; publishing
// into a full queue drops the oldest element.
//
// Panics if maxSize < 1.
func (b *Builder) CircularBuffer(maxSize int) *Builder {
	if maxSize < 1 {
		panic("exq: circular buffer size must be >= 1")
	}
	b.opts.kind, b.opts.maxSize = KindCircularBuffer, maxSize
	return b
}

// Synchronous selects a rendezvous queue without buffering: a publisher
// waits until a consumer takes its element.
func (b *Builder) Synchronous() *Builder {
	b.opts.kind, b.opts.maxSize = KindSynchronous, 1
	return b
}

// Fair caps every dequeue request at fairSize elements.
//
// Panics if fairSize < 1.
func (b *Builder) Fair(fairSize int) *Builder {
	if fairSize < 1 {
		panic("exq: fair size must be >= 1")
	}
	b.opts.fairSize = fairSize
	return b
}

// LIFO delivers the most recently enqueued element first.
// Only unbounded and bounded queues support LIFO order.
func (b *Builder) LIFO() *Builder {
	b.opts.lifo = true
	return b
}

// DrainFirst makes a terminated queue deliver elements buffered before the
// sentinel. This is the default except for synchronous queues.
func (b *Builder) DrainFirst() *Builder {
	b.opts.policy, b.opts.policySet = DrainFirst, true
	return b
}

// CloseNow makes a terminated queue discard elements buffered before the
// sentinel. This is the default for synchronous queues.
func (b *Builder) CloseNow() *Builder {
	b.opts.policy, b.opts.policySet = CloseNow, true
	return b
}

// Build creates a Queue[T] from the builder's configuration.
//
// Panics if the configuration combines Synchronous with Fair or LIFO, or
// CircularBuffer with LIFO.
func Build[T any](b *Builder) *Queue[T] {
	b.validate()
	if b.opts.kind == KindSynchronous {
		return NewQueue(Synchronous[T]())
	}
	return NewQueue(bufferStrategyOf[T](b.opts))
}

// BuildTerminated creates a sentinel-terminated queue.
// The close policy defaults to DrainFirst, or CloseNow for synchronous
// queues.
func BuildTerminated[T any](b *Builder) *TerminatedQueue[T] {
	b.validate()
	if b.opts.kind == KindSynchronous {
		return NewTerminatedQueue(Synchronous[T](), b.policyOr(CloseNow))
	}
	return NewTerminatedQueue(bufferStrategyOf[T](b.opts), b.policyOr(DrainFirst))
}

// BuildInspectable creates a queue supporting Peek, Sizes and GetSize.
// Inspectable queues are never sentinel-terminated: panics if a close
// policy was configured.
func BuildInspectable[T any](b *Builder) *InspectableQueue[T] {
	b.validate()
	if b.opts.policySet {
		panic("exq: BuildInspectable does not support sentinel termination")
	}
	if b.opts.kind == KindSynchronous {
		return NewInspectableQueue(Synchronous[T](), Handoff[T].Pending, Handoff[T].Len)
	}
	return NewInspectableQueue(bufferStrategyOf[T](b.opts), Buffer[T].Front, Buffer[T].Len)
}

func (b *Builder) validate() {
	switch {
	case b.opts.kind == KindSynchronous && b.opts.fairSize > 0:
		panic("exq: Synchronous does not support Fair")
	case b.opts.kind == KindSynchronous && b.opts.lifo:
		panic("exq: Synchronous does not support LIFO")
	case b.opts.kind == KindCircularBuffer && b.opts.lifo:
		panic("exq: CircularBuffer does not support LIFO")
	}
}

func (b *Builder) policyOr(def ClosePolicy) ClosePolicy {
	if b.opts.policySet {
		return b.opts.policy
	}
	return def
}

// bufferStrategyOf composes the strategy for the buffer-backed kinds.
func bufferStrategyOf[T any](o Options) Strategy[T, []T, Buffer[T], int] {
	var st Strategy[T, []T, Buffer[T], int]
	switch {
	case o.kind == KindCircularBuffer:
		st = CircularBuffer[T](o.maxSize)
	case o.lifo:
		st = UnboundedLIFO[T]()
	default:
		st = Unbounded[T]()
	}
	if o.kind == KindBounded {
		st = Bounded(st, Buffer[T].Len, o.maxSize)
	}
	if o.fairSize > 0 {
		st = Fair(st, o.fairSize)
	}
	return st
}

// NewUnbounded creates an unbounded FIFO queue.
func NewUnbounded[T any]() *Queue[T] {
	return NewQueue(Unbounded[T]())
}

// NewBounded creates a FIFO queue holding at most maxSize elements.
// Panics if maxSize < 1.
func NewBounded[T any](maxSize int) *Queue[T] {
	return NewQueue(Bounded(Unbounded[T](), Buffer[T].Len, maxSize))
}

// NewCircularBuffer creates a FIFO queue holding the newest maxSize
// elements. Panics if maxSize < 1.
func NewCircularBuffer[T any](maxSize int) *Queue[T] {
	return NewQueue(CircularBuffer[T](maxSize))
}

// NewSynchronous creates a rendezvous queue.
func NewSynchronous[T any]() *Queue[T] {
	return NewQueue(Synchronous[T]())
}

// NewFairUnbounded creates an unbounded FIFO queue serving at most
// fairSize elements per request. Panics if fairSize < 1.
func NewFairUnbounded[T any](fairSize int) *Queue[T] {
	return NewQueue(Fair(Unbounded[T](), fairSize))
}

// NewFairBounded creates a FIFO queue holding at most maxSize elements and
// serving at most fairSize elements per request.
// Panics if maxSize < 1 or fairSize < 1.
func NewFairBounded[T any](maxSize, fairSize int) *Queue[T] {
	return NewQueue(Fair(Bounded(Unbounded[T](), Buffer[T].Len, maxSize), fairSize))
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte
