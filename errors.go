// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package exq

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates a non-blocking operation cannot proceed immediately.
//
// For Offer: the strategy does not accept the element now (backpressure)
// For TryDequeue: nothing can be delivered now
//
// ErrWouldBlock is a control flow signal, not a failure. Callers either
// retry later or switch to the blocking Enqueue/Dequeue calls, which wait
// for the state change instead of polling.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
var ErrWouldBlock = iox.ErrWouldBlock

// ErrContractViolation reports that a strategy produced an output of the
// wrong shape, e.g. a batch of two elements for a single-element request.
// It indicates a bug in a supplied strategy and fails only the calling
// operation.
var ErrContractViolation = errors.New("exq: strategy contract violation")

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil or ErrWouldBlock.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}

// IsContractViolation reports whether err wraps [ErrContractViolation].
func IsContractViolation(err error) bool {
	return errors.Is(err, ErrContractViolation)
}
