// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package exq

// RaceEnabled is true when the race detector is active.
// Waiter records are then never recycled: the free list hands records over
// through atomic sequence numbers, which the detector cannot observe.
const RaceEnabled = true
