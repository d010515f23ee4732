//go:build !tinygo

package hw

import "sync"

// IRQState is the saved interrupt mask returned by DisableInterrupts.
type IRQState uintptr

// On the host there is no interrupt controller; a process-wide mutex stands
// in so that code exercising critical sections stays race-clean under test.
var hostIRQMu sync.Mutex

// DisableInterrupts masks hardware interrupts and returns the previous state.
func DisableInterrupts() IRQState {
	hostIRQMu.Lock()
	return 0
}

// RestoreInterrupts restores a state saved by DisableInterrupts.
func RestoreInterrupts(_ IRQState) {
	hostIRQMu.Unlock()
}
