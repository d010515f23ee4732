//go:build tinygo

package hw

import "runtime/interrupt"

// IRQState is the saved interrupt mask returned by DisableInterrupts.
type IRQState = interrupt.State

// DisableInterrupts masks hardware interrupts and returns the previous state.
func DisableInterrupts() IRQState {
	return interrupt.Disable()
}

// RestoreInterrupts restores a state saved by DisableInterrupts.
func RestoreInterrupts(state IRQState) {
	interrupt.Restore(state)
}
